package router

// NotFoundPath is where unmatched and redirected navigations end up.
const NotFoundPath = "/404"

// Resolution is the detailed result of resolving a path.
type Resolution struct {
	// Route is the resolved page. Never nil.
	Route Route

	// Path is the canonical form of the input path. It is empty when the
	// input could not be canonicalized.
	Path string

	// RedirectTo is set when the host should replace the current URL,
	// e.g. when a nested scope fell back to the top-level NotFound.
	RedirectTo string
}

// Router resolves paths to routes. It is pure: it owns no history and
// holds no per-navigation state.
type Router struct {
	table *Table[Route]
}

// New creates a Router over the application route table.
func New() *Router {
	return NewWithTable(DefaultTable())
}

// NewWithTable creates a Router over a custom table.
func NewWithTable(t *Table[Route]) *Router {
	return &Router{table: t}
}

// Resolve maps a path to exactly one Route. It never fails: anything that
// does not match a declared pattern resolves to NotFound.
func (r *Router) Resolve(path string) Route {
	return r.ResolveDetailed(path).Route
}

// ResolveDetailed is Resolve plus the canonical path and redirect target.
func (r *Router) ResolveDetailed(path string) Resolution {
	canon, err := CanonicalizePath(path)
	if err != nil {
		return Resolution{Route: NotFound{}}
	}

	v, ok, redirect := r.table.Match(canon.Path)
	switch {
	case ok && v != nil:
		return Resolution{Route: v, Path: canon.Path}
	case redirect:
		return Resolution{Route: NotFound{}, Path: canon.Path, RedirectTo: NotFoundPath}
	default:
		return Resolution{Route: NotFound{}, Path: canon.Path}
	}
}

var defaultRouter = New()

// Resolve resolves a path against the application route table.
func Resolve(path string) Route {
	return defaultRouter.Resolve(path)
}

// ResolveDetailed resolves a path against the application route table.
func ResolveDetailed(path string) Resolution {
	return defaultRouter.ResolveDetailed(path)
}

// DefaultTable returns the application route table:
//
//	/                   Home
//	/posts              PostList
//	/posts/:id          Post
//	/authors            AuthorList
//	/authors/:id        Author
//	/404                NotFound
//	/settings/profile   Settings{Profile}
//	/settings/friends   Settings{Friends}
//	/settings/theme     Settings{Theme}
//	/settings/404       redirect to /404
func DefaultTable() *Table[Route] {
	t := NewTable[Route]()
	t.Static("/", Home{})
	t.Static("/posts", PostList{})
	t.Page("/posts/:id:uint64", func(p Params) (Route, error) {
		id, err := p.Uint64("id")
		if err != nil {
			return nil, err
		}
		return Post{ID: id}, nil
	})
	t.Static("/authors", AuthorList{})
	t.Page("/authors/:id:uint64", func(p Params) (Route, error) {
		id, err := p.Uint64("id")
		if err != nil {
			return nil, err
		}
		return Author{ID: id}, nil
	})
	t.Static(NotFoundPath, NotFound{})

	Mount(t, "/settings", SettingsTable(), func(s SettingsRoute) (Route, bool) {
		if _, fallback := s.(SettingsNotFound); fallback {
			return nil, false
		}
		return Settings{Sub: s}, true
	})
	return t
}

// SettingsTable returns the nested settings route table.
func SettingsTable() *Table[SettingsRoute] {
	t := NewTable[SettingsRoute]()
	t.Static("/profile", Profile{})
	t.Static("/friends", Friends{})
	t.Static("/theme", Theme{})
	t.Static("/404", SettingsNotFound{})
	return t
}
