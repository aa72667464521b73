package router

import "fmt"

// Route is one page of the application. It is a closed set: Home,
// PostList, Post, AuthorList, Author, Settings and NotFound.
//
// Route values are comparable, so resolved routes can be compared with ==.
type Route interface {
	// Name returns the variant name, e.g. "Post".
	Name() string
	isRoute()
}

// Home is the landing page at "/".
type Home struct{}

// PostList lists posts at "/posts".
type PostList struct{}

// Post shows one post at "/posts/:id".
type Post struct {
	ID uint64
}

// AuthorList lists authors at "/authors".
type AuthorList struct{}

// Author shows one author at "/authors/:id".
type Author struct {
	ID uint64
}

// Settings is the nested settings scope at "/settings/*".
type Settings struct {
	Sub SettingsRoute
}

// NotFound is the fallback for every path that matches nothing.
type NotFound struct{}

func (Home) Name() string       { return "Home" }
func (PostList) Name() string   { return "PostList" }
func (Post) Name() string       { return "Post" }
func (AuthorList) Name() string { return "AuthorList" }
func (Author) Name() string     { return "Author" }
func (Settings) Name() string   { return "Settings" }
func (NotFound) Name() string   { return "NotFound" }

func (Home) isRoute()       {}
func (PostList) isRoute()   {}
func (Post) isRoute()       {}
func (AuthorList) isRoute() {}
func (Author) isRoute()     {}
func (Settings) isRoute()   {}
func (NotFound) isRoute()   {}

// String formats the route with its parameters.
func (p Post) String() string     { return fmt.Sprintf("Post{id:%d}", p.ID) }
func (a Author) String() string   { return fmt.Sprintf("Author{id:%d}", a.ID) }
func (s Settings) String() string { return "Settings{" + settingsName(s.Sub) + "}" }

// SettingsRoute is a page inside the settings scope. It is a closed set:
// Profile, Friends, Theme and SettingsNotFound.
type SettingsRoute interface {
	Name() string
	isSettingsRoute()
}

// Profile is "/settings/profile".
type Profile struct{}

// Friends is "/settings/friends".
type Friends struct{}

// Theme is "/settings/theme".
type Theme struct{}

// SettingsNotFound is the nested scope's own fallback ("/settings/404").
// The top-level router never returns it: it is re-mapped to NotFound.
type SettingsNotFound struct{}

func (Profile) Name() string          { return "Profile" }
func (Friends) Name() string          { return "Friends" }
func (Theme) Name() string            { return "Theme" }
func (SettingsNotFound) Name() string { return "SettingsNotFound" }

func (Profile) isSettingsRoute()          {}
func (Friends) isSettingsRoute()          {}
func (Theme) isSettingsRoute()            {}
func (SettingsNotFound) isSettingsRoute() {}

func settingsName(s SettingsRoute) string {
	if s == nil {
		return "<nil>"
	}
	return s.Name()
}

// PathOf returns the canonical path of a route. For every route that
// Resolve can return, Resolve(PathOf(r)) == r.
func PathOf(r Route) string {
	switch v := r.(type) {
	case nil:
		return "/404"
	case Home:
		return "/"
	case PostList:
		return "/posts"
	case Post:
		return fmt.Sprintf("/posts/%d", v.ID)
	case AuthorList:
		return "/authors"
	case Author:
		return fmt.Sprintf("/authors/%d", v.ID)
	case Settings:
		return "/settings" + settingsPathOf(v.Sub)
	case NotFound:
		return "/404"
	default:
		panic(fmt.Sprintf("router: unknown route variant %T", r))
	}
}

func settingsPathOf(s SettingsRoute) string {
	switch s.(type) {
	case Profile:
		return "/profile"
	case Friends:
		return "/friends"
	case Theme:
		return "/theme"
	case SettingsNotFound, nil:
		return "/404"
	default:
		panic(fmt.Sprintf("router: unknown settings route variant %T", s))
	}
}
