package shell

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/text/language"

	"github.com/floaties-dev/floaties/pkg/auth"
	"github.com/floaties-dev/floaties/pkg/fetch"
	"github.com/floaties-dev/floaties/pkg/loop"
	"github.com/floaties-dev/floaties/pkg/render"
	"github.com/floaties-dev/floaties/pkg/router"
	"github.com/floaties-dev/floaties/pkg/transport"
	"github.com/floaties-dev/floaties/pkg/vdom"
)

// Intents the shell's markup sends back. Navigation links use
// router.IntentNavigate.
const (
	IntentToggle  = "toggle"
	IntentLogin   = "login"
	IntentLogout  = "logout"
	IntentRefetch = "refetch"
)

// NavbarState is the collapsible navbar. Only the Shell mutates it.
type NavbarState struct {
	IsOpen bool
}

// Resolver maps a path to a route. *router.Router implements it.
type Resolver interface {
	ResolveDetailed(path string) router.Resolution
}

// History is the browser history the shell drives.
// *router.MemoryHistory implements it.
type History interface {
	router.History
	Push(path string)
	Replace(path string)
}

// Shell is the application root: navbar chrome, the auth gate around the
// routed content, and the mounted page.
//
// The chrome always renders. The routed content renders only when the gate
// decides Protected; until then the resolver is never called and no page
// (and so no fetch) exists.
//
// Shell is owned by the event loop and is not safe for concurrent use.
type Shell struct {
	gate     *auth.Gate
	history  History
	nav      *router.Navigator
	resolver Resolver
	fetcher  transport.Fetcher
	dispatch loop.Dispatcher

	ctx       context.Context
	name      string
	locale    language.Tag
	baseURL   string
	condition string
	timeout   time.Duration
	logger    *slog.Logger
	metrics   *fetch.Metrics
	renderer  *render.Renderer
	onRender  []func(*vdom.VNode)
	observers []func(router.Route, fetch.Kind)

	navbar      NavbarState
	mounted     *mount
	redirected  bool
	unsubscribe func()
}

// Option configures a Shell.
type Option func(*Shell)

// WithName sets the navbar brand and page title.
func WithName(name string) Option {
	return func(s *Shell) {
		if name != "" {
			s.name = name
		}
	}
}

// WithLocale sets the lang attribute of the rendered root. Nothing is
// translated.
func WithLocale(tag language.Tag) Option {
	return func(s *Shell) {
		s.locale = tag
	}
}

// WithResolver replaces the default route table.
func WithResolver(r Resolver) Option {
	return func(s *Shell) {
		if r != nil {
			s.resolver = r
		}
	}
}

// WithBaseURL sets the content API that page URLs are joined onto.
func WithBaseURL(base string) Option {
	return func(s *Shell) {
		s.baseURL = base
	}
}

// WithCondition sets the request body sent with every fetch.
func WithCondition(body string) Option {
	return func(s *Shell) {
		s.condition = body
	}
}

// WithFetchTimeout bounds each page fetch. Zero, the default, means no
// timeout: a hung request stays Fetching.
func WithFetchTimeout(d time.Duration) Option {
	return func(s *Shell) {
		s.timeout = d
	}
}

// WithContext sets the parent context of page fetches and logins.
func WithContext(ctx context.Context) Option {
	return func(s *Shell) {
		if ctx != nil {
			s.ctx = ctx
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Shell) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics records page fetches in m.
func WithMetrics(m *fetch.Metrics) Option {
	return func(s *Shell) {
		s.metrics = m
	}
}

// WithFetchObserver calls fn with the mounted route and the new state
// kind whenever a page's request changes, starting with its initial
// NotFetching.
func WithFetchObserver(fn func(router.Route, fetch.Kind)) Option {
	return func(s *Shell) {
		if fn != nil {
			s.observers = append(s.observers, fn)
		}
	}
}

// New creates a shell over gate. The navigator starts at the history's
// current path, and every history navigation becomes a new generation.
func New(gate *auth.Gate, history History, fetcher transport.Fetcher, d loop.Dispatcher, opts ...Option) *Shell {
	s := &Shell{
		gate:     gate,
		history:  history,
		nav:      router.NewNavigator(history.CurrentPath()),
		resolver: router.New(),
		fetcher:  fetcher,
		dispatch: d,
		ctx:      context.Background(),
		name:     "Floaties",
		locale:   language.English,
		logger:   slog.Default(),
		renderer: render.NewRenderer(render.RendererConfig{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	history.OnNavigate(func(path string) {
		s.nav.Navigate(path)
	})
	s.nav.OnNavigate(func(loc router.Location) {
		s.logger.Debug("navigated", "path", loc.Path, "generation", loc.Generation)
		s.unmount("navigated")
	})
	s.unsubscribe = gate.Session().Subscribe(func(status auth.SessionStatus) {
		if _, ok := status.(auth.Authenticated); ok {
			s.returnAfterLogin()
		}
		if auth.Decide(status) != auth.Protected {
			s.unmount("session " + status.String())
		}
	})
	return s
}

// ToggleNav opens or closes the navbar menu.
func (s *Shell) ToggleNav() {
	s.navbar.IsOpen = !s.navbar.IsOpen
}

// Navbar returns the navbar state.
func (s *Shell) Navbar() NavbarState {
	return s.navbar
}

// Navigate pushes path onto the history, starting a new generation.
func (s *Shell) Navigate(path string) {
	s.history.Push(path)
}

// Restore follows a history traversal the browser already made (back,
// forward): the current entry is replaced rather than pushed.
func (s *Shell) Restore(path string) {
	s.history.Replace(path)
	s.nav.Navigate(path)
}

// StartLogin asks the gate to log in, returning to the current path.
func (s *Shell) StartLogin(ctx context.Context) bool {
	return s.gate.StartLogin(ctx, s.history.CurrentPath())
}

// returnAfterLogin goes back to the path the login started from when the
// user navigated elsewhere while it ran.
func (s *Shell) returnAfterLogin() {
	target := s.gate.ReturnTo()
	if target == "" || target == s.history.CurrentPath() {
		return
	}
	s.logger.Info("returning after login", "path", target, "from", s.history.CurrentPath())
	s.history.Push(target)
}

// Logout logs out and unmounts the page in the same call.
func (s *Shell) Logout(ctx context.Context) {
	s.gate.Logout(ctx)
	s.unmount("logout")
}

// Refetch restarts the mounted page's request. It reports false when no
// page is mounted or the page does not fetch.
func (s *Shell) Refetch() bool {
	if s.mounted == nil {
		return false
	}
	p, ok := s.mounted.page.(refetcher)
	if !ok {
		return false
	}
	return p.load()
}

// Path is the path the browser should show.
func (s *Shell) Path() string {
	return s.history.CurrentPath()
}

// Redirected reports whether the mounted page came from a router
// redirect, in which case the browser entry should be replaced.
func (s *Shell) Redirected() bool {
	return s.redirected
}

// Route returns the mounted route, or nil when nothing is mounted.
func (s *Shell) Route() router.Route {
	if s.mounted == nil {
		return nil
	}
	return s.mounted.res.Route
}

// Generation returns the current navigation generation.
func (s *Shell) Generation() uint64 {
	return s.nav.Generation()
}

// Title returns the document title for the current view.
func (s *Shell) Title() string {
	if s.mounted == nil {
		return s.name
	}
	return s.mounted.page.Title() + " | " + s.name
}

// OnRender registers fn to receive every tree Render produces.
func (s *Shell) OnRender(fn func(*vdom.VNode)) {
	if fn != nil {
		s.onRender = append(s.onRender, fn)
	}
}

// Render brings the mounted page in line with the gate and the current
// location, then builds the tree.
func (s *Shell) Render() *vdom.VNode {
	s.sync()

	var content *vdom.VNode
	var current router.Route
	switch d := s.gate.Decision(); d {
	case auth.Protected:
		current = s.mounted.res.Route
		content = s.mounted.page.Render()
	case auth.LoginPrompt:
		content = s.loginPrompt()
	default:
		panic(fmt.Sprintf("shell: unhandled decision %v", d))
	}

	root := vdom.Div(
		vdom.ID("shell"),
		vdom.Lang(s.locale.String()),
		s.chrome(current),
		vdom.Main(vdom.Class("content"), content),
	)
	for _, fn := range s.onRender {
		fn(root)
	}
	return root
}

// HTML renders the tree to a string.
func (s *Shell) HTML() (string, error) {
	return s.renderer.RenderToString(s.Render())
}

// Close unsubscribes from the session and unmounts the page.
func (s *Shell) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
	s.unmount("closed")
}
