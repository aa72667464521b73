package host

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/floaties-dev/floaties/internal/errors"
	"github.com/floaties-dev/floaties/pkg/auth"
	"github.com/floaties-dev/floaties/pkg/fetch"
	"github.com/floaties-dev/floaties/pkg/loop"
	"github.com/floaties-dev/floaties/pkg/middleware"
	"github.com/floaties-dev/floaties/pkg/render"
	"github.com/floaties-dev/floaties/pkg/router"
	"github.com/floaties-dev/floaties/pkg/shell"
)

// Routes served by Handler.
const (
	SocketPath   = "/ws"
	HealthPath   = "/healthz"
	MetricsPath  = "/metrics"
	LoginPath    = "/auth/login"
	CallbackPath = "/auth/callback"
)

const pageStyles = `body{margin:0;font-family:system-ui,sans-serif}
.navbar{display:flex;flex-wrap:wrap;align-items:center;gap:1rem;padding:.75rem 1rem;border-bottom:1px solid #ddd}
.navbar-burger{display:none}
.navbar-menu{display:flex;gap:1rem;flex:1}
.nav-link.is-active{font-weight:600}
.content{padding:1rem}
.tabs ul{display:flex;gap:1rem;list-style:none;padding:0}
.tabs li.is-active a{text-decoration:underline}
@media (max-width:640px){.navbar-burger{display:block}.navbar-menu{display:none;flex-basis:100%;flex-direction:column}.navbar-menu.is-active{display:flex}}`

// Server hosts one shell per websocket connection.
//
// The initial GET renders a static page (the login prompt, since a fresh
// connection is never authenticated) with the client script. The script
// opens /ws, and from then on the connection's event loop owns all state
// and pushes a frame after every event that changed the view.
type Server struct {
	config   *Config
	logger   *slog.Logger
	upgrader websocket.Upgrader
	renderer *render.Renderer
	resolver *router.Router

	metrics      *Metrics
	fetchMetrics *fetch.Metrics
	callbacks    *auth.CallbackProvider
	middleware   []middleware.Middleware

	handler http.Handler

	mu      sync.Mutex
	conns   map[*conn]struct{}
	closing bool
}

// New creates a Server. A nil config uses DefaultConfig.
func New(config *Config) *Server {
	config = config.withDefaults()

	s := &Server{
		config: config,
		logger: config.Logger.With("component", "host"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     config.CheckOrigin,
		},
		renderer: render.NewRenderer(render.RendererConfig{}),
		resolver: router.New(),
		conns:    make(map[*conn]struct{}),
	}
	s.middleware = append(s.middleware, middleware.OpenTelemetry(middleware.WithTracerName("floaties/host")))
	if config.Registry != nil {
		s.middleware = append(s.middleware, middleware.Prometheus(
			middleware.WithNamespace(config.Namespace),
			middleware.WithRegistry(config.Registry),
		))
		s.metrics = NewMetrics(MetricsConfig{
			Namespace: config.Namespace,
			Registry:  config.Registry,
		})
		s.fetchMetrics = fetch.NewMetrics(fetch.MetricsConfig{
			Namespace: config.Namespace,
			Registry:  config.Registry,
		})
	}
	s.middleware = append(s.middleware, config.Middleware...)
	if cp, ok := config.Provider.(*auth.CallbackProvider); ok {
		s.callbacks = cp
	}
	s.handler = s.routes()
	return s
}

// Handler returns the HTTP handler serving pages, the socket, health,
// metrics and the login callback routes.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)

	r.Get(HealthPath, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})
	if s.config.Registry != nil {
		r.Handle(MetricsPath, promhttp.HandlerFor(s.config.Registry, promhttp.HandlerOpts{}))
	}
	r.Get(SocketPath, s.handleSocket)
	if s.callbacks != nil {
		r.Get(LoginPath, s.handleLogin)
		r.Get(CallbackPath, s.handleCallback)
	}
	r.Get("/*", s.handlePage)
	return r
}

// ListenAndServe listens on the configured address and serves until ctx
// is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return errors.New("F201").
			WithDetail("Could not listen on " + s.config.Addr).
			Wrap(err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then closes every connection
// and shuts down within the configured timeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: s.config.ReadHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("server starting", "address", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			return errors.New("F201").Wrap(err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("shutting down...")
		s.closeConns()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.config.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return errors.New("F202").Wrap(err)
		}
		s.logger.Info("server shutdown complete")
		return nil
	})
	return g.Wait()
}

// Connections returns the number of open websocket connections.
func (s *Server) Connections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

func (s *Server) track(c *conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closing {
		return false
	}
	s.conns[c] = struct{}{}
	s.metrics.connOpened()
	return true
}

func (s *Server) untrack(c *conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.conns[c]; ok {
		delete(s.conns, c)
		s.metrics.connClosed()
	}
}

// closeConns stops accepting sockets and cancels the open ones. Hijacked
// connections are not covered by http.Server.Shutdown.
func (s *Server) closeConns() {
	s.mu.Lock()
	s.closing = true
	conns := make([]*conn, 0, len(s.conns))
	for c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	for _, c := range conns {
		c.cancel()
	}
}

// shellOptions are the options every shell gets from the config.
func (s *Server) shellOptions() []shell.Option {
	return []shell.Option{
		shell.WithName(s.config.Name),
		shell.WithLocale(s.config.Locale),
		shell.WithResolver(s.resolver),
		shell.WithBaseURL(s.config.BaseURL),
		shell.WithCondition(s.config.Condition),
		shell.WithFetchTimeout(s.config.FetchTimeout),
		shell.WithMetrics(s.fetchMetrics),
	}
}

// handlePage renders the bootstrap document for any app path. The body is
// what a fresh connection shows first, so the page is usable before the
// socket opens.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	path, err := router.CanonicalizeAndValidateNavPath(r.URL.RequestURI())
	if err != nil {
		http.Error(w, "invalid path", http.StatusBadRequest)
		return
	}
	if requested := r.URL.RequestURI(); path != requested {
		http.Redirect(w, r, path, http.StatusMovedPermanently)
		return
	}

	gate := auth.NewGate(auth.NewSession(), s.config.Provider, loop.Immediate{})
	sh := shell.New(gate, router.NewMemoryHistory(path), s.config.Fetcher, loop.Immediate{},
		append(s.shellOptions(), shell.WithLogger(s.logger))...)
	defer sh.Close()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err = s.renderer.RenderPage(w, render.PageData{
		Body:       sh.Render(),
		Title:      sh.Title(),
		Lang:       s.config.Locale.String(),
		Styles:     []string{pageStyles},
		SocketPath: SocketPath,
	})
	if err != nil {
		s.logger.Error("page render failed", "path", path, "error", err)
	}
}
