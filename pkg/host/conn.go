package host

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/floaties-dev/floaties/internal/errors"
	"github.com/floaties-dev/floaties/pkg/auth"
	"github.com/floaties-dev/floaties/pkg/loop"
	"github.com/floaties-dev/floaties/pkg/middleware"
	"github.com/floaties-dev/floaties/pkg/router"
	"github.com/floaties-dev/floaties/pkg/shell"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 4096
	outboxSize     = 16
)

// message is an intent sent by the client script.
type message struct {
	Type    string `json:"type"`
	Arg     string `json:"arg"`
	Replace bool   `json:"replace,omitempty"`
}

// frame is sent to the client. A render frame carries HTML and Title, plus
// Path when the browser URL has to change. An open frame carries only
// Open, the URL of the login window.
type frame struct {
	HTML    string `json:"html,omitempty"`
	Path    string `json:"path,omitempty"`
	Title   string `json:"title,omitempty"`
	Replace bool   `json:"replace,omitempty"`
	Open    string `json:"open,omitempty"`
}

var (
	errUnknownIntent = stderrors.New("unknown intent")
	errLoginRunning  = fmt.Errorf("login: session is not logged out: %w", middleware.ErrNoEffect)
	errNoRefetch     = fmt.Errorf("refetch: no content page mounted: %w", middleware.ErrNoEffect)
)

// conn is one websocket connection and the runtime instance behind it.
// Everything below the loop-owned marker is touched only by loop events.
type conn struct {
	id         string
	ws         *websocket.Conn
	logger     *slog.Logger
	metrics    *Metrics
	middleware []middleware.Middleware
	loop       *loop.Loop
	out        chan frame
	writerDone chan struct{}

	ctx    context.Context
	cancel context.CancelFunc

	// loop-owned
	shell    *shell.Shell
	lastHTML string
	lastPath string
	replace  bool
}

func (s *Server) handleSocket(w http.ResponseWriter, r *http.Request) {
	path := "/"
	if requested := r.URL.Query().Get("path"); requested != "" {
		canonical, err := router.CanonicalizeAndValidateNavPath(requested)
		if err != nil {
			s.logger.Warn("initial path rejected", "path", requested, "error", err)
		} else {
			path = canonical
		}
	}

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	c := s.newConn(context.WithoutCancel(r.Context()), ws, path)
	if !s.track(c) {
		c.cancel()
		_ = ws.Close()
		return
	}
	defer s.untrack(c)

	c.logger.Info("connection opened", "path", path)
	err = c.serve()
	c.logger.Info("connection closed", "error", err)
}

func (s *Server) newConn(parent context.Context, ws *websocket.Conn, path string) *conn {
	id := uuid.NewString()
	c := &conn{
		id:         id,
		ws:         ws,
		logger:     s.logger.With("conn_id", id),
		metrics:    s.metrics,
		middleware: s.middleware,
		out:        make(chan frame, outboxSize),
		writerDone: make(chan struct{}),
	}
	c.ctx, c.cancel = context.WithCancel(auth.WithOpener(parent, c.open))
	c.loop = loop.New(loop.WithLogger(c.logger), loop.WithAfterEvent(c.flush))

	gate := auth.NewGate(auth.NewSession(), s.config.Provider, c.loop, auth.WithLogger(c.logger))
	c.shell = shell.New(gate, router.NewMemoryHistory(path), s.config.Fetcher, c.loop,
		append(s.shellOptions(),
			shell.WithContext(c.ctx),
			shell.WithLogger(c.logger),
		)...)
	return c
}

// serve runs the connection until the client goes away or the server
// cancels it.
func (c *conn) serve() error {
	defer c.cancel()
	c.ws.SetReadLimit(maxMessageSize)

	g, ctx := errgroup.WithContext(c.ctx)
	g.Go(func() error {
		return c.loop.Run(ctx)
	})
	g.Go(func() error {
		return c.writeLoop(ctx)
	})
	g.Go(func() error {
		return c.readLoop()
	})
	g.Go(func() error {
		<-ctx.Done()
		c.loop.Close()
		return c.ws.Close()
	})

	// The first event renders the initial view.
	c.loop.Dispatch(func() {})

	err := g.Wait()
	c.shell.Close()

	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, loop.ErrClosed) ||
		websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
		return nil
	}
	return err
}

func (c *conn) readLoop() error {
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			return err
		}
		var msg message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.reject("invalid", err)
			continue
		}
		c.handle(msg)
	}
}

func (c *conn) writeLoop(ctx context.Context) error {
	defer close(c.writerDone)
	for {
		select {
		case <-ctx.Done():
			return nil
		case f := <-c.out:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteJSON(f); err != nil {
				c.metrics.writeError()
				return err
			}
			c.metrics.frame(len(f.HTML))
		}
	}
}

// handle validates an intent on the reader goroutine and dispatches its
// effect onto the loop.
func (c *conn) handle(msg message) {
	switch msg.Type {
	case router.IntentNavigate:
		path, err := router.CanonicalizeAndValidateNavPath(msg.Arg)
		if err != nil {
			c.reject(msg.Type, err)
			return
		}
		c.dispatch(msg, func(*middleware.Event) error {
			if msg.Replace {
				c.replace = true
				c.shell.Restore(path)
				return nil
			}
			c.shell.Navigate(path)
			return nil
		})
	case shell.IntentToggle:
		c.dispatch(msg, func(*middleware.Event) error {
			c.shell.ToggleNav()
			return nil
		})
	case shell.IntentLogin:
		c.dispatch(msg, func(ev *middleware.Event) error {
			if !c.shell.StartLogin(ev.Context()) {
				return errLoginRunning
			}
			return nil
		})
	case shell.IntentLogout:
		c.dispatch(msg, func(ev *middleware.Event) error {
			c.shell.Logout(ev.Context())
			return nil
		})
	case shell.IntentRefetch:
		c.dispatch(msg, func(*middleware.Event) error {
			if !c.shell.Refetch() {
				return errNoRefetch
			}
			return nil
		})
	default:
		c.reject("unknown", errUnknownIntent)
	}
}

// dispatch queues fn on the loop, wrapped in the middleware chain.
func (c *conn) dispatch(msg message, fn func(*middleware.Event) error) {
	ev := middleware.NewEvent(c.ctx, msg.Type, msg.Arg, c.id)
	queued := c.loop.Dispatch(func() {
		ev.Path = c.shell.Path()
		err := middleware.Run(ev, c.middleware, func() error {
			return fn(ev)
		})
		if err != nil {
			c.logger.Debug("intent not applied", "type", ev.Type, "error", err)
		}
	})
	if queued {
		c.metrics.intent(msg.Type, OutcomeAccepted)
	}
}

// reject logs a bad client message. The connection stays open.
func (c *conn) reject(kind string, err error) {
	c.logger.Warn("intent rejected", "type", kind, "error", errors.New("F203").Wrap(err))
	c.metrics.intent(kind, OutcomeRejected)
}

// flush runs after every loop event and sends a frame when the view or
// the path changed.
func (c *conn) flush() {
	html, err := c.shell.HTML()
	if err != nil {
		c.logger.Error("render failed", "error", err)
		return
	}
	path := c.shell.Path()
	replace := c.replace
	c.replace = false
	if html == c.lastHTML && path == c.lastPath {
		return
	}

	f := frame{HTML: html, Title: c.shell.Title()}
	if path != c.lastPath {
		f.Path = path
		f.Replace = replace || c.shell.Redirected()
	}
	c.lastHTML, c.lastPath = html, path
	c.send(f)
}

// open is the connection's auth.Opener. It may run on any goroutine.
func (c *conn) open(url string) {
	c.logger.Debug("opening login window", "url", url)
	c.send(frame{Open: url})
}

// send queues f for the writer. Once the writer has stopped, f is dropped.
func (c *conn) send(f frame) {
	select {
	case c.out <- f:
	case <-c.writerDone:
	case <-c.ctx.Done():
	}
}
