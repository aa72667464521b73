package middleware

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/trace"
)

// ErrNoEffect is wrapped by intent handlers that ran but changed nothing,
// e.g. a refetch with no content page mounted.
var ErrNoEffect = errors.New("intent had no effect")

// Event is one client intent as it runs on a connection's event loop.
type Event struct {
	// Type is the intent type ("navigate", "toggle", ...).
	Type string

	// Arg is the intent argument, e.g. the navigation target.
	Arg string

	// ConnID identifies the connection.
	ConnID string

	// Path is the browser path when the event started.
	Path string

	ctx  context.Context
	span trace.Span
}

// NewEvent creates an event whose handlers run under ctx.
func NewEvent(ctx context.Context, typ, arg, connID string) *Event {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Event{Type: typ, Arg: arg, ConnID: connID, ctx: ctx}
}

// Context returns the context handlers should pass to blocking calls. It
// carries the event's span when tracing is on.
func (e *Event) Context() context.Context {
	return e.ctx
}

// Middleware wraps the handling of one event.
type Middleware interface {
	Handle(ev *Event, next func() error) error
}

// MiddlewareFunc adapts a function to Middleware.
type MiddlewareFunc func(ev *Event, next func() error) error

// Handle implements Middleware.
func (f MiddlewareFunc) Handle(ev *Event, next func() error) error {
	return f(ev, next)
}

// Run calls handler through mws, the first middleware outermost.
func Run(ev *Event, mws []Middleware, handler func() error) error {
	if len(mws) == 0 {
		return handler()
	}
	return mws[0].Handle(ev, func() error {
		return Run(ev, mws[1:], handler)
	})
}
