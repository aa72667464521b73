// Package loop provides the serialized event queue that drives a runtime
// instance.
//
// Every state transition in the runtime (navigation, toggles, fetch
// completions, login results) runs as a discrete event on one goroutine.
// Work that has to wait on the outside world runs elsewhere and hands its
// result back with Dispatch:
//
//	go func() {
//	    body, err := fetcher.FetchText(ctx, url, "")
//	    l.Dispatch(func() {
//	        // runs on the loop, serialized with everything else
//	    })
//	}()
//
// Because events never interleave, the state they touch needs no locks.
package loop

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
)

// DefaultQueueSize is the event queue capacity used when none is configured.
const DefaultQueueSize = 256

// ErrClosed is returned when the loop has been closed.
var ErrClosed = errors.New("loop: closed")

// Dispatcher schedules a function on a serialized event loop.
// It is the only thing asynchronous producers need from a Loop.
type Dispatcher interface {
	Dispatch(fn func()) bool
}

// Loop is a single-consumer event queue.
type Loop struct {
	queue  chan func()
	done   chan struct{}
	closed atomic.Bool
	once   sync.Once

	logger *slog.Logger
	after  func()

	processed atomic.Uint64
	panics    atomic.Uint64
}

// Option configures a Loop.
type Option func(*Loop)

// WithQueueSize sets the event queue capacity.
func WithQueueSize(n int) Option {
	return func(l *Loop) {
		if n > 0 {
			l.queue = make(chan func(), n)
		}
	}
}

// WithLogger sets the logger used for recovered panics.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loop) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithAfterEvent registers a hook that runs on the loop after every event.
// The shell uses it to re-render once per event.
func WithAfterEvent(fn func()) Option {
	return func(l *Loop) {
		l.after = fn
	}
}

// New creates a Loop. It does not start processing until Run, Step or
// Drain is called.
func New(opts ...Option) *Loop {
	l := &Loop{
		queue:  make(chan func(), DefaultQueueSize),
		done:   make(chan struct{}),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Dispatch queues fn to run on the loop. It is safe to call from any
// goroutine. It blocks while the queue is full and returns false once the
// loop is closed, in which case fn never runs.
//
// Dispatch must not be called from the loop goroutine while the queue is
// full; event handlers call each other directly instead.
func (l *Loop) Dispatch(fn func()) bool {
	if fn == nil || l.closed.Load() {
		return false
	}
	select {
	case l.queue <- fn:
		return true
	case <-l.done:
		return false
	}
}

// Run processes events until ctx is cancelled or Close is called.
func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.done:
			return ErrClosed
		case fn := <-l.queue:
			l.execute(fn)
		}
	}
}

// Step blocks until one event is available and processes it.
func (l *Loop) Step(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		return ErrClosed
	case fn := <-l.queue:
		l.execute(fn)
		return nil
	}
}

// Drain processes every event that is already queued without waiting for
// new ones. It returns the number of events processed.
func (l *Loop) Drain() int {
	n := 0
	for {
		select {
		case fn := <-l.queue:
			l.execute(fn)
			n++
		default:
			return n
		}
	}
}

// Pending returns the number of queued events.
func (l *Loop) Pending() int {
	return len(l.queue)
}

// Processed returns the number of events executed so far.
func (l *Loop) Processed() uint64 {
	return l.processed.Load()
}

// Panics returns the number of handler panics recovered so far.
func (l *Loop) Panics() uint64 {
	return l.panics.Load()
}

// Close stops the loop. Queued events are discarded.
func (l *Loop) Close() {
	l.once.Do(func() {
		l.closed.Store(true)
		close(l.done)
	})
}

// Done is closed when the loop is closed.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// execute runs one event and the after-event hook, recovering panics so a
// faulty handler cannot take down the runtime.
func (l *Loop) execute(fn func()) {
	l.safeCall(fn)
	l.processed.Add(1)
	if l.after != nil {
		l.safeCall(l.after)
	}
}

func (l *Loop) safeCall(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.panics.Add(1)
			l.logger.Error("event handler panic",
				"panic", fmt.Sprint(r),
				"stack", string(debug.Stack()))
		}
	}()
	fn()
}

// Immediate is a Dispatcher that runs functions synchronously on the
// calling goroutine. It is meant for tests and single-threaded tools where
// there is no separate loop goroutine.
type Immediate struct{}

// Dispatch runs fn immediately.
func (Immediate) Dispatch(fn func()) bool {
	if fn == nil {
		return false
	}
	fn()
	return true
}
