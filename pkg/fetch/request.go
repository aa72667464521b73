package fetch

import (
	"context"
	"log/slog"
	"time"

	"github.com/floaties-dev/floaties/pkg/loop"
)

// Op performs the asynchronous part of a request. It runs off the event
// loop and is the only place a request suspends.
type Op[T any] func(ctx context.Context) (T, error)

// Request tracks the state of the fetches issued by one component
// instance.
//
// A Request is owned by the event loop: Start, Apply, Abandon and State
// must only be called from loop events. Completions of in-flight
// operations are handed back through the Dispatcher, so they are
// serialized with everything else.
type Request[T any] struct {
	name     string
	dispatch loop.Dispatcher
	guard    func() bool
	logger   *slog.Logger
	metrics  *Metrics
	now      func() time.Time

	state     State[T]
	seq       uint64
	abandoned bool
	listeners []func(State[T])
}

// RequestOption configures a Request.
type RequestOption func(*requestConfig)

type requestConfig struct {
	name    string
	guard   func() bool
	logger  *slog.Logger
	metrics *Metrics
	now     func() time.Time
}

// WithName labels the request in logs.
func WithName(name string) RequestOption {
	return func(c *requestConfig) {
		c.name = name
	}
}

// WithGuard installs a liveness check consulted before a completion is
// applied. When it returns false the completion is discarded as stale.
// The shell passes the navigator's generation guard here.
func WithGuard(guard func() bool) RequestOption {
	return func(c *requestConfig) {
		c.guard = guard
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) RequestOption {
	return func(c *requestConfig) {
		c.logger = logger
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *Metrics) RequestOption {
	return func(c *requestConfig) {
		c.metrics = m
	}
}

// WithClock overrides the time source used for duration metrics.
func WithClock(now func() time.Time) RequestOption {
	return func(c *requestConfig) {
		c.now = now
	}
}

// NewRequest creates a Request in the NotFetching state.
func NewRequest[T any](d loop.Dispatcher, opts ...RequestOption) *Request[T] {
	cfg := requestConfig{
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	if cfg.now == nil {
		cfg.now = time.Now
	}

	return &Request[T]{
		name:     cfg.name,
		dispatch: d,
		guard:    cfg.guard,
		logger:   cfg.logger,
		metrics:  cfg.metrics,
		now:      cfg.now,
		state:    NotFetching[T]{},
	}
}

// State returns the current state.
func (r *Request[T]) State() State[T] {
	return r.state
}

// OnChange registers fn to be called after every applied transition.
func (r *Request[T]) OnChange(fn func(State[T])) {
	if fn != nil {
		r.listeners = append(r.listeners, fn)
	}
}

// Apply applies ev to the current state. Illegal transitions are logged
// and ignored; the state is left unchanged.
func (r *Request[T]) Apply(ev Event[T]) State[T] {
	next, err := Transition(r.state, ev)
	if err != nil {
		r.metrics.recordIllegal()
		r.logger.Warn("ignoring illegal fetch transition",
			"request", r.name,
			"from", KindOf(r.state).String(),
			"event", EventName(ev),
			"error", err)
		return r.state
	}
	r.state = next
	for _, fn := range r.listeners {
		fn(next)
	}
	return next
}

// Start moves the request to Fetching and runs op off the loop. When op
// returns, its result is dispatched back and applied unless the request
// was superseded by a later Start, abandoned, or the guard reports it is
// stale. Start returns false if the request has been abandoned.
//
// Start does not cancel an earlier in-flight op; the earlier completion is
// simply discarded when it arrives.
func (r *Request[T]) Start(ctx context.Context, op Op[T]) bool {
	if r.abandoned {
		r.logger.Debug("start on abandoned request ignored", "request", r.name)
		return false
	}

	r.Apply(StartFetch[T]{})
	r.seq++
	seq := r.seq
	started := r.now()
	r.metrics.recordStarted()

	go func() {
		data, err := op(ctx)
		ok := r.dispatch.Dispatch(func() {
			r.complete(seq, started, data, err)
		})
		if !ok {
			r.logger.Debug("fetch completion dropped, loop closed", "request", r.name)
		}
	}()
	return true
}

// complete runs on the loop.
func (r *Request[T]) complete(seq uint64, started time.Time, data T, err error) {
	switch {
	case r.abandoned:
		r.discard(DiscardAbandoned, seq)
		return
	case seq != r.seq:
		r.discard(DiscardSuperseded, seq)
		return
	case r.guard != nil && !r.guard():
		r.discard(DiscardStale, seq)
		return
	}

	elapsed := r.now().Sub(started).Seconds()
	if err != nil {
		r.metrics.recordCompleted(OutcomeFailed, elapsed)
		r.Apply(Rejected[T]{Err: err})
		return
	}
	r.metrics.recordCompleted(OutcomeSuccess, elapsed)
	r.Apply(Resolved[T]{Data: data})
}

func (r *Request[T]) discard(reason string, seq uint64) {
	r.metrics.recordDiscarded(reason)
	r.logger.Debug("discarding fetch completion",
		"request", r.name,
		"reason", reason,
		"seq", seq,
		"current_seq", r.seq)
}

// Abandon detaches the request from its component. The state is frozen and
// every later completion is discarded. Abandon is idempotent.
func (r *Request[T]) Abandon() {
	r.abandoned = true
	r.listeners = nil
}

// Abandoned reports whether Abandon has been called.
func (r *Request[T]) Abandoned() bool {
	return r.abandoned
}
