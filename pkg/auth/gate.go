package auth

import (
	"context"
	"log/slog"

	"github.com/floaties-dev/floaties/pkg/loop"
)

// Gate decides whether protected content may be shown and drives the
// login/logout actions against a Provider. The Gate never mutates the
// session directly from a background goroutine: Provider results are
// dispatched back onto the event loop.
//
// Gate is owned by the event loop and is not safe for concurrent use.
type Gate struct {
	session  *Session
	provider Provider
	dispatch loop.Dispatcher
	logger   *slog.Logger

	// attempt identifies the current login; a logout or a new login bumps
	// it so a late Authorize result can be recognised and dropped.
	attempt  uint64
	cancel   context.CancelFunc
	returnTo string
}

// GateOption configures a Gate.
type GateOption func(*Gate)

// WithLogger sets the gate's logger.
func WithLogger(l *slog.Logger) GateOption {
	return func(g *Gate) {
		if l != nil {
			g.logger = l
		}
	}
}

// NewGate creates a gate over session. Provider completions are delivered
// through d.
func NewGate(session *Session, provider Provider, d loop.Dispatcher, opts ...GateOption) *Gate {
	g := &Gate{
		session:  session,
		provider: provider,
		dispatch: d,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Session returns the session the gate reads.
func (g *Gate) Session() *Session {
	return g.session
}

// Decision returns Decide applied to the current status.
func (g *Gate) Decision() Decision {
	return Decide(g.session.Status())
}

// ReturnTo is the path the user asked for when the current (or last)
// login started.
func (g *Gate) ReturnTo() string {
	return g.returnTo
}

// StartLogin moves an Unauthenticated session to Authenticating and asks
// the provider to authorize. It reports false, doing nothing, when the
// session is not Unauthenticated.
func (g *Gate) StartLogin(ctx context.Context, returnTo string) bool {
	if _, ok := g.session.Status().(Unauthenticated); !ok {
		return false
	}

	g.attempt++
	attempt := g.attempt
	g.returnTo = returnTo

	authCtx, cancel := context.WithCancel(ctx)
	g.cancel = cancel
	g.session.begin()
	g.logger.Info("login started", "attempt", attempt, "return_to", returnTo)

	go func() {
		token, err := g.provider.Authorize(authCtx)
		g.dispatch.Dispatch(func() {
			g.completeLogin(attempt, token, err)
		})
	}()
	return true
}

func (g *Gate) completeLogin(attempt uint64, token Token, err error) {
	if attempt != g.attempt {
		g.logger.Debug("login result discarded", "attempt", attempt, "current_attempt", g.attempt)
		return
	}
	if _, ok := g.session.Status().(Authenticating); !ok {
		g.logger.Debug("login result discarded", "attempt", attempt, "status", g.session.Status().String())
		return
	}
	g.releaseAttempt()

	if err != nil {
		g.logger.Warn("login failed", "attempt", attempt, "error", err)
		g.session.Fail(err)
		return
	}
	g.logger.Info("login succeeded", "attempt", attempt, "token", token)
	g.session.Complete(token)
}

// Logout immediately makes the session Unauthenticated, so the next render
// shows the login prompt. Any in-flight login is abandoned and an issued
// token is revoked in the background; the revocation outcome is only
// logged.
func (g *Gate) Logout(ctx context.Context) {
	prev := g.session.Status()

	g.attempt++
	g.releaseAttempt()
	g.session.Clear()
	g.logger.Info("logged out", "previous_status", prev.String())

	authed, ok := prev.(Authenticated)
	if !ok {
		return
	}
	revokeCtx := context.WithoutCancel(ctx)
	go func() {
		if err := g.provider.Revoke(revokeCtx, authed.Token); err != nil {
			g.logger.Warn("token revocation failed", "error", err)
			return
		}
		g.logger.Debug("token revoked")
	}()
}

func (g *Gate) releaseAttempt() {
	if g.cancel != nil {
		g.cancel()
		g.cancel = nil
	}
}
