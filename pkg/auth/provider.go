package auth

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Provider is the external authorization capability. The token exchange
// itself is a black box: Authorize blocks until the user has logged in (or
// failed to) and Revoke invalidates an issued token.
type Provider interface {
	Authorize(ctx context.Context) (Token, error)
	Revoke(ctx context.Context, token Token) error
}

var (
	// ErrUnauthorized is returned when the provider denied the login.
	ErrUnauthorized = errors.New("unauthorized: login denied")

	// ErrUnknownState is returned for a callback whose state key does not
	// belong to a pending login.
	ErrUnknownState = errors.New("unknown or expired login state")

	// ErrNoOpener is returned when a provider needs to send the user
	// somewhere but the context carries no Opener.
	ErrNoOpener = errors.New("no opener in context")
)

// StatusCode returns the HTTP status code for an auth error.
// Returns (statusCode, true) for auth errors, (0, false) otherwise.
func StatusCode(err error) (int, bool) {
	if err == nil {
		return 0, false
	}
	switch {
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, true
	case errors.Is(err, ErrUnknownState):
		return http.StatusBadRequest, true
	default:
		return 0, false
	}
}

// StaticProvider authorizes immediately with a fixed token. It is meant
// for development and tests.
type StaticProvider struct {
	Token Token
	// Err, if set, is returned instead of the token.
	Err error
}

// Authorize implements Provider.
func (p StaticProvider) Authorize(ctx context.Context) (Token, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if p.Err != nil {
		return "", p.Err
	}
	return p.Token, nil
}

// Revoke implements Provider.
func (StaticProvider) Revoke(context.Context, Token) error { return nil }

// FuncProvider adapts two functions to Provider. A nil RevokeFunc makes
// Revoke a no-op.
type FuncProvider struct {
	AuthorizeFunc func(ctx context.Context) (Token, error)
	RevokeFunc    func(ctx context.Context, token Token) error
}

// Authorize implements Provider.
func (p FuncProvider) Authorize(ctx context.Context) (Token, error) {
	return p.AuthorizeFunc(ctx)
}

// Revoke implements Provider.
func (p FuncProvider) Revoke(ctx context.Context, token Token) error {
	if p.RevokeFunc == nil {
		return nil
	}
	return p.RevokeFunc(ctx, token)
}

// Opener asks the user agent to visit a URL, e.g. a login page in a popup.
type Opener func(url string)

type openerKey struct{}

// WithOpener returns a context carrying open.
func WithOpener(ctx context.Context, open Opener) context.Context {
	return context.WithValue(ctx, openerKey{}, open)
}

// OpenerFrom returns the Opener carried by ctx.
func OpenerFrom(ctx context.Context) (Opener, bool) {
	open, ok := ctx.Value(openerKey{}).(Opener)
	return open, ok && open != nil
}

// CallbackProvider implements a redirect-style login. Authorize registers
// a random state key, opens LoginPath?state=<key> through the context's
// Opener and waits until the host delivers the outcome for that key via
// Deliver or Deny (typically from an /auth/callback handler).
//
// A CallbackProvider is shared by all connections and is safe for
// concurrent use.
type CallbackProvider struct {
	loginPath string
	timeout   time.Duration
	revoke    func(ctx context.Context, token Token) error

	mu      sync.Mutex
	pending map[string]chan callbackResult
}

type callbackResult struct {
	token Token
	err   error
}

// CallbackOption configures a CallbackProvider.
type CallbackOption func(*CallbackProvider)

// WithLoginTimeout bounds how long Authorize waits for the callback.
// Zero waits until the context is done.
func WithLoginTimeout(d time.Duration) CallbackOption {
	return func(p *CallbackProvider) {
		p.timeout = d
	}
}

// WithRevoke sets the function called by Revoke.
func WithRevoke(fn func(ctx context.Context, token Token) error) CallbackOption {
	return func(p *CallbackProvider) {
		p.revoke = fn
	}
}

// NewCallbackProvider creates a provider whose login page is loginPath.
func NewCallbackProvider(loginPath string, opts ...CallbackOption) *CallbackProvider {
	p := &CallbackProvider{
		loginPath: loginPath,
		pending:   make(map[string]chan callbackResult),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Authorize implements Provider.
func (p *CallbackProvider) Authorize(ctx context.Context) (Token, error) {
	open, ok := OpenerFrom(ctx)
	if !ok {
		return "", ErrNoOpener
	}
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	state := uuid.NewString()
	ch := make(chan callbackResult, 1)
	p.mu.Lock()
	p.pending[state] = ch
	p.mu.Unlock()
	defer p.forget(state)

	open(p.loginPath + "?state=" + url.QueryEscape(state))

	select {
	case res := <-ch:
		return res.token, res.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Deliver completes the pending login identified by state with token.
func (p *CallbackProvider) Deliver(state string, token Token) error {
	return p.resolve(state, callbackResult{token: token})
}

// Deny fails the pending login identified by state.
func (p *CallbackProvider) Deny(state string) error {
	return p.resolve(state, callbackResult{err: ErrUnauthorized})
}

// Pending returns the number of logins waiting for a callback.
func (p *CallbackProvider) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pending)
}

func (p *CallbackProvider) resolve(state string, res callbackResult) error {
	p.mu.Lock()
	ch, ok := p.pending[state]
	delete(p.pending, state)
	p.mu.Unlock()
	if !ok {
		return ErrUnknownState
	}
	ch <- res
	return nil
}

func (p *CallbackProvider) forget(state string) {
	p.mu.Lock()
	delete(p.pending, state)
	p.mu.Unlock()
}

// Revoke implements Provider.
func (p *CallbackProvider) Revoke(ctx context.Context, token Token) error {
	if p.revoke == nil {
		return nil
	}
	return p.revoke(ctx, token)
}
