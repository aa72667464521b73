package auth

import (
	"fmt"
	"log/slog"
)

// Token is the credential handed back by a Provider. It is opaque to the
// runtime and never logged.
type Token string

// LogValue keeps tokens out of structured logs.
func (Token) LogValue() slog.Value {
	return slog.StringValue("[redacted]")
}

// SessionStatus is the authentication lifecycle of one runtime instance.
// It is a closed set: Unauthenticated, Authenticating and Authenticated.
type SessionStatus interface {
	fmt.Stringer
	isStatus()
}

// Unauthenticated is the initial status and the status after logout or a
// failed login.
type Unauthenticated struct{}

// Authenticating means a login is in flight with the Provider.
type Authenticating struct{}

// Authenticated carries the token of a completed login.
type Authenticated struct {
	Token Token
}

func (Unauthenticated) String() string { return "Unauthenticated" }
func (Authenticating) String() string  { return "Authenticating" }
func (Authenticated) String() string   { return "Authenticated" }

func (Unauthenticated) isStatus() {}
func (Authenticating) isStatus()  {}
func (Authenticated) isStatus()   {}

// Decision is what the gate renders for a status.
type Decision uint8

const (
	// LoginPrompt hides protected content behind a login affordance.
	LoginPrompt Decision = iota
	// Protected mounts the routed content.
	Protected
)

func (d Decision) String() string {
	switch d {
	case LoginPrompt:
		return "LoginPrompt"
	case Protected:
		return "Protected"
	default:
		return fmt.Sprintf("Decision(%d)", uint8(d))
	}
}

// Decide maps a status to a gate decision. Only Authenticated yields
// Protected; a nil status counts as Unauthenticated.
func Decide(status SessionStatus) Decision {
	switch status.(type) {
	case nil, Unauthenticated:
		return LoginPrompt
	case Authenticating:
		return LoginPrompt
	case Authenticated:
		return Protected
	default:
		panic(fmt.Sprintf("auth: unknown session status %T", status))
	}
}
