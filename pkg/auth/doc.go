// Package auth gates protected content behind a login.
//
// The package is provider agnostic. It does not exchange or validate
// tokens; that is the Provider's job. It owns the session status signal
// and the two user actions that change it.
//
// # Session Status
//
// Session holds one of three statuses:
//
//	Unauthenticated ──StartLogin──▶ Authenticating ──ok──▶ Authenticated
//	       ▲                              │                      │
//	       └──────────── failure ─────────┘◀──────── Logout ─────┘
//
// Decide maps a status to a Decision: only Authenticated yields Protected,
// everything else yields LoginPrompt.
//
// # Gate
//
// Gate.StartLogin runs Provider.Authorize off the event loop and delivers
// the result back through a loop.Dispatcher. Gate.Logout is synchronous:
// the status is Unauthenticated before it returns, and revocation
// continues in the background. A login that is still in flight when the
// user logs out is discarded when it completes.
//
//	session := auth.NewSession()
//	gate := auth.NewGate(session, auth.StaticProvider{Token: "dev"}, lp)
//	gate.StartLogin(ctx, "/authors/7")
//
// # Providers
//
//   - StaticProvider: fixed token, for development
//   - FuncProvider: adapts plain functions
//   - CallbackProvider: redirect login finished by an HTTP callback
//     carrying a state key
package auth
