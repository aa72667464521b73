// Package shell is the floaties application: navbar chrome, the auth gate
// and the routed pages.
//
// A Shell is driven entirely from one event loop. Intents from the browser
// (navigate, toggle, login, logout, refetch) become method calls, fetch and
// login completions arrive as loop events, and after each event the host
// calls Render (or HTML) and ships the result.
//
// Rendering is where pages are mounted. When the gate decides Protected
// and the mounted page belongs to an older navigation generation, the old
// page is disposed and the resolver is asked for the current path. Under
// the login prompt nothing is resolved and nothing is fetched.
//
//	s := shell.New(gate, history, fetcher, loop,
//	    shell.WithBaseURL("https://floaties-api.dudi.win/"),
//	    shell.WithLocale(language.German),
//	)
//	html, err := s.HTML()
package shell
