package router

import (
	"github.com/floaties-dev/floaties/pkg/vdom"
)

// IntentNavigate is the intent a link click sends to the session.
const IntentNavigate = "navigate"

// Link creates an anchor to a route with client-side navigation.
// When clicked, the browser client intercepts it and sends a navigate
// intent over the socket instead of performing a full page load.
func Link(to Route, children ...any) *vdom.VNode {
	path := PathOf(to)
	return vdom.A(
		vdom.Href(path),
		vdom.OnClick(IntentNavigate, path),
		children,
	)
}

// NavLink is a Link that marks itself active when current is in the same
// section as to (e.g. every Post is inside PostList's section).
func NavLink(to, current Route, children ...any) *vdom.VNode {
	active := current != nil && section(to) == section(current)
	path := PathOf(to)
	return vdom.A(
		vdom.Href(path),
		vdom.OnClick(IntentNavigate, path),
		vdom.Class("nav-link", activeClass(active)),
		ariaCurrent(active),
		children,
	)
}

func section(r Route) string {
	switch r.(type) {
	case Post:
		return PostList{}.Name()
	case Author:
		return AuthorList{}.Name()
	default:
		return r.Name()
	}
}

func activeClass(active bool) string {
	if active {
		return "is-active"
	}
	return ""
}

func ariaCurrent(active bool) any {
	if active {
		return vdom.AriaCurrent("page")
	}
	return nil
}
