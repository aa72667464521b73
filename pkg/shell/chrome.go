package shell

import (
	"fmt"

	"github.com/floaties-dev/floaties/pkg/auth"
	"github.com/floaties-dev/floaties/pkg/router"
	. "github.com/floaties-dev/floaties/pkg/vdom"
)

// chrome is the navbar. It renders for every session status; current is
// nil while the gate shows the login prompt.
func (s *Shell) chrome(current router.Route) *VNode {
	open := activeClass(s.navbar.IsOpen)
	return Header(
		Class("navbar"),
		Role("navigation"),
		AriaLabel("main navigation"),
		Div(Class("navbar-brand"),
			router.Link(router.Home{}, Class("navbar-item"), Strong(s.name)),
			Button(
				Class("navbar-burger", open),
				Type("button"),
				AriaLabel("menu"),
				AriaExpanded(s.navbar.IsOpen),
				OnClick(IntentToggle),
				Span(), Span(), Span(),
			),
		),
		Div(Class("navbar-menu", open),
			Div(Class("navbar-start"),
				router.NavLink(router.Home{}, current, "Home"),
				router.NavLink(router.PostList{}, current, "Posts"),
				router.NavLink(router.AuthorList{}, current, "Authors"),
				router.NavLink(router.Settings{Sub: router.Profile{}}, current, "Settings"),
			),
			Div(Class("navbar-end"), s.sessionControl()),
		),
	)
}

func (s *Shell) sessionControl() *VNode {
	switch status := s.gate.Session().Status().(type) {
	case auth.Unauthenticated:
		return Button(Class("button", "is-primary"), Type("button"), OnClick(IntentLogin), "Log in")
	case auth.Authenticating:
		return Button(Class("button", "is-loading"), Type("button"), Disabled(), AriaBusy(true), "Logging in")
	case auth.Authenticated:
		return Button(Class("button", "is-light"), Type("button"), OnClick(IntentLogout), "Log out")
	default:
		panic(fmt.Sprintf("shell: unhandled session status %T", status))
	}
}

// loginPrompt replaces the routed content until the session is
// authenticated.
func (s *Shell) loginPrompt() *VNode {
	_, waiting := s.gate.Session().Status().(auth.Authenticating)
	return Section(
		Class("page", "login-prompt"),
		H1("Please log in"),
		P("You need to be logged in to read posts."),
		IfElse(waiting,
			P(AriaBusy(true), AriaLive("polite"), "Waiting for the login to finish..."),
			Button(Class("button", "is-primary"), Type("button"), OnClick(IntentLogin), "Log in"),
		),
	)
}

func activeClass(active bool) string {
	if active {
		return "is-active"
	}
	return ""
}
