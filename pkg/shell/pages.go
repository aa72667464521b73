package shell

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/floaties-dev/floaties/pkg/fetch"
	"github.com/floaties-dev/floaties/pkg/router"
	"github.com/floaties-dev/floaties/pkg/transport"
	. "github.com/floaties-dev/floaties/pkg/vdom"
)

// Page is a mounted route component.
type Page interface {
	Title() string
	Render() *VNode
	// Dispose is called once, at unmount.
	Dispose()
}

type refetcher interface {
	load() bool
}

// newPage builds the page for r. Every route variant has a case.
func (s *Shell) newPage(r router.Route, loc router.Location) Page {
	switch v := r.(type) {
	case router.Home:
		return homePage{name: s.name}
	case router.PostList:
		return s.newContentPage(r, loc, "Posts", "posts")
	case router.Post:
		return s.newContentPage(r, loc, fmt.Sprintf("Post %d", v.ID), fmt.Sprintf("posts/%d", v.ID))
	case router.AuthorList:
		return s.newContentPage(r, loc, "Authors", "authors")
	case router.Author:
		return s.newContentPage(r, loc, fmt.Sprintf("Author %d", v.ID), fmt.Sprintf("authors/%d", v.ID))
	case router.Settings:
		return newSettingsPage(v.Sub, loc.Path)
	case router.NotFound:
		return notFoundPage{path: loc.Path}
	default:
		panic(fmt.Sprintf("shell: no page for route %T", r))
	}
}

// contentPage shows text fetched from the content API. It renders every
// request state.
type contentPage struct {
	title   string
	url     string
	body    string
	timeout time.Duration
	ctx     context.Context
	fetcher transport.Fetcher
	req     *fetch.Request[string]
}

func (s *Shell) newContentPage(r router.Route, loc router.Location, title, path string) *contentPage {
	req := fetch.NewRequest[string](s.dispatch,
		fetch.WithName(describe(r)),
		fetch.WithGuard(s.guard(loc.Generation)),
		fetch.WithLogger(s.logger),
		fetch.WithMetrics(s.metrics),
	)
	for _, fn := range s.observers {
		fn(r, fetch.KindOf(req.State()))
		req.OnChange(func(st fetch.State[string]) {
			fn(r, fetch.KindOf(st))
		})
	}
	return &contentPage{
		title:   title,
		url:     joinURL(s.baseURL, path),
		body:    s.condition,
		timeout: s.timeout,
		ctx:     s.ctx,
		fetcher: s.fetcher,
		req:     req,
	}
}

func (p *contentPage) Title() string { return p.title }

func (p *contentPage) load() bool {
	return p.req.Start(p.ctx, func(ctx context.Context) (string, error) {
		if p.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, p.timeout)
			defer cancel()
		}
		return p.fetcher.FetchText(ctx, p.url, p.body)
	})
}

func (p *contentPage) Dispose() {
	p.req.Abandon()
}

func (p *contentPage) Render() *VNode {
	return Section(
		Class("page", "page-content"),
		H1(p.title),
		fetch.Match(p.req.State(), fetch.Cases[string, *VNode]{
			NotFetching: func() *VNode {
				return Div(Class("fetch", "fetch-idle"),
					Button(Type("button"), OnClick(IntentRefetch), "Load"),
				)
			},
			Fetching: func() *VNode {
				return Div(Class("fetch", "fetch-pending"), AriaBusy(true), AriaLive("polite"),
					P("Fetching..."),
				)
			},
			Success: func(text string) *VNode {
				return Div(Class("fetch", "fetch-success"),
					Article(paragraphs(text)),
					Button(Type("button"), OnClick(IntentRefetch), "Refresh"),
				)
			},
			Failed: func(err error) *VNode {
				return Div(Class("fetch", "fetch-failed"), Role("alert"),
					P(Strong(Textf("Could not load %s.", strings.ToLower(p.title))), " ", failureText(err)),
					Button(Type("button"), OnClick(IntentRefetch), "Retry"),
				)
			},
		}),
	)
}

// paragraphs splits text on blank lines.
func paragraphs(text string) *VNode {
	var blocks []string
	for _, block := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n") {
		if block = strings.TrimSpace(block); block != "" {
			blocks = append(blocks, block)
		}
	}
	if len(blocks) == 0 {
		return P(Class("empty"), "Nothing here yet.")
	}
	return Fragment(Range(blocks, func(block string, _ int) *VNode {
		return P(block)
	}))
}

// failureText is the message shown for a failed fetch.
func failureText(err error) string {
	if err == nil {
		return "Unknown error."
	}
	return err.Error()
}

func joinURL(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + path
}

type homePage struct {
	name string
}

func (homePage) Title() string { return "Home" }
func (homePage) Dispose()      {}

func (p homePage) Render() *VNode {
	return Section(
		Class("page", "page-home"),
		H1(p.name),
		P("Floating posts and the people who write them."),
		Ul(
			Li(router.Link(router.PostList{}, "Browse posts")),
			Li(router.Link(router.AuthorList{}, "Browse authors")),
		),
	)
}

type settingsPage struct {
	sub  router.SettingsRoute
	path string
}

func newSettingsPage(sub router.SettingsRoute, path string) Page {
	if _, ok := sub.(router.SettingsNotFound); ok {
		return notFoundPage{path: path}
	}
	return settingsPage{sub: sub, path: path}
}

func (p settingsPage) Title() string { return "Settings" }
func (settingsPage) Dispose()        {}

func (p settingsPage) Render() *VNode {
	return Section(
		Class("page", "page-settings"),
		H1("Settings"),
		Nav(Class("tabs"),
			Ul(
				settingsTab(router.Profile{}, p.sub, "Profile"),
				settingsTab(router.Friends{}, p.sub, "Friends"),
				settingsTab(router.Theme{}, p.sub, "Theme"),
			),
		),
		settingsBody(p.sub),
	)
}

func settingsTab(to, current router.SettingsRoute, label string) *VNode {
	active := to.Name() == current.Name()
	return Li(
		Class(activeClass(active)),
		router.Link(router.Settings{Sub: to}, label),
	)
}

func settingsBody(sub router.SettingsRoute) *VNode {
	switch sub.(type) {
	case router.Profile:
		return Div(Class("settings-profile"), H2("Profile"), P("Your name and avatar as other readers see them."))
	case router.Friends:
		return Div(Class("settings-friends"), H2("Friends"), P("Authors whose posts you follow."))
	case router.Theme:
		return Div(Class("settings-theme"), H2("Theme"), P("Light, dark or whatever your system prefers."))
	default:
		panic(fmt.Sprintf("shell: no settings body for %T", sub))
	}
}

type notFoundPage struct {
	path string
}

func (notFoundPage) Title() string { return "Not found" }
func (notFoundPage) Dispose()      {}

func (p notFoundPage) Render() *VNode {
	return Section(
		Class("page", "page-not-found"),
		H1("Page not found"),
		P("Nothing lives at ", Code(p.path), "."),
		router.Link(router.Home{}, "Back home"),
	)
}
