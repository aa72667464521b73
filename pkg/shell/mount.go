package shell

import (
	"fmt"

	"github.com/floaties-dev/floaties/pkg/auth"
	"github.com/floaties-dev/floaties/pkg/router"
)

// mount is one page instance: the location it was mounted for, what the
// router made of it, and the page itself.
type mount struct {
	loc  router.Location
	res  router.Resolution
	page Page
}

// sync mounts the page for the current generation when the gate allows
// it, and unmounts whatever is mounted when it does not.
func (s *Shell) sync() {
	if s.gate.Decision() != auth.Protected {
		s.unmount("login prompt")
		return
	}
	if s.mounted != nil && s.mounted.loc.Generation == s.nav.Generation() {
		return
	}
	s.unmount("stale generation")
	s.mount()
}

func (s *Shell) mount() {
	loc := s.nav.Current()
	res := s.resolver.ResolveDetailed(loc.Path)

	s.redirected = false
	switch {
	case res.RedirectTo != "":
		s.history.Replace(res.RedirectTo)
		s.redirected = true
	case res.Path != "" && res.Path != loc.Path:
		s.history.Replace(res.Path)
	}

	m := &mount{loc: loc, res: res}
	m.page = s.newPage(res.Route, loc)
	s.mounted = m

	s.logger.Info("page mounted",
		"route", describe(res.Route),
		"path", loc.Path,
		"generation", loc.Generation,
		"redirect_to", res.RedirectTo)

	if p, ok := m.page.(refetcher); ok {
		p.load()
	}
}

// unmount disposes the mounted page. Disposing abandons its request, so a
// completion still in flight is discarded when it arrives.
func (s *Shell) unmount(reason string) {
	if s.mounted == nil {
		return
	}
	m := s.mounted
	s.mounted = nil
	s.redirected = false
	m.page.Dispose()
	s.logger.Debug("page unmounted",
		"route", describe(m.res.Route),
		"generation", m.loc.Generation,
		"reason", reason)
}

// guard is true while gen is the current generation and the session is
// still authenticated.
func (s *Shell) guard(gen uint64) func() bool {
	current := s.nav.Guard(gen)
	return func() bool {
		return current() && s.gate.Decision() == auth.Protected
	}
}

func describe(r router.Route) string {
	if str, ok := r.(fmt.Stringer); ok {
		return str.String()
	}
	return r.Name()
}
