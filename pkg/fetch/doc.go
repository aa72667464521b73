// Package fetch models the lifecycle of an asynchronous request.
//
// A request is always in exactly one of four states:
//
//   - NotFetching: nothing has been requested yet
//   - Fetching: a request is in flight
//   - Success: the last request returned data
//   - Failed: the last request returned an error
//
// Transition is the pure state machine. StartFetch is legal from every
// state; Resolved and Rejected are legal only while Fetching. A re-fetch
// from Success or Failed therefore always passes through Fetching.
//
// Request wraps the state machine for one component instance and adds the
// stale-response guard: completions that arrive after the request was
// superseded, abandoned or outlived its navigation are dropped.
//
//	req := fetch.NewRequest[string](l, fetch.WithGuard(nav.Guard(page.Generation)))
//	req.Start(ctx, func(ctx context.Context) (string, error) {
//	    return fetcher.FetchText(ctx, url, "")
//	})
//
//	return fetch.Match(req.State(), fetch.Cases[string, *vdom.VNode]{
//	    NotFetching: func() *vdom.VNode { return Button(Text("Load")) },
//	    Fetching:    func() *vdom.VNode { return Text("Fetching") },
//	    Success:     func(s string) *vdom.VNode { return Text(s) },
//	    Failed:      func(err error) *vdom.VNode { return Text(err.Error()) },
//	})
package fetch
