// Package host serves the shell over HTTP and websockets.
//
// Each websocket connection gets its own event loop, auth gate, history
// and shell. The browser sends intents as JSON:
//
//	{"type":"navigate","arg":"/posts/7"}
//	{"type":"navigate","arg":"/posts","replace":true}   // back/forward
//	{"type":"toggle"} {"type":"login"} {"type":"logout"} {"type":"refetch"}
//
// and receives a frame after every event that changed the view:
//
//	{"html":"<div id=\"shell\" ...>","title":"Post 7 | Floaties","path":"/posts/7"}
//	{"open":"/auth/login?state=..."}
//
// Intents that fail validation are logged and counted; they never close
// the connection.
//
// Usage:
//
//	srv := host.New(&host.Config{
//	    Addr:     ":8080",
//	    BaseURL:  "https://floaties-api.dudi.win/",
//	    Registry: prometheus.NewRegistry(),
//	})
//	if err := srv.ListenAndServe(ctx); err != nil {
//	    errors.PrintError(os.Stderr, err)
//	}
package host
