package host

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/floaties-dev/floaties/internal/errors"
	"github.com/floaties-dev/floaties/pkg/auth"
	"github.com/floaties-dev/floaties/pkg/transport"
)

// contentAPI answers every fetch with text derived from the URL and
// remembers what it was asked for.
type contentAPI struct {
	mu   sync.Mutex
	urls []string
}

func (a *contentAPI) FetchText(_ context.Context, rawURL, body string) (string, error) {
	a.mu.Lock()
	a.urls = append(a.urls, rawURL)
	a.mu.Unlock()
	path := strings.TrimPrefix(rawURL, "https://api.test/")
	return "content of " + path + "\n\nsent " + body, nil
}

func (a *contentAPI) fetched() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.urls...)
}

func newTestServer(t *testing.T, cfg *Config) (*Server, *httptest.Server) {
	t.Helper()
	if cfg.Fetcher == nil {
		cfg.Fetcher = &contentAPI{}
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.test/"
	}
	cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	s := New(cfg)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func dial(t *testing.T, ts *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	u := "ws" + strings.TrimPrefix(ts.URL, "http") + SocketPath + "?path=" + url.QueryEscape(path)
	ws, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("Dial(%s) error = %v", u, err)
	}
	t.Cleanup(func() { ws.Close() })
	return ws
}

func send(t *testing.T, ws *websocket.Conn, msg string) {
	t.Helper()
	if err := ws.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
		t.Fatalf("WriteMessage(%s) error = %v", msg, err)
	}
}

// readUntil reads frames until ok accepts one.
func readUntil(t *testing.T, ws *websocket.Conn, what string, ok func(frame) bool) frame {
	t.Helper()
	_ = ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		var f frame
		if err := ws.ReadJSON(&f); err != nil {
			t.Fatalf("waiting for %s: %v", what, err)
		}
		if ok(f) {
			return f
		}
	}
}

func htmlContains(s string) func(frame) bool {
	return func(f frame) bool { return strings.Contains(f.HTML, s) }
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("counter Write() error: %v", err)
	}
	return m.GetCounter().GetValue()
}

func get(t *testing.T, client *http.Client, u string) (*http.Response, string) {
	t.Helper()
	resp, err := client.Get(u)
	if err != nil {
		t.Fatalf("GET %s error = %v", u, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, string(body)
}

var noRedirect = &http.Client{
	CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
}

func TestHealthz(t *testing.T) {
	_, ts := newTestServer(t, &Config{})
	resp, body := get(t, http.DefaultClient, ts.URL+HealthPath)
	if resp.StatusCode != http.StatusOK || body != "ok\n" {
		t.Errorf("healthz = %d %q", resp.StatusCode, body)
	}
}

func TestPageHandler(t *testing.T) {
	fetcher := &contentAPI{}
	_, ts := newTestServer(t, &Config{Fetcher: fetcher, Name: "Float"})

	resp, body := get(t, noRedirect, ts.URL+"/posts/7")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	for _, want := range []string{
		`<html lang="en">`,
		"<title>Float</title>",
		"Please log in",
		`data-socket="/ws"`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q:\n%s", want, body)
		}
	}
	if got := fetcher.fetched(); len(got) != 0 {
		t.Errorf("unauthenticated page fetched %v", got)
	}

	resp, _ = get(t, noRedirect, ts.URL+"/posts//7/")
	if resp.StatusCode != http.StatusMovedPermanently || resp.Header.Get("Location") != "/posts/7" {
		t.Errorf("non-canonical path = %d Location %q", resp.StatusCode, resp.Header.Get("Location"))
	}
}

func TestSocketLoginThenNavigate(t *testing.T) {
	fetcher := &contentAPI{}
	_, ts := newTestServer(t, &Config{Fetcher: fetcher})
	ws := dial(t, ts, "/authors/7")

	first := readUntil(t, ws, "initial frame", func(frame) bool { return true })
	if !strings.Contains(first.HTML, "Please log in") || first.Path != "/authors/7" || first.Title != "Floaties" {
		t.Fatalf("initial frame = %+v", first)
	}

	send(t, ws, `{"type":"login"}`)
	f := readUntil(t, ws, "author content", htmlContains("content of authors/7"))
	if f.Title != "Author 7 | Floaties" {
		t.Errorf("title = %q", f.Title)
	}
	if f.Path != "" {
		t.Errorf("path changed to %q without navigation", f.Path)
	}
	if !strings.Contains(f.HTML, "sent 2 == 2") {
		t.Errorf("condition not sent:\n%s", f.HTML)
	}

	send(t, ws, `{"type":"navigate","arg":"/posts"}`)
	f = readUntil(t, ws, "navigate frame", func(f frame) bool { return f.Path != "" })
	if f.Path != "/posts" || f.Replace {
		t.Errorf("navigate frame path = %q replace = %v", f.Path, f.Replace)
	}
	if !strings.Contains(f.HTML, "Fetching...") || f.Title != "Posts | Floaties" {
		t.Errorf("navigate frame should show the pending post list: title %q\n%s", f.Title, f.HTML)
	}
	f = readUntil(t, ws, "post list", htmlContains("content of posts"))
	if f.Path != "" {
		t.Errorf("content frame repeated path %q", f.Path)
	}

	got := fetcher.fetched()
	want := []string{"https://api.test/authors/7", "https://api.test/posts"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("fetched = %v, want %v", got, want)
	}
}

func TestSocketRedirectReplacesEntry(t *testing.T) {
	_, ts := newTestServer(t, &Config{})
	ws := dial(t, ts, "/settings/404")

	readUntil(t, ws, "login prompt", htmlContains("Please log in"))
	send(t, ws, `{"type":"login"}`)
	f := readUntil(t, ws, "not found page", htmlContains("Page not found"))
	if f.Path != "/404" || !f.Replace {
		t.Errorf("redirect frame path = %q replace = %v", f.Path, f.Replace)
	}
}

func TestSocketHistoryTraversalReplaces(t *testing.T) {
	_, ts := newTestServer(t, &Config{})
	ws := dial(t, ts, "/")

	readUntil(t, ws, "login prompt", htmlContains("Please log in"))
	send(t, ws, `{"type":"login"}`)
	readUntil(t, ws, "log out button", htmlContains("Log out"))

	send(t, ws, `{"type":"navigate","arg":"/settings/theme","replace":true}`)
	f := readUntil(t, ws, "theme tab", htmlContains("settings-theme"))
	if f.Path != "/settings/theme" || !f.Replace {
		t.Errorf("restore frame path = %q replace = %v", f.Path, f.Replace)
	}
}

func TestSocketRejectsBadIntents(t *testing.T) {
	reg := prometheus.NewRegistry()
	s, ts := newTestServer(t, &Config{Registry: reg})
	ws := dial(t, ts, "/")
	readUntil(t, ws, "initial frame", func(frame) bool { return true })

	send(t, ws, `not json`)
	send(t, ws, `{"type":"explode"}`)
	send(t, ws, `{"type":"navigate","arg":"https://evil.example/"}`)
	send(t, ws, `{"type":"toggle"}`)

	readUntil(t, ws, "open navbar", htmlContains(`navbar-menu is-active`))

	tests := []struct {
		kind, outcome string
		want          float64
	}{
		{"invalid", OutcomeRejected, 1},
		{"unknown", OutcomeRejected, 1},
		{"navigate", OutcomeRejected, 1},
		{"toggle", OutcomeAccepted, 1},
	}
	for _, tt := range tests {
		got := counterValue(t, s.metrics.intents.WithLabelValues(tt.kind, tt.outcome))
		if got != tt.want {
			t.Errorf("intents{%s,%s} = %v, want %v", tt.kind, tt.outcome, got, tt.want)
		}
	}
	if got := counterValue(t, s.metrics.connections); got != 1 {
		t.Errorf("connections_total = %v, want 1", got)
	}

	_, body := get(t, http.DefaultClient, ts.URL+MetricsPath)
	for _, want := range []string{"floaties_host_intents_total", "floaties_host_frames_total", `floaties_intent_events_total{status="success",type="toggle"} 1`} {
		if !strings.Contains(body, want) {
			t.Errorf("/metrics missing %s", want)
		}
	}
}

func onlyConn(t *testing.T, s *Server) *conn {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.conns) != 1 {
		t.Fatalf("open connections = %d, want 1", len(s.conns))
	}
	for c := range s.conns {
		return c
	}
	return nil
}

func TestSocketClosesWithFullOutbox(t *testing.T) {
	s, ts := newTestServer(t, &Config{})
	ws := dial(t, ts, "/")
	readUntil(t, ws, "initial frame", func(frame) bool { return true })
	c := onlyConn(t, s)

	// Hold the loop in one event while the client goes away and the
	// outbox fills up, then let the event's flush try to send.
	held, release := make(chan struct{}), make(chan struct{})
	c.loop.Dispatch(func() {
		close(held)
		<-release
		c.lastHTML = ""
	})
	<-held
	ws.Close()

	select {
	case <-c.writerDone:
	case <-time.After(2 * time.Second):
		t.Fatal("writer still running after the client disconnected")
	}
	for i := 0; i < outboxSize; i++ {
		c.out <- frame{HTML: "queued"}
	}
	close(release)

	deadline := time.Now().Add(3 * time.Second)
	for s.Connections() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("connection still open after the client disconnected with a full outbox")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestSocketCallbackLogin(t *testing.T) {
	provider := auth.NewCallbackProvider(LoginPath)
	_, ts := newTestServer(t, &Config{Provider: provider, DevToken: "dev"})
	ws := dial(t, ts, "/posts/3")

	readUntil(t, ws, "login prompt", htmlContains("Please log in"))
	send(t, ws, `{"type":"login"}`)
	open := readUntil(t, ws, "open frame", func(f frame) bool { return f.Open != "" })
	if !strings.HasPrefix(open.Open, LoginPath+"?state=") {
		t.Fatalf("open = %q", open.Open)
	}

	resp, body := get(t, http.DefaultClient, ts.URL+open.Open)
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "You are logged in") {
		t.Fatalf("callback = %d %q", resp.StatusCode, body)
	}

	readUntil(t, ws, "post content", htmlContains("content of posts/3"))
	if provider.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", provider.Pending())
	}
}

func TestLoginRedirectsToAuthorizeURL(t *testing.T) {
	provider := auth.NewCallbackProvider(LoginPath)
	_, ts := newTestServer(t, &Config{Provider: provider, AuthorizeURL: "https://id.example/authorize?client=floaties"})

	resp, _ := get(t, noRedirect, ts.URL+LoginPath+"?state=abc")
	loc, err := url.Parse(resp.Header.Get("Location"))
	if resp.StatusCode != http.StatusFound || err != nil {
		t.Fatalf("login = %d %v", resp.StatusCode, err)
	}
	if loc.Host != "id.example" || loc.Query().Get("state") != "abc" || loc.Query().Get("client") != "floaties" {
		t.Errorf("Location = %s", loc)
	}
}

func TestCallbackErrors(t *testing.T) {
	provider := auth.NewCallbackProvider(LoginPath)
	_, ts := newTestServer(t, &Config{Provider: provider})

	tests := []struct {
		name string
		path string
		want int
	}{
		{"login without state", LoginPath, http.StatusBadRequest},
		{"unknown state", CallbackPath + "?state=nope&token=t", http.StatusBadRequest},
		{"denied unknown state", CallbackPath + "?state=nope&error=access_denied", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := get(t, noRedirect, ts.URL+tt.path)
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}

func TestStaticProviderHasNoAuthRoutes(t *testing.T) {
	_, ts := newTestServer(t, &Config{})
	resp, body := get(t, noRedirect, ts.URL+CallbackPath+"?state=x&token=y")
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "Please log in") {
		t.Errorf("callback route without callback provider = %d", resp.StatusCode)
	}
}

func TestServeShutsDownOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	s := New(&Config{
		Fetcher: transport.FetcherFunc(func(context.Context, string, string) (string, error) { return "", nil }),
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	u := "ws://" + ln.Addr().String() + SocketPath
	ws, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		cancel()
		t.Fatalf("Dial error = %v", err)
	}
	defer ws.Close()
	readUntil(t, ws, "initial frame", func(frame) bool { return true })

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}

	_ = ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := ws.ReadMessage(); err == nil {
		t.Error("socket still open after shutdown")
	}
}

func TestListenAndServeBadAddress(t *testing.T) {
	s := New(&Config{Addr: "127.0.0.1:99999", Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	err := s.ListenAndServe(context.Background())
	if !errors.HasCode(err, "F201") {
		t.Errorf("ListenAndServe() error = %v, want F201", err)
	}
}
