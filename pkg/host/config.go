package host

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/text/language"

	"github.com/floaties-dev/floaties/pkg/auth"
	"github.com/floaties-dev/floaties/pkg/middleware"
	"github.com/floaties-dev/floaties/pkg/transport"
)

// Config configures a Server.
type Config struct {
	// Addr is the listen address for ListenAndServe.
	Addr string

	// Name is the brand shown in the navbar and title.
	Name string

	// Locale sets the lang attribute of every page.
	Locale language.Tag

	// BaseURL is the content API that page paths are joined onto.
	BaseURL string

	// Condition is the request body sent with every fetch (default "2 == 2").
	Condition string

	// FetchTimeout bounds each page fetch. Zero means none.
	FetchTimeout time.Duration

	// Fetcher performs page fetches for every connection. Nil means an
	// HTTPFetcher with default settings.
	Fetcher transport.Fetcher

	// Provider authorizes logins. A *auth.CallbackProvider also enables
	// the /auth/login and /auth/callback routes.
	Provider auth.Provider

	// AuthorizeURL is where /auth/login sends the browser. When empty,
	// /auth/login completes the login itself with DevToken.
	AuthorizeURL string

	// DevToken is issued by /auth/login when AuthorizeURL is empty.
	DevToken string

	// Registry receives the host and fetch metrics and backs /metrics.
	// Nil disables both.
	Registry *prometheus.Registry

	// Namespace prefixes metric names.
	Namespace string

	// CheckOrigin is passed to the websocket upgrader. Nil allows
	// same-origin requests only.
	CheckOrigin func(r *http.Request) bool

	// Middleware wraps every accepted intent, after the built-in tracing
	// and metrics middleware.
	Middleware []middleware.Middleware

	// ShutdownTimeout bounds graceful shutdown in Serve.
	ShutdownTimeout time.Duration

	// ReadHeaderTimeout is the http.Server read header timeout.
	ReadHeaderTimeout time.Duration

	Logger *slog.Logger
}

// DefaultConfig returns a Config with defaults that serve the bundled
// static login.
func DefaultConfig() *Config {
	return &Config{
		Addr:              ":8080",
		Name:              "Floaties",
		Locale:            language.English,
		Condition:         "2 == 2",
		Provider:          auth.StaticProvider{Token: "floaties-dev"},
		DevToken:          "floaties-dev",
		Namespace:         "floaties",
		ShutdownTimeout:   10 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// withDefaults fills unset fields from DefaultConfig.
func (c *Config) withDefaults() *Config {
	d := DefaultConfig()
	if c == nil {
		return d
	}
	out := *c
	if out.Addr == "" {
		out.Addr = d.Addr
	}
	if out.Name == "" {
		out.Name = d.Name
	}
	if out.Locale == language.Und {
		out.Locale = d.Locale
	}
	if out.Condition == "" {
		out.Condition = d.Condition
	}
	if out.Fetcher == nil {
		out.Fetcher = transport.NewHTTPFetcher()
	}
	if out.Provider == nil {
		out.Provider = d.Provider
	}
	if out.DevToken == "" {
		out.DevToken = d.DevToken
	}
	if out.Namespace == "" {
		out.Namespace = d.Namespace
	}
	if out.ShutdownTimeout == 0 {
		out.ShutdownTimeout = d.ShutdownTimeout
	}
	if out.ReadHeaderTimeout == 0 {
		out.ReadHeaderTimeout = d.ReadHeaderTimeout
	}
	if out.Logger == nil {
		out.Logger = slog.Default()
	}
	return &out
}
