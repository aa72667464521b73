package transport

import (
	"context"
	"net/url"
	"strings"
	"sync"
)

// Mux dispatches FetchText to a Fetcher chosen by URL scheme.
type Mux struct {
	mu       sync.RWMutex
	fetchers map[string]Fetcher
}

// NewMux creates an empty Mux.
func NewMux() *Mux {
	return &Mux{fetchers: make(map[string]Fetcher)}
}

// Handle registers f for scheme ("http", "https", "s3", ...).
func (m *Mux) Handle(scheme string, f Fetcher) {
	m.mu.Lock()
	m.fetchers[strings.ToLower(scheme)] = f
	m.mu.Unlock()
}

// FetchText implements Fetcher.
func (m *Mux) FetchText(ctx context.Context, rawURL, body string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", &NetworkError{URL: rawURL, Err: err}
	}

	m.mu.RLock()
	f, ok := m.fetchers[strings.ToLower(u.Scheme)]
	m.mu.RUnlock()
	if !ok {
		return "", &NetworkError{URL: rawURL, Err: ErrUnsupportedScheme}
	}

	text, err := f.FetchText(ctx, rawURL, body)
	return text, AsNetworkError(rawURL, err)
}
