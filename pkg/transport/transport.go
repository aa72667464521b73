package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// Fetcher retrieves a text document. body is sent with the request where
// the transport supports one; every failure is returned as *NetworkError.
type Fetcher interface {
	FetchText(ctx context.Context, url, body string) (string, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, url, body string) (string, error)

// FetchText implements Fetcher.
func (f FetcherFunc) FetchText(ctx context.Context, url, body string) (string, error) {
	return f(ctx, url, body)
}

var (
	// ErrStatus is wrapped by NetworkError for non-2xx responses.
	ErrStatus = errors.New("unexpected status")

	// ErrUnsupportedScheme is wrapped by NetworkError when no transport
	// handles the URL's scheme.
	ErrUnsupportedScheme = errors.New("unsupported URL scheme")

	// ErrBodyTooLarge is wrapped by NetworkError when a response exceeds
	// the fetcher's body cap.
	ErrBodyTooLarge = errors.New("response body too large")
)

// NetworkError is the single error type for transport failures: DNS,
// connection, timeouts, non-2xx statuses and object-store errors all
// surface as a NetworkError so callers can render one failure state.
type NetworkError struct {
	URL    string
	Status int // HTTP status, 0 when no response was received
	Err    error
}

func (e *NetworkError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Temporary reports whether retrying might succeed: no response, a 429 or
// a 5xx status. An oversize body is never temporary.
func (e *NetworkError) Temporary() bool {
	if errors.Is(e.Err, ErrBodyTooLarge) {
		return false
	}
	return e.Status == 0 || e.Status == 429 || e.Status >= 500
}

// readCapped reads all of r, failing with ErrBodyTooLarge when r holds
// more than limit bytes.
func readCapped(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrBodyTooLarge, limit)
	}
	return data, nil
}

// AsNetworkError wraps err as a *NetworkError for url unless it already is
// one.
func AsNetworkError(url string, err error) error {
	if err == nil {
		return nil
	}
	var ne *NetworkError
	if errors.As(err, &ne) {
		return err
	}
	return &NetworkError{URL: url, Err: err}
}
