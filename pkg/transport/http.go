package transport

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Default tracer name for fetch spans.
const defaultTracerName = "floaties/transport"

// DefaultMaxBody caps response bodies read by HTTPFetcher.
const DefaultMaxBody = 8 << 20

// HTTPFetcher fetches text over HTTP. Each call sends body with the
// configured method (POST by default) and runs inside a client span.
type HTTPFetcher struct {
	client      *http.Client
	method      string
	contentType string
	maxBody     int64
	tracer      trace.Tracer
}

// HTTPOption configures an HTTPFetcher.
type HTTPOption func(*HTTPFetcher)

// WithHTTPClient sets the underlying client.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(f *HTTPFetcher) {
		if c != nil {
			f.client = c
		}
	}
}

// WithMethod sets the request method.
func WithMethod(method string) HTTPOption {
	return func(f *HTTPFetcher) {
		if method != "" {
			f.method = method
		}
	}
}

// WithContentType sets the request Content-Type.
func WithContentType(ct string) HTTPOption {
	return func(f *HTTPFetcher) {
		f.contentType = ct
	}
}

// WithMaxBody caps the number of response bytes read.
func WithMaxBody(n int64) HTTPOption {
	return func(f *HTTPFetcher) {
		if n > 0 {
			f.maxBody = n
		}
	}
}

// WithTracerName sets the tracer name. The tracer comes from the global
// OpenTelemetry provider.
func WithTracerName(name string) HTTPOption {
	return func(f *HTTPFetcher) {
		f.tracer = otel.Tracer(name)
	}
}

// NewHTTPFetcher creates an HTTPFetcher.
func NewHTTPFetcher(opts ...HTTPOption) *HTTPFetcher {
	f := &HTTPFetcher{
		client:      http.DefaultClient,
		method:      http.MethodPost,
		contentType: "text/plain; charset=utf-8",
		maxBody:     DefaultMaxBody,
		tracer:      otel.Tracer(defaultTracerName),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FetchText implements Fetcher.
func (f *HTTPFetcher) FetchText(ctx context.Context, rawURL, body string) (string, error) {
	ctx, span := f.tracer.Start(ctx, spanName(f.method, rawURL),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", f.method),
			attribute.String("url.full", rawURL),
			attribute.Int("http.request.body.size", len(body)),
		),
	)
	defer span.End()

	text, status, err := f.do(ctx, rawURL, body)
	if status != 0 {
		span.SetAttributes(attribute.Int("http.response.status_code", status))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	span.SetStatus(codes.Ok, "")
	return text, nil
}

func (f *HTTPFetcher) do(ctx context.Context, rawURL, body string) (string, int, error) {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, f.method, rawURL, reader)
	if err != nil {
		return "", 0, &NetworkError{URL: rawURL, Err: err}
	}
	if body != "" && f.contentType != "" {
		req.Header.Set("Content-Type", f.contentType)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", 0, &NetworkError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", resp.StatusCode, &NetworkError{URL: rawURL, Status: resp.StatusCode, Err: ErrStatus}
	}
	data, err := readCapped(resp.Body, f.maxBody)
	if err != nil {
		return "", resp.StatusCode, &NetworkError{URL: rawURL, Err: err}
	}
	return string(data), resp.StatusCode, nil
}

// spanName is "<METHOD> <host>", keeping paths (and ids in them) out of
// span names.
func spanName(method, rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return method
	}
	return method + " " + u.Host
}
