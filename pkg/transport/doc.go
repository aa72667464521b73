// Package transport is the runtime's network capability.
//
// A Fetcher turns a URL and a request body into text. Failures of any kind
// come back as *NetworkError, which pages render as their failed state;
// nothing here retries.
//
//	mux := transport.NewMux()
//	mux.Handle("https", transport.NewHTTPFetcher())
//	mux.Handle("s3", transport.NewS3Fetcher(transport.NewS3Client(transport.S3Options{Region: "eu-central-1"})))
//	text, err := mux.FetchText(ctx, "https://floaties-api.dudi.win/", "2 == 2")
//
// HTTPFetcher wraps each request in an OpenTelemetry client span using the
// global tracer provider.
package transport
