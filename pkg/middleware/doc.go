// Package middleware wraps the handling of client intents.
//
// The host runs every accepted intent through a middleware chain on the
// connection's event loop:
//
//	mws := []middleware.Middleware{
//	    middleware.OpenTelemetry(middleware.WithTracerName("floaties/host")),
//	    middleware.Prometheus(middleware.WithRegistry(reg)),
//	}
//	err := middleware.Run(ev, mws, func() error { return handle(ev) })
//
// # OpenTelemetry
//
// OpenTelemetry starts a server span per intent and puts it in
// ev.Context(). Handlers pass that context on, so a login or a page fetch
// started by a click shows up under the click's span.
//
// # Prometheus
//
// Prometheus counts intents by type and status and records how long each
// held the loop:
//   - floaties_intent_events_total
//   - floaties_intent_event_duration_seconds
//   - floaties_intent_event_errors_total
//
// Handlers report intents that changed nothing by wrapping ErrNoEffect;
// they are counted with error_type "no_effect".
package middleware
