package middleware

import (
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Default tracer name for intent spans.
const defaultTracerName = "floaties"

// OTelConfig configures the OpenTelemetry middleware.
type OTelConfig struct {
	// TracerName is the name of the tracer (default: "floaties").
	TracerName string

	// IncludeArg records the intent argument. Navigation targets can
	// carry ids, so it is off by default.
	IncludeArg bool

	// Filter determines which events to trace. If nil, all events are
	// traced.
	Filter func(ev *Event) bool

	// AttributeExtractor adds custom attributes to each span.
	AttributeExtractor func(ev *Event) []attribute.KeyValue

	tracer trace.Tracer
}

// OTelOption configures the OpenTelemetry middleware.
type OTelOption func(*OTelConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) OTelOption {
	return func(c *OTelConfig) {
		c.TracerName = name
	}
}

// WithIncludeArg enables recording the intent argument.
func WithIncludeArg(include bool) OTelOption {
	return func(c *OTelConfig) {
		c.IncludeArg = include
	}
}

// WithEventFilter sets a filter function for events.
func WithEventFilter(filter func(ev *Event) bool) OTelOption {
	return func(c *OTelConfig) {
		c.Filter = filter
	}
}

// WithAttributeExtractor sets a custom attribute extractor.
func WithAttributeExtractor(extractor func(ev *Event) []attribute.KeyValue) OTelOption {
	return func(c *OTelConfig) {
		c.AttributeExtractor = extractor
	}
}

// OpenTelemetry creates middleware that wraps every intent in a span
// named "floaties.<type>". The span is installed in ev.Context() while
// the handler runs, so logins and page fetches started by the intent
// become its children.
//
// The tracer comes from the global provider; configure it in main():
//
//	otel.SetTracerProvider(tp)
func OpenTelemetry(opts ...OTelOption) Middleware {
	config := OTelConfig{TracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&config)
	}
	config.tracer = otel.Tracer(config.TracerName)

	return MiddlewareFunc(func(ev *Event, next func() error) error {
		if config.Filter != nil && !config.Filter(ev) {
			return next()
		}

		attrs := []attribute.KeyValue{
			attribute.String("floaties.event_type", ev.Type),
			attribute.String("floaties.path", ev.Path),
			attribute.String("floaties.conn_id", ev.ConnID),
		}
		if config.IncludeArg {
			attrs = append(attrs, attribute.String("floaties.arg", ev.Arg))
		}
		if config.AttributeExtractor != nil {
			attrs = append(attrs, config.AttributeExtractor(ev)...)
		}

		parent := ev.ctx
		spanCtx, span := config.tracer.Start(parent, "floaties."+ev.Type,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(attrs...),
			trace.WithTimestamp(time.Now()),
		)
		defer span.End()

		ev.ctx, ev.span = spanCtx, span
		err := next()

		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		return err
	})
}

// SpanFromEvent returns the span of a traced event, or nil when the event
// was not traced.
func SpanFromEvent(ev *Event) trace.Span {
	return ev.span
}
