package middleware

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures the Prometheus metrics middleware.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "floaties").
	Namespace string

	// Subsystem is the metrics subsystem (default: "intent").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for event duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus metrics middleware.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		if namespace != "" {
			c.Namespace = namespace
		}
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		if registry != nil {
			c.Registry = registry
		}
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "floaties",
		Subsystem: "intent",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics is the Prometheus middleware. Register it once per registry
// and share it between connections.
type Metrics struct {
	eventsTotal   *prometheus.CounterVec
	eventDuration *prometheus.HistogramVec
	eventErrors   *prometheus.CounterVec
}

// Prometheus creates middleware that counts and times every intent.
//
// Metrics collected:
//   - floaties_intent_events_total: events by type and status
//   - floaties_intent_event_duration_seconds: time spent on the loop
//   - floaties_intent_event_errors_total: failed events by type and error type
func Prometheus(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		eventsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "events_total",
			Help:        "Total number of intents handled",
			ConstLabels: config.ConstLabels,
		}, []string{"type", "status"}),

		eventDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "event_duration_seconds",
			Help:        "Intent handling duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"type"}),

		eventErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "event_errors_total",
			Help:        "Total number of intents that failed",
			ConstLabels: config.ConstLabels,
		}, []string{"type", "error_type"}),
	}
}

// Handle implements Middleware.
func (m *Metrics) Handle(ev *Event, next func() error) error {
	start := time.Now()
	err := next()
	m.eventDuration.WithLabelValues(ev.Type).Observe(time.Since(start).Seconds())

	status := "success"
	if err != nil {
		status = "error"
		m.eventErrors.WithLabelValues(ev.Type, categorizeError(err)).Inc()
	}
	m.eventsTotal.WithLabelValues(ev.Type, status).Inc()
	return err
}

// categorizeError maps an error to a bounded label value.
func categorizeError(err error) string {
	switch {
	case errors.Is(err, ErrNoEffect):
		return "no_effect"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout"):
		return "timeout"
	case strings.Contains(msg, "unauthorized"):
		return "unauthorized"
	case strings.Contains(msg, "not found"):
		return "not_found"
	default:
		return "internal"
	}
}
