package fetch

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome and discard labels.
const (
	OutcomeSuccess = "success"
	OutcomeFailed  = "failed"

	DiscardSuperseded = "superseded"
	DiscardAbandoned  = "abandoned"
	DiscardStale      = "stale"
)

// MetricsConfig configures the fetch metrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "floaties").
	Namespace string

	// Subsystem is the metrics subsystem (default: "fetch").
	Subsystem string

	// Buckets are the histogram buckets for fetch duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Metrics records request lifecycle events. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	started   prometheus.Counter
	completed *prometheus.CounterVec
	discarded *prometheus.CounterVec
	illegal   prometheus.Counter
	duration  *prometheus.HistogramVec
}

// NewMetrics registers the fetch metrics with cfg.Registry.
func NewMetrics(cfg MetricsConfig) *Metrics {
	if cfg.Namespace == "" {
		cfg.Namespace = "floaties"
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = "fetch"
	}
	if cfg.Buckets == nil {
		cfg.Buckets = prometheus.DefBuckets
	}
	if cfg.Registry == nil {
		cfg.Registry = prometheus.DefaultRegisterer
	}

	factory := promauto.With(cfg.Registry)

	return &Metrics{
		started: factory.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "started_total",
			Help:      "Total number of fetches started",
		}),
		completed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "completed_total",
			Help:      "Total number of fetch completions applied, by outcome",
		}, []string{"outcome"}),
		discarded: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "discarded_total",
			Help:      "Total number of fetch completions discarded, by reason",
		}, []string{"reason"}),
		illegal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "illegal_transitions_total",
			Help:      "Total number of ignored illegal state transitions",
		}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "duration_seconds",
			Help:      "Time from fetch start to completion in seconds",
			Buckets:   cfg.Buckets,
		}, []string{"outcome"}),
	}
}

func (m *Metrics) recordStarted() {
	if m == nil {
		return
	}
	m.started.Inc()
}

func (m *Metrics) recordCompleted(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.completed.WithLabelValues(outcome).Inc()
	m.duration.WithLabelValues(outcome).Observe(seconds)
}

func (m *Metrics) recordDiscarded(reason string) {
	if m == nil {
		return
	}
	m.discarded.WithLabelValues(reason).Inc()
}

func (m *Metrics) recordIllegal() {
	if m == nil {
		return
	}
	m.illegal.Inc()
}
