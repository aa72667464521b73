package host

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Intent outcome labels.
const (
	OutcomeAccepted = "accepted"
	OutcomeRejected = "rejected"
)

// MetricsConfig configures the host metrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "floaties").
	Namespace string

	// Subsystem is the metrics subsystem (default: "host").
	Subsystem string

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Metrics records connection and frame counts. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	active      prometheus.Gauge
	connections prometheus.Counter
	intents     *prometheus.CounterVec
	frames      prometheus.Counter
	frameBytes  prometheus.Counter
	writeErrors prometheus.Counter
}

// NewMetrics registers the host metrics with cfg.Registry.
func NewMetrics(cfg MetricsConfig) *Metrics {
	if cfg.Namespace == "" {
		cfg.Namespace = "floaties"
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = "host"
	}
	if cfg.Registry == nil {
		cfg.Registry = prometheus.DefaultRegisterer
	}

	factory := promauto.With(cfg.Registry)

	return &Metrics{
		active: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "connections_active",
			Help:      "Number of open websocket connections",
		}),
		connections: factory.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "connections_total",
			Help:      "Total number of websocket connections accepted",
		}),
		intents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "intents_total",
			Help:      "Total number of client intents, by type and outcome",
		}, []string{"type", "outcome"}),
		frames: factory.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "frames_total",
			Help:      "Total number of frames written to clients",
		}),
		frameBytes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "frame_html_bytes_total",
			Help:      "Total rendered HTML bytes written to clients",
		}),
		writeErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "write_errors_total",
			Help:      "Total number of failed websocket writes",
		}),
	}
}

func (m *Metrics) connOpened() {
	if m == nil {
		return
	}
	m.connections.Inc()
	m.active.Inc()
}

func (m *Metrics) connClosed() {
	if m == nil {
		return
	}
	m.active.Dec()
}

func (m *Metrics) intent(kind, outcome string) {
	if m == nil {
		return
	}
	m.intents.WithLabelValues(kind, outcome).Inc()
}

func (m *Metrics) frame(htmlBytes int) {
	if m == nil {
		return
	}
	m.frames.Inc()
	m.frameBytes.Add(float64(htmlBytes))
}

func (m *Metrics) writeError() {
	if m == nil {
		return
	}
	m.writeErrors.Inc()
}
