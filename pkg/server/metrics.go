package server

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures the Prometheus metrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "widget").
	Namespace string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for frame dispatch duration.
	// Default: prometheus.DefBuckets.
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer.
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus metrics.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
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
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "widget",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// metrics holds the Prometheus metrics for the widget server.
type metrics struct {
	framesTotal     *prometheus.CounterVec
	frameDuration   *prometheus.HistogramVec
	invalidHandlers prometheus.Counter
	tasksCompleted  prometheus.Counter
	activeSessions  prometheus.Gauge
	sessionsRefused prometheus.Counter
	treeBytes       prometheus.Histogram
}

var (
	globalMetrics   *metrics
	globalMetricsMu sync.Mutex
)

func initMetrics(config MetricsConfig) *metrics {
	factory := promauto.With(config.Registry)

	return &metrics{
		framesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "frames_total",
			Help:        "Total inbound frames dispatched, by type and status",
			ConstLabels: config.ConstLabels,
		}, []string{"type", "status"}),

		frameDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Name:        "frame_duration_seconds",
			Help:        "Frame dispatch duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"type"}),

		invalidHandlers: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "invalid_handler_total",
			Help:        "Events dropped because their route or handler id dangled",
			ConstLabels: config.ConstLabels,
		}),

		tasksCompleted: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "tasks_completed_total",
			Help:        "Task completions delivered to sessions",
			ConstLabels: config.ConstLabels,
		}),

		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Name:        "active_sessions",
			Help:        "Number of active widget sessions",
			ConstLabels: config.ConstLabels,
		}),

		sessionsRefused: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "sessions_refused_total",
			Help:        "Sessions refused at the session cap",
			ConstLabels: config.ConstLabels,
		}),

		treeBytes: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Name:        "tree_bytes",
			Help:        "Serialized tree size in bytes",
			ConstLabels: config.ConstLabels,
			Buckets:     []float64{256, 1024, 4096, 16384, 65536, 262144},
		}),
	}
}

// EnableMetrics initializes the Prometheus metrics once. Later calls
// are no-ops so tests and multiple servers can share the registry.
func EnableMetrics(opts ...MetricsOption) {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	globalMetricsMu.Lock()
	defer globalMetricsMu.Unlock()
	if globalMetrics == nil {
		globalMetrics = initMetrics(config)
	}
}

func recordFrame(frameType string, seconds float64, status string) {
	if globalMetrics == nil {
		return
	}
	globalMetrics.framesTotal.WithLabelValues(frameType, status).Inc()
	globalMetrics.frameDuration.WithLabelValues(frameType).Observe(seconds)
}

func recordInvalidHandler() {
	if globalMetrics != nil {
		globalMetrics.invalidHandlers.Inc()
	}
}

func recordTaskCompleted() {
	if globalMetrics != nil {
		globalMetrics.tasksCompleted.Inc()
	}
}

func recordSessionOpen() {
	if globalMetrics != nil {
		globalMetrics.activeSessions.Inc()
	}
}

func recordSessionClose() {
	if globalMetrics != nil {
		globalMetrics.activeSessions.Dec()
	}
}

func recordSessionRefused() {
	if globalMetrics != nil {
		globalMetrics.sessionsRefused.Inc()
	}
}

func recordTreeBytes(n int) {
	if globalMetrics != nil {
		globalMetrics.treeBytes.Observe(float64(n))
	}
}
