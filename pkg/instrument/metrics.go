package instrument

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures the Prometheus collectors.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "morph").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for reconcile duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures NewMetrics.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
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
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "morph",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the reconcile collectors. Create one per registry; creating
// two against the same registry panics on duplicate registration.
type Metrics struct {
	reconcilesTotal   *prometheus.CounterVec
	reconcileDuration prometheus.Histogram
	mutationsTotal    *prometheus.CounterVec
	nodesAdded        prometheus.Counter
	nodesDiscarded    prometheus.Counter
	elementsUpdated   prometheus.Counter
	liveTrees         prometheus.Gauge
	watchers          prometheus.Gauge
}

// NewMetrics creates and registers the collectors.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	counter := func(name, help string) prometheus.Counter {
		return factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: config.ConstLabels,
		})
	}
	gauge := func(name, help string) prometheus.Gauge {
		return factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: config.ConstLabels,
		})
	}

	return &Metrics{
		reconcilesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "reconciles_total",
			Help:        "Total number of reconciles by status",
			ConstLabels: config.ConstLabels,
		}, []string{"status"}),

		reconcileDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "reconcile_duration_seconds",
			Help:        "Reconcile duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		mutationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "mutations_total",
			Help:        "Total number of mutations applied to live trees by op",
			ConstLabels: config.ConstLabels,
		}, []string{"op"}),

		nodesAdded:      counter("nodes_added_total", "Total number of nodes added to live trees"),
		nodesDiscarded:  counter("nodes_discarded_total", "Total number of nodes discarded from live trees"),
		elementsUpdated: counter("elements_updated_total", "Total number of elements whose attributes or properties changed"),
		liveTrees:       gauge("live_trees", "Number of live trees held by the server"),
		watchers:        gauge("watchers", "Number of connected mutation watchers"),
	}
}

// Observe records a finished reconcile.
func (m *Metrics) Observe(s Summary, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.reconcilesTotal.WithLabelValues(status).Inc()
	m.reconcileDuration.Observe(s.Duration.Seconds())
	for op, n := range s.Mutations {
		m.mutationsTotal.WithLabelValues(op).Add(float64(n))
	}
	m.nodesAdded.Add(float64(s.Added))
	m.nodesDiscarded.Add(float64(s.Discarded))
	m.elementsUpdated.Add(float64(s.Updated))
}

// TreeCreated increments the live tree gauge.
func (m *Metrics) TreeCreated() {
	if m != nil {
		m.liveTrees.Inc()
	}
}

// TreeDeleted decrements the live tree gauge.
func (m *Metrics) TreeDeleted() {
	if m != nil {
		m.liveTrees.Dec()
	}
}

// WatcherConnected increments the watcher gauge.
func (m *Metrics) WatcherConnected() {
	if m != nil {
		m.watchers.Inc()
	}
}

// WatcherDisconnected decrements the watcher gauge.
func (m *Metrics) WatcherDisconnected() {
	if m != nil {
		m.watchers.Dec()
	}
}
