package middleware

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/marycampus/advisor/pkg/server"
)

// MetricsConfig configures the Prometheus metrics middleware.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "advisor").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for resolution duration.
	// Default: prometheus.DefBuckets.
	Buckets []float64

	// Registry is the Prometheus registerer to install into.
	// Default: prometheus.DefaultRegisterer.
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus metrics middleware.
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

// WithBuckets sets the duration histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registerer.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "advisor",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// metrics holds the route-level Prometheus instruments.
type metrics struct {
	resolutions     *prometheus.CounterVec
	resolveDuration *prometheus.HistogramVec
	resolveErrors   *prometheus.CounterVec
	lazyResolutions *prometheus.CounterVec
}

// The first Prometheus() call installs the instruments; later calls
// reuse them, whatever options they carry.
var (
	globalMetrics   *metrics
	globalMetricsMu sync.Mutex
)

func initMetrics(config MetricsConfig) *metrics {
	factory := promauto.With(config.Registry)

	return &metrics{
		resolutions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "route_resolutions_total",
			Help:        "Route resolutions by route pattern and status",
			ConstLabels: config.ConstLabels,
		}, []string{"route", "status"}),

		resolveDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "route_resolve_duration_seconds",
			Help:        "Route resolution duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"route"}),

		resolveErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "route_errors_total",
			Help:        "Route resolution errors by route pattern and kind",
			ConstLabels: config.ConstLabels,
		}, []string{"route", "kind"}),

		lazyResolutions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "lazy_resolutions_total",
			Help:        "Deferred route loads by route pattern and outcome",
			ConstLabels: config.ConstLabels,
		}, []string{"route", "outcome"}),
	}
}

// Prometheus returns middleware that measures every route resolution.
//
// Metrics collected:
//   - advisor_route_resolutions_total: resolutions by route and status
//   - advisor_route_resolve_duration_seconds: resolution duration
//   - advisor_route_errors_total: failed resolutions by route and kind
//   - advisor_lazy_resolutions_total: deferred loads, fed by RecordLazyResolve
//
// Register it ahead of the route handlers and expose the registry
// over HTTP:
//
//	r.Use(middleware.Prometheus())
//	http.Handle("/metrics", promhttp.Handler())
//
// Session-level counters (live sessions, patches, bytes) come from
// NewManagerCollector, not from this middleware.
func Prometheus(opts ...MetricsOption) server.Middleware {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}

	globalMetricsMu.Lock()
	if globalMetrics == nil {
		globalMetrics = initMetrics(config)
	}
	m := globalMetrics
	globalMetricsMu.Unlock()

	return server.MiddlewareFunc(func(ctx server.Ctx, next func() error) error {
		route := routeLabel(ctx)
		start := time.Now()

		err := next()

		m.resolveDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())

		status := "success"
		if err != nil {
			status = "error"
			m.resolveErrors.WithLabelValues(route, categorizeError(err)).Inc()
		}
		m.resolutions.WithLabelValues(route, status).Inc()

		return err
	})
}

// RecordLazyResolve records the outcome of one deferred route load.
// Wrap the loader at registration:
//
//	r.Lazy("/qa", func(ctx context.Context) (router.PageHandler, error) {
//	    page, err := loadAskPage(ctx)
//	    if err != nil {
//	        middleware.RecordLazyResolve("/qa", "failed")
//	        return nil, err
//	    }
//	    middleware.RecordLazyResolve("/qa", "resolved")
//	    return page, nil
//	})
//
// No-op until Prometheus() has installed the instruments.
func RecordLazyResolve(route, outcome string) {
	globalMetricsMu.Lock()
	m := globalMetrics
	globalMetricsMu.Unlock()
	if m != nil {
		m.lazyResolutions.WithLabelValues(route, outcome).Inc()
	}
}

// routeLabel returns the matched pattern, falling back to the raw
// path so unmatched resolutions still land on a label.
func routeLabel(ctx server.Ctx) string {
	if p := ctx.Pattern(); p != "" {
		return p
	}
	if p := ctx.Path(); p != "" {
		return p
	}
	return "/"
}

// categorizeError folds errors into a small label set so messages
// never become label values.
func categorizeError(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, server.ErrNoRoute):
		return "no_route"
	case errors.Is(err, server.ErrSessionClosed):
		return "session_closed"
	}
	var herr *server.HandlerError
	if errors.As(err, &herr) {
		return "panic"
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "deadline"):
		return "timeout"
	case strings.Contains(msg, "not found"):
		return "not_found"
	case strings.Contains(msg, "unauthorized"):
		return "unauthorized"
	case strings.Contains(msg, "forbidden"):
		return "forbidden"
	default:
		return "internal"
	}
}

// ManagerCollector exposes a session manager's counters as Prometheus
// metrics, read at scrape time.
type ManagerCollector struct {
	manager *server.Manager

	live          *prometheus.Desc
	created       *prometheus.Desc
	closed        *prometheus.Desc
	restored      *prometheus.Desc
	bytesSent     *prometheus.Desc
	bytesReceived *prometheus.Desc
	patchesSent   *prometheus.Desc
	eventsHandled *prometheus.Desc
}

var _ prometheus.Collector = (*ManagerCollector)(nil)

// NewManagerCollector returns a collector over m. Register it on the
// same registry that serves /metrics:
//
//	prometheus.MustRegister(middleware.NewManagerCollector(manager))
func NewManagerCollector(m *server.Manager) *ManagerCollector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName("advisor", "", name), help, nil, nil)
	}
	return &ManagerCollector{
		manager:       m,
		live:          desc("sessions_live", "Sessions currently held by the manager, attached or detached"),
		created:       desc("sessions_created_total", "Sessions created since start"),
		closed:        desc("sessions_closed_total", "Sessions closed since start"),
		restored:      desc("sessions_restored_total", "Sessions restored from the snapshot store"),
		bytesSent:     desc("bytes_sent_total", "Frame bytes written to clients"),
		bytesReceived: desc("bytes_received_total", "Frame bytes read from clients"),
		patchesSent:   desc("patches_sent_total", "Patch frames sent to clients"),
		eventsHandled: desc("events_handled_total", "Client events dispatched to handlers"),
	}
}

// Describe implements prometheus.Collector.
func (c *ManagerCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.live
	ch <- c.created
	ch <- c.closed
	ch <- c.restored
	ch <- c.bytesSent
	ch <- c.bytesReceived
	ch <- c.patchesSent
	ch <- c.eventsHandled
}

// Collect implements prometheus.Collector.
func (c *ManagerCollector) Collect(ch chan<- prometheus.Metric) {
	st := c.manager.Stats()
	ch <- prometheus.MustNewConstMetric(c.live, prometheus.GaugeValue, float64(st.Live))
	ch <- prometheus.MustNewConstMetric(c.created, prometheus.CounterValue, float64(st.TotalCreated))
	ch <- prometheus.MustNewConstMetric(c.closed, prometheus.CounterValue, float64(st.TotalClosed))
	ch <- prometheus.MustNewConstMetric(c.restored, prometheus.CounterValue, float64(st.TotalRestored))
	ch <- prometheus.MustNewConstMetric(c.bytesSent, prometheus.CounterValue, float64(st.BytesSent))
	ch <- prometheus.MustNewConstMetric(c.bytesReceived, prometheus.CounterValue, float64(st.BytesReceived))
	ch <- prometheus.MustNewConstMetric(c.patchesSent, prometheus.CounterValue, float64(st.PatchesSent))
	ch <- prometheus.MustNewConstMetric(c.eventsHandled, prometheus.CounterValue, float64(st.EventsHandled))
}
