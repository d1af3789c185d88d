package observability

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsConfig holds configuration for Prometheus metrics middleware
type MetricsConfig struct {
	// Logger for structured logging
	Logger *slog.Logger

	// Registerer receives every collector (default: prometheus.DefaultRegisterer)
	Registerer prometheus.Registerer

	// Namespace for metrics (e.g., "zupos")
	Namespace string

	// Subsystem for HTTP metrics (e.g., "http")
	Subsystem string

	// Buckets for response time histogram
	Buckets []float64

	// SkipPaths defines paths that should not be metered
	SkipPaths []string
}

// DefaultMetricsConfig returns a default metrics configuration
func DefaultMetricsConfig(namespace string) *MetricsConfig {
	return &MetricsConfig{
		Namespace: namespace,
		Subsystem: "http",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		SkipPaths: []string{"/metrics", "/health"},
	}
}

// Metrics holds Prometheus metric collectors
type Metrics struct {
	config *MetricsConfig
	logger *slog.Logger

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	responseSize    *prometheus.HistogramVec
	activeRequests  prometheus.Gauge

	menuFetches       *prometheus.CounterVec
	menuFetchDuration prometheus.Histogram
}

// NewMetrics creates and registers Prometheus metrics
func NewMetrics(config *MetricsConfig) *Metrics {
	if config == nil {
		config = DefaultMetricsConfig("zupos")
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	reg := config.Registerer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	logger.Info("initializing prometheus metrics",
		"namespace", config.Namespace,
		"subsystem", config.Subsystem,
	)

	return &Metrics{
		config: config,
		logger: logger,
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: config.Namespace,
				Subsystem: config.Subsystem,
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: config.Namespace,
				Subsystem: config.Subsystem,
				Name:      "request_duration_seconds",
				Help:      "HTTP request latency in seconds",
				Buckets:   config.Buckets,
			},
			[]string{"method", "route", "status"},
		),
		responseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: config.Namespace,
				Subsystem: config.Subsystem,
				Name:      "response_size_bytes",
				Help:      "HTTP response size in bytes",
				Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
			},
			[]string{"method", "route"},
		),
		activeRequests: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: config.Namespace,
				Subsystem: config.Subsystem,
				Name:      "requests_active",
				Help:      "Number of active HTTP requests",
			},
		),
		menuFetches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: config.Namespace,
				Subsystem: "menu",
				Name:      "fetches_total",
				Help:      "Menu tree fetches by result",
			},
			[]string{"result"},
		),
		menuFetchDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: config.Namespace,
				Subsystem: "menu",
				Name:      "fetch_duration_seconds",
				Help:      "Menu tree fetch latency in seconds",
				Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
		),
	}
}

// ObserveMenuFetch records one menu fetch.
func (m *Metrics) ObserveMenuFetch(result string, d time.Duration) {
	m.menuFetches.WithLabelValues(result).Inc()
	m.menuFetchDuration.Observe(d.Seconds())
}

// RegisterGaugeFunc exposes a value sampled at scrape time, such as the
// number of mounted menu resolvers.
func (m *Metrics) RegisterGaugeFunc(subsystem, name, help string, fn func() float64) {
	reg := m.config.Registerer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	promauto.With(reg).NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: m.config.Namespace,
		Subsystem: subsystem,
		Name:      name,
		Help:      help,
	}, fn)
}

// Middleware returns a Prometheus metrics middleware. Requests are labelled
// by chi route pattern to keep label cardinality bounded.
func (m *Metrics) Middleware() func(next http.Handler) http.Handler {
	skip := make(map[string]struct{}, len(m.config.SkipPaths))
	for _, p := range m.config.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := skip[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			m.activeRequests.Inc()
			defer m.activeRequests.Dec()

			start := time.Now()
			rw := &metricsResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(rw, r)

			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if p := rctx.RoutePattern(); p != "" {
					route = p
				}
			}
			status := strconv.Itoa(rw.statusCode)

			m.requestsTotal.WithLabelValues(r.Method, route, status).Inc()
			m.requestDuration.WithLabelValues(r.Method, route, status).Observe(time.Since(start).Seconds())
			m.responseSize.WithLabelValues(r.Method, route).Observe(float64(rw.bytesWritten))
		})
	}
}

// metricsResponseWriter wraps http.ResponseWriter to capture status code and bytes written
type metricsResponseWriter struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int
}

func (rw *metricsResponseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *metricsResponseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.bytesWritten += n
	return n, err
}

// Handler serves the metrics of g, or of the default gatherer when g is nil.
// Endpoint: GET /metrics
func Handler(g prometheus.Gatherer) http.Handler {
	if g == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
