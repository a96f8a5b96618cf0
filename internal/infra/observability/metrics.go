package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the portal API.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	externalErrors  *prometheus.CounterVec
	cacheHits       *prometheus.CounterVec
	cacheMisses     *prometheus.CounterVec
	resourceOps     *prometheus.CounterVec
	notifications   *prometheus.CounterVec
	uploadedBytes   *prometheus.CounterVec
	requestsTotal   *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "portal_request_duration_seconds",
				Help:    "Duration of requests by operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		externalErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_external_errors_total",
				Help: "Total errors from external services.",
			},
			[]string{"service"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		resourceOps: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_resource_operations_total",
				Help: "Total store operations by resource and outcome.",
			},
			[]string{"resource", "operation", "outcome"},
		),
		notifications: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_notifications_total",
				Help: "Total user notifications emitted by level.",
			},
			[]string{"level"},
		),
		uploadedBytes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_uploaded_bytes_total",
				Help: "Total bytes uploaded to storage by bucket.",
			},
			[]string{"bucket"},
		),
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_requests_total",
				Help: "Total requests processed.",
			},
			[]string{"status"},
		),
	}
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrExternalError increments the external error counter.
func (m *Metrics) IncrExternalError(service string) {
	m.externalErrors.WithLabelValues(service).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// IncrResourceOp increments the store-operation counter.
func (m *Metrics) IncrResourceOp(resource, operation, outcome string) {
	m.resourceOps.WithLabelValues(resource, operation, outcome).Inc()
}

// IncrNotification increments the notification counter for a level.
func (m *Metrics) IncrNotification(level string) {
	m.notifications.WithLabelValues(level).Inc()
}

// AddUploadedBytes records bytes written to a storage bucket.
func (m *Metrics) AddUploadedBytes(bucket string, n int64) {
	m.uploadedBytes.WithLabelValues(bucket).Add(float64(n))
}

// IncrRequest increments the request counter with a status label.
func (m *Metrics) IncrRequest(status string) {
	m.requestsTotal.WithLabelValues(status).Inc()
}

// ErrorRate returns the fraction of processed requests that errored.
func (m *Metrics) ErrorRate() float64 {
	errs := getCounterValue(m.requestsTotal, "error")
	total := errs + getCounterValue(m.requestsTotal, "success")
	if total == 0 {
		return 0
	}
	return errs / total
}

// getCounterValue extracts the current float64 value from a CounterVec for a given label.
func getCounterValue(cv *prometheus.CounterVec, label string) float64 {
	counter := cv.WithLabelValues(label)
	m := &dto.Metric{}
	if err := counter.(prometheus.Metric).Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
