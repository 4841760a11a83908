package monitoring

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for outbound client traffic
type Metrics struct {
	// Request metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec
	RequestErrors   *prometheus.CounterVec
	InFlight        prometheus.Gauge

	// Cache metrics
	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter

	// Rate limit metrics
	RateLimitWait prometheus.Histogram

	registry *prometheus.Registry

	// Snapshot for CLI output - track current values
	snapshot MetricsSnapshot

	mu sync.RWMutex
}

// MetricsSnapshot holds current metric values
type MetricsSnapshot struct {
	TotalRequests int64
	TotalErrors   int64
	CacheHits     int64
	CacheMisses   int64
	TotalDuration float64 // sum of all request durations
	RequestCount  int64   // count for averaging
}

// AverageDuration returns the mean request duration in seconds.
func (s MetricsSnapshot) AverageDuration() float64 {
	if s.RequestCount == 0 {
		return 0
	}
	return s.TotalDuration / float64(s.RequestCount)
}

// NewMetrics creates collectors on a private registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := NewMetricsWith(reg)
	m.registry = reg
	return m
}

// NewMetricsWith registers the collectors on reg
func NewMetricsWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "foundation_client_requests_total",
				Help: "Total number of outbound HTTP requests",
			},
			[]string{"method", "host", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "foundation_client_request_duration_seconds",
				Help:    "Outbound HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "host"},
		),
		ResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "foundation_client_response_size_bytes",
				Help:    "Outbound HTTP response body size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000, 10000000},
			},
			[]string{"method", "host"},
		),
		RequestErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "foundation_client_request_errors_total",
				Help: "Outbound requests that produced no response",
			},
			[]string{"method", "host", "kind"},
		),
		InFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "foundation_client_requests_in_flight",
				Help: "Outbound requests currently in flight",
			},
		),

		CacheHits: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "foundation_client_cache_hits_total",
				Help: "Responses served from the response cache",
			},
		),
		CacheMisses: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "foundation_client_cache_misses_total",
				Help: "Cacheable requests that went to the network",
			},
		),

		RateLimitWait: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "foundation_client_rate_limit_wait_seconds",
				Help:    "Time spent waiting for a rate limit token",
				Buckets: []float64{.001, .01, .1, .5, 1, 5},
			},
		),
	}
}

// Registry returns the private registry, or nil when built with NewMetricsWith
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordRequest records a completed request
func (m *Metrics) RecordRequest(method, host, status string, duration time.Duration, respSize int64) {
	m.RequestsTotal.WithLabelValues(method, host, status).Inc()
	m.RequestDuration.WithLabelValues(method, host).Observe(duration.Seconds())
	m.ResponseSize.WithLabelValues(method, host).Observe(float64(respSize))

	m.mu.Lock()
	m.snapshot.TotalRequests++
	m.snapshot.TotalDuration += duration.Seconds()
	m.snapshot.RequestCount++
	if status != "" && (status[0] == '4' || status[0] == '5') {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// RecordError records a request that failed before producing a response
func (m *Metrics) RecordError(method, host, kind string, duration time.Duration) {
	m.RequestErrors.WithLabelValues(method, host, kind).Inc()
	m.RequestDuration.WithLabelValues(method, host).Observe(duration.Seconds())

	m.mu.Lock()
	m.snapshot.TotalRequests++
	m.snapshot.TotalErrors++
	m.snapshot.TotalDuration += duration.Seconds()
	m.snapshot.RequestCount++
	m.mu.Unlock()
}

// RecordCacheHit increments the cache hit counter
func (m *Metrics) RecordCacheHit() {
	m.CacheHits.Inc()
	m.mu.Lock()
	m.snapshot.CacheHits++
	m.mu.Unlock()
}

// RecordCacheMiss increments the cache miss counter
func (m *Metrics) RecordCacheMiss() {
	m.CacheMisses.Inc()
	m.mu.Lock()
	m.snapshot.CacheMisses++
	m.mu.Unlock()
}

// RecordRateLimitWait observes time spent blocked on the limiter
func (m *Metrics) RecordRateLimitWait(d time.Duration) {
	m.RateLimitWait.Observe(d.Seconds())
}

// Snapshot returns a copy of the running totals
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}
