package service

import (
	"net/http"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/campus-records-api/internal/models"
)

// MetricsService owns the Prometheus registry and keeps running totals for the
// JSON snapshot served to administrators. A nil *MetricsService is a no-op.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Observer
	cacheHitRatio   prometheus.Gauge
	cacheLookups    *prometheus.CounterVec
	logins          *prometheus.CounterVec
	exports         *prometheus.CounterVec

	cacheHitCount        uint64
	cacheMissCount       uint64
	requestCount         uint64
	requestDurationTotal uint64
	loginSuccessCount    uint64
	loginFailureCount    uint64
	exportCount          uint64
}

// NewMetricsService registers the collectors exposed on /metrics.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache lookups",
		Buckets: prometheus.DefBuckets,
	})

	cacheHitRatio := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cache_hit_ratio",
		Help: "Ratio of cache hits to total cache lookups",
	})

	cacheLookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_lookups_total",
		Help: "Cache lookups by result",
	}, []string{"result"})

	logins := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_logins_total",
		Help: "Login attempts by outcome",
	}, []string{"outcome"})

	exports := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "transcript_exports_total",
		Help: "Rendered exports by kind and format",
	}, []string{"kind", "format"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheHitRatio, cacheLookups, logins, exports, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		cacheLatency:    cacheLatency,
		cacheHitRatio:   cacheHitRatio,
		cacheLookups:    cacheLookups,
		logins:          logins,
		exports:         exports,
	}
}

// Registry exposes the underlying registry for tests and extra collectors.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// RecordCacheOperation records a cache lookup and updates the hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheLookups.WithLabelValues("hit").Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
	} else {
		m.cacheLookups.WithLabelValues("miss").Inc()
		atomic.AddUint64(&m.cacheMissCount, 1)
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	total := hits + atomic.LoadUint64(&m.cacheMissCount)
	if total > 0 {
		m.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}

// RecordLogin counts a login attempt.
func (m *MetricsService) RecordLogin(success bool) {
	if m == nil {
		return
	}
	if success {
		m.logins.WithLabelValues("success").Inc()
		atomic.AddUint64(&m.loginSuccessCount, 1)
		return
	}
	m.logins.WithLabelValues("failure").Inc()
	atomic.AddUint64(&m.loginFailureCount, 1)
}

// RecordExport counts a rendered export document.
func (m *MetricsService) RecordExport(kind, format string) {
	if m == nil {
		return
	}
	m.exports.WithLabelValues(kind, format).Inc()
	atomic.AddUint64(&m.exportCount, 1)
}

// Snapshot returns aggregated totals since process start.
func (m *MetricsService) Snapshot() models.SystemMetrics {
	if m == nil {
		return models.SystemMetrics{}
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)

	var cacheRatio float64
	if lookups := hits + misses; lookups > 0 {
		cacheRatio = float64(hits) / float64(lookups)
	}

	var avgRequestMs float64
	if requests > 0 {
		avgRequestMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}

	return models.SystemMetrics{
		RequestsTotal:            requests,
		AverageRequestDurationMs: avgRequestMs,
		CacheHits:                hits,
		CacheMisses:              misses,
		CacheHitRatio:            cacheRatio,
		LoginsSucceeded:          atomic.LoadUint64(&m.loginSuccessCount),
		LoginsFailed:             atomic.LoadUint64(&m.loginFailureCount),
		ExportsTotal:             atomic.LoadUint64(&m.exportCount),
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}
