package service

import (
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/attendance-api/internal/attendance"
	"github.com/noah-isme/attendance-api/internal/models"
)

// MetricsService owns the Prometheus registry and keeps running totals for snapshots.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Observer
	cacheWrite      prometheus.Observer
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	cacheInvalidate prometheus.Counter
	dbQueryDuration *prometheus.HistogramVec
	marks           *prometheus.CounterVec
	anomalies       *prometheus.CounterVec

	cacheHitCount        uint64
	cacheMissCount       uint64
	invalidateFailCount  uint64
	requestCount         uint64
	requestErrorCount    uint64
	requestDurationTotal uint64
	dbQueryCount         uint64
	dbQueryDurationTotal uint64

	mu              sync.Mutex
	marksByAction   map[string]float64
	anomaliesByKind map[string]float64
}

// NewMetricsService registers the collectors on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	m := &MetricsService{
		registry: registry,
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		dbQueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Duration of database queries",
			Buckets: prometheus.DefBuckets,
		}, []string{"query"}),
		marks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "attendance_marks_total",
			Help: "Attendance marks written, by resulting action",
		}, []string{"action"}),
		anomalies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "attendance_anomalies_total",
			Help: "Attendance records skipped or superseded during aggregation",
		}, []string{"kind"}),
		marksByAction:   make(map[string]float64),
		anomaliesByKind: make(map[string]float64),
	}

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache lookups",
		Buckets: prometheus.DefBuckets,
	})
	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_write_seconds",
		Help:    "Latency for cache writes",
		Buckets: prometheus.DefBuckets,
	})
	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})
	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})
	cacheInvalidate := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_invalidation_failures_total",
		Help: "Cache invalidations that failed and left stale entries until expiry",
	})
	cacheHitRatio := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "cache_hit_ratio",
		Help: "Ratio of cache hits to total cache lookups",
	}, m.cacheRatio)

	m.cacheLatency = cacheLatency
	m.cacheWrite = cacheWrite
	m.cacheHits = cacheHits
	m.cacheMisses = cacheMisses
	m.cacheInvalidate = cacheInvalidate

	registry.MustRegister(
		m.requestDuration, m.requestTotal, m.dbQueryDuration, m.marks, m.anomalies,
		cacheLatency, cacheWrite, cacheHits, cacheMisses, cacheInvalidate, cacheHitRatio,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return m
}

// Registry exposes the underlying registry, mainly for tests.
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
	if status >= http.StatusInternalServerError {
		atomic.AddUint64(&m.requestErrorCount, 1)
	}
}

// RecordCacheOperation records a cache lookup.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheHits.Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
		return
	}
	m.cacheMisses.Inc()
	atomic.AddUint64(&m.cacheMissCount, 1)
}

// ObserveCacheWrite tracks the duration for cache write operations.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// RecordCacheInvalidationFailure counts an invalidation that did not go through.
func (m *MetricsService) RecordCacheInvalidationFailure() {
	if m == nil {
		return
	}
	m.cacheInvalidate.Inc()
	atomic.AddUint64(&m.invalidateFailCount, 1)
}

// ObserveDBQuery records database query timing.
func (m *MetricsService) ObserveDBQuery(label string, duration time.Duration) {
	if m == nil {
		return
	}
	m.dbQueryDuration.WithLabelValues(label).Observe(duration.Seconds())
	atomic.AddUint64(&m.dbQueryCount, 1)
	atomic.AddUint64(&m.dbQueryDurationTotal, uint64(duration.Nanoseconds()))
}

// RecordMark counts a successful attendance write.
func (m *MetricsService) RecordMark(action attendance.Action) {
	if m == nil {
		return
	}
	m.marks.WithLabelValues(string(action)).Inc()
	m.mu.Lock()
	m.marksByAction[string(action)]++
	m.mu.Unlock()
}

// RecordAnomaly counts one skipped or superseded record.
func (m *MetricsService) RecordAnomaly(kind attendance.AnomalyKind) {
	if m == nil {
		return
	}
	m.anomalies.WithLabelValues(string(kind)).Inc()
	m.mu.Lock()
	m.anomaliesByKind[string(kind)]++
	m.mu.Unlock()
}

// Snapshot returns aggregated metrics for the JSON metrics endpoint.
func (m *MetricsService) Snapshot() models.SystemMetrics {
	if m == nil {
		return models.SystemMetrics{}
	}
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)
	reqErrors := atomic.LoadUint64(&m.requestErrorCount)
	dbCount := atomic.LoadUint64(&m.dbQueryCount)
	dbDuration := atomic.LoadUint64(&m.dbQueryDurationTotal)

	snapshot := models.SystemMetrics{
		RequestCount:              float64(requests),
		CacheHitRatio:             m.cacheRatio(),
		CacheInvalidationFailures: float64(atomic.LoadUint64(&m.invalidateFailCount)),
		MarksByAction:             make(map[string]float64),
		AnomaliesByKind:           make(map[string]float64),
	}
	if requests > 0 {
		snapshot.AvgLatencyMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
		snapshot.ErrorRate = float64(reqErrors) / float64(requests)
	}
	if dbCount > 0 {
		snapshot.AvgDBQueryMs = float64(dbDuration) / float64(dbCount) / float64(time.Millisecond)
	}

	m.mu.Lock()
	for k, v := range m.marksByAction {
		snapshot.MarksByAction[k] = v
	}
	for k, v := range m.anomaliesByKind {
		snapshot.AnomaliesByKind[k] = v
	}
	m.mu.Unlock()
	return snapshot
}

func (m *MetricsService) cacheRatio() float64 {
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	if hits+misses == 0 {
		return 0
	}
	return float64(hits) / float64(hits+misses)
}
