package service

import (
	"net/http"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the API.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Observer
	cacheWrite      prometheus.Observer
	cacheHitRatio   prometheus.Gauge
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	llmDuration     *prometheus.HistogramVec
	llmOutcomes     *prometheus.CounterVec
	sessionsCreated *prometheus.CounterVec
	commentsAdded   prometheus.Counter
	approvalChanges *prometheus.CounterVec
	profilesCreated *prometheus.CounterVec

	cacheHitCount  uint64
	cacheMissCount uint64
}

// NewMetricsService registers core Prometheus collectors.
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
		Help:    "Latency for cache operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_write_seconds",
		Help:    "Latency for cache set operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheHitRatio := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cache_hit_ratio",
		Help: "Ratio of cache hits to total cache lookups",
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	llmDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "llm_request_duration_seconds",
		Help:    "Duration of text-generation calls including retries",
		Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 30, 45, 60},
	}, []string{"provider", "purpose"})

	llmOutcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "llm_requests_total",
		Help: "Text-generation calls by outcome",
	}, []string{"provider", "purpose", "outcome"})

	sessionsCreated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "accommodation_sessions_created_total",
		Help: "Accommodation sessions persisted by effective plan tier",
	}, []string{"plan"})

	commentsAdded := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "session_comments_added_total",
		Help: "Comments appended to sessions",
	})

	approvalChanges := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "session_approval_changes_total",
		Help: "Approval toggles by resulting state",
	}, []string{"approved"})

	profilesCreated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "autism_profiles_created_total",
		Help: "Autism profiles persisted by profile type",
	}, []string{"type"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(
		requestDuration, requestTotal,
		cacheLatency, cacheWrite, cacheHitRatio, cacheHits, cacheMisses,
		llmDuration, llmOutcomes,
		sessionsCreated, commentsAdded, approvalChanges,
		profilesCreated,
		goroutines,
	)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		cacheLatency:    cacheLatency,
		cacheWrite:      cacheWrite,
		cacheHitRatio:   cacheHitRatio,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
		llmDuration:     llmDuration,
		llmOutcomes:     llmOutcomes,
		sessionsCreated: sessionsCreated,
		commentsAdded:   commentsAdded,
		approvalChanges: approvalChanges,
		profilesCreated: profilesCreated,
	}
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

// Registry exposes the underlying registry, mainly for tests.
func (m *MetricsService) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordCacheOperation records cache hit/miss metrics and updates hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheHits.Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
	} else {
		m.cacheMisses.Inc()
		atomic.AddUint64(&m.cacheMissCount, 1)
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	total := hits + atomic.LoadUint64(&m.cacheMissCount)
	if total > 0 {
		m.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}

// ObserveCacheWrite tracks the duration for cache write operations.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// ObserveLLMCall records how long a generation call took, retries included.
func (m *MetricsService) ObserveLLMCall(provider, purpose string, duration time.Duration) {
	if m == nil {
		return
	}
	m.llmDuration.WithLabelValues(provider, purpose).Observe(duration.Seconds())
}

// RecordLLMOutcome counts a generation result: success, upstream_error or invalid_response.
func (m *MetricsService) RecordLLMOutcome(provider, purpose, outcome string) {
	if m == nil {
		return
	}
	m.llmOutcomes.WithLabelValues(provider, purpose, outcome).Inc()
}

// RecordSessionCreated counts a persisted session by effective tier.
func (m *MetricsService) RecordSessionCreated(plan string) {
	if m == nil {
		return
	}
	m.sessionsCreated.WithLabelValues(plan).Inc()
}

func (m *MetricsService) RecordCommentAdded() {
	if m == nil {
		return
	}
	m.commentsAdded.Inc()
}

func (m *MetricsService) RecordApprovalChange(approved bool) {
	if m == nil {
		return
	}
	m.approvalChanges.WithLabelValues(strconv.FormatBool(approved)).Inc()
}

// RecordAutismProfileCreated counts a persisted profile by type.
func (m *MetricsService) RecordAutismProfileCreated(profileType string) {
	if m == nil {
		return
	}
	m.profilesCreated.WithLabelValues(profileType).Inc()
}
