package providers

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"mediabot/internal/structures"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncInteractions(kind string)
	IncBackendCalls(operation string, status int)
	ObserveBackendDuration(operation string, duration time.Duration)
	IncReauth(result string)
	IncCacheHits()
	IncCacheMisses()
	ObservePersistenceDuration(duration time.Duration)
	SetAllowListedUsers(count int)
	SetSessions(count int)
}

type MetricsProvider struct {
	requestsTotal       *prometheus.CounterVec
	requestDuration     *prometheus.HistogramVec
	interactionsTotal   *prometheus.CounterVec
	backendCalls        *prometheus.CounterVec
	backendDuration     *prometheus.HistogramVec
	reauthTotal         *prometheus.CounterVec
	cacheHits           prometheus.Counter
	cacheMisses         prometheus.Counter
	persistenceDuration prometheus.Histogram
	allowListedUsers    prometheus.Gauge
	sessions            prometheus.Gauge
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncInteractions(kind string) {
	m.interactionsTotal.WithLabelValues(kind).Inc()
}

func (m *MetricsProvider) IncBackendCalls(operation string, status int) {
	m.backendCalls.WithLabelValues(operation, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveBackendDuration(operation string, duration time.Duration) {
	m.backendDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncReauth(result string) {
	m.reauthTotal.WithLabelValues(result).Inc()
}

func (m *MetricsProvider) IncCacheHits() {
	m.cacheHits.Inc()
}

func (m *MetricsProvider) IncCacheMisses() {
	m.cacheMisses.Inc()
}

func (m *MetricsProvider) ObservePersistenceDuration(duration time.Duration) {
	m.persistenceDuration.Observe(duration.Seconds())
}

func (m *MetricsProvider) SetAllowListedUsers(count int) {
	m.allowListedUsers.Set(float64(count))
}

func (m *MetricsProvider) SetSessions(count int) {
	m.sessions.Set(float64(count))
}

// httpStatusBucket maps a status code to its class; 0 means the call never
// got a response (timeout, refused connection).
func httpStatusBucket(code int) string {
	switch {
	case code <= 0:
		return "error"
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func NewMetricsProvider(conf *structures.Config) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	return &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "mediabot_http_requests_total",
			Help: "Total number of HTTP requests served by the side server",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mediabot_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		interactionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "mediabot_interactions_total",
			Help: "Inbound chat interactions by kind",
		}, []string{"kind"}),

		backendCalls: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "mediabot_backend_calls_total",
			Help: "Backend API calls by operation and status class",
		}, []string{"operation", "status"}),

		backendDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mediabot_backend_call_duration_seconds",
			Help:    "Backend API call latency in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),

		reauthTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "mediabot_session_reauth_total",
			Help: "Automatic session re-login attempts by result",
		}, []string{"result"}),

		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mediabot_conversation_cache_hits_total",
			Help: "Conversation context lookups that found an entry",
		}),

		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mediabot_conversation_cache_misses_total",
			Help: "Conversation context lookups that fell back to idle",
		}),

		persistenceDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "mediabot_persistence_duration_seconds",
			Help:    "Duration of record writes in seconds",
			Buckets: prometheus.DefBuckets,
		}),

		allowListedUsers: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "mediabot_allow_listed_users",
			Help: "Allow-listed, non-blocked chat users",
		}),

		sessions: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "mediabot_sessions",
			Help: "Stored backend sessions",
		}),
	}
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncInteractions(_ string)                         {}
func (n *noopMetrics) IncBackendCalls(_ string, _ int)                  {}
func (n *noopMetrics) ObserveBackendDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncReauth(_ string)                               {}
func (n *noopMetrics) IncCacheHits()                                    {}
func (n *noopMetrics) IncCacheMisses()                                  {}
func (n *noopMetrics) ObservePersistenceDuration(_ time.Duration)       {}
func (n *noopMetrics) SetAllowListedUsers(_ int)                        {}
func (n *noopMetrics) SetSessions(_ int)                                {}
