package metrics

import "github.com/prometheus/client_golang/prometheus"

// Vector database and chat Prometheus metrics.
var (
	QueryRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "magicchat",
			Name:      "query_requests_total",
			Help:      "Total number of vector database queries",
		},
		[]string{"mode", "status"},
	)

	QueryRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "magicchat",
			Name:      "query_request_duration_seconds",
			Help:      "Vector database query duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"mode"},
	)

	QueryResultRows = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "magicchat",
			Name:      "query_result_rows",
			Help:      "Number of cards returned per query",
			Buckets:   []float64{0, 1, 3, 6, 9, 15, 30},
		},
		[]string{"mode"},
	)

	QueryCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "magicchat",
			Name:      "query_cache_total",
			Help:      "Query result cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	TurnsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "magicchat",
			Name:      "chat_turns_total",
			Help:      "Chat turns by mode and outcome",
		},
		[]string{"mode", "outcome"},
	)
)

var queryMetricsRegistered bool

// RegisterQueryMetrics registers query, cache and chat metrics. Must be called once from main.
func RegisterQueryMetrics() {
	if queryMetricsRegistered {
		return
	}
	prometheus.MustRegister(QueryRequestsTotal)
	prometheus.MustRegister(QueryRequestDuration)
	prometheus.MustRegister(QueryResultRows)
	prometheus.MustRegister(QueryCacheTotal)
	prometheus.MustRegister(TurnsTotal)
	queryMetricsRegistered = true
}
