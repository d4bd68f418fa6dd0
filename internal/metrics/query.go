package metrics

import "github.com/prometheus/client_golang/prometheus"

// Query compilation Prometheus metrics.
var (
	QueriesCompiledTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "provquery",
			Name:      "queries_compiled_total",
			Help:      "Total number of compiled query plans",
		},
		[]string{"source", "status"}, // source: http / cli; status: ok / invalid
	)

	QueryFilterFields = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "provquery",
			Name:      "query_filter_fields",
			Help:      "Number of filter fields per compiled query",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13},
		},
	)

	QueryVectorTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "provquery",
			Name:      "query_vector_total",
			Help:      "Compiled queries by active search vector",
		},
		[]string{"vector"}, // vector token or "none"
	)

	QueryLengthBytes = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "provquery",
			Name:      "query_length_bytes",
			Help:      "Length of compiled query strings",
			Buckets:   prometheus.ExponentialBuckets(16, 2, 8),
		},
	)
)

var queryMetricsRegistered bool

// RegisterQueryMetrics registers Prometheus query metrics with the default registry.
// Repeated calls are no-ops.
func RegisterQueryMetrics() {
	if queryMetricsRegistered {
		return
	}
	prometheus.MustRegister(QueriesCompiledTotal)
	prometheus.MustRegister(QueryFilterFields)
	prometheus.MustRegister(QueryVectorTotal)
	prometheus.MustRegister(QueryLengthBytes)
	queryMetricsRegistered = true
}
