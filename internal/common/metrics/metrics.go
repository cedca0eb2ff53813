// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	QueriesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "queryengine_queries_total",
			Help: "Total number of queries processed by the engine",
		},
		[]string{"collection", "intent_type", "source"},
	)

	ClassifierFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "queryengine_classifier_fallbacks_total",
			Help: "Number of times the model path failed and the rule-based classifier answered",
		},
		[]string{"reason"},
	)

	BackendErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "queryengine_backend_errors_total",
			Help: "Backend failures absorbed into empty result sets",
		},
		[]string{"collection", "error_code"},
	)

	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "queryengine_query_duration_seconds",
			Help: "Duration of query processing in seconds",
		},
		[]string{"collection"},
	)
)
