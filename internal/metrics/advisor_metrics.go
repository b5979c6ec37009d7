package metrics

import "github.com/prometheus/client_golang/prometheus"

// Advisor counter vectors
var (
	AdvisorRecommendationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "advisor_recommendations_total",
		Help:      "Total number of accepted advisor recommendations by action",
	}, []string{"advisor", "action"})

	AdvisorFallbacksTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "advisor_fallbacks_total",
		Help:      "Total number of periods that fell back to HOLD by reason",
	}, []string{"advisor", "reason"})
)

// Advisor histogram vectors
var (
	AdvisorConfidence = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "advisor_confidence",
		Help:      "Confidence of accepted advisor recommendations",
		Buckets:   []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0},
	}, []string{"advisor"})

	AdvisorLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "advisor_latency_seconds",
		Help:      "Latency of advisor calls in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"advisor"})
)

// RecordAdvisorCall records the latency of one advisor call.
func RecordAdvisorCall(advisor string, durationSeconds float64) {
	AdvisorLatency.WithLabelValues(advisor).Observe(durationSeconds)
}

// RecordRecommendation records an accepted recommendation.
func RecordRecommendation(advisor, action string, confidence float64) {
	AdvisorRecommendationsTotal.WithLabelValues(advisor, action).Inc()
	AdvisorConfidence.WithLabelValues(advisor).Observe(confidence)
}

// RecordAdvisorFallback records a period decided by the HOLD fallback.
// reason should be one of: "error", "malformed"
func RecordAdvisorFallback(advisor, reason string) {
	AdvisorFallbacksTotal.WithLabelValues(advisor, reason).Inc()
}
