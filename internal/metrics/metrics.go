// Package metrics provides the Prometheus registry and collectors for backtest runs.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every metric name.
const Namespace = "advisor_backtest"

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Run-level metrics
var (
	RunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "runs_total",
		Help:      "Total number of backtest runs by status",
	}, []string{"status"})

	RunDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "run_duration_seconds",
		Help:      "Duration of backtest runs in seconds",
		Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300, 600, 1800},
	})

	FinalPortfolioValue = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "final_portfolio_value",
		Help:      "Final portfolio value of the latest run per instrument",
	}, []string{"instrument"})

	TotalReturn = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "total_return_ratio",
		Help:      "Total return of the latest run per instrument",
	}, []string{"instrument"})

	Alpha = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "alpha_ratio",
		Help:      "Strategy return minus buy-and-hold return of the latest run per instrument",
	}, []string{"instrument"})

	DataFetchDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "data_fetch_duration_seconds",
		Help:      "Duration of data source fetches in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"source", "kind"})

	CacheHitRatio = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "cache_hit_ratio",
		Help:      "Hit ratio of the point-in-time cache at the end of the latest run",
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		// Register run metrics
		registry.MustRegister(RunsTotal)
		registry.MustRegister(RunDuration)
		registry.MustRegister(FinalPortfolioValue)
		registry.MustRegister(TotalReturn)
		registry.MustRegister(Alpha)
		registry.MustRegister(DataFetchDuration)
		registry.MustRegister(CacheHitRatio)

		// Register period metrics
		registry.MustRegister(PeriodsTotal)
		registry.MustRegister(TradesTotal)

		// Register advisor metrics
		registry.MustRegister(AdvisorRecommendationsTotal)
		registry.MustRegister(AdvisorConfidence)
		registry.MustRegister(AdvisorFallbacksTotal)
		registry.MustRegister(AdvisorLatency)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordRun records a finished run.
// status should be one of: "success", "failure"
func RecordRun(status string, durationSeconds float64) {
	RunsTotal.WithLabelValues(status).Inc()
	RunDuration.Observe(durationSeconds)
}

// RecordRunResult updates the per-instrument outcome gauges.
func RecordRunResult(instrument string, finalValue, totalReturn, alpha float64) {
	FinalPortfolioValue.WithLabelValues(instrument).Set(finalValue)
	TotalReturn.WithLabelValues(instrument).Set(totalReturn)
	Alpha.WithLabelValues(instrument).Set(alpha)
}

// RecordDataFetch records a data source call.
// kind should be one of: "series", "news"
func RecordDataFetch(source, kind string, durationSeconds float64) {
	DataFetchDuration.WithLabelValues(source, kind).Observe(durationSeconds)
}

// UpdateCacheHitRatio updates the cache hit ratio gauge.
func UpdateCacheHitRatio(ratio float64) {
	CacheHitRatio.Set(ratio)
}
