package metrics

import "github.com/prometheus/client_golang/prometheus"

// Period outcomes
const (
	PeriodDecided = "decided"
	PeriodSkipped = "skipped"
)

// Simulated period counters
var (
	PeriodsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "periods_total",
		Help:      "Total number of simulated periods by outcome",
	}, []string{"outcome"})

	TradesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "trades_total",
		Help:      "Total number of executed simulated trades by action",
	}, []string{"action"})
)

// RecordPeriod records a simulated period.
func RecordPeriod(outcome string) {
	PeriodsTotal.WithLabelValues(outcome).Inc()
}

// RecordTrade records an executed trade.
func RecordTrade(action string) {
	TradesTotal.WithLabelValues(action).Inc()
}
