package models

import (
	"time"

	"github.com/google/uuid"
)

// Trade is an executed BUY or SELL. It is never modified after it is recorded.
type Trade struct {
	Date       time.Time `json:"date"`
	Action     Action    `json:"action"`
	Shares     int64     `json:"shares"`
	Price      float64   `json:"price"`
	Value      float64   `json:"value"`
	Confidence float64   `json:"confidence"`
}

// PerformanceRecord is the portfolio state at the end of one simulated period.
type PerformanceRecord struct {
	Date           time.Time `json:"date"`
	Price          float64   `json:"price"`
	PortfolioValue float64   `json:"portfolio_value"`
	Cash           float64   `json:"cash"`
	Shares         int64     `json:"shares"`
	Action         Action    `json:"action"`
	Confidence     float64   `json:"confidence"`
	Skipped        bool      `json:"skipped,omitempty"`
}

// BuyAndHoldComparison is the benchmark of an all-in purchase held to the end.
type BuyAndHoldComparison struct {
	EntryPrice float64 `json:"entry_price"`
	ExitPrice  float64 `json:"exit_price"`
	Shares     float64 `json:"shares"`
	FinalValue float64 `json:"final_value"`
	Return     float64 `json:"return"`
}

// BacktestResult is the output of one simulated run.
type BacktestResult struct {
	RunID               uuid.UUID            `json:"run_id"`
	Instrument          string               `json:"instrument"`
	StartDate           time.Time            `json:"start_date"`
	EndDate             time.Time            `json:"end_date"`
	WeeksTested         int                  `json:"weeks_tested"`
	InitialCapital      float64              `json:"initial_capital"`
	FinalPortfolioValue float64              `json:"final_portfolio_value"`
	FinalCash           float64              `json:"final_cash"`
	FinalShares         int64                `json:"final_shares"`
	TotalReturn         float64              `json:"total_return"`
	Trades              []Trade              `json:"trades"`
	PerformanceHistory  []PerformanceRecord  `json:"performance_history"`
	BuyAndHold          BuyAndHoldComparison `json:"buy_and_hold"`
	Alpha               float64              `json:"alpha"`
	CreatedAt           time.Time            `json:"created_at"`
}

// Outperformed reports whether the strategy beat buy-and-hold.
func (r *BacktestResult) Outperformed() bool {
	return r.Alpha > 0
}

// SkippedPeriods counts periods where no decision could be made.
func (r *BacktestResult) SkippedPeriods() int {
	n := 0
	for _, rec := range r.PerformanceHistory {
		if rec.Skipped {
			n++
		}
	}
	return n
}

// RunSummary is the headline of a run as kept by the result store.
type RunSummary struct {
	RunID               uuid.UUID `json:"run_id"`
	Instrument          string    `json:"instrument"`
	StartDate           time.Time `json:"start_date"`
	EndDate             time.Time `json:"end_date"`
	WeeksTested         int       `json:"weeks_tested"`
	InitialCapital      float64   `json:"initial_capital"`
	FinalPortfolioValue float64   `json:"final_portfolio_value"`
	TotalReturn         float64   `json:"total_return"`
	BuyAndHoldReturn    float64   `json:"buy_and_hold_return"`
	Alpha               float64   `json:"alpha"`
	TotalTrades         int       `json:"total_trades"`
	CreatedAt           time.Time `json:"created_at"`
}

// Summary returns the headline figures of the result.
func (r *BacktestResult) Summary() RunSummary {
	return RunSummary{
		RunID:               r.RunID,
		Instrument:          r.Instrument,
		StartDate:           r.StartDate,
		EndDate:             r.EndDate,
		WeeksTested:         r.WeeksTested,
		InitialCapital:      r.InitialCapital,
		FinalPortfolioValue: r.FinalPortfolioValue,
		TotalReturn:         r.TotalReturn,
		BuyAndHoldReturn:    r.BuyAndHold.Return,
		Alpha:               r.Alpha,
		TotalTrades:         len(r.Trades),
		CreatedAt:           r.CreatedAt,
	}
}
