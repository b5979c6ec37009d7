package backtest

import (
	"math"

	"github.com/yourusername/advisor-backtest/internal/models"
)

// periodsPerYear annualises weekly statistics.
const periodsPerYear = 52

// Metrics represents risk-adjusted performance of a finished run
type Metrics struct {
	TotalReturn      float64 `json:"total_return"`
	BuyAndHoldReturn float64 `json:"buy_and_hold_return"`
	Alpha            float64 `json:"alpha"`
	AnnualizedReturn float64 `json:"annualized_return"`
	Volatility       float64 `json:"volatility"`
	SharpeRatio      float64 `json:"sharpe_ratio"`
	MaxDrawdown      float64 `json:"max_drawdown"`
	TotalTrades      int     `json:"total_trades"`
	RoundTrips       int     `json:"round_trips"`
	WinRate          float64 `json:"win_rate"`
	AverageWin       float64 `json:"average_win"`
	AverageLoss      float64 `json:"average_loss"`
	Periods          int     `json:"periods"`
	SkippedPeriods   int     `json:"skipped_periods"`
}

// Analyze derives annualised and per-trade statistics from a result. Weekly
// returns are annualised over 52 periods with a zero risk-free rate.
func Analyze(result *models.BacktestResult) Metrics {
	if result == nil {
		return Metrics{}
	}

	m := Metrics{
		TotalReturn:      result.TotalReturn,
		BuyAndHoldReturn: result.BuyAndHold.Return,
		Alpha:            result.Alpha,
		TotalTrades:      len(result.Trades),
		Periods:          len(result.PerformanceHistory),
		SkippedPeriods:   result.SkippedPeriods(),
	}
	if m.Periods == 0 {
		return m
	}

	if growth := 1 + result.TotalReturn; growth > 0 {
		m.AnnualizedReturn = math.Pow(growth, float64(periodsPerYear)/float64(m.Periods)) - 1
	} else {
		m.AnnualizedReturn = -1
	}

	curve := NewEquityCurve(result.PerformanceHistory)
	m.Volatility = curve.GetVolatility() * math.Sqrt(periodsPerYear)
	if m.Volatility > 0 {
		m.SharpeRatio = m.AnnualizedReturn / m.Volatility
	}
	m.MaxDrawdown = curve.MaxDrawdown()

	roundTrips := roundTripReturns(result.Trades)
	m.RoundTrips = len(roundTrips)
	m.WinRate, m.AverageWin, m.AverageLoss = calculateTradeStats(roundTrips)
	return m
}

// roundTripReturns pairs each SELL with the share-weighted cost of the BUYs
// since the previous SELL and returns the relative gain of each pair.
func roundTripReturns(trades []models.Trade) []float64 {
	var out []float64
	var cost float64
	var shares int64
	for _, trade := range trades {
		switch trade.Action {
		case models.ActionBuy:
			cost += trade.Price * float64(trade.Shares)
			shares += trade.Shares
		case models.ActionSell:
			if shares == 0 {
				continue
			}
			entry := cost / float64(shares)
			if entry > 0 {
				out = append(out, (trade.Price-entry)/entry)
			}
			cost, shares = 0, 0
		}
	}
	return out
}

func calculateTradeStats(returns []float64) (winRate, avgWin, avgLoss float64) {
	if len(returns) == 0 {
		return 0, 0, 0
	}
	var wins, losses []float64
	for _, r := range returns {
		switch {
		case r > 0:
			wins = append(wins, r)
		case r < 0:
			losses = append(losses, r)
		}
	}
	winRate = float64(len(wins)) / float64(len(returns))
	return winRate, average(wins), average(losses)
}

func average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	return mean / float64(len(values))
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
