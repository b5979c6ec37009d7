package backtest

import (
	"math"
	"time"

	"github.com/yourusername/advisor-backtest/internal/models"
)

// EquityPoint represents a point in the equity curve
type EquityPoint struct {
	Time     time.Time `json:"time"`
	Value    float64   `json:"value"`
	Drawdown float64   `json:"drawdown"`
}

// EquityCurve is the portfolio value per simulated period.
type EquityCurve []EquityPoint

// NewEquityCurve builds the curve of a performance history. Drawdown is the
// fall from the running peak as a non-positive fraction of that peak.
func NewEquityCurve(history []models.PerformanceRecord) EquityCurve {
	curve := make(EquityCurve, 0, len(history))
	peak := 0.0
	for _, rec := range history {
		if rec.PortfolioValue > peak {
			peak = rec.PortfolioValue
		}
		drawdown := 0.0
		if peak > 0 {
			drawdown = (rec.PortfolioValue - peak) / peak
		}
		curve = append(curve, EquityPoint{
			Time:     rec.Date,
			Value:    rec.PortfolioValue,
			Drawdown: drawdown,
		})
	}
	return curve
}

// GetReturns calculates periodic returns from equity curve
func (e EquityCurve) GetReturns() []float64 {
	if len(e) < 2 {
		return []float64{}
	}
	returns := make([]float64, 0, len(e)-1)
	for i := 1; i < len(e); i++ {
		prev := e[i-1].Value
		curr := e[i].Value
		if prev == 0 {
			returns = append(returns, 0)
			continue
		}
		returns = append(returns, (curr-prev)/prev)
	}
	return returns
}

// GetVolatility returns the sample standard deviation of periodic returns,
// or 0 with fewer than two returns.
func (e EquityCurve) GetVolatility() float64 {
	returns := e.GetReturns()
	if len(returns) < 2 {
		return 0
	}
	mean := average(returns)
	variance := 0.0
	for _, r := range returns {
		diff := r - mean
		variance += diff * diff
	}
	variance /= float64(len(returns) - 1)
	return math.Sqrt(variance)
}

// MaxDrawdown returns the deepest drawdown on the curve (0 or negative).
func (e EquityCurve) MaxDrawdown() float64 {
	worst := 0.0
	for _, p := range e {
		if p.Drawdown < worst {
			worst = p.Drawdown
		}
	}
	return worst
}
