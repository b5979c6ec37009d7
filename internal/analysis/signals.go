package analysis

import (
	"fmt"

	"github.com/creasty/defaults"

	"github.com/yourusername/advisor-backtest/internal/models"
)

// SignalParams configures the point-scoring rule.
type SignalParams struct {
	TrendWeight    float64 `default:"1"`
	MomentumWeight float64 `default:"1"`
	RSIWeight      float64 `default:"0.5"`
	BandWeight     float64 `default:"0.5"`
	RSIOversold    float64 `default:"30"`
	RSIOverbought  float64 `default:"70"`
	BuyThreshold   float64 `default:"1.5"`
	SellThreshold  float64 `default:"-1.5"`
}

// DefaultSignalParams returns the standard weights and thresholds.
func DefaultSignalParams() SignalParams {
	var p SignalParams
	defaults.MustSet(&p)
	return p
}

// SignalGenerator turns an IndicatorSnapshot into a rule-based Signal.
type SignalGenerator struct {
	params SignalParams
}

// NewSignalGenerator creates a generator. Parameters are used as given, so a
// zero weight disables its rule; start from DefaultSignalParams for the standard setup.
func NewSignalGenerator(params SignalParams) *SignalGenerator {
	return &SignalGenerator{params: params}
}

// Params returns the effective parameters.
func (g *SignalGenerator) Params() SignalParams {
	return g.params
}

// MaxScore is the largest absolute score the rule can produce.
func (g *SignalGenerator) MaxScore() float64 {
	p := g.params
	return p.TrendWeight + p.MomentumWeight + p.RSIWeight + p.BandWeight
}

// Generate scores the snapshot. Reasons are recorded in evaluation order:
// trend, momentum, RSI, bands.
func (g *SignalGenerator) Generate(snapshot models.IndicatorSnapshot) models.Signal {
	p := g.params
	var score float64
	reasons := make([]string, 0, 4)

	if snapshot.EMAFast > snapshot.EMASlow {
		score += p.TrendWeight
		reasons = append(reasons, "fast EMA > slow EMA (uptrend)")
	} else {
		score -= p.TrendWeight
		reasons = append(reasons, "fast EMA <= slow EMA (downtrend)")
	}

	if snapshot.MACD > snapshot.MACDSignal {
		score += p.MomentumWeight
		reasons = append(reasons, "MACD > signal (bullish momentum)")
	} else {
		score -= p.MomentumWeight
		reasons = append(reasons, "MACD <= signal (bearish momentum)")
	}

	switch {
	case snapshot.RSI < p.RSIOversold:
		score += p.RSIWeight
		reasons = append(reasons, fmt.Sprintf("RSI < %g (oversold)", p.RSIOversold))
	case snapshot.RSI > p.RSIOverbought:
		score -= p.RSIWeight
		reasons = append(reasons, fmt.Sprintf("RSI > %g (overbought)", p.RSIOverbought))
	}

	if snapshot.Close < snapshot.BollingerLower {
		score += p.BandWeight
		reasons = append(reasons, "close below lower band (mean-reversion up)")
	}
	if snapshot.Close > snapshot.BollingerUpper {
		score -= p.BandWeight
		reasons = append(reasons, "close above upper band (mean-reversion down)")
	}

	return models.Signal{
		Action:     g.Decide(score),
		Score:      score,
		Reasons:    reasons,
		Indicators: snapshot,
	}
}

// Decide maps a score onto an action. Both thresholds are inclusive.
func (g *SignalGenerator) Decide(score float64) models.Action {
	switch {
	case score >= g.params.BuyThreshold:
		return models.ActionBuy
	case score <= g.params.SellThreshold:
		return models.ActionSell
	default:
		return models.ActionHold
	}
}
