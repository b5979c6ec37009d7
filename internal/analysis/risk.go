package analysis

import (
	"math"

	"github.com/creasty/defaults"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/advisor-backtest/internal/logger"
	"github.com/yourusername/advisor-backtest/internal/models"
)

// minReturnObservations is the smallest number of simple returns the risk
// pipeline accepts.
const minReturnObservations = 2

// RiskParams carries the heuristic constants of the risk pipeline.
type RiskParams struct {
	TradingDaysPerYear   int     `default:"252"`
	OutlierReturnLimit   float64 `default:"10"`
	VolatilityFloor      float64 `default:"0.000001"`
	VaRMinObservations   int     `default:"20"`
	VaRPercentile        float64 `default:"5"`
	StopLossMultiplier   float64 `default:"1.5"`
	StopLossMin          float64 `default:"0.001"`
	StopLossMax          float64 `default:"0.5"`
	TakeProfitMultiplier float64 `default:"2.5"`
	TakeProfitMin        float64 `default:"0.002"`
	TakeProfitMax        float64 `default:"1"`
	PositionSizeMin      float64 `default:"0.1"`
	PositionSizeMax      float64 `default:"10"`
}

// DefaultRiskParams returns the standard risk heuristics.
func DefaultRiskParams() RiskParams {
	var p RiskParams
	defaults.MustSet(&p)
	return p
}

// RiskEngine derives a RiskProfile from daily closes. Numeric degeneracies
// are absorbed with fallback values; only a lack of usable returns is an error.
type RiskEngine struct {
	params RiskParams
	logger *logrus.Entry
}

// NewRiskEngine creates a risk engine. A nil logger discards output.
func NewRiskEngine(params RiskParams, log *logrus.Logger) *RiskEngine {
	if log == nil {
		log = logger.Discard()
	}
	return &RiskEngine{
		params: params,
		logger: log.WithField("component", "risk_engine"),
	}
}

// Params returns the effective parameters.
func (e *RiskEngine) Params() RiskParams {
	return e.params
}

// Compute runs the risk pipeline over the closes of series.
func (e *RiskEngine) Compute(series models.PriceSeries) (models.RiskProfile, error) {
	p := e.params
	returns := simpleReturns(series.Closes())
	if len(returns) < minReturnObservations {
		return models.RiskProfile{}, &models.InsufficientDataError{
			Computation: "risk returns",
			Available:   len(returns),
			Required:    minReturnObservations,
		}
	}

	finite := returns[:0:0]
	for _, r := range returns {
		if isFinite(r) {
			finite = append(finite, r)
		}
	}
	if dropped := len(returns) - len(finite); dropped > 0 {
		e.logger.WithField("dropped", dropped).Debug("Discarded non-finite returns")
	}
	if len(finite) == 0 {
		return models.RiskProfile{}, &models.InsufficientDataError{Computation: "finite returns", Required: 1}
	}

	kept := finite[:0:0]
	for _, r := range finite {
		if math.Abs(r) <= p.OutlierReturnLimit {
			kept = append(kept, r)
		}
	}
	if dropped := len(finite) - len(kept); dropped > 0 {
		e.logger.WithFields(logrus.Fields{
			"dropped": dropped,
			"limit":   p.OutlierReturnLimit,
		}).Debug("Discarded outlier returns")
	}
	if len(kept) == 0 {
		return models.RiskProfile{}, &models.InsufficientDataError{Computation: "filtered returns", Required: 1}
	}

	dailyVol := sampleStdDev(kept)
	var annualVol float64
	if dailyVol == 0 || !isFinite(dailyVol) {
		dailyVol = p.VolatilityFloor
	} else {
		annualVol = dailyVol * math.Sqrt(float64(p.TradingDaysPerYear))
	}

	var var95 float64
	if len(kept) >= p.VaRMinObservations {
		var95 = percentile(kept, p.VaRPercentile)
	} else {
		var95 = minimum(kept)
	}

	return models.RiskProfile{
		AnnualizedVolatility:     finiteOr(annualVol, 0),
		MaxDrawdown:              finiteOr(maxDrawdown(kept), 0),
		HistoricalVaR95:          finiteOr(var95, 0),
		ObservationCount:         len(kept),
		SuggestedStopLossPct:     clamp(p.StopLossMultiplier*dailyVol, p.StopLossMin, p.StopLossMax),
		SuggestedTakeProfitPct:   clamp(p.TakeProfitMultiplier*dailyVol, p.TakeProfitMin, p.TakeProfitMax),
		SuggestedPositionSizePct: clamp(1/(dailyVol*100+p.VolatilityFloor), p.PositionSizeMin, p.PositionSizeMax),
	}, nil
}

// simpleReturns returns c[i]/c[i-1] - 1. A zero previous close produces a
// non-finite value that the caller filters.
func simpleReturns(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}
	out := make([]float64, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		out[i-1] = closes[i]/closes[i-1] - 1
	}
	return out
}

// maxDrawdown is the minimum of cumulative growth over its running peak, minus one.
// A non-finite growth path degenerates to zero.
func maxDrawdown(returns []float64) float64 {
	growth := 1.0
	peak := math.Inf(-1)
	worst := 0.0
	for _, r := range returns {
		growth *= 1 + r
		if !isFinite(growth) {
			return 0
		}
		if growth > peak {
			peak = growth
		}
		if dd := growth/peak - 1; dd < worst {
			worst = dd
		}
	}
	return worst
}
