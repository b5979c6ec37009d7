package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/advisor-backtest/internal/models"
)

func alternatingCloses(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		if i%2 == 0 {
			out[i] = 100
		} else {
			out[i] = 101
		}
	}
	return out
}

func TestRiskConstantSeries(t *testing.T) {
	engine := NewRiskEngine(DefaultRiskParams(), nil)

	profile, err := engine.Compute(seriesFromCloses(t, constantCloses(60, 100)...))
	require.NoError(t, err)

	assert.Equal(t, 0.0, profile.AnnualizedVolatility)
	assert.Equal(t, 0.0, profile.MaxDrawdown)
	assert.Equal(t, 0.0, profile.HistoricalVaR95)
	assert.Equal(t, 59, profile.ObservationCount)
	assert.InDelta(t, 0.001, profile.SuggestedStopLossPct, 1e-12)
	assert.InDelta(t, 0.002, profile.SuggestedTakeProfitPct, 1e-12)
	assert.InDelta(t, 10.0, profile.SuggestedPositionSizePct, 1e-12)
}

func TestRiskDiscardsOutlierReturn(t *testing.T) {
	engine := NewRiskEngine(DefaultRiskParams(), nil)
	base := alternatingCloses(41)

	clean, err := engine.Compute(seriesFromCloses(t, base...))
	require.NoError(t, err)

	withJump := append(append([]float64{}, base...), 1200)
	profile, err := engine.Compute(seriesFromCloses(t, withJump...))
	require.NoError(t, err)

	assert.Equal(t, clean.ObservationCount, profile.ObservationCount)
	assert.InDelta(t, clean.AnnualizedVolatility, profile.AnnualizedVolatility, 1e-12)
	assert.InDelta(t, clean.HistoricalVaR95, profile.HistoricalVaR95, 1e-12)
	assert.InDelta(t, clean.MaxDrawdown, profile.MaxDrawdown, 1e-12)
}

func TestRiskRequiresTwoReturns(t *testing.T) {
	engine := NewRiskEngine(DefaultRiskParams(), nil)

	_, err := engine.Compute(seriesFromCloses(t, 100, 101))
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrInsufficientData)
}

func TestRiskNoFiniteReturns(t *testing.T) {
	engine := NewRiskEngine(DefaultRiskParams(), nil)

	_, err := engine.Compute(seriesFromCloses(t, 0, 0, 0))
	assert.ErrorIs(t, err, models.ErrInsufficientData)
}

func TestRiskSmallSampleVaRIsWorstReturn(t *testing.T) {
	engine := NewRiskEngine(DefaultRiskParams(), nil)

	profile, err := engine.Compute(seriesFromCloses(t, 100, 110, 99, 108.9, 100))
	require.NoError(t, err)

	assert.Equal(t, 4, profile.ObservationCount)
	assert.InDelta(t, -0.1, profile.HistoricalVaR95, 1e-9)
	assert.InDelta(t, -0.1, profile.MaxDrawdown, 1e-9)
	assert.Greater(t, profile.AnnualizedVolatility, 0.0)
}

func TestRiskLargeSampleVaRUsesPercentile(t *testing.T) {
	engine := NewRiskEngine(DefaultRiskParams(), nil)
	closes := alternatingCloses(41)

	profile, err := engine.Compute(seriesFromCloses(t, closes...))
	require.NoError(t, err)

	returns := simpleReturns(closes)
	assert.InDelta(t, percentile(returns, 5), profile.HistoricalVaR95, 1e-12)
	assert.Equal(t, 40, profile.ObservationCount)
}

func TestRiskPlanScalesWithVolatility(t *testing.T) {
	engine := NewRiskEngine(DefaultRiskParams(), nil)

	profile, err := engine.Compute(seriesFromCloses(t, alternatingCloses(41)...))
	require.NoError(t, err)

	daily := profile.AnnualizedVolatility / math.Sqrt(252)
	assert.InDelta(t, 1.5*daily, profile.SuggestedStopLossPct, 1e-9)
	assert.InDelta(t, 2.5*daily, profile.SuggestedTakeProfitPct, 1e-9)
	assert.InDelta(t, 1/(daily*100+1e-6), profile.SuggestedPositionSizePct, 1e-9)
}

func TestRiskCustomOutlierLimit(t *testing.T) {
	params := DefaultRiskParams()
	params.OutlierReturnLimit = 0.05
	engine := NewRiskEngine(params, nil)

	_, err := engine.Compute(seriesFromCloses(t, 100, 150, 100))
	assert.ErrorIs(t, err, models.ErrInsufficientData)
}

func TestPercentileInterpolates(t *testing.T) {
	assert.InDelta(t, 2.5, percentile([]float64{4, 1, 3, 2}, 50), 1e-12)

	values := make([]float64, 21)
	for i := range values {
		values[i] = float64(i)
	}
	assert.InDelta(t, 1.0, percentile(values, 5), 1e-12)
}

func TestMaxDrawdown(t *testing.T) {
	assert.InDelta(t, -0.5, maxDrawdown([]float64{0.1, -0.5, 0.2}), 1e-12)
	assert.Equal(t, 0.0, maxDrawdown([]float64{0.1, 0.2}))
}

func TestRiskZeroLowerBoundsAreKept(t *testing.T) {
	params := DefaultRiskParams()
	params.StopLossMin = 0
	params.TakeProfitMin = 0
	engine := NewRiskEngine(params, nil)
	require.Equal(t, 0.0, engine.Params().StopLossMin)

	profile, err := engine.Compute(seriesFromCloses(t, 100, 100, 100, 100, 100))
	require.NoError(t, err)

	assert.InDelta(t, 1.5e-6, profile.SuggestedStopLossPct, 1e-12)
	assert.InDelta(t, 2.5e-6, profile.SuggestedTakeProfitPct, 1e-12)
}
