package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/advisor-backtest/internal/models"
)

func TestEMASeededWithFirstValue(t *testing.T) {
	got := ema([]float64{1, 2, 3}, 3)
	require.Len(t, got, 3)
	assert.InDelta(t, 1.0, got[0], 1e-12)
	assert.InDelta(t, 1.5, got[1], 1e-12)
	assert.InDelta(t, 2.25, got[2], 1e-12)
}

func TestComputeRequiresTwoBars(t *testing.T) {
	engine := NewIndicatorEngine(DefaultIndicatorParams())

	_, err := engine.Compute(seriesFromCloses(t, 100))
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrInsufficientData)
}

func TestComputeWarmUpIsFiniteAndQuiet(t *testing.T) {
	engine := NewIndicatorEngine(DefaultIndicatorParams())

	snapshot, err := engine.Compute(seriesFromCloses(t, 100, 101, 99, 102, 98))
	require.NoError(t, err)

	assert.Equal(t, 50.0, snapshot.RSI)
	assert.Equal(t, 98.0, snapshot.BollingerLower)
	assert.Equal(t, 98.0, snapshot.BollingerMid)
	assert.Equal(t, 98.0, snapshot.BollingerUpper)
	assert.False(t, snapshot.HasEvent(models.EventBelowLowerBand))
	assert.False(t, snapshot.HasEvent(models.EventAboveUpperBand))
	assert.NotNil(t, snapshot.Events)
}

func TestComputeRSIOnRisingSeries(t *testing.T) {
	engine := NewIndicatorEngine(DefaultIndicatorParams())
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}

	snapshot, err := engine.Compute(seriesFromCloses(t, closes...))
	require.NoError(t, err)

	assert.Greater(t, snapshot.RSI, 99.0)
	assert.LessOrEqual(t, snapshot.RSI, 100.0)
	assert.Greater(t, snapshot.EMAFast, snapshot.EMASlow)
	assert.Greater(t, snapshot.MACD, 0.0)
}

func TestComputeRSIOnConstantSeriesIsNotOverbought(t *testing.T) {
	engine := NewIndicatorEngine(DefaultIndicatorParams())

	snapshot, err := engine.Compute(seriesFromCloses(t, constantCloses(60, 100)...))
	require.NoError(t, err)

	assert.InDelta(t, 0.0, snapshot.RSI, 1e-9)
	assert.Equal(t, 100.0, snapshot.BollingerLower)
	assert.Equal(t, 100.0, snapshot.BollingerUpper)
	assert.Empty(t, snapshot.Events)
}

func shortWindowEngine() *IndicatorEngine {
	p := DefaultIndicatorParams()
	p.EMAFast, p.EMASlow = 1, 3
	p.MACDFast, p.MACDSlow, p.MACDSignal = 1, 3, 2
	p.BollingerPeriod, p.BollingerStdDev = 3, 1
	return NewIndicatorEngine(p)
}

func TestComputeBullishEvents(t *testing.T) {
	snapshot, err := shortWindowEngine().Compute(seriesFromCloses(t, 10, 10, 10, 5, 20))
	require.NoError(t, err)

	assert.ElementsMatch(t, []models.IndicatorEvent{
		models.EventEMAGoldenCross,
		models.EventMACDBullishCross,
		models.EventAboveUpperBand,
	}, snapshot.Events)
	assert.Equal(t, 20.0, snapshot.Close)
	assert.InDelta(t, 13.75, snapshot.EMASlow, 1e-9)
}

func TestComputeBearishEvents(t *testing.T) {
	snapshot, err := shortWindowEngine().Compute(seriesFromCloses(t, 10, 10, 10, 15, 0))
	require.NoError(t, err)

	assert.ElementsMatch(t, []models.IndicatorEvent{
		models.EventEMADeathCross,
		models.EventMACDBearishCross,
		models.EventBelowLowerBand,
	}, snapshot.Events)
}

func TestCrossoversAreStrict(t *testing.T) {
	assert.False(t, crossedAbove(1, 1, 2, 1))
	assert.False(t, crossedBelow(1, 1, 0, 1))
	assert.True(t, crossedAbove(0, 1, 2, 1))
	assert.True(t, crossedBelow(2, 1, 0, 1))
}
