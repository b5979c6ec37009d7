// Package analysis computes indicators, risk statistics and rule-based signals
// from point-in-time price slices.
package analysis

import (
	"math"

	"github.com/creasty/defaults"

	"github.com/yourusername/advisor-backtest/internal/models"
)

// rsiEpsilon keeps RS finite when the average loss is zero.
const rsiEpsilon = 1e-12

// neutralRSI is reported until the RSI window has filled.
const neutralRSI = 50.0

// IndicatorParams configures indicator window lengths.
type IndicatorParams struct {
	EMAFast         int     `default:"20"`
	EMASlow         int     `default:"50"`
	MACDFast        int     `default:"12"`
	MACDSlow        int     `default:"26"`
	MACDSignal      int     `default:"9"`
	RSIPeriod       int     `default:"14"`
	BollingerPeriod int     `default:"20"`
	BollingerStdDev float64 `default:"2"`
}

// DefaultIndicatorParams returns the standard 20/50 EMA, 12/26/9 MACD, RSI(14), BB(20, 2) setup.
func DefaultIndicatorParams() IndicatorParams {
	var p IndicatorParams
	defaults.MustSet(&p)
	return p
}

// IndicatorEngine computes an IndicatorSnapshot from closing prices.
type IndicatorEngine struct {
	params IndicatorParams
}

// NewIndicatorEngine creates an engine with params as given.
func NewIndicatorEngine(params IndicatorParams) *IndicatorEngine {
	return &IndicatorEngine{params: params}
}

// Params returns the effective parameters.
func (e *IndicatorEngine) Params() IndicatorParams {
	return e.params
}

// Compute returns the indicator values of the latest bar and the events fired
// between the last two bars. At least two bars are required.
func (e *IndicatorEngine) Compute(series models.PriceSeries) (models.IndicatorSnapshot, error) {
	closes := series.Closes()
	n := len(closes)
	if n < 2 {
		return models.IndicatorSnapshot{}, &models.InsufficientDataError{
			Computation: "indicators",
			Available:   n,
			Required:    2,
		}
	}

	p := e.params
	emaFast := ema(closes, p.EMAFast)
	emaSlow := ema(closes, p.EMASlow)
	macdLine, macdSignal := macd(closes, p.MACDFast, p.MACDSlow, p.MACDSignal)
	rsiLatest := rsi(closes, p.RSIPeriod)

	last, prev := n-1, n-2
	lower, mid, upper := bollingerAt(closes, last, p.BollingerPeriod, p.BollingerStdDev)

	snapshot := models.IndicatorSnapshot{
		Close:          closes[last],
		EMAFast:        emaFast[last],
		EMASlow:        emaSlow[last],
		MACD:           macdLine[last],
		MACDSignal:     macdSignal[last],
		RSI:            rsiLatest,
		BollingerLower: lower,
		BollingerMid:   mid,
		BollingerUpper: upper,
		Events:         []models.IndicatorEvent{},
	}

	if crossedAbove(emaFast[prev], emaSlow[prev], emaFast[last], emaSlow[last]) {
		snapshot.Events = append(snapshot.Events, models.EventEMAGoldenCross)
	}
	if crossedBelow(emaFast[prev], emaSlow[prev], emaFast[last], emaSlow[last]) {
		snapshot.Events = append(snapshot.Events, models.EventEMADeathCross)
	}
	if crossedAbove(macdLine[prev], macdSignal[prev], macdLine[last], macdSignal[last]) {
		snapshot.Events = append(snapshot.Events, models.EventMACDBullishCross)
	}
	if crossedBelow(macdLine[prev], macdSignal[prev], macdLine[last], macdSignal[last]) {
		snapshot.Events = append(snapshot.Events, models.EventMACDBearishCross)
	}
	if snapshot.Close < lower {
		snapshot.Events = append(snapshot.Events, models.EventBelowLowerBand)
	}
	if snapshot.Close > upper {
		snapshot.Events = append(snapshot.Events, models.EventAboveUpperBand)
	}

	return snapshot, nil
}

func crossedAbove(prevA, prevB, lastA, lastB float64) bool {
	return prevA < prevB && lastA > lastB
}

func crossedBelow(prevA, prevB, lastA, lastB float64) bool {
	return prevA > prevB && lastA < lastB
}

// ema is the recursive exponential average with alpha = 2/(span+1), seeded
// with the first value and without bias adjustment.
func ema(values []float64, span int) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	alpha := 2.0 / (float64(span) + 1.0)
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}

func macd(closes []float64, fast, slow, signal int) (line, signalLine []float64) {
	fastEMA := ema(closes, fast)
	slowEMA := ema(closes, slow)
	line = make([]float64, len(closes))
	for i := range closes {
		line[i] = fastEMA[i] - slowEMA[i]
	}
	return line, ema(line, signal)
}

// rsi returns the latest Wilder RSI. Gains and losses are smoothed with
// alpha = 1/period starting from the first price change; until period changes
// have been observed the neutral value is returned.
func rsi(closes []float64, period int) float64 {
	changes := len(closes) - 1
	if period <= 0 || changes < period {
		return neutralRSI
	}

	alpha := 1.0 / float64(period)
	var avgGain, avgLoss float64
	for i := 1; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		gain := math.Max(delta, 0)
		loss := math.Max(-delta, 0)
		if i == 1 {
			avgGain, avgLoss = gain, loss
			continue
		}
		avgGain = alpha*gain + (1-alpha)*avgGain
		avgLoss = alpha*loss + (1-alpha)*avgLoss
	}

	rs := avgGain / (avgLoss + rsiEpsilon)
	return 100 - 100/(1+rs)
}

// bollingerAt returns the bands of the window ending at index i using the
// sample standard deviation. Before the window fills all three bands equal
// the close, so no breakout can fire.
func bollingerAt(closes []float64, i, period int, k float64) (lower, mid, upper float64) {
	if period < 2 || i+1 < period {
		return closes[i], closes[i], closes[i]
	}
	window := closes[i+1-period : i+1]
	mid = mean(window)
	sd := sampleStdDev(window)
	return mid - k*sd, mid, mid + k*sd
}
