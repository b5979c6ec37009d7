package backtest

import (
	"fmt"
	"time"

	"github.com/yourusername/advisor-backtest/internal/analysis"
	"github.com/yourusername/advisor-backtest/internal/cache"
	"github.com/yourusername/advisor-backtest/internal/config"
)

// Params holds everything a Simulator needs besides its collaborators.
type Params struct {
	Indicators      analysis.IndicatorParams
	Risk            analysis.RiskParams
	Signal          analysis.SignalParams
	LookbackBars    int
	MinRequiredBars int
	BufferWeeks     int
	NewsLookback    time.Duration
}

// DefaultParams returns the standard engine parameters.
func DefaultParams() Params {
	return Params{
		Indicators:      analysis.DefaultIndicatorParams(),
		Risk:            analysis.DefaultRiskParams(),
		Signal:          analysis.DefaultSignalParams(),
		LookbackBars:    cache.DefaultLookbackBars,
		MinRequiredBars: cache.DefaultMinRequiredBars,
		BufferWeeks:     26,
		NewsLookback:    7 * 24 * time.Hour,
	}
}

// FromConfig converts app config to simulator parameters
func FromConfig(cfg *config.Config) (Params, error) {
	if cfg == nil {
		return Params{}, fmt.Errorf("config is required")
	}

	ind := cfg.Indicators
	risk := cfg.Risk
	sig := cfg.Signal
	bt := cfg.Backtest

	p := Params{
		Indicators: analysis.IndicatorParams{
			EMAFast:         ind.EMAFast,
			EMASlow:         ind.EMASlow,
			MACDFast:        ind.MACDFast,
			MACDSlow:        ind.MACDSlow,
			MACDSignal:      ind.MACDSignal,
			RSIPeriod:       ind.RSIPeriod,
			BollingerPeriod: ind.BollingerPeriod,
			BollingerStdDev: ind.BollingerStdDev,
		},
		Risk: analysis.RiskParams{
			TradingDaysPerYear:   risk.TradingDaysPerYear,
			OutlierReturnLimit:   risk.OutlierReturnLimit,
			VolatilityFloor:      risk.VolatilityFloor,
			VaRMinObservations:   risk.VaRMinObservations,
			VaRPercentile:        risk.VaRPercentile,
			StopLossMultiplier:   risk.StopLossMultiplier,
			StopLossMin:          risk.StopLossMin,
			StopLossMax:          risk.StopLossMax,
			TakeProfitMultiplier: risk.TakeProfitMultiplier,
			TakeProfitMin:        risk.TakeProfitMin,
			TakeProfitMax:        risk.TakeProfitMax,
			PositionSizeMin:      risk.PositionSizeMin,
			PositionSizeMax:      risk.PositionSizeMax,
		},
		Signal: analysis.SignalParams{
			TrendWeight:    sig.TrendWeight,
			MomentumWeight: sig.MomentumWeight,
			RSIWeight:      sig.RSIWeight,
			BandWeight:     sig.BandWeight,
			RSIOversold:    sig.RSIOversold,
			RSIOverbought:  sig.RSIOverbought,
			BuyThreshold:   sig.BuyThreshold,
			SellThreshold:  sig.SellThreshold,
		},
		LookbackBars:    bt.LookbackBars,
		MinRequiredBars: bt.MinRequiredBars,
		BufferWeeks:     bt.BufferWeeks,
		NewsLookback:    time.Duration(bt.NewsLookbackDays) * 24 * time.Hour,
	}

	return p, p.Validate()
}

// Validate validates simulator parameters
func (p Params) Validate() error {
	if p.MinRequiredBars < 2 {
		return fmt.Errorf("min required bars must be at least 2")
	}
	if p.LookbackBars > 0 && p.LookbackBars < p.MinRequiredBars {
		return fmt.Errorf("lookback bars must not be smaller than min required bars")
	}
	if p.BufferWeeks < 0 {
		return fmt.Errorf("buffer weeks cannot be negative")
	}
	if p.NewsLookback < 0 {
		return fmt.Errorf("news lookback cannot be negative")
	}
	return nil
}
