package models

import (
	"strings"
	"time"
)

// IndicatorEvent is a qualitative crossover or breakout label.
type IndicatorEvent string

// Indicator events detected between the last two bars of a slice.
const (
	EventEMAGoldenCross   IndicatorEvent = "EMA_GOLDEN_CROSS"
	EventEMADeathCross    IndicatorEvent = "EMA_DEATH_CROSS"
	EventMACDBullishCross IndicatorEvent = "MACD_BULLISH_CROSS"
	EventMACDBearishCross IndicatorEvent = "MACD_BEARISH_CROSS"
	EventBelowLowerBand   IndicatorEvent = "BELOW_LOWER_BAND"
	EventAboveUpperBand   IndicatorEvent = "ABOVE_UPPER_BAND"
)

// IndicatorSnapshot holds the latest indicator values of a price slice.
type IndicatorSnapshot struct {
	Close          float64          `json:"close"`
	EMAFast        float64          `json:"ema_fast"`
	EMASlow        float64          `json:"ema_slow"`
	MACD           float64          `json:"macd"`
	MACDSignal     float64          `json:"macd_signal"`
	RSI            float64          `json:"rsi"`
	BollingerLower float64          `json:"bollinger_lower"`
	BollingerMid   float64          `json:"bollinger_mid"`
	BollingerUpper float64          `json:"bollinger_upper"`
	Events         []IndicatorEvent `json:"events"`
}

// HasEvent reports whether the snapshot carries the given event.
func (s IndicatorSnapshot) HasEvent(event IndicatorEvent) bool {
	for _, e := range s.Events {
		if e == event {
			return true
		}
	}
	return false
}

// RiskProfile summarises the return distribution of a slice and a suggested risk plan.
// All values are dimensionless ratios.
type RiskProfile struct {
	AnnualizedVolatility     float64 `json:"annualized_volatility"`
	MaxDrawdown              float64 `json:"max_drawdown"`
	HistoricalVaR95          float64 `json:"historical_var_95"`
	ObservationCount         int     `json:"observation_count"`
	SuggestedStopLossPct     float64 `json:"suggested_stop_loss_pct"`
	SuggestedTakeProfitPct   float64 `json:"suggested_take_profit_pct"`
	SuggestedPositionSizePct float64 `json:"suggested_position_size_pct"`
}

// Action is a trade decision.
type Action string

// Supported actions
const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
	ActionHold Action = "HOLD"
)

// ParseAction normalises s and reports whether it names a known action.
func ParseAction(s string) (Action, bool) {
	a := Action(strings.ToUpper(strings.TrimSpace(s)))
	return a, a.IsValid()
}

// IsValid reports whether a is BUY, SELL or HOLD.
func (a Action) IsValid() bool {
	switch a {
	case ActionBuy, ActionSell, ActionHold:
		return true
	default:
		return false
	}
}

func (a Action) String() string {
	return string(a)
}

// Signal is the rule-based decision derived from an IndicatorSnapshot.
type Signal struct {
	Action     Action            `json:"action"`
	Score      float64           `json:"score"`
	Reasons    []string          `json:"reasons"`
	Indicators IndicatorSnapshot `json:"indicators"`
}

// Recommendation is a validated advisor decision.
type Recommendation struct {
	Action     Action  `json:"action"`
	Confidence float64 `json:"confidence"`
}

// HoldRecommendation is the fallback used whenever an advisor cannot be trusted.
func HoldRecommendation() Recommendation {
	return Recommendation{Action: ActionHold, Confidence: 0}
}

// NewsArticle is a headline published about an instrument.
type NewsArticle struct {
	Title       string    `json:"title"`
	Publisher   string    `json:"publisher"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"published_at"`
}
