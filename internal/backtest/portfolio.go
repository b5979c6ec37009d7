package backtest

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/yourusername/advisor-backtest/internal/models"
)

// Portfolio is the cash and share position of a single-instrument run. Cash is
// held as a decimal so repeated trades never drift below zero through
// floating-point rounding. Total value is never stored; it is always derived
// from a price.
type Portfolio struct {
	cash   decimal.Decimal
	shares int64
	trades []models.Trade
}

// NewPortfolio creates an all-cash portfolio.
func NewPortfolio(capital float64) *Portfolio {
	return &Portfolio{cash: decimal.NewFromFloat(capital)}
}

// Cash returns the uninvested cash.
func (p *Portfolio) Cash() float64 {
	return p.cash.InexactFloat64()
}

// Shares returns the number of shares held.
func (p *Portfolio) Shares() int64 {
	return p.shares
}

// Trades returns a copy of the trade log in execution order.
func (p *Portfolio) Trades() []models.Trade {
	out := make([]models.Trade, len(p.trades))
	copy(out, p.trades)
	return out
}

// TotalValue returns cash plus the position marked at price.
func (p *Portfolio) TotalValue(price float64) float64 {
	position := decimal.NewFromFloat(price).Mul(decimal.NewFromInt(p.shares))
	return p.cash.Add(position).InexactFloat64()
}

// ExecuteTrade applies action at price. BUY spends as much cash as buys whole
// shares; SELL liquidates the whole position. HOLD, unknown actions, a BUY
// that cannot afford one share and a SELL with nothing held change nothing.
// The boolean reports whether a trade was recorded.
func (p *Portfolio) ExecuteTrade(date time.Time, action models.Action, price, confidence float64) (models.Trade, bool) {
	if price <= 0 || !isFinite(price) {
		return models.Trade{}, false
	}
	px := decimal.NewFromFloat(price)

	switch action {
	case models.ActionBuy:
		if !p.cash.IsPositive() {
			return models.Trade{}, false
		}
		shares := p.cash.Div(px).Floor().IntPart()
		cost := px.Mul(decimal.NewFromInt(shares))
		for shares > 0 && cost.GreaterThan(p.cash) {
			shares--
			cost = px.Mul(decimal.NewFromInt(shares))
		}
		if shares <= 0 {
			return models.Trade{}, false
		}
		p.cash = p.cash.Sub(cost)
		p.shares += shares
		return p.record(date, action, shares, price, cost, confidence), true

	case models.ActionSell:
		if p.shares <= 0 {
			return models.Trade{}, false
		}
		shares := p.shares
		proceeds := px.Mul(decimal.NewFromInt(shares))
		p.cash = p.cash.Add(proceeds)
		p.shares = 0
		return p.record(date, action, shares, price, proceeds, confidence), true

	default:
		return models.Trade{}, false
	}
}

func (p *Portfolio) record(date time.Time, action models.Action, shares int64, price float64, value decimal.Decimal, confidence float64) models.Trade {
	trade := models.Trade{
		Date:       date,
		Action:     action,
		Shares:     shares,
		Price:      price,
		Value:      value.InexactFloat64(),
		Confidence: confidence,
	}
	p.trades = append(p.trades, trade)
	return trade
}
