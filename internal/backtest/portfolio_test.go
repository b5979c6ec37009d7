package backtest

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/advisor-backtest/internal/models"
)

func TestBuyUsesWholeShares(t *testing.T) {
	p := NewPortfolio(1000)

	trade, ok := p.ExecuteTrade(d0, models.ActionBuy, 300, 0.8)
	require.True(t, ok)
	assert.Equal(t, int64(3), trade.Shares)
	assert.InDelta(t, 900.0, trade.Value, 1e-9)
	assert.Equal(t, 0.8, trade.Confidence)
	assert.InDelta(t, 100.0, p.Cash(), 1e-9)
	assert.Equal(t, int64(3), p.Shares())
	assert.InDelta(t, 1000.0, p.TotalValue(300), 1e-9)
}

func TestSecondBuyWithoutCashIsNoop(t *testing.T) {
	p := NewPortfolio(10000)

	_, ok := p.ExecuteTrade(d0, models.ActionBuy, 100, 1)
	require.True(t, ok)
	_, ok = p.ExecuteTrade(d0.AddDate(0, 0, 7), models.ActionBuy, 100, 1)
	assert.False(t, ok)

	assert.Len(t, p.Trades(), 1)
	assert.Equal(t, int64(100), p.Shares())
	assert.Zero(t, p.Cash())
}

func TestSellWithoutSharesIsNoop(t *testing.T) {
	p := NewPortfolio(5000)

	_, ok := p.ExecuteTrade(d0, models.ActionSell, 50, 1)
	assert.False(t, ok)
	assert.Empty(t, p.Trades())
	assert.InDelta(t, 5000.0, p.Cash(), 1e-9)
}

func TestSellLiquidatesPosition(t *testing.T) {
	p := NewPortfolio(10000)
	_, _ = p.ExecuteTrade(d0, models.ActionBuy, 100, 1)

	trade, ok := p.ExecuteTrade(d0.AddDate(0, 0, 7), models.ActionSell, 90, 0.5)
	require.True(t, ok)
	assert.Equal(t, int64(100), trade.Shares)
	assert.InDelta(t, 9000.0, trade.Value, 1e-9)
	assert.Zero(t, p.Shares())
	assert.InDelta(t, 9000.0, p.Cash(), 1e-9)
}

func TestBuyTooExpensiveIsNoop(t *testing.T) {
	p := NewPortfolio(50)
	_, ok := p.ExecuteTrade(d0, models.ActionBuy, 51, 1)
	assert.False(t, ok)
	assert.Zero(t, p.Shares())
}

func TestInvalidPricesAndHoldChangeNothing(t *testing.T) {
	p := NewPortfolio(1000)
	for _, price := range []float64{0, -5, math.NaN(), math.Inf(1)} {
		_, ok := p.ExecuteTrade(d0, models.ActionBuy, price, 1)
		assert.False(t, ok, "price %v", price)
	}
	_, ok := p.ExecuteTrade(d0, models.ActionHold, 10, 1)
	assert.False(t, ok)
	_, ok = p.ExecuteTrade(d0, models.Action("SHORT"), 10, 1)
	assert.False(t, ok)

	assert.InDelta(t, 1000.0, p.Cash(), 1e-9)
	assert.Empty(t, p.Trades())
}

func TestPortfolioNeverGoesNegative(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	actions := []models.Action{models.ActionBuy, models.ActionSell, models.ActionHold}

	for run := 0; run < 50; run++ {
		p := NewPortfolio(1000 + rng.Float64()*9000)
		for step := 0; step < 100; step++ {
			price := 0.01 + rng.Float64()*500
			p.ExecuteTrade(d0, actions[rng.Intn(len(actions))], price, rng.Float64())

			require.GreaterOrEqual(t, p.Cash(), 0.0)
			require.GreaterOrEqual(t, p.Shares(), int64(0))
		}
	}
}

func TestTradesReturnsCopy(t *testing.T) {
	p := NewPortfolio(1000)
	_, _ = p.ExecuteTrade(d0, models.ActionBuy, 10, 1)

	trades := p.Trades()
	trades[0].Shares = 1
	assert.Equal(t, int64(100), p.Trades()[0].Shares)
}
