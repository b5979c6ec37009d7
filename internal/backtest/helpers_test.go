package backtest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/advisor-backtest/internal/advisor"
	"github.com/yourusername/advisor-backtest/internal/datasource"
	"github.com/yourusername/advisor-backtest/internal/models"
)

var d0 = time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

type mockSource struct {
	mock.Mock
}

func (m *mockSource) FetchSeries(ctx context.Context, instrument string, dr datasource.DateRange) (models.PriceSeries, error) {
	args := m.Called(ctx, instrument, dr)
	return args.Get(0).(models.PriceSeries), args.Error(1)
}

func (m *mockSource) FetchNews(ctx context.Context, instrument string, dr datasource.DateRange) ([]models.NewsArticle, error) {
	args := m.Called(ctx, instrument, dr)
	news, _ := args.Get(0).([]models.NewsArticle)
	return news, args.Error(1)
}

func (m *mockSource) Name() string {
	return m.Called().String(0)
}

type mockAdvisor struct {
	mock.Mock
}

func (m *mockAdvisor) Name() string {
	return m.Called().String(0)
}

func (m *mockAdvisor) Recommend(ctx context.Context, in advisor.Context) (advisor.RawRecommendation, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(advisor.RawRecommendation), args.Error(1)
}

func raw(action string, confidence float64) advisor.RawRecommendation {
	return advisor.RawRecommendation{Action: action, Confidence: &confidence}
}

// weeklySeries has warmup daily bars at warmupPrice ending the day before d0,
// followed by one bar per week from d0 at the given closes.
func weeklySeries(t *testing.T, warmup int, warmupPrice float64, weekly ...float64) models.PriceSeries {
	t.Helper()
	bars := make([]models.PriceBar, 0, warmup+len(weekly))
	for i := warmup; i > 0; i-- {
		bars = append(bars, flatBar(d0.AddDate(0, 0, -i), warmupPrice))
	}
	for j, price := range weekly {
		bars = append(bars, flatBar(d0.AddDate(0, 0, 7*j), price))
	}
	series, err := models.NewPriceSeries("AAPL", bars)
	require.NoError(t, err)
	return series
}

func flatBar(date time.Time, price float64) models.PriceBar {
	return models.PriceBar{
		Date: date, Open: price, High: price, Low: price,
		Close: price, Volume: 1000, AdjustedClose: price,
	}
}

func newSource(series models.PriceSeries) *mockSource {
	src := &mockSource{}
	src.On("Name").Return("mock")
	src.On("FetchSeries", mock.Anything, "AAPL", mock.Anything).Return(series, nil)
	src.On("FetchNews", mock.Anything, "AAPL", mock.Anything).Return(nil, nil).Maybe()
	return src
}

func newAdvisor() *mockAdvisor {
	adv := &mockAdvisor{}
	adv.On("Name").Return("scripted")
	return adv
}

func newTestSimulator(t *testing.T, src datasource.DataSource, adv advisor.Advisor, now time.Time) *Simulator {
	t.Helper()
	sim, err := NewSimulator(src, adv, DefaultParams(), WithClock(func() time.Time { return now }))
	require.NoError(t, err)
	return sim
}
