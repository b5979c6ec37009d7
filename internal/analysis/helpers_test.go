package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yourusername/advisor-backtest/internal/models"
)

var day0 = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

func seriesFromCloses(t *testing.T, closes ...float64) models.PriceSeries {
	t.Helper()
	bars := make([]models.PriceBar, len(closes))
	for i, c := range closes {
		bars[i] = models.PriceBar{
			Date: day0.AddDate(0, 0, i), Open: c, High: c, Low: c,
			Close: c, Volume: 1000, AdjustedClose: c,
		}
	}
	series, err := models.NewPriceSeries("TEST", bars)
	require.NoError(t, err)
	return series
}

func constantCloses(n int, price float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = price
	}
	return out
}
