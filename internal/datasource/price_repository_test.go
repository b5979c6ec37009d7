package datasource

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/advisor-backtest/internal/models"
)

func TestLoadPriceSeriesFile(t *testing.T) {
	series, err := LoadPriceSeriesFile("AAPL", "testdata/AAPL.csv")
	require.NoError(t, err)

	assert.Equal(t, 10, series.Len())
	first := series.First()
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), first.Date)
	assert.Equal(t, 100.0, first.Close)
	assert.Equal(t, 99.75, first.AdjustedClose)
	assert.Equal(t, 1000.0, first.Volume)
	assert.Equal(t, 109.0, series.Last().Close)
}

func TestLoadPriceSeriesSortsRows(t *testing.T) {
	csv := `date,open,high,low,close,volume,adjusted_close
2024-01-03,3,3,3,3,10,3
2024-01-01,1,1,1,1,10,
2024-01-02,2,2,2,2,10,2
`
	series, err := LoadPriceSeries("MSFT", "inline", strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, series.Closes())
	// empty adjusted close falls back to close
	assert.Equal(t, 1.0, series.First().AdjustedClose)
}

func TestLoadPriceSeriesErrors(t *testing.T) {
	tests := []struct {
		name   string
		csv    string
		column string
	}{
		{
			name: "empty input",
			csv:  "",
		},
		{
			name:   "missing column",
			csv:    "date,open,high,low,close,adjusted_close\n2024-01-01,1,1,1,1,1\n",
			column: "volume",
		},
		{
			name:   "bad number",
			csv:    "date,open,high,low,close,volume,adjusted_close\n2024-01-01,1,x,1,1,1,1\n",
			column: "high",
		},
		{
			name:   "bad date",
			csv:    "date,open,high,low,close,volume,adjusted_close\n01/02/2024,1,1,1,1,1,1\n",
			column: "date",
		},
		{
			name: "negative price",
			csv:  "date,open,high,low,close,volume,adjusted_close\n2024-01-01,1,1,1,-1,1,1\n",
		},
		{
			name:   "duplicate date",
			csv:    "date,open,high,low,close,volume,adjusted_close\n2024-01-01,1,1,1,1,1,1\n2024-01-01,2,2,2,2,2,2\n",
			column: "date",
		},
		{
			name: "header only",
			csv:  "date,open,high,low,close,volume,adjusted_close\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadPriceSeries("AAPL", "inline", strings.NewReader(tt.csv))
			require.Error(t, err)
			assert.ErrorIs(t, err, models.ErrDataFormat)

			var formatErr *models.DataFormatError
			require.True(t, errors.As(err, &formatErr))
			if tt.column != "" {
				assert.Equal(t, tt.column, formatErr.Column)
			}
		})
	}
}

func TestLoadPriceSeriesFileMissing(t *testing.T) {
	_, err := LoadPriceSeriesFile("AAPL", "testdata/missing.csv")
	require.Error(t, err)
}
