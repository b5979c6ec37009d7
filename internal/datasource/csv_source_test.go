package datasource

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jan(day int) time.Time {
	return time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC)
}

func TestCSVSourceFetchSeries(t *testing.T) {
	src, err := NewCSVSource("testdata")
	require.NoError(t, err)
	assert.Equal(t, "csv", src.Name())

	series, err := src.FetchSeries(context.Background(), "aapl", DateRange{Start: jan(3), End: jan(5)})
	require.NoError(t, err)
	assert.Equal(t, []float64{102, 103, 104}, series.Closes())

	news, err := src.FetchNews(context.Background(), "AAPL", DateRange{Start: jan(3), End: jan(5)})
	assert.NoError(t, err)
	assert.Empty(t, news)
}

func TestCSVSourceNotFound(t *testing.T) {
	src, err := NewCSVSource("testdata")
	require.NoError(t, err)
	ctx := context.Background()

	_, err = src.FetchSeries(ctx, "MSFT", DateRange{Start: jan(1), End: jan(5)})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = src.FetchSeries(ctx, "AAPL", DateRange{Start: jan(20), End: jan(25)})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCSVSourceCancelled(t *testing.T) {
	src, err := NewCSVSource("testdata")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = src.FetchSeries(ctx, "AAPL", DateRange{Start: jan(1), End: jan(5)})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewCSVSourceRequiresDirectory(t *testing.T) {
	_, err := NewCSVSource("testdata/does-not-exist")
	assert.Error(t, err)

	_, err = NewCSVSource("testdata/AAPL.csv")
	assert.Error(t, err)
}
