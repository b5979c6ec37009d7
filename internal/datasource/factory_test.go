package datasource

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/advisor-backtest/internal/config"
)

func TestNewDataSource(t *testing.T) {
	src, err := NewDataSource(config.DataSourceConfig{Provider: "csv", CSVDir: "testdata"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &CSVSource{}, src)

	_, err = NewDataSource(config.DataSourceConfig{Provider: "csv"}, nil)
	assert.Error(t, err)

	src, err = NewDataSource(config.DataSourceConfig{
		Provider:          "polygon",
		APIKey:            "key",
		TimeoutSeconds:    10,
		RequestsPerMinute: 5,
		CircuitBreakerMax: 3,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "polygon", src.Name())

	_, err = NewDataSource(config.DataSourceConfig{Provider: "polygon"}, nil)
	assert.Error(t, err)

	_, err = NewDataSource(config.DataSourceConfig{Provider: "yahoo"}, nil)
	assert.Error(t, err)
}

func TestHTTPClientConfigFrom(t *testing.T) {
	cfg := HTTPClientConfigFrom(config.DataSourceConfig{
		TimeoutSeconds:    12,
		MaxRetries:        3,
		RequestsPerMinute: 120,
		CircuitBreakerMax: 4,
	})
	assert.Equal(t, 12*time.Second, cfg.Timeout)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.InDelta(t, 2.0, cfg.RateLimit, 1e-9)
	assert.Equal(t, 4, cfg.CircuitBreakerMax)
	assert.ElementsMatch(t, []SourceType{PolygonSourceType, CSVSourceType}, ListAvailableSources())
}
