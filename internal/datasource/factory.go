package datasource

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/advisor-backtest/internal/config"
)

// SourceType represents the type of data source
type SourceType string

const (
	// PolygonSourceType is the Polygon.io REST API
	PolygonSourceType SourceType = "polygon"
	// CSVSourceType is a directory of per-instrument CSV files
	CSVSourceType SourceType = "csv"
)

// ListAvailableSources returns the supported source types
func ListAvailableSources() []SourceType {
	return []SourceType{PolygonSourceType, CSVSourceType}
}

// HTTPClientConfigFrom maps data source settings onto the HTTP client
func HTTPClientConfigFrom(cfg config.DataSourceConfig) HTTPClientConfig {
	httpCfg := DefaultHTTPClientConfig()
	httpCfg.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	httpCfg.MaxRetries = cfg.MaxRetries
	httpCfg.RateLimit = cfg.RequestsPerMinute / 60.0
	httpCfg.CircuitBreakerMax = cfg.CircuitBreakerMax
	return httpCfg
}

// NewDataSource creates the DataSource selected by data_source.provider
func NewDataSource(cfg config.DataSourceConfig, log *logrus.Logger) (DataSource, error) {
	switch SourceType(cfg.Provider) {
	case PolygonSourceType:
		httpClient := NewRateLimitedHTTPClient(HTTPClientConfigFrom(cfg), log)
		return NewPolygonClient(httpClient, cfg.BaseURL, cfg.APIKey, log)

	case CSVSourceType:
		if cfg.CSVDir == "" {
			return nil, fmt.Errorf("csv_dir is required for the csv data source")
		}
		return NewCSVSource(cfg.CSVDir)

	default:
		return nil, fmt.Errorf("unknown data source: %s", cfg.Provider)
	}
}
