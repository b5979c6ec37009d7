package datasource

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/yourusername/advisor-backtest/internal/models"
)

const csvSourceName = "csv"

// CSVSource serves price history from <dir>/<INSTRUMENT>.csv files. It has no news feed.
type CSVSource struct {
	dir string
}

// NewCSVSource creates a CSV-backed data source rooted at dir
func NewCSVSource(dir string) (*CSVSource, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("csv directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("csv directory %s is not a directory", dir)
	}
	return &CSVSource{dir: dir}, nil
}

// Name returns the data source name
func (s *CSVSource) Name() string {
	return csvSourceName
}

// FetchSeries loads the instrument file and keeps the bars within the range
func (s *CSVSource) FetchSeries(ctx context.Context, instrument string, dr DateRange) (models.PriceSeries, error) {
	if err := ctx.Err(); err != nil {
		return models.PriceSeries{}, err
	}

	path := filepath.Join(s.dir, strings.ToUpper(instrument)+".csv")
	series, err := LoadPriceSeriesFile(instrument, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return models.PriceSeries{}, NewDataSourceError(csvSourceName, ErrCodeNotFound, "no price file for "+instrument, err)
		}
		return models.PriceSeries{}, err
	}

	window := series.Between(dr.Start, dr.End)
	if window.IsEmpty() {
		return models.PriceSeries{}, NewDataSourceError(csvSourceName, ErrCodeNotFound,
			fmt.Sprintf("no bars for %s in range", instrument), nil)
	}
	return window, nil
}

// FetchNews returns no articles
func (s *CSVSource) FetchNews(ctx context.Context, instrument string, dr DateRange) ([]models.NewsArticle, error) {
	return nil, ctx.Err()
}
