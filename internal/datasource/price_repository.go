package datasource

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/yourusername/advisor-backtest/internal/models"
)

const (
	colDate     = "date"
	colOpen     = "open"
	colHigh     = "high"
	colLow      = "low"
	colClose    = "close"
	colVolume   = "volume"
	colAdjClose = "adjusted_close"
)

var requiredColumns = []string{colDate, colOpen, colHigh, colLow, colClose, colVolume, colAdjClose}

// headerAliases maps normalised header names onto canonical columns.
var headerAliases = map[string]string{
	"date":          colDate,
	"timestamp":     colDate,
	"time":          colDate,
	"open":          colOpen,
	"high":          colHigh,
	"low":           colLow,
	"close":         colClose,
	"volume":        colVolume,
	"adjclose":      colAdjClose,
	"adjustedclose": colAdjClose,
}

var dateLayouts = []string{
	models.DateLayout,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// LoadPriceSeriesFile loads a price series from a CSV file on disk.
func LoadPriceSeriesFile(instrument, path string) (models.PriceSeries, error) {
	f, err := os.Open(path)
	if err != nil {
		return models.PriceSeries{}, fmt.Errorf("failed to open price file: %w", err)
	}
	defer f.Close()

	return LoadPriceSeries(instrument, filepath.Base(path), f)
}

// LoadPriceSeries parses OHLCV rows from r. Header names are matched loosely
// ("Adj Close", "adjusted_close") but every column must be present. An empty
// adjusted close falls back to the close price. Rows may arrive in any order.
func LoadPriceSeries(instrument, source string, r io.Reader) (models.PriceSeries, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return models.PriceSeries{}, &models.DataFormatError{Source: source, Reason: "missing header row"}
		}
		return models.PriceSeries{}, &models.DataFormatError{Source: source, Reason: err.Error()}
	}

	index, err := mapColumns(source, header)
	if err != nil {
		return models.PriceSeries{}, err
	}

	var bars []models.PriceBar
	row := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		row++
		if err != nil {
			return models.PriceSeries{}, &models.DataFormatError{Source: source, Row: row, Reason: err.Error()}
		}
		if isBlank(record) {
			continue
		}

		bar, err := parseRow(source, row, record, index)
		if err != nil {
			return models.PriceSeries{}, err
		}
		bars = append(bars, bar)
	}

	return models.NewPriceSeries(instrument, bars)
}

func mapColumns(source string, header []string) (map[string]int, error) {
	index := make(map[string]int, len(requiredColumns))
	for i, name := range header {
		if canonical, ok := headerAliases[normalizeHeader(name)]; ok {
			if _, dup := index[canonical]; !dup {
				index[canonical] = i
			}
		}
	}

	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, &models.DataFormatError{Source: source, Column: col, Reason: "required column is missing"}
		}
	}
	return index, nil
}

func normalizeHeader(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(name)
}

func parseRow(source string, row int, record []string, index map[string]int) (models.PriceBar, error) {
	cell := func(col string) string {
		i := index[col]
		if i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	date, err := parseDate(cell(colDate))
	if err != nil {
		return models.PriceBar{}, &models.DataFormatError{Source: source, Row: row, Column: colDate, Reason: err.Error()}
	}

	bar := models.PriceBar{Date: date}
	fields := []struct {
		col string
		dst *float64
	}{
		{colOpen, &bar.Open},
		{colHigh, &bar.High},
		{colLow, &bar.Low},
		{colClose, &bar.Close},
		{colVolume, &bar.Volume},
	}
	for _, f := range fields {
		v, err := parseNumber(cell(f.col))
		if err != nil {
			return models.PriceBar{}, &models.DataFormatError{Source: source, Row: row, Column: f.col, Reason: err.Error()}
		}
		*f.dst = v
	}

	if raw := cell(colAdjClose); raw == "" {
		bar.AdjustedClose = bar.Close
	} else {
		v, err := parseNumber(raw)
		if err != nil {
			return models.PriceBar{}, &models.DataFormatError{Source: source, Row: row, Column: colAdjClose, Reason: err.Error()}
		}
		bar.AdjustedClose = v
	}

	if err := bar.Validate(); err != nil {
		return models.PriceBar{}, &models.DataFormatError{Source: source, Row: row, Reason: err.Error()}
	}
	return bar, nil
}

func parseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparsable date %q", raw)
}

func parseNumber(raw string) (float64, error) {
	if raw == "" {
		return 0, fmt.Errorf("empty value")
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", raw)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite value %q", raw)
	}
	return v, nil
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
