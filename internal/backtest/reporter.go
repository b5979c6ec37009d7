package backtest

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/yourusername/advisor-backtest/internal/models"
)

// GenerateConsoleReport formats a result and its metrics for terminal output
func GenerateConsoleReport(result *models.BacktestResult, m Metrics) string {
	var builder strings.Builder
	builder.WriteString("Backtest Report\n")
	builder.WriteString("================\n")
	builder.WriteString(fmt.Sprintf("Instrument: %s\n", result.Instrument))
	builder.WriteString(fmt.Sprintf("Period: %s to %s (%d weeks, %d skipped)\n",
		result.StartDate.Format(models.DateLayout), result.EndDate.Format(models.DateLayout),
		m.Periods, m.SkippedPeriods))
	builder.WriteString(fmt.Sprintf("Initial Capital: $%.2f\n", result.InitialCapital))
	builder.WriteString(fmt.Sprintf("Final Value: $%.2f\n", result.FinalPortfolioValue))
	builder.WriteString(fmt.Sprintf("Total Return: %.2f%%\n", m.TotalReturn*100))
	builder.WriteString(fmt.Sprintf("Buy & Hold Return: %.2f%%\n", m.BuyAndHoldReturn*100))
	builder.WriteString(fmt.Sprintf("Alpha: %.2f%%\n", m.Alpha*100))
	builder.WriteString(fmt.Sprintf("Annualized Return: %.2f%%\n", m.AnnualizedReturn*100))
	builder.WriteString(fmt.Sprintf("Volatility: %.2f%%\n", m.Volatility*100))
	builder.WriteString(fmt.Sprintf("Sharpe Ratio: %.2f\n", m.SharpeRatio))
	builder.WriteString(fmt.Sprintf("Max Drawdown: %.2f%%\n", m.MaxDrawdown*100))
	builder.WriteString(fmt.Sprintf("Trades: %d (%d round trips)\n", m.TotalTrades, m.RoundTrips))
	builder.WriteString(fmt.Sprintf("Win Rate: %.2f%%\n", m.WinRate*100))
	if result.Outperformed() {
		builder.WriteString("Strategy outperformed buy & hold\n")
	} else {
		builder.WriteString("Strategy underperformed buy & hold\n")
	}
	return builder.String()
}

// WriteResultJSON writes the result as indented JSON, creating parent
// directories as needed.
func WriteResultJSON(result *models.BacktestResult, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	return os.WriteFile(outputPath, data, 0o644)
}

// LoadResultJSON reads a result previously written by WriteResultJSON.
func LoadResultJSON(path string) (*models.BacktestResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read result: %w", err)
	}
	var result models.BacktestResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to parse result %s: %w", path, err)
	}
	return &result, nil
}

// WriteHistoryCSV exports the performance history for spreadsheets
func WriteHistoryCSV(result *models.BacktestResult, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"date", "price", "portfolio_value", "cash", "shares", "action", "confidence", "skipped"}); err != nil {
		return err
	}
	for _, rec := range result.PerformanceHistory {
		row := []string{
			rec.Date.Format(models.DateLayout),
			strconv.FormatFloat(rec.Price, 'f', 4, 64),
			strconv.FormatFloat(rec.PortfolioValue, 'f', 2, 64),
			strconv.FormatFloat(rec.Cash, 'f', 2, 64),
			strconv.FormatInt(rec.Shares, 10),
			string(rec.Action),
			strconv.FormatFloat(rec.Confidence, 'f', 2, 64),
			strconv.FormatBool(rec.Skipped),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
