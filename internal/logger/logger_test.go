package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/advisor-backtest/internal/models"
)

func setupTestLogger() (*logrus.Logger, *bytes.Buffer) {
	log := logrus.New()
	buf := &bytes.Buffer{}
	log.SetOutput(buf)
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.DebugLevel)
	return log, buf
}

func parseLogOutput(buf *bytes.Buffer) map[string]interface{} {
	var logEntry map[string]interface{}
	err := json.Unmarshal(buf.Bytes(), &logEntry)
	if err != nil {
		return nil
	}
	return logEntry
}

var asOf = time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

func TestNewLoggerLevels(t *testing.T) {
	buf := &bytes.Buffer{}
	log := newLogger(buf, "debug", "production")
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, log.Formatter)

	log = newLogger(buf, "nonsense", "development")
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, log.Formatter)
}

func TestBacktestLoggerTrade(t *testing.T) {
	log, buf := setupTestLogger()
	btLogger := NewBacktestLogger(log)

	btLogger.LogTrade("AAPL", models.Trade{
		Date:       asOf,
		Action:     models.ActionBuy,
		Shares:     100,
		Price:      100,
		Value:      10000,
		Confidence: 0.8,
	})

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "backtest", logEntry["component"])
	assert.Equal(t, "BUY", logEntry["action"])
	assert.Equal(t, float64(100), logEntry["shares"])
	assert.Equal(t, "2024-03-04", logEntry["date"])
}

func TestBacktestLoggerPeriodSkipped(t *testing.T) {
	log, buf := setupTestLogger()
	btLogger := NewBacktestLogger(log)

	btLogger.LogPeriodSkipped("AAPL", asOf, "insufficient_history")

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "warning", logEntry["level"])
	assert.Equal(t, "insufficient_history", logEntry["reason"])
}

func TestBacktestLoggerAdvisorFallback(t *testing.T) {
	log, buf := setupTestLogger()
	btLogger := NewBacktestLogger(log)

	btLogger.LogAdvisorFallback("AAPL", asOf, "http", "advisor_error", errors.New("connection refused"))

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "http", logEntry["advisor"])
	assert.Equal(t, "connection refused", logEntry["error"])
}

func TestBacktestLoggerDecision(t *testing.T) {
	log, buf := setupTestLogger()
	btLogger := NewBacktestLogger(log)

	btLogger.LogDecision("AAPL", asOf,
		models.Signal{Action: models.ActionBuy, Score: 2},
		models.Recommendation{Action: models.ActionHold, Confidence: 0.4},
	)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "BUY", logEntry["signal"])
	assert.Equal(t, "HOLD", logEntry["action"])
}

func TestBacktestLoggerRunCompleted(t *testing.T) {
	log, buf := setupTestLogger()
	btLogger := NewBacktestLogger(log)

	result := &models.BacktestResult{
		RunID:       uuid.New(),
		Instrument:  "AAPL",
		TotalReturn: -0.1,
		PerformanceHistory: []models.PerformanceRecord{
			{Date: asOf, Skipped: true},
			{Date: asOf.AddDate(0, 0, 7)},
		},
	}
	btLogger.LogRunCompleted(result, 1500*time.Millisecond)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, float64(1), logEntry["skipped_periods"])
	assert.Equal(t, float64(2), logEntry["periods"])
	assert.Equal(t, float64(1500), logEntry["duration_ms"])
}

func BenchmarkBacktestLoggerTrade(b *testing.B) {
	log := logrus.New()
	log.SetOutput(&bytes.Buffer{})
	btLogger := NewBacktestLogger(log)
	trade := models.Trade{Date: asOf, Action: models.ActionSell, Shares: 10, Price: 90, Value: 900}

	for i := 0; i < b.N; i++ {
		btLogger.LogTrade("AAPL", trade)
	}
}
