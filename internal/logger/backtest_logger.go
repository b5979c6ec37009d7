// Package logger provides backtest-specific logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/advisor-backtest/internal/models"
)

// BacktestLogger provides dedicated logging for simulated runs.
type BacktestLogger struct {
	*logrus.Entry
}

// NewBacktestLogger creates a new backtest logger.
func NewBacktestLogger(baseLogger *logrus.Logger) *BacktestLogger {
	return &BacktestLogger{
		Entry: baseLogger.WithField("component", "backtest"),
	}
}

// LogRunStarted logs the simulated window of a run.
func (bl *BacktestLogger) LogRunStarted(runID, instrument string, start, end time.Time, weeks int, capital float64) {
	bl.WithFields(logrus.Fields{
		"run_id":          runID,
		"instrument":      instrument,
		"start_date":      start.Format(models.DateLayout),
		"end_date":        end.Format(models.DateLayout),
		"weeks":           weeks,
		"initial_capital": capital,
	}).Info("Backtest started")
}

// LogPeriodSkipped logs a period that produced no decision.
func (bl *BacktestLogger) LogPeriodSkipped(instrument string, asOf time.Time, reason string) {
	bl.WithFields(logrus.Fields{
		"instrument": instrument,
		"as_of":      asOf.Format(models.DateLayout),
		"reason":     reason,
	}).Warn("Period skipped")
}

// LogDecision logs the signal and the recommendation acted on for a period.
func (bl *BacktestLogger) LogDecision(instrument string, asOf time.Time, signal models.Signal, rec models.Recommendation) {
	bl.WithFields(logrus.Fields{
		"instrument":   instrument,
		"as_of":        asOf.Format(models.DateLayout),
		"signal":       signal.Action,
		"signal_score": signal.Score,
		"action":       rec.Action,
		"confidence":   rec.Confidence,
		"events_fired": len(signal.Indicators.Events),
	}).Debug("Decision made")
}

// LogTrade logs an executed trade.
func (bl *BacktestLogger) LogTrade(instrument string, trade models.Trade) {
	bl.WithFields(logrus.Fields{
		"instrument": instrument,
		"date":       trade.Date.Format(models.DateLayout),
		"action":     trade.Action,
		"shares":     trade.Shares,
		"price":      trade.Price,
		"value":      trade.Value,
		"confidence": trade.Confidence,
	}).Info("Trade executed")
}

// LogAdvisorFallback logs a recommendation replaced by HOLD.
func (bl *BacktestLogger) LogAdvisorFallback(instrument string, asOf time.Time, advisor, reason string, err error) {
	fields := logrus.Fields{
		"instrument": instrument,
		"as_of":      asOf.Format(models.DateLayout),
		"advisor":    advisor,
		"reason":     reason,
	}
	if err != nil {
		fields["error"] = err.Error()
	}
	bl.WithFields(fields).Warn("Advisor recommendation replaced with HOLD")
}

// LogRunCompleted logs the headline numbers of a finished run.
func (bl *BacktestLogger) LogRunCompleted(result *models.BacktestResult, duration time.Duration) {
	bl.WithFields(logrus.Fields{
		"run_id":          result.RunID.String(),
		"instrument":      result.Instrument,
		"final_value":     result.FinalPortfolioValue,
		"total_return":    result.TotalReturn,
		"buy_hold_return": result.BuyAndHold.Return,
		"alpha":           result.Alpha,
		"trades":          len(result.Trades),
		"periods":         len(result.PerformanceHistory),
		"skipped_periods": result.SkippedPeriods(),
		"duration_ms":     duration.Milliseconds(),
	}).Info("Backtest completed")
}
