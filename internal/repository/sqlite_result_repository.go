package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/advisor-backtest/internal/models"
)

// SQLiteResultRepository implements ResultRepository on a local SQLite file.
// Timestamps are stored as Unix nanoseconds.
type SQLiteResultRepository struct {
	db *sql.DB
}

// NewSQLiteResultRepository wraps a database opened with database.OpenSQLite
func NewSQLiteResultRepository(db *sql.DB) *SQLiteResultRepository {
	return &SQLiteResultRepository{db: db}
}

// Save inserts a run and its trades in one transaction
func (r *SQLiteResultRepository) Save(ctx context.Context, result *models.BacktestResult) error {
	doc, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal backtest result: %w", err)
	}
	s := result.Summary()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO backtest_runs (
			run_id, instrument, start_date, end_date, weeks_tested,
			initial_capital, final_portfolio_value, total_return, buy_and_hold_return, alpha,
			total_trades, full_result, created_at
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		s.RunID.String(), s.Instrument, s.StartDate.UnixNano(), s.EndDate.UnixNano(), s.WeeksTested,
		s.InitialCapital, s.FinalPortfolioValue, s.TotalReturn, s.BuyAndHoldReturn, s.Alpha,
		s.TotalTrades, string(doc), s.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to save backtest run: %w", err)
	}

	for i, t := range result.Trades {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO backtest_trades (run_id, seq, trade_date, action, shares, price, value, confidence)
			VALUES (?,?,?,?,?,?,?,?)`,
			s.RunID.String(), i, t.Date.UnixNano(), string(t.Action), t.Shares, t.Price, t.Value, t.Confidence,
		)
		if err != nil {
			return fmt.Errorf("failed to save backtest trade %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit backtest run: %w", err)
	}
	return nil
}

// GetByID retrieves the full result of a run
func (r *SQLiteResultRepository) GetByID(ctx context.Context, runID uuid.UUID) (*models.BacktestResult, error) {
	var doc string
	err := r.db.QueryRowContext(ctx, `SELECT full_result FROM backtest_runs WHERE run_id = ?`, runID.String()).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrResultNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get backtest result: %w", err)
	}

	var result models.BacktestResult
	if err := json.Unmarshal([]byte(doc), &result); err != nil {
		return nil, fmt.Errorf("failed to decode backtest result: %w", err)
	}
	return &result, nil
}

// ListByInstrument retrieves the latest runs for an instrument
func (r *SQLiteResultRepository) ListByInstrument(ctx context.Context, instrument string, limit int) ([]models.RunSummary, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT run_id, instrument, start_date, end_date, weeks_tested, initial_capital,
			final_portfolio_value, total_return, buy_and_hold_return, alpha, total_trades, created_at
		FROM backtest_runs WHERE instrument = ? ORDER BY created_at DESC LIMIT ?`,
		strings.ToUpper(instrument), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query backtest runs: %w", err)
	}
	defer rows.Close()

	var summaries []models.RunSummary
	for rows.Next() {
		var (
			s                     models.RunSummary
			id                    string
			start, end, createdAt int64
		)
		if err := rows.Scan(
			&id, &s.Instrument, &start, &end, &s.WeeksTested, &s.InitialCapital,
			&s.FinalPortfolioValue, &s.TotalReturn, &s.BuyAndHoldReturn, &s.Alpha, &s.TotalTrades, &createdAt,
		); err != nil {
			return nil, fmt.Errorf(errScanRunSummary, err)
		}
		if s.RunID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf(errScanRunSummary, err)
		}
		s.StartDate = time.Unix(0, start).UTC()
		s.EndDate = time.Unix(0, end).UTC()
		s.CreatedAt = time.Unix(0, createdAt).UTC()
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// Ping verifies the database file is usable
func (r *SQLiteResultRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close closes the database
func (r *SQLiteResultRepository) Close() error {
	return r.db.Close()
}
