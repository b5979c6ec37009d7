package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/yourusername/advisor-backtest/internal/database"
	"github.com/yourusername/advisor-backtest/internal/models"
)

const errScanRunSummary = "failed to scan run summary: %w"

// PostgresResultRepository implements ResultRepository for PostgreSQL
type PostgresResultRepository struct {
	db *database.DB
}

// NewPostgresResultRepository creates a new result repository
func NewPostgresResultRepository(db *database.DB) *PostgresResultRepository {
	return &PostgresResultRepository{db: db}
}

// Save inserts a run and its trades in one transaction
func (r *PostgresResultRepository) Save(ctx context.Context, result *models.BacktestResult) error {
	doc, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal backtest result: %w", err)
	}
	s := result.Summary()

	return r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		query := `
			INSERT INTO backtest_runs (
				run_id, instrument, start_date, end_date, weeks_tested,
				initial_capital, final_portfolio_value, total_return, buy_and_hold_return, alpha,
				total_trades, full_result, created_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		`
		_, err := tx.Exec(ctx, query,
			s.RunID, s.Instrument, s.StartDate, s.EndDate, s.WeeksTested,
			s.InitialCapital, s.FinalPortfolioValue, s.TotalReturn, s.BuyAndHoldReturn, s.Alpha,
			s.TotalTrades, doc, s.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to save backtest run: %w", err)
		}

		if len(result.Trades) == 0 {
			return nil
		}
		rows := make([][]interface{}, len(result.Trades))
		for i, t := range result.Trades {
			rows[i] = []interface{}{s.RunID, i, t.Date, string(t.Action), t.Shares, t.Price, t.Value, t.Confidence}
		}
		_, err = tx.CopyFrom(ctx,
			pgx.Identifier{"backtest_trades"},
			[]string{"run_id", "seq", "trade_date", "action", "shares", "price", "value", "confidence"},
			pgx.CopyFromRows(rows),
		)
		if err != nil {
			return fmt.Errorf("failed to save backtest trades: %w", err)
		}
		return nil
	})
}

// GetByID retrieves the full result of a run
func (r *PostgresResultRepository) GetByID(ctx context.Context, runID uuid.UUID) (*models.BacktestResult, error) {
	var doc []byte
	err := r.db.QueryRow(ctx, `SELECT full_result FROM backtest_runs WHERE run_id = $1`, runID).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrResultNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get backtest result: %w", err)
	}

	var result models.BacktestResult
	if err := json.Unmarshal(doc, &result); err != nil {
		return nil, fmt.Errorf("failed to decode backtest result: %w", err)
	}
	return &result, nil
}

// ListByInstrument retrieves the latest runs for an instrument
func (r *PostgresResultRepository) ListByInstrument(ctx context.Context, instrument string, limit int) ([]models.RunSummary, error) {
	query := `
		SELECT run_id, instrument, start_date, end_date, weeks_tested, initial_capital,
			final_portfolio_value, total_return, buy_and_hold_return, alpha, total_trades, created_at
		FROM backtest_runs WHERE instrument = $1 ORDER BY created_at DESC LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, strings.ToUpper(instrument), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query backtest runs: %w", err)
	}
	defer rows.Close()

	var summaries []models.RunSummary
	for rows.Next() {
		var s models.RunSummary
		if err := rows.Scan(
			&s.RunID, &s.Instrument, &s.StartDate, &s.EndDate, &s.WeeksTested, &s.InitialCapital,
			&s.FinalPortfolioValue, &s.TotalReturn, &s.BuyAndHoldReturn, &s.Alpha, &s.TotalTrades, &s.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf(errScanRunSummary, err)
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// Ping verifies database connectivity
func (r *PostgresResultRepository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

// Close closes the connection pool
func (r *PostgresResultRepository) Close() error {
	r.db.Close()
	return nil
}
