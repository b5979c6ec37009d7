package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/yourusername/advisor-backtest/internal/config"
)

// postgresSchema holds one row per run plus its trades.
var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS backtest_runs (
		run_id                UUID PRIMARY KEY,
		instrument            TEXT NOT NULL,
		start_date            TIMESTAMPTZ NOT NULL,
		end_date              TIMESTAMPTZ NOT NULL,
		weeks_tested          INTEGER NOT NULL,
		initial_capital       DOUBLE PRECISION NOT NULL,
		final_portfolio_value DOUBLE PRECISION NOT NULL,
		total_return          DOUBLE PRECISION NOT NULL,
		buy_and_hold_return   DOUBLE PRECISION NOT NULL,
		alpha                 DOUBLE PRECISION NOT NULL,
		total_trades          INTEGER NOT NULL,
		full_result           JSONB NOT NULL,
		created_at            TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_backtest_runs_instrument ON backtest_runs (instrument, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS backtest_trades (
		run_id     UUID NOT NULL REFERENCES backtest_runs (run_id) ON DELETE CASCADE,
		seq        INTEGER NOT NULL,
		trade_date TIMESTAMPTZ NOT NULL,
		action     TEXT NOT NULL,
		shares     BIGINT NOT NULL,
		price      DOUBLE PRECISION NOT NULL,
		value      DOUBLE PRECISION NOT NULL,
		confidence DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (run_id, seq)
	)`,
}

// Initialize connects to Postgres and ensures the result schema exists
func Initialize(ctx context.Context, cfg *config.Config) (*DB, error) {
	db, err := NewDB(ctx, &cfg.Storage.Database)
	if err != nil {
		return nil, err
	}

	err = db.WithTransaction(ctx, func(tx pgx.Tx) error {
		for _, stmt := range postgresSchema {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate result schema: %w", err)
	}

	return db, nil
}
