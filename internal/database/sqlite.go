package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS backtest_runs (
		run_id                TEXT PRIMARY KEY,
		instrument            TEXT NOT NULL,
		start_date            INTEGER NOT NULL,
		end_date              INTEGER NOT NULL,
		weeks_tested          INTEGER NOT NULL,
		initial_capital       REAL NOT NULL,
		final_portfolio_value REAL NOT NULL,
		total_return          REAL NOT NULL,
		buy_and_hold_return   REAL NOT NULL,
		alpha                 REAL NOT NULL,
		total_trades          INTEGER NOT NULL,
		full_result           TEXT NOT NULL,
		created_at            INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_backtest_runs_instrument ON backtest_runs (instrument, created_at)`,
	`CREATE TABLE IF NOT EXISTS backtest_trades (
		run_id     TEXT NOT NULL REFERENCES backtest_runs (run_id) ON DELETE CASCADE,
		seq        INTEGER NOT NULL,
		trade_date INTEGER NOT NULL,
		action     TEXT NOT NULL,
		shares     INTEGER NOT NULL,
		price      REAL NOT NULL,
		value      REAL NOT NULL,
		confidence REAL NOT NULL,
		PRIMARY KEY (run_id, seq)
	)`,
}

// OpenSQLite opens (or creates) the SQLite database at path and runs migrations.
func OpenSQLite(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// single writer
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	for _, stmt := range sqliteSchema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}
	return db, nil
}
