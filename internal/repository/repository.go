// Package repository stores finished backtest runs.
package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/yourusername/advisor-backtest/internal/config"
	"github.com/yourusername/advisor-backtest/internal/database"
	"github.com/yourusername/advisor-backtest/internal/models"
)

// Storage drivers
const (
	DriverNone     = "none"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// NewResultRepository opens the store selected by storage.driver
func NewResultRepository(ctx context.Context, cfg *config.Config) (ResultRepository, error) {
	switch cfg.Storage.Driver {
	case DriverNone, "":
		return NoopResultRepository{}, nil
	case DriverPostgres:
		db, err := database.Initialize(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return NewPostgresResultRepository(db), nil
	case DriverSQLite:
		db, err := database.OpenSQLite(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, err
		}
		return NewSQLiteResultRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.Storage.Driver)
	}
}

// NoopResultRepository discards results; used when storage is disabled
type NoopResultRepository struct{}

func (NoopResultRepository) Save(context.Context, *models.BacktestResult) error { return nil }

func (NoopResultRepository) GetByID(_ context.Context, runID uuid.UUID) (*models.BacktestResult, error) {
	return nil, fmt.Errorf("%w: %s", ErrResultNotFound, runID)
}

func (NoopResultRepository) ListByInstrument(context.Context, string, int) ([]models.RunSummary, error) {
	return nil, nil
}

func (NoopResultRepository) Ping(context.Context) error { return nil }

func (NoopResultRepository) Close() error { return nil }
