package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/yourusername/advisor-backtest/internal/models"
)

// ErrResultNotFound is returned when no run has the requested ID.
var ErrResultNotFound = errors.New("backtest result not found")

// ResultRepository defines the interface for backtest result storage
type ResultRepository interface {
	// Save stores the run summary, its trades and the full result document
	Save(ctx context.Context, result *models.BacktestResult) error
	GetByID(ctx context.Context, runID uuid.UUID) (*models.BacktestResult, error)
	// ListByInstrument returns the newest runs first
	ListByInstrument(ctx context.Context, instrument string, limit int) ([]models.RunSummary, error)
	Ping(ctx context.Context) error
	Close() error
}
