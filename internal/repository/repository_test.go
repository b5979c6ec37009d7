package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/advisor-backtest/internal/config"
	"github.com/yourusername/advisor-backtest/internal/database"
	"github.com/yourusername/advisor-backtest/internal/models"
)

var start = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func testResult(instrument string, createdAt time.Time) *models.BacktestResult {
	return &models.BacktestResult{
		RunID:               uuid.New(),
		Instrument:          instrument,
		StartDate:           start,
		EndDate:             start.AddDate(0, 0, 21),
		WeeksTested:         3,
		InitialCapital:      10000,
		FinalPortfolioValue: 9000,
		FinalCash:           9000,
		TotalReturn:         -0.1,
		Trades: []models.Trade{
			{Date: start, Action: models.ActionBuy, Shares: 100, Price: 100, Value: 10000, Confidence: 1},
			{Date: start.AddDate(0, 0, 14), Action: models.ActionSell, Shares: 100, Price: 90, Value: 9000, Confidence: 1},
		},
		PerformanceHistory: []models.PerformanceRecord{
			{Date: start, Price: 100, PortfolioValue: 10000, Shares: 100, Action: models.ActionBuy, Confidence: 1},
		},
		BuyAndHold: models.BuyAndHoldComparison{EntryPrice: 100, ExitPrice: 90, Shares: 100, FinalValue: 9000, Return: -0.1},
		CreatedAt:  createdAt,
	}
}

func newSQLiteRepo(t *testing.T) *SQLiteResultRepository {
	t.Helper()
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "nested", "results.db"))
	require.NoError(t, err)
	repo := NewSQLiteResultRepository(db)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestSQLiteSaveAndGet(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()
	result := testResult("AAPL", start.AddDate(0, 1, 0))

	require.NoError(t, repo.Ping(ctx))
	require.NoError(t, repo.Save(ctx, result))

	loaded, err := repo.GetByID(ctx, result.RunID)
	require.NoError(t, err)
	assert.Equal(t, result.RunID, loaded.RunID)
	assert.Equal(t, "AAPL", loaded.Instrument)
	assert.Len(t, loaded.Trades, 2)
	assert.InDelta(t, 9000.0, loaded.FinalPortfolioValue, 1e-9)
}

func TestSQLiteGetMissing(t *testing.T) {
	repo := newSQLiteRepo(t)
	_, err := repo.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrResultNotFound)
}

func TestSQLiteRejectsDuplicateRun(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()
	result := testResult("AAPL", start)

	require.NoError(t, repo.Save(ctx, result))
	assert.Error(t, repo.Save(ctx, result))
}

func TestSQLiteListByInstrument(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()

	older := testResult("AAPL", start.AddDate(0, 1, 0))
	newer := testResult("AAPL", start.AddDate(0, 2, 0))
	other := testResult("MSFT", start.AddDate(0, 3, 0))
	for _, r := range []*models.BacktestResult{older, newer, other} {
		require.NoError(t, repo.Save(ctx, r))
	}

	summaries, err := repo.ListByInstrument(ctx, "aapl", 10)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, newer.RunID, summaries[0].RunID)
	assert.Equal(t, older.RunID, summaries[1].RunID)
	assert.True(t, summaries[0].StartDate.Equal(start))
	assert.True(t, summaries[0].CreatedAt.Equal(newer.CreatedAt))
	assert.Equal(t, 2, summaries[0].TotalTrades)
	assert.InDelta(t, -0.1, summaries[0].BuyAndHoldReturn, 1e-9)

	limited, err := repo.ListByInstrument(ctx, "AAPL", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestNewResultRepository(t *testing.T) {
	ctx := context.Background()

	cfg := &config.Config{}
	cfg.Storage.Driver = DriverNone
	repo, err := NewResultRepository(ctx, cfg)
	require.NoError(t, err)
	assert.IsType(t, NoopResultRepository{}, repo)
	assert.NoError(t, repo.Save(ctx, testResult("AAPL", start)))
	_, err = repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrResultNotFound)

	cfg.Storage.Driver = DriverSQLite
	cfg.Storage.SQLitePath = filepath.Join(t.TempDir(), "results.db")
	repo, err = NewResultRepository(ctx, cfg)
	require.NoError(t, err)
	assert.IsType(t, &SQLiteResultRepository{}, repo)
	require.NoError(t, repo.Close())

	cfg.Storage.Driver = "mongo"
	_, err = NewResultRepository(ctx, cfg)
	assert.Error(t, err)
}
