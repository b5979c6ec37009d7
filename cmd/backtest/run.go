package main

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/advisor-backtest/internal/advisor"
	"github.com/yourusername/advisor-backtest/internal/analysis"
	"github.com/yourusername/advisor-backtest/internal/backtest"
	"github.com/yourusername/advisor-backtest/internal/config"
	"github.com/yourusername/advisor-backtest/internal/datasource"
	"github.com/yourusername/advisor-backtest/internal/models"
	"github.com/yourusername/advisor-backtest/internal/repository"
)

func init() {
	runCmd.Flags().String("instrument", "", "Ticker to backtest (overrides backtest.instrument)")
	runCmd.Flags().Int("weeks", 0, "Number of weekly periods to simulate")
	runCmd.Flags().Float64("capital", 0, "Starting cash")
	runCmd.Flags().String("output", "", "Path of the JSON result")
	runCmd.Flags().String("history-csv", "", "Optional path of the performance history CSV")
	runCmd.Flags().String("advisor", "", "Advisor type: rule or http")
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one backtest and write its result",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		repo, err := repository.NewResultRepository(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to open result store: %w", err)
		}
		defer repo.Close()

		bt := cfg.Backtest
		result, err := runBacktest(ctx, cfg, repo, bt.Instrument, log)
		if err != nil {
			return err
		}
		if err := writeOutputs(result, bt.OutputPath, bt.HistoryCSVPath); err != nil {
			return err
		}

		fmt.Print(backtest.GenerateConsoleReport(result, backtest.Analyze(result)))
		log.WithField("output", bt.OutputPath).Info("Backtest result written")
		return nil
	},
}

// runBacktest builds a fresh data source, advisor and simulator, runs one
// backtest and stores the result. A storage failure is logged, not returned.
func runBacktest(ctx context.Context, cfg *config.Config, repo repository.ResultRepository, instrument string, log *logrus.Logger) (*models.BacktestResult, error) {
	source, err := datasource.NewDataSource(cfg.DataSource, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create data source: %w", err)
	}

	params, err := backtest.FromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("invalid engine parameters: %w", err)
	}

	adv, err := advisor.New(cfg, analysis.NewSignalGenerator(params.Signal).MaxScore(), log)
	if err != nil {
		return nil, fmt.Errorf("failed to create advisor: %w", err)
	}

	sim, err := backtest.NewSimulator(source, adv, params, backtest.WithLogger(log))
	if err != nil {
		return nil, err
	}

	result, err := sim.Run(ctx, instrument, cfg.Backtest.Weeks, cfg.Backtest.InitialCapital)
	if err != nil {
		return nil, fmt.Errorf("backtest of %s failed: %w", instrument, err)
	}

	if cached, ok := adv.(*advisor.CachedAdvisor); ok {
		hits, misses, ratio := cached.Stats()
		log.WithFields(logrus.Fields{
			"hits":      hits,
			"misses":    misses,
			"hit_ratio": ratio,
		}).Debug("Advisor cache statistics")
	}

	if err := repo.Save(ctx, result); err != nil {
		log.WithError(err).WithField("run_id", result.RunID.String()).Warn("Failed to store backtest result")
	}
	return result, nil
}

func writeOutputs(result *models.BacktestResult, outputPath, historyPath string) error {
	if err := backtest.WriteResultJSON(result, outputPath); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}
	if historyPath != "" {
		if err := backtest.WriteHistoryCSV(result, historyPath); err != nil {
			return fmt.Errorf("failed to write performance history: %w", err)
		}
	}
	return nil
}

// scheduledOutputPath places each scheduled run next to the configured output
// as <INSTRUMENT>_<YYYYMMDD>.json.
func scheduledOutputPath(base, instrument string, at time.Time) string {
	name := fmt.Sprintf("%s_%s.json", strings.ToUpper(instrument), at.UTC().Format("20060102"))
	return filepath.Join(filepath.Dir(base), name)
}
