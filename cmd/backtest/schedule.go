package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/yourusername/advisor-backtest/internal/health"
	"github.com/yourusername/advisor-backtest/internal/metrics"
	"github.com/yourusername/advisor-backtest/internal/repository"
	"github.com/yourusername/advisor-backtest/internal/scheduler"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run backtests on the configured cron schedule until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Schedule.Cron == "" {
			return fmt.Errorf("schedule.cron is not configured")
		}
		instruments := cfg.Schedule.Instruments
		if len(instruments) == 0 {
			instruments = []string{cfg.Backtest.Instrument}
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		repo, err := repository.NewResultRepository(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to open result store: %w", err)
		}
		defer repo.Close()

		run := func(ctx context.Context, instrument string) error {
			result, err := runBacktest(ctx, cfg, repo, instrument, log)
			if err != nil {
				return err
			}
			path := scheduledOutputPath(cfg.Backtest.OutputPath, instrument, time.Now())
			return writeOutputs(result, path, "")
		}

		sched := scheduler.NewScheduler(run, log)
		if err := sched.ScheduleBacktests(cfg.Schedule.Cron, instruments); err != nil {
			return err
		}

		var server *health.Server
		if cfg.Metrics.Enabled {
			server = health.NewServer(health.Config{
				ServiceName:    cfg.App.Name,
				Version:        Version,
				Port:           cfg.Metrics.Port,
				MetricsPath:    cfg.Metrics.Path,
				MetricsHandler: metrics.Handler(),
				Logger:         log,
				Checks: map[string]health.Check{
					"storage": repo.Ping,
				},
			})
			if err := server.Start(ctx); err != nil {
				return err
			}
		}

		if err := sched.Start(); err != nil {
			return err
		}
		if server != nil {
			server.SetReady(true)
		}
		log.WithField("next_run", sched.GetNextRun()).Info("Scheduler running")

		<-ctx.Done()
		log.Info("Shutdown signal received")
		if server != nil {
			server.SetReady(false)
		}
		return sched.Stop()
	},
}
