// Package scheduler runs backtests on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/advisor-backtest/internal/logger"
)

// RunFunc executes one complete backtest for an instrument. Each call must
// build its own simulator; scheduled runs share no state.
type RunFunc func(ctx context.Context, instrument string) error

// Scheduler manages scheduled backtest jobs
type Scheduler struct {
	cron            *cron.Cron
	run             RunFunc
	logger          *logrus.Entry
	mu              sync.RWMutex
	isRunning       bool
	runCtx          context.Context
	cancelRuns      context.CancelFunc
	jobIDs          []cron.EntryID
	jobTimeout      time.Duration
	gracefulTimeout time.Duration
}

// NewScheduler creates a new scheduler. A job still running when its next
// tick fires skips that tick.
func NewScheduler(run RunFunc, log *logrus.Logger) *Scheduler {
	if log == nil {
		log = logger.Discard()
	}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		run:             run,
		logger:          log.WithField("component", "scheduler"),
		jobIDs:          make([]cron.EntryID, 0),
		jobTimeout:      4 * time.Hour,
		gracefulTimeout: 30 * time.Second,
	}
}

// ScheduleBacktests schedules one job that backtests every instrument in turn
func (s *Scheduler) ScheduleBacktests(cronExpression string, instruments []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}
	if len(instruments) == 0 {
		return fmt.Errorf("no instruments to schedule")
	}

	list := make([]string, len(instruments))
	copy(list, instruments)

	jobFunc := func() {
		ctx, cancel := s.jobContext()
		defer cancel()
		s.runAll(ctx, list)
	}

	entryID, err := s.cron.AddFunc(cronExpression, jobFunc)
	if err != nil {
		return fmt.Errorf("failed to add job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithFields(logrus.Fields{
		"cron":        cronExpression,
		"instruments": strings.Join(list, ","),
	}).Info("Scheduled backtest job")

	return nil
}

// jobContext bounds one job by the job timeout and by Stop.
func (s *Scheduler) jobContext() (context.Context, context.CancelFunc) {
	s.mu.RLock()
	base := s.runCtx
	s.mu.RUnlock()
	if base == nil {
		base = context.Background()
	}
	return context.WithTimeout(base, s.jobTimeout)
}

// runAll backtests each instrument sequentially. A failing instrument is
// logged and does not stop the others. It returns the number of failures.
func (s *Scheduler) runAll(ctx context.Context, instruments []string) int {
	failures := 0
	for _, instrument := range instruments {
		if ctx.Err() != nil {
			s.logger.WithError(ctx.Err()).Warn("Scheduled backtests interrupted")
			return failures + 1
		}
		started := time.Now()
		if err := s.run(ctx, instrument); err != nil {
			failures++
			s.logger.WithError(err).WithField("instrument", instrument).Error("Scheduled backtest failed")
			continue
		}
		s.logger.WithFields(logrus.Fields{
			"instrument": instrument,
			"duration":   time.Since(started).String(),
		}).Info("Scheduled backtest completed")
	}
	return failures
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}

	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.runCtx, s.cancelRuns = context.WithCancel(context.Background())
	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("jobs", len(s.jobIDs)).Info("Scheduler started")

	return nil
}

// Stop cancels running backtests and waits up to the graceful timeout for
// them to return.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.cancelRuns()
	stopped := s.cron.Stop()
	s.mu.Unlock()

	select {
	case <-stopped.Done():
		s.logger.Info("Scheduler stopped")
		return nil
	case <-time.After(s.gracefulTimeout):
		return fmt.Errorf("timed out after %s waiting for running backtests", s.gracefulTimeout)
	}
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRun returns the time of the next scheduled job run
func (s *Scheduler) GetNextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning || len(s.jobIDs) == 0 {
		return time.Time{}
	}

	nextRun := time.Time{}
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			nextTime := entry.Next
			if nextRun.IsZero() || nextTime.Before(nextRun) {
				nextRun = nextTime
			}
		}
	}

	return nextRun
}

// Entries returns information about scheduled entries
func (s *Scheduler) Entries() []cron.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]cron.Entry, 0, len(s.jobIDs))
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			entries = append(entries, entry)
		}
	}

	return entries
}
