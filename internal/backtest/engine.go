package backtest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/advisor-backtest/internal/advisor"
	"github.com/yourusername/advisor-backtest/internal/analysis"
	"github.com/yourusername/advisor-backtest/internal/cache"
	"github.com/yourusername/advisor-backtest/internal/datasource"
	"github.com/yourusername/advisor-backtest/internal/logger"
	"github.com/yourusername/advisor-backtest/internal/metrics"
	"github.com/yourusername/advisor-backtest/internal/models"
)

const week = 7 * 24 * time.Hour

// Advisor fallback reasons
const (
	fallbackError     = "error"
	fallbackMalformed = "malformed"
)

// Simulator replays weekly decisions for one instrument. It owns its cache
// and portfolio; a Simulator must not run twice concurrently.
type Simulator struct {
	source  datasource.DataSource
	advisor advisor.Advisor
	params  Params

	indicators *analysis.IndicatorEngine
	risk       *analysis.RiskEngine
	signals    *analysis.SignalGenerator
	cache      *cache.PointInTimeCache

	now    func() time.Time
	log    *logrus.Logger
	logger *logger.BacktestLogger
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithClock sets the clock that defines the end of the simulated window.
func WithClock(now func() time.Time) Option {
	return func(s *Simulator) { s.now = now }
}

// WithLogger sets the base logger.
func WithLogger(log *logrus.Logger) Option {
	return func(s *Simulator) { s.log = log }
}

// WithCache replaces the simulator's private cache.
func WithCache(c *cache.PointInTimeCache) Option {
	return func(s *Simulator) { s.cache = c }
}

// NewSimulator creates a simulator fetching from source and consulting adv.
func NewSimulator(source datasource.DataSource, adv advisor.Advisor, params Params, opts ...Option) (*Simulator, error) {
	if source == nil {
		return nil, fmt.Errorf("data source is required")
	}
	if adv == nil {
		return nil, fmt.Errorf("advisor is required")
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	s := &Simulator{
		source:  source,
		advisor: adv,
		params:  params,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.Discard()
	}
	if s.cache == nil {
		s.cache = cache.NewPointInTimeCache()
	}

	s.indicators = analysis.NewIndicatorEngine(params.Indicators)
	s.risk = analysis.NewRiskEngine(params.Risk, s.log)
	s.signals = analysis.NewSignalGenerator(params.Signal)
	s.logger = logger.NewBacktestLogger(s.log)
	return s, nil
}

// Cache returns the simulator's point-in-time cache.
func (s *Simulator) Cache() *cache.PointInTimeCache {
	return s.cache
}

// Run simulates weeks weekly decisions ending now, starting with capital in
// cash. Failing to load price history, or finding no price in the window, is
// fatal; a failing advisor only turns its period into a HOLD.
func (s *Simulator) Run(ctx context.Context, instrument string, weeks int, capital float64) (*models.BacktestResult, error) {
	started := time.Now()
	result, err := s.run(ctx, strings.ToUpper(strings.TrimSpace(instrument)), weeks, capital)
	status := "success"
	if err != nil {
		status = "failure"
	}
	metrics.RecordRun(status, time.Since(started).Seconds())
	if err != nil {
		return nil, err
	}

	s.logger.LogRunCompleted(result, time.Since(started))
	metrics.RecordRunResult(result.Instrument, result.FinalPortfolioValue, result.TotalReturn, result.Alpha)
	metrics.UpdateCacheHitRatio(s.cache.Stats().HitRatio())
	return result, nil
}

func (s *Simulator) run(ctx context.Context, instrument string, weeks int, capital float64) (*models.BacktestResult, error) {
	if instrument == "" {
		return nil, fmt.Errorf("instrument is required")
	}
	if weeks <= 0 {
		return nil, fmt.Errorf("weeks must be positive, got %d", weeks)
	}
	if capital <= 0 || !isFinite(capital) {
		return nil, fmt.Errorf("starting capital must be positive, got %v", capital)
	}

	end := s.now().UTC()
	start := end.Add(-time.Duration(weeks) * week)
	runID := uuid.New()
	s.logger.LogRunStarted(runID.String(), instrument, start, end, weeks, capital)

	fetch := datasource.DateRange{
		Start: start.Add(-time.Duration(s.params.BufferWeeks) * week),
		End:   end,
	}
	if err := s.load(ctx, instrument, fetch); err != nil {
		return nil, err
	}

	portfolio := NewPortfolio(capital)
	history := make([]models.PerformanceRecord, 0, weeks)

	for i, date := 0, start; i < weeks && !date.After(end); i, date = i+1, date.Add(week) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		bar, ok, err := s.cache.LatestAtOrBefore(instrument, date)
		if err != nil {
			return nil, err
		}
		if !ok {
			s.logger.LogPeriodSkipped(instrument, date, "no price on or before date")
			metrics.RecordPeriod(metrics.PeriodSkipped)
			continue
		}

		rec, analysed, err := s.decide(ctx, instrument, date)
		if err != nil {
			return nil, err
		}
		if !analysed {
			metrics.RecordPeriod(metrics.PeriodSkipped)
			history = append(history, snapshotRecord(portfolio, bar.Date, bar.Close, models.HoldRecommendation(), true))
			continue
		}
		metrics.RecordPeriod(metrics.PeriodDecided)

		if trade, executed := portfolio.ExecuteTrade(bar.Date, rec.Action, bar.Close, rec.Confidence); executed {
			metrics.RecordTrade(string(trade.Action))
			s.logger.LogTrade(instrument, trade)
		}
		history = append(history, snapshotRecord(portfolio, bar.Date, bar.Close, rec, false))
	}

	if len(history) == 0 {
		return nil, fmt.Errorf("%w: %s between %s and %s", models.ErrNoPriceData, instrument,
			start.Format(models.DateLayout), end.Format(models.DateLayout))
	}

	last, ok, err := s.cache.LatestAtOrBefore(instrument, end)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s has no close on or before %s", models.ErrNoPriceData, instrument, end.Format(models.DateLayout))
	}

	finalValue := portfolio.TotalValue(last.Close)
	totalReturn := (finalValue - capital) / capital
	benchmark := buyAndHold(capital, history[0].Price, last.Close)

	return &models.BacktestResult{
		RunID:               runID,
		Instrument:          instrument,
		StartDate:           start,
		EndDate:             end,
		WeeksTested:         len(history),
		InitialCapital:      capital,
		FinalPortfolioValue: finalValue,
		FinalCash:           portfolio.Cash(),
		FinalShares:         portfolio.Shares(),
		TotalReturn:         totalReturn,
		Trades:              portfolio.Trades(),
		PerformanceHistory:  history,
		BuyAndHold:          benchmark,
		Alpha:               totalReturn - benchmark.Return,
		CreatedAt:           s.now().UTC(),
	}, nil
}

// load fetches the full history once and caches it. News is optional.
func (s *Simulator) load(ctx context.Context, instrument string, dr datasource.DateRange) error {
	fetchStart := time.Now()
	series, err := s.source.FetchSeries(ctx, instrument, dr)
	metrics.RecordDataFetch(s.source.Name(), "series", time.Since(fetchStart).Seconds())
	if err != nil {
		return fmt.Errorf("failed to load price history for %s: %w", instrument, err)
	}
	if series.IsEmpty() {
		return fmt.Errorf("%w: %s returned no bars", models.ErrNoPriceData, s.source.Name())
	}
	s.cache.Set(instrument, series)

	fetchStart = time.Now()
	news, err := s.source.FetchNews(ctx, instrument, dr)
	metrics.RecordDataFetch(s.source.Name(), "news", time.Since(fetchStart).Seconds())
	if err != nil {
		s.log.WithError(err).WithField("instrument", instrument).Warn("News unavailable, continuing without")
		return nil
	}
	s.cache.SetNews(instrument, news)
	return nil
}

// decide computes the point-in-time analysis for date and consults the
// advisor. analysed is false when there is not enough history to analyse.
func (s *Simulator) decide(ctx context.Context, instrument string, date time.Time) (rec models.Recommendation, analysed bool, err error) {
	slice, err := s.cache.SliceAsOf(instrument, date, s.params.LookbackBars, s.params.MinRequiredBars)
	if err != nil {
		return s.skip(instrument, date, err)
	}
	snapshot, err := s.indicators.Compute(slice)
	if err != nil {
		return s.skip(instrument, date, err)
	}
	profile, err := s.risk.Compute(slice)
	if err != nil {
		return s.skip(instrument, date, err)
	}
	signal := s.signals.Generate(snapshot)

	in := advisor.Context{
		Instrument: instrument,
		AsOf:       date,
		Indicators: snapshot,
		Risk:       profile,
		Signal:     signal,
		News:       s.cache.NewsAsOf(instrument, date, s.params.NewsLookback),
	}

	name := s.advisor.Name()
	callStart := time.Now()
	raw, err := s.advisor.Recommend(ctx, in)
	metrics.RecordAdvisorCall(name, time.Since(callStart).Seconds())
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return models.Recommendation{}, false, ctxErr
		}
		return s.fallback(instrument, date, signal, fallbackError, err), true, nil
	}

	rec, err = advisor.Validate(raw)
	if err != nil {
		return s.fallback(instrument, date, signal, fallbackMalformed, err), true, nil
	}

	metrics.RecordRecommendation(name, string(rec.Action), rec.Confidence)
	s.logger.LogDecision(instrument, date, signal, rec)
	return rec, true, nil
}

func (s *Simulator) skip(instrument string, date time.Time, err error) (models.Recommendation, bool, error) {
	if errors.Is(err, models.ErrInsufficientHistory) || errors.Is(err, models.ErrInsufficientData) {
		s.logger.LogPeriodSkipped(instrument, date, err.Error())
		return models.HoldRecommendation(), false, nil
	}
	return models.Recommendation{}, false, err
}

func (s *Simulator) fallback(instrument string, date time.Time, signal models.Signal, reason string, err error) models.Recommendation {
	name := s.advisor.Name()
	metrics.RecordAdvisorFallback(name, reason)
	s.logger.LogAdvisorFallback(instrument, date, name, reason, err)
	rec := models.HoldRecommendation()
	s.logger.LogDecision(instrument, date, signal, rec)
	return rec
}

func snapshotRecord(p *Portfolio, date time.Time, price float64, rec models.Recommendation, skipped bool) models.PerformanceRecord {
	return models.PerformanceRecord{
		Date:           date,
		Price:          price,
		PortfolioValue: p.TotalValue(price),
		Cash:           p.Cash(),
		Shares:         p.Shares(),
		Action:         rec.Action,
		Confidence:     rec.Confidence,
		Skipped:        skipped,
	}
}

// buyAndHold invests all capital at entry, fractional shares allowed, and
// marks the position at exit.
func buyAndHold(capital, entry, exit float64) models.BuyAndHoldComparison {
	if entry <= 0 {
		return models.BuyAndHoldComparison{EntryPrice: entry, ExitPrice: exit, FinalValue: capital}
	}
	shares := capital / entry
	final := shares * exit
	return models.BuyAndHoldComparison{
		EntryPrice: entry,
		ExitPrice:  exit,
		Shares:     shares,
		FinalValue: final,
		Return:     (final - capital) / capital,
	}
}
