// Package cache provides point-in-time access to cached market data.
package cache

import (
	"sort"
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/yourusername/advisor-backtest/internal/models"
)

const (
	// DefaultLookbackBars is the trailing window handed to the analysis engines.
	DefaultLookbackBars = 180
	// DefaultMinRequiredBars is the smallest window that yields stable indicators.
	DefaultMinRequiredBars = 50

	seriesKeyPrefix = "series:"
	newsKeyPrefix   = "news:"
)

// Stats reports cache usage.
type Stats struct {
	Instruments int
	Hits        uint64
	Misses      uint64
}

// HitRatio returns hits / (hits + misses), or 0 before any lookup.
func (s Stats) HitRatio() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// PointInTimeCache stores one full history per instrument and only ever hands
// out bars and articles dated strictly before the requested simulation date.
type PointInTimeCache struct {
	store *gocache.Cache

	mu        sync.Mutex
	hitCount  uint64
	missCount uint64
}

// NewPointInTimeCache creates an empty cache. Entries never expire; the cache
// lives exactly as long as the run that owns it.
func NewPointInTimeCache() *PointInTimeCache {
	return &PointInTimeCache{
		store: gocache.New(gocache.NoExpiration, 0),
	}
}

func normalizeInstrument(instrument string) string {
	return strings.ToUpper(strings.TrimSpace(instrument))
}

// Set stores or replaces the full series for an instrument.
func (c *PointInTimeCache) Set(instrument string, series models.PriceSeries) {
	c.store.Set(seriesKeyPrefix+normalizeInstrument(instrument), series, gocache.NoExpiration)
}

// Series returns the full cached series for an instrument.
func (c *PointInTimeCache) Series(instrument string) (models.PriceSeries, error) {
	value, found := c.store.Get(seriesKeyPrefix + normalizeInstrument(instrument))
	c.record(found)
	if !found {
		return models.PriceSeries{}, &models.UnknownInstrumentError{Instrument: instrument}
	}
	return value.(models.PriceSeries), nil
}

// SliceAsOf returns the trailing lookbackBars bars dated strictly before asOf.
// A non-positive lookbackBars returns every qualifying bar. Fewer than
// minRequiredBars qualifying bars is an InsufficientHistoryError.
func (c *PointInTimeCache) SliceAsOf(instrument string, asOf time.Time, lookbackBars, minRequiredBars int) (models.PriceSeries, error) {
	series, err := c.Series(instrument)
	if err != nil {
		return models.PriceSeries{}, err
	}

	required := minRequiredBars
	if required < 1 {
		required = 1
	}

	available := series.IndexBefore(asOf)
	if available < required {
		return models.PriceSeries{}, &models.InsufficientHistoryError{
			Instrument: instrument,
			AsOf:       asOf,
			Available:  available,
			Required:   required,
		}
	}

	from := 0
	if lookbackBars > 0 && available > lookbackBars {
		from = available - lookbackBars
	}
	return series.View(from, available), nil
}

// LatestAtOrBefore returns the most recent bar dated on or before t.
// The boolean is false when no such bar exists.
func (c *PointInTimeCache) LatestAtOrBefore(instrument string, t time.Time) (models.PriceBar, bool, error) {
	series, err := c.Series(instrument)
	if err != nil {
		return models.PriceBar{}, false, err
	}

	i := series.IndexAtOrBefore(t)
	if i < 0 {
		return models.PriceBar{}, false, nil
	}
	return series.At(i), true, nil
}

// SetNews stores the articles known for an instrument, replacing earlier ones.
func (c *PointInTimeCache) SetNews(instrument string, articles []models.NewsArticle) {
	owned := make([]models.NewsArticle, len(articles))
	copy(owned, articles)
	sort.SliceStable(owned, func(i, j int) bool {
		return owned[i].PublishedAt.Before(owned[j].PublishedAt)
	})
	c.store.Set(newsKeyPrefix+normalizeInstrument(instrument), owned, gocache.NoExpiration)
}

// NewsAsOf returns the articles published in [asOf-lookback, asOf).
// An instrument without cached news yields an empty result.
func (c *PointInTimeCache) NewsAsOf(instrument string, asOf time.Time, lookback time.Duration) []models.NewsArticle {
	value, found := c.store.Get(newsKeyPrefix + normalizeInstrument(instrument))
	c.record(found)
	if !found {
		return nil
	}

	articles := value.([]models.NewsArticle)
	from := asOf.Add(-lookback)
	end := sort.Search(len(articles), func(i int) bool {
		return !articles[i].PublishedAt.Before(asOf)
	})
	start := sort.Search(end, func(i int) bool {
		return !articles[i].PublishedAt.Before(from)
	})

	out := make([]models.NewsArticle, end-start)
	copy(out, articles[start:end])
	return out
}

// Instruments returns the instruments that have a cached series.
func (c *PointInTimeCache) Instruments() []string {
	var out []string
	for key := range c.store.Items() {
		if strings.HasPrefix(key, seriesKeyPrefix) {
			out = append(out, strings.TrimPrefix(key, seriesKeyPrefix))
		}
	}
	sort.Strings(out)
	return out
}

// Stats returns cache statistics
func (c *PointInTimeCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Instruments: len(c.Instruments()),
		Hits:        c.hitCount,
		Misses:      c.missCount,
	}
}

// Clear flushes the entire cache
func (c *PointInTimeCache) Clear() {
	c.store.Flush()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hitCount = 0
	c.missCount = 0
}

func (c *PointInTimeCache) record(hit bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if hit {
		c.hitCount++
	} else {
		c.missCount++
	}
}
