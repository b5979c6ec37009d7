package advisor

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/yourusername/advisor-backtest/internal/models"
)

// CachedAdvisor memoises answers per advisor, instrument, as-of date and
// analysis inputs, so overlapping scheduled runs do not ask a remote advisor
// the same question twice. Runs whose engine parameters produce different
// indicators, risk or signal on the same date get separate entries.
// Only successful answers are cached.
type CachedAdvisor struct {
	next  Advisor
	cache *gocache.Cache
	ttl   time.Duration

	mu        sync.Mutex
	hitCount  uint64
	missCount uint64
}

// NewCachedAdvisor wraps next with a cache whose entries live for ttl.
func NewCachedAdvisor(next Advisor, ttl time.Duration) *CachedAdvisor {
	return &CachedAdvisor{
		next:  next,
		cache: gocache.New(ttl, ttl*2),
		ttl:   ttl,
	}
}

// Name returns the wrapped advisor's name.
func (c *CachedAdvisor) Name() string {
	return c.next.Name()
}

func (c *CachedAdvisor) key(in Context) string {
	h := fnv.New64a()
	fmt.Fprintf(h, "%v|%v|%v|%v", in.Indicators, in.Risk, in.Signal, in.News)
	return fmt.Sprintf("%s:%s:%s:%x", c.next.Name(), strings.ToUpper(in.Instrument),
		in.AsOf.UTC().Format(models.DateLayout), h.Sum64())
}

// Recommend returns the cached answer for the context's date or asks the wrapped advisor.
func (c *CachedAdvisor) Recommend(ctx context.Context, in Context) (RawRecommendation, error) {
	key := c.key(in)
	if value, found := c.cache.Get(key); found {
		c.record(true)
		return value.(RawRecommendation), nil
	}
	c.record(false)

	raw, err := c.next.Recommend(ctx, in)
	if err != nil {
		return RawRecommendation{}, err
	}
	c.cache.Set(key, raw, c.ttl)
	return raw, nil
}

// Stats returns cache statistics
func (c *CachedAdvisor) Stats() (hits, misses uint64, ratio float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	hits = c.hitCount
	misses = c.missCount
	if total := hits + misses; total > 0 {
		ratio = float64(hits) / float64(total)
	}
	return
}

func (c *CachedAdvisor) record(hit bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if hit {
		c.hitCount++
	} else {
		c.missCount++
	}
}
