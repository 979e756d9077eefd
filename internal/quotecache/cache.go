package quotecache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/flipscout/pricecheck/internal/market"
	"github.com/flipscout/pricecheck/internal/metrics"
	"github.com/flipscout/pricecheck/internal/sources"
)

// entry is the serialized form of a cached quote.
type entry struct {
	GrossPrice string    `json:"gross_price"`
	FetchedAt  time.Time `json:"fetched_at"`
}

// Cached decorates a Source with a short-TTL Redis cache plus singleflight
// dedup, so a burst of identical lookups costs one upstream call. Failures
// are never cached; only real quotes are. A Redis outage degrades to
// pass-through, it never fails a lookup.
type Cached struct {
	src    sources.Source
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
	group  singleflight.Group
}

// Wrap returns src decorated with caching. If rdb is nil, src is returned
// unchanged.
func Wrap(src sources.Source, rdb *redis.Client, ttl time.Duration, logger *zap.Logger) sources.Source {
	if rdb == nil {
		return src
	}
	return &Cached{
		src:    src,
		rdb:    rdb,
		ttl:    ttl,
		logger: logger,
	}
}

// Platform implements sources.Source.
func (c *Cached) Platform() market.Platform {
	return c.src.Platform()
}

// Fetch serves from cache when possible, otherwise fetches upstream once per
// key and stores the result.
func (c *Cached) Fetch(ctx context.Context, q market.Query) (market.Quote, error) {
	key := "quote:" + string(c.src.Platform()) + ":" + q.CacheKey()

	if quote, ok := c.lookup(ctx, key); ok {
		metrics.IncCacheAccess("hit")
		return quote, nil
	}
	metrics.IncCacheAccess("miss")

	v, err, _ := c.group.Do(key, func() (any, error) {
		quote, err := c.src.Fetch(ctx, q)
		if err != nil {
			return market.Quote{}, err
		}
		c.store(ctx, key, quote)
		return quote, nil
	})
	if err != nil {
		return market.Quote{}, err
	}
	return v.(market.Quote), nil
}

func (c *Cached) lookup(ctx context.Context, key string) (market.Quote, bool) {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Debug("quotecache.get_failed", zap.String("key", key), zap.Error(err))
		}
		return market.Quote{}, false
	}

	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return market.Quote{}, false
	}
	gross, err := decimal.NewFromString(e.GrossPrice)
	if err != nil {
		return market.Quote{}, false
	}

	return market.Quote{
		Platform:   c.src.Platform(),
		GrossPrice: gross,
		FetchedAt:  e.FetchedAt,
	}, true
}

func (c *Cached) store(ctx context.Context, key string, quote market.Quote) {
	raw, err := json.Marshal(entry{
		GrossPrice: quote.GrossPrice.String(),
		FetchedAt:  quote.FetchedAt,
	})
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.Debug("quotecache.set_failed", zap.String("key", key), zap.Error(err))
	}
}
