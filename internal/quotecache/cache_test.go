package quotecache

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/flipscout/pricecheck/internal/market"
	"github.com/flipscout/pricecheck/internal/sources"
)

type fakeSource struct {
	calls atomic.Int32
	quote market.Quote
	err   error
}

func (f *fakeSource) Platform() market.Platform { return market.PlatformStockX }

func (f *fakeSource) Fetch(ctx context.Context, q market.Query) (market.Quote, error) {
	f.calls.Add(1)
	if f.err != nil {
		return market.Quote{}, f.err
	}
	return f.quote, nil
}

func newTestCache(t *testing.T, src sources.Source, ttl time.Duration) (sources.Source, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return Wrap(src, rdb, ttl, zap.NewNop()), mr
}

func testQuery() market.Query {
	return market.Query{ProductName: "Jordan 4 Bred", Size: "10.5", Condition: market.ConditionNew}
}

func TestFetchCachesQuotes(t *testing.T) {
	src := &fakeSource{quote: market.Quote{
		Platform:   market.PlatformStockX,
		GrossPrice: decimal.RequireFromString("450"),
		FetchedAt:  time.Now().UTC().Truncate(time.Second),
	}}
	cached, _ := newTestCache(t, src, time.Minute)

	first, err := cached.Fetch(context.Background(), testQuery())
	require.NoError(t, err)

	second, err := cached.Fetch(context.Background(), testQuery())
	require.NoError(t, err)

	assert.Equal(t, int32(1), src.calls.Load(), "second fetch must be served from cache")
	assert.True(t, first.GrossPrice.Equal(second.GrossPrice))
	assert.Equal(t, market.PlatformStockX, second.Platform)
}

func TestFetchExpiryRefetches(t *testing.T) {
	src := &fakeSource{quote: market.Quote{
		Platform:   market.PlatformStockX,
		GrossPrice: decimal.RequireFromString("450"),
		FetchedAt:  time.Now().UTC(),
	}}
	cached, mr := newTestCache(t, src, 10*time.Second)

	_, err := cached.Fetch(context.Background(), testQuery())
	require.NoError(t, err)

	mr.FastForward(11 * time.Second)

	_, err = cached.Fetch(context.Background(), testQuery())
	require.NoError(t, err)
	assert.Equal(t, int32(2), src.calls.Load())
}

func TestFetchDoesNotCacheFailures(t *testing.T) {
	src := &fakeSource{err: errors.New("upstream down")}
	cached, _ := newTestCache(t, src, time.Minute)

	_, err := cached.Fetch(context.Background(), testQuery())
	require.Error(t, err)

	_, err = cached.Fetch(context.Background(), testQuery())
	require.Error(t, err)
	assert.Equal(t, int32(2), src.calls.Load(), "failures must not be cached")
}

func TestWrapNilRedisPassesThrough(t *testing.T) {
	src := &fakeSource{}
	assert.Same(t, sources.Source(src), Wrap(src, nil, time.Minute, zap.NewNop()))
}

func TestFetchDistinctQueriesMiss(t *testing.T) {
	src := &fakeSource{quote: market.Quote{
		Platform:   market.PlatformStockX,
		GrossPrice: decimal.RequireFromString("450"),
		FetchedAt:  time.Now().UTC(),
	}}
	cached, _ := newTestCache(t, src, time.Minute)

	_, err := cached.Fetch(context.Background(), testQuery())
	require.NoError(t, err)

	other := testQuery()
	other.Size = "11"
	_, err = cached.Fetch(context.Background(), other)
	require.NoError(t, err)

	assert.Equal(t, int32(2), src.calls.Load())
}
