package aggregator

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/flipscout/pricecheck/internal/market"
	"github.com/flipscout/pricecheck/internal/sources"
)

// stubSource returns a canned quote or error after an optional delay.
type stubSource struct {
	platform market.Platform
	price    string
	err      error
	delay    time.Duration
	never    bool // block until ctx is done, never answer
	panics   bool
	calls    atomic.Int32
}

func (s *stubSource) Platform() market.Platform { return s.platform }

func (s *stubSource) Fetch(ctx context.Context, q market.Query) (market.Quote, error) {
	s.calls.Add(1)
	if s.panics {
		panic("stub blew up")
	}
	if s.never {
		<-ctx.Done()
		return market.Quote{}, ctx.Err()
	}
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return market.Quote{}, ctx.Err()
		}
	}
	if s.err != nil {
		return market.Quote{}, s.err
	}
	return market.Quote{
		Platform:   s.platform,
		GrossPrice: decimal.RequireFromString(s.price),
		FetchedAt:  time.Now().UTC(),
	}, nil
}

func newAggregator(t *testing.T, deadline time.Duration, srcs ...sources.Source) *Aggregator {
	t.Helper()
	agg, err := New(zap.NewNop(), srcs, deadline, 20*time.Millisecond)
	require.NoError(t, err)
	return agg
}

func testQuery() market.Query {
	return market.Query{ProductName: "Jordan 4 Bred", Size: "10.5", Condition: market.ConditionNew}
}

func TestAggregateAllSucceed(t *testing.T) {
	agg := newAggregator(t, time.Second,
		&stubSource{platform: market.PlatformStockX, price: "500"},
		&stubSource{platform: market.PlatformGoat, price: "465"},
		&stubSource{platform: market.PlatformKicksCrew, price: "440"},
	)

	outcomes := agg.Aggregate(context.Background(), testQuery())
	require.Len(t, outcomes, 3)
	for _, p := range []market.Platform{market.PlatformStockX, market.PlatformGoat, market.PlatformKicksCrew} {
		o, ok := outcomes[p]
		require.True(t, ok, "missing outcome for %s", p)
		assert.True(t, o.Available())
	}
	assert.True(t, outcomes[market.PlatformKicksCrew].Quote.GrossPrice.Equal(decimal.RequireFromString("440")))
}

func TestAggregateReturnsWithinDeadline(t *testing.T) {
	deadline := 100 * time.Millisecond
	agg := newAggregator(t, deadline,
		&stubSource{platform: market.PlatformStockX, price: "500"},
		&stubSource{platform: market.PlatformGoat, never: true},
	)

	start := time.Now()
	outcomes := agg.Aggregate(context.Background(), testQuery())
	elapsed := time.Since(start)

	assert.Less(t, elapsed, deadline+150*time.Millisecond,
		"aggregate must not block for a source that never responds")

	require.Len(t, outcomes, 2)
	assert.True(t, outcomes[market.PlatformStockX].Available())
	require.False(t, outcomes[market.PlatformGoat].Available())
	assert.Equal(t, market.ReasonTimeout, outcomes[market.PlatformGoat].Failure.Reason)
}

func TestAggregateStragglerRecordedAsTimeout(t *testing.T) {
	agg := newAggregator(t, 50*time.Millisecond,
		&stubSource{platform: market.PlatformStockX, price: "500", delay: 2 * time.Second},
	)

	outcomes := agg.Aggregate(context.Background(), testQuery())
	require.Len(t, outcomes, 1)
	require.False(t, outcomes[market.PlatformStockX].Available())
	assert.Equal(t, market.ReasonTimeout, outcomes[market.PlatformStockX].Failure.Reason)
}

func TestAggregateClassifiesFailures(t *testing.T) {
	agg := newAggregator(t, time.Second,
		&stubSource{platform: market.PlatformStockX, err: sources.ErrNotFound},
		&stubSource{platform: market.PlatformGoat, err: errors.New("502 from upstream")},
		&stubSource{platform: market.PlatformKicksCrew, price: "440"},
	)

	outcomes := agg.Aggregate(context.Background(), testQuery())
	require.Len(t, outcomes, 3)
	assert.Equal(t, market.ReasonNotFound, outcomes[market.PlatformStockX].Failure.Reason)
	assert.Equal(t, market.ReasonUpstreamError, outcomes[market.PlatformGoat].Failure.Reason)
	assert.True(t, outcomes[market.PlatformKicksCrew].Available())
}

func TestAggregateAllFailIsWellFormed(t *testing.T) {
	agg := newAggregator(t, 50*time.Millisecond,
		&stubSource{platform: market.PlatformStockX, err: errors.New("down")},
		&stubSource{platform: market.PlatformGoat, never: true},
		&stubSource{platform: market.PlatformKicksCrew, err: sources.ErrNotFound},
	)

	outcomes := agg.Aggregate(context.Background(), testQuery())
	require.Len(t, outcomes, 3)
	for p, o := range outcomes {
		assert.False(t, o.Available(), "platform %s should have failed", p)
		require.NotNil(t, o.Failure)
	}
}

func TestAggregateContainsPanics(t *testing.T) {
	agg := newAggregator(t, time.Second,
		&stubSource{platform: market.PlatformStockX, panics: true},
		&stubSource{platform: market.PlatformGoat, price: "465"},
	)

	outcomes := agg.Aggregate(context.Background(), testQuery())
	require.Len(t, outcomes, 2)
	assert.Equal(t, market.ReasonUpstreamError, outcomes[market.PlatformStockX].Failure.Reason)
	assert.True(t, outcomes[market.PlatformGoat].Available())
}

func TestNewRejectsBadConfig(t *testing.T) {
	_, err := New(zap.NewNop(), nil, time.Second, 0)
	assert.Error(t, err)

	dup := []sources.Source{
		&stubSource{platform: market.PlatformStockX},
		&stubSource{platform: market.PlatformStockX},
	}
	_, err = New(zap.NewNop(), dup, time.Second, 0)
	assert.Error(t, err)

	_, err = New(zap.NewNop(), []sources.Source{&stubSource{platform: market.PlatformStockX}}, 0, 0)
	assert.Error(t, err)
}
