package rate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiterAllowBurst(t *testing.T) {
	lim := New(Config{RequestsPerSecond: 1, Burst: 3})

	assert.True(t, lim.Allow())
	assert.True(t, lim.Allow())
	assert.True(t, lim.Allow())
	assert.False(t, lim.Allow(), "bucket should be drained after burst")
}

func TestLimiterRefills(t *testing.T) {
	lim := New(Config{RequestsPerSecond: 100, Burst: 1})

	require.True(t, lim.Allow())
	require.False(t, lim.Allow())

	time.Sleep(30 * time.Millisecond)
	assert.True(t, lim.Allow(), "tokens should refill over time")
}

func TestLimiterWaitHonorsContext(t *testing.T) {
	lim := New(Config{RequestsPerSecond: 1, Burst: 1})
	require.True(t, lim.Allow()) // drain

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	err := lim.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestManagerIsolatesKeys(t *testing.T) {
	mgr := NewManager(Config{RequestsPerSecond: 1, Burst: 1})

	assert.True(t, mgr.GetLimiter("stockx").Allow())
	assert.False(t, mgr.GetLimiter("stockx").Allow())
	assert.True(t, mgr.GetLimiter("goat").Allow(), "keys must not share buckets")

	// Same key returns the same limiter.
	assert.Same(t, mgr.GetLimiter("goat"), mgr.GetLimiter("goat"))
}
