package stockx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/flipscout/pricecheck/internal/market"
	"github.com/flipscout/pricecheck/internal/sources"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(zap.NewNop(), nil, Config{
		BaseURL:  srv.URL,
		APIKey:   "test-key",
		Timeout:  2 * time.Second,
		RetryMax: 0,
	})
}

func TestFetchSuccess(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("X-RapidAPI-Key"))
		assert.Equal(t, "Jordan 4 Bred", r.URL.Query().Get("query"))
		assert.Equal(t, "10.5", r.URL.Query().Get("size"))
		_, _ = w.Write([]byte(`{
			"count": 1,
			"products": [{"id": "px-1", "title": "Jordan 4 Retro Bred", "market": {"lowestAsk": 450.0}}]
		}`))
	})

	quote, err := client.Fetch(context.Background(), market.Query{
		ProductName: "Jordan 4 Bred",
		Size:        "10.5",
		Condition:   market.ConditionNew,
	})
	require.NoError(t, err)
	assert.Equal(t, market.PlatformStockX, quote.Platform)
	assert.True(t, quote.GrossPrice.Equal(decimal.NewFromInt(450)))
	assert.False(t, quote.FetchedAt.IsZero())
}

func TestFetchNotFound(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"404 status", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"no results"}`))
		}},
		{"empty product list", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"count":0,"products":[]}`))
		}},
		{"zero ask", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"count":1,"products":[{"id":"px-1","market":{"lowestAsk":0}}]}`))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, tt.handler)
			_, err := client.Fetch(context.Background(), market.Query{ProductName: "x", Condition: market.ConditionNew})
			assert.ErrorIs(t, err, sources.ErrNotFound)
		})
	}
}

func TestFetchUpstreamError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message":"invalid api key"}`))
	})

	_, err := client.Fetch(context.Background(), market.Query{ProductName: "x", Condition: market.ConditionNew})
	require.Error(t, err)
	assert.NotErrorIs(t, err, sources.ErrNotFound)
	assert.Contains(t, err.Error(), "invalid api key")
}

func TestFetchHonorsContextDeadline(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		_, _ = w.Write([]byte(`{}`))
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Fetch(ctx, market.Query{ProductName: "x", Condition: market.ConditionNew})
	require.Error(t, err)
	assert.Equal(t, market.ReasonTimeout, sources.Classify(err))
}
