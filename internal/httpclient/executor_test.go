package httpclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type payload struct {
	Value string `json:"value"`
}

func newRequest(t *testing.T, ctx context.Context, url string) *http.Request {
	t.Helper()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	require.NoError(t, err)
	return req
}

func TestDoJSONSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"value":"ok"}`))
	}))
	defer srv.Close()

	exec := New(zap.NewNop(), nil, srv.Client(), 2, "test", nil)

	var out payload
	err := exec.DoJSON(context.Background(), newRequest(t, context.Background(), srv.URL), "test", &out)
	require.NoError(t, err)
	assert.Equal(t, "ok", out.Value)
}

func TestDoJSONRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"value":"eventually"}`))
	}))
	defer srv.Close()

	exec := New(zap.NewNop(), nil, srv.Client(), 2, "test", nil)

	var out payload
	err := exec.DoJSON(context.Background(), newRequest(t, context.Background(), srv.URL), "test", &out)
	require.NoError(t, err)
	assert.Equal(t, "eventually", out.Value)
	assert.Equal(t, int32(3), calls.Load())
}

func TestDoJSONClientErrorUsesHandler(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"no such product"}`))
	}))
	defer srv.Close()

	sentinel := errors.New("mapped")
	exec := New(zap.NewNop(), nil, srv.Client(), 2, "test", func(status int, body []byte) error {
		assert.Equal(t, http.StatusNotFound, status)
		return sentinel
	})

	err := exec.DoJSON(context.Background(), newRequest(t, context.Background(), srv.URL), "test", nil)
	assert.ErrorIs(t, err, sentinel)
}

func TestDoJSONRetrySleepRespectsDeadline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	exec := New(zap.NewNop(), nil, srv.Client(), 10, "test", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := exec.DoJSON(ctx, newRequest(t, ctx, srv.URL), "test", nil)
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.Less(t, elapsed, 500*time.Millisecond, "retry loop must not outlive the context deadline")
}

func TestDoJSONDecodeFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	exec := New(zap.NewNop(), nil, srv.Client(), 0, "test", nil)

	var out payload
	err := exec.DoJSON(context.Background(), newRequest(t, context.Background(), srv.URL), "test", &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode failed")
}
