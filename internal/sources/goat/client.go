package goat

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/flipscout/pricecheck/internal/httpclient"
	"github.com/flipscout/pricecheck/internal/market"
	"github.com/flipscout/pricecheck/internal/metrics"
	"github.com/flipscout/pricecheck/internal/rate"
	"github.com/flipscout/pricecheck/internal/sources"
)

// GOAT has no public API; the mobile endpoints expect an app user agent.
const mobileUserAgent = "GOAT/19 CFNetwork/1410.0.3 Darwin/22.6.0"

// Client queries GOAT's mobile product-variant endpoints.
type Client struct {
	logger  *zap.Logger
	exec    *httpclient.Executor
	baseURL string
}

// Config holds the GOAT client settings.
type Config struct {
	BaseURL  string
	Timeout  time.Duration
	RetryMax int
}

// NewClient constructs a GOAT source.
func NewClient(logger *zap.Logger, rateMgr *rate.Manager, cfg Config) *Client {
	httpClient := &http.Client{Timeout: cfg.Timeout}
	exec := httpclient.New(logger, rateMgr, httpClient, cfg.RetryMax, "goat", func(status int, body []byte) error {
		if status == http.StatusNotFound {
			return sources.ErrNotFound
		}
		var errResp ErrorResponse
		_ = json.Unmarshal(body, &errResp)
		msg := errResp.Error
		if msg == "" {
			msg = string(body)
		}
		return fmt.Errorf("goat returned %d: %s", status, msg)
	})
	return &Client{
		logger:  logger,
		exec:    exec,
		baseURL: cfg.BaseURL,
	}
}

// Platform implements sources.Source.
func (c *Client) Platform() market.Platform {
	return market.PlatformGoat
}

// Fetch looks up the lowest live ask matching the queried size and condition.
func (c *Client) Fetch(ctx context.Context, q market.Query) (market.Quote, error) {
	start := time.Now()

	params := url.Values{}
	params.Set("search", q.ProductName)

	reqURL := fmt.Sprintf("%s/api/v1/product_variants?%s", c.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return market.Quote{}, err
	}
	req.Header.Set("User-Agent", mobileUserAgent)
	req.Header.Set("Accept", "application/json")

	var resp VariantsResponse
	if err := c.exec.DoJSON(ctx, req, "goat_api", &resp); err != nil {
		return market.Quote{}, err
	}
	metrics.ObserveDuration(metrics.SourceFetchDuration, start, "goat")

	quote, err := mapVariants(&resp, q)
	if err != nil {
		return market.Quote{}, err
	}

	c.logger.Debug("goat.quote_fetched",
		zap.String("product", q.ProductName),
		zap.String("size", q.Size),
		zap.String("lowest_ask", quote.GrossPrice.String()))

	return quote, nil
}
