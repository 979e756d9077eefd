package stockx

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

const rapidAPIHost = "stockx-pricing-data-and-market-analytics.p.rapidapi.com"

// Client queries StockX market data through the RapidAPI gateway.
type Client struct {
	logger  *zap.Logger
	exec    *httpclient.Executor
	baseURL string
	apiKey  string
}

// Config holds the StockX client settings.
type Config struct {
	BaseURL  string
	APIKey   string
	Timeout  time.Duration
	RetryMax int
}

// NewClient constructs a StockX source.
func NewClient(logger *zap.Logger, rateMgr *rate.Manager, cfg Config) *Client {
	httpClient := &http.Client{Timeout: cfg.Timeout}
	exec := httpclient.New(logger, rateMgr, httpClient, cfg.RetryMax, "stockx", func(status int, body []byte) error {
		if status == http.StatusNotFound {
			return sources.ErrNotFound
		}
		var errResp ErrorResponse
		_ = json.Unmarshal(body, &errResp)
		msg := errResp.Message
		if msg == "" {
			msg = errResp.Error
		}
		if msg == "" {
			msg = string(body)
		}
		return fmt.Errorf("stockx returned %d: %s", status, msg)
	})
	return &Client{
		logger:  logger,
		exec:    exec,
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
	}
}

// Platform implements sources.Source.
func (c *Client) Platform() market.Platform {
	return market.PlatformStockX
}

// Fetch looks up the lowest ask for the queried product/size.
func (c *Client) Fetch(ctx context.Context, q market.Query) (market.Quote, error) {
	start := time.Now()

	params := url.Values{}
	params.Set("query", q.ProductName)
	if q.Size != "" {
		params.Set("size", q.Size)
	}

	reqURL := fmt.Sprintf("%s/market-data/search?%s", c.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return market.Quote{}, err
	}
	req.Header.Set("X-RapidAPI-Key", c.apiKey)
	req.Header.Set("X-RapidAPI-Host", rapidAPIHost)
	req.Header.Set("Accept", "application/json")

	var resp SearchResponse
	if err := c.exec.DoJSON(ctx, req, "stockx_api", &resp); err != nil {
		return market.Quote{}, err
	}
	metrics.ObserveDuration(metrics.SourceFetchDuration, start, "stockx")

	quote, err := mapSearchResponse(&resp)
	if err != nil {
		return market.Quote{}, err
	}

	c.logger.Debug("stockx.quote_fetched",
		zap.String("product", q.ProductName),
		zap.String("size", q.Size),
		zap.String("lowest_ask", quote.GrossPrice.String()))

	return quote, nil
}
