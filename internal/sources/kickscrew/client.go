package kickscrew

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/flipscout/pricecheck/internal/httpclient"
	"github.com/flipscout/pricecheck/internal/market"
	"github.com/flipscout/pricecheck/internal/metrics"
	"github.com/flipscout/pricecheck/internal/rate"
	"github.com/flipscout/pricecheck/internal/sources"
)

const rapidAPIHost = "kickscrew-sneakers-data.p.rapidapi.com"

// Client queries KicksCrew listings through the RapidAPI gateway.
// KicksCrew only lists new pairs; used-condition queries come back not found.
type Client struct {
	logger  *zap.Logger
	exec    *httpclient.Executor
	baseURL string
	apiKey  string
}

// Config holds the KicksCrew client settings.
type Config struct {
	BaseURL  string
	APIKey   string
	Timeout  time.Duration
	RetryMax int
}

// NewClient constructs a KicksCrew source.
func NewClient(logger *zap.Logger, rateMgr *rate.Manager, cfg Config) *Client {
	httpClient := &http.Client{Timeout: cfg.Timeout}
	exec := httpclient.New(logger, rateMgr, httpClient, cfg.RetryMax, "kickscrew", func(status int, body []byte) error {
		if status == http.StatusNotFound {
			return sources.ErrNotFound
		}
		var errResp ErrorResponse
		_ = json.Unmarshal(body, &errResp)
		msg := errResp.Message
		if msg == "" {
			msg = string(body)
		}
		return fmt.Errorf("kickscrew returned %d: %s", status, msg)
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
	return market.PlatformKicksCrew
}

// Fetch looks up the lowest in-stock price for the queried product/size.
func (c *Client) Fetch(ctx context.Context, q market.Query) (market.Quote, error) {
	if q.Condition == market.ConditionUsed {
		return market.Quote{}, sources.ErrNotFound
	}

	start := time.Now()

	params := url.Values{}
	params.Set("name", q.ProductName)
	if q.Size != "" {
		params.Set("size", q.Size)
	}

	reqURL := fmt.Sprintf("%s/product/bestprice?%s", c.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return market.Quote{}, err
	}
	req.Header.Set("X-RapidAPI-Key", c.apiKey)
	req.Header.Set("X-RapidAPI-Host", rapidAPIHost)
	req.Header.Set("Accept", "application/json")

	var resp BestPriceResponse
	if err := c.exec.DoJSON(ctx, req, "kickscrew_api", &resp); err != nil {
		return market.Quote{}, err
	}
	metrics.ObserveDuration(metrics.SourceFetchDuration, start, "kickscrew")

	if !resp.InStock || resp.LowestPrice <= 0 {
		return market.Quote{}, sources.ErrNotFound
	}

	quote := market.Quote{
		Platform:   market.PlatformKicksCrew,
		GrossPrice: decimal.NewFromFloat(resp.LowestPrice),
		FetchedAt:  time.Now().UTC(),
	}

	c.logger.Debug("kickscrew.quote_fetched",
		zap.String("product", q.ProductName),
		zap.String("size", q.Size),
		zap.String("lowest_price", quote.GrossPrice.String()))

	return quote, nil
}
