package stockx

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/flipscout/pricecheck/internal/market"
	"github.com/flipscout/pricecheck/internal/sources"
)

// mapSearchResponse converts a StockX search response into a canonical quote.
// The first product hit is the best match; a hit without a live ask counts as
// not found rather than a zero-price quote.
func mapSearchResponse(resp *SearchResponse) (market.Quote, error) {
	if resp == nil || len(resp.Products) == 0 {
		return market.Quote{}, sources.ErrNotFound
	}

	best := resp.Products[0]
	if best.Market.LowestAsk <= 0 {
		return market.Quote{}, sources.ErrNotFound
	}

	return market.Quote{
		Platform:   market.PlatformStockX,
		GrossPrice: decimal.NewFromFloat(best.Market.LowestAsk),
		FetchedAt:  time.Now().UTC(),
	}, nil
}
