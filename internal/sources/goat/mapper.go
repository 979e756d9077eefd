package goat

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/flipscout/pricecheck/internal/market"
	"github.com/flipscout/pricecheck/internal/sources"
)

// mapVariants picks the cheapest live ask among variants matching the queried
// size and condition. GOAT reports prices in cents.
func mapVariants(resp *VariantsResponse, q market.Query) (market.Quote, error) {
	if resp == nil || len(resp.Variants) == 0 {
		return market.Quote{}, sources.ErrNotFound
	}

	var bestCents int64
	for _, v := range resp.Variants {
		if v.LowestPriceCents <= 0 {
			continue
		}
		if q.Size != "" && v.Size != q.Size {
			continue
		}
		if !conditionMatches(v.Condition, q.Condition) {
			continue
		}
		if bestCents == 0 || v.LowestPriceCents < bestCents {
			bestCents = v.LowestPriceCents
		}
	}

	if bestCents == 0 {
		return market.Quote{}, sources.ErrNotFound
	}

	return market.Quote{
		Platform:   market.PlatformGoat,
		GrossPrice: decimal.New(bestCents, -2),
		FetchedAt:  time.Now().UTC(),
	}, nil
}

// conditionMatches maps GOAT's shoe-condition vocabulary onto new/used.
func conditionMatches(goatCondition string, want market.Condition) bool {
	c := strings.ToLower(goatCondition)
	switch want {
	case market.ConditionUsed:
		return strings.Contains(c, "used")
	default:
		return strings.HasPrefix(c, "new")
	}
}
