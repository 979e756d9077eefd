package decision

import (
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/flipscout/pricecheck/internal/fees"
	"github.com/flipscout/pricecheck/internal/market"
)

// Engine turns a collected set of per-platform outcomes into net proceeds,
// a best-platform pick, and max-bid recommendations. It is pure computation
// over already-collected data; nothing here blocks.
type Engine struct {
	logger *zap.Logger
	fees   *fees.Registry
}

// NewEngine constructs a Decision Engine over an immutable fee registry.
func NewEngine(logger *zap.Logger, registry *fees.Registry) *Engine {
	return &Engine{logger: logger, fees: registry}
}

// Decide applies the fee schedule to every quote, picks the platform with the
// highest net proceeds (ties resolve to the registry's priority order), and
// derives one Recommendation per ROI target for the best platform only.
//
// Zero quotes is a valid input: the result then has no best platform and no
// recommendations, which is distinct from a zero-price quote.
func (e *Engine) Decide(outcomes map[market.Platform]market.Outcome, roiTargets []decimal.Decimal) market.AggregateResult {
	result := market.AggregateResult{
		Prices:   make(map[market.Platform]market.PlatformPrice, len(outcomes)),
		Failures: make(map[market.Platform]market.Failure),
	}

	var bestNet decimal.Decimal
	for _, p := range e.fees.Platforms() {
		outcome, ok := outcomes[p]
		if !ok {
			// The aggregator emits one outcome per platform; a hole here is a
			// wiring bug, surfaced as an upstream failure rather than dropped.
			e.logger.Error("decision.missing_outcome", zap.String("platform", string(p)))
			result.Failures[p] = market.Failure{Platform: p, Reason: market.ReasonUpstreamError}
			continue
		}

		if !outcome.Available() {
			result.Failures[p] = *outcome.Failure
			continue
		}

		model, ok := e.fees.Lookup(p)
		if !ok {
			e.logger.Error("decision.missing_fee_model", zap.String("platform", string(p)))
			result.Failures[p] = market.Failure{Platform: p, Reason: market.ReasonUpstreamError}
			continue
		}

		quote := *outcome.Quote
		net := model.NetProceeds(quote.GrossPrice)
		result.Prices[p] = market.PlatformPrice{
			Platform:     p,
			GrossPrice:   quote.GrossPrice,
			FeePct:       model.SellerFeePct,
			ShippingCost: model.ShippingCost,
			NetProceeds:  net,
			FetchedAt:    quote.FetchedAt,
		}

		// Strict greater-than keeps the earlier (higher-priority) platform on ties.
		if result.BestPlatform == "" || net.GreaterThan(bestNet) {
			result.BestPlatform = p
			bestNet = net
		}
	}

	if result.BestPlatform != "" {
		result.Recommendations = recommend(result.BestPlatform, bestNet, roiTargets)
	}

	return result
}

// recommend derives max-bid/expected-profit pairs for each ROI target.
// max_bid is rounded to the minor currency unit; expected_profit is the exact
// remainder so the two always sum back to net proceeds.
func recommend(platform market.Platform, net decimal.Decimal, roiTargets []decimal.Decimal) []market.Recommendation {
	recs := make([]market.Recommendation, 0, len(roiTargets))
	for _, roi := range roiTargets {
		maxBid := net.DivRound(roi, 2)
		recs = append(recs, market.Recommendation{
			Platform:       platform,
			NetProceeds:    net,
			ROIMultiplier:  roi,
			MaxBid:         maxBid,
			ExpectedProfit: net.Sub(maxBid),
		})
	}
	return recs
}
