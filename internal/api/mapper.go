package api

import (
	"github.com/flipscout/pricecheck/internal/decision"
	"github.com/flipscout/pricecheck/internal/market"
)

// toCheckPriceResponse converts an AggregateResult to the wire form.
func toCheckPriceResponse(result market.AggregateResult) CheckPriceResponse {
	resp := CheckPriceResponse{
		CheckID: result.CheckID.String(),
		Product: ProductResponse{
			Name:  result.Product.Name,
			Brand: result.Product.Brand,
			Model: result.Product.Model,
		},
		Size:         result.Query.Size,
		Condition:    string(result.Query.Condition),
		Prices:       make(map[string]PlatformPriceDTO, len(result.Prices)),
		BestPlatform: "none",
		ElapsedMs:    result.Elapsed.Milliseconds(),
		CheckedAt:    result.CheckedAt,
	}
	if result.HasBest() {
		resp.BestPlatform = string(result.BestPlatform)
	}

	for platform, price := range result.Prices {
		resp.Prices[string(platform)] = PlatformPriceDTO{
			GrossPrice:   price.GrossPrice,
			FeePct:       price.FeePct,
			ShippingCost: price.ShippingCost,
			NetProceeds:  price.NetProceeds,
			FetchedAt:    price.FetchedAt,
		}
	}

	if len(result.Failures) > 0 {
		resp.Failures = make(map[string]string, len(result.Failures))
		for platform, failure := range result.Failures {
			resp.Failures[string(platform)] = string(failure.Reason)
		}
	}

	resp.Recommendations = make([]RecommendationDTO, 0, len(result.Recommendations))
	for _, rec := range result.Recommendations {
		resp.Recommendations = append(resp.Recommendations, RecommendationDTO{
			Platform:       string(rec.Platform),
			NetProceeds:    rec.NetProceeds,
			ROIMultiplier:  rec.ROIMultiplier,
			MaxBid:         rec.MaxBid,
			ExpectedProfit: rec.ExpectedProfit,
		})
	}

	return resp
}

// toAdvancedAnalysisResponse converts an AdvancedAnalysis to the wire form.
func toAdvancedAnalysisResponse(a decision.AdvancedAnalysis) AdvancedAnalysisResponse {
	resp := AdvancedAnalysisResponse{
		BestPlatform: string(a.BestPlatform),
		BestNetPrice: a.BestNetPrice,
	}

	resp.Platforms = make([]PlatformAnalysisDTO, 0, len(a.Platforms))
	for _, p := range a.Platforms {
		resp.Platforms = append(resp.Platforms, PlatformAnalysisDTO{
			Platform:        string(p.Platform),
			AskPrice:        p.AskPrice,
			FeeAmount:       p.FeeAmount,
			ShippingCost:    p.ShippingCost,
			NetProceeds:     p.NetProceeds,
			TotalCosts:      p.TotalCosts,
			ProfitMarginPct: p.ProfitMarginPct,
		})
	}

	resp.Bidding = make([]BidPlanDTO, 0, len(a.Bidding))
	for _, b := range a.Bidding {
		resp.Bidding = append(resp.Bidding, BidPlanDTO{
			TargetMultiplier: b.TargetMultiplier,
			MaxBid:           b.MaxBid,
			ExpectedProfit:   b.ExpectedProfit,
			ROIPct:           b.ROIPct,
			BreakEvenBid:     b.BreakEvenBid,
		})
	}

	if a.Risk != nil {
		resp.Risk = &RiskAnalysisDTO{
			PriceSpread:     a.Risk.PriceSpread,
			PriceSpreadPct:  a.Risk.PriceSpreadPct,
			Volatility:      a.Risk.Volatility,
			RiskLevel:       a.Risk.RiskLevel,
			ConfidenceScore: a.Risk.ConfidenceScore,
		}
	}

	if a.Comparison != nil {
		ranking := make([]string, 0, len(a.Comparison.Ranking))
		for _, p := range a.Comparison.Ranking {
			ranking = append(ranking, string(p))
		}
		resp.Comparison = &MarketComparisonDTO{
			Ranking:           ranking,
			BestPlatform:      string(a.Comparison.BestPlatform),
			WorstPlatform:     string(a.Comparison.WorstPlatform),
			PriceAdvantage:    a.Comparison.PriceAdvantage,
			PriceAdvantagePct: a.Comparison.PriceAdvantagePct,
			Summary:           a.Comparison.Summary,
		}
	}

	if a.Auction != nil {
		strategies := make([]StrategyPlanDTO, 0, len(a.Auction.Strategies))
		for _, s := range a.Auction.Strategies {
			strategies = append(strategies, StrategyPlanDTO{
				Name:               s.Name,
				TargetMultiplier:   s.TargetMultiplier,
				MaxBid:             s.MaxBid,
				ExpectedProfit:     s.ExpectedProfit,
				Description:        s.Description,
				SuccessProbability: s.SuccessProbability,
			})
		}
		resp.Auction = &AuctionStrategyDTO{
			Strategies:           strategies,
			RecommendedStrategy:  a.Auction.RecommendedStrategy,
			UrgencyNote:          a.Auction.UrgencyNote,
			AuctionTimeRemaining: a.Auction.AuctionTimeRemaining,
		}
	}

	return resp
}

// toQuickBidResponse converts a QuickBidResult to the wire form.
func toQuickBidResponse(r decision.QuickBidResult) QuickBidResponse {
	return QuickBidResponse{
		SellingPrice:    r.SellingPrice,
		FeeAmount:       r.FeeAmount,
		ShippingCost:    r.ShippingCost,
		NetSellingPrice: r.NetSellingPrice,
		MaxBid:          r.MaxBid,
		ExpectedProfit:  r.ExpectedProfit,
		ROIPct:          r.ROIPct,
	}
}
