package decision

import (
	"fmt"
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/flipscout/pricecheck/internal/market"
)

var (
	hundred = decimal.NewFromInt(100)
	one     = decimal.NewFromInt(1)
)

// PlatformAnalysis is the detailed cost breakdown for one platform.
type PlatformAnalysis struct {
	Platform        market.Platform
	AskPrice        decimal.Decimal
	FeeAmount       decimal.Decimal
	ShippingCost    decimal.Decimal
	NetProceeds     decimal.Decimal
	TotalCosts      decimal.Decimal
	ProfitMarginPct decimal.Decimal
}

// BidPlan is one row of bidding guidance for a custom ROI target.
type BidPlan struct {
	TargetMultiplier decimal.Decimal
	MaxBid           decimal.Decimal
	ExpectedProfit   decimal.Decimal
	ROIPct           decimal.Decimal
	BreakEvenBid     decimal.Decimal
}

// RiskAnalysis quantifies how much the platforms disagree on net proceeds.
type RiskAnalysis struct {
	PriceSpread     decimal.Decimal
	PriceSpreadPct  decimal.Decimal
	Volatility      decimal.Decimal
	RiskLevel       string // Low | Medium | High
	ConfidenceScore decimal.Decimal
}

// MarketComparison ranks the platforms and measures the edge of the best one.
type MarketComparison struct {
	Ranking           []market.Platform
	BestPlatform      market.Platform
	WorstPlatform     market.Platform
	PriceAdvantage    decimal.Decimal
	PriceAdvantagePct decimal.Decimal
	Summary           string
}

// StrategyPlan is one named auction bidding strategy.
type StrategyPlan struct {
	Name               string
	TargetMultiplier   decimal.Decimal
	MaxBid             decimal.Decimal
	ExpectedProfit     decimal.Decimal
	Description        string
	SuccessProbability decimal.Decimal
}

// AuctionStrategy bundles the strategy plans with a time-based pick.
type AuctionStrategy struct {
	Strategies           []StrategyPlan
	RecommendedStrategy  string
	UrgencyNote          string
	AuctionTimeRemaining int // minutes
}

// AdvancedAnalysis is the full detailed-margin report.
type AdvancedAnalysis struct {
	Platforms    []PlatformAnalysis
	BestPlatform market.Platform
	BestNetPrice decimal.Decimal
	Bidding      []BidPlan
	Risk         *RiskAnalysis // nil when fewer than two platforms priced
	Comparison   *MarketComparison
	Auction      *AuctionStrategy
}

// Analyze builds a detailed margin report from per-platform gross prices.
// Fee schedules come from the engine's registry, never from the caller.
// At least one platform with a known fee model is required.
func (e *Engine) Analyze(gross map[market.Platform]decimal.Decimal, targets []decimal.Decimal, auctionMinutes int) (AdvancedAnalysis, error) {
	var analysis AdvancedAnalysis

	var bestNet decimal.Decimal
	for _, p := range e.fees.Platforms() {
		ask, ok := gross[p]
		if !ok {
			continue
		}
		model, _ := e.fees.Lookup(p)

		feeAmount := ask.Mul(model.SellerFeePct)
		net := model.NetProceeds(ask)

		marginPct := decimal.Zero
		if ask.IsPositive() {
			marginPct = net.Div(ask).Mul(hundred).Round(2)
		}

		analysis.Platforms = append(analysis.Platforms, PlatformAnalysis{
			Platform:        p,
			AskPrice:        ask,
			FeeAmount:       feeAmount.Round(2),
			ShippingCost:    model.ShippingCost,
			NetProceeds:     net,
			TotalCosts:      feeAmount.Add(model.ShippingCost).Round(2),
			ProfitMarginPct: marginPct,
		})

		if analysis.BestPlatform == "" || net.GreaterThan(bestNet) {
			analysis.BestPlatform = p
			bestNet = net
		}
	}

	if len(analysis.Platforms) == 0 {
		return AdvancedAnalysis{}, fmt.Errorf("no prices matched a registered platform")
	}

	analysis.BestNetPrice = bestNet
	analysis.Bidding = bidPlans(bestNet, targets)
	analysis.Risk = riskAnalysis(analysis.Platforms)
	analysis.Comparison = compare(analysis.Platforms)
	analysis.Auction = auctionStrategy(bestNet, auctionMinutes)

	return analysis, nil
}

// bidPlans derives one BidPlan per ROI target against the best net price.
func bidPlans(net decimal.Decimal, targets []decimal.Decimal) []BidPlan {
	plans := make([]BidPlan, 0, len(targets))
	for _, target := range targets {
		maxBid := net.DivRound(target, 2)
		profit := net.Sub(maxBid)

		roiPct := decimal.Zero
		if maxBid.IsPositive() {
			roiPct = profit.Div(maxBid).Mul(hundred).Round(2)
		}

		plans = append(plans, BidPlan{
			TargetMultiplier: target,
			MaxBid:           maxBid,
			ExpectedProfit:   profit,
			ROIPct:           roiPct,
			BreakEvenBid:     net.Round(2),
		})
	}
	return plans
}

// riskAnalysis reports net-price dispersion across platforms.
// Returns nil when fewer than two platforms are priced.
func riskAnalysis(platforms []PlatformAnalysis) *RiskAnalysis {
	if len(platforms) < 2 {
		return nil
	}

	nets := make([]decimal.Decimal, len(platforms))
	sum := decimal.Zero
	for i, p := range platforms {
		nets[i] = p.NetProceeds
		sum = sum.Add(p.NetProceeds)
	}
	mean := sum.Div(decimal.NewFromInt(int64(len(nets))))

	variance := 0.0
	minNet, maxNet := nets[0], nets[0]
	for _, n := range nets {
		d, _ := n.Sub(mean).Float64()
		variance += d * d
		if n.LessThan(minNet) {
			minNet = n
		}
		if n.GreaterThan(maxNet) {
			maxNet = n
		}
	}
	variance /= float64(len(nets))
	volatility := decimal.NewFromFloat(math.Sqrt(variance)).Round(2)

	spread := maxNet.Sub(minNet)
	spreadPct := decimal.Zero
	if mean.IsPositive() {
		spreadPct = spread.Div(mean).Mul(hundred).Round(2)
	}

	level := "High"
	switch {
	case spreadPct.LessThan(decimal.NewFromInt(5)):
		level = "Low"
	case spreadPct.LessThan(decimal.NewFromInt(15)):
		level = "Medium"
	}

	confidence := hundred.Sub(spreadPct)
	if confidence.IsNegative() {
		confidence = decimal.Zero
	}

	return &RiskAnalysis{
		PriceSpread:     spread.Round(2),
		PriceSpreadPct:  spreadPct,
		Volatility:      volatility,
		RiskLevel:       level,
		ConfidenceScore: confidence,
	}
}

// compare ranks platforms by net proceeds, best first.
func compare(platforms []PlatformAnalysis) *MarketComparison {
	ranked := make([]PlatformAnalysis, len(platforms))
	copy(ranked, platforms)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].NetProceeds.GreaterThan(ranked[j].NetProceeds)
	})

	ranking := make([]market.Platform, len(ranked))
	for i, p := range ranked {
		ranking[i] = p.Platform
	}

	best := ranked[0]
	worst := ranked[len(ranked)-1]
	advantage := best.NetProceeds.Sub(worst.NetProceeds)

	advantagePct := decimal.Zero
	if worst.NetProceeds.IsPositive() {
		advantagePct = advantage.Div(worst.NetProceeds).Mul(hundred).Round(2)
	}

	return &MarketComparison{
		Ranking:           ranking,
		BestPlatform:      best.Platform,
		WorstPlatform:     worst.Platform,
		PriceAdvantage:    advantage.Round(2),
		PriceAdvantagePct: advantagePct,
		Summary:           fmt.Sprintf("Sell on %s for $%s more profit", best.Platform, advantage.Round(2)),
	}
}

// auctionStrategy builds the three canned bid plans and recommends one based
// on how many minutes remain in the auction.
func auctionStrategy(net decimal.Decimal, minutesRemaining int) *AuctionStrategy {
	type def struct {
		name        string
		target      string
		description string
	}
	defs := []def{
		{"conservative", "2.5", "Low risk, high profit margin"},
		{"moderate", "2.0", "Balanced risk and profit"},
		{"aggressive", "1.5", "Higher risk, faster turnover"},
	}

	plans := make([]StrategyPlan, 0, len(defs))
	for _, d := range defs {
		target := decimal.RequireFromString(d.target)
		maxBid := net.DivRound(target, 2)
		plans = append(plans, StrategyPlan{
			Name:               d.name,
			TargetMultiplier:   target,
			MaxBid:             maxBid,
			ExpectedProfit:     net.Sub(maxBid),
			Description:        d.description,
			SuccessProbability: successProbability(target),
		})
	}

	recommended := "conservative"
	note := "Plenty of time - can afford to be conservative"
	switch {
	case minutesRemaining <= 5:
		recommended = "aggressive"
		note = "Limited time - consider aggressive bidding"
	case minutesRemaining <= 15:
		recommended = "moderate"
		note = "Moderate time remaining - balanced approach recommended"
	}

	return &AuctionStrategy{
		Strategies:           plans,
		RecommendedStrategy:  recommended,
		UrgencyNote:          note,
		AuctionTimeRemaining: minutesRemaining,
	}
}

// successProbability is a coarse heuristic: higher multipliers win auctions
// less often because the allowed bid is lower.
func successProbability(target decimal.Decimal) decimal.Decimal {
	switch {
	case target.GreaterThanOrEqual(decimal.NewFromInt(3)):
		return decimal.NewFromInt(60)
	case target.GreaterThanOrEqual(decimal.RequireFromString("2.5")):
		return decimal.NewFromInt(75)
	case target.GreaterThanOrEqual(decimal.NewFromInt(2)):
		return decimal.NewFromInt(85)
	case target.GreaterThanOrEqual(decimal.RequireFromString("1.5")):
		return decimal.NewFromInt(95)
	default:
		return decimal.NewFromInt(98)
	}
}

// QuickBidInput is the payload for the single-platform quick calculation.
type QuickBidInput struct {
	SellingPrice     decimal.Decimal
	TargetMultiplier decimal.Decimal
	FeePct           decimal.Decimal
	ShippingCost     decimal.Decimal
}

// QuickBidResult is the output of QuickBid.
type QuickBidResult struct {
	SellingPrice    decimal.Decimal
	FeeAmount       decimal.Decimal
	ShippingCost    decimal.Decimal
	NetSellingPrice decimal.Decimal
	MaxBid          decimal.Decimal
	ExpectedProfit  decimal.Decimal
	ROIPct          decimal.Decimal
}

// QuickBid runs the net/max-bid arithmetic for one platform's numbers,
// without touching any upstream source.
func QuickBid(in QuickBidInput) (QuickBidResult, error) {
	if !in.SellingPrice.IsPositive() {
		return QuickBidResult{}, fmt.Errorf("selling price must be greater than 0")
	}
	if !in.TargetMultiplier.GreaterThan(one) {
		return QuickBidResult{}, fmt.Errorf("target multiplier must be greater than 1")
	}
	if in.FeePct.IsNegative() || in.FeePct.GreaterThanOrEqual(one) {
		return QuickBidResult{}, fmt.Errorf("fee pct must be in [0,1)")
	}
	if in.ShippingCost.IsNegative() {
		return QuickBidResult{}, fmt.Errorf("shipping cost must not be negative")
	}

	feeAmount := in.SellingPrice.Mul(in.FeePct)
	net := in.SellingPrice.Sub(feeAmount).Sub(in.ShippingCost)
	maxBid := net.DivRound(in.TargetMultiplier, 2)
	profit := net.Sub(maxBid)

	roiPct := decimal.Zero
	if maxBid.IsPositive() {
		roiPct = profit.Div(maxBid).Mul(hundred).Round(2)
	}

	return QuickBidResult{
		SellingPrice:    in.SellingPrice,
		FeeAmount:       feeAmount.Round(2),
		ShippingCost:    in.ShippingCost,
		NetSellingPrice: net,
		MaxBid:          maxBid,
		ExpectedProfit:  profit,
		ROIPct:          roiPct,
	}, nil
}
