package api

import (
	"time"

	"github.com/shopspring/decimal"
)

// CheckPriceResponse is the full result of one price check.
type CheckPriceResponse struct {
	CheckID         string                      `json:"check_id"`
	Product         ProductResponse             `json:"product"`
	Size            string                      `json:"size,omitempty"`
	Condition       string                      `json:"condition"`
	Prices          map[string]PlatformPriceDTO `json:"prices"`
	Failures        map[string]string           `json:"failures,omitempty"`
	BestPlatform    string                      `json:"best_platform"` // "none" when no quote arrived
	Recommendations []RecommendationDTO         `json:"recommendations"`
	ElapsedMs       int64                       `json:"elapsed_ms"`
	CheckedAt       time.Time                   `json:"checked_at"`
}

// ProductResponse is the parsed product identity echoed back to the caller.
type ProductResponse struct {
	Name  string `json:"name"`
	Brand string `json:"brand,omitempty"`
	Model string `json:"model,omitempty"`
}

// PlatformPriceDTO is one platform's quote with the fee math applied.
type PlatformPriceDTO struct {
	GrossPrice   decimal.Decimal `json:"gross_price"`
	FeePct       decimal.Decimal `json:"fee_pct"`
	ShippingCost decimal.Decimal `json:"shipping_cost"`
	NetProceeds  decimal.Decimal `json:"net_proceeds"`
	FetchedAt    time.Time       `json:"fetched_at"`
}

// RecommendationDTO is max-bid guidance for one ROI target.
type RecommendationDTO struct {
	Platform       string          `json:"platform"`
	NetProceeds    decimal.Decimal `json:"net_proceeds"`
	ROIMultiplier  decimal.Decimal `json:"roi_multiplier"`
	MaxBid         decimal.Decimal `json:"max_bid"`
	ExpectedProfit decimal.Decimal `json:"expected_profit"`
}

// PlatformInfoDTO is one row of the fee schedule listing.
type PlatformInfoDTO struct {
	Platform     string          `json:"platform"`
	SellerFeePct decimal.Decimal `json:"seller_fee_pct"`
	ShippingCost decimal.Decimal `json:"shipping_cost"`
}

// AdvancedAnalysisResponse is the detailed margin report.
type AdvancedAnalysisResponse struct {
	Platforms    []PlatformAnalysisDTO  `json:"platforms"`
	BestPlatform string                 `json:"best_platform"`
	BestNetPrice decimal.Decimal        `json:"best_net_price"`
	Bidding      []BidPlanDTO           `json:"bidding_recommendations"`
	Risk         *RiskAnalysisDTO       `json:"risk_analysis,omitempty"`
	Comparison   *MarketComparisonDTO   `json:"market_comparison,omitempty"`
	Auction      *AuctionStrategyDTO    `json:"auction_strategy,omitempty"`
}

type PlatformAnalysisDTO struct {
	Platform        string          `json:"platform"`
	AskPrice        decimal.Decimal `json:"ask_price"`
	FeeAmount       decimal.Decimal `json:"fee_amount"`
	ShippingCost    decimal.Decimal `json:"shipping_cost"`
	NetProceeds     decimal.Decimal `json:"net_proceeds"`
	TotalCosts      decimal.Decimal `json:"total_costs"`
	ProfitMarginPct decimal.Decimal `json:"profit_margin_pct"`
}

type BidPlanDTO struct {
	TargetMultiplier decimal.Decimal `json:"target_multiplier"`
	MaxBid           decimal.Decimal `json:"max_bid"`
	ExpectedProfit   decimal.Decimal `json:"expected_profit"`
	ROIPct           decimal.Decimal `json:"roi_pct"`
	BreakEvenBid     decimal.Decimal `json:"break_even_bid"`
}

type RiskAnalysisDTO struct {
	PriceSpread     decimal.Decimal `json:"price_spread"`
	PriceSpreadPct  decimal.Decimal `json:"price_spread_pct"`
	Volatility      decimal.Decimal `json:"volatility"`
	RiskLevel       string          `json:"risk_level"`
	ConfidenceScore decimal.Decimal `json:"confidence_score"`
}

type MarketComparisonDTO struct {
	Ranking           []string        `json:"ranking"`
	BestPlatform      string          `json:"best_platform"`
	WorstPlatform     string          `json:"worst_platform"`
	PriceAdvantage    decimal.Decimal `json:"price_advantage"`
	PriceAdvantagePct decimal.Decimal `json:"price_advantage_pct"`
	Summary           string          `json:"summary"`
}

type StrategyPlanDTO struct {
	Name               string          `json:"name"`
	TargetMultiplier   decimal.Decimal `json:"target_multiplier"`
	MaxBid             decimal.Decimal `json:"max_bid"`
	ExpectedProfit     decimal.Decimal `json:"expected_profit"`
	Description        string          `json:"description"`
	SuccessProbability decimal.Decimal `json:"success_probability"`
}

type AuctionStrategyDTO struct {
	Strategies           []StrategyPlanDTO `json:"strategies"`
	RecommendedStrategy  string            `json:"recommended_strategy"`
	UrgencyNote          string            `json:"urgency_note"`
	AuctionTimeRemaining int               `json:"auction_time_remaining"`
}

// QuickBidResponse is the output of the single-platform calculation.
type QuickBidResponse struct {
	SellingPrice    decimal.Decimal `json:"selling_price"`
	FeeAmount       decimal.Decimal `json:"fee_amount"`
	ShippingCost    decimal.Decimal `json:"shipping_cost"`
	NetSellingPrice decimal.Decimal `json:"net_selling_price"`
	MaxBid          decimal.Decimal `json:"max_bid"`
	ExpectedProfit  decimal.Decimal `json:"expected_profit"`
	ROIPct          decimal.Decimal `json:"roi_pct"`
}
