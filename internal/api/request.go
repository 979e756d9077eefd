package api

import "github.com/shopspring/decimal"

// CheckPriceRequest is the payload for a full multi-platform price check.
type CheckPriceRequest struct {
	ProductName string `json:"product_name"`
	Size        string `json:"size"`
	Condition   string `json:"condition"`
}

// AdvancedAnalysisRequest carries per-platform asking prices supplied by the
// caller, plus optional ROI multipliers and auction timing.
type AdvancedAnalysisRequest struct {
	Prices               map[string]decimal.Decimal `json:"prices"`
	CustomMultipliers    []decimal.Decimal          `json:"custom_multipliers"`
	AuctionTimeRemaining int                        `json:"auction_time_remaining"` // minutes
}

// QuickBidRequest is the payload for the single-platform bid calculation.
// Either name a registered platform to use its fee schedule, or supply
// fee_pct and shipping_cost directly.
type QuickBidRequest struct {
	SellingPrice     decimal.Decimal `json:"selling_price"`
	TargetMultiplier decimal.Decimal `json:"target_multiplier"`
	Platform         string          `json:"platform"`
	FeePct           decimal.Decimal `json:"fee_pct"`
	ShippingCost     decimal.Decimal `json:"shipping_cost"`
}
