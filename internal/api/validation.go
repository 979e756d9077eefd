package api

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var one = decimal.NewFromInt(1)

// Validate checks that CheckPriceRequest has all required fields.
func (r *CheckPriceRequest) Validate() error {
	if strings.TrimSpace(r.ProductName) == "" {
		return fmt.Errorf("product_name is required")
	}
	return nil
}

// Validate checks that AdvancedAnalysisRequest carries at least one price.
func (r *AdvancedAnalysisRequest) Validate() error {
	if len(r.Prices) == 0 {
		return fmt.Errorf("prices is required")
	}
	for platform, price := range r.Prices {
		if !price.IsPositive() {
			return fmt.Errorf("price for %s must be positive", platform)
		}
	}
	for _, m := range r.CustomMultipliers {
		if !m.GreaterThan(one) {
			return fmt.Errorf("custom multipliers must be greater than 1")
		}
	}
	if r.AuctionTimeRemaining < 0 {
		return fmt.Errorf("auction_time_remaining must not be negative")
	}
	return nil
}

// Validate checks that QuickBidRequest has usable numbers.
// Fee bounds are enforced again by the calculator.
func (r *QuickBidRequest) Validate() error {
	if !r.SellingPrice.IsPositive() {
		return fmt.Errorf("selling_price must be positive")
	}
	if !r.TargetMultiplier.GreaterThan(one) {
		return fmt.Errorf("target_multiplier must be greater than 1")
	}
	return nil
}
