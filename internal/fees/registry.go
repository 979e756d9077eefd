package fees

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/flipscout/pricecheck/internal/market"
)

var one = decimal.NewFromInt(1)

// Model is the fee schedule for one platform: a percentage seller fee plus a
// flat shipping cost, both applied when converting a gross price to net proceeds.
type Model struct {
	Platform     market.Platform
	SellerFeePct decimal.Decimal // in [0, 1)
	ShippingCost decimal.Decimal // >= 0
}

// NetProceeds converts a gross market price into what the seller actually nets:
// gross × (1 − seller_fee_pct) − shipping_cost. The result may be negative;
// it is never clamped.
func (m Model) NetProceeds(gross decimal.Decimal) decimal.Decimal {
	return gross.Mul(one.Sub(m.SellerFeePct)).Sub(m.ShippingCost)
}

// Registry is the process-wide static fee table. It is built once at startup
// and read-only afterwards; the platform registration order doubles as the
// tie-break priority for best-platform selection.
type Registry struct {
	order  []market.Platform
	models map[market.Platform]Model
}

// NewRegistry builds a Registry from the given models, preserving their order.
func NewRegistry(models ...Model) (*Registry, error) {
	r := &Registry{
		models: make(map[market.Platform]Model, len(models)),
	}
	for _, m := range models {
		if m.Platform == "" {
			return nil, fmt.Errorf("fee model requires a platform")
		}
		if _, dup := r.models[m.Platform]; dup {
			return nil, fmt.Errorf("duplicate fee model for platform %q", m.Platform)
		}
		if m.SellerFeePct.IsNegative() || m.SellerFeePct.GreaterThanOrEqual(one) {
			return nil, fmt.Errorf("platform %q: seller fee pct must be in [0,1), got %s", m.Platform, m.SellerFeePct)
		}
		if m.ShippingCost.IsNegative() {
			return nil, fmt.Errorf("platform %q: shipping cost must not be negative, got %s", m.Platform, m.ShippingCost)
		}
		r.order = append(r.order, m.Platform)
		r.models[m.Platform] = m
	}
	if len(r.order) == 0 {
		return nil, fmt.Errorf("registry requires at least one fee model")
	}
	return r, nil
}

// Lookup returns the fee model for a platform.
func (r *Registry) Lookup(p market.Platform) (Model, bool) {
	m, ok := r.models[p]
	return m, ok
}

// Platforms returns all registered platforms in priority order.
func (r *Registry) Platforms() []market.Platform {
	out := make([]market.Platform, len(r.order))
	copy(out, r.order)
	return out
}

// Priority returns the tie-break rank of a platform (lower wins).
// Unregistered platforms rank last.
func (r *Registry) Priority(p market.Platform) int {
	for i, plat := range r.order {
		if plat == p {
			return i
		}
	}
	return len(r.order)
}

// Len returns the number of registered platforms.
func (r *Registry) Len() int {
	return len(r.order)
}
