package market

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Platform identifies one resale marketplace.
type Platform string

const (
	PlatformStockX    Platform = "stockx"
	PlatformGoat      Platform = "goat"
	PlatformKicksCrew Platform = "kickscrew"
)

// Condition is the physical condition of the product being checked.
type Condition string

const (
	ConditionNew  Condition = "new"
	ConditionUsed Condition = "used"
)

// ParseCondition normalizes a raw condition string. An empty string defaults to "new",
// matching upstream marketplace behavior for listings without an explicit condition.
func ParseCondition(raw string) (Condition, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "new":
		return ConditionNew, nil
	case "used":
		return ConditionUsed, nil
	default:
		return "", fmt.Errorf("condition must be 'new' or 'used', got %q", raw)
	}
}

// Query is one normalized price lookup. Immutable once constructed;
// created per request and discarded after the response is produced.
type Query struct {
	ProductName string
	Size        string
	Condition   Condition
}

// Validate rejects malformed queries before any source is contacted.
func (q Query) Validate() error {
	if strings.TrimSpace(q.ProductName) == "" {
		return fmt.Errorf("product_name is required")
	}
	if q.Condition != ConditionNew && q.Condition != ConditionUsed {
		return fmt.Errorf("condition must be 'new' or 'used', got %q", string(q.Condition))
	}
	return nil
}

// CacheKey returns a stable key identifying this query for upstream response caching.
func (q Query) CacheKey() string {
	name := strings.ToLower(strings.TrimSpace(q.ProductName))
	size := strings.ToLower(strings.TrimSpace(q.Size))
	return name + "|" + size + "|" + string(q.Condition)
}

// FailureReason classifies why a platform did not yield a price.
type FailureReason string

const (
	ReasonTimeout       FailureReason = "timeout"
	ReasonNotFound      FailureReason = "not_found"
	ReasonUpstreamError FailureReason = "upstream_error"
)

// Quote is a successfully retrieved gross market price from one platform.
type Quote struct {
	Platform   Platform
	GrossPrice decimal.Decimal
	FetchedAt  time.Time
}

// Failure is a typed, non-fatal record that a platform did not yield a price.
type Failure struct {
	Platform Platform
	Reason   FailureReason
}

// Outcome is exactly one of Quote or Failure for a platform in one request.
type Outcome struct {
	Platform Platform
	Quote    *Quote
	Failure  *Failure
}

// Available reports whether the platform produced a usable quote.
func (o Outcome) Available() bool {
	return o.Quote != nil
}

// QuoteOutcome wraps a Quote as an Outcome.
func QuoteOutcome(q Quote) Outcome {
	return Outcome{Platform: q.Platform, Quote: &q}
}

// FailureOutcome wraps a Failure as an Outcome.
func FailureOutcome(platform Platform, reason FailureReason) Outcome {
	return Outcome{Platform: platform, Failure: &Failure{Platform: platform, Reason: reason}}
}

// PlatformPrice is a quote enriched with the fee schedule applied to it.
// NetProceeds may be negative; a bad deal is still a valid answer.
type PlatformPrice struct {
	Platform     Platform
	GrossPrice   decimal.Decimal
	FeePct       decimal.Decimal
	ShippingCost decimal.Decimal
	NetProceeds  decimal.Decimal
	FetchedAt    time.Time
}

// Recommendation is max-bid guidance for one ROI target on the best platform.
type Recommendation struct {
	Platform       Platform
	NetProceeds    decimal.Decimal
	ROIMultiplier  decimal.Decimal
	MaxBid         decimal.Decimal
	ExpectedProfit decimal.Decimal
}

// AggregateResult is the per-request bundle of everything the engine produced.
// It has no existence beyond the request/response cycle.
type AggregateResult struct {
	CheckID         uuid.UUID
	Query           Query
	Product         ProductInfo
	Prices          map[Platform]PlatformPrice
	Failures        map[Platform]Failure
	BestPlatform    Platform // empty means no platform produced a quote
	Recommendations []Recommendation
	Elapsed         time.Duration
	CheckedAt       time.Time
}

// HasBest reports whether any platform produced a quote.
func (r AggregateResult) HasBest() bool {
	return r.BestPlatform != ""
}
