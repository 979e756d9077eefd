package decision

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/flipscout/pricecheck/internal/fees"
	"github.com/flipscout/pricecheck/internal/market"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// epsilon for money assertions: one minor currency unit.
var epsilon = dec("0.01")

func withinEpsilon(t *testing.T, expected, actual decimal.Decimal, msg string) {
	t.Helper()
	diff := expected.Sub(actual).Abs()
	assert.True(t, diff.LessThanOrEqual(epsilon), "%s: expected %s, got %s", msg, expected, actual)
}

func testRegistry(t *testing.T) *fees.Registry {
	t.Helper()
	r, err := fees.NewRegistry(
		fees.Model{Platform: market.PlatformStockX, SellerFeePct: dec("0.095"), ShippingCost: dec("15")},
		fees.Model{Platform: market.PlatformGoat, SellerFeePct: dec("0.095"), ShippingCost: dec("15")},
		fees.Model{Platform: market.PlatformKicksCrew, SellerFeePct: dec("0.08"), ShippingCost: dec("20")},
	)
	require.NoError(t, err)
	return r
}

func quoteOutcome(p market.Platform, gross string) market.Outcome {
	return market.QuoteOutcome(market.Quote{
		Platform:   p,
		GrossPrice: dec(gross),
		FetchedAt:  time.Now().UTC(),
	})
}

// The worked scenario: A gross 500 @ 9.5% + 15 shipping, B gross 440 @ 8% + 20
// shipping, C timed out. Expect net(A)=437.5, net(B)=384.8, best=A, and the
// max-bid pairs for roi 2.0 and 1.5.
func TestDecideWorkedScenario(t *testing.T) {
	engine := NewEngine(zap.NewNop(), testRegistry(t))

	outcomes := map[market.Platform]market.Outcome{
		market.PlatformStockX:    quoteOutcome(market.PlatformStockX, "500"),
		market.PlatformKicksCrew: quoteOutcome(market.PlatformKicksCrew, "440"),
		market.PlatformGoat:      market.FailureOutcome(market.PlatformGoat, market.ReasonTimeout),
	}

	result := engine.Decide(outcomes, []decimal.Decimal{dec("1.5"), dec("2.0")})

	require.Equal(t, market.PlatformStockX, result.BestPlatform)
	withinEpsilon(t, dec("437.5"), result.Prices[market.PlatformStockX].NetProceeds, "net(A)")
	withinEpsilon(t, dec("384.8"), result.Prices[market.PlatformKicksCrew].NetProceeds, "net(B)")

	failure, ok := result.Failures[market.PlatformGoat]
	require.True(t, ok, "goat must be reported as unavailable")
	assert.Equal(t, market.ReasonTimeout, failure.Reason)

	require.Len(t, result.Recommendations, 2)

	r15 := result.Recommendations[0]
	assert.True(t, r15.ROIMultiplier.Equal(dec("1.5")))
	withinEpsilon(t, dec("291.67"), r15.MaxBid, "max bid @1.5")
	withinEpsilon(t, dec("145.83"), r15.ExpectedProfit, "profit @1.5")

	r20 := result.Recommendations[1]
	assert.True(t, r20.ROIMultiplier.Equal(dec("2.0")))
	withinEpsilon(t, dec("218.75"), r20.MaxBid, "max bid @2.0")
	withinEpsilon(t, dec("218.75"), r20.ExpectedProfit, "profit @2.0")
}

// expected_profit == max_bid × (roi − 1) and max_bid + expected_profit == net,
// across a grid of awkward prices and targets.
func TestDecideAlgebraicIdentities(t *testing.T) {
	engine := NewEngine(zap.NewNop(), testRegistry(t))
	one := decimal.NewFromInt(1)

	for _, gross := range []string{"19.99", "100", "333.33", "1234.56", "7.03"} {
		outcomes := map[market.Platform]market.Outcome{
			market.PlatformStockX:    quoteOutcome(market.PlatformStockX, gross),
			market.PlatformGoat:      market.FailureOutcome(market.PlatformGoat, market.ReasonNotFound),
			market.PlatformKicksCrew: market.FailureOutcome(market.PlatformKicksCrew, market.ReasonNotFound),
		}
		targets := []decimal.Decimal{dec("1.25"), dec("1.5"), dec("2.0"), dec("3.0")}
		result := engine.Decide(outcomes, targets)

		require.Len(t, result.Recommendations, len(targets))
		for _, rec := range result.Recommendations {
			withinEpsilon(t, rec.MaxBid.Mul(rec.ROIMultiplier.Sub(one)), rec.ExpectedProfit,
				"profit identity @"+rec.ROIMultiplier.String()+" gross "+gross)
			withinEpsilon(t, rec.NetProceeds, rec.MaxBid.Add(rec.ExpectedProfit),
				"sum identity @"+rec.ROIMultiplier.String()+" gross "+gross)
		}
	}
}

func TestDecideTieBreaksByPriority(t *testing.T) {
	engine := NewEngine(zap.NewNop(), testRegistry(t))

	// stockx and goat share a fee schedule, so equal gross means equal net.
	outcomes := map[market.Platform]market.Outcome{
		market.PlatformStockX:    quoteOutcome(market.PlatformStockX, "500"),
		market.PlatformGoat:      quoteOutcome(market.PlatformGoat, "500"),
		market.PlatformKicksCrew: market.FailureOutcome(market.PlatformKicksCrew, market.ReasonNotFound),
	}

	for i := 0; i < 20; i++ {
		result := engine.Decide(outcomes, []decimal.Decimal{dec("2.0")})
		assert.Equal(t, market.PlatformStockX, result.BestPlatform,
			"tie must deterministically resolve to priority order")
	}
}

func TestDecideNoQuotes(t *testing.T) {
	engine := NewEngine(zap.NewNop(), testRegistry(t))

	outcomes := map[market.Platform]market.Outcome{
		market.PlatformStockX:    market.FailureOutcome(market.PlatformStockX, market.ReasonTimeout),
		market.PlatformGoat:      market.FailureOutcome(market.PlatformGoat, market.ReasonUpstreamError),
		market.PlatformKicksCrew: market.FailureOutcome(market.PlatformKicksCrew, market.ReasonNotFound),
	}

	result := engine.Decide(outcomes, []decimal.Decimal{dec("1.5"), dec("2.0")})

	assert.False(t, result.HasBest())
	assert.Empty(t, result.Recommendations)
	assert.Empty(t, result.Prices)
	assert.Len(t, result.Failures, 3)
}

func TestDecideNegativeNetPropagates(t *testing.T) {
	engine := NewEngine(zap.NewNop(), testRegistry(t))

	// gross 10 on stockx: 10×0.905 − 15 = −5.95
	outcomes := map[market.Platform]market.Outcome{
		market.PlatformStockX:    quoteOutcome(market.PlatformStockX, "10"),
		market.PlatformGoat:      market.FailureOutcome(market.PlatformGoat, market.ReasonNotFound),
		market.PlatformKicksCrew: market.FailureOutcome(market.PlatformKicksCrew, market.ReasonNotFound),
	}

	result := engine.Decide(outcomes, []decimal.Decimal{dec("2.0")})

	withinEpsilon(t, dec("-5.95"), result.Prices[market.PlatformStockX].NetProceeds, "negative net")
	assert.Equal(t, market.PlatformStockX, result.BestPlatform,
		"a bad deal is still the best available deal")
}

func TestDecideEveryPlatformAccountedFor(t *testing.T) {
	engine := NewEngine(zap.NewNop(), testRegistry(t))

	outcomes := map[market.Platform]market.Outcome{
		market.PlatformStockX:    quoteOutcome(market.PlatformStockX, "500"),
		market.PlatformGoat:      quoteOutcome(market.PlatformGoat, "465"),
		market.PlatformKicksCrew: market.FailureOutcome(market.PlatformKicksCrew, market.ReasonTimeout),
	}

	result := engine.Decide(outcomes, []decimal.Decimal{dec("2.0")})

	total := len(result.Prices) + len(result.Failures)
	assert.Equal(t, 3, total, "exactly one entry per registered platform")
	for p := range result.Prices {
		_, alsoFailed := result.Failures[p]
		assert.False(t, alsoFailed, "platform %s must not be both priced and failed", p)
	}
}
