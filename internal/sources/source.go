package sources

import (
	"context"
	"errors"

	"github.com/flipscout/pricecheck/internal/market"
)

// ErrNotFound signals that the upstream marketplace has no listing for the
// queried product/size. It is a per-platform outcome, not a request failure.
var ErrNotFound = errors.New("product not found")

// Source is the capability contract every marketplace adapter satisfies.
// Fetch must honor the deadline carried by ctx and must never panic across
// this boundary: any upstream problem comes back as an error for the
// aggregator to classify.
type Source interface {
	Platform() market.Platform
	Fetch(ctx context.Context, q market.Query) (market.Quote, error)
}

// Classify converts a Fetch error into the failure reason recorded for the platform.
func Classify(err error) market.FailureReason {
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return market.ReasonTimeout
	case errors.Is(err, ErrNotFound):
		return market.ReasonNotFound
	default:
		return market.ReasonUpstreamError
	}
}
