package aggregator

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/flipscout/pricecheck/internal/market"
	"github.com/flipscout/pricecheck/internal/metrics"
	"github.com/flipscout/pricecheck/internal/sources"
)

// Aggregator fans one query out to every registered source under a single
// shared deadline and collects whatever comes back in time. It always yields
// exactly one Outcome per source: quotes for sources that answered, timeout
// Failures for stragglers, classified Failures for everything else.
type Aggregator struct {
	logger   *zap.Logger
	sources  []sources.Source
	deadline time.Duration
	grace    time.Duration
}

// New constructs an Aggregator over the given sources.
func New(logger *zap.Logger, srcs []sources.Source, deadline, grace time.Duration) (*Aggregator, error) {
	if len(srcs) == 0 {
		return nil, fmt.Errorf("aggregator requires at least one source")
	}
	seen := make(map[market.Platform]bool, len(srcs))
	for _, s := range srcs {
		if seen[s.Platform()] {
			return nil, fmt.Errorf("duplicate source for platform %q", s.Platform())
		}
		seen[s.Platform()] = true
	}
	if deadline <= 0 {
		return nil, fmt.Errorf("deadline must be positive")
	}
	return &Aggregator{
		logger:   logger,
		sources:  srcs,
		deadline: deadline,
		grace:    grace,
	}, nil
}

// Platforms returns the platforms this aggregator queries.
func (a *Aggregator) Platforms() []market.Platform {
	out := make([]market.Platform, len(a.sources))
	for i, s := range a.sources {
		out[i] = s.Platform()
	}
	return out
}

// Aggregate runs the fan-out. The returned set is keyed by platform and is
// order-independent; completion order carries no meaning. Total failure
// (zero quotes) is a well-formed result, not an error.
func (a *Aggregator) Aggregate(ctx context.Context, q market.Query) map[market.Platform]market.Outcome {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, a.deadline)
	defer cancel()

	// Buffered so abandoned fetches can always deliver and exit.
	results := make(chan market.Outcome, len(a.sources))
	for _, src := range a.sources {
		go func(src sources.Source) {
			results <- a.fetchOne(ctx, src, q)
		}(src)
	}

	outcomes := make(map[market.Platform]market.Outcome, len(a.sources))
	remaining := len(a.sources)

collect:
	for remaining > 0 {
		select {
		case o := <-results:
			outcomes[o.Platform] = o
			remaining--
		case <-ctx.Done():
			break collect
		}
	}

	// Deadline hit: give results that raced the cancellation a short grace
	// window, then stop waiting. In-flight calls are abandoned, not joined.
	if remaining > 0 && a.grace > 0 {
		graceTimer := time.NewTimer(a.grace)
	drain:
		for remaining > 0 {
			select {
			case o := <-results:
				outcomes[o.Platform] = o
				remaining--
			case <-graceTimer.C:
				break drain
			}
		}
		graceTimer.Stop()
	}

	for _, src := range a.sources {
		p := src.Platform()
		if _, ok := outcomes[p]; !ok {
			outcomes[p] = market.FailureOutcome(p, market.ReasonTimeout)
			metrics.IncSourceRequest(string(p), string(market.ReasonTimeout))
			a.logger.Warn("aggregator.source_timed_out",
				zap.String("platform", string(p)),
				zap.Duration("deadline", a.deadline))
		}
	}

	metrics.ObserveDuration(metrics.AggregationDuration, start)
	return outcomes
}

// fetchOne runs a single source call and converts its result into an Outcome.
// Nothing escapes this boundary: errors are classified, panics are contained.
func (a *Aggregator) fetchOne(ctx context.Context, src sources.Source, q market.Query) (out market.Outcome) {
	p := src.Platform()

	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("aggregator.source_panicked",
				zap.String("platform", string(p)),
				zap.Any("panic", r))
			metrics.IncSourceRequest(string(p), string(market.ReasonUpstreamError))
			out = market.FailureOutcome(p, market.ReasonUpstreamError)
		}
	}()

	quote, err := src.Fetch(ctx, q)
	if err != nil {
		reason := sources.Classify(err)
		metrics.IncSourceRequest(string(p), string(reason))
		a.logger.Warn("aggregator.source_failed",
			zap.String("platform", string(p)),
			zap.String("reason", string(reason)),
			zap.Error(err))
		return market.FailureOutcome(p, reason)
	}

	metrics.IncSourceRequest(string(p), "ok")
	return market.QuoteOutcome(quote)
}
