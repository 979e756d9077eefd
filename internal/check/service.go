package check

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/flipscout/pricecheck/internal/aggregator"
	"github.com/flipscout/pricecheck/internal/decision"
	"github.com/flipscout/pricecheck/internal/market"
	"github.com/flipscout/pricecheck/internal/metrics"
)

// HistoryWriter records completed checks for later analysis.
type HistoryWriter interface {
	RecordCheck(ctx context.Context, result market.AggregateResult) error
}

// EventPublisher emits completed-check events for downstream consumers.
type EventPublisher interface {
	PublishCheckCompleted(ctx context.Context, result market.AggregateResult) error
}

// Service orchestrates one price check: validate, fan out, decide, and hand
// the result to the optional history/event collaborators. Those side writes
// are fire-and-forget; they never delay or fail the caller's response.
type Service struct {
	logger     *zap.Logger
	agg        *aggregator.Aggregator
	engine     *decision.Engine
	roiTargets []decimal.Decimal
	history    HistoryWriter  // optional
	events     EventPublisher // optional
}

// NewService constructs a fully wired check service.
// history and events may be nil.
func NewService(
	logger *zap.Logger,
	agg *aggregator.Aggregator,
	engine *decision.Engine,
	roiTargets []decimal.Decimal,
	history HistoryWriter,
	events EventPublisher,
) *Service {
	return &Service{
		logger:     logger,
		agg:        agg,
		engine:     engine,
		roiTargets: roiTargets,
		history:    history,
		events:     events,
	}
}

// CheckPrice runs the full received → fanned_out → decided cycle for one query.
// The only error it returns is input validation; marketplace trouble is data
// in the result, never an error.
func (s *Service) CheckPrice(ctx context.Context, q market.Query) (market.AggregateResult, error) {
	if err := q.Validate(); err != nil {
		return market.AggregateResult{}, err
	}

	start := time.Now()
	outcomes := s.agg.Aggregate(ctx, q)
	result := s.engine.Decide(outcomes, s.roiTargets)

	result.CheckID = uuid.New()
	result.Query = q
	result.Product = market.ParseProduct(q.ProductName)
	result.Elapsed = time.Since(start)
	result.CheckedAt = time.Now().UTC()

	metrics.IncCheck(checkOutcome(result))

	s.logger.Info("check.decided",
		zap.String("check_id", result.CheckID.String()),
		zap.String("product", q.ProductName),
		zap.String("size", q.Size),
		zap.Int("quotes", len(result.Prices)),
		zap.Int("failures", len(result.Failures)),
		zap.String("best_platform", string(result.BestPlatform)),
		zap.Duration("elapsed", result.Elapsed))

	s.record(result)

	return result, nil
}

// record hands the result to the optional collaborators on a detached context.
func (s *Service) record(result market.AggregateResult) {
	if s.history == nil && s.events == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if s.history != nil {
			if err := s.history.RecordCheck(ctx, result); err != nil {
				metrics.IncError("history", "record_failed")
				s.logger.Warn("check.history_record_failed",
					zap.String("check_id", result.CheckID.String()),
					zap.Error(err))
			}
		}
		if s.events != nil {
			if err := s.events.PublishCheckCompleted(ctx, result); err != nil {
				metrics.IncError("publisher", "publish_failed")
				s.logger.Warn("check.event_publish_failed",
					zap.String("check_id", result.CheckID.String()),
					zap.Error(err))
			}
		}
	}()
}

// checkOutcome labels a result for metrics: full, partial, or empty.
func checkOutcome(result market.AggregateResult) string {
	switch {
	case len(result.Prices) == 0:
		return "empty"
	case len(result.Failures) == 0:
		return "full"
	default:
		return "partial"
	}
}
