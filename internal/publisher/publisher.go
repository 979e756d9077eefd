package publisher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/flipscout/pricecheck/internal/market"
	"github.com/flipscout/pricecheck/internal/metrics"
)

// Publisher wraps a NATS connection and emits completed-check events.
type Publisher struct {
	nc      *nats.Conn
	js      nats.JetStreamContext
	subject string
	service string
	logger  *zap.Logger
}

// New creates a Publisher with JetStream enabled.
func New(nc *nats.Conn, subject, service string, logger *zap.Logger) (*Publisher, error) {
	js, err := nc.JetStream()
	if err != nil {
		return nil, err
	}
	return &Publisher{
		nc:      nc,
		js:      js,
		subject: subject,
		service: service,
		logger:  logger,
	}, nil
}

// CheckCompletedEvent is the wire form of a finished price check.
type CheckCompletedEvent struct {
	EventID      uuid.UUID       `json:"event_id"`
	CheckID      uuid.UUID       `json:"check_id"`
	ProductName  string          `json:"product_name"`
	Size         string          `json:"size,omitempty"`
	Condition    string          `json:"condition"`
	BestPlatform string          `json:"best_platform,omitempty"`
	Quotes       []QuoteEvent    `json:"quotes"`
	Failures     []FailureEvent  `json:"failures,omitempty"`
	BestNet      decimal.Decimal `json:"best_net_proceeds"`
	CheckedAt    time.Time       `json:"checked_at"`
}

// QuoteEvent is one platform quote in a CheckCompletedEvent.
type QuoteEvent struct {
	Platform    string          `json:"platform"`
	GrossPrice  decimal.Decimal `json:"gross_price"`
	NetProceeds decimal.Decimal `json:"net_proceeds"`
}

// FailureEvent is one platform failure in a CheckCompletedEvent.
type FailureEvent struct {
	Platform string `json:"platform"`
	Reason   string `json:"reason"`
}

// PublishCheckCompleted emits one event per finished check.
func (p *Publisher) PublishCheckCompleted(ctx context.Context, result market.AggregateResult) error {
	event := CheckCompletedEvent{
		EventID:      uuid.New(),
		CheckID:      result.CheckID,
		ProductName:  result.Query.ProductName,
		Size:         result.Query.Size,
		Condition:    string(result.Query.Condition),
		BestPlatform: string(result.BestPlatform),
		CheckedAt:    result.CheckedAt,
	}
	for platform, price := range result.Prices {
		event.Quotes = append(event.Quotes, QuoteEvent{
			Platform:    string(platform),
			GrossPrice:  price.GrossPrice,
			NetProceeds: price.NetProceeds,
		})
		if platform == result.BestPlatform {
			event.BestNet = price.NetProceeds
		}
	}
	for platform, failure := range result.Failures {
		event.Failures = append(event.Failures, FailureEvent{
			Platform: string(platform),
			Reason:   string(failure.Reason),
		})
	}

	data, err := json.Marshal(event)
	if err != nil {
		metrics.IncError("publisher", "marshal_failed")
		return err
	}

	msg := &nats.Msg{
		Subject: p.subject,
		Data:    data,
		Header: nats.Header{
			"event_type":     []string{"pricecheck.completed"},
			"correlation_id": []string{result.CheckID.String()},
			"service":        []string{p.service},
			"content_type":   []string{"application/json"},
		},
	}

	if _, err := p.js.PublishMsg(msg); err != nil {
		p.logger.Error("publisher.publish_failed",
			zap.String("subject", p.subject),
			zap.String("check_id", result.CheckID.String()),
			zap.Error(err),
		)
		metrics.IncNATSMessage(p.subject, "error")
		return err
	}

	p.logger.Info("publisher.publish_success",
		zap.String("subject", p.subject),
		zap.String("check_id", result.CheckID.String()),
	)
	metrics.IncNATSMessage(p.subject, "ok")
	return nil
}

func (p *Publisher) Close() {
	if p.nc != nil && p.nc.IsConnected() {
		p.nc.Close()
	}
}
