package history

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/flipscout/pricecheck/internal/market"
)

// Writer persists completed checks into the pricecheck.check_quote table,
// one row per platform outcome. Writes are best effort; the caller treats
// a failed insert as a log line, not a request failure.
type Writer struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewWriter connects a pgx pool to the given DSN and verifies it with a ping.
func NewWriter(ctx context.Context, dsn string, logger *zap.Logger) (*Writer, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid pg config: %w", err)
	}
	cfg.MaxConns = 4
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("pg pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg ping failed: %w", err)
	}

	return &Writer{db: pool, logger: logger}, nil
}

const insertQuote = `
	INSERT INTO pricecheck.check_quote (
		check_id,
		product_name,
		size,
		condition,
		platform,
		gross_price,
		net_proceeds,
		failure_reason,
		is_best,
		checked_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
`

// RecordCheck inserts one row per platform outcome in a single batch.
func (w *Writer) RecordCheck(ctx context.Context, result market.AggregateResult) error {
	batch := &pgx.Batch{}

	for platform, price := range result.Prices {
		batch.Queue(insertQuote,
			result.CheckID,
			result.Query.ProductName,
			result.Query.Size,
			string(result.Query.Condition),
			string(platform),
			price.GrossPrice.String(),
			price.NetProceeds.String(),
			nil, // failure_reason
			platform == result.BestPlatform,
			result.CheckedAt,
		)
	}
	for platform, failure := range result.Failures {
		batch.Queue(insertQuote,
			result.CheckID,
			result.Query.ProductName,
			result.Query.Size,
			string(result.Query.Condition),
			string(platform),
			nil, // gross_price
			nil, // net_proceeds
			string(failure.Reason),
			false,
			result.CheckedAt,
		)
	}

	if batch.Len() == 0 {
		return nil
	}

	if err := w.db.SendBatch(ctx, batch).Close(); err != nil {
		w.logger.Error("history.record_failed",
			zap.String("check_id", result.CheckID.String()),
			zap.Int("rows", batch.Len()),
			zap.Error(err),
		)
		return err
	}

	w.logger.Debug("history.recorded",
		zap.String("check_id", result.CheckID.String()),
		zap.Int("rows", batch.Len()),
	)
	return nil
}

// HealthCheck pings the underlying pool.
func (w *Writer) HealthCheck(ctx context.Context) error {
	return w.db.Ping(ctx)
}

// Close releases the pool.
func (w *Writer) Close() {
	w.db.Close()
}
