package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"

	"github.com/flipscout/pricecheck/internal/aggregator"
	"github.com/flipscout/pricecheck/internal/api"
	"github.com/flipscout/pricecheck/internal/check"
	"github.com/flipscout/pricecheck/internal/decision"
	"github.com/flipscout/pricecheck/internal/fees"
	"github.com/flipscout/pricecheck/internal/history"
	"github.com/flipscout/pricecheck/internal/market"
	"github.com/flipscout/pricecheck/internal/publisher"
	"github.com/flipscout/pricecheck/internal/quotecache"
	"github.com/flipscout/pricecheck/internal/rate"
	internalsecrets "github.com/flipscout/pricecheck/internal/secrets"
	"github.com/flipscout/pricecheck/internal/sources"
	"github.com/flipscout/pricecheck/internal/sources/goat"
	"github.com/flipscout/pricecheck/internal/sources/kickscrew"
	"github.com/flipscout/pricecheck/internal/sources/stockx"
	"github.com/flipscout/pricecheck/pkg/config"
	"github.com/flipscout/pricecheck/pkg/logger"
	"github.com/flipscout/pricecheck/pkg/secrets"
	"github.com/flipscout/pricecheck/pkg/utils"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Load configuration ---
	cfg := config.Load()

	logger.Init(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	defer logger.Sync()
	logg := logger.S()
	logg.Info("starting [pricecheck]...")

	// --- API keys: AWS Secrets Manager when a prefix is configured, env otherwise ---
	stockxKey := cfg.StockXAPIKey
	kickscrewKey := cfg.KicksCrewAPIKey
	var stopCleaner chan struct{}
	if cfg.SecretsPrefix != "" {
		awsProvider, err := secrets.NewAWSProvider(cfg.AWSRegion)
		if err != nil {
			logg.Fatalw("failed to create AWS Secrets Manager provider", "error", err)
		}

		keyCache := secrets.NewCache[internalsecrets.SourceKey](cfg.CacheTTL)
		stopCleaner = make(chan struct{})
		go keyCache.StartCleaner(cfg.CleanupFreq, stopCleaner)

		resolver := internalsecrets.NewAWSResolver(logger.L(), cfg.SecretsPrefix, awsProvider, keyCache)

		discovered, err := resolver.DiscoverSources(ctx)
		if err != nil {
			logg.Warnw("failed to discover sources from AWS Secrets Manager", "error", err)
		} else {
			logg.Infow("discovered sources", "count", len(discovered), "sources", discovered)
		}

		if key, err := resolver.Resolve(ctx, "stockx"); err == nil {
			stockxKey = key.APIKey
		} else {
			logg.Warnw("stockx key not resolved, falling back to env", "error", err)
		}
		if key, err := resolver.Resolve(ctx, "kickscrew"); err == nil {
			kickscrewKey = key.APIKey
		} else {
			logg.Warnw("kickscrew key not resolved, falling back to env", "error", err)
		}
	}
	logg.Infow("source credentials",
		"stockx_key", utils.MaskKey(stockxKey),
		"kickscrew_key", utils.MaskKey(kickscrewKey))

	// --- Rate limiter for outbound marketplace calls ---
	rateMgr := rate.NewManager(rate.Config{
		RequestsPerSecond: cfg.RateLimitRPS,
		Burst:             cfg.RateLimitBurst,
	})

	// --- Marketplace sources ---
	srcs := []sources.Source{
		stockx.NewClient(logger.L(), rateMgr, stockx.Config{
			BaseURL:  cfg.StockXBaseURL,
			APIKey:   stockxKey,
			Timeout:  cfg.SourceTimeout,
			RetryMax: cfg.SourceRetryMax,
		}),
		goat.NewClient(logger.L(), rateMgr, goat.Config{
			BaseURL:  cfg.GoatBaseURL,
			Timeout:  cfg.SourceTimeout,
			RetryMax: cfg.SourceRetryMax,
		}),
		kickscrew.NewClient(logger.L(), rateMgr, kickscrew.Config{
			BaseURL:  cfg.KicksCrewBaseURL,
			APIKey:   kickscrewKey,
			Timeout:  cfg.SourceTimeout,
			RetryMax: cfg.SourceRetryMax,
		}),
	}

	// --- Optional Redis quote cache ---
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			DB:       cfg.RedisDB,
			Password: cfg.RedisPass,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			logg.Warnw("redis unreachable, quote cache disabled", "error", err)
			rdb = nil
		}
		cancel()
	}
	for i, src := range srcs {
		srcs[i] = quotecache.Wrap(src, rdb, cfg.QuoteCacheTTL, logger.L())
	}

	// --- Fee registry ---
	registry, err := fees.NewRegistry(
		fees.Model{Platform: market.PlatformStockX, SellerFeePct: cfg.StockXFeePct, ShippingCost: cfg.StockXShipping},
		fees.Model{Platform: market.PlatformGoat, SellerFeePct: cfg.GoatFeePct, ShippingCost: cfg.GoatShipping},
		fees.Model{Platform: market.PlatformKicksCrew, SellerFeePct: cfg.KicksCrewFeePct, ShippingCost: cfg.KicksCrewShipping},
	)
	if err != nil {
		logg.Fatalw("invalid fee configuration", "error", err)
	}

	// --- Aggregator + decision engine ---
	agg, err := aggregator.New(logger.L(), srcs, cfg.CheckDeadline, cfg.CollectGrace)
	if err != nil {
		logg.Fatalw("failed to init aggregator", "error", err)
	}
	engine := decision.NewEngine(logger.L(), registry)

	// --- Optional price history (Postgres) ---
	var hist *history.Writer
	if cfg.DatabaseURL != "" {
		logg.Info("connecting to DSN: ", utils.MaskDSN(cfg.DatabaseURL))
		hist, err = history.NewWriter(ctx, cfg.DatabaseURL, logger.L())
		if err != nil {
			logg.Fatalw("failed to init history writer", "error", err)
		}
	}

	// --- Optional event publisher (NATS) ---
	var nc *nats.Conn
	var pub *publisher.Publisher
	if cfg.NATSURL != "" {
		nc, err = nats.Connect(cfg.NATSURL)
		if err != nil {
			logg.Fatalw("failed to connect to NATS", "error", err)
		}
		pub, err = publisher.New(nc, cfg.OutboundSubject, cfg.ServiceName, logger.L())
		if err != nil {
			logg.Fatalw("failed to init publisher", "error", err)
		}
	}

	// --- Check service ---
	var histWriter check.HistoryWriter
	if hist != nil {
		histWriter = hist
	}
	var eventPub check.EventPublisher
	if pub != nil {
		eventPub = pub
	}
	svc := check.NewService(logger.L(), agg, engine, cfg.ROITargets, histWriter, eventPub)

	// --- Fiber HTTP server ---
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
		BodyLimit:    cfg.HTTPBodyLimit,
	})

	handler := api.NewCheckHandler(logger.L(), svc, engine, registry, cfg.AdvancedROITargets)

	var histHealth api.HealthChecker
	if hist != nil {
		histHealth = hist
	}
	api.RegisterRoutes(app, nc, histHealth, handler)

	go func() {
		logg.Infof("HTTP API listening on :%d", cfg.Port)
		if err := app.Listen(fmt.Sprintf(":%d", cfg.Port)); err != nil {
			logg.Fatalw("fiber.listen_failed", "error", err)
		}
	}()

	logg.Infow("[pricecheck] running",
		"env", cfg.Env,
		"platforms", len(srcs),
		"check_deadline", cfg.CheckDeadline,
		"quote_cache", rdb != nil,
		"history", hist != nil,
		"events", pub != nil)

	<-ctx.Done()
	logg.Info("shutting down [pricecheck]...")

	if stopCleaner != nil {
		close(stopCleaner)
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logg.Warnw("fiber.shutdown_failed", "error", err)
	}
	if nc != nil {
		if err := nc.Drain(); err != nil {
			logg.Warnw("nats.drain_failed", "error", err)
		}
	}
	if hist != nil {
		hist.Close()
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			logg.Warnw("redis.close_failed", "error", err)
		}
	}
}
