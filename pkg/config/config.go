package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds the core runtime configuration for the pricecheck service.
// It supports environment-based initialization, with sensible defaults.
type Config struct {
	ServiceName string // e.g. "pricecheck"
	Env         string // e.g. "dev", "uat", "prod"
	LogLevel    string // "debug", "info", etc.
	Port        int    // service HTTP port

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	HTTPBodyLimit    int

	// Aggregation
	CheckDeadline time.Duration // shared deadline for one fan-out across all sources
	CollectGrace  time.Duration // how long the collector waits for stragglers after the deadline
	ROITargets    []decimal.Decimal

	// Advanced analysis
	AdvancedROITargets []decimal.Decimal

	// Per-platform fee schedule
	StockXFeePct      decimal.Decimal
	StockXShipping    decimal.Decimal
	GoatFeePct        decimal.Decimal
	GoatShipping      decimal.Decimal
	KicksCrewFeePct   decimal.Decimal
	KicksCrewShipping decimal.Decimal

	// Upstream sources
	StockXBaseURL    string
	StockXAPIKey     string
	GoatBaseURL      string
	KicksCrewBaseURL string
	KicksCrewAPIKey  string
	SourceTimeout    time.Duration // per-request HTTP client timeout (ctx deadline still wins)
	SourceRetryMax   int

	// Rate limiting for outbound source calls
	RateLimitRPS   int
	RateLimitBurst int

	// Optional quote cache (enabled when RedisAddr is set)
	RedisAddr     string
	RedisDB       int
	RedisPass     string
	QuoteCacheTTL time.Duration

	// Optional price history (enabled when DatabaseURL is set)
	DatabaseURL string

	// Optional event publishing (enabled when NATSURL is set)
	NATSURL         string
	OutboundSubject string

	// Optional API key resolution from AWS Secrets Manager
	AWSRegion     string
	SecretsPrefix string // e.g. "pricecheck/sources/" — empty disables AWS resolution
	CacheTTL      time.Duration
	CleanupFreq   time.Duration
}

// Load loads configuration from environment variables and .env file if present.
func Load() *Config {
	// load .env silently (no error if missing)
	_ = godotenv.Load()

	cfg := &Config{
		ServiceName: GetEnv("SERVICE_NAME", "pricecheck"),
		Env:         GetEnv("ENV", "dev"),
		LogLevel:    GetEnv("LOG_LEVEL", "info"),
		Port:        GetEnvInt("PORT", 8080),

		HTTPReadTimeout:  GetEnvDuration("HTTP_READ_TIMEOUT", 10*time.Second),
		HTTPWriteTimeout: GetEnvDuration("HTTP_WRITE_TIMEOUT", 10*time.Second),
		HTTPIdleTimeout:  GetEnvDuration("HTTP_IDLE_TIMEOUT", 60*time.Second),
		HTTPBodyLimit:    GetEnvInt("HTTP_BODY_LIMIT", 1*1024*1024),

		CheckDeadline: GetEnvDuration("CHECK_DEADLINE", 2*time.Second),
		CollectGrace:  GetEnvDuration("COLLECT_GRACE", 50*time.Millisecond),

		ROITargets:         parseROITargets(GetEnv("ROI_TARGETS", "1.5,2.0")),
		AdvancedROITargets: parseROITargets(GetEnv("ADVANCED_ROI_TARGETS", "1.25,1.5,1.75,2.0,2.5,3.0")),

		StockXFeePct:      GetEnvDecimal("STOCKX_FEE_PCT", "0.095"),
		StockXShipping:    GetEnvDecimal("STOCKX_SHIPPING", "15.0"),
		GoatFeePct:        GetEnvDecimal("GOAT_FEE_PCT", "0.095"),
		GoatShipping:      GetEnvDecimal("GOAT_SHIPPING", "15.0"),
		KicksCrewFeePct:   GetEnvDecimal("KICKSCREW_FEE_PCT", "0.08"),
		KicksCrewShipping: GetEnvDecimal("KICKSCREW_SHIPPING", "20.0"),

		StockXBaseURL:    GetEnv("STOCKX_BASE_URL", "https://stockx-pricing-data-and-market-analytics.p.rapidapi.com"),
		StockXAPIKey:     GetEnv("STOCKX_API_KEY", ""),
		GoatBaseURL:      GetEnv("GOAT_BASE_URL", "https://www.goat.com"),
		KicksCrewBaseURL: GetEnv("KICKSCREW_BASE_URL", "https://kickscrew-sneakers-data.p.rapidapi.com"),
		KicksCrewAPIKey:  GetEnv("KICKSCREW_API_KEY", ""),
		SourceTimeout:    GetEnvDuration("SOURCE_TIMEOUT", 5*time.Second),
		SourceRetryMax:   GetEnvInt("SOURCE_RETRY_MAX", 1),

		RateLimitRPS:   GetEnvInt("RATE_LIMIT_RPS", 10),
		RateLimitBurst: GetEnvInt("RATE_LIMIT_BURST", 20),

		RedisAddr:     GetEnv("REDIS_ADDR", ""),
		RedisDB:       GetEnvInt("REDIS_DB", 0),
		RedisPass:     GetEnv("REDIS_PASS", ""),
		QuoteCacheTTL: GetEnvDuration("QUOTE_CACHE_TTL", 30*time.Second),

		DatabaseURL: GetEnv("DATABASE_URL", ""),

		NATSURL:         GetEnv("NATS_URL", ""),
		OutboundSubject: GetEnv("OUTBOUND_SUBJECT", "evt.pricecheck.completed.v1"),

		AWSRegion:     GetEnv("AWS_REGION", "us-east-2"),
		SecretsPrefix: GetEnv("SECRETS_PREFIX", ""),
		CacheTTL:      GetEnvDuration("CACHE_TTL", 24*time.Hour),
		CleanupFreq:   GetEnvDuration("CACHE_CLEANUP_FREQ", 10*time.Minute),
	}

	return cfg
}

// parseROITargets parses a comma-separated list of ROI multipliers.
// Entries that fail to parse or are not greater than 1 are dropped.
func parseROITargets(raw string) []decimal.Decimal {
	one := decimal.NewFromInt(1)
	var out []decimal.Decimal
	for _, part := range strings.Split(raw, ",") {
		d, err := decimal.NewFromString(strings.TrimSpace(part))
		if err != nil || !d.GreaterThan(one) {
			continue
		}
		out = append(out, d)
	}
	return out
}
