package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Tracks outbound lookups to marketplace sources.
	SourceRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricecheck_source_requests_total",
			Help: "Total number of marketplace source lookups (by platform and result).",
		},
		[]string{"platform", "result"}, // result = "ok" | "timeout" | "not_found" | "upstream_error"
	)

	// Measures duration of individual source lookups.
	SourceFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pricecheck_source_fetch_duration_seconds",
			Help:    "Duration of marketplace source lookups in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 13), // 1ms → ~4s
		},
		[]string{"platform"},
	)

	// Tracks completed price checks by outcome.
	ChecksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricecheck_checks_total",
			Help: "Total number of price checks (by outcome: full, partial, empty).",
		},
		[]string{"outcome"},
	)

	// Measures total fan-out duration per price check.
	AggregationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pricecheck_aggregation_duration_seconds",
			Help:    "Wall-clock duration of the full fan-out/collect cycle.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 11), // 5ms → ~5s
		},
	)

	// Tracks quote cache hits and misses.
	QuoteCacheAccess = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricecheck_quote_cache_access_total",
			Help: "Number of quote cache hits/misses.",
		},
		[]string{"result"}, // hit | miss
	)

	// Tracks NATS messages published by subject and result.
	NATSMessageCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricecheck_nats_messages_total",
			Help: "Total number of NATS messages published.",
		},
		[]string{"subject", "result"}, // result = "ok" | "error"
	)

	// Tracks total errors (aggregated).
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricecheck_errors_total",
			Help: "Count of service-level errors by component.",
		},
		[]string{"component", "reason"},
	)
)

// ObserveDuration records the time taken since start into the given histogram.
func ObserveDuration(v interface{}, start time.Time, labels ...string) {
	duration := time.Since(start).Seconds()

	switch metric := v.(type) {
	case *prometheus.HistogramVec:
		metric.WithLabelValues(labels...).Observe(duration)
	case prometheus.Histogram:
		metric.Observe(duration)
	default:
		// counters are not meant for duration tracking
	}
}

func IncSourceRequest(platform, result string) {
	SourceRequestsTotal.WithLabelValues(platform, result).Inc()
}

func IncCheck(outcome string) {
	ChecksTotal.WithLabelValues(outcome).Inc()
}

func IncCacheAccess(result string) {
	QuoteCacheAccess.WithLabelValues(result).Inc()
}

func IncNATSMessage(subject, result string) {
	NATSMessageCount.WithLabelValues(subject, result).Inc()
}

func IncError(component, reason string) {
	ErrorsTotal.WithLabelValues(component, reason).Inc()
}
