// Package metrics provides centralized Prometheus metrics for the application.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics track HTTP request patterns and performance
var (
	// HTTPRequestsTotal counts total HTTP requests by method, path, and status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration measures HTTP request duration in seconds
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// ActiveConnections tracks the number of in-flight HTTP requests
	ActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_connections",
			Help: "Number of active HTTP connections",
		},
	)
)

// Content retrieval metrics
var (
	// StrategyAttemptsTotal counts strategy invocations by channel, strategy and outcome
	// (success, empty, error).
	StrategyAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "content_strategy_attempts_total",
			Help: "Total number of content retrieval strategy attempts",
		},
		[]string{"strategy", "outcome"},
	)

	// StrategyErrorsTotal counts strategy failures by error kind
	StrategyErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "content_strategy_errors_total",
			Help: "Total number of content retrieval failures by kind",
		},
		[]string{"strategy", "kind"},
	)

	// StrategyDuration measures time spent in one strategy
	StrategyDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "content_strategy_duration_seconds",
			Help:    "Time taken by a content retrieval strategy",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		},
		[]string{"strategy"},
	)

	// ItemsFetchedTotal counts content items returned per strategy
	ItemsFetchedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "content_items_fetched_total",
			Help: "Total number of content items returned by strategies",
		},
		[]string{"strategy"},
	)

	// ContentEnrichTotal counts full-article enrichment attempts by status
	ContentEnrichTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "content_enrich_total",
			Help: "Total number of article enrichment attempts",
		},
		[]string{"status"},
	)
)

// Classification and report metrics
var (
	// ClassificationsTotal counts classifications by parse outcome (structured, salvaged, failed)
	ClassificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classifications_total",
			Help: "Total number of content classifications by outcome",
		},
		[]string{"outcome"},
	)

	// ReportsBuiltTotal counts report builds by channel and status
	ReportsBuiltTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reports_built_total",
			Help: "Total number of reports built",
		},
		[]string{"channel", "status"},
	)

	// ReportBuildDuration measures end-to-end report build time
	ReportBuildDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "report_build_duration_seconds",
			Help:    "Time taken to build a report",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
		},
		[]string{"channel"},
	)

	// ReportCacheTotal counts report cache lookups by result (hit, miss, error)
	ReportCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "report_cache_lookups_total",
			Help: "Total number of report cache lookups",
		},
		[]string{"result"},
	)

	// MarketDataRequestsTotal counts quote lookups by status
	MarketDataRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "market_data_requests_total",
			Help: "Total number of market data lookups",
		},
		[]string{"status"},
	)
)

// Database metrics
var (
	// DBQueryDuration measures archive query durations
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
)
