// Package observability groups structured logging, Prometheus metrics and
// OpenTelemetry tracing.
//
// Subpackages:
//   - logging: slog constructors and request-scoped loggers
//   - metrics: Prometheus collectors and Record* helpers
//   - tracing: tracer setup, spans and HTTP middleware
//
// Example usage:
//
//	import (
//	    "tickermate/internal/observability/logging"
//	    "tickermate/internal/observability/metrics"
//	)
//
//	func main() {
//	    logger := logging.NewLogger()
//	    logger.Info("application started")
//
//	    metrics.RecordStrategyError("feed", "timeout")
//	}
package observability
