// Package metrics provides Prometheus metrics registry and recording utilities.
//
// This package centralizes all application metrics including:
//   - HTTP request metrics (duration, count)
//   - Content retrieval metrics per strategy
//   - Classification and report build metrics
//   - Database query metrics
//
// All metrics are registered with the Prometheus default registry and
// exposed via the /metrics endpoint.
//
// Example usage:
//
//	start := time.Now()
//	items, err := strategy.Fetch(ctx, q)
//	metrics.RecordStrategyAttempt(strategy.Name(), "success", time.Since(start), len(items))
package metrics
