// Package tracing provides OpenTelemetry tracing integration.
//
// Report builds, strategy attempts and completion calls each run in a span:
//
//	ctx, span := tracing.StartSpan(ctx, "fetch.strategy", attribute.String("strategy", name))
//	defer func() { tracing.EndSpan(span, err) }()
//
// The HTTP middleware continues incoming W3C trace context and exposes the
// trace ID so that dashboard errors can be matched to server logs.
package tracing
