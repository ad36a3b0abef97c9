// Package tracing provides OpenTelemetry tracing integration.
//
// Spans are created through the global tracer provider; exporter setup is left to
// the deployment (OTEL_* environment or a wrapper binary). Without a provider the
// spans are no-ops.
//
// Features:
//   - HTTP server middleware for the health server
//   - Span helpers for pipeline stages and rewrite batches
//
// Example usage:
//
//	import "newsdigest/internal/observability/tracing"
//
//	func rewriteBatch(ctx context.Context) {
//	    ctx, span := tracing.StartSpan(ctx, "rewrite.batch")
//	    defer span.End()
//	    // ... call the model ...
//	}
package tracing
