// Package metrics provides Prometheus metrics registry and recording utilities.
//
// This package centralizes the pipeline-level metrics:
//   - Digest run outcomes and duration
//   - Feed crawl counts, durations and errors
//   - Content enrichment attempts
//   - Posts published per channel
//
// Rewriter metrics live next to the rewriter (internal/usecase/rewrite).
// All metrics are registered with the Prometheus default registry
// and exposed via the /metrics endpoint of cmd/digest.
//
// Example usage:
//
//	import "newsdigest/internal/observability/metrics"
//
//	func collect(feed string) {
//	    start := time.Now()
//	    // ... fetch the feed ...
//	    metrics.RecordArticlesFetched(feed, 6)
//	    metrics.RecordFeedCrawl(feed, time.Since(start))
//	}
package metrics
