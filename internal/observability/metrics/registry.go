// Package metrics provides centralized Prometheus metrics for the application.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Digest run metrics track the daily pipeline as a whole
var (
	// DigestRunsTotal counts pipeline runs by final status
	DigestRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "digest_runs_total",
			Help: "Total number of digest pipeline runs",
		},
		[]string{"status"}, // status: success, empty, canceled, failure
	)

	// DigestRunDuration measures end-to-end pipeline duration
	DigestRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "digest_run_duration_seconds",
			Help:    "Time taken by one digest pipeline run",
			Buckets: prometheus.ExponentialBuckets(5, 2, 10),
		},
	)

	// DigestLastSuccessTimestamp is the unix time of the last successful run
	DigestLastSuccessTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "digest_last_success_timestamp_seconds",
			Help: "Unix timestamp of the last successful digest run",
		},
	)

	// DigestItemsTotal counts digest items by origin
	DigestItemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "digest_items_total",
			Help: "Total number of digest items produced",
		},
		[]string{"origin"}, // origin: rewritten, original
	)
)

// Feed metrics track RSS collection
var (
	// ArticlesFetchedTotal counts articles taken from each feed
	ArticlesFetchedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "articles_fetched_total",
			Help: "Total number of articles fetched from feeds",
		},
		[]string{"feed"},
	)

	// ArticlesCollected tracks the size of the last collected digest input
	ArticlesCollected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "articles_collected",
			Help: "Number of articles selected by the last collection",
		},
	)

	// FeedCrawlDuration measures time to crawl a feed
	FeedCrawlDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "feed_crawl_duration_seconds",
			Help:    "Time taken to crawl a feed",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		},
		[]string{"feed"},
	)

	// FeedCrawlErrors counts errors during feed crawling
	FeedCrawlErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_crawl_errors_total",
			Help: "Total number of feed crawl errors",
		},
		[]string{"feed", "error_type"},
	)

	// ArticlesDuplicatedTotal counts articles dropped as duplicates
	ArticlesDuplicatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "articles_duplicated_total",
			Help: "Total number of articles dropped as duplicates",
		},
		[]string{"key"}, // key: title, link, content
	)
)

// Content fetch metrics track readability enrichment
var (
	// ContentFetchAttemptsTotal counts content fetch attempts by result
	ContentFetchAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "content_fetch_attempts_total",
			Help: "Total number of content fetch attempts",
		},
		[]string{"result"}, // result: success, failure, skipped
	)

	// ContentFetchDuration measures time to fetch article content
	ContentFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "content_fetch_duration_seconds",
			Help:    "Time taken to fetch article content",
			Buckets: []float64{0.1, 0.2, 0.4, 0.8, 1.6, 3.2, 6.4, 12.8},
		},
	)

	// ContentFetchSize measures fetched content size in bytes
	ContentFetchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "content_fetch_size_bytes",
			Help:    "Fetched article content size in bytes",
			Buckets: prometheus.ExponentialBuckets(100, 2, 18),
		},
	)
)

// Publishing metrics track outbound posts
var (
	// PostsPublishedTotal counts posts by channel and status
	PostsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "posts_published_total",
			Help: "Total number of posts sent to publishing channels",
		},
		[]string{"channel", "status"}, // status: success, failure, skipped
	)

	// PublishDuration measures time to publish one thread to a channel
	PublishDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "publish_duration_seconds",
			Help:    "Time taken to publish a thread to a channel",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		},
		[]string{"channel"},
	)
)

// Circuit breaker metrics cover every breaker created by the resilience package
var (
	// CircuitBreakerState is 0 closed, 1 half-open, 2 open
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Current circuit breaker state (0 closed, 1 half-open, 2 open)",
		},
		[]string{"name"},
	)

	// CircuitBreakerRejectionsTotal counts calls refused without being attempted
	CircuitBreakerRejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_rejections_total",
			Help: "Total number of calls rejected by an open or half-open circuit breaker",
		},
		[]string{"name"},
	)
)
