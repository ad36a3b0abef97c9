package metrics

import (
	"time"
)

// RecordDigestRun records the outcome and duration of a pipeline run.
// A "success" status also moves the last-success timestamp.
func RecordDigestRun(status string, duration time.Duration) {
	DigestRunsTotal.WithLabelValues(status).Inc()
	DigestRunDuration.Observe(duration.Seconds())
	if status == "success" {
		DigestLastSuccessTimestamp.Set(float64(time.Now().Unix()))
	}
}

// RecordDigestItems records how many digest items came from the model
// and how many fell back to the original title and summary.
func RecordDigestItems(rewritten, original int) {
	DigestItemsTotal.WithLabelValues("rewritten").Add(float64(rewritten))
	DigestItemsTotal.WithLabelValues("original").Add(float64(original))
}

// RecordArticlesFetched records the number of articles taken from a feed.
func RecordArticlesFetched(feed string, count int) {
	ArticlesFetchedTotal.WithLabelValues(feed).Add(float64(count))
}

// RecordFeedCrawl records the duration of a feed crawl operation.
func RecordFeedCrawl(feed string, duration time.Duration) {
	FeedCrawlDuration.WithLabelValues(feed).Observe(duration.Seconds())
}

// RecordFeedCrawlError records an error during feed crawling.
func RecordFeedCrawlError(feed, errorType string) {
	FeedCrawlErrors.WithLabelValues(feed, errorType).Inc()
}

// RecordDuplicate records an article dropped by the dedup filter.
// Key is the dedup key that matched: title, link or content.
func RecordDuplicate(key string) {
	ArticlesDuplicatedTotal.WithLabelValues(key).Inc()
}

// UpdateArticlesCollected sets the number of articles selected by the last collection.
func UpdateArticlesCollected(count int) {
	ArticlesCollected.Set(float64(count))
}

// RecordContentFetchSuccess records a successful content fetch operation.
// This tracks both the duration and size of fetched content.
//
// Example:
//
//	start := time.Now()
//	content, err := fetcher.FetchContent(ctx, url)
//	if err == nil {
//	    RecordContentFetchSuccess(time.Since(start), len(content))
//	}
func RecordContentFetchSuccess(duration time.Duration, size int) {
	ContentFetchAttemptsTotal.WithLabelValues("success").Inc()
	ContentFetchDuration.Observe(duration.Seconds())
	ContentFetchSize.Observe(float64(size))
}

// RecordContentFetchFailed records a failed content fetch operation.
func RecordContentFetchFailed(duration time.Duration) {
	ContentFetchAttemptsTotal.WithLabelValues("failure").Inc()
	ContentFetchDuration.Observe(duration.Seconds())
}

// RecordContentFetchSkipped records a skipped content fetch operation.
// This occurs when the feed summary is already present.
func RecordContentFetchSkipped() {
	ContentFetchAttemptsTotal.WithLabelValues("skipped").Inc()
}

// RecordPost records one post sent (or not) to a channel.
func RecordPost(channel, status string) {
	PostsPublishedTotal.WithLabelValues(channel, status).Inc()
}

// RecordPublish records the time taken to publish a thread to a channel.
func RecordPublish(channel string, duration time.Duration) {
	PublishDuration.WithLabelValues(channel).Observe(duration.Seconds())
}

// SetCircuitBreakerState records the numeric state of breaker name.
func SetCircuitBreakerState(name string, state int) {
	CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}

// RecordCircuitBreakerRejection counts a call the breaker refused.
func RecordCircuitBreakerRejection(name string) {
	CircuitBreakerRejectionsTotal.WithLabelValues(name).Inc()
}
