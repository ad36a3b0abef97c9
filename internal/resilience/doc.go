// Package resilience holds the failure-handling building blocks shared by the
// feed scraper, the page fetcher, the rewriter and the publishers:
//
//   - circuitbreaker: gobreaker presets, one breaker per endpoint
//   - retry: backoff with jitter, Retry-After aware
//   - ratelimit: a minimum-interval pacer for the rewrite calls
//
// A feed download is wrapped in both:
//
//	err := retry.WithBackoff(ctx, retry.FeedFetchConfig(), func() error {
//	    return cb.Run(func() error { return fetch(ctx) })
//	})
//
// Model calls only retry: every rewrite attempt has to reach the backend.
package resilience
