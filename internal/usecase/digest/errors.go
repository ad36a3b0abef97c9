// Package digest runs the daily pipeline: collect today's articles, rewrite
// them into headings and summaries, build the per-platform thread, persist
// it, render the offline assets and publish the thread.
package digest

import "errors"

// Sentinel errors for digest runs.
var (
	// ErrNoArticles indicates that no feed yielded an article.
	ErrNoArticles = errors.New("no articles scraped")

	// ErrNoRewrites indicates that the model returned nothing for any article.
	ErrNoRewrites = errors.New("no rewrite results")
)
