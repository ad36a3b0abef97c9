// Package fetch collects today's articles from a list of RSS/Atom feeds.
// It applies the publication window, removes duplicates, refills from older
// items when the day was quiet, and optionally fills empty summaries from the
// article page.
package fetch

import "errors"

var (
	// ErrNoFeeds is returned by Collect for an empty feed list.
	ErrNoFeeds = errors.New("no feeds configured")

	// ErrFeedFetchFailed wraps a feed that could not be downloaded.
	ErrFeedFetchFailed = errors.New("failed to fetch feed from source")

	// ErrInvalidFeedFormat wraps a feed body that is neither RSS nor Atom.
	ErrInvalidFeedFormat = errors.New("invalid feed format")
)

// Errors returned by ContentFetcher implementations.
var (
	ErrInvalidURL        = errors.New("invalid URL or unsupported scheme")
	ErrPrivateIP         = errors.New("private IP access denied")
	ErrTooManyRedirects  = errors.New("too many redirects")
	ErrBodyTooLarge      = errors.New("response body too large")
	ErrTimeout           = errors.New("request timeout")
	ErrReadabilityFailed = errors.New("content extraction failed")
)
