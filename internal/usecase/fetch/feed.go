package fetch

import (
	"context"
	"time"
)

// FeedFetcher is an interface for fetching RSS/Atom feeds from a URL.
type FeedFetcher interface {
	Fetch(ctx context.Context, url string) ([]FeedItem, error)
}

// FeedItem represents a single item from an RSS/Atom feed, in feed order.
type FeedItem struct {
	Title   string
	Link    string
	Summary string
	// Published is the raw date string of the feed.
	Published string
	// PublishedAt is nil when no known date format matched.
	PublishedAt *time.Time
}
