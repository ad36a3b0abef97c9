// Package scraper provides implementations for fetching RSS/Atom feeds.
// It uses the gofeed library to parse feed content with reliability patterns.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mmcdole/gofeed"

	"newsdigest/internal/resilience/circuitbreaker"
	"newsdigest/internal/resilience/retry"
	"newsdigest/internal/usecase/fetch"
)

// DefaultUserAgent identifies the digest to feed servers.
const DefaultUserAgent = "NewsDigestBot/1.0"

// RSSFetcher implements fetch.FeedFetcher using the gofeed library.
// It includes circuit breaker and retry logic for improved reliability.
type RSSFetcher struct {
	client         *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
	userAgent      string
}

// NewRSSFetcher creates a new RSSFetcher with the given HTTP client.
// It automatically configures circuit breaker and retry logic.
func NewRSSFetcher(client *http.Client) *RSSFetcher {
	return &RSSFetcher{
		client:         client,
		circuitBreaker: circuitbreaker.New(circuitbreaker.FeedFetchConfig()),
		retryConfig:    retry.FeedFetchConfig(),
		userAgent:      DefaultUserAgent,
	}
}

// Fetch retrieves and parses an RSS/Atom feed from the given URL.
// Items keep feed order; summaries are plain text.
func (f *RSSFetcher) Fetch(ctx context.Context, feedURL string) ([]fetch.FeedItem, error) {
	var items []fetch.FeedItem

	retryErr := retry.WithBackoff(ctx, f.retryConfig, func() error {
		err := f.circuitBreaker.Run(func() error {
			var err error
			items, err = f.doFetch(ctx, feedURL)
			return err
		})
		if err != nil && circuitbreaker.IsOpenError(err) {
			slog.Warn("feed fetch circuit breaker open, request rejected",
				slog.String("service", f.circuitBreaker.Name()),
				slog.String("url", feedURL),
				slog.String("state", f.circuitBreaker.State().String()))
		}
		return err
	})
	if retryErr != nil {
		return nil, retryErr
	}

	return items, nil
}

// doFetch performs the actual feed fetch without retry or circuit breaker.
func (f *RSSFetcher) doFetch(ctx context.Context, feedURL string) ([]fetch.FeedItem, error) {
	fp := gofeed.NewParser()
	fp.UserAgent = f.userAgent
	fp.Client = f.client

	feed, err := fp.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		var httpErr gofeed.HTTPError
		if errors.As(err, &httpErr) {
			return nil, &retry.HTTPError{StatusCode: httpErr.StatusCode, Message: httpErr.Status}
		}
		if errors.Is(err, gofeed.ErrFeedTypeNotDetected) {
			return nil, fmt.Errorf("%w: %s", fetch.ErrInvalidFeedFormat, feedURL)
		}
		return nil, err
	}

	items := make([]fetch.FeedItem, 0, len(feed.Items))
	for _, it := range feed.Items {
		summary := it.Description
		if strings.TrimSpace(summary) == "" {
			summary = it.Content
		}

		published := it.Published
		pubAt := it.PublishedParsed
		if published == "" {
			published, pubAt = it.Updated, it.UpdatedParsed
		}
		if pubAt == nil {
			pubAt = ParseDate(published)
		}

		items = append(items, fetch.FeedItem{
			Title:       strings.TrimSpace(HTMLToText(it.Title)),
			Link:        strings.TrimSpace(it.Link),
			Summary:     HTMLToText(summary),
			Published:   published,
			PublishedAt: pubAt,
		})
	}

	return items, nil
}
