package fetch

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"
)

type stubFetcher struct {
	mu    sync.Mutex
	feeds map[string][]FeedItem
	errs  map[string]error
	calls []string
}

func (s *stubFetcher) Fetch(_ context.Context, url string) ([]FeedItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, url)
	if err, ok := s.errs[url]; ok {
		return nil, err
	}
	return s.feeds[url], nil
}

type stubContent struct {
	pages map[string]string
}

func (s stubContent) FetchContent(_ context.Context, url string) (string, error) {
	page, ok := s.pages[url]
	if !ok {
		return "", errors.New("not found")
	}
	return page, nil
}

var testLoc = time.FixedZone("IST", 5*3600+1800)

// testNow is 2026-03-10 12:00 in testLoc.
var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, testLoc)

func at(hour int, dayOffset int) *time.Time {
	t := time.Date(2026, 3, 10+dayOffset, hour, 0, 0, 0, testLoc)
	return &t
}

func item(title string, published *time.Time) FeedItem {
	return FeedItem{
		Title:       title,
		Link:        "https://example.com/" + title,
		Summary:     "summary of " + title,
		PublishedAt: published,
	}
}

func testCollectorConfig() Config {
	return Config{
		MaxArticles: 10,
		MinArticles: 10,
		MaxPerFeed:  6,
		Location:    testLoc,
		StartHour:   0,
		EndHour:     19,
		EnrichLimit: 20,
	}
}

func newTestCollector(f FeedFetcher, cfg Config, opts ...CollectorOption) *Collector {
	opts = append([]CollectorOption{
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithClock(func() time.Time { return testNow }),
	}, opts...)
	return NewCollector(f, cfg, opts...)
}
