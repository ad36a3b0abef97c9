package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"newsdigest/internal/domain/entity"
	"newsdigest/internal/observability/metrics"
	"newsdigest/internal/resilience/retry"
	"newsdigest/internal/utils/text"
)

// Config controls one collection run.
type Config struct {
	// MaxArticles caps the result.
	MaxArticles int
	// MinArticles triggers the refill pass when the window yielded fewer.
	MinArticles int
	// MaxPerFeed limits how many leading items of each feed are considered.
	MaxPerFeed int
	// RequestDelay is the pause between two feeds.
	RequestDelay time.Duration

	Location  *time.Location
	StartHour int
	EndHour   int

	// EnrichLimit is the rune length of page text used for an empty summary.
	EnrichLimit int
}

// DefaultConfig returns the defaults of the daily digest.
func DefaultConfig() Config {
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		loc = time.UTC
	}
	return Config{
		MaxArticles:  10,
		MinArticles:  10,
		MaxPerFeed:   6,
		RequestDelay: 300 * time.Millisecond,
		Location:     loc,
		StartHour:    0,
		EndHour:      19,
		EnrichLimit:  500,
	}
}

// CollectStats summarises a collection run.
type CollectStats struct {
	Feeds      int
	FeedErrors int
	FeedItems  int
	InWindow   int
	Refilled   int
	Duplicates int
	Enriched   int
	Collected  int
	Duration   time.Duration
}

// Collector gathers articles from feeds.
type Collector struct {
	fetcher FeedFetcher
	content ContentFetcher
	cfg     Config
	logger  *slog.Logger
	now     func() time.Time
}

// CollectorOption configures a Collector.
type CollectorOption func(*Collector)

// WithContentFetcher enables filling empty summaries from the article page.
func WithContentFetcher(cf ContentFetcher) CollectorOption {
	return func(c *Collector) {
		c.content = cf
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) CollectorOption {
	return func(c *Collector) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) CollectorOption {
	return func(c *Collector) {
		c.now = now
	}
}

// NewCollector creates a Collector.
func NewCollector(fetcher FeedFetcher, cfg Config, opts ...CollectorOption) *Collector {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	c := &Collector{
		fetcher: fetcher,
		cfg:     cfg,
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Collect fetches every feed once and returns at most MaxArticles articles,
// newest first, with ids 1..n.
//
// Items inside today's window come first. When they number fewer than
// MinArticles, older items of the same feeds are appended in feed order until
// the minimum is reached. A failing feed is logged and skipped.
func (c *Collector) Collect(ctx context.Context, feeds []string) ([]entity.Article, *CollectStats, error) {
	start := time.Now()
	stats := &CollectStats{Feeds: len(feeds)}
	if len(feeds) == 0 {
		return nil, stats, ErrNoFeeds
	}

	window := TodayWindow(c.now(), c.cfg.Location, c.cfg.StartHour, c.cfg.EndHour)
	filter := newSeenFilter()
	fetched := make([][]entity.Article, len(feeds))

	var articles []entity.Article
	for i, feedURL := range feeds {
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}
		fetched[i] = c.fetchFeed(ctx, feedURL, stats)
		for _, a := range fetched[i] {
			if a.PublishedAt != nil && !window.Contains(*a.PublishedAt) {
				continue
			}
			if c.accept(filter, a, stats) {
				articles = append(articles, a)
			}
		}
		if i < len(feeds)-1 {
			if err := retry.Sleep(ctx, c.cfg.RequestDelay); err != nil {
				return nil, stats, err
			}
		}
	}
	stats.InWindow = len(articles)
	sortNewestFirst(articles)

	if len(articles) < c.cfg.MinArticles {
		c.logger.WarnContext(ctx, "few fresh articles found, filling with older ones",
			slog.Int("fresh", len(articles)),
			slog.Int("min_articles", c.cfg.MinArticles))
	refill:
		for _, items := range fetched {
			for _, a := range items {
				if len(articles) >= c.cfg.MinArticles {
					break refill
				}
				if c.accept(filter, a, stats) {
					articles = append(articles, a)
					stats.Refilled++
				}
			}
		}
	}

	if c.cfg.MaxArticles > 0 && len(articles) > c.cfg.MaxArticles {
		articles = articles[:c.cfg.MaxArticles]
	}
	for i := range articles {
		articles[i].ID = i + 1
	}

	if c.content != nil {
		c.enrich(ctx, articles, stats)
	}

	stats.Collected = len(articles)
	stats.Duration = time.Since(start)
	metrics.UpdateArticlesCollected(stats.Collected)

	c.logger.InfoContext(ctx, "article collection completed",
		slog.Int("feeds", stats.Feeds),
		slog.Int("feed_errors", stats.FeedErrors),
		slog.Int("feed_items", stats.FeedItems),
		slog.Int("in_window", stats.InWindow),
		slog.Int("refilled", stats.Refilled),
		slog.Int("duplicates", stats.Duplicates),
		slog.Int("collected", stats.Collected),
		slog.Duration("duration", stats.Duration))

	return articles, stats, nil
}

// fetchFeed returns the leading titled items of one feed as articles.
func (c *Collector) fetchFeed(ctx context.Context, feedURL string, stats *CollectStats) []entity.Article {
	start := time.Now()
	items, err := c.fetcher.Fetch(ctx, feedURL)
	metrics.RecordFeedCrawl(feedURL, time.Since(start))
	if err != nil {
		stats.FeedErrors++
		metrics.RecordFeedCrawlError(feedURL, "fetch_failed")
		c.logger.WarnContext(ctx, "failed to fetch feed",
			slog.String("feed_url", feedURL),
			slog.Any("error", fmt.Errorf("%w: %w", ErrFeedFetchFailed, err)))
		return nil
	}

	if c.cfg.MaxPerFeed > 0 && len(items) > c.cfg.MaxPerFeed {
		items = items[:c.cfg.MaxPerFeed]
	}

	source := hostOf(feedURL)
	out := make([]entity.Article, 0, len(items))
	for _, it := range items {
		a := entity.Article{
			Title:       strings.TrimSpace(it.Title),
			Summary:     strings.TrimSpace(it.Summary),
			Link:        strings.TrimSpace(it.Link),
			Source:      source,
			Published:   it.Published,
			PublishedAt: it.PublishedAt,
		}
		if a.Validate() != nil {
			continue
		}
		out = append(out, a)
	}
	stats.FeedItems += len(out)
	metrics.RecordArticlesFetched(feedURL, len(out))
	return out
}

func (c *Collector) accept(filter *seenFilter, a entity.Article, stats *CollectStats) bool {
	if key := filter.seen(a); key != "" {
		stats.Duplicates++
		metrics.RecordDuplicate(key)
		return false
	}
	filter.add(a)
	return true
}

// enrich fills empty summaries with the start of the page text. Failures keep
// the empty summary.
func (c *Collector) enrich(ctx context.Context, articles []entity.Article, stats *CollectStats) {
	for i := range articles {
		a := &articles[i]
		if a.Summary != "" || a.Link == "" {
			metrics.RecordContentFetchSkipped()
			continue
		}

		start := time.Now()
		content, err := c.content.FetchContent(ctx, a.Link)
		if err != nil {
			metrics.RecordContentFetchFailed(time.Since(start))
			c.logger.WarnContext(ctx, "content fetch failed, keeping empty summary",
				slog.String("url", a.Link),
				slog.Any("error", err))
			continue
		}
		metrics.RecordContentFetchSuccess(time.Since(start), len(content))

		a.Summary = strings.TrimSpace(text.TruncateRunes(text.CollapseSpaces(content), c.cfg.EnrichLimit))
		if a.Summary != "" {
			stats.Enriched++
		}
	}
}

// sortNewestFirst orders dated articles by time descending; undated ones keep
// their relative order at the end.
func sortNewestFirst(articles []entity.Article) {
	sort.SliceStable(articles, func(i, j int) bool {
		ti, tj := articles[i].PublishedAt, articles[j].PublishedAt
		switch {
		case ti == nil:
			return false
		case tj == nil:
			return true
		default:
			return ti.After(*tj)
		}
	})
}
