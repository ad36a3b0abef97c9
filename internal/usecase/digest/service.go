package digest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"newsdigest/internal/domain/entity"
	"newsdigest/internal/observability/logging"
	"newsdigest/internal/observability/metrics"
	"newsdigest/internal/observability/tracing"
	"newsdigest/internal/usecase/fetch"
	"newsdigest/internal/usecase/publish"
)

// Config controls one Service.
type Config struct {
	// Location is the zone of the digest date.
	Location *time.Location
	// BatchSize is the number of articles per rewrite call; zero sends all at once.
	BatchSize int
	// SkipPublish stops after the output files and assets are written.
	SkipPublish bool
}

// RunStats summarises a pipeline run.
type RunStats struct {
	RunID     string
	Date      time.Time
	Collect   *fetch.CollectStats
	Articles  int
	Rewritten int
	Items     int
	Posts     int
	Assets    []string
	Published []publish.Result
	Duration  time.Duration
}

// Service runs the digest pipeline.
type Service struct {
	collector Collector
	rewriter  Rewriter
	store     Store
	exporter  Exporter
	cards     CardRenderer
	publisher Publisher
	cfg       Config
	logger    *slog.Logger
	now       func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithExporter enables the markdown export.
func WithExporter(e Exporter) Option {
	return func(s *Service) { s.exporter = e }
}

// WithCards enables the image cards.
func WithCards(c CardRenderer) Option {
	return func(s *Service) { s.cards = c }
}

// WithPublisher enables publishing.
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a Service. collector, rewriter and store are required.
func NewService(collector Collector, rewriter Rewriter, store Store, cfg Config, opts ...Option) *Service {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	s := &Service{
		collector: collector,
		rewriter:  rewriter,
		store:     store,
		cfg:       cfg,
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run executes one pipeline run over feeds.
//
// The scraped articles are saved as soon as they are collected. The run ends
// with ErrNoArticles or ErrNoRewrites when a stage produced nothing; otherwise
// content.json is written and the optional stages follow. Export and card
// failures are logged and do not fail the run; a failed save does.
func (s *Service) Run(ctx context.Context, feeds []string) (stats *RunStats, err error) {
	start := time.Now()
	runID := logging.NewRunID()
	ctx = logging.ContextWithRunID(ctx, runID)
	logger := logging.WithRunID(ctx, s.logger)
	ctx = logging.WithLogger(ctx, logger)

	date := s.now().In(s.cfg.Location)
	stats = &RunStats{RunID: runID, Date: date}

	ctx, span := tracing.StartSpan(ctx, "digest.run",
		attribute.String("digest.run_id", runID),
		attribute.Int("digest.feeds", len(feeds)))
	defer func() {
		stats.Duration = time.Since(start)
		metrics.RecordDigestRun(runStatus(err), stats.Duration)
		tracing.EndSpan(span, err)
	}()

	logger.InfoContext(ctx, "digest run started",
		slog.Int("feeds", len(feeds)),
		slog.String("date", date.Format("2006-01-02")))

	articles, collectStats, err := s.collector.Collect(ctx, feeds)
	stats.Collect = collectStats
	if err != nil {
		return stats, fmt.Errorf("collect articles: %w", err)
	}
	stats.Articles = len(articles)
	if len(articles) == 0 {
		logger.ErrorContext(ctx, "no articles scraped")
		return stats, ErrNoArticles
	}
	if err := s.store.SaveArticles(articles); err != nil {
		return stats, fmt.Errorf("save articles: %w", err)
	}

	logger.InfoContext(ctx, "sending articles to the rewriter", slog.Int("articles", len(articles)))
	items := s.rewrite(ctx, articles)
	if len(items) == 0 {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		logger.ErrorContext(ctx, "no rewrite results")
		return stats, ErrNoRewrites
	}

	digest, rewritten := Merge(articles, items)
	stats.Rewritten = rewritten
	stats.Items = len(digest)
	metrics.RecordDigestItems(rewritten, len(digest)-rewritten)

	content := BuildThreadFormat(digest, date)
	if err := s.store.SaveContent(content); err != nil {
		return stats, fmt.Errorf("save content: %w", err)
	}
	logger.InfoContext(ctx, "digest content saved",
		slog.Int("items", len(digest)),
		slog.Int("rewritten", rewritten))

	threads := filledThreads(content.Twitter, len(digest))
	stats.Assets = append(stats.Assets, s.export(ctx, logger, threads, articles, date)...)
	cardPaths := s.renderCards(ctx, logger, filledThreads(content.Instagram, len(digest)), articles, date)
	stats.Assets = append(stats.Assets, cardPaths...)

	if s.cfg.SkipPublish || s.publisher == nil {
		logger.InfoContext(ctx, "publishing skipped")
		return stats, nil
	}

	posts := attachImages(publish.TweetFormatter().Thread(threads, articles, date), cardPaths)
	stats.Posts = len(posts)
	results, err := s.publisher.PublishThread(ctx, posts)
	stats.Published = results
	if err != nil {
		return stats, fmt.Errorf("publish thread: %w", err)
	}

	logger.InfoContext(ctx, "digest run completed",
		slog.Int("posts", len(posts)),
		slog.Int("channels", len(results)),
		slog.Duration("duration", time.Since(start)))
	return stats, nil
}

// rewrite sends the articles in BatchSize chunks and shifts each item's
// Position by the chunk offset so it indexes into articles.
func (s *Service) rewrite(ctx context.Context, articles []entity.Article) []entity.RewrittenItem {
	inputs := entity.Inputs(articles)
	size := s.cfg.BatchSize
	if size <= 0 || size > len(inputs) {
		size = len(inputs)
	}

	var all []entity.RewrittenItem
	for offset := 0; offset < len(inputs); offset += size {
		if ctx.Err() != nil {
			break
		}
		end := min(offset+size, len(inputs))
		for _, it := range s.rewriter.Rewrite(ctx, inputs[offset:end]) {
			it.Position += offset
			all = append(all, it)
		}
	}
	return all
}

func (s *Service) export(ctx context.Context, logger *slog.Logger, threads []entity.Thread, articles []entity.Article, date time.Time) []string {
	if s.exporter == nil {
		return nil
	}
	posts := publish.Formatter{}.Thread(threads, articles, date)
	mdPath, htmlPath, err := s.exporter.Export(posts, date)
	if err != nil {
		logger.WarnContext(ctx, "markdown export failed", slog.Any("error", err))
		return nil
	}
	logger.InfoContext(ctx, "markdown exported",
		slog.String("markdown", mdPath),
		slog.String("html", htmlPath))
	return []string{mdPath, htmlPath}
}

func (s *Service) renderCards(ctx context.Context, logger *slog.Logger, threads []entity.Thread, articles []entity.Article, date time.Time) []string {
	if s.cards == nil {
		return nil
	}
	paths, err := s.cards.RenderThread(threads, articles, date)
	if err != nil {
		logger.WarnContext(ctx, "card rendering failed",
			slog.Int("written", len(paths)),
			slog.Any("error", err))
		return paths
	}
	logger.InfoContext(ctx, "cards rendered", slog.Int("images", len(paths)))
	return paths
}

// attachImages pairs index.jpg with the index post and news{i}.jpg with the
// i-th detail post. The closing post never carries an image.
func attachImages(posts []entity.Post, images []string) []entity.Post {
	if len(images) == 0 || len(posts) == 0 {
		return posts
	}
	byName := make(map[string]string, len(images))
	for _, p := range images {
		byName[filepath.Base(p)] = p
	}

	posts[0].ImagePath = byName["index.jpg"]
	for i := 1; i < len(posts)-1; i++ {
		posts[i].ImagePath = byName[fmt.Sprintf("news%d.jpg", i)]
	}
	return posts
}

func runStatus(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrNoArticles), errors.Is(err, ErrNoRewrites):
		return "empty"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "failure"
	}
}
