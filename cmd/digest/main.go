// Package main runs the daily news digest: once, or on DIGEST_CRON_SCHEDULE.
// Usage: newsdigest [-once]
package main

import (
	"context"
	"crypto/tls"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"newsdigest/internal/config"
	"newsdigest/internal/infra/fetcher"
	"newsdigest/internal/infra/llm"
	"newsdigest/internal/infra/publisher"
	"newsdigest/internal/infra/render"
	"newsdigest/internal/infra/scraper"
	"newsdigest/internal/infra/sources"
	"newsdigest/internal/infra/store"
	"newsdigest/internal/infra/worker"
	"newsdigest/internal/observability/logging"
	"newsdigest/internal/usecase/digest"
	"newsdigest/internal/usecase/fetch"
	"newsdigest/internal/usecase/publish"
	"newsdigest/internal/usecase/rewrite"
)

func main() {
	once := flag.Bool("once", false, "run the digest once even when a cron schedule is configured")
	flag.Parse()

	cfg, err := config.LoadDigestConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(logging.Options{Format: cfg.LogFormat, Level: cfg.LogLevel})
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	workerMetrics := worker.NewMetrics(nil)
	workerConfig := worker.LoadConfigFromEnv(logger, workerMetrics)
	logger.Info("digest configuration loaded",
		slog.String("feeds_file", cfg.FeedsFile),
		slog.String("output_dir", cfg.OutputDir),
		slog.String("llm_provider", cfg.LLMProvider),
		slog.String("timezone", cfg.Timezone),
		slog.String("cron_schedule", workerConfig.CronSchedule),
		slog.Bool("skip_publish", cfg.SkipPublish))

	svc, cleanup, err := setupDigestService(cfg, logger)
	if err != nil {
		logger.Error("failed to set up digest service", slog.Any("error", err))
		os.Exit(1)
	}
	defer cleanup()

	job := func(ctx context.Context) (int, error) {
		feeds := sources.LoadFeedURLs(cfg.FeedsFile, logger)
		stats, err := svc.Run(ctx, feeds)
		if stats == nil {
			return 0, err
		}
		return stats.Items, err
	}
	scheduler := worker.NewScheduler(workerConfig, job, workerMetrics, logger)

	if *once || !workerConfig.Scheduled() {
		if err := scheduler.RunOnce(ctx); err != nil {
			cleanup()
			os.Exit(1)
		}
		return
	}

	healthServer := worker.NewHealthServer(fmt.Sprintf(":%d", workerConfig.MetricsPort), logger)
	healthServer.Handle("/metrics", promhttp.Handler())
	go func() {
		if err := healthServer.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()
	healthServer.SetReady(true)

	if err := scheduler.Start(ctx); err != nil {
		logger.Error("digest scheduler failed", slog.Any("error", err))
		cleanup()
		os.Exit(1)
	}
}

// setupDigestService wires the pipeline. The cleanup function releases the
// generator's client and must be called on shutdown.
func setupDigestService(cfg *config.DigestConfig, logger *slog.Logger) (*digest.Service, func(), error) {
	collector := setupCollector(cfg, logger)

	rewriteConfig := rewrite.LoadConfigFromEnv()
	keyEnv := llm.APIKeyEnv(cfg.LLMProvider)
	apiKey := os.Getenv(keyEnv)
	if apiKey == "" {
		logger.Error("API key is not set; rewriting will return no results", slog.String("env", keyEnv))
	}

	gen, err := llm.New(cfg.LLMProvider, apiKey,
		llm.WithLogger(logger),
		llm.WithMetrics(llm.NewPrometheusMetrics()))
	if err != nil {
		return nil, func() {}, fmt.Errorf("create generator: %w", err)
	}
	cleanup := func() {
		if c, ok := gen.(io.Closer); ok {
			if err := c.Close(); err != nil {
				logger.Error("failed to close generator", slog.Any("error", err))
			}
		}
	}

	rewriter, err := rewrite.New(gen, rewriteConfig,
		rewrite.WithLogger(logger),
		rewrite.WithMetrics(rewrite.NewPrometheusMetrics()))
	if err != nil {
		cleanup()
		return nil, func() {}, fmt.Errorf("create rewriter: %w", err)
	}

	opts := []digest.Option{digest.WithLogger(logger)}
	if cfg.Render.MarkdownEnabled {
		opts = append(opts, digest.WithExporter(render.NewMarkdownExporter(cfg.OutputDir)))
	}
	if cfg.Render.CardsEnabled {
		opts = append(opts, digest.WithCards(&render.CardRenderer{
			Dir:        cfg.OutputDir,
			Background: cfg.Render.BackgroundImage,
			FontPath:   cfg.Render.FontPath,
			Logger:     logger,
		}))
	}
	if !cfg.SkipPublish {
		opts = append(opts, digest.WithPublisher(setupPublisher(logger)))
	}

	svc := digest.NewService(collector, rewriter, store.New(cfg.OutputDir), digest.Config{
		Location:    cfg.Location(),
		BatchSize:   rewriteConfig.BatchSize,
		SkipPublish: cfg.SkipPublish,
	}, opts...)
	return svc, cleanup, nil
}

func setupCollector(cfg *config.DigestConfig, logger *slog.Logger) *fetch.Collector {
	feedFetcher := scraper.NewRSSFetcher(createHTTPClient())
	opts := []fetch.CollectorOption{fetch.WithLogger(logger)}

	contentFetchConfig, err := fetcher.LoadConfigFromEnv()
	if err != nil {
		logger.Warn("content fetching disabled due to configuration error", slog.Any("error", err))
		contentFetchConfig.Enabled = false
	}
	if contentFetchConfig.Enabled {
		opts = append(opts, fetch.WithContentFetcher(fetcher.NewReadabilityFetcher(contentFetchConfig)))
		logger.Info("content fetching enabled", slog.Duration("timeout", contentFetchConfig.Timeout))
	}

	return fetch.NewCollector(feedFetcher, cfg.FetchConfig(), opts...)
}

func setupPublisher(logger *slog.Logger) *publish.Service {
	candidates := []publish.Channel{
		publisher.NewTwitterChannel(publisher.LoadTwitterConfig(), logger),
		publisher.NewDiscordChannel(publisher.LoadDiscordConfig(), logger),
		publisher.NewSlackChannel(publisher.LoadSlackConfig(), logger),
		publisher.NewTelegramChannel(publisher.LoadTelegramConfig(), logger),
	}

	var channels []publish.Channel
	for _, ch := range candidates {
		if ch.IsEnabled() {
			channels = append(channels, ch)
			logger.Info("publish channel enabled", slog.String("channel", ch.Name()))
		} else {
			logger.Info("publish channel disabled", slog.String("channel", ch.Name()))
		}
	}
	return publish.NewService(channels, logger)
}

// createHTTPClient creates the feed client with timeouts and connection
// pooling. TLS 1.2+ is enforced.
func createHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
	}
}
