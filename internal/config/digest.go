// Package config assembles the application settings of the digest binary
// from environment variables.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	pkgconfig "newsdigest/internal/pkg/config"
	"newsdigest/internal/usecase/fetch"
	"newsdigest/pkg/config"
)

// DigestConfig holds everything one pipeline run needs besides the
// rewriter, fetcher and publisher settings, which their packages load.
type DigestConfig struct {
	// FeedsFile lists the RSS feeds (.xlsx, .yaml or .csv).
	FeedsFile string
	// OutputDir receives content.json, scraped_articles.json and rendered assets.
	OutputDir string

	// LLMProvider selects the rewrite backend: gemini, genai, claude or openai.
	LLMProvider string

	Timezone     string
	StartHour    int
	EndHour      int
	MaxArticles  int
	MaxPerFeed   int
	RequestDelay time.Duration

	// SkipPublish stops the run after the output files are written.
	SkipPublish bool

	Render RenderConfig

	LogLevel  string
	LogFormat string
}

// RenderConfig controls the offline assets produced from the thread.
type RenderConfig struct {
	MarkdownEnabled bool
	CardsEnabled    bool
	// BackgroundImage is drawn under every card; empty uses a plain canvas.
	BackgroundImage string
	// FontPath is a TrueType font for the cards; empty uses the built-in face.
	FontPath string
}

var llmProviders = []string{"gemini", "genai", "claude", "openai"}

// DefaultDigestConfig returns the defaults of the daily run.
func DefaultDigestConfig() *DigestConfig {
	return &DigestConfig{
		FeedsFile:    "rss.xlsx",
		OutputDir:    "output",
		LLMProvider:  "gemini",
		Timezone:     "Asia/Kolkata",
		StartHour:    0,
		EndHour:      19,
		MaxArticles:  10,
		MaxPerFeed:   6,
		RequestDelay: 300 * time.Millisecond,
		Render: RenderConfig{
			MarkdownEnabled: true,
			CardsEnabled:    true,
		},
		LogLevel:  "info",
		LogFormat: "json",
	}
}

// LoadDigestConfig reads the environment and validates the result.
//
// Environment variables:
//   - FEEDS_FILE, OUTPUT_DIR, LLM_PROVIDER
//   - DIGEST_TIMEZONE, DIGEST_START_HOUR, DIGEST_END_HOUR
//   - DIGEST_MAX_ARTICLES, DIGEST_MAX_PER_FEED, DIGEST_REQUEST_DELAY
//   - SKIP_PUBLISH
//   - RENDER_MARKDOWN, RENDER_CARDS, CARD_BACKGROUND_IMAGE, CARD_FONT_PATH
//   - LOG_LEVEL, LOG_FORMAT
func LoadDigestConfig() (*DigestConfig, error) {
	d := DefaultDigestConfig()
	cfg := &DigestConfig{
		FeedsFile:    config.GetEnvString("FEEDS_FILE", d.FeedsFile),
		OutputDir:    config.GetEnvString("OUTPUT_DIR", d.OutputDir),
		LLMProvider:  strings.ToLower(config.GetEnvString("LLM_PROVIDER", d.LLMProvider)),
		Timezone:     config.GetEnvString("DIGEST_TIMEZONE", d.Timezone),
		StartHour:    config.GetEnvInt("DIGEST_START_HOUR", d.StartHour),
		EndHour:      config.GetEnvInt("DIGEST_END_HOUR", d.EndHour),
		MaxArticles:  config.GetEnvInt("DIGEST_MAX_ARTICLES", d.MaxArticles),
		MaxPerFeed:   config.GetEnvInt("DIGEST_MAX_PER_FEED", d.MaxPerFeed),
		RequestDelay: config.GetEnvDuration("DIGEST_REQUEST_DELAY", d.RequestDelay),
		SkipPublish:  config.GetEnvBool("SKIP_PUBLISH", d.SkipPublish),
		Render: RenderConfig{
			MarkdownEnabled: config.GetEnvBool("RENDER_MARKDOWN", d.Render.MarkdownEnabled),
			CardsEnabled:    config.GetEnvBool("RENDER_CARDS", d.Render.CardsEnabled),
			BackgroundImage: config.GetEnvString("CARD_BACKGROUND_IMAGE", ""),
			FontPath:        config.GetEnvString("CARD_FONT_PATH", ""),
		},
		LogLevel:  config.GetEnvString("LOG_LEVEL", d.LogLevel),
		LogFormat: config.GetEnvString("LOG_FORMAT", d.LogFormat),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid digest configuration: %w", err)
	}
	return cfg, nil
}

// Validate returns every invalid field joined into one error.
func (c *DigestConfig) Validate() error {
	var errs []error

	if c.FeedsFile == "" {
		errs = append(errs, errors.New("feeds file is required"))
	}
	if c.OutputDir == "" {
		errs = append(errs, errors.New("output dir is required"))
	}
	if !slices.Contains(llmProviders, c.LLMProvider) {
		errs = append(errs, fmt.Errorf("llm provider %q: must be one of %s", c.LLMProvider, strings.Join(llmProviders, ", ")))
	}
	if err := pkgconfig.ValidateTimezone(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}
	if err := pkgconfig.ValidateHourWindow(c.StartHour, c.EndHour); err != nil {
		errs = append(errs, fmt.Errorf("hour window: %w", err))
	}
	if err := pkgconfig.ValidateIntRange(c.MaxArticles, 1, 10); err != nil {
		errs = append(errs, fmt.Errorf("max articles: %w", err))
	}
	if err := pkgconfig.ValidateIntRange(c.MaxPerFeed, 1, 100); err != nil {
		errs = append(errs, fmt.Errorf("max per feed: %w", err))
	}
	if err := pkgconfig.ValidateNonNegativeDuration(c.RequestDelay); err != nil {
		errs = append(errs, fmt.Errorf("request delay: %w", err))
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		errs = append(errs, fmt.Errorf("log format %q: must be json or text", c.LogFormat))
	}

	return errors.Join(errs...)
}

// Location resolves Timezone, falling back to UTC.
func (c *DigestConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// FetchConfig derives the collector settings. The refill minimum equals the
// article cap so a quiet day still yields a full digest.
func (c *DigestConfig) FetchConfig() fetch.Config {
	f := fetch.DefaultConfig()
	f.MaxArticles = c.MaxArticles
	f.MinArticles = c.MaxArticles
	f.MaxPerFeed = c.MaxPerFeed
	f.RequestDelay = c.RequestDelay
	f.Location = c.Location()
	f.StartHour = c.StartHour
	f.EndHour = c.EndHour
	return f
}
