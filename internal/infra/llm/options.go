// Package llm provides rewrite.Generator implementations for hosted
// generative-text APIs. Every adapter performs one outbound request per call,
// and normalises the reply into candidates and finish reasons. Retrying and
// model fallback are left to the caller, so adapters keep no failure state.
package llm

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// maxErrorBody caps how much of a failed response body ends up in errors and logs.
const maxErrorBody = 512

type settings struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	metrics    MetricsRecorder
}

// Option configures an adapter.
type Option func(*settings)

// WithBaseURL points the adapter at a different API root, mainly for tests.
func WithBaseURL(u string) Option {
	return func(s *settings) {
		s.baseURL = u
	}
}

// WithHTTPClient replaces the HTTP client used for outbound calls.
func WithHTTPClient(c *http.Client) Option {
	return func(s *settings) {
		if c != nil {
			s.httpClient = c
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m MetricsRecorder) Option {
	return func(s *settings) {
		if m != nil {
			s.metrics = m
		}
	}
}

func newSettings(defaultBaseURL string, opts []Option) settings {
	s := settings{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(&s)
	}
	if s.metrics == nil {
		s.metrics = NewPrometheusMetrics()
	}
	return s
}

// withRequestTimeout applies the per-request timeout unless the caller already
// set an earlier deadline.
func withRequestTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
