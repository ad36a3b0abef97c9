// Package publisher implements the delivery channels behind publish.Channel:
// X/Twitter (OAuth1 user context), Discord and Slack webhooks, and Telegram.
package publisher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"newsdigest/internal/pkg/redact"
	"newsdigest/internal/resilience/retry"
	"newsdigest/internal/usecase/publish"
)

// maxErrorBody caps how much of an error response is kept in error messages.
const maxErrorBody = 512

// RateLimitError represents a 429 response.
type RateLimitError struct {
	RetryAfter time.Duration
	Message    string // Optional custom message
}

func (e *RateLimitError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s (retry after %v)", e.Message, e.RetryAfter)
	}
	return fmt.Sprintf("rate limit exceeded (retry after %v)", e.RetryAfter)
}

// ClientError represents a 4xx response other than 429.
type ClientError struct {
	StatusCode int
	Message    string
}

func (e *ClientError) Error() string {
	return e.Message
}

// ServerError represents a 5xx response.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	return e.Message
}

// statusError maps a non-2xx response to a typed error. body is truncated.
func statusError(service string, resp *http.Response, body []byte, retryAfter time.Duration) error {
	msg := strings.TrimSpace(string(body))
	if len(msg) > maxErrorBody {
		msg = msg[:maxErrorBody]
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		if retryAfter <= 0 {
			retryAfter = retryAfterHeader(resp)
		}
		return &RateLimitError{
			Message:    service + " rate limit exceeded",
			RetryAfter: retryAfter,
		}
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return &ClientError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("%s API client error (%d): %s", service, resp.StatusCode, msg),
		}
	case resp.StatusCode >= 500:
		return &ServerError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("%s API server error (%d): %s", service, resp.StatusCode, msg),
		}
	}
	return fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, msg)
}

// retryAfterHeader reads Retry-After, defaulting to 5s.
func retryAfterHeader(resp *http.Response) time.Duration {
	if d := retry.ParseRetryAfter(resp.Header.Get("Retry-After"), time.Now()); d > 0 {
		return d
	}
	return 5 * time.Second
}

// isRetryableError reports whether err is worth retrying (5xx, network errors).
// Client errors are not retryable; rate limits are handled separately.
func isRetryableError(err error) bool {
	var serverErr *ServerError
	if errors.As(err, &serverErr) {
		return true
	}

	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return false
	}

	var rateLimitErr *RateLimitError
	if errors.As(err, &rateLimitErr) {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return true
}

// retryPolicy controls deliver.
type retryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	// SkipOnRateLimit gives up on a post at the first 429 instead of waiting.
	SkipOnRateLimit bool
	// MaxRetryAfter bounds how long a 429 wait may be.
	MaxRetryAfter time.Duration
}

// deliver waits for the rate limiter, then calls send until it succeeds, fails
// with a non-retryable error, or runs out of attempts. Server errors back off
// linearly (BaseDelay, 2*BaseDelay, ...); rate limits wait for RetryAfter.
func deliver(ctx context.Context, logger *slog.Logger, service string, limiter *RateLimiter, policy retryPolicy, send func(context.Context) (string, error)) (string, error) {
	if limiter != nil {
		if err := limiter.Allow(ctx); err != nil {
			return "", fmt.Errorf("rate limiter error: %w", err)
		}
	}

	var lastErr error
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		id, err := send(ctx)
		if err == nil {
			logger.DebugContext(ctx, "post delivered",
				slog.String("service", service),
				slog.Int("attempt", attempt))
			return id, nil
		}
		lastErr = err

		var rateLimitErr *RateLimitError
		if errors.As(err, &rateLimitErr) {
			if policy.SkipOnRateLimit {
				logger.WarnContext(ctx, "rate limited, skipping post",
					slog.String("service", service),
					slog.Duration("retry_after", rateLimitErr.RetryAfter))
				return "", fmt.Errorf("%w: %v", publish.ErrPostSkipped, err)
			}
			wait := rateLimitErr.RetryAfter
			if policy.MaxRetryAfter > 0 && wait > policy.MaxRetryAfter {
				wait = policy.MaxRetryAfter
			}
			logger.WarnContext(ctx, "rate limit hit, backing off",
				slog.String("service", service),
				slog.Duration("retry_after", wait),
				slog.Int("attempt", attempt))
			if err := retry.Sleep(ctx, wait); err != nil {
				return "", fmt.Errorf("context canceled during rate limit backoff: %w", err)
			}
			continue
		}

		if !isRetryableError(err) {
			logger.ErrorContext(ctx, "post failed with non-retryable error",
				slog.String("service", service),
				slog.String("error", redact.Error(err)),
				slog.Int("attempt", attempt))
			return "", err
		}

		if attempt < policy.MaxAttempts {
			delay := policy.BaseDelay * time.Duration(attempt)
			logger.WarnContext(ctx, "post failed, retrying",
				slog.String("service", service),
				slog.String("error", redact.Error(err)),
				slog.Int("attempt", attempt),
				slog.Duration("delay", delay))
			if err := retry.Sleep(ctx, delay); err != nil {
				return "", fmt.Errorf("context canceled during retry backoff: %w", err)
			}
		}
	}

	return "", fmt.Errorf("%s post failed after %d attempts: %w", service, policy.MaxAttempts, lastErr)
}

// truncate shortens text to maxLength runes, appending suffix when cut.
func truncate(text string, maxLength int, suffix string) string {
	r := []rune(text)
	if len(r) <= maxLength {
		return text
	}
	cut := maxLength - len([]rune(suffix))
	if cut < 0 {
		cut = 0
	}
	return string(r[:cut]) + suffix
}

// unwrapURLError drops the *url.Error wrapper, whose message includes the URL.
func unwrapURLError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		return urlErr.Err
	}
	return err
}
