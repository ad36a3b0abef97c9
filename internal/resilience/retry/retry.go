// Package retry runs operations again after transient failures, with
// exponential backoff, jitter and Retry-After awareness.
package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net"
	"net/http"
	"strconv"
	"strings"
	"syscall"
	"time"

	"newsdigest/internal/pkg/redact"
)

// Config is a retry policy.
type Config struct {
	// Name labels log lines emitted while retrying.
	Name string

	// MaxAttempts counts the first call; values below 1 mean one call.
	MaxAttempts int

	InitialDelay time.Duration
	// MaxDelay caps the backoff; zero means no cap. A server's Retry-After
	// may exceed it.
	MaxDelay time.Duration
	// Multiplier grows the delay after every attempt; 1 keeps it constant.
	Multiplier float64
	// JitterFraction adds up to this fraction of the delay at random.
	JitterFraction float64

	// ShouldRetry defaults to IsRetryable.
	ShouldRetry func(error) bool

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// DefaultConfig is a general-purpose policy: 3 attempts from 1s, doubling.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:    3,
		InitialDelay:   1 * time.Second,
		MaxDelay:       30 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.1,
	}
}

// FeedFetchConfig keeps one dead feed from stalling the collection run.
func FeedFetchConfig() Config {
	return Config{
		Name:           "feed-fetch",
		MaxAttempts:    2,
		InitialDelay:   500 * time.Millisecond,
		MaxDelay:       5 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.1,
	}
}

// GenerationConfig is the per-model policy of the rewriter: a fixed delay
// and every non-context error retried, since a malformed model response is
// as transient as a 5xx.
func GenerationConfig(attempts int, delay time.Duration) Config {
	return Config{
		Name:         "generation",
		MaxAttempts:  attempts,
		InitialDelay: delay,
		Multiplier:   1.0,
		ShouldRetry:  NotCanceled,
	}
}

// WithBackoff calls fn until it succeeds, returns an error ShouldRetry
// rejects, or MaxAttempts is reached. A non-retryable error is returned as
// is; exhaustion and cancellation wrap the last error.
func WithBackoff(ctx context.Context, cfg Config, fn func() error) error {
	shouldRetry := cfg.ShouldRetry
	if shouldRetry == nil {
		shouldRetry = IsRetryable
	}
	maxAttempts := max(cfg.MaxAttempts, 1)
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var lastErr error
	delay := cfg.InitialDelay
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr == nil {
				return fmt.Errorf("retry aborted: %w", err)
			}
			return fmt.Errorf("retry aborted: %w", errors.Join(err, lastErr))
		}

		if lastErr = fn(); lastErr == nil {
			if attempt > 1 {
				logger.InfoContext(ctx, "operation succeeded after retry",
					slog.String("operation", cfg.Name),
					slog.Int("attempt", attempt))
			}
			return nil
		}

		if !shouldRetry(lastErr) {
			logger.WarnContext(ctx, "non-retryable error, aborting",
				slog.String("operation", cfg.Name),
				slog.Int("attempt", attempt),
				slog.String("error", redact.Error(lastErr)))
			return lastErr
		}
		if attempt == maxAttempts {
			break
		}

		wait := delay
		if after := RetryAfter(lastErr); after > wait {
			wait = after
		}
		logger.WarnContext(ctx, "operation failed, retrying",
			slog.String("operation", cfg.Name),
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", maxAttempts),
			slog.Duration("delay", wait),
			slog.String("error", redact.Error(lastErr)))

		if err := Sleep(ctx, wait); err != nil {
			return fmt.Errorf("retry aborted: %w", errors.Join(err, lastErr))
		}
		delay = nextDelay(delay, cfg)
	}

	return fmt.Errorf("max retry attempts (%d) exceeded: %w", maxAttempts, lastErr)
}

// Sleep blocks for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func nextDelay(delay time.Duration, cfg Config) time.Duration {
	if cfg.Multiplier > 0 {
		delay = time.Duration(float64(delay) * cfg.Multiplier)
	}
	if cfg.MaxDelay > 0 && delay > cfg.MaxDelay {
		delay = cfg.MaxDelay
	}
	return addJitter(delay, cfg.JitterFraction)
}

// NotCanceled retries everything but context cancellation and deadlines.
func NotCanceled(err error) bool {
	return err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// IsRetryable accepts network timeouts, refused or reset connections, and
// HTTPErrors with a transient status.
func IsRetryable(err error) bool {
	if !NotCanceled(err) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ETIMEDOUT) ||
		errors.Is(err, syscall.ENETUNREACH) {
		return true
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return IsRetryableStatus(httpErr.StatusCode)
	}
	return false
}

// IsRetryableStatus is true for 5xx, 429 and 408.
func IsRetryableStatus(code int) bool {
	return code >= 500 && code < 600 ||
		code == http.StatusTooManyRequests ||
		code == http.StatusRequestTimeout
}

// HTTPError is a non-2xx response from an upstream API.
type HTTPError struct {
	StatusCode int
	Message    string
	// RetryAfter is the server's requested wait, zero when absent.
	RetryAfter time.Duration
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// NewHTTPError builds an HTTPError from resp, reading its Retry-After header.
func NewHTTPError(resp *http.Response, message string) *HTTPError {
	return &HTTPError{
		StatusCode: resp.StatusCode,
		Message:    message,
		RetryAfter: ParseRetryAfter(resp.Header.Get("Retry-After"), time.Now()),
	}
}

// RetryAfter returns the wait requested by the HTTPError in err's chain.
func RetryAfter(err error) time.Duration {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.RetryAfter
	}
	return 0
}

// ParseRetryAfter reads a Retry-After value given in seconds or as an HTTP
// date relative to now. Missing, malformed or past values yield zero.
func ParseRetryAfter(v string, now time.Time) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(v); err == nil {
		if seconds <= 0 {
			return 0
		}
		return time.Duration(seconds) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil && at.After(now) {
		return at.Sub(now)
	}
	return 0
}

func addJitter(d time.Duration, fraction float64) time.Duration {
	if fraction <= 0 {
		return d
	}
	fraction = min(fraction, 1.0)
	// #nosec G404 -- jitter does not need a secure source.
	return d + time.Duration(rand.Float64()*float64(d)*fraction)
}
