package publish

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"newsdigest/internal/domain/entity"
	"newsdigest/internal/observability/logging"
	"newsdigest/internal/observability/metrics"
	"newsdigest/internal/pkg/redact"
	"newsdigest/internal/resilience/circuitbreaker"
)

// postTimeout bounds a single Publish call.
const postTimeout = 30 * time.Second

// Result is the outcome of publishing a thread to one channel.
type Result struct {
	Channel string
	Posted  int
	Failed  int
	IDs     []string
}

// Service publishes threads to every enabled channel.
// Channels run concurrently; posts within a channel are sent in order.
type Service struct {
	channels []Channel
	breakers map[string]*circuitbreaker.CircuitBreaker
	logger   *slog.Logger
	mu       sync.Mutex
}

// NewService creates a Service over channels. A nil logger uses slog.Default().
func NewService(channels []Channel, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		channels: channels,
		breakers: make(map[string]*circuitbreaker.CircuitBreaker, len(channels)),
		logger:   logger,
	}
}

// Enabled returns the names of the enabled channels.
func (s *Service) Enabled() []string {
	var names []string
	for _, ch := range s.channels {
		if ch.IsEnabled() {
			names = append(names, ch.Name())
		}
	}
	return names
}

// PublishThread sends posts to every enabled channel and returns one Result per
// enabled channel, in channel order. A failing channel never affects the
// others; the only error returned is the context's.
func (s *Service) PublishThread(ctx context.Context, posts []entity.Post) ([]Result, error) {
	logger := logging.WithRunID(ctx, s.logger)

	var enabled []Channel
	for _, ch := range s.channels {
		if ch.IsEnabled() {
			enabled = append(enabled, ch)
		}
	}
	if len(enabled) == 0 || len(posts) == 0 {
		logger.InfoContext(ctx, "nothing to publish",
			slog.Int("enabled_channels", len(enabled)),
			slog.Int("posts", len(posts)))
		return []Result{}, ctx.Err()
	}

	logger.InfoContext(ctx, "publishing thread",
		slog.Int("enabled_channels", len(enabled)),
		slog.Int("posts", len(posts)))

	results := make([]Result, len(enabled))
	var g errgroup.Group
	for i, ch := range enabled {
		g.Go(func() error {
			results[i] = s.publishChannel(ctx, logger, ch, posts)
			return nil
		})
	}
	_ = g.Wait()

	return results, ctx.Err()
}

func (s *Service) publishChannel(ctx context.Context, logger *slog.Logger, ch Channel, posts []entity.Post) (res Result) {
	name := ch.Name()
	res = Result{Channel: name}
	logger = logger.With(slog.String("channel", name))
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			logger.ErrorContext(ctx, "panic in publish channel",
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())))
			res.Failed = len(posts) - res.Posted
		}
		metrics.RecordPublish(name, time.Since(start))
	}()

	cb := s.breaker(name)
	for i, post := range posts {
		if ctx.Err() != nil {
			res.Failed += len(posts) - i
			metrics.RecordPost(name, "canceled")
			break
		}

		id, err := s.publishOne(ctx, cb, ch, post)
		if err != nil {
			res.Failed++
			status := "failed"
			switch {
			case errors.Is(err, ErrPostSkipped):
				status = "skipped"
			case errors.Is(err, ErrCircuitBreakerOpen):
				status = "circuit_open"
			}
			metrics.RecordPost(name, status)
			logger.WarnContext(ctx, "post failed, continuing",
				slog.Int("post", i+1),
				slog.String("status", status),
				slog.String("error", redact.Error(err)))
			continue
		}

		res.Posted++
		res.IDs = append(res.IDs, id)
		metrics.RecordPost(name, "posted")
	}

	logger.InfoContext(ctx, "channel publish finished",
		slog.Int("posted", res.Posted),
		slog.Int("failed", res.Failed),
		slog.Duration("duration", time.Since(start)))
	return res
}

func (s *Service) publishOne(ctx context.Context, cb *circuitbreaker.CircuitBreaker, ch Channel, post entity.Post) (string, error) {
	if post.Text == "" {
		return "", ErrEmptyPost
	}

	ctx, cancel := context.WithTimeout(ctx, postTimeout)
	defer cancel()

	var id string
	err := cb.Run(func() error {
		var err error
		id, err = ch.Publish(ctx, post)
		return err
	})
	if circuitbreaker.IsOpenError(err) {
		return "", fmt.Errorf("%w: %s", ErrCircuitBreakerOpen, ch.Name())
	}
	return id, err
}

func (s *Service) breaker(name string) *circuitbreaker.CircuitBreaker {
	s.mu.Lock()
	defer s.mu.Unlock()
	cb, ok := s.breakers[name]
	if !ok {
		cfg := circuitbreaker.PublisherConfig(name)
		cfg.Logger = s.logger
		cb = circuitbreaker.New(cfg)
		s.breakers[name] = cb
	}
	return cb
}
