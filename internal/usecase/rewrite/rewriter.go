package rewrite

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"newsdigest/internal/domain/entity"
	"newsdigest/internal/observability/tracing"
	"newsdigest/internal/pkg/redact"
	"newsdigest/internal/resilience/ratelimit"
	"newsdigest/internal/resilience/retry"
)

// Rewriter rewrites article batches through a Generator.
//
// A Rewriter is safe for concurrent use, but calls share one pacer: the
// minimum interval applies across everything the instance sends.
type Rewriter struct {
	gen     Generator
	cfg     Config
	logger  *slog.Logger
	metrics MetricsRecorder
	pacer   *ratelimit.Pacer
}

// Option customises a Rewriter.
type Option func(*Rewriter)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Rewriter) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMetrics sets the metrics recorder. Defaults to NoopMetrics.
func WithMetrics(m MetricsRecorder) Option {
	return func(r *Rewriter) {
		if m != nil {
			r.metrics = m
		}
	}
}

// New validates cfg and builds a Rewriter.
func New(gen Generator, cfg Config, opts ...Option) (*Rewriter, error) {
	if gen == nil {
		return nil, fmt.Errorf("%w: generator is required", ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r := &Rewriter{
		gen:     gen,
		cfg:     cfg,
		logger:  slog.Default(),
		metrics: NoopMetrics{},
		pacer:   ratelimit.NewPacer(cfg.MinCallInterval),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Config returns the configuration the Rewriter was built with.
func (r *Rewriter) Config() Config {
	return r.cfg
}

// Rewrite returns model-written headings and summaries for articles.
//
// The result has at most len(articles) items, each carrying the Position of
// its source article; articles that could not be rewritten are absent. Rewrite
// never fails: transport, protocol and content errors are retried, retried on
// the fallback model and finally handled by splitting the batch in two. A
// canceled ctx or a missing API key ends the call with what was collected.
func (r *Rewriter) Rewrite(ctx context.Context, articles []entity.ArticleInput) []entity.RewrittenItem {
	if len(articles) == 0 {
		r.logger.WarnContext(ctx, "no input articles")
		return []entity.RewrittenItem{}
	}

	start := time.Now()
	items, err := r.rewriteBatch(ctx, articles, 0)
	if err != nil {
		r.logger.ErrorContext(ctx, "rewrite aborted",
			slog.Int("articles", len(articles)),
			slog.Int("items", len(items)),
			slog.String("error", redact.Error(err)))
	}
	if items == nil {
		items = []entity.RewrittenItem{}
	}

	r.metrics.RecordItems(len(items), len(articles))
	r.logger.InfoContext(ctx, "rewrite finished",
		slog.Int("articles", len(articles)),
		slog.Int("items", len(items)),
		slog.Duration("duration", time.Since(start)))
	return items
}

// rewriteBatch handles one node of the bisection tree. The error is non-nil
// only for conditions that must stop the whole call.
func (r *Rewriter) rewriteBatch(ctx context.Context, batch []entity.ArticleInput, offset int) ([]entity.RewrittenItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	spanCtx, span := tracing.StartSpan(ctx, "rewrite.batch",
		attribute.Int("batch.size", len(batch)),
		attribute.Int("batch.offset", offset))
	items, err := r.tryModels(spanCtx, batch, offset)
	tracing.EndSpan(span, err)

	if err == nil {
		return items, nil
	}
	if r.fatal(ctx, err) {
		return nil, err
	}

	if len(batch) == 1 {
		r.logger.ErrorContext(ctx, "no results even after splitting",
			slog.Int("position", offset),
			slog.String("error", redact.Error(err)))
		return nil, nil
	}

	mid := len(batch) / 2
	r.metrics.RecordSplit()
	r.logger.WarnContext(ctx, "splitting batch into halves due to repeated failures",
		slog.Int("batch_size", len(batch)),
		slog.Int("offset", offset),
		slog.Int("left", mid),
		slog.Int("right", len(batch)-mid))

	left, err := r.rewriteBatch(ctx, batch[:mid], offset)
	if err != nil {
		return left, err
	}
	right, err := r.rewriteBatch(ctx, batch[mid:], offset+mid)
	return append(left, right...), err
}

// tryModels runs the retry loop on each model tier in turn.
func (r *Rewriter) tryModels(ctx context.Context, batch []entity.ArticleInput, offset int) ([]entity.RewrittenItem, error) {
	prompt, err := BuildPrompt(batch)
	if err != nil {
		return nil, err
	}

	models := r.cfg.Models()
	var lastErr error
	for i, model := range models {
		var items []entity.RewrittenItem
		attempt := 0

		err := retry.WithBackoff(ctx, r.retryConfig(ctx, model), func() error {
			attempt++
			var aerr error
			items, aerr = r.attempt(ctx, model, prompt, len(batch), offset)
			if aerr != nil {
				r.logger.WarnContext(ctx, "rewrite attempt failed",
					slog.String("model", model),
					slog.Int("attempt", attempt),
					slog.Int("batch_size", len(batch)),
					slog.String("error", redact.Error(aerr)))
			}
			return aerr
		})
		if err == nil {
			r.logger.InfoContext(ctx, "model returned items",
				slog.String("model", model),
				slog.Int("attempt", attempt),
				slog.Int("items", len(items)),
				slog.Int("batch_size", len(batch)))
			return items, nil
		}

		lastErr = err
		if r.fatal(ctx, err) {
			return nil, err
		}
		if i < len(models)-1 {
			if err := retry.Sleep(ctx, r.cfg.RetryDelay); err != nil {
				return nil, err
			}
		}
	}
	return nil, lastErr
}

// retryConfig retries every failure while ctx is alive, except a missing key.
func (r *Rewriter) retryConfig(ctx context.Context, model string) retry.Config {
	cfg := retry.GenerationConfig(r.cfg.MaxRetries, r.cfg.RetryDelay)
	cfg.Name = "rewrite:" + model
	cfg.Logger = r.logger
	cfg.ShouldRetry = func(err error) bool {
		return !r.fatal(ctx, err)
	}
	return cfg
}

func (r *Rewriter) fatal(ctx context.Context, err error) bool {
	return ctx.Err() != nil || errors.Is(err, ErrMissingAPIKey)
}

// attempt performs one paced generator call and turns the reply into aligned items.
func (r *Rewriter) attempt(ctx context.Context, model, prompt string, n, offset int) ([]entity.RewrittenItem, error) {
	if err := r.pacer.Wait(ctx); err != nil {
		return nil, fmt.Errorf("pacing: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	start := time.Now()
	resp, err := r.gen.Generate(reqCtx, GenerateRequest{
		Model:           model,
		Prompt:          prompt,
		Temperature:     r.cfg.Temperature,
		MaxOutputTokens: r.cfg.MaxOutputTokens,
		StopSequences:   r.cfg.StopSequences,
		Timeout:         r.cfg.Timeout,
	})
	r.metrics.RecordDuration(model, time.Since(start))
	if err != nil {
		r.metrics.RecordAttempt(model, "transport_error")
		return nil, fmt.Errorf("generate with %s: %w", model, err)
	}

	text, ok := r.selectCandidate(ctx, model, resp)
	if !ok {
		r.metrics.RecordAttempt(model, "no_candidates")
		var raw []byte
		if resp != nil {
			raw = resp.Raw
		}
		r.logger.ErrorContext(ctx, "no candidate contained text",
			slog.String("model", model),
			slog.String("payload", snippet(string(raw), 200)))
		if err := writeDebugDump(r.cfg.DebugDumpPath, raw); err != nil {
			r.logger.WarnContext(ctx, "failed to write debug dump",
				slog.String("path", r.cfg.DebugDumpPath),
				slog.String("error", redact.Error(err)))
		}
		return nil, ErrNoCandidates
	}

	res, err := parseItems(text)
	if err != nil {
		r.metrics.RecordAttempt(model, "unparseable")
		r.logger.ErrorContext(ctx, "cannot repair model output",
			slog.String("model", model),
			slog.String("text", snippet(text, 250)),
			slog.String("error", redact.Error(err)))
		return nil, err
	}

	items, err := align(res.Items, n, offset)
	if err != nil {
		r.metrics.RecordAttempt(model, "misaligned")
		return nil, err
	}

	r.metrics.RecordParseStage(res.Stage)
	r.metrics.RecordAttempt(model, "success")
	if res.Stage != "strict" {
		r.logger.DebugContext(ctx, "model output needed lenient parsing",
			slog.String("model", model),
			slog.String("stage", res.Stage))
	}
	return items, nil
}

// selectCandidate returns the text of the first candidate carrying any.
// Text-less candidates are skipped with a warning; an unclean finish is
// warned about, or skipped when RequireCleanFinish is set.
func (r *Rewriter) selectCandidate(ctx context.Context, model string, resp *GenerateResponse) (string, bool) {
	if resp == nil {
		return "", false
	}

	for _, c := range resp.Candidates {
		if strings.TrimSpace(c.Text) == "" {
			r.logger.WarnContext(ctx, "candidate has no usable text",
				slog.String("model", model),
				slog.Int("candidate", c.Index),
				slog.String("finish_reason", c.FinishReason))
			continue
		}
		if c.FinishReason != FinishReasonStop {
			if r.cfg.RequireCleanFinish {
				r.logger.WarnContext(ctx, "skipping candidate with unclean finish",
					slog.String("model", model),
					slog.Int("candidate", c.Index),
					slog.String("finish_reason", c.FinishReason))
				continue
			}
			r.logger.WarnContext(ctx, "candidate finished without clean stop",
				slog.String("model", model),
				slog.Int("candidate", c.Index),
				slog.String("finish_reason", c.FinishReason))
		}
		return c.Text, true
	}
	return "", false
}

// snippet truncates s to at most n runes for logging.
func snippet(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
