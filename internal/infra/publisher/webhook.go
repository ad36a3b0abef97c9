package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"newsdigest/internal/domain/entity"
	"newsdigest/internal/usecase/publish"
)

const (
	// Discord message content limit.
	maxDiscordContent = 2000
	// Slack section text limit.
	maxSlackText = 3000

	truncationSuffix = "..."
)

// webhookPolicy retries server errors with a 5s base delay and waits out 429s.
var webhookPolicy = retryPolicy{
	MaxAttempts:   3,
	BaseDelay:     5 * time.Second,
	MaxRetryAfter: time.Minute,
}

// webhookChannel posts JSON payloads to an incoming webhook.
type webhookChannel struct {
	name        string
	config      WebhookConfig
	httpClient  *http.Client
	rateLimiter *RateLimiter
	logger      *slog.Logger
	policy      retryPolicy
	payload     func(entity.Post) any
	// retryAfter extracts a service-specific retry hint from a 429 body.
	retryAfter func(body []byte) time.Duration
}

// DiscordChannel publishes posts as plain Discord messages.
type DiscordChannel struct{ *webhookChannel }

// SlackChannel publishes posts as Slack mrkdwn sections.
type SlackChannel struct{ *webhookChannel }

type discordPayload struct {
	Content string `json:"content"`
}

type discordErrorResponse struct {
	Message    string  `json:"message"`
	Code       int     `json:"code"`
	RetryAfter float64 `json:"retry_after"` // seconds
}

type slackPayload struct {
	Text   string       `json:"text"`
	Blocks []slackBlock `json:"blocks"`
}

type slackBlock struct {
	Type string          `json:"type"`
	Text *slackTextBlock `json:"text,omitempty"`
}

type slackTextBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// NewDiscordChannel creates the Discord channel.
// Rate limited to 0.5 req/s with a burst of 3 (30 requests per minute).
func NewDiscordChannel(config WebhookConfig, logger *slog.Logger) *DiscordChannel {
	ch := newWebhookChannel("discord", config, NewRateLimiter(0.5, 3), logger)
	ch.payload = func(p entity.Post) any {
		return discordPayload{Content: truncate(p.Text, maxDiscordContent, truncationSuffix)}
	}
	ch.retryAfter = func(body []byte) time.Duration {
		var resp discordErrorResponse
		if err := json.Unmarshal(body, &resp); err == nil && resp.RetryAfter > 0 {
			return time.Duration(resp.RetryAfter * float64(time.Second))
		}
		return 0
	}
	return &DiscordChannel{ch}
}

// NewSlackChannel creates the Slack channel.
// Rate limited to 1 req/s (Slack webhook limit).
func NewSlackChannel(config WebhookConfig, logger *slog.Logger) *SlackChannel {
	ch := newWebhookChannel("slack", config, NewRateLimiter(1.0, 1), logger)
	ch.payload = func(p entity.Post) any {
		text := truncate(p.Text, maxSlackText, truncationSuffix)
		return slackPayload{
			Text: text,
			Blocks: []slackBlock{
				{Type: "section", Text: &slackTextBlock{Type: "mrkdwn", Text: text}},
			},
		}
	}
	return &SlackChannel{ch}
}

func newWebhookChannel(name string, config WebhookConfig, limiter *RateLimiter, logger *slog.Logger) *webhookChannel {
	if logger == nil {
		logger = slog.Default()
	}
	if config.Timeout <= 0 {
		config.Timeout = defaultTimeout
	}
	return &webhookChannel{
		name:        name,
		config:      config,
		httpClient:  &http.Client{Timeout: config.Timeout},
		rateLimiter: limiter,
		logger:      logger,
		policy:      webhookPolicy,
	}
}

// Name implements publish.Channel.
func (c *webhookChannel) Name() string { return c.name }

// IsEnabled implements publish.Channel.
func (c *webhookChannel) IsEnabled() bool { return c.config.Enabled }

// Publish implements publish.Channel. Webhooks return no message id, so the
// returned id is the post time in unix milliseconds.
func (c *webhookChannel) Publish(ctx context.Context, post entity.Post) (string, error) {
	if !c.config.Enabled {
		return "", publish.ErrChannelDisabled
	}
	if post.Text == "" {
		return "", publish.ErrEmptyPost
	}
	return deliver(ctx, c.logger, c.name, c.rateLimiter, c.policy, func(ctx context.Context) (string, error) {
		return c.send(ctx, post)
	})
}

func (c *webhookChannel) send(ctx context.Context, post entity.Post) (string, error) {
	jsonData, err := json.Marshal(c.payload(post))
	if err != nil {
		return "", fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.WebhookURL, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("create http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// The URL carries the webhook token; keep it out of the error.
		return "", fmt.Errorf("execute %s webhook request: %w", c.name, unwrapURLError(err))
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return fmt.Sprintf("%d", time.Now().UnixMilli()), nil
	}

	var retryAfter time.Duration
	if c.retryAfter != nil && resp.StatusCode == http.StatusTooManyRequests {
		retryAfter = c.retryAfter(body)
	}
	return "", statusError(c.name, resp, body, retryAfter)
}
