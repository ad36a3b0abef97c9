package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dghubble/oauth1"

	"newsdigest/internal/domain/entity"
	"newsdigest/internal/usecase/publish"
)

const defaultTwitterBaseURL = "https://api.twitter.com"

// twitterPolicy retries 5s, 10s on server errors and skips rate-limited posts.
var twitterPolicy = retryPolicy{
	MaxAttempts:     3,
	BaseDelay:       5 * time.Second,
	SkipOnRateLimit: true,
}

// TwitterChannel posts each message as a standalone tweet through the v2 API.
type TwitterChannel struct {
	config     TwitterConfig
	httpClient *http.Client
	logger     *slog.Logger
	policy     retryPolicy
	now        func() time.Time
}

type tweetRequest struct {
	Text string `json:"text"`
}

type tweetResponse struct {
	Data struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	} `json:"data"`
}

// NewTwitterChannel creates the X/Twitter channel. Requests are signed with
// OAuth1 user-context credentials.
func NewTwitterChannel(config TwitterConfig, logger *slog.Logger) *TwitterChannel {
	if logger == nil {
		logger = slog.Default()
	}
	if config.BaseURL == "" {
		config.BaseURL = defaultTwitterBaseURL
	}
	if config.Timeout <= 0 {
		config.Timeout = defaultTimeout
	}

	base := &http.Client{Timeout: config.Timeout}
	ctx := context.WithValue(context.Background(), oauth1.HTTPClient, base)
	oauthConfig := oauth1.NewConfig(config.ConsumerKey, config.ConsumerSecret)
	client := oauthConfig.Client(ctx, oauth1.NewToken(config.AccessToken, config.AccessTokenSecret))
	client.Timeout = config.Timeout

	return &TwitterChannel{
		config:     config,
		httpClient: client,
		logger:     logger,
		policy:     twitterPolicy,
		now:        time.Now,
	}
}

// Name implements publish.Channel.
func (c *TwitterChannel) Name() string { return "twitter" }

// IsEnabled implements publish.Channel. Dry-run mode needs no credentials.
func (c *TwitterChannel) IsEnabled() bool {
	return c.config.DryRun || c.config.HasCredentials()
}

// Publish implements publish.Channel. In dry-run mode nothing is sent and the
// id is "dry_<unix seconds>".
func (c *TwitterChannel) Publish(ctx context.Context, post entity.Post) (string, error) {
	if !c.IsEnabled() {
		return "", publish.ErrChannelDisabled
	}
	text := strings.TrimSpace(post.Text)
	if text == "" {
		return "", publish.ErrEmptyPost
	}

	if c.config.DryRun {
		c.logger.InfoContext(ctx, "dry run: would post tweet",
			slog.String("preview", truncate(text, 45, "...")))
		return fmt.Sprintf("dry_%d", c.now().Unix()), nil
	}

	return deliver(ctx, c.logger, c.Name(), nil, c.policy, func(ctx context.Context) (string, error) {
		return c.createTweet(ctx, text)
	})
}

func (c *TwitterChannel) createTweet(ctx context.Context, text string) (string, error) {
	jsonData, err := json.Marshal(tweetRequest{Text: text})
	if err != nil {
		return "", fmt.Errorf("marshal tweet: %w", err)
	}

	endpoint := strings.TrimRight(c.config.BaseURL, "/") + "/2/tweets"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("create http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("execute tweet request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", statusError("twitter", resp, body, 0)
	}

	var out tweetResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("decode tweet response: %w", err)
	}
	if out.Data.ID == "" {
		return "", fmt.Errorf("tweet response has no id")
	}

	c.logger.InfoContext(ctx, "tweet posted",
		slog.String("tweet_id", out.Data.ID),
		slog.String("preview", truncate(text, 45, "...")))
	return out.Data.ID, nil
}
