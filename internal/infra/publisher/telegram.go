package publisher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"newsdigest/internal/domain/entity"
	"newsdigest/internal/usecase/publish"
)

var telegramPolicy = retryPolicy{
	MaxAttempts:   3,
	BaseDelay:     2 * time.Second,
	MaxRetryAfter: time.Minute,
}

// telegramSender is the part of *tgbotapi.BotAPI the channel uses.
type telegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// telegramCaptionLimit is the longest caption a photo message accepts.
const telegramCaptionLimit = 1024

// TelegramChannel sends posts to one chat: as a photo with caption when the
// post carries an image, as a plain-text message otherwise.
type TelegramChannel struct {
	config      TelegramConfig
	logger      *slog.Logger
	rateLimiter *RateLimiter
	policy      retryPolicy

	mu     sync.Mutex
	sender telegramSender
}

// NewTelegramChannel creates the Telegram channel. The bot is connected on
// first use. Rate limited to 1 msg/s per chat.
func NewTelegramChannel(config TelegramConfig, logger *slog.Logger) *TelegramChannel {
	if logger == nil {
		logger = slog.Default()
	}
	if config.APIEndpoint == "" {
		config.APIEndpoint = tgbotapi.APIEndpoint
	}
	if config.Timeout <= 0 {
		config.Timeout = defaultTimeout
	}
	return &TelegramChannel{
		config:      config,
		logger:      logger,
		rateLimiter: NewRateLimiter(1.0, 1),
		policy:      telegramPolicy,
	}
}

// Name implements publish.Channel.
func (c *TelegramChannel) Name() string { return "telegram" }

// IsEnabled implements publish.Channel.
func (c *TelegramChannel) IsEnabled() bool {
	return c.config.BotToken != "" && c.config.ChatID != 0
}

// Publish implements publish.Channel and returns the Telegram message id.
func (c *TelegramChannel) Publish(ctx context.Context, post entity.Post) (string, error) {
	if !c.IsEnabled() {
		return "", publish.ErrChannelDisabled
	}
	if post.Text == "" {
		return "", publish.ErrEmptyPost
	}

	sender, err := c.bot()
	if err != nil {
		return "", err
	}

	return deliver(ctx, c.logger, c.Name(), c.rateLimiter, c.policy, func(ctx context.Context) (string, error) {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		sent, err := sender.Send(c.message(post))
		if err != nil {
			return "", telegramError(err)
		}
		return strconv.Itoa(sent.MessageID), nil
	})
}

func (c *TelegramChannel) message(post entity.Post) tgbotapi.Chattable {
	if post.ImagePath != "" && len([]rune(post.Text)) <= telegramCaptionLimit {
		photo := tgbotapi.NewPhoto(c.config.ChatID, tgbotapi.FilePath(post.ImagePath))
		photo.Caption = post.Text
		return photo
	}
	msg := tgbotapi.NewMessage(c.config.ChatID, post.Text)
	msg.DisableWebPagePreview = post.Link == ""
	return msg
}

func (c *TelegramChannel) bot() (telegramSender, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sender != nil {
		return c.sender, nil
	}

	client := &http.Client{Timeout: c.config.Timeout}
	bot, err := tgbotapi.NewBotAPIWithClient(c.config.BotToken, c.config.APIEndpoint, client)
	if err != nil {
		return nil, fmt.Errorf("connect telegram bot: %w", telegramError(err))
	}
	c.logger.Info("telegram bot connected", slog.String("username", bot.Self.UserName))
	c.sender = bot
	return bot, nil
}

// telegramError maps API errors onto the shared error types.
func telegramError(err error) error {
	var apiErr *tgbotapi.Error
	if !errors.As(err, &apiErr) {
		return err
	}
	switch {
	case apiErr.Code == http.StatusTooManyRequests:
		return &RateLimitError{
			Message:    "telegram rate limit exceeded: " + apiErr.Message,
			RetryAfter: time.Duration(apiErr.RetryAfter) * time.Second,
		}
	case apiErr.Code >= 500:
		return &ServerError{StatusCode: apiErr.Code, Message: "telegram API server error: " + apiErr.Message}
	case apiErr.Code >= 400:
		return &ClientError{StatusCode: apiErr.Code, Message: "telegram API client error: " + apiErr.Message}
	}
	return err
}
