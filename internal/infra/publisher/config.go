package publisher

import (
	"time"

	"newsdigest/pkg/config"
)

const defaultTimeout = 10 * time.Second

// WebhookConfig configures a Discord or Slack incoming webhook.
type WebhookConfig struct {
	// Enabled is true when a webhook URL is configured.
	Enabled bool

	// WebhookURL includes the authentication token; it is never logged.
	WebhookURL string

	Timeout time.Duration
}

// TwitterConfig configures the X/Twitter channel.
type TwitterConfig struct {
	ConsumerKey       string
	ConsumerSecret    string
	AccessToken       string
	AccessTokenSecret string

	// DryRun logs posts instead of sending them.
	DryRun bool

	// BaseURL defaults to https://api.twitter.com.
	BaseURL string
	Timeout time.Duration
}

// HasCredentials reports whether all four OAuth1 values are present.
func (c TwitterConfig) HasCredentials() bool {
	return c.ConsumerKey != "" && c.ConsumerSecret != "" && c.AccessToken != "" && c.AccessTokenSecret != ""
}

// TelegramConfig configures the Telegram channel.
type TelegramConfig struct {
	BotToken string
	ChatID   int64

	// APIEndpoint is a format string taking the token and the method, as in
	// tgbotapi.APIEndpoint.
	APIEndpoint string
	Timeout     time.Duration
}

// LoadDiscordConfig reads DISCORD_WEBHOOK_URL and DISCORD_TIMEOUT.
func LoadDiscordConfig() WebhookConfig {
	return loadWebhookConfig("DISCORD")
}

// LoadSlackConfig reads SLACK_WEBHOOK_URL and SLACK_TIMEOUT.
func LoadSlackConfig() WebhookConfig {
	return loadWebhookConfig("SLACK")
}

func loadWebhookConfig(prefix string) WebhookConfig {
	url := config.GetEnvString(prefix+"_WEBHOOK_URL", "")
	return WebhookConfig{
		Enabled:    url != "" && config.GetEnvBool(prefix+"_ENABLED", true),
		WebhookURL: url,
		Timeout:    config.GetEnvDuration(prefix+"_TIMEOUT", defaultTimeout),
	}
}

// LoadTwitterConfig reads the TWITTER_* variables.
func LoadTwitterConfig() TwitterConfig {
	return TwitterConfig{
		ConsumerKey:       config.GetEnvString("TWITTER_CONSUMER_KEY", ""),
		ConsumerSecret:    config.GetEnvString("TWITTER_CONSUMER_SECRET", ""),
		AccessToken:       config.GetEnvString("TWITTER_ACCESS_TOKEN", ""),
		AccessTokenSecret: config.GetEnvString("TWITTER_ACCESS_TOKEN_SECRET", ""),
		DryRun:            config.GetEnvBool("TWITTER_DRY_RUN", false),
		BaseURL:           config.GetEnvString("TWITTER_API_BASE_URL", defaultTwitterBaseURL),
		Timeout:           config.GetEnvDuration("TWITTER_TIMEOUT", defaultTimeout),
	}
}

// LoadTelegramConfig reads TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID.
func LoadTelegramConfig() TelegramConfig {
	return TelegramConfig{
		BotToken: config.GetEnvString("TELEGRAM_BOT_TOKEN", ""),
		ChatID:   int64(config.GetEnvInt("TELEGRAM_CHAT_ID", 0)),
		Timeout:  config.GetEnvDuration("TELEGRAM_TIMEOUT", defaultTimeout),
	}
}
