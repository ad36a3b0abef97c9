// Package publish turns a digest into social posts and sends them to every
// enabled delivery channel (X/Twitter, Discord, Slack, Telegram).
package publish

import (
	"context"

	"newsdigest/internal/domain/entity"
)

// Channel is a delivery target for posts.
//
// Implementations apply their own rate limiting and retry transient failures
// (5xx, network errors). Client errors are not retried. Methods must be safe for
// concurrent use and respect context cancellation.
type Channel interface {
	// Name returns the channel identifier used in logs and metric labels.
	Name() string

	// IsEnabled reports whether the channel is configured; disabled channels are skipped.
	IsEnabled() bool

	// Publish sends one post and returns the platform id of the created message.
	// Returns ErrChannelDisabled if called on a disabled channel, ErrPostSkipped
	// when the platform rate-limits the post.
	Publish(ctx context.Context, post entity.Post) (string, error)
}
