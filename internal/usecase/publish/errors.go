package publish

import "errors"

// Sentinel errors for publish use case operations.
var (
	// ErrChannelDisabled indicates that Publish was called on a disabled channel.
	ErrChannelDisabled = errors.New("channel is disabled")

	// ErrEmptyPost indicates a post with no text.
	ErrEmptyPost = errors.New("post has no text")

	// ErrPostSkipped indicates the platform refused the post for now (rate limit)
	// and the channel chose to skip it rather than wait.
	ErrPostSkipped = errors.New("post skipped")

	// ErrCircuitBreakerOpen indicates that the channel stopped accepting posts
	// after repeated failures.
	ErrCircuitBreakerOpen = errors.New("circuit breaker is open for this channel")
)
