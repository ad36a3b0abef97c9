package publisher

import (
	"io"
	"log/slog"
	"time"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fastPolicy keeps retry tests quick.
func fastPolicy(p retryPolicy) retryPolicy {
	p.BaseDelay = time.Millisecond
	p.MaxRetryAfter = 10 * time.Millisecond
	return p
}
