package publish

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"newsdigest/internal/domain/entity"
)

type stubChannel struct {
	name    string
	enabled bool
	fail    func(i int) error

	mu    sync.Mutex
	texts []string
	calls int
}

func (c *stubChannel) Name() string    { return c.name }
func (c *stubChannel) IsEnabled() bool { return c.enabled }

func (c *stubChannel) Publish(ctx context.Context, post entity.Post) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.calls
	c.calls++
	if c.fail != nil {
		if err := c.fail(i); err != nil {
			return "", err
		}
	}
	c.texts = append(c.texts, post.Text)
	return fmt.Sprintf("%s-%d", c.name, i), nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func posts(n int) []entity.Post {
	out := make([]entity.Post, n)
	for i := range out {
		out[i] = entity.Post{Text: fmt.Sprintf("post %d", i+1)}
	}
	return out
}
