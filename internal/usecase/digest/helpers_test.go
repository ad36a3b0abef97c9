package digest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"newsdigest/internal/domain/entity"
	"newsdigest/internal/usecase/fetch"
	"newsdigest/internal/usecase/publish"
)

var testNow = time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)

func quietLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func testArticles(n int) []entity.Article {
	out := make([]entity.Article, n)
	for i := range out {
		out[i] = entity.Article{
			ID:      i + 1,
			Title:   fmt.Sprintf("Title %d", i+1),
			Summary: fmt.Sprintf("Summary %d", i+1),
			Link:    fmt.Sprintf("https://news.example/%d", i+1),
			Source:  "news.example",
		}
	}
	return out
}

type stubCollector struct {
	articles []entity.Article
	err      error
	feeds    []string
}

func (c *stubCollector) Collect(_ context.Context, feeds []string) ([]entity.Article, *fetch.CollectStats, error) {
	c.feeds = feeds
	return c.articles, &fetch.CollectStats{Feeds: len(feeds), Collected: len(c.articles)}, c.err
}

// echoRewriter rewrites every article it is handed unless its title is in skip.
type echoRewriter struct {
	skip  map[string]bool
	calls [][]entity.ArticleInput
}

func (r *echoRewriter) Rewrite(_ context.Context, in []entity.ArticleInput) []entity.RewrittenItem {
	r.calls = append(r.calls, in)
	var out []entity.RewrittenItem
	for i, a := range in {
		if r.skip[a.Title] {
			continue
		}
		out = append(out, entity.RewrittenItem{Heading: "New " + a.Title, Summary: "Rewritten " + a.Summary, Position: i})
	}
	return out
}

type memStore struct {
	content    *entity.Content
	articles   []entity.Article
	contentErr error
}

func (m *memStore) SaveContent(c entity.Content) error {
	if m.contentErr != nil {
		return m.contentErr
	}
	m.content = &c
	return nil
}

func (m *memStore) SaveArticles(a []entity.Article) error {
	m.articles = a
	return nil
}

type stubExporter struct {
	posts []entity.Post
	err   error
}

func (e *stubExporter) Export(posts []entity.Post, _ time.Time) (string, string, error) {
	if e.err != nil {
		return "", "", e.err
	}
	e.posts = posts
	return "out/news.md", "out/news.html", nil
}

type stubCards struct {
	threads []entity.Thread
}

func (c *stubCards) RenderThread(threads []entity.Thread, _ []entity.Article, _ time.Time) ([]string, error) {
	c.threads = threads
	paths := []string{"out/img/index.jpg"}
	for i := 1; i < len(threads); i++ {
		paths = append(paths, fmt.Sprintf("out/img/news%d.jpg", i))
	}
	return paths, nil
}

type stubPublisher struct {
	mu    sync.Mutex
	posts []entity.Post
	err   error
}

func (p *stubPublisher) PublishThread(_ context.Context, posts []entity.Post) ([]publish.Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.posts = posts
	return []publish.Result{{Channel: "stub", Posted: len(posts)}}, p.err
}

var errBoom = errors.New("boom")
