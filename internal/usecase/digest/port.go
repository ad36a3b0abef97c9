package digest

import (
	"context"
	"time"

	"newsdigest/internal/domain/entity"
	"newsdigest/internal/usecase/fetch"
	"newsdigest/internal/usecase/publish"
)

// Collector gathers the day's articles.
type Collector interface {
	Collect(ctx context.Context, feeds []string) ([]entity.Article, *fetch.CollectStats, error)
}

// Rewriter turns articles into headings and summaries.
type Rewriter interface {
	Rewrite(ctx context.Context, articles []entity.ArticleInput) []entity.RewrittenItem
}

// Store persists the run output.
type Store interface {
	SaveContent(content entity.Content) error
	SaveArticles(articles []entity.Article) error
}

// Exporter writes the thread as a document.
type Exporter interface {
	Export(posts []entity.Post, date time.Time) (mdPath, htmlPath string, err error)
}

// CardRenderer draws one image per detail thread plus an index image.
type CardRenderer interface {
	RenderThread(threads []entity.Thread, articles []entity.Article, date time.Time) ([]string, error)
}

// Publisher posts a thread to the enabled channels.
type Publisher interface {
	PublishThread(ctx context.Context, posts []entity.Post) ([]publish.Result, error)
}
