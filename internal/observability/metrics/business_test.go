package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordDigestRun(t *testing.T) {
	tests := []struct {
		name   string
		status string
	}{
		{name: "success", status: "success"},
		{name: "no articles", status: "no_articles"},
		{name: "failure", status: "failure"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(DigestRunsTotal.WithLabelValues(tt.status))

			RecordDigestRun(tt.status, 2*time.Second)

			after := testutil.ToFloat64(DigestRunsTotal.WithLabelValues(tt.status))
			assert.Equal(t, before+1, after)
		})
	}
}

func TestRecordDigestRun_SuccessSetsTimestamp(t *testing.T) {
	RecordDigestRun("success", time.Second)

	ts := testutil.ToFloat64(DigestLastSuccessTimestamp)
	assert.InDelta(t, float64(time.Now().Unix()), ts, 5)
}

func TestRecordDigestItems(t *testing.T) {
	beforeRewritten := testutil.ToFloat64(DigestItemsTotal.WithLabelValues("rewritten"))
	beforeOriginal := testutil.ToFloat64(DigestItemsTotal.WithLabelValues("original"))

	RecordDigestItems(8, 2)

	assert.Equal(t, beforeRewritten+8, testutil.ToFloat64(DigestItemsTotal.WithLabelValues("rewritten")))
	assert.Equal(t, beforeOriginal+2, testutil.ToFloat64(DigestItemsTotal.WithLabelValues("original")))
}

func TestRecordArticlesFetched(t *testing.T) {
	tests := []struct {
		name  string
		feed  string
		count int
	}{
		{name: "single article", feed: "https://a.example/rss", count: 1},
		{name: "multiple articles", feed: "https://b.example/rss", count: 6},
		{name: "zero articles", feed: "https://c.example/rss", count: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(ArticlesFetchedTotal.WithLabelValues(tt.feed))
			RecordArticlesFetched(tt.feed, tt.count)
			assert.Equal(t, before+float64(tt.count), testutil.ToFloat64(ArticlesFetchedTotal.WithLabelValues(tt.feed)))
		})
	}
}

func TestUpdateArticlesCollected(t *testing.T) {
	UpdateArticlesCollected(10)
	assert.Equal(t, float64(10), testutil.ToFloat64(ArticlesCollected))

	UpdateArticlesCollected(0)
	assert.Equal(t, float64(0), testutil.ToFloat64(ArticlesCollected))
}

func TestRecordPost(t *testing.T) {
	before := testutil.ToFloat64(PostsPublishedTotal.WithLabelValues("twitter", "success"))

	RecordPost("twitter", "success")

	assert.Equal(t, before+1, testutil.ToFloat64(PostsPublishedTotal.WithLabelValues("twitter", "success")))
}

func TestMetricsFunctions_AllCallable(t *testing.T) {
	assert.NotPanics(t, func() {
		RecordFeedCrawl("feed", 100*time.Millisecond)
		RecordFeedCrawlError("feed", "parse")
		RecordDuplicate("title")
		RecordContentFetchSuccess(200*time.Millisecond, 1024)
		RecordContentFetchFailed(50 * time.Millisecond)
		RecordContentFetchSkipped()
		RecordPublish("discord", time.Second)
	})
}
