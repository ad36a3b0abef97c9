package publisher

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsdigest/internal/domain/entity"
	"newsdigest/internal/usecase/publish"
)

func testTwitterConfig(baseURL string) TwitterConfig {
	return TwitterConfig{
		ConsumerKey:       "ck",
		ConsumerSecret:    "cs",
		AccessToken:       "at",
		AccessTokenSecret: "ats",
		BaseURL:           baseURL,
		Timeout:           time.Second,
	}
}

func TestTwitterChannel_Publish(t *testing.T) {
	var got tweetRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/2/tweets", r.URL.Path)
		auth := r.Header.Get("Authorization")
		assert.True(t, strings.HasPrefix(auth, "OAuth "), "request must be OAuth1 signed, got %q", auth)
		assert.Contains(t, auth, `oauth_consumer_key="ck"`)
		assert.Contains(t, auth, `oauth_token="at"`)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"id":"1790","text":"hello"}}`))
	}))
	defer server.Close()

	ch := NewTwitterChannel(testTwitterConfig(server.URL), quietLogger())
	id, err := ch.Publish(context.Background(), entity.Post{Text: "  hello  "})

	require.NoError(t, err)
	assert.Equal(t, "1790", id)
	assert.Equal(t, "hello", got.Text)
}

func TestTwitterChannel_RateLimitSkipsPost(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	ch := NewTwitterChannel(testTwitterConfig(server.URL), quietLogger())
	_, err := ch.Publish(context.Background(), entity.Post{Text: "hello"})

	assert.ErrorIs(t, err, publish.ErrPostSkipped)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestTwitterChannel_RetriesServerErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"id":"2","text":"hello"}}`))
	}))
	defer server.Close()

	ch := NewTwitterChannel(testTwitterConfig(server.URL), quietLogger())
	ch.policy = fastPolicy(ch.policy)

	id, err := ch.Publish(context.Background(), entity.Post{Text: "hello"})

	require.NoError(t, err)
	assert.Equal(t, "2", id)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestTwitterChannel_Forbidden(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"detail":"You are not permitted to perform this action."}`))
	}))
	defer server.Close()

	ch := NewTwitterChannel(testTwitterConfig(server.URL), quietLogger())
	_, err := ch.Publish(context.Background(), entity.Post{Text: "hello"})

	var ce *ClientError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, http.StatusForbidden, ce.StatusCode)
}

func TestTwitterChannel_DryRun(t *testing.T) {
	ch := NewTwitterChannel(TwitterConfig{DryRun: true, BaseURL: "http://127.0.0.1:1"}, quietLogger())
	ch.now = func() time.Time { return time.Unix(1773100800, 0) }

	id, err := ch.Publish(context.Background(), entity.Post{Text: "hello"})

	require.NoError(t, err)
	assert.Equal(t, "dry_1773100800", id)
}

func TestTwitterChannel_IsEnabled(t *testing.T) {
	assert.True(t, NewTwitterChannel(testTwitterConfig(""), nil).IsEnabled())
	assert.True(t, NewTwitterChannel(TwitterConfig{DryRun: true}, nil).IsEnabled())
	assert.False(t, NewTwitterChannel(TwitterConfig{ConsumerKey: "ck"}, nil).IsEnabled())

	_, err := NewTwitterChannel(TwitterConfig{}, nil).Publish(context.Background(), entity.Post{Text: "x"})
	assert.ErrorIs(t, err, publish.ErrChannelDisabled)
}

func TestTwitterChannel_EmptyPost(t *testing.T) {
	_, err := NewTwitterChannel(TwitterConfig{DryRun: true}, quietLogger()).
		Publish(context.Background(), entity.Post{Text: "   "})

	assert.ErrorIs(t, err, publish.ErrEmptyPost)
}
