package publish

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsdigest/internal/domain/entity"
)

func TestService_PublishThread(t *testing.T) {
	a := &stubChannel{name: "a", enabled: true}
	b := &stubChannel{name: "b", enabled: true}
	off := &stubChannel{name: "off", enabled: false}

	svc := NewService([]Channel{a, off, b}, quietLogger())
	results, err := svc.PublishThread(context.Background(), posts(3))

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, Result{Channel: "a", Posted: 3, IDs: []string{"a-0", "a-1", "a-2"}}, results[0])
	assert.Equal(t, "b", results[1].Channel)
	assert.Equal(t, []string{"post 1", "post 2", "post 3"}, a.texts, "posts must be sent in order")
	assert.Equal(t, 0, off.calls)
}

func TestService_FailingChannelDoesNotAffectOthers(t *testing.T) {
	good := &stubChannel{name: "good", enabled: true}
	bad := &stubChannel{name: "bad", enabled: true, fail: func(i int) error {
		if i == 1 {
			return errors.New("boom")
		}
		return nil
	}}

	svc := NewService([]Channel{bad, good}, quietLogger())
	results, err := svc.PublishThread(context.Background(), posts(4))

	require.NoError(t, err)
	assert.Equal(t, 3, results[0].Posted)
	assert.Equal(t, 1, results[0].Failed)
	assert.Equal(t, 4, results[1].Posted)
	assert.Equal(t, []string{"post 1", "post 3", "post 4"}, bad.texts, "a failed post must not stop the thread")
}

func TestService_SkippedPostCountsAsFailed(t *testing.T) {
	ch := &stubChannel{name: "x", enabled: true, fail: func(i int) error {
		if i == 0 {
			return ErrPostSkipped
		}
		return nil
	}}

	results, err := NewService([]Channel{ch}, quietLogger()).PublishThread(context.Background(), posts(2))

	require.NoError(t, err)
	assert.Equal(t, 1, results[0].Posted)
	assert.Equal(t, 1, results[0].Failed)
}

func TestService_CircuitBreakerStopsChannel(t *testing.T) {
	ch := &stubChannel{name: "down", enabled: true, fail: func(int) error {
		return errors.New("unavailable")
	}}

	results, err := NewService([]Channel{ch}, quietLogger()).PublishThread(context.Background(), posts(6))

	require.NoError(t, err)
	assert.Equal(t, 0, results[0].Posted)
	assert.Equal(t, 6, results[0].Failed)
	assert.Equal(t, 3, ch.calls, "calls after the breaker opens must be rejected without reaching the channel")
}

func TestService_EmptyPostIsNotSent(t *testing.T) {
	ch := &stubChannel{name: "x", enabled: true}

	results, err := NewService([]Channel{ch}, quietLogger()).
		PublishThread(context.Background(), []entity.Post{{Text: ""}, {Text: "hello"}})

	require.NoError(t, err)
	assert.Equal(t, 1, results[0].Posted)
	assert.Equal(t, 1, results[0].Failed)
	assert.Equal(t, 1, ch.calls)
}

func TestService_NoEnabledChannels(t *testing.T) {
	ch := &stubChannel{name: "off"}

	results, err := NewService([]Channel{ch}, quietLogger()).PublishThread(context.Background(), posts(2))

	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Equal(t, 0, ch.calls)
}

func TestService_CanceledContext(t *testing.T) {
	ch := &stubChannel{name: "x", enabled: true}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := NewService([]Channel{ch}, quietLogger()).PublishThread(ctx, posts(3))

	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, results, 1)
	assert.Equal(t, 3, results[0].Failed)
	assert.Equal(t, 0, ch.calls)
}

func TestService_Enabled(t *testing.T) {
	svc := NewService([]Channel{
		&stubChannel{name: "a", enabled: true},
		&stubChannel{name: "b"},
		&stubChannel{name: "c", enabled: true},
	}, nil)

	assert.Equal(t, []string{"a", "c"}, svc.Enabled())
}
