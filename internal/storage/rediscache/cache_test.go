package rediscache

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UkralStul/feed-engine/internal/moderation"
)

type countingLoader struct {
	calls int
	snap  moderation.Snapshot
	err   error
}

func (l *countingLoader) Snapshot(_ context.Context, viewer string) (moderation.Snapshot, error) {
	l.calls++
	snap := l.snap
	snap.Viewer = viewer
	return snap, l.err
}

// unreachable возвращает клиента к порту, на котором никто не слушает.
func unreachable(t *testing.T) *redis.Client {
	t.Helper()
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestCache_FallsBackWhenRedisIsDown(t *testing.T) {
	next := &countingLoader{snap: moderation.Snapshot{Muted: []string{"bob"}, AutoHideReported: true}}
	cache := New(unreachable(t), next, time.Minute, slog.New(slog.NewTextHandler(io.Discard, nil)))

	snap, err := cache.Snapshot(context.Background(), "eve")
	require.NoError(t, err)
	assert.Equal(t, "eve", snap.Viewer)
	assert.Equal(t, []string{"bob"}, snap.Muted)
	assert.Equal(t, 1, next.calls)
}

func TestCache_PropagatesLoaderError(t *testing.T) {
	boom := errors.New("boom")
	next := &countingLoader{err: boom}
	cache := New(unreachable(t), next, time.Minute, slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := cache.Snapshot(context.Background(), "eve")
	assert.ErrorIs(t, err, boom)
}

func TestDial_InvalidURL(t *testing.T) {
	_, err := Dial("not a url")
	assert.Error(t, err)
}
