// Package rediscache кэширует снимки модерации зрителя в Redis.
package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/UkralStul/feed-engine/internal/moderation"
)

const keyPrefix = "feed:moderation:"

// Cache - moderation.Loader, который читает снимок из Redis и при промахе
// берёт его у next. Ошибки Redis не ломают запрос: снимок грузится напрямую.
type Cache struct {
	client *redis.Client
	next   moderation.Loader
	ttl    time.Duration
	logger *slog.Logger
}

var _ moderation.Loader = (*Cache)(nil)

// Dial создаёт клиента по URL вида redis://host:port/db.
func Dial(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return redis.NewClient(opts), nil
}

func New(client *redis.Client, next moderation.Loader, ttl time.Duration, logger *slog.Logger) *Cache {
	return &Cache{
		client: client,
		next:   next,
		ttl:    ttl,
		logger: logger.With("component", "moderation-cache"),
	}
}

func key(viewer string) string { return keyPrefix + viewer }

func (c *Cache) Snapshot(ctx context.Context, viewer string) (moderation.Snapshot, error) {
	if viewer == "" {
		return c.next.Snapshot(ctx, viewer)
	}

	result, err := c.client.Get(ctx, key(viewer)).Bytes()
	switch {
	case err == nil:
		var snap moderation.Snapshot
		if err := json.Unmarshal(result, &snap); err == nil {
			return snap, nil
		}
		c.logger.Warn("error parsing moderation snapshot from cache", "viewer", viewer, "error", err)
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("error reading moderation snapshot from cache", "viewer", viewer, "error", err)
	}

	snap, err := c.next.Snapshot(ctx, viewer)
	if err != nil {
		return moderation.Snapshot{}, err
	}
	payload, err := json.Marshal(snap)
	if err != nil {
		return snap, nil
	}
	if err := c.client.Set(ctx, key(viewer), payload, c.ttl).Err(); err != nil {
		c.logger.Warn("error writing moderation snapshot to cache", "viewer", viewer, "error", err)
	}
	return snap, nil
}

// Invalidate сбрасывает снимок зрителя после изменения его мьютов, блокировок или жалоб.
func (c *Cache) Invalidate(ctx context.Context, viewer string) error {
	return c.client.Del(ctx, key(viewer)).Err()
}
