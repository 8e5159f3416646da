// Package cache remembers link ids of news that were already committed so
// repeated scrapes can skip them without a store round trip.
package cache

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix = "classboard:seen:"
	// DefaultTTL outlives the feed window so old items stay skipped.
	DefaultTTL = 30 * 24 * time.Hour
)

// SeenCache is a Redis-backed set of link ids. A nil *SeenCache is valid
// and behaves as an always-empty cache.
type SeenCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSeenCache(ctx context.Context, addr string) (*SeenCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	slog.Info("Connected to Redis", "addr", addr)

	return &SeenCache{client: client, ttl: DefaultTTL}, nil
}

// Key returns the Redis key for a link id. Ids can be long, so they are hashed.
func (c *SeenCache) Key(linkID string) string {
	hash := sha256.Sum256([]byte(linkID))
	return fmt.Sprintf("%s%x", keyPrefix, hash)
}

func (c *SeenCache) Seen(ctx context.Context, linkID string) (bool, error) {
	if c == nil {
		return false, nil
	}

	count, err := c.client.Exists(ctx, c.Key(linkID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check seen link: %w", err)
	}
	return count > 0, nil
}

// Mark records link ids as committed.
func (c *SeenCache) Mark(ctx context.Context, linkIDs ...string) error {
	if c == nil || len(linkIDs) == 0 {
		return nil
	}

	pipe := c.client.Pipeline()
	for _, id := range linkIDs {
		pipe.Set(ctx, c.Key(id), 1, c.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to mark seen links: %w", err)
	}
	return nil
}

func (c *SeenCache) Health(ctx context.Context) map[string]interface{} {
	if c == nil {
		return map[string]interface{}{"status": "disabled", "type": "redis"}
	}

	health := map[string]interface{}{
		"status": "healthy",
		"type":   "redis",
	}

	if err := c.client.Ping(ctx).Err(); err != nil {
		health["status"] = "unhealthy"
		health["error"] = err.Error()
	}

	return health
}

func (c *SeenCache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
