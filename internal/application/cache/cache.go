// Package cache provides a short-TTL redis cache for the stats endpoints.
// The stats queries fan out over several counts; the dashboard polls them,
// so a small staleness window is a fair trade.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	platformredis "seva/internal/platform/redis"
)

// Cache caches JSON-serializable payloads by key. A nil *Cache (redis not
// configured) is valid and behaves as a permanent miss.
type Cache struct {
	client *platformredis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// New constructs a Cache; returns nil when the client is nil.
func New(client *platformredis.Client, ttl time.Duration, logger *slog.Logger) *Cache {
	if client == nil {
		return nil
	}
	return &Cache{client: client, ttl: ttl, logger: logger}
}

// Get unmarshals the cached payload into v, reporting whether it was found.
// Cache errors are logged and treated as misses.
func (c *Cache) Get(ctx context.Context, key string, v any) bool {
	if c == nil {
		return false
	}
	payload, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	if err := json.Unmarshal(payload, v); err != nil {
		c.logger.WarnContext(ctx, "stats cache entry corrupt", "key", key, "error", err)
		return false
	}
	return true
}

// Set stores v under key for the cache TTL. Errors are logged and ignored;
// the store remains the source of truth.
func (c *Cache) Set(ctx context.Context, key string, v any) {
	if c == nil {
		return
	}
	payload, err := json.Marshal(v)
	if err != nil {
		c.logger.WarnContext(ctx, "stats cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "stats cache write failed", "key", key, "error", err)
	}
}
