// Package redis holds the optional cache connection. The stats endpoints are
// the only consumer; when no URL is configured the server runs without a
// cache and every stats request hits Postgres.
package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"seva/internal/platform/config"
)

// Client wraps the go-redis client so callers depend on this package, not on
// the driver.
type Client struct {
	*redis.Client
}

// New dials redis from the given configuration and verifies the connection.
// An empty URL means the cache is disabled; New then returns (nil, nil) and
// callers must tolerate a nil client.
func New(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns
	opts.DialTimeout = cfg.DialTimeout
	opts.ReadTimeout = cfg.ReadTimeout
	opts.WriteTimeout = cfg.WriteTimeout

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Client{Client: client}, nil
}
