//go:build integration

package cache_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"seva/internal/application/cache"
	"seva/internal/application/store"
	"seva/internal/platform/config"
	platformredis "seva/internal/platform/redis"
	"seva/pkg/testutil/containers"
)

func TestCacheRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	rc := containers.NewRedisContainer(t)
	client, err := platformredis.New(context.Background(), config.RedisConfig{URL: rc.URL})
	require.NoError(t, err)
	defer client.Close()

	c := cache.New(client, time.Minute, slog.Default())
	ctx := context.Background()

	var miss store.Stats
	require.False(t, c.Get(ctx, "seva:stats", &miss))

	c.Set(ctx, "seva:stats", &store.Stats{Total: 12, PAN: 8, LL: 4})

	var hit store.Stats
	require.True(t, c.Get(ctx, "seva:stats", &hit))
	require.Equal(t, store.Stats{Total: 12, PAN: 8, LL: 4}, hit)
}

func TestCacheExpires(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	rc := containers.NewRedisContainer(t)
	client, err := platformredis.New(context.Background(), config.RedisConfig{URL: rc.URL})
	require.NoError(t, err)
	defer client.Close()

	c := cache.New(client, 50*time.Millisecond, slog.Default())
	ctx := context.Background()

	c.Set(ctx, "seva:ll-stats", &store.LLStats{Total: 1})
	time.Sleep(120 * time.Millisecond)

	var out store.LLStats
	require.False(t, c.Get(ctx, "seva:ll-stats", &out))
}
