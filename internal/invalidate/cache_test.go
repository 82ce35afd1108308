package invalidate

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type snapshot struct {
	EventID   uint64 `json:"event_id"`
	Available int    `json:"available"`
}

func newTestCache(t *testing.T, ttl time.Duration) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return NewRedisCache(rdb, "availability", ttl), mr
}

func TestCacheMissBeforeSet(t *testing.T) {
	cache, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	var dest snapshot
	ok, err := cache.Get(ctx, 1, &dest)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCacheSetThenGetRoundTrips(t *testing.T) {
	cache, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	want := snapshot{EventID: 7, Available: 42}
	require.NoError(t, cache.Set(ctx, 7, want))

	var got snapshot
	ok, err := cache.Get(ctx, 7, &got)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, want, got)
}

func TestCacheInvalidateDropsEntry(t *testing.T) {
	cache, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, 3, snapshot{EventID: 3, Available: 1}))
	require.NoError(t, cache.Invalidate(ctx, 3))

	var dest snapshot
	ok, err := cache.Get(ctx, 3, &dest)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCacheEntryExpiresOnTTL(t *testing.T) {
	cache, mr := newTestCache(t, 50*time.Millisecond)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, 9, snapshot{EventID: 9, Available: 5}))
	mr.FastForward(100 * time.Millisecond)

	var dest snapshot
	ok, err := cache.Get(ctx, 9, &dest)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCacheGetOnUnreachableRedisIsTreatedAsMiss(t *testing.T) {
	cache, mr := newTestCache(t, time.Minute)
	ctx := context.Background()
	require.NoError(t, cache.Set(ctx, 2, snapshot{EventID: 2, Available: 1}))

	mr.Close()

	var dest snapshot
	ok, err := cache.Get(ctx, 2, &dest)
	require.NoError(t, err)
	require.False(t, ok)
}
