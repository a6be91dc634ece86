package repository

import (
	"context"
	"testing"
	"time"

	"predman/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCache(t *testing.T, ttl time.Duration) (*BoardCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewBoardCache(client, ttl), mr
}

func TestBoardCacheMissThenHit(t *testing.T) {
	cache, mr := newCache(t, time.Minute)
	ctx := context.Background()

	_, ok := cache.Get(ctx, "p1")
	assert.False(t, ok)

	b := domain.NewBoard()
	b.Planned = []domain.Task{{ID: "a", Name: "first", Status: domain.StatusPlanned}}
	cache.Set(ctx, "p1", b)

	got, ok := cache.Get(ctx, "p1")
	require.True(t, ok)
	assert.Equal(t, "first", got.Planned[0].Name)

	ttl := mr.TTL(boardCacheKey("p1"))
	assert.True(t, ttl > 0 && ttl <= time.Minute, "unexpected ttl %v", ttl)
}

func TestBoardCacheInvalidate(t *testing.T) {
	cache, _ := newCache(t, time.Minute)
	ctx := context.Background()

	cache.Set(ctx, "p1", domain.NewBoard())
	cache.Invalidate(ctx, "p1")

	_, ok := cache.Get(ctx, "p1")
	assert.False(t, ok)
}

func TestBoardCacheDropsCorruptEntries(t *testing.T) {
	cache, mr := newCache(t, time.Minute)
	require.NoError(t, mr.Set(boardCacheKey("p1"), "{not json"))

	_, ok := cache.Get(context.Background(), "p1")
	assert.False(t, ok)
	assert.False(t, mr.Exists(boardCacheKey("p1")))
}

func TestBoardCacheDisabled(t *testing.T) {
	var nilCache *BoardCache
	_, ok := nilCache.Get(context.Background(), "p1")
	assert.False(t, ok)

	zeroTTL, mr := newCache(t, 0)
	zeroTTL.Set(context.Background(), "p1", domain.NewBoard())
	assert.False(t, mr.Exists(boardCacheKey("p1")))
}
