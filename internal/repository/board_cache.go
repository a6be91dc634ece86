package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"predman/internal/domain"

	"github.com/redis/go-redis/v9"
)

// BoardCache keeps sorted boards in redis. A nil client turns every call
// into a miss.
type BoardCache struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewBoardCache(client *redis.Client, ttl time.Duration) *BoardCache {
	if ttl < 0 {
		ttl = 0
	}
	return &BoardCache{redis: client, ttl: ttl}
}

func (c *BoardCache) Get(ctx context.Context, projectID string) (domain.Board, bool) {
	if c == nil || c.redis == nil {
		return domain.Board{}, false
	}
	data, err := c.redis.Get(ctx, boardCacheKey(projectID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			// fall back to postgres on redis errors
			_ = c.redis.Del(ctx, boardCacheKey(projectID)).Err()
		}
		return domain.Board{}, false
	}
	var b domain.Board
	if err := json.Unmarshal(data, &b); err != nil {
		_ = c.redis.Del(ctx, boardCacheKey(projectID)).Err()
		return domain.Board{}, false
	}
	return b, true
}

func (c *BoardCache) Set(ctx context.Context, projectID string, b domain.Board) {
	if c == nil || c.redis == nil || c.ttl == 0 {
		return
	}
	data, err := json.Marshal(b)
	if err != nil {
		return
	}
	_ = c.redis.Set(ctx, boardCacheKey(projectID), data, c.ttl).Err()
}

func (c *BoardCache) Invalidate(ctx context.Context, projectID string) {
	if c == nil || c.redis == nil {
		return
	}
	_ = c.redis.Del(ctx, boardCacheKey(projectID)).Err()
}

func boardCacheKey(projectID string) string {
	return "board:" + projectID
}
