package cache

import (
	"context"
	"encoding/json"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// ChainCache is an optional Redis-backed cache for resolved referral
// chains. A nil *ChainCache is valid and caches nothing, so callers
// never need to branch on configuration.
type ChainCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// New returns nil when addr is empty or Redis is unreachable; chain
// resolution then always goes to the store.
func New(ctx context.Context, addr, password string, db int, ttl time.Duration) *ChainCache {
	if addr == "" {
		return nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil
	}
	return &ChainCache{rdb: rdb, ttl: ttl}
}

func (c *ChainCache) Get(ctx context.Context, userID string, v interface{}) bool {
	if c == nil {
		return false
	}
	raw, err := c.rdb.Get(ctx, key(userID)).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, v) == nil
}

func (c *ChainCache) Set(ctx context.Context, userID string, v interface{}) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	c.rdb.Set(ctx, key(userID), raw, c.ttl)
}

func (c *ChainCache) Invalidate(ctx context.Context, userID string) {
	if c == nil {
		return
	}
	c.rdb.Del(ctx, key(userID))
}

func key(userID string) string {
	return "referral-chain:" + userID
}
