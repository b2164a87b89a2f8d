package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache TTLs
const (
	TTLUnreadCount = 1 * time.Minute // unread feed counters, needs freshness
	TTLDefault     = 5 * time.Minute
)

// Cache key prefixes
const (
	PrefixUnread = "notifications:unread:"
)

// Service redis-backed cache. All operations degrade to misses or no-ops
// when the client is nil so callers can run without redis.
type Service interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error

	GetUnreadCount(ctx context.Context, userID string) (int64, error)
	SetUnreadCount(ctx context.Context, userID string, count int64) error
	InvalidateUnreadCount(ctx context.Context, userID string) error

	IsAvailable() bool
	Ping(ctx context.Context) error
}

type redisCache struct {
	client *redis.Client
}

// NewService creates a new cache service
func NewService(client *redis.Client) Service {
	return &redisCache{client: client}
}

// IsAvailable reports whether a redis client is configured
func (c *redisCache) IsAvailable() bool {
	return c.client != nil
}

// Ping tests the redis connection
func (c *redisCache) Ping(ctx context.Context) error {
	if c.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	return c.client.Ping(ctx).Err()
}

// Get reads a JSON value from the cache
func (c *redisCache) Get(ctx context.Context, key string, dest interface{}) error {
	if c.client == nil {
		return fmt.Errorf("redis not available")
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}

	return json.Unmarshal(data, dest)
}

// Set stores a JSON value in the cache
func (c *redisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c.client == nil {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, key, data, ttl).Err()
}

// Delete removes keys from the cache
func (c *redisCache) Delete(ctx context.Context, keys ...string) error {
	if c.client == nil {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

func (c *redisCache) unreadKey(userID string) string {
	return PrefixUnread + userID
}

func (c *redisCache) GetUnreadCount(ctx context.Context, userID string) (int64, error) {
	if c.client == nil {
		return 0, fmt.Errorf("redis not available")
	}
	val, err := c.client.Get(ctx, c.unreadKey(userID)).Result()
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(val, 10, 64)
}

func (c *redisCache) SetUnreadCount(ctx context.Context, userID string, count int64) error {
	if c.client == nil {
		return nil
	}
	return c.client.Set(ctx, c.unreadKey(userID), count, TTLUnreadCount).Err()
}

func (c *redisCache) InvalidateUnreadCount(ctx context.Context, userID string) error {
	if c.client == nil {
		return nil
	}
	return c.client.Del(ctx, c.unreadKey(userID)).Err()
}
