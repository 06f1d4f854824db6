package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache TTLs
const (
	TTLPreset  = 5 * time.Minute  // preset detail (invalidated on every mutation)
	TTLForm    = 10 * time.Minute // form definitions (change rarely)
	TTLDefault = 5 * time.Minute
)

// Cache key prefixes
const (
	PrefixPreset = "preset:"
	PrefixForm   = "form:"
)

// ErrCacheMiss is returned when a key is absent
var ErrCacheMiss = errors.New("cache miss")

// Service Redis cache service interface
type Service interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error

	// Preset cache
	GetPreset(ctx context.Context, tenantID string, presetID uint64, dest interface{}) error
	SetPreset(ctx context.Context, tenantID string, presetID uint64, data interface{}) error
	InvalidatePreset(ctx context.Context, tenantID string, presetID uint64) error

	IsAvailable() bool
	Ping(ctx context.Context) error
}

// redisCache Redis-backed cache implementation
type redisCache struct {
	client *redis.Client
}

// NewService creates a new cache Service
func NewService(client *redis.Client) Service {
	return &redisCache{client: client}
}

func presetKey(tenantID string, presetID uint64) string {
	return fmt.Sprintf("%s%s:%d", PrefixPreset, tenantID, presetID)
}

func (c *redisCache) Get(ctx context.Context, key string, dest interface{}) error {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}

func (c *redisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, raw, ttl).Err()
}

func (c *redisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

func (c *redisCache) GetPreset(ctx context.Context, tenantID string, presetID uint64, dest interface{}) error {
	return c.Get(ctx, presetKey(tenantID, presetID), dest)
}

func (c *redisCache) SetPreset(ctx context.Context, tenantID string, presetID uint64, data interface{}) error {
	return c.Set(ctx, presetKey(tenantID, presetID), data, TTLPreset)
}

func (c *redisCache) InvalidatePreset(ctx context.Context, tenantID string, presetID uint64) error {
	return c.Delete(ctx, presetKey(tenantID, presetID))
}

func (c *redisCache) IsAvailable() bool {
	return c.client != nil
}

func (c *redisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
