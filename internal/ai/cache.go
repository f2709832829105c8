package ai

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"

	"veracity/internal/config"
	"veracity/internal/errors"
	"veracity/internal/types"
)

const (
	cacheTask      = "ai_detection"
	redisKeyPrefix = "veracity:classification:"
)

// Cache stores successful classifications keyed by cacheKey
type Cache interface {
	Get(ctx context.Context, key string) (*types.Classification, bool)
	Set(ctx context.Context, key string, value *types.Classification)
	Close() error
}

// cacheKey derives the lookup key from the whole text, the model and the task.
// Fields are separated by NUL so that no two inputs share a key.
func cacheKey(text, model string) string {
	h := sha256.New()
	for _, part := range []string{cacheTask, model, text} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// NewCache builds the configured cache backend. It returns nil when caching is disabled.
func NewCache(cfg config.CacheConfig, logger *errors.Logger) (Cache, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	switch cfg.Backend {
	case config.CacheBackendRedis:
		return newRedisCache(cfg, logger)
	default:
		return newMemoryCache(cfg.TTL, cfg.MaxEntries), nil
	}
}

// memoryCache is a size-bounded LRU whose entries expire after the configured TTL.
// A maxEntries of zero or less leaves it unbounded.
type memoryCache struct {
	lru *expirable.LRU[string, types.Classification]
}

func newMemoryCache(ttl time.Duration, maxEntries int) *memoryCache {
	return &memoryCache{lru: expirable.NewLRU[string, types.Classification](maxEntries, nil, ttl)}
}

func (c *memoryCache) Get(_ context.Context, key string) (*types.Classification, bool) {
	value, ok := c.lru.Get(key)
	if !ok {
		return nil, false
	}
	return &value, true
}

func (c *memoryCache) Set(_ context.Context, key string, value *types.Classification) {
	if value == nil {
		return
	}
	c.lru.Add(key, *value)
}

func (c *memoryCache) Len() int { return c.lru.Len() }

func (c *memoryCache) Close() error {
	c.lru.Purge()
	return nil
}

// redisCache shares classifications between instances through Redis
type redisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *errors.Logger
}

func newRedisCache(cfg config.CacheConfig, logger *errors.Logger) (*redisCache, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, errors.NewInvalidConfigurationError("invalid classifier cache redis URL", err)
	}
	if logger == nil {
		logger = errors.NewDiscardLogger()
	}
	return &redisCache{client: redis.NewClient(opts), ttl: cfg.TTL, logger: logger}, nil
}

func (c *redisCache) Get(ctx context.Context, key string) (*types.Classification, bool) {
	raw, err := c.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("Classifier cache read failed", "error", err.Error())
		}
		return nil, false
	}
	var value types.Classification
	if err := json.Unmarshal(raw, &value); err != nil {
		c.logger.Warn("Discarding undecodable classifier cache entry", "error", err.Error())
		return nil, false
	}
	return &value, true
}

func (c *redisCache) Set(ctx context.Context, key string, value *types.Classification) {
	if value == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, redisKeyPrefix+key, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("Classifier cache write failed", "error", err.Error())
	}
}

func (c *redisCache) Close() error {
	return c.client.Close()
}
