package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/platinummonkey/schemahub/pkg/registrytypes"
	"github.com/platinummonkey/schemahub/pkg/storage"
)

// RedisClient handles caching operations for schema versions and checks.
type RedisClient struct {
	client *redis.Client
	config storage.Config
}

// NewRedisClient creates a new Redis client.
func NewRedisClient(config storage.Config) (*RedisClient, error) {
	opts, err := redis.ParseURL(config.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	if config.RedisPassword != "" {
		opts.Password = config.RedisPassword
	}
	if config.RedisDB >= 0 {
		opts.DB = config.RedisDB
	}
	if config.RedisMaxRetries > 0 {
		opts.MaxRetries = config.RedisMaxRetries
	}
	if config.RedisPoolSize > 0 {
		opts.PoolSize = config.RedisPoolSize
	}

	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second
	opts.PoolTimeout = 4 * time.Second

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisClient{
		client: client,
		config: config,
	}, nil
}

// GetSchemaVersion retrieves a schema version from cache.
func (c *RedisClient) GetSchemaVersion(ctx context.Context, id string) (*registrytypes.SchemaVersion, error) {
	key := fmt.Sprintf("schema_version:%s", id)

	data, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, nil // cache miss
	} else if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var v registrytypes.SchemaVersion
	if err := json.Unmarshal([]byte(data), &v); err != nil {
		c.client.Del(ctx, key)
		return nil, fmt.Errorf("failed to unmarshal schema version: %w", err)
	}

	return &v, nil
}

// SetSchemaVersion stores a schema version in cache.
func (c *RedisClient) SetSchemaVersion(ctx context.Context, v *registrytypes.SchemaVersion) error {
	key := fmt.Sprintf("schema_version:%s", v.ID)
	ttl := c.config.CacheTTL["schema_version"]

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal schema version: %w", err)
	}

	return c.client.Set(ctx, key, data, ttl).Err()
}

// InvalidateSchemaVersion removes a schema version from cache.
func (c *RedisClient) InvalidateSchemaVersion(ctx context.Context, id string) error {
	key := fmt.Sprintf("schema_version:%s", id)
	return c.client.Del(ctx, key).Err()
}

// GetLatestVersionID retrieves the id of a target's latest version from cache.
func (c *RedisClient) GetLatestVersionID(ctx context.Context, targetID string) (string, error) {
	key := fmt.Sprintf("latest:%s", targetID)

	id, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", nil
	} else if err != nil {
		return "", fmt.Errorf("redis get failed: %w", err)
	}
	return id, nil
}

// SetLatestVersionID caches the id of a target's latest version.
func (c *RedisClient) SetLatestVersionID(ctx context.Context, targetID, versionID string) error {
	key := fmt.Sprintf("latest:%s", targetID)
	ttl := c.config.CacheTTL["latest"]
	return c.client.Set(ctx, key, versionID, ttl).Err()
}

// InvalidateLatest removes the cached latest-version pointer for a target,
// called on every publish and delete so stale pointers never survive a write.
func (c *RedisClient) InvalidateLatest(ctx context.Context, targetID string) error {
	key := fmt.Sprintf("latest:%s", targetID)
	return c.client.Del(ctx, key).Err()
}

// InvalidatePatterns removes keys matching the given glob patterns via SCAN.
func (c *RedisClient) InvalidatePatterns(ctx context.Context, patterns ...string) error {
	for _, pattern := range patterns {
		iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
		for iter.Next(ctx) {
			if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
				return fmt.Errorf("failed to delete key %s: %w", iter.Val(), err)
			}
		}
		if err := iter.Err(); err != nil {
			return fmt.Errorf("scan failed for pattern %s: %w", pattern, err)
		}
	}
	return nil
}

// Ping checks Redis connectivity.
func (c *RedisClient) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// GetClient returns the underlying Redis client, used by pkg/lock and
// pkg/idempotency which need raw SetNX/Eval access beyond this wrapper.
func (c *RedisClient) GetClient() *redis.Client {
	return c.client
}

// Close closes the Redis connection.
func (c *RedisClient) Close() error {
	return c.client.Close()
}

// GetPoolStats returns connection pool statistics.
func (c *RedisClient) GetPoolStats() *redis.PoolStats {
	return c.client.PoolStats()
}

// Incr increments a counter.
func (c *RedisClient) Incr(ctx context.Context, key string) (int64, error) {
	return c.client.Incr(ctx, key).Result()
}

// Expire sets a key's expiration.
func (c *RedisClient) Expire(ctx context.Context, key string, expiration time.Duration) error {
	return c.client.Expire(ctx, key, expiration).Err()
}

// TTL returns the remaining time to live of a key.
func (c *RedisClient) TTL(ctx context.Context, key string) (time.Duration, error) {
	return c.client.TTL(ctx, key).Result()
}

// SetNX sets a key only if it doesn't exist.
func (c *RedisClient) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error) {
	return c.client.SetNX(ctx, key, value, expiration).Result()
}

// GetDel atomically gets and deletes a key.
func (c *RedisClient) GetDel(ctx context.Context, key string) (string, error) {
	return c.client.GetDel(ctx, key).Result()
}
