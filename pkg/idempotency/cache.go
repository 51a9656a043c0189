package idempotency

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultWindow is the default dedup window for a checksum.
const DefaultWindow = 15 * time.Second

const keyPrefix = "registry:idem:"

// Cache deduplicates identical publish attempts for the same target within
// a short window, keyed by (targetID, checksum).
type Cache struct {
	l1     *lru.Cache[string, time.Time] // value is the entry's expiry time.
	l2     *redis.Client
	window time.Duration
}

// New builds a Cache. l2 may be nil to run L1-only (single-instance deployments).
func New(l2 *redis.Client, window time.Duration) (*Cache, error) {
	if window <= 0 {
		window = DefaultWindow
	}
	l1, err := lru.New[string, time.Time](4096)
	if err != nil {
		return nil, fmt.Errorf("idempotency: building L1: %w", err)
	}
	return &Cache{l1: l1, l2: l2, window: window}, nil
}

func (c *Cache) key(targetID, checksum string) string {
	return keyPrefix + targetID + ":" + checksum
}

// SeenRecently reports whether this (targetID, checksum) pair was already
// recorded within the dedup window, and records it if not — an atomic
// check-and-set so two concurrent callers never both see "not seen".
func (c *Cache) SeenRecently(ctx context.Context, targetID, checksum string) (bool, error) {
	key := c.key(targetID, checksum)

	if expiresAt, ok := c.l1.Get(key); ok {
		if time.Now().Before(expiresAt) {
			return true, nil
		}
		c.l1.Remove(key)
	}

	if c.l2 != nil {
		ok, err := c.l2.SetNX(ctx, key, 1, c.window).Result()
		if err != nil {
			return false, fmt.Errorf("idempotency: redis: %w", err)
		}
		if !ok {
			c.l1.Add(key, time.Now().Add(c.window))
			return true, nil
		}
	}

	c.l1.Add(key, time.Now().Add(c.window))
	return false, nil
}
