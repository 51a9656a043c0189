package notifier

import (
	"sync"
	"time"
)

// RateLimiter implements token-bucket rate limiting per webhook, so one slow
// or misbehaving endpoint can't starve delivery workers serving the rest.
type RateLimiter struct {
	mu           sync.RWMutex
	buckets      map[string]*tokenBucket
	maxTokens    int
	refillPeriod time.Duration
}

type tokenBucket struct {
	mu           sync.Mutex
	tokens       int
	maxTokens    int
	refillPeriod time.Duration
	lastRefill   time.Time
}

// NewRateLimiter creates a limiter allowing maxRequests per period, per webhook.
func NewRateLimiter(maxRequests int, period time.Duration) *RateLimiter {
	return &RateLimiter{
		buckets:      make(map[string]*tokenBucket),
		maxTokens:    maxRequests,
		refillPeriod: period,
	}
}

// Allow reports whether a delivery attempt for webhookID may proceed now.
func (rl *RateLimiter) Allow(webhookID string) bool {
	rl.mu.Lock()
	bucket, exists := rl.buckets[webhookID]
	if !exists {
		bucket = &tokenBucket{
			tokens:       rl.maxTokens,
			maxTokens:    rl.maxTokens,
			refillPeriod: rl.refillPeriod,
			lastRefill:   time.Now(),
		}
		rl.buckets[webhookID] = bucket
	}
	rl.mu.Unlock()

	return bucket.take()
}

func (tb *tokenBucket) take() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(tb.lastRefill)
	if elapsed >= tb.refillPeriod {
		periods := int(elapsed / tb.refillPeriod)
		tb.tokens = min(tb.tokens+periods, tb.maxTokens)
		tb.lastRefill = tb.lastRefill.Add(time.Duration(periods) * tb.refillPeriod)
	}

	if tb.tokens > 0 {
		tb.tokens--
		return true
	}
	return false
}

// Reset clears a webhook's bucket, giving it a fresh allowance.
func (rl *RateLimiter) Reset(webhookID string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.buckets, webhookID)
}

// GetRemaining reports the tokens currently available to a webhook.
func (rl *RateLimiter) GetRemaining(webhookID string) int {
	rl.mu.RLock()
	bucket, exists := rl.buckets[webhookID]
	rl.mu.RUnlock()

	if !exists {
		return rl.maxTokens
	}

	bucket.mu.Lock()
	defer bucket.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(bucket.lastRefill)
	if elapsed >= bucket.refillPeriod {
		periods := int(elapsed / bucket.refillPeriod)
		bucket.tokens = min(bucket.tokens+periods, bucket.maxTokens)
		bucket.lastRefill = bucket.lastRefill.Add(time.Duration(periods) * bucket.refillPeriod)
	}
	return bucket.tokens
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
