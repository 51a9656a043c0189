package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/platinummonkey/schemahub/pkg/registrytypes"
)

// OrgRateLimitMiddleware enforces a per-organization API request budget on
// top of the per-user/per-IP limits in ratelimit.go, using a Redis
// fixed-window counter (the same INCR+EXPIRE pattern as
// DistributedRateLimiter). It must run behind TenantContextMiddleware so an
// *registrytypes.Organization is already in the request context; a request
// with no resolved organization is not org-rate-limited.
type OrgRateLimitMiddleware struct {
	redis             *redis.Client
	requestsPerWindow int
	window            time.Duration
	fallbackEnabled   bool // fail open on Redis errors
}

// NewOrgRateLimitMiddleware creates an OrgRateLimitMiddleware allowing
// requestsPerWindow requests per organization per window.
func NewOrgRateLimitMiddleware(redisClient *redis.Client, requestsPerWindow int, window time.Duration) *OrgRateLimitMiddleware {
	return &OrgRateLimitMiddleware{
		redis:             redisClient,
		requestsPerWindow: requestsPerWindow,
		window:            window,
		fallbackEnabled:   true,
	}
}

// SetFallbackEnabled controls whether to fail open (true) or closed (false) on Redis errors
func (m *OrgRateLimitMiddleware) SetFallbackEnabled(enabled bool) {
	m.fallbackEnabled = enabled
}

// Handler wraps an HTTP handler with per-organization API rate limiting.
func (m *OrgRateLimitMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		org := GetOrganization(r.Context())
		if org == nil {
			next.ServeHTTP(w, r)
			return
		}

		allowed, err := m.allow(r.Context(), org)
		if err != nil {
			if m.fallbackEnabled {
				next.ServeHTTP(w, r)
				return
			}
			http.Error(w, "service temporarily unavailable", http.StatusServiceUnavailable)
			return
		}

		if !allowed {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", fmt.Sprintf("%.0f", m.window.Seconds()))
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":"organization API rate limit exceeded"}`))
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (m *OrgRateLimitMiddleware) allow(ctx context.Context, org *registrytypes.Organization) (bool, error) {
	key := fmt.Sprintf("orgratelimit:%s", org.ID)

	pipe := m.redis.Pipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, m.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return true, fmt.Errorf("redis error: %w", err)
	}

	return incr.Val() <= int64(m.requestsPerWindow), nil
}

// HealthCheck verifies Redis connectivity for org rate limiting
func (m *OrgRateLimitMiddleware) HealthCheck(ctx context.Context) error {
	return m.redis.Ping(ctx).Err()
}
