package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// ErrNotAcquired is returned when a target is already locked by another holder.
var ErrNotAcquired = errors.New("lock: not acquired")

// ErrUnavailable is returned when Redis cannot be reached. Callers must treat
// this the same as ErrNotAcquired and refuse to proceed, the fail-closed
// counterpart to the rate limiter's fail-open default.
var ErrUnavailable = errors.New("lock: redis unavailable")

const keyPrefix = "registry:lock:"

// releaseScript deletes the key only if it still holds our fencing token,
// so a lock that expired and was re-acquired by someone else is never torn
// down by a late caller.
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
else
	return 0
end
`

// Handle is a held lock; call Release to give it up before its TTL expires.
type Handle struct {
	TargetID string
	Token    string
	client   *redis.Client
}

// Locker acquires per-target mutual exclusion.
type Locker struct {
	client *redis.Client
	ttl    time.Duration
}

// New builds a Locker with the given lease TTL. A TTL of zero defaults to 30s.
func New(client *redis.Client, ttl time.Duration) *Locker {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Locker{client: client, ttl: ttl}
}

// Acquire attempts to take the lock for targetID, returning ErrNotAcquired if
// another holder has it and ErrUnavailable if Redis could not be reached.
func (l *Locker) Acquire(ctx context.Context, targetID string) (*Handle, error) {
	token := uuid.NewString()
	key := keyPrefix + targetID

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, err)
	}
	if !ok {
		return nil, ErrNotAcquired
	}
	return &Handle{TargetID: targetID, Token: token, client: l.client}, nil
}

// Release gives up the lock, but only if it is still held by this handle's
// token. Releasing an already-expired handle is a no-op.
func (h *Handle) Release(ctx context.Context) error {
	key := keyPrefix + h.TargetID
	res := h.client.Eval(ctx, releaseScript, []string{key}, h.Token)
	if err := res.Err(); err != nil {
		return fmt.Errorf("%w: %s", ErrUnavailable, err)
	}
	return nil
}

// WithLock runs fn while holding the per-target lock, releasing it
// afterward regardless of fn's outcome.
func (l *Locker) WithLock(ctx context.Context, targetID string, fn func(ctx context.Context) error) error {
	h, err := l.Acquire(ctx, targetID)
	if err != nil {
		return err
	}
	defer h.Release(ctx)
	return fn(ctx)
}
