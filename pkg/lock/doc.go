// Package lock provides a Redis-backed per-target distributed mutex so that
// no two mutating operations on the same target run concurrently. Unlike
// pkg/middleware's rate limiters, a Redis outage here must fail closed: a
// caller that cannot acquire the lock must not proceed as if it held it.
package lock
