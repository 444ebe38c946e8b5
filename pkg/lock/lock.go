// Package lock serializes work per key, such as all cart mutations and the
// finalize of a single user.
package lock

import (
	"context"
	"errors"
	"time"
)

// ErrNotAcquired is returned when a lock could not be taken before the
// context ended.
var ErrNotAcquired = errors.New("lock: not acquired")

// Locker takes an exclusive lock on key, blocking until it is free or ctx is
// done. The returned release func is safe to call more than once.
type Locker interface {
	Lock(ctx context.Context, key string) (release func(), err error)
}

// UserKey is the lock key guarding one user's cart and orders.
func UserKey(userID string) string {
	return "kapee:lock:user:" + userID
}

type bounded struct {
	Locker
	wait time.Duration
}

// WithWait bounds how long Lock blocks on l. A wait of zero or less
// returns l unchanged. Giving up reports context.DeadlineExceeded wrapped in
// ErrNotAcquired.
func WithWait(l Locker, wait time.Duration) Locker {
	if wait <= 0 {
		return l
	}
	return &bounded{Locker: l, wait: wait}
}

func (b *bounded) Lock(ctx context.Context, key string) (func(), error) {
	ctx, cancel := context.WithTimeout(ctx, b.wait)
	defer cancel()
	return b.Locker.Lock(ctx, key)
}
