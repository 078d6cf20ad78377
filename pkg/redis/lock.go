package redis

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock only when it is still owned by the caller.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

var (
	lockSetNX   = SetNX
	lockRelease = func(ctx context.Context, key, owner string) error {
		return releaseScript.Run(ctx, client, []string{key}, owner).Err()
	}
)

// Lock is a single-owner lease on a key.
type Lock struct {
	key   string
	owner string
}

// TryLock acquires key for ttl. ok is false when another owner holds it.
func TryLock(ctx context.Context, key string, ttl time.Duration) (*Lock, bool, error) {
	owner := uuid.NewString()
	ok, err := lockSetNX(ctx, key, owner, ttl)
	if err != nil || !ok {
		return nil, false, err
	}
	return &Lock{key: key, owner: owner}, true, nil
}

// Release gives the lease back if it has not expired and been taken over.
func (l *Lock) Release(ctx context.Context) error {
	if l == nil {
		return nil
	}
	return lockRelease(ctx, l.key, l.owner)
}

// RunLock is a fixed key and lease length for a job that must not overlap itself.
type RunLock struct {
	key string
	ttl time.Duration
}

// NewRunLock creates a run lock on key
func NewRunLock(key string, ttl time.Duration) *RunLock {
	return &RunLock{key: key, ttl: ttl}
}

// Acquire takes the lease. When acquired is false another run holds it and release is nil.
func (l *RunLock) Acquire(ctx context.Context) (release func(context.Context) error, acquired bool, err error) {
	if client == nil {
		return nil, false, ErrNotInitialized
	}
	lock, ok, err := TryLock(ctx, l.key, l.ttl)
	if err != nil || !ok {
		return nil, false, err
	}
	return lock.Release, true, nil
}
