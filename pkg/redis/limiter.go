package redis

import (
	"context"
	"strconv"
	"time"
)

// AttemptLimiter counts failures per key inside a fixed window.
type AttemptLimiter struct {
	prefix string
	max    int64
	window time.Duration
}

// NewAttemptLimiter blocks a key after max failures until its window expires.
func NewAttemptLimiter(prefix string, max int64, window time.Duration) *AttemptLimiter {
	return &AttemptLimiter{prefix: prefix, max: max, window: window}
}

// Blocked reports whether key reached the limit and how long until the window resets.
func (l *AttemptLimiter) Blocked(ctx context.Context, key string) (bool, time.Duration, error) {
	if client == nil {
		return false, 0, ErrNotInitialized
	}
	raw, err := Get(ctx, l.prefix+key)
	if IsNil(err) {
		return false, 0, nil
	}
	if err != nil {
		return false, 0, err
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return false, 0, err
	}
	if n < l.max {
		return false, 0, nil
	}
	ttl, err := client.TTL(ctx, l.prefix+key).Result()
	if err != nil {
		return true, l.window, nil
	}
	if ttl < 0 {
		ttl = l.window
	}
	return true, ttl, nil
}

// Fail records one failure for key
func (l *AttemptLimiter) Fail(ctx context.Context, key string) error {
	if client == nil {
		return ErrNotInitialized
	}
	_, err := IncrWithTTL(ctx, l.prefix+key, l.window)
	return err
}

// Reset forgets the failures of key
func (l *AttemptLimiter) Reset(ctx context.Context, key string) error {
	if client == nil {
		return ErrNotInitialized
	}
	return Del(ctx, l.prefix+key)
}
