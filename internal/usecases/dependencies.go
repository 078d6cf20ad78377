package usecases

import (
	"context"
	"time"

	"vininfo.backend/internal/infrastructure/email"
)

// EmailSender delivers one rendered message
type EmailSender interface {
	Configured() bool
	Send(ctx context.Context, msg email.Message) error
}

// RunLocker keeps two runs of the same job apart. release is nil unless acquired.
type RunLocker interface {
	Acquire(ctx context.Context) (release func(context.Context) error, acquired bool, err error)
}

// AttemptLimiter counts failed attempts per key
type AttemptLimiter interface {
	Blocked(ctx context.Context, key string) (bool, time.Duration, error)
	Fail(ctx context.Context, key string) error
	Reset(ctx context.Context, key string) error
}

// SleepFunc waits for d or until ctx is done
type SleepFunc func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
