package usecases

import "time"

// Email pacing
const DefaultSendDelay = 600 * time.Millisecond

// Reminder dispatch run lock
const (
	DispatchLockKey        = "lock:reminder-dispatch"
	DefaultDispatchLockTTL = 10 * time.Minute
)

// Dispatch triggers, used as the metrics label
const (
	TriggerCron      = "cron"
	TriggerScheduler = "scheduler"
)

// Login throttling
const (
	LoginMaxFailures      = 10
	LoginFailureWindow    = 15 * time.Minute
	LoginFailureKeyPrefix = "login:failures:"
)

// Verification code throttling, keyed by user id
const (
	VerifyMaxFailures      = 5
	VerifyFailureWindow    = 15 * time.Minute
	VerifyFailureKeyPrefix = "verify:failures:"
)

// TestRecipientID stands in for the user id when a test broadcast goes to an unknown address.
const TestRecipientID = "test-user-id"
