// AngelaMos | 2026
// lockout.go

package account

import (
	"time"
)

// LockoutPolicy decides when repeated failed logins lock an account and
// for how long. The transition logic lives here as pure functions; the
// repository mirrors it in a single conditional UPDATE so concurrent
// failures never lose increments.
type LockoutPolicy struct {
	Threshold int
	Duration  time.Duration
}

func DefaultLockoutPolicy() LockoutPolicy {
	return LockoutPolicy{Threshold: 5, Duration: 2 * time.Hour}
}

// NextFailureState returns the counter and lock-expiry after one more
// failed password verification at time now.
//
// An expired lock is cleared lazily here rather than by a sweeper: the
// failure that finds a stale lock starts a fresh window at count 1.
// Reaching the threshold while unlocked sets the lock.
func (p LockoutPolicy) NextFailureState(
	attempts int,
	lockUntil *time.Time,
	now time.Time,
) (int, *time.Time) {
	if lockUntil != nil && !lockUntil.After(now) {
		return 1, nil
	}

	attempts++

	if attempts >= p.Threshold && lockUntil == nil {
		expiry := now.Add(p.Duration)
		return attempts, &expiry
	}

	return attempts, lockUntil
}

// Locked reports whether the pair (attempts, lockUntil) represents a
// locked account at time now.
func Locked(lockUntil *time.Time, now time.Time) bool {
	return lockUntil != nil && lockUntil.After(now)
}
