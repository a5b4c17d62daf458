// AngelaMos | 2026
// lockout_test.go

package account

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextFailureState_IncrementsBelowThreshold(t *testing.T) {
	t.Parallel()

	policy := LockoutPolicy{Threshold: 5, Duration: 2 * time.Hour}
	now := time.Now()

	attempts, lockUntil := policy.NextFailureState(0, nil, now)
	assert.Equal(t, 1, attempts)
	assert.Nil(t, lockUntil)

	attempts, lockUntil = policy.NextFailureState(3, nil, now)
	assert.Equal(t, 4, attempts)
	assert.Nil(t, lockUntil)
}

func TestNextFailureState_LocksAtThreshold(t *testing.T) {
	t.Parallel()

	policy := LockoutPolicy{Threshold: 5, Duration: 2 * time.Hour}
	now := time.Now()

	attempts, lockUntil := policy.NextFailureState(4, nil, now)
	assert.Equal(t, 5, attempts)
	require.NotNil(t, lockUntil)
	assert.Equal(t, now.Add(2*time.Hour), *lockUntil)
}

func TestNextFailureState_FullSequence(t *testing.T) {
	t.Parallel()

	policy := LockoutPolicy{Threshold: 5, Duration: 2 * time.Hour}
	now := time.Now()

	attempts := 0
	var lockUntil *time.Time

	for i := 1; i <= 4; i++ {
		attempts, lockUntil = policy.NextFailureState(attempts, lockUntil, now)
		assert.Equal(t, i, attempts)
		assert.Nil(t, lockUntil, "attempt %d must not lock", i)
	}

	attempts, lockUntil = policy.NextFailureState(attempts, lockUntil, now)
	assert.Equal(t, 5, attempts)
	require.NotNil(t, lockUntil)
	assert.True(t, Locked(lockUntil, now))
}

func TestNextFailureState_ExpiredLockRestartsWindow(t *testing.T) {
	t.Parallel()

	policy := LockoutPolicy{Threshold: 5, Duration: 2 * time.Hour}
	now := time.Now()
	expired := now.Add(-time.Minute)

	attempts, lockUntil := policy.NextFailureState(5, &expired, now)
	assert.Equal(t, 1, attempts)
	assert.Nil(t, lockUntil)
}

func TestNextFailureState_ActiveLockKeepsExpiry(t *testing.T) {
	t.Parallel()

	policy := LockoutPolicy{Threshold: 5, Duration: 2 * time.Hour}
	now := time.Now()
	active := now.Add(time.Hour)

	// Failure while locked counts, but the lock window is not extended.
	attempts, lockUntil := policy.NextFailureState(5, &active, now)
	assert.Equal(t, 6, attempts)
	require.NotNil(t, lockUntil)
	assert.Equal(t, active, *lockUntil)
}

func TestLocked(t *testing.T) {
	t.Parallel()

	now := time.Now()
	future := now.Add(time.Minute)
	past := now.Add(-time.Minute)

	assert.False(t, Locked(nil, now))
	assert.True(t, Locked(&future, now))
	assert.False(t, Locked(&past, now))
	// A lock expiring exactly now counts as expired.
	assert.False(t, Locked(&now, now))
}

func TestAccountIsLocked(t *testing.T) {
	t.Parallel()

	now := time.Now()
	future := now.Add(time.Hour)

	acct := Account{}
	assert.False(t, acct.IsLocked(now))

	acct.LockUntil = &future
	assert.True(t, acct.IsLocked(now))
	assert.False(t, acct.IsLocked(future.Add(time.Second)))
}
