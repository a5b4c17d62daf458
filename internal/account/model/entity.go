// AngelaMos | 2026
// entity.go

// Package model holds the account entity in a leaf package so that
// both internal/account and internal/middleware can depend on it
// without importing each other.
package model

import (
	"time"
)

// Account is the credential-bearing record for a platform user. The
// password hash and lockout counters never leave this package except
// through the repository.
type Account struct {
	ID            string     `db:"id"`
	Name          string     `db:"name"`
	Email         string     `db:"email"`
	Phone         *string    `db:"phone"`
	Location      *string    `db:"location"`
	AvatarURL     *string    `db:"avatar_url"`
	PasswordHash  string     `db:"password_hash"`
	RoleID        string     `db:"role_id"`
	RoleName      string     `db:"role_name"`
	EmailVerified bool       `db:"email_verified"`
	Active        bool       `db:"active"`
	LastLogin     *time.Time `db:"last_login"`
	LoginAttempts int        `db:"login_attempts"`
	LockUntil     *time.Time `db:"lock_until"`
	TokenVersion  int        `db:"token_version"`

	// Subscription bookkeeping lives outside the auth flows; the fields
	// are carried here because they belong to the same record and are
	// read-only through this package.
	SubscriptionPlan   *string    `db:"subscription_plan"`
	SubscriptionActive bool       `db:"subscription_active"`
	SubscriptionStart  *time.Time `db:"subscription_start"`
	SubscriptionEnd    *time.Time `db:"subscription_end"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// IsLocked reports whether the account is locked at the given instant.
// An absent or past lock-expiry means unlocked.
func (a *Account) IsLocked(now time.Time) bool {
	return a.LockUntil != nil && a.LockUntil.After(now)
}

func (a *Account) IsAdmin() bool {
	return a.RoleName == "admin"
}
