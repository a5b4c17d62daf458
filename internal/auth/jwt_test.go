// AngelaMos | 2026
// jwt_test.go

package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driveready/driveready-api/internal/config"
	"github.com/driveready/driveready-api/internal/core"
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		Secret:          "test-secret-that-is-long-enough-to-sign",
		SessionTokenTTL: time.Hour,
		ActionTokenTTL:  time.Minute,
		Issuer:          "driveready-api",
		Audience:        "driveready",
	}
}

func newTestTokenManager(t *testing.T, cfg config.AuthConfig) *TokenManager {
	t.Helper()
	m, err := NewTokenManager(cfg)
	require.NoError(t, err)
	return m
}

func TestIssueAndVerifySession(t *testing.T) {
	t.Parallel()
	m := newTestTokenManager(t, testAuthConfig())

	session, err := m.IssueSession("user-1", "student", 3)
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.NotEmpty(t, session.JTI)

	claims, err := m.VerifySession(context.Background(), session.Token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "student", claims.Role)
	assert.Equal(t, 3, claims.TokenVersion)
	assert.Equal(t, session.JTI, claims.JTI)
	assert.WithinDuration(t, session.ExpiresAt, claims.ExpiresAt, time.Second)
}

func TestVerifySession_Expired(t *testing.T) {
	t.Parallel()

	cfg := testAuthConfig()
	cfg.SessionTokenTTL = -time.Minute
	m := newTestTokenManager(t, cfg)

	session, err := m.IssueSession("user-1", "student", 0)
	require.NoError(t, err)

	_, err = m.VerifySession(context.Background(), session.Token)
	require.ErrorIs(t, err, core.ErrTokenExpired)
}

func TestVerifySession_WrongSecret(t *testing.T) {
	t.Parallel()

	m := newTestTokenManager(t, testAuthConfig())

	otherCfg := testAuthConfig()
	otherCfg.Secret = "a-different-secret-also-long-enough-here"
	other := newTestTokenManager(t, otherCfg)

	session, err := other.IssueSession("user-1", "student", 0)
	require.NoError(t, err)

	_, err = m.VerifySession(context.Background(), session.Token)
	require.ErrorIs(t, err, core.ErrTokenInvalid)
}

func TestVerifySession_Malformed(t *testing.T) {
	t.Parallel()
	m := newTestTokenManager(t, testAuthConfig())

	for _, token := range []string{"", "garbage", "a.b.c"} {
		_, err := m.VerifySession(context.Background(), token)
		assert.ErrorIs(t, err, core.ErrTokenInvalid, "token %q", token)
	}
}

func TestVerifySession_RejectsActionToken(t *testing.T) {
	t.Parallel()
	m := newTestTokenManager(t, testAuthConfig())

	token, err := m.IssueAction(KindPasswordReset, "user-1", 0)
	require.NoError(t, err)

	_, err = m.VerifySession(context.Background(), token)
	require.ErrorIs(t, err, core.ErrTokenInvalid)
}

func TestIssueAndVerifyAction(t *testing.T) {
	t.Parallel()
	m := newTestTokenManager(t, testAuthConfig())

	token, err := m.IssueAction(KindVerifyEmail, "user-9", 2)
	require.NoError(t, err)

	claims, err := m.VerifyAction(context.Background(), token, KindVerifyEmail)
	require.NoError(t, err)
	assert.Equal(t, "user-9", claims.UserID)
	assert.Equal(t, 2, claims.TokenVersion)
}

func TestVerifyAction_KindMismatch(t *testing.T) {
	t.Parallel()
	m := newTestTokenManager(t, testAuthConfig())

	reset, err := m.IssueAction(KindPasswordReset, "user-1", 0)
	require.NoError(t, err)

	// A reset token must not verify an email, and a session token must
	// not reset a password.
	_, err = m.VerifyAction(context.Background(), reset, KindVerifyEmail)
	require.ErrorIs(t, err, core.ErrTokenInvalid)

	session, err := m.IssueSession("user-1", "student", 0)
	require.NoError(t, err)

	_, err = m.VerifyAction(
		context.Background(),
		session.Token,
		KindPasswordReset,
	)
	require.ErrorIs(t, err, core.ErrTokenInvalid)
}

func TestVerifyAction_Expired(t *testing.T) {
	t.Parallel()

	cfg := testAuthConfig()
	cfg.ActionTokenTTL = -time.Minute
	m := newTestTokenManager(t, cfg)

	token, err := m.IssueAction(KindVerifyEmail, "user-1", 0)
	require.NoError(t, err)

	_, err = m.VerifyAction(context.Background(), token, KindVerifyEmail)
	require.ErrorIs(t, err, core.ErrTokenExpired)
}
