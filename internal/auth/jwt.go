// AngelaMos | 2026
// jwt.go

package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"

	"github.com/driveready/driveready-api/internal/config"
	"github.com/driveready/driveready-api/internal/core"
	"github.com/driveready/driveready-api/internal/middleware"
)

// TokenKind tags what a token is good for. Session tokens authenticate
// requests; action tokens authorize exactly one account operation from
// an emailed link and are short-lived.
type TokenKind string

const (
	KindSession       TokenKind = "session"
	KindVerifyEmail   TokenKind = "verify_email"
	KindPasswordReset TokenKind = "password_reset"
)

// TokenManager signs and verifies all platform tokens with a single
// server-held symmetric secret. Payloads are signed, not encrypted:
// they carry only the subject ID, role, and version counter.
type TokenManager struct {
	key    jwk.Key
	config config.AuthConfig
}

func NewTokenManager(cfg config.AuthConfig) (*TokenManager, error) {
	key, err := jwk.Import([]byte(cfg.Secret))
	if err != nil {
		return nil, fmt.Errorf("import signing secret: %w", err)
	}

	if setErr := key.Set(jwk.AlgorithmKey, jwa.HS256()); setErr != nil {
		return nil, fmt.Errorf("set algorithm: %w", setErr)
	}

	return &TokenManager{key: key, config: cfg}, nil
}

type SessionTokenData struct {
	Token     string
	JTI       string
	ExpiresAt time.Time
}

func (m *TokenManager) IssueSession(
	userID, role string,
	tokenVersion int,
) (*SessionTokenData, error) {
	now := time.Now()
	jti := uuid.New().String()
	expiresAt := now.Add(m.config.SessionTokenTTL)

	token, err := jwt.NewBuilder().
		JwtID(jti).
		Issuer(m.config.Issuer).
		Audience([]string{m.config.Audience}).
		Subject(userID).
		IssuedAt(now).
		Expiration(expiresAt).
		NotBefore(now).
		Claim("role", role).
		Claim("token_version", tokenVersion).
		Claim("kind", string(KindSession)).
		Build()
	if err != nil {
		return nil, fmt.Errorf("build session token: %w", err)
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256(), m.key))
	if err != nil {
		return nil, fmt.Errorf("sign session token: %w", err)
	}

	return &SessionTokenData{
		Token:     string(signed),
		JTI:       jti,
		ExpiresAt: expiresAt,
	}, nil
}

func (m *TokenManager) VerifySession(
	ctx context.Context,
	tokenString string,
) (*middleware.SessionClaims, error) {
	token, err := m.parse(tokenString)
	if err != nil {
		return nil, err
	}

	if err := m.requireKind(token, KindSession); err != nil {
		return nil, err
	}

	subject, ok := token.Subject()
	if !ok || subject == "" {
		return nil, fmt.Errorf(
			"verify session token: missing subject: %w",
			core.ErrTokenInvalid,
		)
	}

	var roleStr string
	if err := token.Get("role", &roleStr); err != nil {
		return nil, fmt.Errorf(
			"verify session token: missing role claim: %w",
			core.ErrTokenInvalid,
		)
	}

	var versionFloat float64
	if err := token.Get("token_version", &versionFloat); err != nil {
		return nil, fmt.Errorf(
			"verify session token: missing token_version claim: %w",
			core.ErrTokenInvalid,
		)
	}

	jti, _ := token.JwtID()
	expiresAt, _ := token.Expiration()

	return &middleware.SessionClaims{
		UserID:       subject,
		Role:         roleStr,
		TokenVersion: int(versionFloat),
		JTI:          jti,
		ExpiresAt:    expiresAt,
	}, nil
}

// ActionClaims are the verified contents of an emailed link token.
type ActionClaims struct {
	UserID       string
	TokenVersion int
}

func (m *TokenManager) IssueAction(
	kind TokenKind,
	userID string,
	tokenVersion int,
) (string, error) {
	now := time.Now()

	token, err := jwt.NewBuilder().
		JwtID(uuid.New().String()).
		Issuer(m.config.Issuer).
		Audience([]string{m.config.Audience}).
		Subject(userID).
		IssuedAt(now).
		Expiration(now.Add(m.config.ActionTokenTTL)).
		NotBefore(now).
		Claim("token_version", tokenVersion).
		Claim("kind", string(kind)).
		Build()
	if err != nil {
		return "", fmt.Errorf("build action token: %w", err)
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256(), m.key))
	if err != nil {
		return "", fmt.Errorf("sign action token: %w", err)
	}

	return string(signed), nil
}

// VerifyAction checks signature, expiry, and that the token was minted
// for the expected purpose. A session token can never stand in for a
// reset link, or vice versa.
func (m *TokenManager) VerifyAction(
	ctx context.Context,
	tokenString string,
	kind TokenKind,
) (*ActionClaims, error) {
	token, err := m.parse(tokenString)
	if err != nil {
		return nil, err
	}

	if err := m.requireKind(token, kind); err != nil {
		return nil, err
	}

	subject, ok := token.Subject()
	if !ok || subject == "" {
		return nil, fmt.Errorf(
			"verify action token: missing subject: %w",
			core.ErrTokenInvalid,
		)
	}

	var versionFloat float64
	if err := token.Get("token_version", &versionFloat); err != nil {
		return nil, fmt.Errorf(
			"verify action token: missing token_version claim: %w",
			core.ErrTokenInvalid,
		)
	}

	return &ActionClaims{
		UserID:       subject,
		TokenVersion: int(versionFloat),
	}, nil
}

func (m *TokenManager) parse(tokenString string) (jwt.Token, error) {
	token, err := jwt.Parse(
		[]byte(tokenString),
		jwt.WithKey(jwa.HS256(), m.key),
		jwt.WithValidate(true),
		jwt.WithIssuer(m.config.Issuer),
		jwt.WithAudience(m.config.Audience),
	)
	if err != nil {
		if isTokenExpiredError(err) {
			return nil, fmt.Errorf("verify token: %w", core.ErrTokenExpired)
		}
		return nil, fmt.Errorf("verify token: %w", core.ErrTokenInvalid)
	}

	return token, nil
}

func (m *TokenManager) requireKind(token jwt.Token, kind TokenKind) error {
	var tokenKind string
	if err := token.Get("kind", &tokenKind); err != nil ||
		tokenKind != string(kind) {
		return fmt.Errorf(
			"verify token: wrong token kind: %w",
			core.ErrTokenInvalid,
		)
	}
	return nil
}

func isTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "exp") &&
		strings.Contains(errStr, "not satisfied")
}
