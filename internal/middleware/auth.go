// AngelaMos | 2026
// auth.go

package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	account "github.com/driveready/driveready-api/internal/account/model"
	"github.com/driveready/driveready-api/internal/core"
)

// SessionClaims are the verified contents of a session token.
type SessionClaims struct {
	UserID       string
	Role         string
	TokenVersion int
	JTI          string
	ExpiresAt    time.Time
}

type TokenVerifier interface {
	VerifySession(
		ctx context.Context,
		token string,
	) (*SessionClaims, error)
}

// AccountLoader resolves the subject of a verified token to its current
// account state. Exactly one load happens per authenticated request.
type AccountLoader interface {
	GetByID(ctx context.Context, id string) (*account.Account, error)
}

// SessionRevoker answers whether a token ID was revoked by logout.
type SessionRevoker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Authenticator gates every protected route: extract bearer token,
// verify it, load the account, and reject locked-out states before the
// handler ever runs. Missing accounts and deactivated accounts get the
// same generic message so the response does not reveal which it was.
func Authenticator(
	verifier TokenVerifier,
	accounts AccountLoader,
	revoker SessionRevoker,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ExtractToken(r)

			if token == "" {
				core.JSONError(
					w,
					core.UnauthorizedError("access token is required"),
				)
				return
			}

			claims, err := verifier.VerifySession(r.Context(), token)
			if err != nil {
				handleAuthError(w, err)
				return
			}

			if revoker != nil {
				revoked, revErr := revoker.IsRevoked(r.Context(), claims.JTI)
				if revErr != nil {
					// Revocation storage being down must not take
					// authentication down with it.
					slog.Warn("session revocation check failed",
						"error", revErr,
					)
				} else if revoked {
					core.JSONError(w, core.TokenRevokedError())
					return
				}
			}

			acct, err := accounts.GetByID(r.Context(), claims.UserID)
			if err != nil {
				if errors.Is(err, core.ErrNotFound) {
					core.JSONError(w, core.TokenInvalidError())
					return
				}
				core.InternalServerError(w, err)
				return
			}

			if !acct.Active {
				core.JSONError(w, core.TokenInvalidError())
				return
			}

			if claims.TokenVersion < acct.TokenVersion {
				core.JSONError(w, core.TokenRevokedError())
				return
			}

			ctx := r.Context()
			ctx = context.WithValue(ctx, UserIDKey, claims.UserID)
			ctx = context.WithValue(ctx, UserRoleKey, acct.RoleName)
			ctx = context.WithValue(ctx, ClaimsKey, claims)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole allows only the listed roles through. Must run after
// Authenticator.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	roleSet := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		roleSet[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userRole := GetUserRole(r.Context())

			if userRole == "" {
				core.JSONError(
					w,
					core.UnauthorizedError("authentication required"),
				)
				return
			}

			if _, ok := roleSet[userRole]; !ok {
				core.JSONError(
					w,
					core.ForbiddenError("insufficient permissions"),
				)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func RequireAdmin(next http.Handler) http.Handler {
	return RequireRole("admin")(next)
}

// RequireOwnership permits access when the path parameter equals the
// caller's own ID. Admins pass unconditionally.
func RequireOwnership(param string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := GetUserID(r.Context())

			if userID == "" {
				core.JSONError(
					w,
					core.UnauthorizedError("authentication required"),
				)
				return
			}

			if IsAdmin(r.Context()) {
				next.ServeHTTP(w, r)
				return
			}

			if chi.URLParam(r, param) != userID {
				core.JSONError(w, core.ForbiddenError("access denied"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ExtractToken reads the bearer token from the Authorization header,
// falling back to the access_token cookie for browser sessions.
func ExtractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}

	if cookie, err := r.Cookie("access_token"); err == nil {
		return cookie.Value
	}

	return ""
}

func handleAuthError(w http.ResponseWriter, err error) {
	if core.IsAppError(err) {
		core.JSONError(w, err)
		return
	}

	switch {
	case errors.Is(err, core.ErrTokenExpired):
		core.JSONError(w, core.TokenExpiredError())
	case errors.Is(err, core.ErrTokenRevoked):
		core.JSONError(w, core.TokenRevokedError())
	default:
		core.JSONError(w, core.TokenInvalidError())
	}
}
