// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/driveready/driveready-api/internal/account"
	"github.com/driveready/driveready-api/internal/core"
	"github.com/driveready/driveready-api/internal/middleware"
	"github.com/driveready/driveready-api/internal/role"
)

// Mailer sends the account lifecycle emails. Sends happen off the
// request path; a failed send is logged, never surfaced to the caller.
type Mailer interface {
	SendVerificationEmail(ctx context.Context, to, name, token string) error
	SendPasswordResetEmail(ctx context.Context, to, name, token string) error
}

type Service struct {
	repo    account.Repository
	roles   account.RoleResolver
	hasher  *core.PasswordHasher
	tokens  *TokenManager
	revoker *RevocationStore
	mailer  Mailer
	policy  account.LockoutPolicy
}

func NewService(
	repo account.Repository,
	roles account.RoleResolver,
	hasher *core.PasswordHasher,
	tokens *TokenManager,
	revoker *RevocationStore,
	mailer Mailer,
	policy account.LockoutPolicy,
) *Service {
	return &Service{
		repo:    repo,
		roles:   roles,
		hasher:  hasher,
		tokens:  tokens,
		revoker: revoker,
		mailer:  mailer,
		policy:  policy,
	}
}

// Register creates an account with the default role, emails a
// verification link, and signs the user in.
func (s *Service) Register(
	ctx context.Context,
	req RegisterRequest,
) (*AuthResponse, error) {
	roleID, err := s.roles.IDForName(ctx, role.DefaultName)
	if err != nil {
		return nil, fmt.Errorf("resolve default role: %w", err)
	}

	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	acct := &account.Account{
		ID:           uuid.New().String(),
		Name:         req.Name,
		Email:        strings.ToLower(req.Email),
		Phone:        req.Phone,
		Location:     req.Location,
		PasswordHash: passwordHash,
		RoleID:       roleID,
	}

	if err := s.repo.Create(ctx, acct); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, core.DuplicateError("email or phone")
		}
		return nil, fmt.Errorf("create account: %w", err)
	}

	// Re-read through the role join so the projection carries the role
	// name.
	acct, err = s.repo.GetByID(ctx, acct.ID)
	if err != nil {
		return nil, fmt.Errorf("load created account: %w", err)
	}

	s.sendVerificationEmail(acct)

	return s.issueSession(acct)
}

// Login authenticates by email or phone. Checks run in a fixed order:
// lookup, lockout, active flag, then password. A failed verification
// increments the lockout counter atomically; unknown identifiers and
// wrong passwords produce the same response.
func (s *Service) Login(
	ctx context.Context,
	req LoginRequest,
) (*AuthResponse, error) {
	acct, err := s.repo.GetByIdentifier(ctx, req.Identifier)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			// Burn a hash comparison so unknown identifiers take as
			// long as wrong passwords.
			s.hasher.VerifyTimingSafe(req.Password, nil)
			return nil, core.InvalidCredentialsError()
		}
		return nil, fmt.Errorf("get account: %w", err)
	}

	if acct.IsLocked(time.Now()) {
		return nil, core.AccountLockedError()
	}

	if !acct.Active {
		return nil, core.AccountInactiveError()
	}

	if !s.hasher.VerifyTimingSafe(req.Password, &acct.PasswordHash) {
		attempts, lockUntil, recErr := s.repo.RecordLoginFailure(
			ctx,
			acct.ID,
			s.policy,
		)
		if recErr != nil {
			return nil, fmt.Errorf("record login failure: %w", recErr)
		}

		if account.Locked(lockUntil, time.Now()) {
			slog.Warn("account locked after repeated login failures",
				"account_id", acct.ID,
				"attempts", attempts,
			)
		}

		return nil, core.InvalidCredentialsError()
	}

	if err := s.repo.RecordLoginSuccess(ctx, acct.ID); err != nil {
		return nil, fmt.Errorf("record login success: %w", err)
	}

	return s.issueSession(acct)
}

// Logout revokes the presented session token by its ID. The token stays
// cryptographically valid until expiry; the revocation list is what
// makes it unusable.
func (s *Service) Logout(
	ctx context.Context,
	claims *middleware.SessionClaims,
) error {
	return s.revoker.Revoke(ctx, claims.JTI, claims.ExpiresAt)
}

// VerifyEmail consumes an emailed verification token. Verifying an
// already-verified address is reported as an error rather than silently
// succeeding, so stale links do not look live.
func (s *Service) VerifyEmail(ctx context.Context, token string) error {
	claims, err := s.tokens.VerifyAction(ctx, token, KindVerifyEmail)
	if err != nil {
		return err
	}

	acct, err := s.repo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.NotFoundError("account")
		}
		return fmt.Errorf("get account: %w", err)
	}

	if claims.TokenVersion != acct.TokenVersion {
		return core.TokenInvalidError()
	}

	if acct.EmailVerified {
		return core.ValidationError("email is already verified")
	}

	if err := s.repo.MarkEmailVerified(ctx, acct.ID); err != nil {
		return fmt.Errorf("mark email verified: %w", err)
	}

	return nil
}

// ForgotPassword emails a reset link when the identifier matches an
// account. The caller gets the same answer either way, so the endpoint
// cannot be used to probe which identifiers exist.
func (s *Service) ForgotPassword(ctx context.Context, identifier string) error {
	acct, err := s.repo.GetByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("get account: %w", err)
	}

	if !acct.Active {
		return nil
	}

	token, err := s.tokens.IssueAction(
		KindPasswordReset,
		acct.ID,
		acct.TokenVersion,
	)
	if err != nil {
		return fmt.Errorf("issue reset token: %w", err)
	}

	s.sendAsync("password reset", acct.ID, func(ctx context.Context) error {
		return s.mailer.SendPasswordResetEmail(ctx, acct.Email, acct.Name, token)
	})

	return nil
}

// ResetPassword consumes a reset token and stores the new hash. The
// token's version counter must still match the account's; the password
// update bumps the counter, so a reset link works exactly once and every
// session issued before the reset dies with it.
func (s *Service) ResetPassword(
	ctx context.Context,
	token, newPassword string,
) error {
	claims, err := s.tokens.VerifyAction(ctx, token, KindPasswordReset)
	if err != nil {
		return err
	}

	acct, err := s.repo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.NotFoundError("account")
		}
		return fmt.Errorf("get account: %w", err)
	}

	if claims.TokenVersion != acct.TokenVersion {
		return core.TokenInvalidError()
	}

	passwordHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.repo.UpdatePassword(ctx, acct.ID, passwordHash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	return nil
}

func (s *Service) issueSession(acct *account.Account) (*AuthResponse, error) {
	session, err := s.tokens.IssueSession(
		acct.ID,
		acct.RoleName,
		acct.TokenVersion,
	)
	if err != nil {
		return nil, fmt.Errorf("issue session token: %w", err)
	}

	return &AuthResponse{
		Account:   account.ToProjection(acct),
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
	}, nil
}

func (s *Service) sendVerificationEmail(acct *account.Account) {
	token, err := s.tokens.IssueAction(
		KindVerifyEmail,
		acct.ID,
		acct.TokenVersion,
	)
	if err != nil {
		slog.Error("issue verification token failed",
			"account_id", acct.ID,
			"error", err,
		)
		return
	}

	s.sendAsync("verification", acct.ID, func(ctx context.Context) error {
		return s.mailer.SendVerificationEmail(ctx, acct.Email, acct.Name, token)
	})
}

// sendAsync fires an email off the request path with its own deadline.
func (s *Service) sendAsync(
	kind, accountID string,
	send func(context.Context) error,
) {
	go func() {
		ctx, cancel := context.WithTimeout(
			context.Background(),
			30*time.Second,
		)
		defer cancel()

		if err := send(ctx); err != nil {
			slog.Error("send email failed",
				"kind", kind,
				"account_id", accountID,
				"error", err,
			)
		}
	}()
}
