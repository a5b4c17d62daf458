// AngelaMos | 2026
// dto.go

package auth

import (
	"time"

	"github.com/driveready/driveready-api/internal/account"
)

type RegisterRequest struct {
	Name     string  `json:"name"     validate:"required,min=1,max=100"`
	Email    string  `json:"email"    validate:"required,email,max=255"`
	Password string  `json:"password" validate:"required,min=8,max=72"`
	Phone    *string `json:"phone,omitempty"    validate:"omitempty,e164"`
	Location *string `json:"location,omitempty" validate:"omitempty,max=255"`
}

// LoginRequest accepts either an email address or a phone number as the
// identifier.
type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required,max=255"`
	Password   string `json:"password"   validate:"required,max=72"`
}

type ForgotPasswordRequest struct {
	Identifier string `json:"identifier" validate:"required,max=255"`
}

type ResetPasswordRequest struct {
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type AuthResponse struct {
	Account   account.Projection `json:"account"`
	Token     string             `json:"token"`
	ExpiresAt time.Time          `json:"expires_at"`
}
