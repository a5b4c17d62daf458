// AngelaMos | 2026
// dto.go

package account

import (
	"time"
)

// Projection is the public view of an account. The password hash and
// lockout counters are deliberately absent.
type Projection struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Email         string        `json:"email"`
	Phone         *string       `json:"phone,omitempty"`
	Location      *string       `json:"location,omitempty"`
	AvatarURL     *string       `json:"avatar_url,omitempty"`
	Role          string        `json:"role"`
	EmailVerified bool          `json:"email_verified"`
	Active        bool          `json:"active"`
	LastLogin     *time.Time    `json:"last_login,omitempty"`
	Subscription  *Subscription `json:"subscription,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
}

// Subscription is the public view of the plan reference carried on the
// account record.
type Subscription struct {
	Plan      string     `json:"plan"`
	Active    bool       `json:"active"`
	StartedAt *time.Time `json:"started_at,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

func ToProjection(a *Account) Projection {
	p := Projection{
		ID:            a.ID,
		Name:          a.Name,
		Email:         a.Email,
		Phone:         a.Phone,
		Location:      a.Location,
		AvatarURL:     a.AvatarURL,
		Role:          a.RoleName,
		EmailVerified: a.EmailVerified,
		Active:        a.Active,
		LastLogin:     a.LastLogin,
		CreatedAt:     a.CreatedAt,
	}

	if a.SubscriptionPlan != nil {
		p.Subscription = &Subscription{
			Plan:      *a.SubscriptionPlan,
			Active:    a.SubscriptionActive,
			StartedAt: a.SubscriptionStart,
			ExpiresAt: a.SubscriptionEnd,
		}
	}

	return p
}

func ToProjectionList(accounts []Account) []Projection {
	projections := make([]Projection, 0, len(accounts))
	for _, a := range accounts {
		projections = append(projections, ToProjection(&a))
	}
	return projections
}

// UpdateProfileRequest carries the only fields a user may change about
// themselves. Password, email, role, verification and lockout state have
// dedicated flows; anything else in the payload is dropped at decode.
type UpdateProfileRequest struct {
	Name      *string `json:"name,omitempty"      validate:"omitempty,min=1,max=100"`
	Phone     *string `json:"phone,omitempty"     validate:"omitempty,e164"`
	Location  *string `json:"location,omitempty"  validate:"omitempty,max=255"`
	AvatarURL *string `json:"avatar_url,omitempty" validate:"omitempty,url,max=512"`
}

// ProfileUpdate is the repository-level shape of an allowed profile
// change.
type ProfileUpdate struct {
	Name      *string
	Phone     *string
	Location  *string
	AvatarURL *string
}

type UpdateRoleRequest struct {
	Role string `json:"role" validate:"required,min=1,max=50"`
}

type SetActiveRequest struct {
	Active *bool `json:"active" validate:"required"`
}

type ListParams struct {
	Page     int
	PageSize int
	Search   string
	Role     string
	Active   *bool
}

func (p *ListParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
}

func (p *ListParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}
