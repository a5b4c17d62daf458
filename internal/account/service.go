// AngelaMos | 2026
// service.go

package account

import (
	"context"
	"fmt"

	"github.com/driveready/driveready-api/internal/core"
)

// RoleResolver maps role names to role IDs. Implemented by the role
// package's cached resolver.
type RoleResolver interface {
	IDForName(ctx context.Context, name string) (string, error)
}

type Service struct {
	repo  Repository
	roles RoleResolver
}

func NewService(repo Repository, roles RoleResolver) *Service {
	return &Service{repo: repo, roles: roles}
}

func (s *Service) GetProfile(
	ctx context.Context,
	id string,
) (*Projection, error) {
	acct, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	projection := ToProjection(acct)
	return &projection, nil
}

// UpdateProfile applies a self-service update. Only the fields present
// on UpdateProfileRequest can change; sensitive fields are unreachable
// from this flow by construction.
func (s *Service) UpdateProfile(
	ctx context.Context,
	id string,
	req UpdateProfileRequest,
) (*Projection, error) {
	update := ProfileUpdate{
		Name:      req.Name,
		Phone:     req.Phone,
		Location:  req.Location,
		AvatarURL: req.AvatarURL,
	}

	if err := s.repo.UpdateProfile(ctx, id, update); err != nil {
		return nil, err
	}

	return s.GetProfile(ctx, id)
}

func (s *Service) Get(ctx context.Context, id string) (*Account, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(
	ctx context.Context,
	params ListParams,
) ([]Account, int, error) {
	return s.repo.List(ctx, params)
}

func (s *Service) SetRole(
	ctx context.Context,
	id, roleName string,
) (*Account, error) {
	roleID, err := s.roles.IDForName(ctx, roleName)
	if err != nil {
		if core.IsAppError(err) {
			return nil, err
		}
		return nil, fmt.Errorf(
			"set role: unknown role %q: %w",
			roleName,
			core.ErrInvalidInput,
		)
	}

	if err := s.repo.SetRole(ctx, id, roleID); err != nil {
		return nil, err
	}

	return s.repo.GetByID(ctx, id)
}

func (s *Service) SetActive(
	ctx context.Context,
	id string,
	active bool,
) (*Account, error) {
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		return nil, err
	}

	return s.repo.GetByID(ctx, id)
}

// RevokeSessions invalidates every outstanding token for the account.
func (s *Service) RevokeSessions(ctx context.Context, id string) error {
	return s.repo.IncrementTokenVersion(ctx, id)
}

// CanModify blocks admins from demoting or deactivating themselves,
// which would otherwise strand the system without an administrator.
func (s *Service) CanModify(requesterID, targetID string) error {
	if requesterID == targetID {
		return fmt.Errorf(
			"cannot modify own account via admin endpoint: %w",
			core.ErrForbidden,
		)
	}
	return nil
}
