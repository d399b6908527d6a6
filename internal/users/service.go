package users

import (
	"context"
	"errors"

	"github.com/quarrylab/quarry/internal/policy"
)

// Service applies the access policy to user management operations.
type Service struct {
	repo Repository
}

// NewService constructs a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns users matching the filters. Any authenticated role may list.
func (s *Service) List(ctx context.Context, p policy.Principal, filters ListFilters) ([]User, int, error) {
	if err := policy.Authorize(p, policy.ActionRead, policy.ResourceUsers, policy.NoOwner); err != nil {
		return nil, 0, err
	}
	return s.repo.List(ctx, filters)
}

// Get fetches a single user by id.
func (s *Service) Get(ctx context.Context, p policy.Principal, id int64) (User, error) {
	if err := policy.Authorize(p, policy.ActionRead, policy.ResourceUsers, policy.NoOwner); err != nil {
		return User{}, err
	}
	return s.repo.Get(ctx, id)
}

// UpdateInput carries optional user fields; nil means leave unchanged.
type UpdateInput struct {
	Email    *string
	Username *string
	FullName *string
	Role     *policy.Role
	IsActive *bool
}

// Update modifies a user account. Admin only. Email and username must stay
// unique across accounts.
func (s *Service) Update(ctx context.Context, p policy.Principal, id int64, in UpdateInput) (User, error) {
	if err := policy.Authorize(p, policy.ActionUpdate, policy.ResourceUsers, policy.NoOwner); err != nil {
		return User{}, err
	}

	if _, err := s.repo.Get(ctx, id); err != nil {
		return User{}, err
	}

	updates := make(map[string]any)
	if in.Email != nil {
		existing, err := s.repo.FindByEmail(ctx, *in.Email)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return User{}, err
		}
		if err == nil && existing.ID != id {
			return User{}, ErrEmailInUse
		}
		updates["email"] = *in.Email
	}
	if in.Username != nil {
		existing, err := s.repo.FindByUsername(ctx, *in.Username)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return User{}, err
		}
		if err == nil && existing.ID != id {
			return User{}, ErrUsernameInUse
		}
		updates["username"] = *in.Username
	}
	if in.FullName != nil {
		updates["full_name"] = *in.FullName
	}
	if in.Role != nil {
		if !in.Role.Valid() {
			return User{}, errors.New("users: invalid role")
		}
		updates["role"] = string(*in.Role)
	}
	if in.IsActive != nil {
		updates["is_active"] = *in.IsActive
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		return User{}, err
	}
	return s.repo.Get(ctx, id)
}

// Delete removes a user account. Admin only; self-deletion is rejected.
func (s *Service) Delete(ctx context.Context, p policy.Principal, id int64) error {
	if err := policy.Authorize(p, policy.ActionDelete, policy.ResourceUsers, policy.NoOwner); err != nil {
		return err
	}
	if id == p.ID {
		return ErrSelfDelete
	}
	return s.repo.Delete(ctx, id)
}
