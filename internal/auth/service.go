package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/quarrylab/quarry/internal/policy"
)

// Service wraps authentication business rules.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Authenticate validates username/password credentials. A disabled account is
// reported distinctly from bad credentials so callers can surface it.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*User, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}
	return user, nil
}

// RegisterInput collects the fields accepted at registration.
type RegisterInput struct {
	Email    string
	Username string
	FullName string
	Password string
	Role     policy.Role
}

// Register creates a new user account. The role defaults to tester when not
// supplied; the sandbox deliberately lets testers mint accounts of any role.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*User, error) {
	role := in.Role
	if role == "" {
		role = policy.RoleTester
	}
	if !role.Valid() {
		return nil, errors.New("auth: invalid role")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	return s.repo.Create(ctx, User{
		Email:        in.Email,
		Username:     in.Username,
		FullName:     in.FullName,
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     true,
	})
}

// Profile loads the account behind an authenticated principal.
func (s *Service) Profile(ctx context.Context, id int64) (*User, error) {
	return s.repo.FindByID(ctx, id)
}
