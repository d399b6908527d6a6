package users

import (
	"errors"
	"time"

	"github.com/quarrylab/quarry/internal/policy"
)

// User represents a user account for management.
type User struct {
	ID        int64
	Email     string
	Username  string
	FullName  string
	Role      policy.Role
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

var (
	// ErrNotFound indicates the requested user does not exist.
	ErrNotFound = errors.New("users: not found")
	// ErrEmailInUse indicates another account already uses the email.
	ErrEmailInUse = errors.New("users: email already in use")
	// ErrUsernameInUse indicates another account already uses the username.
	ErrUsernameInUse = errors.New("users: username already in use")
	// ErrSelfDelete indicates an admin attempted to delete its own account.
	ErrSelfDelete = errors.New("users: cannot delete yourself")
)

// ListFilters narrows user listings.
type ListFilters struct {
	Page     int
	Limit    int
	Role     *policy.Role
	IsActive *bool
}
