package auth

import (
	"errors"
	"time"

	"github.com/quarrylab/quarry/internal/policy"
)

// User represents an authenticated user account.
type User struct {
	ID           int64
	Email        string
	Username     string
	FullName     string
	PasswordHash string
	Role         policy.Role
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

var (
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrAccountDisabled indicates the account exists but is deactivated.
	ErrAccountDisabled = errors.New("user account is deactivated")
	// ErrEmailTaken indicates the email is already registered.
	ErrEmailTaken = errors.New("email already registered")
	// ErrUsernameTaken indicates the username is already registered.
	ErrUsernameTaken = errors.New("username already taken")
)
