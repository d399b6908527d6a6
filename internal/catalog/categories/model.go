package categories

import (
	"errors"
	"time"
)

// Category represents a product grouping.
type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

var (
	// ErrNotFound indicates the category does not exist.
	ErrNotFound = errors.New("categories: not found")
	// ErrNameTaken indicates another category already uses the name.
	ErrNameTaken = errors.New("categories: name already exists")
)
