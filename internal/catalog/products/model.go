package products

import (
	"errors"
	"time"
)

// Product represents a sellable catalog item.
type Product struct {
	ID          int64     `json:"id"`
	SKU         string    `json:"sku"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Price       float64   `json:"price"`
	Stock       int       `json:"stock"`
	IsActive    bool      `json:"is_active"`
	CategoryID  *int64    `json:"category_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

var (
	// ErrNotFound indicates the product does not exist.
	ErrNotFound = errors.New("products: not found")
	// ErrSKUTaken indicates another product already uses the SKU.
	ErrSKUTaken = errors.New("products: sku already exists")
	// ErrCategoryNotFound indicates the referenced category does not exist.
	ErrCategoryNotFound = errors.New("products: category not found")
	// ErrInvalidPrice indicates a zero or negative price.
	ErrInvalidPrice = errors.New("products: price must be positive")
	// ErrNegativeStock indicates a negative stock level.
	ErrNegativeStock = errors.New("products: stock cannot be negative")
)
