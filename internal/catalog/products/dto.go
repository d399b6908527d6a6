package products

// ProductForm carries create payloads.
type ProductForm struct {
	SKU         string  `json:"sku" validate:"required,max=50"`
	Name        string  `json:"name" validate:"required,max=200"`
	Description string  `json:"description" validate:"max=2000"`
	Price       float64 `json:"price" validate:"required,gt=0"`
	Stock       int     `json:"stock" validate:"gte=0"`
	IsActive    *bool   `json:"is_active"`
	CategoryID  *int64  `json:"category_id" validate:"omitempty,gt=0"`
}

// ProductPatch carries partial update payloads; nil fields stay unchanged.
type ProductPatch struct {
	SKU         *string  `json:"sku" validate:"omitempty,max=50"`
	Name        *string  `json:"name" validate:"omitempty,max=200"`
	Description *string  `json:"description" validate:"omitempty,max=2000"`
	Price       *float64 `json:"price" validate:"omitempty,gt=0"`
	Stock       *int     `json:"stock" validate:"omitempty,gte=0"`
	IsActive    *bool    `json:"is_active"`
	CategoryID  *int64   `json:"category_id" validate:"omitempty,gt=0"`
}
