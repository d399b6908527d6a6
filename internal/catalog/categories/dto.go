package categories

// CategoryForm carries create/update payloads.
type CategoryForm struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=2000"`
	IsActive    *bool  `json:"is_active"`
}
