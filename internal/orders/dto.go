package orders

import (
	"time"

	"github.com/quarrylab/quarry/internal/shared"
)

// ListFilters narrows an order listing. UserID is forced to the caller for
// viewers regardless of the query string.
type ListFilters struct {
	Page   int
	Limit  int
	Status *Status
	UserID *int64
}

type orderItemForm struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"required,gt=0"`
}

type createOrderRequest struct {
	Items           []orderItemForm `json:"items" validate:"required,min=1,dive"`
	ShippingAddress string          `json:"shipping_address" validate:"required"`
	Notes           string          `json:"notes"`
}

type updateOrderRequest struct {
	Status          *Status `json:"status" validate:"omitempty,oneof=pending confirmed shipped"`
	ShippingAddress *string `json:"shipping_address"`
	Notes           *string `json:"notes"`
}

type orderItemResponse struct {
	ProductID int64   `json:"product_id"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Subtotal  float64 `json:"subtotal"`
}

type orderResponse struct {
	ID              int64               `json:"id"`
	OrderNumber     string              `json:"order_number"`
	UserID          int64               `json:"user_id"`
	Status          Status              `json:"status"`
	TotalAmount     float64             `json:"total_amount"`
	ShippingAddress string              `json:"shipping_address"`
	Notes           string              `json:"notes,omitempty"`
	Items           []orderItemResponse `json:"items"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

type listOrdersResponse struct {
	Data       []orderResponse   `json:"data"`
	Pagination shared.Pagination `json:"pagination"`
}

func toOrderResponse(o *Order) orderResponse {
	items := make([]orderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, orderItemResponse{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Subtotal:  it.UnitPrice * float64(it.Quantity),
		})
	}
	return orderResponse{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber,
		UserID:          o.UserID,
		Status:          o.Status,
		TotalAmount:     o.TotalAmount,
		ShippingAddress: o.ShippingAddress,
		Notes:           o.Notes,
		Items:           items,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}
