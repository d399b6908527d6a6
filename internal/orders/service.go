package orders

import (
	"context"
	"sort"

	"github.com/quarrylab/quarry/internal/policy"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ItemInput is a requested order line.
type ItemInput struct {
	ProductID int64
	Quantity  int
}

// CreateInput carries everything needed to place an order. The owner is
// always the calling principal.
type CreateInput struct {
	Items           []ItemInput
	ShippingAddress string
	Notes           string
}

// Create places an order for the caller. Stock for every line is checked
// and decremented under row locks inside one transaction, so two orders
// competing for the same units cannot both succeed.
func (s *Service) Create(ctx context.Context, p policy.Principal, input CreateInput) (*Order, error) {
	if err := policy.Authorize(p, policy.ActionCreate, policy.ResourceOrders, p.ID); err != nil {
		return nil, err
	}
	if len(input.Items) == 0 {
		return nil, ErrEmptyOrder
	}

	// Lock products in ID order so concurrent creations cannot deadlock.
	items := make([]ItemInput, len(input.Items))
	copy(items, input.Items)
	sort.Slice(items, func(i, j int) bool { return items[i].ProductID < items[j].ProductID })

	order := &Order{
		OrderNumber:     newOrderNumber(),
		UserID:          p.ID,
		Status:          StatusPending,
		ShippingAddress: input.ShippingAddress,
		Notes:           input.Notes,
	}

	err := s.repo.WithTx(ctx, func(ctx context.Context, tx Repository) error {
		for _, it := range items {
			product, err := tx.GetProductForUpdate(ctx, it.ProductID)
			if err != nil {
				return err
			}
			if !product.IsActive {
				return ErrProductInactive
			}
			if product.Stock < it.Quantity {
				return &InsufficientStockError{
					ProductID: it.ProductID,
					Requested: it.Quantity,
					Available: product.Stock,
				}
			}
			if err := tx.AdjustStock(ctx, it.ProductID, -it.Quantity); err != nil {
				return err
			}
			order.Items = append(order.Items, OrderItem{
				ProductID: it.ProductID,
				Quantity:  it.Quantity,
				UnitPrice: product.Price,
			})
			order.TotalAmount += product.Price * float64(it.Quantity)
		}
		return tx.Insert(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// Get fetches one order. Orders the caller cannot see are reported as not
// found rather than forbidden, so viewers cannot probe for other users'
// order IDs.
func (s *Service) Get(ctx context.Context, p policy.Principal, id int64) (*Order, error) {
	o, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanSee(p, o.UserID) {
		return nil, ErrNotFound
	}
	if err := policy.Authorize(p, policy.ActionRead, policy.ResourceOrders, o.UserID); err != nil {
		return nil, err
	}
	return o, nil
}

// List returns orders visible to the caller. Viewers are pinned to their
// own orders regardless of the requested filter.
func (s *Service) List(ctx context.Context, p policy.Principal, filters ListFilters) ([]Order, int, error) {
	if err := policy.Authorize(p, policy.ActionRead, policy.ResourceOrders, p.ID); err != nil {
		return nil, 0, err
	}
	if !policy.CanSee(p, policy.NoOwner) {
		filters.UserID = &p.ID
	}
	return s.repo.List(ctx, filters)
}

// UpdateInput carries mutable order fields. A nil field is left unchanged.
type UpdateInput struct {
	Status          *Status
	ShippingAddress *string
	Notes           *string
}

// Update edits an order. Status changes must follow the forward lifecycle
// chain one step at a time; cancellation is not reachable through update
// because it has its own stock-restoring path. The order is read and written
// under one row lock so a concurrent cancellation cannot be overwritten.
func (s *Service) Update(ctx context.Context, p policy.Principal, id int64, input UpdateInput) (*Order, error) {
	var updated *Order
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx Repository) error {
		o, err := tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !policy.CanSee(p, o.UserID) {
			return ErrNotFound
		}
		if err := policy.Authorize(p, policy.ActionUpdate, policy.ResourceOrders, o.UserID); err != nil {
			return err
		}

		updates := map[string]any{}
		if input.Status != nil && *input.Status != o.Status {
			if *input.Status == StatusCancelled {
				return ErrStatusChange
			}
			if err := Transition(o.Status, *input.Status); err != nil {
				return err
			}
			updates["status"] = *input.Status
			o.Status = *input.Status
		}
		if input.ShippingAddress != nil {
			updates["shipping_address"] = *input.ShippingAddress
			o.ShippingAddress = *input.ShippingAddress
		}
		if input.Notes != nil {
			updates["notes"] = *input.Notes
			o.Notes = *input.Notes
		}
		if len(updates) > 0 {
			if err := tx.UpdateFields(ctx, id, updates); err != nil {
				return err
			}
		}
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Cancel moves a pending order to cancelled and puts every reserved unit
// back into stock, atomically.
func (s *Service) Cancel(ctx context.Context, p policy.Principal, id int64) (*Order, error) {
	var cancelled *Order
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx Repository) error {
		o, err := tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !policy.CanSee(p, o.UserID) {
			return ErrNotFound
		}
		if err := policy.Authorize(p, policy.ActionCancel, policy.ResourceOrders, o.UserID); err != nil {
			return err
		}
		if err := Transition(o.Status, StatusCancelled); err != nil {
			return err
		}
		for _, it := range o.Items {
			if err := tx.AdjustStock(ctx, it.ProductID, it.Quantity); err != nil {
				return err
			}
		}
		if err := tx.UpdateStatus(ctx, id, StatusCancelled); err != nil {
			return err
		}
		o.Status = StatusCancelled
		cancelled = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cancelled, nil
}

// Delete removes an order outright. Stock is not restored; deletion is a
// cleanup operation, not a business cancellation.
func (s *Service) Delete(ctx context.Context, p policy.Principal, id int64) error {
	o, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if !policy.CanSee(p, o.UserID) {
		return ErrNotFound
	}
	if err := policy.Authorize(p, policy.ActionDelete, policy.ResourceOrders, o.UserID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
