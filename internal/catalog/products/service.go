package products

import (
	"context"
	"errors"

	"github.com/quarrylab/quarry/internal/catalog/categories"
	"github.com/quarrylab/quarry/internal/catalog/shared"
	"github.com/quarrylab/quarry/internal/policy"
)

type Service struct {
	repo         Repository
	categoryRepo categories.Repository
}

func NewService(repo Repository, categoryRepo categories.Repository) *Service {
	return &Service{repo: repo, categoryRepo: categoryRepo}
}

func (s *Service) List(ctx context.Context, p policy.Principal, filters shared.ListFilters) ([]Product, int, error) {
	if err := policy.Authorize(p, policy.ActionRead, policy.ResourceProducts, policy.NoOwner); err != nil {
		return nil, 0, err
	}
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, p policy.Principal, id int64) (Product, error) {
	if err := policy.Authorize(p, policy.ActionRead, policy.ResourceProducts, policy.NoOwner); err != nil {
		return Product{}, err
	}
	if id <= 0 {
		return Product{}, errors.New("invalid product ID")
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, p policy.Principal, product Product) (Product, error) {
	if err := policy.Authorize(p, policy.ActionCreate, policy.ResourceProducts, policy.NoOwner); err != nil {
		return Product{}, err
	}
	if err := s.validate(product); err != nil {
		return Product{}, err
	}
	if err := s.verifyCategory(ctx, product.CategoryID); err != nil {
		return Product{}, err
	}
	return s.repo.Create(ctx, product)
}

func (s *Service) Update(ctx context.Context, p policy.Principal, id int64, patch ProductPatch) (Product, error) {
	if err := policy.Authorize(p, policy.ActionUpdate, policy.ResourceProducts, policy.NoOwner); err != nil {
		return Product{}, err
	}
	if id <= 0 {
		return Product{}, errors.New("invalid product ID")
	}

	product, err := s.repo.Get(ctx, id)
	if err != nil {
		return Product{}, err
	}

	if patch.SKU != nil {
		product.SKU = *patch.SKU
	}
	if patch.Name != nil {
		product.Name = *patch.Name
	}
	if patch.Description != nil {
		product.Description = *patch.Description
	}
	if patch.Price != nil {
		product.Price = *patch.Price
	}
	if patch.Stock != nil {
		product.Stock = *patch.Stock
	}
	if patch.IsActive != nil {
		product.IsActive = *patch.IsActive
	}
	if patch.CategoryID != nil {
		product.CategoryID = patch.CategoryID
	}

	if err := s.validate(product); err != nil {
		return Product{}, err
	}
	if patch.CategoryID != nil {
		if err := s.verifyCategory(ctx, product.CategoryID); err != nil {
			return Product{}, err
		}
	}

	if err := s.repo.Update(ctx, id, product); err != nil {
		return Product{}, err
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, p policy.Principal, id int64) error {
	if err := policy.Authorize(p, policy.ActionDelete, policy.ResourceProducts, policy.NoOwner); err != nil {
		return err
	}
	if id <= 0 {
		return errors.New("invalid product ID")
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) verifyCategory(ctx context.Context, categoryID *int64) error {
	if categoryID == nil {
		return nil
	}
	if _, err := s.categoryRepo.Get(ctx, *categoryID); err != nil {
		if errors.Is(err, categories.ErrNotFound) {
			return ErrCategoryNotFound
		}
		return err
	}
	return nil
}
