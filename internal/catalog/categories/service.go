package categories

import (
	"context"
	"errors"

	"github.com/quarrylab/quarry/internal/catalog/shared"
	"github.com/quarrylab/quarry/internal/policy"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, p policy.Principal, filters shared.ListFilters) ([]Category, int, error) {
	if err := policy.Authorize(p, policy.ActionRead, policy.ResourceCategories, policy.NoOwner); err != nil {
		return nil, 0, err
	}
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, p policy.Principal, id int64) (Category, error) {
	if err := policy.Authorize(p, policy.ActionRead, policy.ResourceCategories, policy.NoOwner); err != nil {
		return Category{}, err
	}
	if id <= 0 {
		return Category{}, errors.New("invalid category ID")
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, p policy.Principal, category Category) (Category, error) {
	if err := policy.Authorize(p, policy.ActionCreate, policy.ResourceCategories, policy.NoOwner); err != nil {
		return Category{}, err
	}
	if err := s.validate(category); err != nil {
		return Category{}, err
	}
	return s.repo.Create(ctx, category)
}

func (s *Service) Update(ctx context.Context, p policy.Principal, id int64, category Category) (Category, error) {
	if err := policy.Authorize(p, policy.ActionUpdate, policy.ResourceCategories, policy.NoOwner); err != nil {
		return Category{}, err
	}
	if id <= 0 {
		return Category{}, errors.New("invalid category ID")
	}
	if err := s.validate(category); err != nil {
		return Category{}, err
	}
	if err := s.repo.Update(ctx, id, category); err != nil {
		return Category{}, err
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, p policy.Principal, id int64) error {
	if err := policy.Authorize(p, policy.ActionDelete, policy.ResourceCategories, policy.NoOwner); err != nil {
		return err
	}
	if id <= 0 {
		return errors.New("invalid category ID")
	}
	return s.repo.Delete(ctx, id)
}
