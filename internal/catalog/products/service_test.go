package products

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarrylab/quarry/internal/catalog/categories"
	"github.com/quarrylab/quarry/internal/catalog/shared"
	"github.com/quarrylab/quarry/internal/policy"
)

type memoryRepo struct {
	products map[int64]Product
	nextID   int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{products: make(map[int64]Product), nextID: 1}
}

func (r *memoryRepo) List(ctx context.Context, filters shared.ListFilters) ([]Product, int, error) {
	var out []Product
	for _, p := range r.products {
		if filters.CategoryID != nil && (p.CategoryID == nil || *p.CategoryID != *filters.CategoryID) {
			continue
		}
		if filters.MinPrice != nil && p.Price < *filters.MinPrice {
			continue
		}
		if filters.MaxPrice != nil && p.Price > *filters.MaxPrice {
			continue
		}
		if filters.InStock != nil {
			if *filters.InStock && p.Stock == 0 {
				continue
			}
			if !*filters.InStock && p.Stock > 0 {
				continue
			}
		}
		out = append(out, p)
	}
	return out, len(out), nil
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (Product, error) {
	if p, ok := r.products[id]; ok {
		return p, nil
	}
	return Product{}, ErrNotFound
}

func (r *memoryRepo) Create(ctx context.Context, product Product) (Product, error) {
	for _, existing := range r.products {
		if existing.SKU == product.SKU {
			return Product{}, ErrSKUTaken
		}
	}
	product.ID = r.nextID
	r.nextID++
	r.products[product.ID] = product
	return product, nil
}

func (r *memoryRepo) Update(ctx context.Context, id int64, product Product) error {
	if _, ok := r.products[id]; !ok {
		return ErrNotFound
	}
	product.ID = id
	r.products[id] = product
	return nil
}

func (r *memoryRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.products[id]; !ok {
		return ErrNotFound
	}
	delete(r.products, id)
	return nil
}

type categoryRepoStub struct {
	ids map[int64]bool
}

func (s *categoryRepoStub) List(ctx context.Context, filters shared.ListFilters) ([]categories.Category, int, error) {
	return nil, 0, nil
}

func (s *categoryRepoStub) Get(ctx context.Context, id int64) (categories.Category, error) {
	if s.ids[id] {
		return categories.Category{ID: id, Name: "stub"}, nil
	}
	return categories.Category{}, categories.ErrNotFound
}

func (s *categoryRepoStub) Create(ctx context.Context, c categories.Category) (categories.Category, error) {
	return c, nil
}

func (s *categoryRepoStub) Update(ctx context.Context, id int64, c categories.Category) error {
	return nil
}

func (s *categoryRepoStub) Delete(ctx context.Context, id int64) error {
	return nil
}

var (
	tester = policy.Principal{ID: 2, Role: policy.RoleTester}
	viewer = policy.Principal{ID: 3, Role: policy.RoleViewer}
)

func newTestService() *Service {
	return NewService(newMemoryRepo(), &categoryRepoStub{ids: map[int64]bool{1: true}})
}

func validProduct() Product {
	return Product{SKU: "SKU-0001", Name: "Laptop", Price: 1299.99, Stock: 15, IsActive: true}
}

func TestCreateProduct(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, tester, validProduct())
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	_, err = svc.Create(ctx, viewer, validProduct())
	var denied *policy.DeniedError
	require.ErrorAs(t, err, &denied)
}

func TestCreateProductInvariants(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	p := validProduct()
	p.Price = 0
	_, err := svc.Create(ctx, tester, p)
	require.ErrorIs(t, err, ErrInvalidPrice)

	p = validProduct()
	p.Price = -5
	_, err = svc.Create(ctx, tester, p)
	require.ErrorIs(t, err, ErrInvalidPrice)

	p = validProduct()
	p.Stock = -1
	_, err = svc.Create(ctx, tester, p)
	require.ErrorIs(t, err, ErrNegativeStock)
}

func TestCreateProductUnknownCategory(t *testing.T) {
	svc := newTestService()

	p := validProduct()
	missing := int64(99)
	p.CategoryID = &missing
	_, err := svc.Create(context.Background(), tester, p)
	require.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestCreateProductDuplicateSKU(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, tester, validProduct())
	require.NoError(t, err)

	_, err = svc.Create(ctx, tester, validProduct())
	require.ErrorIs(t, err, ErrSKUTaken)
}

func TestUpdateProductPatch(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, tester, validProduct())
	require.NoError(t, err)

	price := 999.99
	updated, err := svc.Update(ctx, tester, created.ID, ProductPatch{Price: &price})
	require.NoError(t, err)
	assert.Equal(t, 999.99, updated.Price)
	assert.Equal(t, "Laptop", updated.Name)

	bad := -1.0
	_, err = svc.Update(ctx, tester, created.ID, ProductPatch{Price: &bad})
	require.ErrorIs(t, err, ErrInvalidPrice)
}

func TestViewerReadsButCannotMutate(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, tester, validProduct())
	require.NoError(t, err)

	got, err := svc.Get(ctx, viewer, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.SKU, got.SKU)

	var denied *policy.DeniedError
	require.ErrorAs(t, svc.Delete(ctx, viewer, created.ID), &denied)
}
