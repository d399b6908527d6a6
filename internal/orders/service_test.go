package orders

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarrylab/quarry/internal/policy"
)

var (
	adminP  = policy.Principal{ID: 1, Role: policy.RoleAdmin}
	testerP = policy.Principal{ID: 2, Role: policy.RoleTester}
	viewerP = policy.Principal{ID: 3, Role: policy.RoleViewer}
)

// memoryRepo serializes every WithTx call behind a single mutex, mirroring
// the row-lock behavior of the SQL repository closely enough to exercise
// stock contention. State is snapshotted at transaction start and restored
// when the transaction callback fails.
type memoryRepo struct {
	mu       sync.Mutex
	orders   map[int64]*Order
	products map[int64]*lockedProduct
	nextID   int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		orders:   make(map[int64]*Order),
		products: make(map[int64]*lockedProduct),
		nextID:   1,
	}
}

func (r *memoryRepo) addProduct(id int64, price float64, stock int, active bool) {
	r.products[id] = &lockedProduct{ID: id, Price: price, Stock: stock, IsActive: active}
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ordersSnap := make(map[int64]*Order, len(r.orders))
	for id, o := range r.orders {
		c := *o
		c.Items = append([]OrderItem(nil), o.Items...)
		ordersSnap[id] = &c
	}
	productsSnap := make(map[int64]*lockedProduct, len(r.products))
	for id, p := range r.products {
		c := *p
		productsSnap[id] = &c
	}
	nextSnap := r.nextID

	if err := fn(ctx, r); err != nil {
		r.orders = ordersSnap
		r.products = productsSnap
		r.nextID = nextSnap
		return err
	}
	return nil
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (*Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	c := *o
	c.Items = append([]OrderItem(nil), o.Items...)
	return &c, nil
}

func (r *memoryRepo) GetForUpdate(ctx context.Context, id int64) (*Order, error) {
	return r.Get(ctx, id)
}

func (r *memoryRepo) List(ctx context.Context, filters ListFilters) ([]Order, int, error) {
	var out []Order
	for _, o := range r.orders {
		if filters.Status != nil && o.Status != *filters.Status {
			continue
		}
		if filters.UserID != nil && o.UserID != *filters.UserID {
			continue
		}
		out = append(out, *o)
	}
	return out, len(out), nil
}

func (r *memoryRepo) Insert(ctx context.Context, o *Order) error {
	o.ID = r.nextID
	r.nextID++
	c := *o
	c.Items = append([]OrderItem(nil), o.Items...)
	r.orders[o.ID] = &c
	return nil
}

func (r *memoryRepo) UpdateStatus(ctx context.Context, id int64, status Status) error {
	o, ok := r.orders[id]
	if !ok {
		return ErrNotFound
	}
	o.Status = status
	return nil
}

func (r *memoryRepo) UpdateFields(ctx context.Context, id int64, updates map[string]any) error {
	o, ok := r.orders[id]
	if !ok {
		return ErrNotFound
	}
	if v, ok := updates["status"]; ok {
		o.Status = v.(Status)
	}
	if v, ok := updates["shipping_address"]; ok {
		o.ShippingAddress = v.(string)
	}
	if v, ok := updates["notes"]; ok {
		o.Notes = v.(string)
	}
	return nil
}

func (r *memoryRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.orders[id]; !ok {
		return ErrNotFound
	}
	delete(r.orders, id)
	return nil
}

func (r *memoryRepo) GetProductForUpdate(ctx context.Context, productID int64) (*lockedProduct, error) {
	p, ok := r.products[productID]
	if !ok {
		return nil, ErrProductNotFound
	}
	c := *p
	return &c, nil
}

func (r *memoryRepo) AdjustStock(ctx context.Context, productID int64, delta int) error {
	p, ok := r.products[productID]
	if !ok {
		return ErrProductNotFound
	}
	p.Stock += delta
	return nil
}

func TestCreateOrder(t *testing.T) {
	repo := newMemoryRepo()
	repo.addProduct(10, 19.99, 5, true)
	repo.addProduct(11, 5.00, 2, true)
	svc := NewService(repo)

	order, err := svc.Create(context.Background(), viewerP, CreateInput{
		Items: []ItemInput{
			{ProductID: 11, Quantity: 2},
			{ProductID: 10, Quantity: 3},
		},
		ShippingAddress: "1 Quarry Lane",
	})
	require.NoError(t, err)

	assert.Equal(t, viewerP.ID, order.UserID)
	assert.Equal(t, StatusPending, order.Status)
	assert.True(t, strings.HasPrefix(order.OrderNumber, "ORD-"))
	assert.InDelta(t, 3*19.99+2*5.00, order.TotalAmount, 0.001)
	assert.Len(t, order.Items, 2)

	assert.Equal(t, 2, repo.products[10].Stock)
	assert.Equal(t, 0, repo.products[11].Stock)
}

func TestCreateOrderEmpty(t *testing.T) {
	svc := NewService(newMemoryRepo())
	_, err := svc.Create(context.Background(), testerP, CreateInput{ShippingAddress: "x"})
	require.ErrorIs(t, err, ErrEmptyOrder)
}

func TestCreateOrderInsufficientStock(t *testing.T) {
	repo := newMemoryRepo()
	repo.addProduct(10, 10.00, 1, true)
	svc := NewService(repo)

	_, err := svc.Create(context.Background(), testerP, CreateInput{
		Items:           []ItemInput{{ProductID: 10, Quantity: 2}},
		ShippingAddress: "x",
	})
	require.Error(t, err)

	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, int64(10), stockErr.ProductID)
	assert.Equal(t, 2, stockErr.Requested)
	assert.Equal(t, 1, stockErr.Available)

	assert.Equal(t, 1, repo.products[10].Stock)
	assert.Empty(t, repo.orders)
}

func TestCreateOrderRollsBackOnLaterFailure(t *testing.T) {
	repo := newMemoryRepo()
	repo.addProduct(10, 10.00, 5, true)
	repo.addProduct(11, 4.00, 5, false)
	svc := NewService(repo)

	_, err := svc.Create(context.Background(), testerP, CreateInput{
		Items: []ItemInput{
			{ProductID: 10, Quantity: 2},
			{ProductID: 11, Quantity: 1},
		},
		ShippingAddress: "x",
	})
	require.ErrorIs(t, err, ErrProductInactive)

	// The write against product 10 must not survive the failed transaction.
	assert.Equal(t, 5, repo.products[10].Stock)
	assert.Empty(t, repo.orders)
}

func TestCreateOrderUnknownProduct(t *testing.T) {
	svc := NewService(newMemoryRepo())
	_, err := svc.Create(context.Background(), testerP, CreateInput{
		Items:           []ItemInput{{ProductID: 99, Quantity: 1}},
		ShippingAddress: "x",
	})
	require.ErrorIs(t, err, ErrProductNotFound)
}

func TestConcurrentCreationsContendForStock(t *testing.T) {
	repo := newMemoryRepo()
	repo.addProduct(10, 10.00, 3, true)
	svc := NewService(repo)

	results := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Create(context.Background(), testerP, CreateInput{
				Items:           []ItemInput{{ProductID: 10, Quantity: 2}},
				ShippingAddress: "x",
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var successes, stockFailures int
	for err := range results {
		if err == nil {
			successes++
			continue
		}
		var stockErr *InsufficientStockError
		require.ErrorAs(t, err, &stockErr)
		stockFailures++
	}

	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, stockFailures)
	assert.Equal(t, 1, repo.products[10].Stock)
	assert.Len(t, repo.orders, 1)
}

func placeOrder(t *testing.T, svc *Service, p policy.Principal, productID int64, qty int) *Order {
	t.Helper()
	order, err := svc.Create(context.Background(), p, CreateInput{
		Items:           []ItemInput{{ProductID: productID, Quantity: qty}},
		ShippingAddress: "1 Quarry Lane",
	})
	require.NoError(t, err)
	return order
}

func TestGetHidesForeignOrdersFromViewers(t *testing.T) {
	repo := newMemoryRepo()
	repo.addProduct(10, 10.00, 20, true)
	svc := NewService(repo)

	mine := placeOrder(t, svc, viewerP, 10, 1)
	theirs := placeOrder(t, svc, testerP, 10, 1)

	got, err := svc.Get(context.Background(), viewerP, mine.ID)
	require.NoError(t, err)
	assert.Equal(t, mine.ID, got.ID)

	_, err = svc.Get(context.Background(), viewerP, theirs.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// Admins and testers see everything.
	_, err = svc.Get(context.Background(), adminP, mine.ID)
	assert.NoError(t, err)
	_, err = svc.Get(context.Background(), testerP, mine.ID)
	assert.NoError(t, err)
}

func TestListPinsViewersToOwnOrders(t *testing.T) {
	repo := newMemoryRepo()
	repo.addProduct(10, 10.00, 20, true)
	svc := NewService(repo)

	placeOrder(t, svc, viewerP, 10, 1)
	placeOrder(t, svc, testerP, 10, 1)
	placeOrder(t, svc, adminP, 10, 1)

	all, total, err := svc.List(context.Background(), adminP, ListFilters{Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, all, 3)

	// A viewer asking for another user's orders still only gets their own.
	otherID := testerP.ID
	own, total, err := svc.List(context.Background(), viewerP, ListFilters{Page: 1, Limit: 20, UserID: &otherID})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, own, 1)
	assert.Equal(t, viewerP.ID, own[0].UserID)
}

func TestUpdateFollowsForwardChain(t *testing.T) {
	repo := newMemoryRepo()
	repo.addProduct(10, 10.00, 20, true)
	svc := NewService(repo)

	order := placeOrder(t, svc, testerP, 10, 1)

	shipped := StatusShipped
	_, err := svc.Update(context.Background(), testerP, order.ID, UpdateInput{Status: &shipped})
	var invalid *InvalidTransitionError
	require.ErrorAs(t, err, &invalid)

	confirmed := StatusConfirmed
	updated, err := svc.Update(context.Background(), testerP, order.ID, UpdateInput{Status: &confirmed})
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, updated.Status)

	updated, err = svc.Update(context.Background(), testerP, order.ID, UpdateInput{Status: &shipped})
	require.NoError(t, err)
	assert.Equal(t, StatusShipped, updated.Status)

	pending := StatusPending
	_, err = svc.Update(context.Background(), testerP, order.ID, UpdateInput{Status: &pending})
	require.ErrorAs(t, err, &invalid)
}

func TestUpdateCannotCancel(t *testing.T) {
	repo := newMemoryRepo()
	repo.addProduct(10, 10.00, 20, true)
	svc := NewService(repo)

	order := placeOrder(t, svc, testerP, 10, 1)

	cancelled := StatusCancelled
	_, err := svc.Update(context.Background(), testerP, order.ID, UpdateInput{Status: &cancelled})
	require.ErrorIs(t, err, ErrStatusChange)
}

// interceptRepo runs a hook once, just before the next transaction starts,
// simulating a competing writer that commits first.
type interceptRepo struct {
	*memoryRepo
	beforeTx func()
}

func (r *interceptRepo) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	if r.beforeTx != nil {
		hook := r.beforeTx
		r.beforeTx = nil
		hook()
	}
	return r.memoryRepo.WithTx(ctx, fn)
}

func TestUpdateDoesNotOverwriteConcurrentCancel(t *testing.T) {
	mem := newMemoryRepo()
	mem.addProduct(10, 10.00, 5, true)
	repo := &interceptRepo{memoryRepo: mem}
	svc := NewService(repo)

	order := placeOrder(t, svc, testerP, 10, 2)
	require.Equal(t, 3, mem.products[10].Stock)

	// A cancellation commits between the caller deciding to confirm and the
	// update transaction acquiring its row lock.
	repo.beforeTx = func() {
		cancelSvc := NewService(mem)
		_, err := cancelSvc.Cancel(context.Background(), testerP, order.ID)
		require.NoError(t, err)
	}

	confirmed := StatusConfirmed
	_, err := svc.Update(context.Background(), testerP, order.ID, UpdateInput{Status: &confirmed})
	var invalid *InvalidTransitionError
	require.ErrorAs(t, err, &invalid)

	// The order stays cancelled and the restored stock stays restored.
	got, err := svc.Get(context.Background(), adminP, order.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, got.Status)
	assert.Equal(t, 5, mem.products[10].Stock)
}

func TestViewerCannotUpdate(t *testing.T) {
	repo := newMemoryRepo()
	repo.addProduct(10, 10.00, 20, true)
	svc := NewService(repo)

	order := placeOrder(t, svc, viewerP, 10, 1)

	confirmed := StatusConfirmed
	_, err := svc.Update(context.Background(), viewerP, order.ID, UpdateInput{Status: &confirmed})
	var denied *policy.DeniedError
	require.ErrorAs(t, err, &denied)
}

func TestCancelRestoresStock(t *testing.T) {
	repo := newMemoryRepo()
	repo.addProduct(10, 10.00, 5, true)
	svc := NewService(repo)

	order := placeOrder(t, svc, viewerP, 10, 3)
	require.Equal(t, 2, repo.products[10].Stock)

	cancelled, err := svc.Cancel(context.Background(), viewerP, order.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)
	assert.Equal(t, 5, repo.products[10].Stock)
}

func TestCancelOnlyPending(t *testing.T) {
	repo := newMemoryRepo()
	repo.addProduct(10, 10.00, 5, true)
	svc := NewService(repo)

	order := placeOrder(t, svc, testerP, 10, 1)
	confirmed := StatusConfirmed
	_, err := svc.Update(context.Background(), testerP, order.ID, UpdateInput{Status: &confirmed})
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), testerP, order.ID)
	var invalid *InvalidTransitionError
	require.ErrorAs(t, err, &invalid)

	// No stock movement on a failed cancellation.
	assert.Equal(t, 4, repo.products[10].Stock)
}

func TestViewerCancelOwnOnly(t *testing.T) {
	repo := newMemoryRepo()
	repo.addProduct(10, 10.00, 20, true)
	svc := NewService(repo)

	theirs := placeOrder(t, svc, testerP, 10, 1)
	_, err := svc.Cancel(context.Background(), viewerP, theirs.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	mine := placeOrder(t, svc, viewerP, 10, 1)
	cancelled, err := svc.Cancel(context.Background(), viewerP, mine.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)
}

func TestDeletePermissions(t *testing.T) {
	repo := newMemoryRepo()
	repo.addProduct(10, 10.00, 20, true)
	svc := NewService(repo)

	order := placeOrder(t, svc, viewerP, 10, 1)

	err := svc.Delete(context.Background(), viewerP, order.ID)
	var denied *policy.DeniedError
	require.ErrorAs(t, err, &denied)

	require.NoError(t, svc.Delete(context.Background(), adminP, order.ID))
	_, err = svc.Get(context.Background(), adminP, order.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
