package sandbox

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/quarrylab/quarry/internal/orders"
	"github.com/quarrylab/quarry/internal/policy"
)

var (
	adminP  = policy.Principal{ID: 1, Role: policy.RoleAdmin}
	testerP = policy.Principal{ID: 2, Role: policy.RoleTester}
	viewerP = policy.Principal{ID: 3, Role: policy.RoleViewer}
)

type memoryRepo struct {
	users        []userRecord
	categories   []string
	products     []productRecord
	orders       []orderRecord
	clears       int
	countQueries int
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return fn(ctx, r)
}

func (r *memoryRepo) ClearAll(ctx context.Context) error {
	r.clears++
	r.users = nil
	r.categories = nil
	r.products = nil
	r.orders = nil
	return nil
}

func (r *memoryRepo) Counts(ctx context.Context) (Stats, error) {
	r.countQueries++
	return Stats{
		Users:      len(r.users),
		Categories: len(r.categories),
		Products:   len(r.products),
		Orders:     len(r.orders),
	}, nil
}

func (r *memoryRepo) CountUsers(ctx context.Context) (int, error) {
	return len(r.users), nil
}

func (r *memoryRepo) InsertUser(ctx context.Context, u userRecord) (int64, error) {
	r.users = append(r.users, u)
	return int64(len(r.users)), nil
}

func (r *memoryRepo) InsertCategory(ctx context.Context, name, description string) (int64, error) {
	r.categories = append(r.categories, name)
	return int64(len(r.categories)), nil
}

func (r *memoryRepo) InsertProduct(ctx context.Context, p productRecord) (int64, error) {
	r.products = append(r.products, p)
	return int64(len(r.products)), nil
}

func (r *memoryRepo) InsertOrder(ctx context.Context, o orderRecord) (int64, error) {
	r.orders = append(r.orders, o)
	return int64(len(r.orders)), nil
}

func newTestService(t *testing.T, repo Repository) (*Service, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(repo, NewStatsCache(client, time.Minute), logger)
	svc.bcryptCost = bcrypt.MinCost
	return svc, client
}

func TestResetSeedsFixtures(t *testing.T) {
	repo := &memoryRepo{}
	svc, _ := newTestService(t, repo)

	result, err := svc.Reset(context.Background(), adminP)
	require.NoError(t, err)

	assert.Equal(t, 1, repo.clears)
	assert.Equal(t, 3, result.UsersCreated)
	assert.Equal(t, 5, result.CategoriesCreated)
	assert.Equal(t, 20, result.ProductsCreated)
	assert.Equal(t, 10, result.OrdersCreated)

	require.Len(t, repo.users, 3)
	assert.Equal(t, policy.RoleAdmin, repo.users[0].Role)
	err = bcrypt.CompareHashAndPassword([]byte(repo.users[0].PasswordHash), []byte("admin123"))
	assert.NoError(t, err, "seed admin password must verify")

	require.Len(t, repo.products, 20)
	assert.Equal(t, "SKU-0001", repo.products[0].SKU)
	assert.Equal(t, "SKU-0020", repo.products[19].SKU)

	require.Len(t, repo.orders, 10)
	statusSeen := map[orders.Status]bool{}
	for _, o := range repo.orders {
		statusSeen[o.Status] = true
		require.NotEmpty(t, o.Items)
		assert.True(t, strings.HasPrefix(o.OrderNumber, "ORD-"))

		var total float64
		for _, it := range o.Items {
			total += it.UnitPrice * float64(it.Quantity)
		}
		assert.InDelta(t, total, o.TotalAmount, 0.001)
	}
	assert.Len(t, statusSeen, 4, "seed orders should cover every lifecycle state")
}

func TestResetAdminOnly(t *testing.T) {
	repo := &memoryRepo{}
	svc, _ := newTestService(t, repo)

	var denied *policy.DeniedError
	_, err := svc.Reset(context.Background(), testerP)
	require.ErrorAs(t, err, &denied)
	_, err = svc.Reset(context.Background(), viewerP)
	require.ErrorAs(t, err, &denied)
	assert.Zero(t, repo.clears)
}

func TestStatsCached(t *testing.T) {
	repo := &memoryRepo{}
	svc, _ := newTestService(t, repo)

	_, err := svc.Reset(context.Background(), adminP)
	require.NoError(t, err)

	first, err := svc.Stats(context.Background(), adminP)
	require.NoError(t, err)
	assert.Equal(t, Stats{Users: 3, Categories: 5, Products: 20, Orders: 10}, first)
	require.Equal(t, 1, repo.countQueries)

	// Second read is served from Redis, not recounted.
	second, err := svc.Stats(context.Background(), adminP)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, repo.countQueries)
}

func TestStatsAdminOnly(t *testing.T) {
	svc, _ := newTestService(t, &memoryRepo{})

	var denied *policy.DeniedError
	_, err := svc.Stats(context.Background(), viewerP)
	require.ErrorAs(t, err, &denied)
}

func TestResetInvalidatesStatsCache(t *testing.T) {
	repo := &memoryRepo{}
	svc, client := newTestService(t, repo)

	_, err := svc.Reset(context.Background(), adminP)
	require.NoError(t, err)
	_, err = svc.Stats(context.Background(), adminP)
	require.NoError(t, err)

	_, err = svc.Reset(context.Background(), adminP)
	require.NoError(t, err)

	exists, err := client.Exists(context.Background(), statsKey).Result()
	require.NoError(t, err)
	assert.Zero(t, exists, "reset must drop the cached stats")
}

func TestSeedIfEmpty(t *testing.T) {
	repo := &memoryRepo{}
	svc, _ := newTestService(t, repo)

	require.NoError(t, svc.SeedIfEmpty(context.Background()))
	assert.Len(t, repo.users, 3)

	// Second call is a no-op: the users table is populated.
	require.NoError(t, svc.SeedIfEmpty(context.Background()))
	assert.Equal(t, 1, repo.clears)
}
