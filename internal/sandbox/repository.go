package sandbox

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/quarrylab/quarry/internal/orders"
	"github.com/quarrylab/quarry/internal/policy"
	"github.com/quarrylab/quarry/internal/platform/db"
)

// Stats holds per-table row counts.
type Stats struct {
	Users      int `json:"users"`
	Categories int `json:"categories"`
	Products   int `json:"products"`
	Orders     int `json:"orders"`
}

type userRecord struct {
	Email        string
	Username     string
	FullName     string
	PasswordHash string
	Role         policy.Role
}

type productRecord struct {
	SKU         string
	Name        string
	Description string
	Price       float64
	Stock       int
	CategoryID  int64
}

type orderRecord struct {
	OrderNumber     string
	UserID          int64
	Status          orders.Status
	TotalAmount     float64
	ShippingAddress string
	Items           []orderItemRecord
}

type orderItemRecord struct {
	ProductID int64
	Quantity  int
	UnitPrice float64
}

type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	ClearAll(ctx context.Context) error
	Counts(ctx context.Context) (Stats, error)
	CountUsers(ctx context.Context) (int, error)
	InsertUser(ctx context.Context, u userRecord) (int64, error)
	InsertCategory(ctx context.Context, name, description string) (int64, error)
	InsertProduct(ctx context.Context, p productRecord) (int64, error)
	InsertOrder(ctx context.Context, o orderRecord) (int64, error)
}

type dbtx interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
}

type repository struct {
	db   dbtx
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

// ClearAll wipes every table in dependency order. TRUNCATE ... CASCADE also
// resets the identity sequences so reseeded IDs are stable.
func (r *repository) ClearAll(ctx context.Context) error {
	_, err := r.db.Exec(ctx,
		`TRUNCATE order_items, orders, products, categories, users RESTART IDENTITY CASCADE`)
	return err
}

func (r *repository) Counts(ctx context.Context) (Stats, error) {
	var s Stats
	err := r.db.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM categories),
			(SELECT COUNT(*) FROM products),
			(SELECT COUNT(*) FROM orders)`,
	).Scan(&s.Users, &s.Categories, &s.Products, &s.Orders)
	return s, err
}

func (r *repository) CountUsers(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

func (r *repository) InsertUser(ctx context.Context, u userRecord) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx,
		`INSERT INTO users (email, username, full_name, password_hash, role, is_active)
		 VALUES ($1, $2, $3, $4, $5, TRUE) RETURNING id`,
		u.Email, u.Username, u.FullName, u.PasswordHash, u.Role,
	).Scan(&id)
	return id, err
}

func (r *repository) InsertCategory(ctx context.Context, name, description string) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx,
		`INSERT INTO categories (name, description) VALUES ($1, $2) RETURNING id`,
		name, description,
	).Scan(&id)
	return id, err
}

func (r *repository) InsertProduct(ctx context.Context, p productRecord) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx,
		`INSERT INTO products (sku, name, description, price, stock, is_active, category_id)
		 VALUES ($1, $2, $3, $4, $5, TRUE, $6) RETURNING id`,
		p.SKU, p.Name, p.Description, p.Price, p.Stock, p.CategoryID,
	).Scan(&id)
	return id, err
}

func (r *repository) InsertOrder(ctx context.Context, o orderRecord) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx,
		`INSERT INTO orders (order_number, user_id, status, total_amount, shipping_address, notes)
		 VALUES ($1, $2, $3, $4, $5, '') RETURNING id`,
		o.OrderNumber, o.UserID, o.Status, o.TotalAmount, o.ShippingAddress,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	for _, it := range o.Items {
		_, err := r.db.Exec(ctx,
			`INSERT INTO order_items (order_id, product_id, quantity, unit_price) VALUES ($1, $2, $3, $4)`,
			id, it.ProductID, it.Quantity, it.UnitPrice)
		if err != nil {
			return 0, err
		}
	}
	return id, nil
}
