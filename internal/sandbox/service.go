package sandbox

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"

	"github.com/quarrylab/quarry/internal/policy"
)

// ResetResult reports what a reset created.
type ResetResult struct {
	Message           string `json:"message"`
	UsersCreated      int    `json:"users_created"`
	CategoriesCreated int    `json:"categories_created"`
	ProductsCreated   int    `json:"products_created"`
	OrdersCreated     int    `json:"orders_created"`
}

type Service struct {
	repo       Repository
	cache      *StatsCache
	logger     *slog.Logger
	bcryptCost int
}

func NewService(repo Repository, cache *StatsCache, logger *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, logger: logger, bcryptCost: bcrypt.DefaultCost}
}

// Reset wipes every table and reseeds the fixtures in one transaction.
func (s *Service) Reset(ctx context.Context, p policy.Principal) (ResetResult, error) {
	if err := policy.Authorize(p, policy.ActionAdmin, policy.ResourceSandbox, policy.NoOwner); err != nil {
		return ResetResult{}, err
	}
	result, err := s.ResetInternal(ctx)
	if err != nil {
		return ResetResult{}, err
	}
	s.logger.Info("sandbox reset", slog.Int64("by_user", p.ID))
	return result, nil
}

// ResetInternal reseeds without an authorization check. It exists for
// trusted callers that have no principal, like the scheduled reset job.
func (s *Service) ResetInternal(ctx context.Context) (ResetResult, error) {
	result, err := s.seed(ctx)
	if err != nil {
		return ResetResult{}, err
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("stats cache invalidation failed", slog.Any("error", err))
	}
	return result, nil
}

// Stats returns per-table row counts, served from the Redis cache when warm.
func (s *Service) Stats(ctx context.Context, p policy.Principal) (Stats, error) {
	if err := policy.Authorize(p, policy.ActionAdmin, policy.ResourceSandbox, policy.NoOwner); err != nil {
		return Stats{}, err
	}
	return s.cache.Fetch(ctx, s.repo.Counts)
}

// SeedIfEmpty seeds the fixtures when the users table is empty. Called once
// at server startup so a fresh database is immediately usable.
func (s *Service) SeedIfEmpty(ctx context.Context) error {
	n, err := s.repo.CountUsers(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	s.logger.Info("empty database, seeding fixtures")
	_, err = s.seed(ctx)
	return err
}

func (s *Service) seed(ctx context.Context) (ResetResult, error) {
	// Hash the fixture passwords up front so the bcrypt work happens
	// outside the transaction.
	hashes := make([]string, len(seedUsers))
	var g errgroup.Group
	for i, u := range seedUsers {
		g.Go(func() error {
			hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), s.bcryptCost)
			if err != nil {
				return err
			}
			hashes[i] = string(hash)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return ResetResult{}, err
	}

	var result ResetResult
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx Repository) error {
		if err := tx.ClearAll(ctx); err != nil {
			return err
		}

		userIDs := make([]int64, 0, len(seedUsers))
		for i, u := range seedUsers {
			id, err := tx.InsertUser(ctx, userRecord{
				Email:        u.Email,
				Username:     u.Username,
				FullName:     u.FullName,
				PasswordHash: hashes[i],
				Role:         u.Role,
			})
			if err != nil {
				return err
			}
			userIDs = append(userIDs, id)
		}

		categoryIDs := make(map[string]int64, len(seedCategories))
		for _, c := range seedCategories {
			id, err := tx.InsertCategory(ctx, c.Name, c.Description)
			if err != nil {
				return err
			}
			categoryIDs[c.Name] = id
		}

		productIDs := make([]int64, 0, len(seedProducts))
		prices := make([]float64, 0, len(seedProducts))
		for i, sp := range seedProducts {
			id, err := tx.InsertProduct(ctx, productRecord{
				SKU:         fmt.Sprintf("SKU-%04d", i+1),
				Name:        sp.Name,
				Description: sp.Description,
				Price:       sp.Price,
				Stock:       sp.Stock,
				CategoryID:  categoryIDs[sp.CategoryName],
			})
			if err != nil {
				return err
			}
			productIDs = append(productIDs, id)
			prices = append(prices, sp.Price)
		}

		for i := 0; i < seedOrderCount; i++ {
			var items []orderItemRecord
			var total float64
			for _, idx := range seedOrderItems(i, len(productIDs)) {
				items = append(items, orderItemRecord{
					ProductID: productIDs[idx],
					Quantity:  1,
					UnitPrice: prices[idx],
				})
				total += prices[idx]
			}
			_, err := tx.InsertOrder(ctx, orderRecord{
				OrderNumber:     seedOrderNumber(),
				UserID:          userIDs[i%len(userIDs)],
				Status:          seedOrderStatuses[i%len(seedOrderStatuses)],
				TotalAmount:     total,
				ShippingAddress: seedAddresses[i%len(seedAddresses)],
				Items:           items,
			})
			if err != nil {
				return err
			}
		}

		result = ResetResult{
			Message:           "Database reset successfully",
			UsersCreated:      len(seedUsers),
			CategoriesCreated: len(seedCategories),
			ProductsCreated:   len(seedProducts),
			OrdersCreated:     seedOrderCount,
		}
		return nil
	})
	return result, err
}

func seedOrderNumber() string {
	u := uuid.New()
	return "ORD-" + strings.ToUpper(hex.EncodeToString(u[:4]))
}
