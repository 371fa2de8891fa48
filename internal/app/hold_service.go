package app

import (
	"context"
	"errors"
	"time"

	"github.com/hisham3323/flash-sale-api/internal/cache"
	"github.com/hisham3323/flash-sale-api/internal/clock"
	"github.com/hisham3323/flash-sale-api/internal/domain"
	"github.com/hisham3323/flash-sale-api/internal/obs"
)

type HoldRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetProductForUpdate(ctx context.Context, productID string) (domain.Product, error)
	SumActiveHolds(ctx context.Context, productID string, now time.Time) (int, error)
	CreateHold(ctx context.Context, hold domain.Hold) error
}

const defaultHoldTTL = 2 * time.Minute

type HoldService struct {
	repo    HoldRepository
	cache   cache.ProductCache
	emitter obs.Emitter
	clock   clock.Clock
	holdTTL time.Duration
}

func NewHoldService(repo HoldRepository, productCache cache.ProductCache, emitter obs.Emitter, clk clock.Clock, opts ...HoldServiceOption) *HoldService {
	svc := &HoldService{
		repo:    repo,
		cache:   productCache,
		emitter: emitter,
		clock:   clk,
		holdTTL: defaultHoldTTL,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type HoldServiceOption func(*HoldService)

// WithHoldTTL overrides the default reservation window.
func WithHoldTTL(d time.Duration) HoldServiceOption {
	return func(s *HoldService) {
		if d > 0 {
			s.holdTTL = d
		}
	}
}

type CreateHoldInput struct {
	ProductID string
	Qty       int
}

// CreateHold reserves qty units of a product until the hold TTL runs
// out. The availability check and the insert happen under the product
// row lock, so concurrent holds on one product are strictly serialized
// and can never oversell. Product.Stock is not touched.
func (s *HoldService) CreateHold(ctx context.Context, in CreateHoldInput) (domain.Hold, error) {
	if in.ProductID == "" {
		return domain.Hold{}, domain.ErrInvalidID
	}
	if in.Qty <= 0 {
		return domain.Hold{}, domain.ErrInvalidQuantity
	}

	now := s.clock.Now()
	var hold domain.Hold

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		product, err := s.repo.GetProductForUpdate(txCtx, in.ProductID)
		if err != nil {
			return err
		}

		heldQty, err := s.repo.SumActiveHolds(txCtx, in.ProductID, now)
		if err != nil {
			return err
		}

		available := domain.AvailableStock(product.Stock, heldQty)
		if available < in.Qty {
			return &domain.InsufficientStockError{
				ProductID: in.ProductID,
				Requested: in.Qty,
				Available: available,
			}
		}

		hold = domain.Hold{
			ID:        newID(),
			ProductID: in.ProductID,
			Qty:       in.Qty,
			ExpiresAt: now.Add(s.holdTTL),
			CreatedAt: now,
		}
		return s.repo.CreateHold(txCtx, hold)
	})
	if err != nil {
		var insufficient *domain.InsufficientStockError
		if errors.As(err, &insufficient) {
			s.emitter.Emit("stock_contention", map[string]any{
				"product_id":    insufficient.ProductID,
				"requested_qty": insufficient.Requested,
				"available":     insufficient.Available,
			})
		}
		return domain.Hold{}, err
	}

	_ = s.cache.Invalidate(ctx, in.ProductID)
	s.emitter.Emit("hold_created", map[string]any{
		"hold_id":    hold.ID,
		"product_id": hold.ProductID,
		"qty":        hold.Qty,
	})
	return hold, nil
}
