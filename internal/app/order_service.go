package app

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/hisham3323/flash-sale-api/internal/cache"
	"github.com/hisham3323/flash-sale-api/internal/clock"
	"github.com/hisham3323/flash-sale-api/internal/domain"
)

type OrderRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetHoldForUpdate(ctx context.Context, holdID string) (domain.Hold, error)
	GetProductForUpdate(ctx context.Context, productID string) (domain.Product, error)
	DecrementStock(ctx context.Context, productID string, qty int) error
	CreateOrder(ctx context.Context, order domain.Order) error
	DeleteHold(ctx context.Context, holdID string) error
}

type OrderService struct {
	repo  OrderRepository
	cache cache.ProductCache
	clock clock.Clock
}

func NewOrderService(repo OrderRepository, productCache cache.ProductCache, clk clock.Clock) *OrderService {
	return &OrderService{
		repo:  repo,
		cache: productCache,
		clock: clk,
	}
}

// ConvertHoldToOrder consumes a hold: it permanently debits physical
// stock and creates a pending order. This is the only point where
// stock is committed to a sale. Lock order is hold row first, then
// product row; CreateHold only ever locks products, so no cycle
// exists.
func (s *OrderService) ConvertHoldToOrder(ctx context.Context, holdID string) (domain.Order, error) {
	if holdID == "" {
		return domain.Order{}, domain.ErrInvalidID
	}

	now := s.clock.Now()
	var (
		order     domain.Order
		productID string
		expired   bool
	)

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		hold, err := s.repo.GetHoldForUpdate(txCtx, holdID)
		if err != nil {
			return err
		}

		if !hold.Active(now) {
			// The sweeper has not gotten to this hold yet. Drop it
			// here (it never debited stock) and reject the conversion;
			// the deletion must still commit.
			expired = true
			return s.repo.DeleteHold(txCtx, hold.ID)
		}

		product, err := s.repo.GetProductForUpdate(txCtx, hold.ProductID)
		if err != nil {
			return err
		}
		productID = product.ID

		order = domain.Order{
			ID:        newID(),
			ProductID: product.ID,
			Qty:       hold.Qty,
			Amount:    product.Price.Mul(decimal.NewFromInt(int64(hold.Qty))),
			Status:    domain.OrderStatusPending,
			CreatedAt: now,
			UpdatedAt: now,
		}

		if err := s.repo.DecrementStock(txCtx, product.ID, hold.Qty); err != nil {
			return err
		}
		if err := s.repo.CreateOrder(txCtx, order); err != nil {
			return err
		}
		return s.repo.DeleteHold(txCtx, hold.ID)
	})
	if err != nil {
		return domain.Order{}, err
	}
	if expired {
		return domain.Order{}, domain.ErrHoldExpired
	}

	_ = s.cache.Invalidate(ctx, productID)
	return order, nil
}
