package app

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hisham3323/flash-sale-api/internal/cache"
	"github.com/hisham3323/flash-sale-api/internal/clock"
	"github.com/hisham3323/flash-sale-api/internal/domain"
)

type ProductRepository interface {
	CreateProduct(ctx context.Context, product domain.Product) error
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, productID string) (domain.Product, error)
	SumActiveHolds(ctx context.Context, productID string, now time.Time) (int, error)
}

// productViewTTL bounds how stale the display path may get; the write
// paths additionally invalidate on every change.
const productViewTTL = 5 * time.Second

type ProductService struct {
	repo  ProductRepository
	cache cache.ProductCache
	clock clock.Clock
}

func NewProductService(repo ProductRepository, productCache cache.ProductCache, clk clock.Clock) *ProductService {
	return &ProductService{
		repo:  repo,
		cache: productCache,
		clock: clk,
	}
}

type CreateProductInput struct {
	Name  string
	Price decimal.Decimal
	Stock int
}

func (s *ProductService) CreateProduct(ctx context.Context, in CreateProductInput) (domain.Product, error) {
	if in.Name == "" {
		return domain.Product{}, domain.ErrProductNameRequired
	}
	if in.Price.IsNegative() {
		return domain.Product{}, domain.ErrInvalidPrice
	}
	if in.Stock < 0 {
		return domain.Product{}, domain.ErrInvalidStock
	}

	now := s.clock.Now()
	product := domain.Product{
		ID:        newID(),
		Name:      in.Name,
		Price:     in.Price,
		Stock:     in.Stock,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateProduct(ctx, product); err != nil {
		return domain.Product{}, err
	}
	return product, nil
}

func (s *ProductService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.repo.ListProducts(ctx)
}

// GetProduct serves the display projection, cached briefly to shed
// read load during sale bursts. The availability it reports is a
// non-authoritative snapshot; write paths recompute it under the
// product row lock.
func (s *ProductService) GetProduct(ctx context.Context, productID string) (domain.ProductView, error) {
	if productID == "" {
		return domain.ProductView{}, domain.ErrInvalidID
	}

	if view, err := s.cache.GetView(ctx, productID); err == nil && view != nil {
		return *view, nil
	}

	product, err := s.repo.GetProduct(ctx, productID)
	if err != nil {
		return domain.ProductView{}, err
	}
	heldQty, err := s.repo.SumActiveHolds(ctx, productID, s.clock.Now())
	if err != nil {
		return domain.ProductView{}, err
	}

	view := domain.ProductView{
		ID:        product.ID,
		Name:      product.Name,
		Price:     product.Price,
		Available: domain.AvailableStock(product.Stock, heldQty),
	}
	_ = s.cache.SetView(ctx, view, productViewTTL)
	return view, nil
}

// AvailableStock returns the display-path availability as a bare
// integer, never negative.
func (s *ProductService) AvailableStock(ctx context.Context, productID string) (int, error) {
	view, err := s.GetProduct(ctx, productID)
	if err != nil {
		return 0, err
	}
	return view.Available, nil
}
