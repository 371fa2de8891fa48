package app

import (
	"context"
	"sync"
	"time"

	"github.com/hisham3323/flash-sale-api/internal/domain"
)

// fakeStore is an in-memory stand-in for the postgres repositories. It
// satisfies every repository interface in this package so a single
// store can back a whole hold -> order -> payment flow.
type fakeStore struct {
	mu       sync.Mutex
	products map[string]domain.Product
	holds    map[string]domain.Hold
	orders   map[string]domain.Order
	logs     map[string]domain.WebhookLog // keyed by idempotency key
}

func newFakeStore(products ...domain.Product) *fakeStore {
	s := &fakeStore{
		products: make(map[string]domain.Product),
		holds:    make(map[string]domain.Hold),
		orders:   make(map[string]domain.Order),
		logs:     make(map[string]domain.WebhookLog),
	}
	for _, p := range products {
		s.products[p.ID] = p
	}
	return s
}

func (s *fakeStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(ctx)
}

func (s *fakeStore) CreateProduct(_ context.Context, product domain.Product) error {
	s.products[product.ID] = product
	return nil
}

func (s *fakeStore) ListProducts(_ context.Context) ([]domain.Product, error) {
	out := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	return out, nil
}

func (s *fakeStore) GetProduct(_ context.Context, productID string) (domain.Product, error) {
	p, ok := s.products[productID]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return p, nil
}

func (s *fakeStore) GetProductForUpdate(_ context.Context, productID string) (domain.Product, error) {
	p, ok := s.products[productID]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return p, nil
}

func (s *fakeStore) SumActiveHolds(_ context.Context, productID string, now time.Time) (int, error) {
	total := 0
	for _, h := range s.holds {
		if h.ProductID == productID && h.ExpiresAt.After(now) {
			total += h.Qty
		}
	}
	return total, nil
}

func (s *fakeStore) CreateHold(_ context.Context, hold domain.Hold) error {
	if _, ok := s.products[hold.ProductID]; !ok {
		return domain.ErrProductNotFound
	}
	s.holds[hold.ID] = hold
	return nil
}

func (s *fakeStore) GetHoldForUpdate(_ context.Context, holdID string) (domain.Hold, error) {
	h, ok := s.holds[holdID]
	if !ok {
		return domain.Hold{}, domain.ErrHoldNotFound
	}
	return h, nil
}

func (s *fakeStore) DeleteHold(_ context.Context, holdID string) error {
	if _, ok := s.holds[holdID]; !ok {
		return domain.ErrHoldNotFound
	}
	delete(s.holds, holdID)
	return nil
}

func (s *fakeStore) DeleteExpiredHolds(_ context.Context, now time.Time) ([]string, error) {
	var productIDs []string
	for id, h := range s.holds {
		if !h.ExpiresAt.After(now) {
			productIDs = append(productIDs, h.ProductID)
			delete(s.holds, id)
		}
	}
	return productIDs, nil
}

func (s *fakeStore) DecrementStock(_ context.Context, productID string, qty int) error {
	p, ok := s.products[productID]
	if !ok {
		return domain.ErrProductNotFound
	}
	p.Stock -= qty
	s.products[productID] = p
	return nil
}

func (s *fakeStore) IncrementStock(_ context.Context, productID string, qty int) error {
	p, ok := s.products[productID]
	if !ok {
		return domain.ErrProductNotFound
	}
	p.Stock += qty
	s.products[productID] = p
	return nil
}

func (s *fakeStore) CreateOrder(_ context.Context, order domain.Order) error {
	s.orders[order.ID] = order
	return nil
}

func (s *fakeStore) GetOrderForUpdate(_ context.Context, orderID string) (domain.Order, error) {
	o, ok := s.orders[orderID]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return o, nil
}

func (s *fakeStore) UpdateOrderStatus(_ context.Context, orderID string, status domain.OrderStatus, paymentKey string, now time.Time) error {
	o, ok := s.orders[orderID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	o.Status = status
	o.PaymentIdempotencyKey = paymentKey
	o.UpdatedAt = now
	s.orders[orderID] = o
	return nil
}

func (s *fakeStore) WebhookLogExists(_ context.Context, idempotencyKey string) (bool, error) {
	_, ok := s.logs[idempotencyKey]
	return ok, nil
}

func (s *fakeStore) CreateWebhookLog(_ context.Context, entry domain.WebhookLog) error {
	if _, ok := s.logs[entry.IdempotencyKey]; ok {
		return domain.ErrDuplicateWebhook
	}
	s.logs[entry.IdempotencyKey] = entry
	return nil
}

// fakeCache records invalidations so tests can assert the read path is
// kept honest by the write paths.
type fakeCache struct {
	mu          sync.Mutex
	views       map[string]domain.ProductView
	invalidated []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{views: make(map[string]domain.ProductView)}
}

func (c *fakeCache) GetView(_ context.Context, productID string) (*domain.ProductView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.views[productID]; ok {
		return &v, nil
	}
	return nil, nil
}

func (c *fakeCache) SetView(_ context.Context, view domain.ProductView, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.views[view.ID] = view
	return nil
}

func (c *fakeCache) Invalidate(_ context.Context, productID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.views, productID)
	c.invalidated = append(c.invalidated, productID)
	return nil
}
