package cache

import (
	"context"
	"time"

	"github.com/hisham3323/flash-sale-api/internal/domain"
)

// ProductCache bounds staleness of the read-only display path. Every
// method is best-effort: a miss or an error must never fail a write
// path, which only calls Invalidate.
type ProductCache interface {
	// GetView returns the cached view, or nil on a miss.
	GetView(ctx context.Context, productID string) (*domain.ProductView, error)
	SetView(ctx context.Context, view domain.ProductView, ttl time.Duration) error
	Invalidate(ctx context.Context, productID string) error
}

// Nop satisfies ProductCache without caching anything.
type Nop struct{}

func (Nop) GetView(context.Context, string) (*domain.ProductView, error) { return nil, nil }

func (Nop) SetView(context.Context, domain.ProductView, time.Duration) error { return nil }

func (Nop) Invalidate(context.Context, string) error { return nil }
