package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/hisham3323/flash-sale-api/internal/domain"
)

const productKeyPrefix = "product:"

// Redis caches product views keyed by product id.
type Redis struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

type cachedView struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Available int             `json:"available"`
}

func (r *Redis) GetView(ctx context.Context, productID string) (*domain.ProductView, error) {
	raw, err := r.client.Get(ctx, productKeyPrefix+productID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}

	var v cachedView
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("cache decode: %w", err)
	}
	return &domain.ProductView{
		ID:        v.ID,
		Name:      v.Name,
		Price:     v.Price,
		Available: v.Available,
	}, nil
}

func (r *Redis) SetView(ctx context.Context, view domain.ProductView, ttl time.Duration) error {
	raw, err := json.Marshal(cachedView{
		ID:        view.ID,
		Name:      view.Name,
		Price:     view.Price,
		Available: view.Available,
	})
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	if err := r.client.Set(ctx, productKeyPrefix+view.ID, raw, ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

func (r *Redis) Invalidate(ctx context.Context, productID string) error {
	if err := r.client.Del(ctx, productKeyPrefix+productID).Err(); err != nil {
		return fmt.Errorf("cache del: %w", err)
	}
	return nil
}
