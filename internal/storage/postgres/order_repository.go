package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hisham3323/flash-sale-api/internal/domain"
)

// OrderRepository backs hold-to-order conversion.
type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

func (r *OrderRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

// GetHoldForUpdate locks the hold row, making conversion and the
// expiry sweep mutually exclusive on it.
func (r *OrderRepository) GetHoldForUpdate(ctx context.Context, holdID string) (domain.Hold, error) {
	const q = `
SELECT id, product_id, qty, expires_at, created_at
FROM holds
WHERE id = $1
FOR UPDATE`

	var h domain.Hold
	err := queryRow(ctx, r.pool, q, holdID).
		Scan(&h.ID, &h.ProductID, &h.Qty, &h.ExpiresAt, &h.CreatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Hold{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Hold{}, domain.ErrHoldNotFound
		}
		return domain.Hold{}, fmt.Errorf("get hold for update: %w", err)
	}
	return h, nil
}

func (r *OrderRepository) GetProductForUpdate(ctx context.Context, productID string) (domain.Product, error) {
	return getProductForUpdate(ctx, r.pool, productID)
}

func (r *OrderRepository) DecrementStock(ctx context.Context, productID string, qty int) error {
	const stmt = `
UPDATE products
SET stock = stock - $2, updated_at = NOW()
WHERE id = $1`

	tag, err := exec(ctx, r.pool, stmt, productID, qty)
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func (r *OrderRepository) CreateOrder(ctx context.Context, order domain.Order) error {
	const stmt = `
INSERT INTO orders (id, product_id, qty, amount, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := exec(ctx, r.pool, stmt,
		order.ID,
		order.ProductID,
		order.Qty,
		order.Amount,
		order.Status,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrProductNotFound
		}
		return fmt.Errorf("create order: %w", err)
	}
	return nil
}

func (r *OrderRepository) DeleteHold(ctx context.Context, holdID string) error {
	const stmt = `DELETE FROM holds WHERE id = $1`

	tag, err := exec(ctx, r.pool, stmt, holdID)
	if err != nil {
		return fmt.Errorf("delete hold: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrHoldNotFound
	}
	return nil
}
