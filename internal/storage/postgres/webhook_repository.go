package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hisham3323/flash-sale-api/internal/domain"
)

// WebhookRepository backs the payment event processor: the idempotency
// ledger plus the order and stock mutations it authorizes.
type WebhookRepository struct {
	pool *pgxpool.Pool
}

func NewWebhookRepository(pool *pgxpool.Pool) *WebhookRepository {
	return &WebhookRepository{pool: pool}
}

func (r *WebhookRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *WebhookRepository) WebhookLogExists(ctx context.Context, idempotencyKey string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM webhook_logs WHERE idempotency_key = $1)`

	var exists bool
	if err := queryRow(ctx, r.pool, q, idempotencyKey).Scan(&exists); err != nil {
		return false, fmt.Errorf("check webhook log: %w", err)
	}
	return exists, nil
}

func (r *WebhookRepository) GetOrderForUpdate(ctx context.Context, orderID string) (domain.Order, error) {
	const q = `
SELECT id, product_id, qty, amount, status, COALESCE(payment_idempotency_key, ''), created_at, updated_at
FROM orders
WHERE id = $1
FOR UPDATE`

	var o domain.Order
	var status string
	err := queryRow(ctx, r.pool, q, orderID).
		Scan(&o.ID, &o.ProductID, &o.Qty, &o.Amount, &status, &o.PaymentIdempotencyKey, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Order{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("get order for update: %w", err)
	}
	o.Status = domain.OrderStatus(status)
	return o, nil
}

func (r *WebhookRepository) CreateWebhookLog(ctx context.Context, entry domain.WebhookLog) error {
	const stmt = `
INSERT INTO webhook_logs (id, idempotency_key, order_id, status, payload, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := exec(ctx, r.pool, stmt,
		entry.ID,
		entry.IdempotencyKey,
		entry.OrderID,
		string(entry.Status),
		entry.Payload,
		entry.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateWebhook
		}
		if isForeignKeyViolation(err) {
			return domain.ErrOrderNotFound
		}
		return fmt.Errorf("create webhook log: %w", err)
	}
	return nil
}

func (r *WebhookRepository) UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus, paymentKey string, now time.Time) error {
	const stmt = `
UPDATE orders
SET status = $2, payment_idempotency_key = $3, updated_at = $4
WHERE id = $1`

	tag, err := exec(ctx, r.pool, stmt, orderID, string(status), paymentKey, now)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func (r *WebhookRepository) IncrementStock(ctx context.Context, productID string, qty int) error {
	const stmt = `
UPDATE products
SET stock = stock + $2, updated_at = NOW()
WHERE id = $1`

	tag, err := exec(ctx, r.pool, stmt, productID, qty)
	if err != nil {
		return fmt.Errorf("increment stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}
