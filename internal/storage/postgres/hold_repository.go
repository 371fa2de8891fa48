package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hisham3323/flash-sale-api/internal/domain"
)

// HoldRepository backs hold creation and the expiry sweep.
type HoldRepository struct {
	pool *pgxpool.Pool
}

func NewHoldRepository(pool *pgxpool.Pool) *HoldRepository {
	return &HoldRepository{pool: pool}
}

func (r *HoldRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

// GetProductForUpdate takes the exclusive product row lock that
// serializes every availability check and hold insert for a product.
func (r *HoldRepository) GetProductForUpdate(ctx context.Context, productID string) (domain.Product, error) {
	return getProductForUpdate(ctx, r.pool, productID)
}

func getProductForUpdate(ctx context.Context, pool *pgxpool.Pool, productID string) (domain.Product, error) {
	const q = `
SELECT id, name, price, stock, created_at, updated_at
FROM products
WHERE id = $1
FOR UPDATE`

	var p domain.Product
	err := queryRow(ctx, pool, q, productID).
		Scan(&p.ID, &p.Name, &p.Price, &p.Stock, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Product{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Product{}, domain.ErrProductNotFound
		}
		return domain.Product{}, fmt.Errorf("get product for update: %w", err)
	}
	return p, nil
}

func (r *HoldRepository) SumActiveHolds(ctx context.Context, productID string, now time.Time) (int, error) {
	return sumActiveHolds(ctx, r.pool, productID, now)
}

func (r *HoldRepository) CreateHold(ctx context.Context, hold domain.Hold) error {
	const stmt = `
INSERT INTO holds (id, product_id, qty, expires_at, created_at)
VALUES ($1, $2, $3, $4, $5)`

	_, err := exec(ctx, r.pool, stmt,
		hold.ID,
		hold.ProductID,
		hold.Qty,
		hold.ExpiresAt,
		hold.CreatedAt,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		if isForeignKeyViolation(err) {
			return domain.ErrProductNotFound
		}
		return fmt.Errorf("create hold: %w", err)
	}
	return nil
}

// DeleteExpiredHolds removes every hold past its expiry in one
// statement and reports the product of each deleted row. The DELETE
// takes the same row locks a conversion does, so a hold being
// converted right now is either skipped (conversion committed first)
// or waited out.
func (r *HoldRepository) DeleteExpiredHolds(ctx context.Context, now time.Time) ([]string, error) {
	const stmt = `
DELETE FROM holds
WHERE expires_at < $1
RETURNING product_id`

	rows, err := query(ctx, r.pool, stmt, now)
	if err != nil {
		return nil, fmt.Errorf("delete expired holds: %w", err)
	}
	defer rows.Close()

	var productIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan deleted hold: %w", err)
		}
		productIDs = append(productIDs, id)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate deleted holds: %w", rows.Err())
	}
	return productIDs, nil
}
