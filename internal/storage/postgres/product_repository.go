package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hisham3323/flash-sale-api/internal/domain"
)

// ProductRepository backs the admin and display paths. It takes no row
// locks; the authoritative availability check lives in HoldRepository.
type ProductRepository struct {
	pool *pgxpool.Pool
}

func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

func (r *ProductRepository) CreateProduct(ctx context.Context, product domain.Product) error {
	const stmt = `
INSERT INTO products (id, name, price, stock, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := exec(ctx, r.pool, stmt,
		product.ID,
		product.Name,
		product.Price,
		product.Stock,
		product.CreatedAt,
		product.UpdatedAt,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

func (r *ProductRepository) ListProducts(ctx context.Context) ([]domain.Product, error) {
	const q = `
SELECT id, name, price, stock, created_at, updated_at
FROM products
ORDER BY created_at ASC`

	rows, err := query(ctx, r.pool, q)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Stock, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate products: %w", rows.Err())
	}
	return products, nil
}

func (r *ProductRepository) GetProduct(ctx context.Context, productID string) (domain.Product, error) {
	const q = `
SELECT id, name, price, stock, created_at, updated_at
FROM products
WHERE id = $1`

	var p domain.Product
	err := queryRow(ctx, r.pool, q, productID).
		Scan(&p.ID, &p.Name, &p.Price, &p.Stock, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Product{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Product{}, domain.ErrProductNotFound
		}
		return domain.Product{}, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (r *ProductRepository) SumActiveHolds(ctx context.Context, productID string, now time.Time) (int, error) {
	return sumActiveHolds(ctx, r.pool, productID, now)
}

// sumActiveHolds is shared with HoldRepository, which runs it under
// the product row lock.
func sumActiveHolds(ctx context.Context, pool *pgxpool.Pool, productID string, now time.Time) (int, error) {
	const q = `
SELECT COALESCE(SUM(qty), 0)
FROM holds
WHERE product_id = $1 AND expires_at > $2`

	var total int
	if err := queryRow(ctx, pool, q, productID, now).Scan(&total); err != nil {
		if isInvalidUUID(err) {
			return 0, domain.ErrInvalidID
		}
		return 0, fmt.Errorf("sum active holds: %w", err)
	}
	return total, nil
}
