package domain

import "time"

// Hold is a soft reservation against a product. It never touches
// Product.Stock; it only counts against availability until it expires
// or is converted into an order.
type Hold struct {
	ID        string
	ProductID string
	Qty       int
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Active reports whether the hold still counts against availability.
func (h Hold) Active(now time.Time) bool {
	return h.ExpiresAt.After(now)
}
