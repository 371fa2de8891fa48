package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is physical inventory. Stock is never reduced by a hold:
// only order conversion debits it, and a failed payment restores it.
type Product struct {
	ID        string
	Name      string
	Price     decimal.Decimal
	Stock     int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProductView is the display projection served to buyers. Available is
// stock minus active holds, floored at zero.
type ProductView struct {
	ID        string
	Name      string
	Price     decimal.Decimal
	Available int
}

// AvailableStock computes sellable stock given the quantity claimed by
// unexpired holds. The result is authoritative only when both inputs
// were read under the product row lock.
func AvailableStock(stock, heldQty int) int {
	available := stock - heldQty
	if available < 0 {
		return 0
	}
	return available
}
