package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidQuantity        = errors.New("invalid quantity")
	ErrInvalidID              = errors.New("invalid id")
	ErrProductNotFound        = errors.New("product not found")
	ErrProductNameRequired    = errors.New("product name required")
	ErrInvalidPrice           = errors.New("invalid price")
	ErrInvalidStock           = errors.New("invalid stock")
	ErrInsufficientStock      = errors.New("insufficient stock")
	ErrHoldNotFound           = errors.New("hold not found or already used")
	ErrHoldExpired            = errors.New("hold expired")
	ErrOrderNotFound          = errors.New("order not found")
	ErrDuplicateWebhook       = errors.New("webhook already processed")
	ErrInvalidPaymentStatus   = errors.New("invalid payment status")
	ErrIdempotencyKeyRequired = errors.New("idempotency key required")
)

// InsufficientStockError carries the requested-vs-available context so
// a caller can decide whether to retry with different terms. It matches
// ErrInsufficientStock under errors.Is.
type InsufficientStockError struct {
	ProductID string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}
