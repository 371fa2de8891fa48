package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Order is the durable claim on stock created by converting a hold.
// Paid and cancelled are terminal; orders are never deleted.
type Order struct {
	ID        string
	ProductID string
	Qty       int
	Amount    decimal.Decimal
	Status    OrderStatus
	// PaymentIdempotencyKey is the key of the webhook that moved the
	// order out of pending; empty until one lands.
	PaymentIdempotencyKey string
	CreatedAt             time.Time
	UpdatedAt             time.Time
}
