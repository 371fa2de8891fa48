package domain

import "time"

// PaymentStatus is the outcome reported by the payment provider.
type PaymentStatus string

const (
	PaymentStatusSuccess PaymentStatus = "success"
	PaymentStatusFailed  PaymentStatus = "failed"
)

func (s PaymentStatus) Valid() bool {
	return s == PaymentStatusSuccess || s == PaymentStatusFailed
}

// WebhookLog is the append-only idempotency ledger for payment events:
// one row per distinct key, written before the order transition it
// authorizes, never updated or deleted.
type WebhookLog struct {
	ID             string
	OrderID        string
	IdempotencyKey string
	Status         PaymentStatus
	Payload        []byte
	CreatedAt      time.Time
}
