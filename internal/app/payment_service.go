package app

import (
	"context"
	"errors"
	"time"

	"github.com/hisham3323/flash-sale-api/internal/cache"
	"github.com/hisham3323/flash-sale-api/internal/clock"
	"github.com/hisham3323/flash-sale-api/internal/domain"
	"github.com/hisham3323/flash-sale-api/internal/obs"
)

type PaymentRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	WebhookLogExists(ctx context.Context, idempotencyKey string) (bool, error)
	GetOrderForUpdate(ctx context.Context, orderID string) (domain.Order, error)
	CreateWebhookLog(ctx context.Context, entry domain.WebhookLog) error
	UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus, paymentKey string, now time.Time) error
	IncrementStock(ctx context.Context, productID string, qty int) error
}

// PaymentOutcome distinguishes the business result of an accepted
// webhook from the acceptance itself.
type PaymentOutcome string

const (
	// PaymentOutcomeApplied means the event transitioned the order.
	PaymentOutcomeApplied PaymentOutcome = "applied"
	// PaymentOutcomeDeduplicated means the idempotency key was seen
	// before; nothing changed.
	PaymentOutcomeDeduplicated PaymentOutcome = "duplicate"
	// PaymentOutcomeIgnored means the order already reached a terminal
	// status; the event was recorded but produced no transition.
	PaymentOutcomeIgnored PaymentOutcome = "ignored"
)

type PaymentResult struct {
	Outcome PaymentOutcome
}

type PaymentService struct {
	repo    PaymentRepository
	cache   cache.ProductCache
	emitter obs.Emitter
	clock   clock.Clock
}

func NewPaymentService(repo PaymentRepository, productCache cache.ProductCache, emitter obs.Emitter, clk clock.Clock) *PaymentService {
	return &PaymentService{
		repo:    repo,
		cache:   productCache,
		emitter: emitter,
		clock:   clk,
	}
}

type ApplyPaymentEventInput struct {
	OrderID        string
	Status         domain.PaymentStatus
	IdempotencyKey string
	// Payload is the raw provider payload, stored on the webhook log
	// for auditing.
	Payload []byte
}

// ApplyPaymentEvent applies an at-least-once payment outcome to an
// order exactly once. A duplicate key is a no-op success; a late event
// against a terminal order is recorded and ignored; an unknown order
// is ErrOrderNotFound so the sender retries once the order commits.
// On failure the stock debited at conversion is credited back.
func (s *PaymentService) ApplyPaymentEvent(ctx context.Context, in ApplyPaymentEventInput) (PaymentResult, error) {
	if in.OrderID == "" {
		return PaymentResult{}, domain.ErrInvalidID
	}
	if !in.Status.Valid() {
		return PaymentResult{}, domain.ErrInvalidPaymentStatus
	}
	if in.IdempotencyKey == "" {
		return PaymentResult{}, domain.ErrIdempotencyKeyRequired
	}

	now := s.clock.Now()
	var (
		outcome PaymentOutcome
		order   domain.Order
	)

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		seen, err := s.repo.WebhookLogExists(txCtx, in.IdempotencyKey)
		if err != nil {
			return err
		}
		if seen {
			outcome = PaymentOutcomeDeduplicated
			return nil
		}

		order, err = s.repo.GetOrderForUpdate(txCtx, in.OrderID)
		if err != nil {
			return err
		}

		// The log row references the order, so it is written only once
		// the order is known to exist. From here on a replay of this
		// key can no longer reprocess the event.
		entry := domain.WebhookLog{
			ID:             newID(),
			OrderID:        in.OrderID,
			IdempotencyKey: in.IdempotencyKey,
			Status:         in.Status,
			Payload:        in.Payload,
			CreatedAt:      now,
		}
		if err := s.repo.CreateWebhookLog(txCtx, entry); err != nil {
			// A concurrent delivery of the same key won the insert;
			// the unique violation aborts this transaction and the
			// caller sees a dedupe.
			return err
		}

		if order.Status != domain.OrderStatusPending {
			outcome = PaymentOutcomeIgnored
			return nil
		}

		switch in.Status {
		case domain.PaymentStatusSuccess:
			if err := s.repo.UpdateOrderStatus(txCtx, order.ID, domain.OrderStatusPaid, in.IdempotencyKey, now); err != nil {
				return err
			}
		case domain.PaymentStatusFailed:
			if err := s.repo.UpdateOrderStatus(txCtx, order.ID, domain.OrderStatusCancelled, in.IdempotencyKey, now); err != nil {
				return err
			}
			// Compensate the debit made at conversion. Lock order here
			// is order row then product row, consistent at every call
			// site that touches both.
			if err := s.repo.IncrementStock(txCtx, order.ProductID, order.Qty); err != nil {
				return err
			}
		}
		outcome = PaymentOutcomeApplied
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateWebhook) {
			outcome = PaymentOutcomeDeduplicated
		} else {
			if errors.Is(err, domain.ErrOrderNotFound) {
				s.emitter.Emit("webhook_retry_required", map[string]any{
					"order_id": in.OrderID,
					"key":      in.IdempotencyKey,
				})
			}
			return PaymentResult{}, err
		}
	}

	switch outcome {
	case PaymentOutcomeDeduplicated:
		s.emitter.Emit("webhook_dedupe", map[string]any{
			"order_id": in.OrderID,
			"key":      in.IdempotencyKey,
		})
	case PaymentOutcomeIgnored:
		s.emitter.Emit("webhook_out_of_order", map[string]any{
			"order_id": in.OrderID,
			"key":      in.IdempotencyKey,
		})
	case PaymentOutcomeApplied:
		if in.Status == domain.PaymentStatusSuccess {
			s.emitter.Emit("payment_success", map[string]any{
				"order_id": in.OrderID,
				"key":      in.IdempotencyKey,
			})
		} else {
			_ = s.cache.Invalidate(ctx, order.ProductID)
			s.emitter.Emit("payment_failed", map[string]any{
				"order_id":     in.OrderID,
				"key":          in.IdempotencyKey,
				"qty_returned": order.Qty,
			})
		}
	}

	return PaymentResult{Outcome: outcome}, nil
}
