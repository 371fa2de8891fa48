package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/hisham3323/flash-sale-api/internal/app"
	"github.com/hisham3323/flash-sale-api/internal/domain"
)

const maxWebhookBody = 1 << 20

// PaymentApplier is the minimal interface needed to apply a payment
// event.
type PaymentApplier interface {
	ApplyPaymentEvent(ctx context.Context, in app.ApplyPaymentEventInput) (app.PaymentResult, error)
}

// HandlePaymentWebhook returns the handler for POST /payments/webhook.
// A 404 tells the provider the order is not committed yet and the
// delivery should be retried; every other non-fault outcome is a 200.
func HandlePaymentWebhook(svc PaymentApplier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		var req paymentWebhookRequest
		if err := json.Unmarshal(body, &req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		result, err := svc.ApplyPaymentEvent(r.Context(), app.ApplyPaymentEventInput{
			OrderID:        req.OrderID,
			Status:         domain.PaymentStatus(req.Status),
			IdempotencyKey: req.IdempotencyKey,
			Payload:        body,
		})
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrOrderNotFound):
				writeError(w, http.StatusNotFound, codeOrderNotFound, err.Error())
			case errors.Is(err, domain.ErrInvalidID):
				writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
			case errors.Is(err, domain.ErrInvalidPaymentStatus):
				writeError(w, http.StatusBadRequest, codeInvalidPaymentStatus, err.Error())
			case errors.Is(err, domain.ErrIdempotencyKeyRequired):
				writeError(w, http.StatusBadRequest, codeIdempotencyRequired, err.Error())
			default:
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			}
			return
		}

		writeJSON(w, http.StatusOK, paymentWebhookResponse{
			Result: string(result.Outcome),
		})
	}
}

type paymentWebhookRequest struct {
	OrderID        string `json:"order_id"`
	Status         string `json:"status"`
	IdempotencyKey string `json:"idempotency_key"`
}

type paymentWebhookResponse struct {
	Result string `json:"result"`
}
