package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/hisham3323/flash-sale-api/internal/domain"
)

// HoldConverter is the minimal interface needed to convert a hold.
type HoldConverter interface {
	ConvertHoldToOrder(ctx context.Context, holdID string) (domain.Order, error)
}

// HandleConvertHold returns the handler for POST /holds/{id}/convert.
func HandleConvertHold(svc HoldConverter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		holdID := chi.URLParam(r, "id")

		order, err := svc.ConvertHoldToOrder(r.Context(), holdID)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrInvalidID):
				writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
			case errors.Is(err, domain.ErrHoldNotFound):
				writeError(w, http.StatusNotFound, codeHoldNotFound, err.Error())
			case errors.Is(err, domain.ErrHoldExpired):
				writeError(w, http.StatusConflict, codeHoldExpired, err.Error())
			default:
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			}
			return
		}

		writeJSON(w, http.StatusCreated, orderResponse{
			ID:        order.ID,
			ProductID: order.ProductID,
			Qty:       order.Qty,
			Amount:    order.Amount,
			Status:    string(order.Status),
			CreatedAt: order.CreatedAt,
		})
	}
}

type orderResponse struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Qty       int             `json:"qty"`
	Amount    decimal.Decimal `json:"amount"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
}
