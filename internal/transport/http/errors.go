package http

import (
	"encoding/json"
	"net/http"
)

const (
	codeNotFound             = "not_found"
	codeInvalidRequestBody   = "invalid_request_body"
	codeInvalidID            = "invalid_id"
	codeInvalidQuantity      = "invalid_quantity"
	codeProductNameRequired  = "product_name_required"
	codeInvalidPrice         = "invalid_price"
	codeInvalidStock         = "invalid_stock"
	codeProductNotFound      = "product_not_found"
	codeInsufficientStock    = "insufficient_stock"
	codeHoldNotFound         = "hold_not_found"
	codeHoldExpired          = "hold_expired"
	codeOrderNotFound        = "order_not_found"
	codeInvalidPaymentStatus = "invalid_payment_status"
	codeIdempotencyRequired  = "idempotency_key_required"
	codeForbidden            = "forbidden"
	codeInternalError        = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorResponse{Error: msg, Code: code})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")

	raw, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	w.WriteHeader(status)
	_, _ = w.Write(raw)
}
