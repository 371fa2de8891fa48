package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// NewRouter wires every endpoint plus the CORS and request-logging
// middleware.
func NewRouter(products ProductDirectory, holds HoldCreator, orders HoldConverter, payments PaymentApplier, logger *zap.Logger, corsOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.NotFound(NotFoundHandler())

	r.Get("/health", HealthHandler)
	r.Post("/products", HandleCreateProduct(products))
	r.Get("/products", HandleListProducts(products))
	r.Get("/products/{id}", HandleGetProduct(products))
	r.Post("/holds", HandleCreateHold(holds))
	r.Post("/holds/{id}/convert", HandleConvertHold(orders))
	r.Post("/payments/webhook", HandlePaymentWebhook(payments))

	return RequestLogger(CORS(corsOrigins, r), logger)
}
