package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/hisham3323/flash-sale-api/internal/app"
	"github.com/hisham3323/flash-sale-api/internal/cache"
	"github.com/hisham3323/flash-sale-api/internal/clock"
	"github.com/hisham3323/flash-sale-api/internal/obs"
	"github.com/hisham3323/flash-sale-api/internal/storage/postgres"
	"github.com/hisham3323/flash-sale-api/internal/testutil"
)

// Drives the whole sale flow through the router against real Postgres:
// create product, hold, convert, webhook, and the availability reads
// in between.
func TestFlashSaleFlow_HTTPIntegration(t *testing.T) {
	pool := testutil.NewTestPool(t)
	ctx := context.Background()
	testutil.ApplyMigrations(t, ctx, pool)
	testutil.TruncateAll(t, ctx, pool)

	clk := clock.NewManual(time.Now().UTC())
	productSvc := app.NewProductService(postgres.NewProductRepository(pool), cache.Nop{}, clk)
	holdSvc := app.NewHoldService(postgres.NewHoldRepository(pool), cache.Nop{}, obs.Nop{}, clk, app.WithHoldTTL(2*time.Minute))
	orderSvc := app.NewOrderService(postgres.NewOrderRepository(pool), cache.Nop{}, clk)
	paymentSvc := app.NewPaymentService(postgres.NewWebhookRepository(pool), cache.Nop{}, obs.Nop{}, clk)

	router := NewRouter(productSvc, holdSvc, orderSvc, paymentSvc, zap.NewNop(), nil)

	do := func(method, path, body string) *httptest.ResponseRecorder {
		t.Helper()
		var req *http.Request
		if body == "" {
			req = httptest.NewRequest(method, path, nil)
		} else {
			req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	// Create the product.
	rec := do(http.MethodPost, "/products", `{"name":"Sneaker","price":"49.90","stock":10}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create product: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created productResponse
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decode product: %v", err)
	}

	// Reserve 3 units.
	rec = do(http.MethodPost, "/holds", `{"product_id":"`+created.ID+`","qty":3}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create hold: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var hold createHoldResponse
	if err := json.NewDecoder(rec.Body).Decode(&hold); err != nil {
		t.Fatalf("decode hold: %v", err)
	}

	// Availability drops while the hold is active.
	rec = do(http.MethodGet, "/products/"+created.ID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get product: expected 200, got %d", rec.Code)
	}
	var view productViewResponse
	if err := json.NewDecoder(rec.Body).Decode(&view); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	if view.Stock != 7 {
		t.Fatalf("expected 7 available, got %d", view.Stock)
	}

	// A second hold larger than what's left is rejected with detail.
	rec = do(http.MethodPost, "/holds", `{"product_id":"`+created.ID+`","qty":8}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("oversized hold: expected 409, got %d", rec.Code)
	}
	var conflict insufficientStockResponse
	if err := json.NewDecoder(rec.Body).Decode(&conflict); err != nil {
		t.Fatalf("decode conflict: %v", err)
	}
	if conflict.Requested != 8 || conflict.Available != 7 {
		t.Fatalf("unexpected conflict detail: %+v", conflict)
	}

	// Convert the hold into a pending order.
	rec = do(http.MethodPost, "/holds/"+hold.HoldID+"/convert", "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("convert: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var order orderResponse
	if err := json.NewDecoder(rec.Body).Decode(&order); err != nil {
		t.Fatalf("decode order: %v", err)
	}
	if order.Status != "pending" {
		t.Fatalf("expected pending order, got %s", order.Status)
	}
	if !order.Amount.Equal(decimal.RequireFromString("149.70")) {
		t.Fatalf("unexpected amount %s", order.Amount)
	}

	// Converting again 404s; the hold is gone.
	rec = do(http.MethodPost, "/holds/"+hold.HoldID+"/convert", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("double convert: expected 404, got %d", rec.Code)
	}

	// The payment fails; the order cancels and stock returns.
	rec = do(http.MethodPost, "/payments/webhook", `{"order_id":"`+order.ID+`","status":"failed","idempotency_key":"evt-1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("webhook: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = do(http.MethodGet, "/products/"+created.ID, "")
	if err := json.NewDecoder(rec.Body).Decode(&view); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	if view.Stock != 10 {
		t.Fatalf("expected availability back to 10, got %d", view.Stock)
	}

	// The provider retries; dedupe keeps the books unchanged.
	rec = do(http.MethodPost, "/payments/webhook", `{"order_id":"`+order.ID+`","status":"failed","idempotency_key":"evt-1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("webhook retry: expected 200, got %d", rec.Code)
	}
	var webhookResp paymentWebhookResponse
	if err := json.NewDecoder(rec.Body).Decode(&webhookResp); err != nil {
		t.Fatalf("decode webhook response: %v", err)
	}
	if webhookResp.Result != "duplicate" {
		t.Fatalf("expected duplicate result, got %s", webhookResp.Result)
	}
}
