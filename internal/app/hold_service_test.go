package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hisham3323/flash-sale-api/internal/clock"
	"github.com/hisham3323/flash-sale-api/internal/domain"
	"github.com/hisham3323/flash-sale-api/internal/obs"
)

func TestHoldService_CreateHold(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ttl := 2 * time.Minute

	product := func(stock int) domain.Product {
		return domain.Product{
			ID:    "prod-1",
			Name:  "Limited Sneaker",
			Price: decimal.NewFromInt(120),
			Stock: stock,
		}
	}

	t.Run("creates hold without touching stock", func(t *testing.T) {
		store := newFakeStore(product(10))
		events := &obs.Capture{}
		svc := NewHoldService(store, newFakeCache(), events, clock.NewFixed(now), WithHoldTTL(ttl))

		hold, err := svc.CreateHold(context.Background(), CreateHoldInput{ProductID: "prod-1", Qty: 3})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if hold.ID == "" {
			t.Fatalf("expected hold ID to be set")
		}
		if hold.ExpiresAt != now.Add(ttl) {
			t.Fatalf("expected expires_at %v, got %v", now.Add(ttl), hold.ExpiresAt)
		}
		if got := store.products["prod-1"].Stock; got != 10 {
			t.Fatalf("expected stock untouched at 10, got %d", got)
		}
		if events.Count("hold_created") != 1 {
			t.Fatalf("expected one hold_created event")
		}
	})

	t.Run("active holds reduce availability", func(t *testing.T) {
		store := newFakeStore(product(10))
		svc := NewHoldService(store, newFakeCache(), obs.Nop{}, clock.NewFixed(now), WithHoldTTL(ttl))

		if _, err := svc.CreateHold(context.Background(), CreateHoldInput{ProductID: "prod-1", Qty: 6}); err != nil {
			t.Fatalf("first hold: %v", err)
		}

		_, err := svc.CreateHold(context.Background(), CreateHoldInput{ProductID: "prod-1", Qty: 6})
		if !errors.Is(err, domain.ErrInsufficientStock) {
			t.Fatalf("expected ErrInsufficientStock, got %v", err)
		}
		var insufficient *domain.InsufficientStockError
		if !errors.As(err, &insufficient) {
			t.Fatalf("expected typed InsufficientStockError, got %T", err)
		}
		if insufficient.Requested != 6 || insufficient.Available != 4 {
			t.Fatalf("expected requested=6 available=4, got requested=%d available=%d", insufficient.Requested, insufficient.Available)
		}
		if len(store.holds) != 1 {
			t.Fatalf("expected rejected hold not stored, got %d holds", len(store.holds))
		}
	})

	t.Run("expired holds free capacity", func(t *testing.T) {
		store := newFakeStore(product(10))
		store.holds["old"] = domain.Hold{
			ID:        "old",
			ProductID: "prod-1",
			Qty:       8,
			ExpiresAt: now.Add(-time.Second),
		}
		svc := NewHoldService(store, newFakeCache(), obs.Nop{}, clock.NewFixed(now), WithHoldTTL(ttl))

		if _, err := svc.CreateHold(context.Background(), CreateHoldInput{ProductID: "prod-1", Qty: 10}); err != nil {
			t.Fatalf("expected full stock available again, got %v", err)
		}
	})

	t.Run("emits contention event on rejection", func(t *testing.T) {
		store := newFakeStore(product(1))
		events := &obs.Capture{}
		svc := NewHoldService(store, newFakeCache(), events, clock.NewFixed(now))

		if _, err := svc.CreateHold(context.Background(), CreateHoldInput{ProductID: "prod-1", Qty: 2}); err == nil {
			t.Fatalf("expected rejection")
		}
		got := events.Named("stock_contention")
		if len(got) != 1 {
			t.Fatalf("expected one stock_contention event, got %d", len(got))
		}
		if got[0].Attrs["available"] != 1 {
			t.Fatalf("expected available=1 in event, got %v", got[0].Attrs["available"])
		}
	})

	t.Run("invalidates cached view on success", func(t *testing.T) {
		store := newFakeStore(product(10))
		productCache := newFakeCache()
		productCache.views["prod-1"] = domain.ProductView{ID: "prod-1", Available: 10}
		svc := NewHoldService(store, productCache, obs.Nop{}, clock.NewFixed(now))

		if _, err := svc.CreateHold(context.Background(), CreateHoldInput{ProductID: "prod-1", Qty: 1}); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(productCache.invalidated) != 1 || productCache.invalidated[0] != "prod-1" {
			t.Fatalf("expected cache invalidated for prod-1, got %v", productCache.invalidated)
		}
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		svc := NewHoldService(newFakeStore(product(10)), newFakeCache(), obs.Nop{}, clock.NewFixed(now))

		for _, qty := range []int{0, -3} {
			_, err := svc.CreateHold(context.Background(), CreateHoldInput{ProductID: "prod-1", Qty: qty})
			if !errors.Is(err, domain.ErrInvalidQuantity) {
				t.Fatalf("qty %d: expected ErrInvalidQuantity, got %v", qty, err)
			}
		}
	})

	t.Run("rejects missing product id", func(t *testing.T) {
		svc := NewHoldService(newFakeStore(), newFakeCache(), obs.Nop{}, clock.NewFixed(now))

		_, err := svc.CreateHold(context.Background(), CreateHoldInput{ProductID: "", Qty: 1})
		if !errors.Is(err, domain.ErrInvalidID) {
			t.Fatalf("expected ErrInvalidID, got %v", err)
		}
	})

	t.Run("unknown product", func(t *testing.T) {
		svc := NewHoldService(newFakeStore(), newFakeCache(), obs.Nop{}, clock.NewFixed(now))

		_, err := svc.CreateHold(context.Background(), CreateHoldInput{ProductID: "missing", Qty: 1})
		if !errors.Is(err, domain.ErrProductNotFound) {
			t.Fatalf("expected ErrProductNotFound, got %v", err)
		}
	})
}
