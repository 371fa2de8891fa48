package app

import (
	"context"
	"time"

	"github.com/hisham3323/flash-sale-api/internal/cache"
	"github.com/hisham3323/flash-sale-api/internal/clock"
	"github.com/hisham3323/flash-sale-api/internal/obs"
)

type SweeperRepository interface {
	// DeleteExpiredHolds removes every hold past its expiry and
	// returns the product id of each deleted hold.
	DeleteExpiredHolds(ctx context.Context, now time.Time) ([]string, error)
}

type SweeperService struct {
	repo    SweeperRepository
	cache   cache.ProductCache
	emitter obs.Emitter
	clock   clock.Clock
}

func NewSweeperService(repo SweeperRepository, productCache cache.ProductCache, emitter obs.Emitter, clk clock.Clock) *SweeperService {
	return &SweeperService{
		repo:    repo,
		cache:   productCache,
		emitter: emitter,
		clock:   clk,
	}
}

// ReleaseExpiredHolds deletes every hold whose window has passed and
// returns the number released. Pure deletion: holds never decremented
// stock, so nothing is credited back. Safe to run concurrently with
// itself and with conversion; the hold row lock decides who wins, and
// both outcomes leave the books consistent.
func (s *SweeperService) ReleaseExpiredHolds(ctx context.Context) (int, error) {
	productIDs, err := s.repo.DeleteExpiredHolds(ctx, s.clock.Now())
	if err != nil {
		return 0, err
	}

	seen := make(map[string]struct{}, len(productIDs))
	for _, id := range productIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		_ = s.cache.Invalidate(ctx, id)
	}

	s.emitter.Emit("holds_expired", map[string]any{"count": len(productIDs)})
	return len(productIDs), nil
}
