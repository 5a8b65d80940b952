package travel

import (
	"context"

	"github.com/kcirtapfromspace/offleash-sub004/internal/domain"
)

// CachedEstimator wraps a provider with a cache. Cache errors are treated as
// misses; provider errors propagate so callers can degrade.
type CachedEstimator struct {
	provider domain.TravelEstimator
	cache    domain.TravelCache
}

func NewCachedEstimator(provider domain.TravelEstimator, cache domain.TravelCache) *CachedEstimator {
	return &CachedEstimator{provider: provider, cache: cache}
}

func (e *CachedEstimator) EstimateMinutes(ctx context.Context, fromLocationID, toLocationID string) (int64, error) {
	if fromLocationID == toLocationID {
		return 0, nil
	}

	if e.cache != nil {
		if minutes, ok, err := e.cache.Get(ctx, fromLocationID, toLocationID); err == nil && ok {
			return minutes, nil
		}
	}

	minutes, err := e.provider.EstimateMinutes(ctx, fromLocationID, toLocationID)
	if err != nil {
		return 0, err
	}

	if e.cache != nil {
		_ = e.cache.Set(ctx, fromLocationID, toLocationID, minutes)
	}
	return minutes, nil
}
