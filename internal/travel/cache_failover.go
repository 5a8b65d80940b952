package travel

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/kcirtapfromspace/offleash-sub004/internal/domain"
)

// FailoverTravelCache prefers the primary cache and falls back to the
// secondary when the primary errors. After a minute it probes the primary
// again.
type FailoverTravelCache struct {
	primary   domain.TravelCache
	fallback  domain.TravelCache
	log       zerolog.Logger
	isDown    atomic.Bool
	lastCheck atomic.Int64
}

func NewFailoverTravelCache(primary, fallback domain.TravelCache, logger *zerolog.Logger) *FailoverTravelCache {
	var log zerolog.Logger
	if logger != nil {
		log = logger.With().Str("component", "travel_cache").Logger()
	}
	return &FailoverTravelCache{primary: primary, fallback: fallback, log: log}
}

func (c *FailoverTravelCache) markDown(err error) {
	c.log.Error().Err(err).Msg("primary travel cache failed, using fallback")
	c.isDown.Store(true)
	c.lastCheck.Store(time.Now().UnixNano())
}

func (c *FailoverTravelCache) shouldProbe() bool {
	return time.Since(time.Unix(0, c.lastCheck.Load())) > time.Minute
}

func (c *FailoverTravelCache) Get(ctx context.Context, fromLocationID, toLocationID string) (int64, bool, error) {
	if !c.isDown.Load() || c.shouldProbe() {
		minutes, ok, err := c.primary.Get(ctx, fromLocationID, toLocationID)
		if err == nil {
			c.isDown.Store(false)
			return minutes, ok, nil
		}
		c.markDown(err)
	}
	return c.fallback.Get(ctx, fromLocationID, toLocationID)
}

func (c *FailoverTravelCache) Set(ctx context.Context, fromLocationID, toLocationID string, minutes int64) error {
	if !c.isDown.Load() || c.shouldProbe() {
		err := c.primary.Set(ctx, fromLocationID, toLocationID, minutes)
		if err == nil {
			c.isDown.Store(false)
			// Mirror into the fallback so a later failover still has data.
			_ = c.fallback.Set(ctx, fromLocationID, toLocationID, minutes)
			return nil
		}
		c.markDown(err)
	}
	return c.fallback.Set(ctx, fromLocationID, toLocationID, minutes)
}
