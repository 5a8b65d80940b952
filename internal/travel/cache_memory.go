package travel

import (
	"context"
	"sync"
	"time"
)

// MemoryTravelCache is the in-process fallback cache used when redis is
// unavailable or not configured.
type MemoryTravelCache struct {
	entries sync.Map
	ttl     time.Duration
}

type memoryEntry struct {
	minutes   int64
	expiresAt time.Time
}

func NewMemoryTravelCache(ttl time.Duration) *MemoryTravelCache {
	return &MemoryTravelCache{ttl: ttl}
}

func (c *MemoryTravelCache) Get(ctx context.Context, fromLocationID, toLocationID string) (int64, bool, error) {
	val, ok := c.entries.Load(travelKey(fromLocationID, toLocationID))
	if !ok {
		return 0, false, nil
	}
	entry := val.(memoryEntry)
	if time.Now().After(entry.expiresAt) {
		c.entries.Delete(travelKey(fromLocationID, toLocationID))
		return 0, false, nil
	}
	return entry.minutes, true, nil
}

func (c *MemoryTravelCache) Set(ctx context.Context, fromLocationID, toLocationID string, minutes int64) error {
	c.entries.Store(travelKey(fromLocationID, toLocationID), memoryEntry{
		minutes:   minutes,
		expiresAt: time.Now().Add(c.ttl),
	})
	return nil
}
