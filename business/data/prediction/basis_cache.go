package prediction

import (
	"sync"
	"time"
)

// VehicleKey identifies one in-progress vehicle run whose most recent
// realtime basis is cached for prediction requests.
type VehicleKey struct {
	TripID          string
	ServiceStartDay time.Time
}

// cachedBasis pairs a Basis with the instant it expires (its last update
// plus the cache's expiration duration), so cleanup can drop stale entries.
type cachedBasis struct {
	basis      Basis
	expireTime time.Time
}

// BasisCache holds the latest realtime Basis observed per vehicle in a
// mutex-protected, expiration-aware collection. A reader that
// misses a pruned entry treats it as "no current basis", per the
// concurrency model: pruning and lookups may race.
type BasisCache struct {
	mu                 sync.Mutex
	entries            map[VehicleKey]cachedBasis
	expirationDuration time.Duration
}

// NewBasisCache builds a BasisCache whose entries expire after
// expireAfter has elapsed since they were last updated.
func NewBasisCache(expireAfter time.Duration) *BasisCache {
	return &BasisCache{
		entries:            make(map[VehicleKey]cachedBasis),
		expirationDuration: expireAfter,
	}
}

// Update records basis as the latest known basis for key, observed at at.
func (c *BasisCache) Update(key VehicleKey, basis Basis, at time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cachedBasis{basis: basis, expireTime: at.Add(c.expirationDuration)}
}

// Lookup returns the current Basis for key, if any non-expired entry
// exists as of at.
func (c *BasisCache) Lookup(key VehicleKey, at time.Time) (Basis, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok || entry.expireTime.Before(at) {
		return Basis{}, false
	}
	return entry.basis, true
}

// RemoveExpired prunes every entry whose expiration has passed as of at,
// returning the number of entries remaining. Safe to call concurrently
// with Lookup and Update.
func (c *BasisCache) RemoveExpired(at time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, entry := range c.entries {
		if entry.expireTime.Before(at) {
			delete(c.entries, key)
		}
	}
	return len(c.entries)
}
