package prediction

import (
	"testing"
	"time"
)

func TestBasisCacheUpdateAndLookup(t *testing.T) {
	cache := NewBasisCache(time.Minute)
	key := VehicleKey{TripID: "T1", ServiceStartDay: time.Date(2026, 1, 13, 0, 0, 0, 0, time.UTC)}
	now := time.Date(2026, 1, 13, 10, 0, 0, 0, time.UTC)

	if _, ok := cache.Lookup(key, now); ok {
		t.Fatal("expected no basis before Update")
	}

	delay := 42
	cache.Update(key, Basis{StartStopID: "S1", InitialDelay: &delay}, now)

	got, ok := cache.Lookup(key, now.Add(time.Second))
	if !ok {
		t.Fatal("expected a basis after Update")
	}
	if got.StartStopID != "S1" || got.InitialDelay == nil || *got.InitialDelay != 42 {
		t.Errorf("unexpected basis: %+v", got)
	}
}

func TestBasisCacheLookupExpires(t *testing.T) {
	cache := NewBasisCache(time.Minute)
	key := VehicleKey{TripID: "T1", ServiceStartDay: time.Date(2026, 1, 13, 0, 0, 0, 0, time.UTC)}
	now := time.Date(2026, 1, 13, 10, 0, 0, 0, time.UTC)

	cache.Update(key, Basis{StartStopID: "S1"}, now)

	if _, ok := cache.Lookup(key, now.Add(2*time.Minute)); ok {
		t.Error("expected the basis to have expired")
	}
}

func TestBasisCacheRemoveExpiredPrunesOnlyStaleEntries(t *testing.T) {
	cache := NewBasisCache(time.Minute)
	fresh := VehicleKey{TripID: "fresh", ServiceStartDay: time.Date(2026, 1, 13, 0, 0, 0, 0, time.UTC)}
	stale := VehicleKey{TripID: "stale", ServiceStartDay: time.Date(2026, 1, 13, 0, 0, 0, 0, time.UTC)}

	base := time.Date(2026, 1, 13, 10, 0, 0, 0, time.UTC)
	cache.Update(stale, Basis{StartStopID: "S1"}, base)
	cache.Update(fresh, Basis{StartStopID: "S1"}, base.Add(2*time.Minute))

	remaining := cache.RemoveExpired(base.Add(2 * time.Minute))
	if remaining != 1 {
		t.Fatalf("RemoveExpired left %d entries, want 1", remaining)
	}
	if _, ok := cache.Lookup(fresh, base.Add(2*time.Minute)); !ok {
		t.Error("expected the fresh entry to survive pruning")
	}
	if _, ok := cache.Lookup(stale, base.Add(2*time.Minute)); ok {
		t.Error("expected the stale entry to have been pruned")
	}
}
