package prediction

import (
	"testing"
	"time"
)

func TestScheduleTripSelectorFindsDailyDeparturesInWindow(t *testing.T) {
	sched := loadTestSchedule(t)
	selector := NewScheduleTripSelector(sched)

	begin := time.Date(2026, time.January, 13, 7, 55, 0, 0, time.UTC)
	end := begin.Add(10 * time.Minute)

	trips, err := selector.TripsDepartingBetween(begin, end)
	if err != nil {
		t.Fatalf("TripsDepartingBetween: %v", err)
	}
	if len(trips) != 1 {
		t.Fatalf("expected 1 departing trip, got %d: %+v", len(trips), trips)
	}
	if trips[0].RouteID != "R1" || trips[0].VariantID != "1" {
		t.Errorf("unexpected trip selected: %+v", trips[0])
	}
	if trips[0].ServiceStartTime != 8*3600 {
		t.Errorf("ServiceStartTime = %d, want %d", trips[0].ServiceStartTime, 8*3600)
	}
}

func TestScheduleTripSelectorExcludesDeparturesOutsideWindow(t *testing.T) {
	sched := loadTestSchedule(t)
	selector := NewScheduleTripSelector(sched)

	begin := time.Date(2026, time.January, 13, 9, 0, 0, 0, time.UTC)
	end := begin.Add(10 * time.Minute)

	trips, err := selector.TripsDepartingBetween(begin, end)
	if err != nil {
		t.Fatalf("TripsDepartingBetween: %v", err)
	}
	if len(trips) != 0 {
		t.Fatalf("expected no trips outside the 08:00 departure window, got %d", len(trips))
	}
}
