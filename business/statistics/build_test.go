package statistics

import (
	"testing"

	"github.com/OpenTransitTools/delaycurves/business/data/observation"
	"github.com/OpenTransitTools/delaycurves/business/data/schedule"
)

// fakeRouteStore is an in-memory RouteStore backed by a plain slice,
// standing in for observation.Store in tests that exercise the build
// orchestrator without a database.
type fakeRouteStore struct {
	rows []observation.Observation
}

func (f *fakeRouteStore) DistinctRoutes() ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, r := range f.rows {
		if !seen[r.RouteID] {
			seen[r.RouteID] = true
			out = append(out, r.RouteID)
		}
	}
	return out, nil
}

func (f *fakeRouteStore) DistinctRouteVariants(routeID string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, r := range f.rows {
		if r.RouteID == routeID && !seen[r.RouteVariantID] {
			seen[r.RouteVariantID] = true
			out = append(out, r.RouteVariantID)
		}
	}
	return out, nil
}

func (f *fakeRouteStore) LoadForRoute(routeID string) ([]observation.Observation, error) {
	var out []observation.Observation
	for _, r := range f.rows {
		if r.RouteID == routeID {
			out = append(out, r)
		}
	}
	return out, nil
}

func TestBuildOrchestratesAcrossRoutesAndSkipsUnmatchedVariants(t *testing.T) {
	dir := t.TempDir()
	writeFixtureFeed(t, dir)
	sched, err := schedule.NewFileProvider().Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	rows := observationsForVariant(25, false)
	rows = append(rows, observation.Observation{
		RouteID: "R1", RouteVariantID: "no-such-variant", TripID: "T9",
		ServiceDay: weekdayAt(13, 10), StopSequence: 0, StopID: "S1",
		TimeOfRecording: weekdayAt(13, 10), ArrivalDelay: intPtr(5),
	})
	store := &fakeRouteStore{rows: rows}

	tree, err := Build(store, sched, func(string) int { return 3 }, false, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if _, ok := tree.Specific["R1"]["1"]; !ok {
		t.Fatal("expected route R1 variant 1 to be built")
	}
	if _, ok := tree.Specific["R1"]["no-such-variant"]; ok {
		t.Error("expected the unmatched variant to be skipped, not built")
	}
}
