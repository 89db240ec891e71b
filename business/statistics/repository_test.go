package statistics

import (
	"path/filepath"
	"testing"

	"github.com/OpenTransitTools/delaycurves/business/curve"
	"github.com/OpenTransitTools/delaycurves/business/eventtype"
)

func TestRepositorySaveLoadRoundTrip(t *testing.T) {
	tree := NewTree()
	rvd := newRouteVariantData([]string{"S1", "S2"})
	rvd.GeneralDelay.Set(eventtype.Arrival, map[int]CurveData{
		0: {Curve: curve.New([]curve.Point{{X: 0, Y: 0}, {X: 10, Y: 1}}), Precision: SemiSpecific, SampleSize: 25},
	})
	tree.Specific["R1"] = map[string]*RouteVariantData{"1": rvd}
	tree.General[DefaultCurveKey{RouteType: 3, SlotID: 1}] = curve.New([]curve.Point{{X: 0, Y: 0}, {X: 20, Y: 1}})

	dir := t.TempDir()
	repo := NewRepository(filepath.Join(dir, "curve_data"), NewGobCodec())
	agencyOf := func(routeID string) string { return "A1" }

	if err := repo.Save(tree, agencyOf); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := repo.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(loaded.General) != 1 {
		t.Fatalf("expected 1 general curve, got %d", len(loaded.General))
	}
	got, ok := loaded.Specific["R1"]["1"]
	if !ok {
		t.Fatalf("expected route R1 variant 1 to round-trip")
	}
	if len(got.StopIDs) != 2 {
		t.Fatalf("expected 2 stop ids, got %d", len(got.StopIDs))
	}
}
