package statistics

import (
	"testing"

	"github.com/OpenTransitTools/delaycurves/business/curve"
	"github.com/OpenTransitTools/delaycurves/business/eventtype"
)

func semiSpecificCurve(t *testing.T, values []float64) *curve.Curve {
	t.Helper()
	c, _, err := curve.Build(values, nil)
	if err != nil {
		t.Fatalf("curve.Build: %v", err)
	}
	return c
}

func TestBuildDefaultCurvesSkipsThinCells(t *testing.T) {
	tree := NewTree()
	rvd := tree.routeVariant("R1", "1", []string{"S1", "S2", "S3"})
	rvd.GeneralDelay.Get(eventtype.Arrival)[0] = CurveData{
		Curve:     semiSpecificCurve(t, []float64{1, 2, 3}),
		Precision: SemiSpecific, SampleSize: 20,
	}

	BuildDefaultCurves(tree, func(string) int { return 3 })

	if len(tree.General) != 0 {
		t.Fatalf("expected no default curves from a single contributing variant, got %d", len(tree.General))
	}
}

func TestBuildDefaultCurvesAggregatesAcrossVariants(t *testing.T) {
	tree := NewTree()
	for i := 0; i < minDefaultCurveSamples; i++ {
		rvd := tree.routeVariant("R1", string(rune('a'+i)), []string{"S1", "S2", "S3"})
		rvd.GeneralDelay.Get(eventtype.Arrival)[0] = CurveData{
			Curve:     semiSpecificCurve(t, []float64{float64(i), float64(i + 1), float64(i + 2)}),
			Precision: SemiSpecific, SampleSize: 20,
		}
	}

	BuildDefaultCurves(tree, func(string) int { return 3 })

	if len(tree.General) == 0 {
		t.Fatal("expected at least one aggregated default curve")
	}
	for key := range tree.General {
		if key.RouteType != 3 || key.Event != eventtype.Arrival {
			t.Errorf("unexpected default curve key: %+v", key)
		}
	}
}

func TestBuildDefaultCurvesIgnoresNonSemiSpecificCurves(t *testing.T) {
	tree := NewTree()
	for i := 0; i < minDefaultCurveSamples; i++ {
		rvd := tree.routeVariant("R1", string(rune('a'+i)), []string{"S1", "S2", "S3"})
		rvd.GeneralDelay.Get(eventtype.Arrival)[0] = CurveData{
			Curve:     semiSpecificCurve(t, []float64{1, 2, 3}),
			Precision: Specific, SampleSize: 20,
		}
	}

	BuildDefaultCurves(tree, func(string) int { return 3 })

	if len(tree.General) != 0 {
		t.Fatalf("expected Specific-precision curves to be excluded, got %d cells", len(tree.General))
	}
}
