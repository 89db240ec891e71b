package curve

import "testing"

func uniformCurve(minX, maxX float64) *Curve {
	return New([]Point{{X: minX, Y: 0}, {X: maxX, Y: 1}})
}

func TestCandidateRangeRejectsNarrowWindow(t *testing.T) {
	c := uniformCurve(0, 30)
	if _, _, ok := candidateRange(c, 0, 30, 1000); ok {
		t.Fatalf("expected no candidate range for a 30-second window")
	}
}

func TestSubdivideProducesAscendingMarkers(t *testing.T) {
	c := uniformCurve(0, 600)
	markers := Subdivide(c, 0, 600, 600)
	for i := 1; i < len(markers); i++ {
		if markers[i] <= markers[i-1] {
			t.Fatalf("markers not strictly ascending: %v", markers)
		}
	}
	for _, m := range markers {
		if m <= 0 || m >= 600 {
			t.Fatalf("marker %v outside open interval (0, 600)", m)
		}
	}
}

func TestSubdivideRespectsMinimumGap(t *testing.T) {
	c := uniformCurve(0, 600)
	bounds := append([]float64{0}, Subdivide(c, 0, 600, 600)...)
	bounds = append(bounds, 600)
	for i := 1; i < len(bounds); i++ {
		if gap := bounds[i] - bounds[i-1]; gap < minMarkerGapSeconds-1e-9 {
			t.Errorf("gap %v between %v and %v is below the minimum", gap, bounds[i-1], bounds[i])
		}
	}
}

func TestSubdivideEmptyWhenTooFewSamples(t *testing.T) {
	c := uniformCurve(0, 600)
	markers := Subdivide(c, 0, 600, 10)
	if len(markers) != 0 {
		t.Fatalf("expected no markers with only 10 samples, got %v", markers)
	}
}

func TestBuildMarkersDuplicatesEndpoints(t *testing.T) {
	c := uniformCurve(0, 600)
	markers := BuildMarkers(c, 600)
	if len(markers) < 4 {
		t.Fatalf("expected at least the duplicated endpoints, got %v", markers)
	}
	if markers[0] != c.MinX() || markers[1] != c.MinX() {
		t.Errorf("expected leading duplicated MinX, got %v", markers[:2])
	}
	n := len(markers)
	if markers[n-1] != c.MaxX() || markers[n-2] != c.MaxX() {
		t.Errorf("expected trailing duplicated MaxX, got %v", markers[n-2:])
	}
}
