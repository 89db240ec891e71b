package curve

import "testing"

func flatCurve(y float64) *Curve {
	return New([]Point{{X: 0, Y: 0}, {X: 100, Y: y}, {X: 200, Y: 1}})
}

func TestCurveSetAddKeepsAscendingFocus(t *testing.T) {
	cs := NewCurveSet()
	cs.Add(30, flatCurve(0.5))
	cs.Add(10, flatCurve(0.3))
	cs.Add(20, flatCurve(0.4))

	foci := cs.Foci()
	for i := 1; i < len(foci); i++ {
		if foci[i] <= foci[i-1] {
			t.Fatalf("foci not ascending: %v", foci)
		}
	}
	if foci[0] != 10 || foci[len(foci)-1] != 30 {
		t.Errorf("unexpected foci order: %v", foci)
	}
}

func TestCurveAtXWithContinuationInRangeIsBucketLookup(t *testing.T) {
	cs := NewCurveSet()
	low := flatCurve(0.3)
	high := flatCurve(0.6)
	cs.Add(10, low)
	cs.Add(50, high)

	if got := cs.CurveAtXWithContinuation(30); got != low {
		t.Errorf("expected nearest-below focus (10) curve unmodified for x=30")
	}
	if got := cs.CurveAtXWithContinuation(50); got != high {
		t.Errorf("expected exact-focus curve for x=50")
	}
}

func TestCurveAtXWithContinuationOutOfRangeShifts(t *testing.T) {
	cs := NewCurveSet()
	high := flatCurve(0.6)
	cs.Add(50, high)

	shifted := cs.CurveAtXWithContinuation(80)
	if shifted == high {
		t.Fatal("expected a shifted copy, not the original curve, for x beyond the max focus")
	}
	if got, want := shifted.MinX(), high.MinX()+30; got != want {
		t.Errorf("shifted MinX = %v, want %v", got, want)
	}
	if got, want := shifted.Points[1].Y, high.Points[1].Y; got != want {
		t.Errorf("shift must not change y values: got %v, want %v", got, want)
	}
}

func TestCurveAtXWithContinuationEmptySet(t *testing.T) {
	cs := NewCurveSet()
	if got := cs.CurveAtXWithContinuation(10); got != nil {
		t.Errorf("expected nil curve for empty set, got %v", got)
	}
}
