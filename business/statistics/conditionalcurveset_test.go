package statistics

import (
	"math"
	"testing"
)

func evenlySpacedPairs(n int) []DelayPair {
	pairs := make([]DelayPair, n)
	start := -60.0
	step := 6.0
	for i := 0; i < n; i++ {
		initial := start + float64(i)*step
		pairs[i] = DelayPair{Initial: initial, Final: initial + 6}
	}
	return pairs
}

func TestBuildConditionalCurveSetRejectsTooFewPairs(t *testing.T) {
	if _, err := BuildConditionalCurveSet(evenlySpacedPairs(10)); err == nil {
		t.Fatal("expected InsufficientData for fewer than 21 pairs")
	}
}

func TestBuildConditionalCurveSetConcreteScenario(t *testing.T) {
	pairs := evenlySpacedPairs(21)

	data, err := BuildConditionalCurveSet(pairs)
	if err != nil {
		t.Fatalf("BuildConditionalCurveSet: %v", err)
	}
	if data.CurveSet.Len() == 0 {
		t.Fatal("expected at least one conditional curve")
	}
	if data.Precision != Specific {
		t.Errorf("Precision = %v, want Specific", data.Precision)
	}

	c := data.CurveSet.CurveAtXWithContinuation(0)
	if c == nil {
		t.Fatal("expected a curve near focus=0")
	}
	if got := c.YAtX(6); math.Abs(got-0.5) > 0.1 {
		t.Errorf("YAtX(6) = %v, want ~0.5 ± 0.1", got)
	}
}
