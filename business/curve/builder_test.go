package curve

import (
	"math"
	"testing"
)

func TestBuildUnfocusedIsPlainECDF(t *testing.T) {
	c, total, err := Build([]float64{10, 20, 30, 40}, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if total != 4 {
		t.Errorf("total = %v, want 4", total)
	}
	if got := c.YAtX(10); math.Abs(got-0) > 1e-9 {
		t.Errorf("YAtX(10) = %v, want 0", got)
	}
	if got := c.YAtX(40); math.Abs(got-1) > 1e-9 {
		t.Errorf("YAtX(40) = %v, want 1", got)
	}
	if got := c.YAtX(20); math.Abs(got-2.0/4) > 1e-9 {
		t.Errorf("YAtX(20) = %v, want 0.5", got)
	}
}

func TestBuildFocusedWeightsTaperAwayFromFocus(t *testing.T) {
	focus := 20.0
	c, _, err := Build([]float64{0, 10, 20, 30, 40}, &focus)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if got := c.YAtX(0); got != 0 {
		t.Errorf("YAtX(0) = %v, want 0", got)
	}
	if got := c.YAtX(40); got != 1 {
		t.Errorf("YAtX(40) = %v, want 1", got)
	}
	// Weights are 0, 0.5, 1, 0.5, 0 (total 2). The running sum at x=20
	// includes the focus value's own full weight: (0+0.5+1)/2 = 0.75.
	if got := c.YAtX(20); math.Abs(got-0.75) > 1e-6 {
		t.Errorf("YAtX(20) = %v, want ~0.75", got)
	}
}

func TestBuildRejectsEmptySample(t *testing.T) {
	if _, _, err := Build(nil, nil); err == nil {
		t.Fatal("expected error for empty sample")
	}
}

func TestBuildRejectsSingleDistinctValue(t *testing.T) {
	if _, _, err := Build([]float64{5, 5, 5}, nil); err == nil {
		t.Fatal("expected error when sample has a single distinct value")
	}
}
