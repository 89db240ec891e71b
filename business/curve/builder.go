package curve

import (
	"sort"

	"github.com/OpenTransitTools/delaycurves/business/data/delayerr"
)

// Build constructs a Curve from an unordered sample of values. When focus
// is nil every observation carries weight 1 (a plain empirical CDF). When
// focus is non-nil, each value is weighted by a triangular kernel centered
// on focus: values equal to focus get weight 1, values below focus are
// weighted by their fractional distance from the sample minimum toward
// focus, and values above focus are weighted by their fractional distance
// from focus toward the sample maximum. This is a deliberate design choice
// (not an incidental artifact) that must be preserved bit-for-bit to
// reproduce existing curves: it's what makes a conditional curve built
// around a given initial delay representative of the neighborhood that
// focus names.
//
// Build returns the accumulated sum of weights alongside the Curve; for an
// unfocused build that sum equals len(values).
func Build(values []float64, focus *float64) (*Curve, float64, error) {
	if len(values) == 0 {
		return nil, 0, delayerr.NewInsufficientData("no values supplied to curve builder")
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	lo := sorted[0]
	hi := sorted[len(sorted)-1]

	weight := func(v float64) float64 {
		if focus == nil {
			return 1
		}
		f := *focus
		switch {
		case v == f:
			return 1
		case v < f:
			if v < lo || v > hi {
				return 0
			}
			if f == lo {
				return 0
			}
			return (v - lo) / (f - lo)
		default: // v > f
			if v < lo || v > hi {
				return 0
			}
			if hi == f {
				return 0
			}
			return 1 - (v-f)/(hi-f)
		}
	}

	var points []Point
	running := 0.0
	for i, v := range sorted {
		running += weight(v)
		if i == len(sorted)-1 || sorted[i+1] != v {
			points = append(points, Point{X: v, Y: running})
		}
	}

	total := running
	if total > 0 {
		for i := range points {
			points[i].Y /= total
		}
	}

	if len(points) < 2 {
		return nil, total, delayerr.NewInsufficientData("fewer than two distinct x-values")
	}

	points[0].Y = 0
	points[len(points)-1].Y = 1

	return &Curve{Points: points}, total, nil
}
