package curve

// minMarkerGapSeconds is the minimum x-distance (seconds) enforced between
// two adjacent markers.
const minMarkerGapSeconds = 20

// minMarkerSampleGap is the minimum percentile distance (in units of
// 1/count, i.e. "20 samples") enforced between two adjacent markers.
const minMarkerSampleGap = 20

// Subdivide recursively partitions the initial-delay range [lower, upper]
// of initialCurve into marker x-positions, returning the markers strictly
// between lower and upper in ascending order. count is the total number of
// samples initialCurve was built from, used to translate the minimum
// 20-sample gap into a percentile distance.
//
// A candidate marker must sit at least 20 seconds from both lower and
// upper (minMarkerGapSeconds), and at least 20 samples' worth of
// percentile away from both (minMarkerSampleGap/count). When no position
// satisfies both constraints, recursion terminates on that branch without
// adding a marker.
func Subdivide(initialCurve *Curve, lower, upper float64, count int) []float64 {
	minX, maxX, ok := candidateRange(initialCurve, lower, upper, count)
	if !ok {
		return nil
	}
	mid := (minX + maxX) / 2

	var markers []float64
	markers = append(markers, Subdivide(initialCurve, lower, mid, count)...)
	markers = append(markers, mid)
	markers = append(markers, Subdivide(initialCurve, mid, upper, count)...)
	return markers
}

// candidateRange computes the [minX, maxX] window within which a single
// new marker between lower and upper may be placed, satisfying both the
// minimum-delay-gap and minimum-sample-count constraints. ok is false when
// the window is empty, meaning no further marker can be placed here.
func candidateRange(initialCurve *Curve, lower, upper float64, count int) (minX, maxX float64, ok bool) {
	if count <= 0 {
		return 0, 0, false
	}
	percentileStep := float64(minMarkerSampleGap) / float64(count)

	delayLower := lower + minMarkerGapSeconds
	delayUpper := upper - minMarkerGapSeconds

	countLower := initialCurve.XAtY(initialCurve.YAtX(lower) + percentileStep)
	countUpper := initialCurve.XAtY(initialCurve.YAtX(upper) - percentileStep)

	minX = delayLower
	if countLower > minX {
		minX = countLower
	}
	maxX = delayUpper
	if countUpper < maxX {
		maxX = countUpper
	}
	if minX > maxX {
		return 0, 0, false
	}
	return minX, maxX, true
}

// BuildMarkers assembles the full marker list for a conditional-curve-set
// cell built from count observations: the curve's endpoints duplicated,
// enclosing the recursively subdivided interior markers in ascending
// order, so the sliding-window loop over consecutive triples in the
// ConditionalCurveSet builder covers the boundary buckets exactly once.
func BuildMarkers(initialCurve *Curve, count int) []float64 {
	minX, maxX := initialCurve.MinX(), initialCurve.MaxX()
	markers := make([]float64, 0, 4)
	markers = append(markers, minX, minX)
	markers = append(markers, Subdivide(initialCurve, minX, maxX, count)...)
	markers = append(markers, maxX, maxX)
	return markers
}
