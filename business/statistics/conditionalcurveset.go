package statistics

import (
	"math"
	"sort"

	"github.com/OpenTransitTools/delaycurves/business/curve"
	"github.com/OpenTransitTools/delaycurves/business/data/delayerr"
)

// minConditionalPairs is the minimum number of (initial, final) delay
// pairs required before a ConditionalCurveSet can be built for a cell.
const minConditionalPairs = 21

// minCellWidthSeconds is the minimum x-span a marker-bounded cell must
// cover to be considered informative enough to keep.
const minCellWidthSeconds = 13

// conditionalCurveSimplifyEps is the y-axis error tolerance used to
// simplify each conditional curve before storing it.
const conditionalCurveSimplifyEps = 0.001

// BuildConditionalCurveSet builds the family of conditional curves for
// one (route-variant, start-stop, end-stop, event-type, time-slot) cell
// from its raw (initial-delay, final-delay) observation pairs.
func BuildConditionalCurveSet(pairs []DelayPair) (*CurveSetData, error) {
	if len(pairs) < minConditionalPairs {
		return nil, delayerr.NewInsufficientData("fewer than the minimum pairs for a conditional curve set")
	}

	sorted := make([]DelayPair, len(pairs))
	copy(sorted, pairs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Initial < sorted[j].Initial })

	initials := make([]float64, len(sorted))
	for i, p := range sorted {
		initials[i] = p.Initial
	}
	initialCurve, _, err := curve.Build(initials, nil)
	if err != nil {
		return nil, err
	}

	markers := curve.BuildMarkers(initialCurve, len(sorted))

	cs := curve.NewCurveSet()
	totalSamples := 0
	curveCount := 0

	for i := 0; i+2 < len(markers); i++ {
		lower, mid, upper := markers[i], markers[i+1], markers[i+2]

		loIdx := int(math.Floor(float64(len(sorted)) * initialCurve.YAtX(lower)))
		hiIdx := int(math.Floor(float64(len(sorted)) * initialCurve.YAtX(upper)))
		if loIdx < 0 {
			loIdx = 0
		}
		if hiIdx > len(sorted) {
			hiIdx = len(sorted)
		}
		if hiIdx-loIdx <= 1 {
			continue
		}

		slice := sorted[loIdx:hiIdx]
		finals := make([]float64, len(slice))
		for j, p := range slice {
			finals[j] = p.Final
		}

		focus := mid
		c, _, err := curve.Build(finals, &focus)
		if err != nil {
			continue
		}
		if c.MaxX()-c.MinX() < minCellWidthSeconds {
			continue
		}
		cs.Add(mid, c.Simplify(conditionalCurveSimplifyEps))
		totalSamples += len(slice)
		curveCount++
	}

	if cs.Len() == 0 {
		return nil, delayerr.NewInsufficientData("no marker cell produced a usable conditional curve")
	}

	return &CurveSetData{
		CurveSet:   cs,
		Precision:  Specific,
		SampleSize: uint32(totalSamples / curveCount),
	}, nil
}
