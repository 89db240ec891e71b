// Package statistics builds and stores the empirical delay-curve
// "statistics tree": per-route-variant conditional curves mined from
// observations, plus a general fallback tree aggregated by route type,
// route section, and time slot.
package statistics

import (
	"github.com/OpenTransitTools/delaycurves/business/curve"
	"github.com/OpenTransitTools/delaycurves/business/eventtype"
	"github.com/OpenTransitTools/delaycurves/business/routesection"
)

// PrecisionType is a closed enum ordered by information content, most
// specific first. The prediction resolver's descent relies on this
// ordering: each level it tries returns a less precise answer than the
// one before it.
type PrecisionType int32

const (
	Specific PrecisionType = iota
	FallbackSpecific
	SemiSpecific
	General
)

func (p PrecisionType) String() string {
	switch p {
	case Specific:
		return "Specific"
	case FallbackSpecific:
		return "FallbackSpecific"
	case SemiSpecific:
		return "SemiSpecific"
	case General:
		return "General"
	default:
		return "Unknown"
	}
}

// OriginType distinguishes a prediction computed from a live realtime
// basis from one precomputed ahead of time from the schedule alone.
type OriginType int32

const (
	Realtime OriginType = iota
	Schedule
)

func (o OriginType) String() string {
	switch o {
	case Realtime:
		return "Realtime"
	case Schedule:
		return "Schedule"
	default:
		return "Unknown"
	}
}

// DelayPair is one (initial-delay, final-delay) observation pair fed to
// the conditional curve-set builder for a single (start-stop, end-stop,
// time-slot) cell.
type DelayPair struct {
	Initial float64
	Final   float64
}

// CurveSetKey identifies one cell of a route-variant's curve_sets table:
// the stop index the initial delay was measured at, the stop index the
// final delay was measured at, and the time slot the observations fell
// in (timeslot.Default.ID for the DEFAULT bucket).
type CurveSetKey struct {
	StartIndex int
	EndIndex   int
	SlotID     int
}

// DefaultCurveKey identifies one cell of the general fallback tree.
type DefaultCurveKey struct {
	RouteType int
	Section   routesection.Section
	SlotID    int
	Event     eventtype.EventType
}

// CurveData pairs a single Curve with the precision level and sample
// count it was built from.
type CurveData struct {
	Curve      *curve.Curve
	Precision  PrecisionType
	SampleSize uint32
}

// CurveSetData pairs a CurveSet with the precision level and sample count
// it was built from.
type CurveSetData struct {
	CurveSet   *curve.CurveSet
	Precision  PrecisionType
	SampleSize uint32
}

// RouteVariantData holds everything the statistics builder emits for one
// route variant: the ordered stop-id list along the variant, one
// marginal curve per stop per event type, and the conditional curve sets
// keyed by stop-pair and time slot.
type RouteVariantData struct {
	StopIDs []string

	// GeneralDelay[event-type][stop-index] is the marginal delay curve at
	// that stop, regardless of initial delay.
	GeneralDelay eventtype.Pair[map[int]CurveData]

	// CurveSets[event-type][CurveSetKey] is the conditional curve family
	// for that stop pair and time slot.
	CurveSets eventtype.Pair[map[CurveSetKey]CurveSetData]
}

func newRouteVariantData(stopIDs []string) *RouteVariantData {
	rvd := &RouteVariantData{StopIDs: stopIDs}
	for _, e := range eventtype.All() {
		rvd.GeneralDelay.Set(e, make(map[int]CurveData))
		rvd.CurveSets.Set(e, make(map[CurveSetKey]CurveSetData))
	}
	return rvd
}

// Tree is the full persisted statistics tree: specific, per-route-variant
// data plus the general fallback curves.
type Tree struct {
	// Specific[route-id][route-variant-id] -> RouteVariantData
	Specific map[string]map[string]*RouteVariantData
	General  map[DefaultCurveKey]*curve.Curve
}

// NewTree builds an empty Tree ready for the statistics and default-curve
// builders to populate.
func NewTree() *Tree {
	return &Tree{
		Specific: make(map[string]map[string]*RouteVariantData),
		General:  make(map[DefaultCurveKey]*curve.Curve),
	}
}

func (t *Tree) routeVariant(routeID, variantID string, stopIDs []string) *RouteVariantData {
	byVariant, ok := t.Specific[routeID]
	if !ok {
		byVariant = make(map[string]*RouteVariantData)
		t.Specific[routeID] = byVariant
	}
	rvd, ok := byVariant[variantID]
	if !ok {
		rvd = newRouteVariantData(stopIDs)
		byVariant[variantID] = rvd
	}
	return rvd
}
