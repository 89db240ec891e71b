package prediction

import (
	"time"

	"github.com/OpenTransitTools/delaycurves/business/curve"
	"github.com/OpenTransitTools/delaycurves/business/data/delayerr"
	"github.com/OpenTransitTools/delaycurves/business/data/schedule"
	"github.com/OpenTransitTools/delaycurves/business/eventtype"
	"github.com/OpenTransitTools/delaycurves/business/routesection"
	"github.com/OpenTransitTools/delaycurves/business/statistics"
	"github.com/OpenTransitTools/delaycurves/business/timeslot"
)

// Basis is the optional realtime context a prediction request can supply:
// the stop the vehicle's current delay was observed at, and optionally
// that delay itself.
type Basis struct {
	StartStopID  string
	InitialDelay *int
}

// Result is the outcome of a single Predict call: exactly one of Curve or
// CurveSet is populated, mirroring PredictionResult's CurveData |
// CurveSetData union.
type Result struct {
	Curve      *curve.Curve
	CurveSet   *curve.CurveSet
	Precision  statistics.PrecisionType
	SampleSize uint32
}

// Resolver answers prediction requests by descending the precision
// hierarchy described in statisticalSegmentTime's teacher analogue:
// try the most specific statistics available, falling back one level at
// a time down to the route-type default.
type Resolver struct {
	tree        *statistics.Tree
	sched       *schedule.Schedule
	routeTypeOf func(routeID string) int
}

// NewResolver builds a Resolver over tree and sched. routeTypeOf resolves
// a route id to its GTFS route_type for the final General fallback.
func NewResolver(tree *statistics.Tree, sched *schedule.Schedule, routeTypeOf func(routeID string) int) *Resolver {
	return &Resolver{tree: tree, sched: sched, routeTypeOf: routeTypeOf}
}

// Predict answers one prediction request, per §4.10's four-step descent.
func (r *Resolver) Predict(routeID, variantID, tripID string, basis *Basis,
	stopSequence int, event eventtype.EventType, now time.Time) (*Result, error) {

	variant := r.sched.Variant(routeID, variantID)
	if variant == nil {
		return nil, delayerr.NewSchemaMismatch(tripID, "no schedule trip for route variant "+routeID+"/"+variantID)
	}
	rep := variant.Representative

	endIdx, ok := stopIndexForSequence(rep, stopSequence)
	if !ok {
		return nil, delayerr.NewSchemaMismatch(tripID, "stop sequence not found on trip")
	}

	var rvd *statistics.RouteVariantData
	if byVariant, ok := r.tree.Specific[routeID]; ok {
		rvd = byVariant[variantID]
	}

	if basis != nil && rvd != nil {
		if startIdx, ok := stopIndexForStopID(rep, basis.StartStopID); ok {
			if result := r.predictFromBasis(rvd, startIdx, endIdx, event, basis.InitialDelay, now); result != nil {
				return result, nil
			}
		}
	}

	if rvd != nil {
		if data, found := rvd.GeneralDelay.Get(event)[endIdx]; found {
			return &Result{Curve: data.Curve, Precision: statistics.SemiSpecific, SampleSize: data.SampleSize}, nil
		}
	}

	section := routesection.SectionFor(len(rep.StopTimes), endIdx)
	slot := timeslot.SlotFor(now)
	key := statistics.DefaultCurveKey{RouteType: r.routeTypeOf(routeID), Section: section, SlotID: slot.ID, Event: event}
	if c, ok := r.tree.General[key]; ok {
		return &Result{Curve: c, Precision: statistics.General}, nil
	}

	return nil, delayerr.NewNoStatistics(routeID, rep.StopTimes[endIdx].StopID)
}

// predictFromBasis implements §4.10 steps 1 and 2: look up the specific
// CurveSetKey for now's slot, retrying with the DEFAULT slot on a miss.
// Returns nil (not an error) if neither lookup succeeds, so the caller
// falls through to the next precision level.
func (r *Resolver) predictFromBasis(rvd *statistics.RouteVariantData, startIdx, endIdx int,
	event eventtype.EventType, initialDelay *int, now time.Time) *Result {

	curveSets := rvd.CurveSets.Get(event)
	slot := timeslot.SlotFor(now)
	key := statistics.CurveSetKey{StartIndex: startIdx, EndIndex: endIdx, SlotID: slot.ID}

	data, found := curveSets[key]
	precision := statistics.Specific
	if !found {
		key.SlotID = timeslot.DefaultID
		data, found = curveSets[key]
		precision = statistics.FallbackSpecific
	}
	if !found {
		return nil
	}

	if initialDelay != nil {
		c := data.CurveSet.CurveAtXWithContinuation(float64(*initialDelay))
		if c == nil {
			return nil
		}
		return &Result{Curve: c, Precision: precision, SampleSize: data.SampleSize}
	}
	return &Result{CurveSet: data.CurveSet, Precision: precision, SampleSize: data.SampleSize}
}

func stopIndexForSequence(trip *schedule.Trip, stopSequence int) (int, bool) {
	for i, st := range trip.StopTimes {
		if st.StopSequence == stopSequence {
			return i, true
		}
	}
	return 0, false
}

func stopIndexForStopID(trip *schedule.Trip, stopID string) (int, bool) {
	for i, st := range trip.StopTimes {
		if st.StopID == stopID {
			return i, true
		}
	}
	return 0, false
}
