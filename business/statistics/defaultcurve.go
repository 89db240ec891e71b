package statistics

import (
	"github.com/OpenTransitTools/delaycurves/business/curve"
	"github.com/OpenTransitTools/delaycurves/business/eventtype"
	"github.com/OpenTransitTools/delaycurves/business/routesection"
)

// minDefaultCurveSamples is the minimum number of contributing
// SemiSpecific curves a (route-type, section, slot, event) cell needs
// before a General fallback curve is emitted for it.
const minDefaultCurveSamples = 10

// defaultCurveAverageEps is the y-axis error tolerance the averaged
// default curve is simplified to.
const defaultCurveAverageEps = 0.001

// BuildDefaultCurves aggregates every SemiSpecific marginal curve in tree
// by (route-type, route-section, time-slot, event-type), replacing
// tree.General with one averaged General curve per cell that accumulated
// at least minDefaultCurveSamples contributing curves. Cells below the
// threshold are omitted rather than built from a thin sample.
//
// routeTypeOf resolves a route id to its GTFS route_type; each stop
// index's Beginning/Middle/End section comes from routesection.SectionFor
// with that variant's stop count.
func BuildDefaultCurves(tree *Tree, routeTypeOf func(routeID string) int) {
	type bucket struct {
		curves []*curve.Curve
	}
	buckets := make(map[DefaultCurveKey]*bucket)

	for routeID, variants := range tree.Specific {
		routeType := routeTypeOf(routeID)
		for _, rvd := range variants {
			stopCount := len(rvd.StopIDs)
			if stopCount == 0 {
				continue
			}
			for _, event := range eventtype.All() {
				for stopIndex, data := range rvd.GeneralDelay.Get(event) {
					if data.Precision != SemiSpecific {
						continue
					}
					section := routesection.SectionFor(stopCount, stopIndex)
					// A marginal curve carries no time-slot stratification
					// (see business/statistics/builder.go), so every
					// default-curve slot, including DEFAULT, draws from
					// the same pool of per-stop curves.
					for _, slot := range allSlots() {
						key := DefaultCurveKey{RouteType: routeType, Section: section, SlotID: slot.ID, Event: event}
						b, ok := buckets[key]
						if !ok {
							b = &bucket{}
							buckets[key] = b
						}
						b.curves = append(b.curves, data.Curve)
					}
				}
			}
		}
	}

	tree.General = make(map[DefaultCurveKey]*curve.Curve)
	for key, b := range buckets {
		if len(b.curves) < minDefaultCurveSamples {
			continue
		}
		avg, err := curve.Average(b.curves, defaultCurveAverageEps)
		if err != nil {
			continue
		}
		tree.General[key] = avg
	}
}
