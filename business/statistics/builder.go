package statistics

import (
	"time"

	"github.com/OpenTransitTools/delaycurves/business/curve"
	"github.com/OpenTransitTools/delaycurves/business/data/delayerr"
	"github.com/OpenTransitTools/delaycurves/business/data/observation"
	"github.com/OpenTransitTools/delaycurves/business/data/schedule"
	"github.com/OpenTransitTools/delaycurves/business/eventtype"
	"github.com/OpenTransitTools/delaycurves/business/timeslot"
)

// minMarginalSamples is the minimum number of delays required at a stop
// before a marginal general_delay curve is emitted for it.
const minMarginalSamples = 20

// maxAbsoluteDelaySeconds rejects outlier observations before they enter
// a conditional curve-set's matching pairs.
const maxAbsoluteDelaySeconds = 3000

// quantizeSeconds is the rounding granularity applied to delays entering
// a conditional curve-set, matching how many realtime feeds themselves
// quantize reported delays.
const quantizeSeconds = 12

// allSlots returns the 11 canonical slots plus the synthetic DEFAULT
// slot, the full set the builder stratifies observations by.
func allSlots() []timeslot.TimeSlot {
	return append(append([]timeslot.TimeSlot{}, timeslot.All...), timeslot.Default)
}

// quantize12 rounds d to a multiple of quantizeSeconds by truncating
// toward zero (Go's native integer division behavior, so -13 becomes -12, for
// negative operands), per this repository's resolution of the source's
// ambiguous "round to nearest multiple of 12 seconds" note.
func quantize12(d int) int {
	return d / quantizeSeconds * quantizeSeconds
}

// stopObservation is one persisted Observation narrowed to the fields the
// builder needs, resolved to its position in the route variant's stop
// sequence.
type stopObservation struct {
	stopIndex      int
	at             time.Time
	arrivalDelay   *int
	departureDelay *int
}

func (s stopObservation) delayFor(e eventtype.EventType) *int {
	if e == eventtype.Departure {
		return s.departureDelay
	}
	return s.arrivalDelay
}

// vehicleKey identifies one vehicle run for the projection pass and the
// conditional-curve-set's vehicle join. Observation carries a service day
// but not a trip start time, so (ServiceDay, TripID) stands in as the
// join key; this is what the persisted data model actually provides.
type vehicleKey struct {
	serviceDay time.Time
	tripID     string
}

// BuildRouteVariant constructs a RouteVariantData for one route variant
// from its raw observations and the schedule's representative trip for
// that variant, per §4.6. projection enables the §4.6.1 gap-fill pass.
func BuildRouteVariant(routeID string, variantID string, observations []observation.Observation,
	sched *schedule.Schedule, projection bool) (*RouteVariantData, error) {

	variant := sched.Variant(routeID, variantID)
	if variant == nil {
		return nil, delayerr.NewSchemaMismatch(routeID+"/"+variantID, "no matching schedule trip for route variant")
	}
	rep := variant.Representative

	stopIndexBySequence := make(map[int]int, len(rep.StopTimes))
	for i, st := range rep.StopTimes {
		stopIndexBySequence[st.StopSequence] = i
	}

	vehicles := make(map[vehicleKey]map[int]stopObservation)
	for _, obs := range observations {
		idx, ok := stopIndexBySequence[obs.StopSequence]
		if !ok {
			continue
		}
		key := vehicleKey{serviceDay: obs.ServiceDay, tripID: obs.TripID}
		rows, ok := vehicles[key]
		if !ok {
			rows = make(map[int]stopObservation)
			vehicles[key] = rows
		}
		rows[idx] = stopObservation{
			stopIndex:      idx,
			at:             obs.TimeOfRecording,
			arrivalDelay:   obs.ArrivalDelay,
			departureDelay: obs.DepartureDelay,
		}
	}

	if projection {
		orderedIndices := make([]int, len(rep.StopTimes))
		for i := range rep.StopTimes {
			orderedIndices[i] = i
		}
		for key, rows := range vehicles {
			vehicles[key] = applyProjection(rows, orderedIndices)
		}
	}

	rvd := newRouteVariantData(variant.StopIDs)
	buildMarginals(rvd, vehicles, len(rep.StopTimes))
	buildConditionalSets(rvd, vehicles, len(rep.StopTimes))
	return rvd, nil
}

// applyProjection replays rows in stop-sequence order, carrying forward
// the last seen arrival/departure delay into any stop index present in
// orderedIndices but missing from rows, once at least one earlier
// observation has been seen. Idempotent: every index orderedIndices
// names ends up present, so a second pass changes nothing.
func applyProjection(rows map[int]stopObservation, orderedIndices []int) map[int]stopObservation {
	out := make(map[int]stopObservation, len(orderedIndices))
	var lastArrival, lastDeparture *int
	var lastTime time.Time
	seen := false

	for _, idx := range orderedIndices {
		if row, ok := rows[idx]; ok {
			out[idx] = row
			lastArrival = row.arrivalDelay
			lastDeparture = row.departureDelay
			lastTime = row.at
			seen = true
			continue
		}
		if !seen {
			continue
		}
		out[idx] = stopObservation{
			stopIndex:      idx,
			at:             lastTime,
			arrivalDelay:   lastArrival,
			departureDelay: lastDeparture,
		}
	}
	return out
}

// marginalSimplifyEps is the y-axis error tolerance used to simplify a
// per-stop marginal delay curve before storing it.
const marginalSimplifyEps = 0.01

// buildMarginals fills in rvd.GeneralDelay: one curve per (event-type,
// stop) marginal over initial delay, independent of time slot.
func buildMarginals(rvd *RouteVariantData, vehicles map[vehicleKey]map[int]stopObservation, stopCount int) {
	for _, event := range eventtype.All() {
		generalDelay := rvd.GeneralDelay.Get(event)
		for i := 0; i < stopCount; i++ {
			var delays []float64
			for _, rows := range vehicles {
				row, ok := rows[i]
				if !ok {
					continue
				}
				d := row.delayFor(event)
				if d == nil {
					continue
				}
				delays = append(delays, float64(*d))
			}
			if len(delays) < minMarginalSamples {
				continue
			}
			c, _, err := curve.Build(delays, nil)
			if err != nil {
				continue
			}
			generalDelay[i] = CurveData{
				Curve:      c.Simplify(marginalSimplifyEps),
				Precision:  SemiSpecific,
				SampleSize: uint32(len(delays)),
			}
		}
	}
}

func buildConditionalSets(rvd *RouteVariantData, vehicles map[vehicleKey]map[int]stopObservation, stopCount int) {
	for _, event := range eventtype.All() {
		curveSets := rvd.CurveSets.Get(event)
		for startIdx := 0; startIdx < stopCount; startIdx++ {
			for endIdx := startIdx + 1; endIdx < stopCount; endIdx++ {
				for _, slot := range allSlots() {
					pairs := collectPairs(vehicles, event, startIdx, endIdx, slot)
					if len(pairs) == 0 {
						continue
					}
					data, err := BuildConditionalCurveSet(pairs)
					if err != nil {
						continue
					}
					curveSets[CurveSetKey{StartIndex: startIdx, EndIndex: endIdx, SlotID: slot.ID}] = *data
				}
			}
		}
	}
}

func collectPairs(vehicles map[vehicleKey]map[int]stopObservation, event eventtype.EventType,
	startIdx, endIdx int, slot timeslot.TimeSlot) []DelayPair {

	var pairs []DelayPair
	for _, rows := range vehicles {
		rowStart, ok := rows[startIdx]
		if !ok {
			continue
		}
		rowEnd, ok := rows[endIdx]
		if !ok {
			continue
		}
		initial := rowStart.delayFor(event)
		final := rowEnd.delayFor(event)
		if initial == nil || final == nil {
			continue
		}
		if abs(*initial) >= maxAbsoluteDelaySeconds || abs(*final) >= maxAbsoluteDelaySeconds {
			continue
		}
		if slot.ID != timeslot.DefaultID && !slot.Matches(rowStart.at) {
			continue
		}
		pairs = append(pairs, DelayPair{
			Initial: float64(quantize12(*initial)),
			Final:   float64(quantize12(*final)),
		})
	}
	return pairs
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
