package prediction

import (
	"time"

	"github.com/OpenTransitTools/delaycurves/business/data/schedule"
	"github.com/OpenTransitTools/delaycurves/business/eventtype"
	"github.com/OpenTransitTools/delaycurves/business/statistics"
)

// advancerWindow is the increment the advancer extends its selection
// window by when too few trips fall within it.
const advancerWindow = 10 * time.Minute

// minTripsPerWindow is the minimum number of trips the advancer wants to
// see before persisting a batch of schedule-only predictions.
const minTripsPerWindow = 50

// advancerHorizon bounds how far ahead of now the advancer will ever
// extend its window, regardless of trip count.
const advancerHorizon = 7 * 24 * time.Hour

// coldStartLookback is how far behind now the watermark starts when no
// schedule-origin predictions have been persisted yet.
const coldStartLookback = 12 * time.Hour

// ScheduledTrip is one vehicle run selected by a TripSelector for
// schedule-only prediction pre-computation.
type ScheduledTrip struct {
	RouteID          string
	VariantID        string
	TripID           string
	ServiceStartDay  time.Time
	ServiceStartTime int
}

// TripSelector resolves every trip whose first scheduled departure falls
// in [begin, end). GTFS calendar expansion (which service-day a trip runs
// on) is an external collaborator, out of scope for this repository per
// its schedule-feed boundary.
type TripSelector interface {
	TripsDepartingBetween(begin, end time.Time) ([]ScheduledTrip, error)
}

// Advancer runs the scheduled-prediction pre-computation pass, tracking
// its progress via the persisted predictions table's own watermark rather
// than separate state.
type Advancer struct {
	store    *Store
	resolver *Resolver
	sched    *schedule.Schedule
	selector TripSelector
	source   string
}

// NewAdvancer builds an Advancer. source tags every persisted prediction,
// mirroring the realtime ingestion loop's GTFS_DATA_SOURCE_ID tag.
func NewAdvancer(store *Store, resolver *Resolver, sched *schedule.Schedule, selector TripSelector, source string) *Advancer {
	return &Advancer{store: store, resolver: resolver, sched: sched, selector: selector, source: source}
}

// Advance runs one invocation of the advancer as of now, per §4.11.
func (a *Advancer) Advance(now time.Time) error {
	begin, ok, err := a.store.ScheduleWatermark()
	if err != nil {
		return err
	}
	if !ok {
		begin = now.Add(-coldStartLookback)
	}
	horizon := now.Add(advancerHorizon)

	end := begin.Add(advancerWindow)
	var trips []ScheduledTrip
	for {
		batch, err := a.selector.TripsDepartingBetween(begin, end)
		if err != nil {
			return err
		}
		trips = batch
		if len(trips) >= minTripsPerWindow || !end.Before(horizon) {
			break
		}
		end = end.Add(advancerWindow)
	}

	predictions := a.predictTrips(trips, begin)
	return a.store.Save(predictions)
}

func (a *Advancer) predictTrips(trips []ScheduledTrip, begin time.Time) []*Prediction {
	var predictions []*Prediction
	for _, trip := range trips {
		variant := a.sched.Variant(trip.RouteID, trip.VariantID)
		if variant == nil {
			continue
		}
		rep := variant.Representative
		for _, st := range rep.StopTimes {
			for _, event := range eventtype.All() {
				result, err := a.resolver.Predict(trip.RouteID, trip.VariantID, trip.TripID, nil,
					st.StopSequence, event, begin)
				if err != nil || result.Curve == nil {
					continue
				}

				scheduledSeconds := st.ArrivalTime
				if event == eventtype.Departure {
					scheduledSeconds = st.DepartureTime
				}
				scheduledEventTime := trip.ServiceStartDay.Add(time.Duration(scheduledSeconds) * time.Second)

				predictions = append(predictions, newPrediction(
					a.source, trip.RouteID, trip.TripID, st.StopID, st.StopSequence,
					trip.ServiceStartDay, trip.ServiceStartTime, event, scheduledEventTime,
					result.Curve, result.Precision, statistics.Schedule, result.SampleSize))
			}
		}
	}
	return predictions
}
