package prediction

import (
	"time"

	"github.com/OpenTransitTools/delaycurves/business/data/schedule"
)

// ScheduleTripSelector is a minimal TripSelector grounded directly on a
// loaded schedule.Schedule: since GTFS calendar expansion (which service
// days a trip actually runs) is an external collaborator out of this
// repository's scope (§6 only documents routes/trips/stop_times/stops),
// every route variant's representative trip is treated as running every
// calendar day. This is a deliberate simplification recorded in
// DESIGN.md, not an attempt at real calendar.txt/calendar_dates.txt
// expansion.
type ScheduleTripSelector struct {
	sched *schedule.Schedule
}

// NewScheduleTripSelector builds a ScheduleTripSelector over every route
// variant in sched.
func NewScheduleTripSelector(sched *schedule.Schedule) *ScheduleTripSelector {
	return &ScheduleTripSelector{sched: sched}
}

// TripsDepartingBetween returns one ScheduledTrip per (route variant,
// calendar day) whose representative trip's first scheduled departure
// falls within [begin, end).
func (s *ScheduleTripSelector) TripsDepartingBetween(begin, end time.Time) ([]ScheduledTrip, error) {
	var out []ScheduledTrip
	for day := truncateToDay(begin); !day.After(truncateToDay(end)); day = day.AddDate(0, 0, 1) {
		for _, v := range s.sched.Variants() {
			rep := v.Representative
			if len(rep.StopTimes) == 0 {
				continue
			}
			first := rep.StopTimes[0]
			departure := day.Add(time.Duration(first.DepartureTime) * time.Second)
			if departure.Before(begin) || !departure.Before(end) {
				continue
			}
			out = append(out, ScheduledTrip{
				RouteID:          v.RouteID,
				VariantID:        v.VariantID,
				TripID:           rep.ID,
				ServiceStartDay:  day,
				ServiceStartTime: first.DepartureTime,
			})
		}
	}
	return out, nil
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
