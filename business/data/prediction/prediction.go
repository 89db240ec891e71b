// Package prediction resolves delay predictions from the statistics tree
// and persists them, mirroring the precision-hierarchy descent and the
// scheduled pre-computation window described alongside it.
package prediction

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/OpenTransitTools/delaycurves/business/curve"
	"github.com/OpenTransitTools/delaycurves/business/eventtype"
	"github.com/OpenTransitTools/delaycurves/business/statistics"
)

// MaxTripDuration bounds how long a persisted prediction is kept after its
// trip start: predictions are evicted once trip-start precedes now minus
// this duration.
const MaxTripDuration = 12 * time.Hour

// Prediction is one persisted arrival/departure prediction for a single
// stop on a single scheduled vehicle run.
type Prediction struct {
	ID                int64     `db:"id"`
	Source            string    `db:"source"`
	Event             int32     `db:"event_type"`
	StopID            string    `db:"stop_id"`
	StopSequence      int       `db:"stop_sequence"`
	TripID            string    `db:"trip_id"`
	ServiceStartDay   time.Time `db:"service_start_day"`
	ServiceStartTime  int       `db:"service_start_time"`
	RouteID           string    `db:"route_id"`
	PredictionMin     time.Time `db:"prediction_min"`
	PredictionMax     time.Time `db:"prediction_max"`
	Precision         int32     `db:"precision_type"`
	Origin            int32     `db:"origin_type"`
	SampleSize        uint32    `db:"sample_size"`
	EncodedCurve      []byte    `db:"encoded_curve"`
}

// EventType returns the prediction's event type.
func (p *Prediction) EventType() eventtype.EventType {
	return eventtype.EventType(p.Event)
}

// PrecisionType returns the prediction's precision level.
func (p *Prediction) PrecisionType() statistics.PrecisionType {
	return statistics.PrecisionType(p.Precision)
}

// OriginType returns whether this prediction came from a live realtime
// basis or a precomputed schedule-only pass.
func (p *Prediction) OriginType() statistics.OriginType {
	return statistics.OriginType(p.Origin)
}

// Curve decodes the prediction's compact-encoded curve.
func (p *Prediction) Curve() (*curve.Curve, error) {
	return curve.DecodeCompact(p.EncodedCurve)
}

// newPrediction builds a Prediction from a resolved curve, deriving its
// absolute-time bounds from scheduledEventTime shifted by the curve's
// min_x/max_x (seconds of delay).
func newPrediction(source, routeID, tripID, stopID string, stopSequence int,
	serviceStartDay time.Time, serviceStartTime int, event eventtype.EventType,
	scheduledEventTime time.Time, c *curve.Curve, precision statistics.PrecisionType,
	origin statistics.OriginType, sampleSize uint32) *Prediction {

	return &Prediction{
		Source:           source,
		Event:            int32(event),
		StopID:           stopID,
		StopSequence:     stopSequence,
		TripID:           tripID,
		ServiceStartDay:  serviceStartDay,
		ServiceStartTime: serviceStartTime,
		RouteID:          routeID,
		PredictionMin:    scheduledEventTime.Add(time.Duration(c.MinX()) * time.Second),
		PredictionMax:    scheduledEventTime.Add(time.Duration(c.MaxX()) * time.Second),
		Precision:        int32(precision),
		Origin:           int32(origin),
		SampleSize:       sampleSize,
		EncodedCurve:     c.EncodeCompact(),
	}
}

// Store is the typed accessor over persisted predictions.
type Store struct {
	db *sqlx.DB
}

// NewStore builds a Store backed by db.
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Save inserts predictions in a single batched statement, the same
// batched-NamedExec idiom the observation store uses for writes.
func (s *Store) Save(predictions []*Prediction) error {
	if len(predictions) == 0 {
		return nil
	}
	statementString := s.db.Rebind(
		"insert into prediction (source, event_type, stop_id, stop_sequence, trip_id, " +
			"service_start_day, service_start_time, route_id, prediction_min, prediction_max, " +
			"precision_type, origin_type, sample_size, encoded_curve) values " +
			"(:source, :event_type, :stop_id, :stop_sequence, :trip_id, " +
			":service_start_day, :service_start_time, :route_id, :prediction_min, :prediction_max, " +
			":precision_type, :origin_type, :sample_size, :encoded_curve)")
	if _, err := s.db.NamedExec(statementString, predictions); err != nil {
		return fmt.Errorf("prediction: saving %d predictions: %w", len(predictions), err)
	}
	return nil
}

// DeleteExpired removes every prediction whose trip-start precedes
// now-MaxTripDuration, per the persisted Prediction's eviction lifecycle.
// Trip-start is service_start_day offset by service_start_time seconds,
// not service_start_day alone, since GTFS start times routinely exceed
// 24h for midnight-crossing trips.
func (s *Store) DeleteExpired(now time.Time) (int64, error) {
	threshold := now.Add(-MaxTripDuration)
	query := s.db.Rebind(
		"delete from prediction where service_start_day + (service_start_time * interval '1 second') < ?")
	result, err := s.db.Exec(query, threshold)
	if err != nil {
		return 0, fmt.Errorf("prediction: deleting expired predictions: %w", err)
	}
	return result.RowsAffected()
}

// ScheduleWatermark returns the greatest (service-start-day,
// service-start-time) among persisted predictions with OriginType=Schedule,
// or zero time with ok=false if none exist, signaling a cold start.
func (s *Store) ScheduleWatermark() (at time.Time, ok bool, err error) {
	var row struct {
		ServiceStartDay  *time.Time `db:"max_day"`
		ServiceStartTime *int       `db:"service_start_time"`
	}
	query := s.db.Rebind(
		"select max(service_start_day) as max_day, " +
			"(select service_start_time from prediction p2 " +
			" where p2.origin_type = ? and p2.service_start_day = (select max(service_start_day) from prediction where origin_type = ?) " +
			" order by service_start_time desc limit 1) as service_start_time " +
			"from prediction where origin_type = ?")
	scheduleOrigin := int32(statistics.Schedule)
	if err := s.db.Get(&row, query, scheduleOrigin, scheduleOrigin, scheduleOrigin); err != nil {
		return time.Time{}, false, fmt.Errorf("prediction: reading schedule watermark: %w", err)
	}
	if row.ServiceStartDay == nil || row.ServiceStartTime == nil {
		return time.Time{}, false, nil
	}
	return row.ServiceStartDay.Add(time.Duration(*row.ServiceStartTime) * time.Second), true, nil
}
