// Package observation persists per-stop delay observations decoded from
// GTFS-Realtime feeds and serves them back, ordered, to the statistics
// builder.
package observation

import "time"

// Observation is one stop-time update: a vehicle's observed arrival and/or
// departure delay at a single stop along a trip.
//
// Identity key for upsert is (Source, RouteID, RouteVariantID, TripID,
// ServiceDay, StopSequence); for a given identity key only the row with
// the greatest TimeOfRecording is retained.
type Observation struct {
	Source          string    `db:"source"`
	RouteID         string    `db:"route_id"`
	RouteVariantID  string    `db:"route_variant_id"`
	TripID          string    `db:"trip_id"`
	ServiceDay      time.Time `db:"service_day"`
	StopSequence    int       `db:"stop_sequence"`
	StopID          string    `db:"stop_id"`
	TimeOfRecording time.Time `db:"time_of_recording"`
	ArrivalDelay    *int      `db:"arrival_delay"`
	DepartureDelay  *int      `db:"departure_delay"`
	ScheduleFileTag string    `db:"schedule_file_tag"`
}

// VehicleIdentifier names one vehicle's trip instance on a service day,
// used to join a start-stop delay observation with a later same-vehicle
// stop observation. ServiceStartTime may exceed 24h per GTFS's
// midnight-crossing convention.
type VehicleIdentifier struct {
	TripID          string
	ServiceStartDay time.Time
	ServiceStartTime int
}
