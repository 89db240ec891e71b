// Package ingest decodes GTFS-Realtime feed snapshots against a paired
// static schedule and files the resulting per-stop delay observations
// into the observation store, running as a continuous file-pairing loop.
package ingest

import (
	"fmt"
	"time"

	gtfsrt "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/proto"

	"github.com/OpenTransitTools/delaycurves/business/data/delayerr"
	"github.com/OpenTransitTools/delaycurves/business/data/observation"
	"github.com/OpenTransitTools/delaycurves/business/data/schedule"
)

// DecodeRealtime parses one GTFS-Realtime FeedMessage and resolves it into
// per-stop delay Observations against sched, per §6/§7: a missing
// header.timestamp aborts the whole file; a trip_update missing route_id,
// trip_id, start_date, or start_time is skipped on its own; a
// stop_time_update missing stop_id or stop_sequence is skipped on its
// own. sched supplies each trip's route-variant tag.
func DecodeRealtime(data []byte, source, scheduleFileTag string, sched *schedule.Schedule) ([]observation.Observation, error) {
	var feed gtfsrt.FeedMessage
	if err := proto.Unmarshal(data, &feed); err != nil {
		return nil, delayerr.NewParseError(scheduleFileTag, err)
	}

	header := feed.GetHeader()
	if header == nil || header.Timestamp == nil {
		return nil, delayerr.NewParseError(scheduleFileTag, fmt.Errorf("missing header.timestamp"))
	}
	recordedAt := time.Unix(int64(header.GetTimestamp()), 0).UTC()

	var observations []observation.Observation
	for _, entity := range feed.GetEntity() {
		tu := entity.GetTripUpdate()
		if tu == nil {
			continue
		}
		rows, ok := decodeTripUpdate(tu, recordedAt, source, scheduleFileTag, sched)
		if !ok {
			continue
		}
		observations = append(observations, rows...)
	}
	return observations, nil
}

// decodeTripUpdate resolves one trip_update entity into its Observations.
// ok is false when a mandatory trip-level field is missing and the whole
// entity is skipped.
func decodeTripUpdate(tu *gtfsrt.TripUpdate, recordedAt time.Time, source, scheduleFileTag string,
	sched *schedule.Schedule) ([]observation.Observation, bool) {

	trip := tu.GetTrip()
	if trip == nil || trip.RouteId == nil || trip.TripId == nil || trip.StartDate == nil || trip.StartTime == nil {
		return nil, false
	}

	routeID := trip.GetRouteId()
	tripID := trip.GetTripId()

	serviceDay, err := parseServiceDay(trip.GetStartDate())
	if err != nil {
		return nil, false
	}

	variantID := ""
	if scheduledTrip, ok := sched.Trips[tripID]; ok {
		variantID = scheduledTrip.RouteVariant
	}

	var rows []observation.Observation
	for _, stu := range tu.GetStopTimeUpdate() {
		if stu.StopId == nil || stu.StopSequence == nil {
			continue
		}
		rows = append(rows, observation.Observation{
			Source:          source,
			RouteID:         routeID,
			RouteVariantID:  variantID,
			TripID:          tripID,
			ServiceDay:      serviceDay,
			StopSequence:    int(stu.GetStopSequence()),
			StopID:          stu.GetStopId(),
			TimeOfRecording: recordedAt,
			ArrivalDelay:    delayOf(stu.GetArrival()),
			DepartureDelay:  delayOf(stu.GetDeparture()),
			ScheduleFileTag: scheduleFileTag,
		})
	}
	return rows, true
}

// delayOf extracts a StopTimeEvent's delay in seconds, or nil if the event
// or its delay field is absent.
func delayOf(event *gtfsrt.TripUpdate_StopTimeEvent) *int {
	if event == nil || event.Delay == nil {
		return nil
	}
	delay := int(event.GetDelay())
	return &delay
}

// parseServiceDay parses a GTFS-Realtime start_date (YYYYMMDD) into a UTC
// midnight time.Time.
func parseServiceDay(value string) (time.Time, error) {
	t, err := time.Parse("20060102", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("ingest: invalid start_date %q: %w", value, err)
	}
	return t, nil
}
