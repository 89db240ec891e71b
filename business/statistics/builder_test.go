package statistics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/OpenTransitTools/delaycurves/business/data/observation"
	"github.com/OpenTransitTools/delaycurves/business/data/schedule"
)

func writeFixtureFeed(t *testing.T, dir string) {
	t.Helper()
	files := map[string]string{
		"routes.txt": "route_id,route_short_name,agency_id,route_type\nR1,1,A1,3\n",
		"stops.txt":  "stop_id,stop_name\nS1,First\nS2,Second\nS3,Third\n",
		"trips.txt":  "trip_id,route_id,route_variant,service_id,trip_headsign\nT1,R1,1,WEEKDAY,Downtown\n",
		"stop_times.txt": "trip_id,stop_sequence,stop_id,arrival_time,departure_time\n" +
			"T1,0,S1,08:00:00,08:00:00\n" +
			"T1,1,S2,08:05:00,08:05:30\n" +
			"T1,2,S3,08:10:00,08:10:00\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("writing fixture %s: %v", name, err)
		}
	}
}

func intPtr(v int) *int { return &v }

func weekdayAt(day, hour int) time.Time {
	return time.Date(2026, time.January, day, hour, 0, 0, 0, time.UTC)
}

// observationsForVariant builds n simulated vehicle runs across three
// stops (indices 0, 1, 2), one run per day so each gets a distinct
// (ServiceDay, TripID) vehicle key. Delays are spaced 12 s apart so they
// stay distinct after quantize12. When withGap is true the middle
// stop's observation is omitted, for exercising the projection pass.
func observationsForVariant(n int, withGap bool) []observation.Observation {
	var out []observation.Observation
	for i := 0; i < n; i++ {
		day := weekdayAt(13, 10).AddDate(0, 0, i)
		tripID := "T1"
		out = append(out, observation.Observation{
			RouteID: "R1", RouteVariantID: "1", TripID: tripID,
			ServiceDay: day, StopSequence: 0, StopID: "S1",
			TimeOfRecording: day, ArrivalDelay: intPtr(30 + 12*(i%5)),
		})
		if !withGap {
			out = append(out, observation.Observation{
				RouteID: "R1", RouteVariantID: "1", TripID: tripID,
				ServiceDay: day, StopSequence: 1, StopID: "S2",
				TimeOfRecording: day, ArrivalDelay: intPtr(35 + 12*(i%5)),
			})
		}
		out = append(out, observation.Observation{
			RouteID: "R1", RouteVariantID: "1", TripID: tripID,
			ServiceDay: day, StopSequence: 2, StopID: "S3",
			TimeOfRecording: day, ArrivalDelay: intPtr(40 + 12*(i%5)),
		})
	}
	return out
}

func TestBuildRouteVariantRejectsUnmatchedVariant(t *testing.T) {
	dir := t.TempDir()
	writeFixtureFeed(t, dir)
	sched, err := schedule.NewFileProvider().Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	_, err = BuildRouteVariant("R1", "does-not-exist", nil, sched, false)
	if err == nil {
		t.Fatal("expected an error for an unmatched route variant")
	}
}

func TestBuildRouteVariantProducesMarginalsAndConditionals(t *testing.T) {
	dir := t.TempDir()
	writeFixtureFeed(t, dir)
	sched, err := schedule.NewFileProvider().Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	obs := observationsForVariant(25, false)
	rvd, err := BuildRouteVariant("R1", "1", obs, sched, false)
	if err != nil {
		t.Fatalf("BuildRouteVariant: %v", err)
	}

	arrivals := rvd.GeneralDelay.Get(0)
	if len(arrivals) == 0 {
		t.Fatal("expected at least one marginal arrival curve")
	}
	if _, ok := arrivals[0]; !ok {
		t.Error("expected a marginal curve at stop index 0")
	}

	curveSets := rvd.CurveSets.Get(0)
	found := false
	for key := range curveSets {
		if key.StartIndex == 0 && key.EndIndex == 2 {
			found = true
		}
	}
	if !found {
		t.Error("expected a conditional curve set between stop 0 and stop 2")
	}
}

func TestQuantize12TruncatesTowardZero(t *testing.T) {
	cases := map[int]int{
		0: 0, 5: 0, 12: 12, 13: 12, -1: 0, -12: -12, -13: -12,
	}
	for in, want := range cases {
		if got := quantize12(in); got != want {
			t.Errorf("quantize12(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestAllSlotsIncludesCanonicalAndDefault(t *testing.T) {
	slots := allSlots()
	if len(slots) != 12 {
		t.Fatalf("len(allSlots()) = %d, want 12", len(slots))
	}
	found := false
	for _, s := range slots {
		if s.ID == 0 {
			found = true
		}
	}
	if !found {
		t.Error("allSlots() missing the DEFAULT slot")
	}
}

func TestApplyProjectionCarriesForwardAndIsIdempotent(t *testing.T) {
	rows := map[int]stopObservation{
		0: {stopIndex: 0, arrivalDelay: intPtr(10)},
		2: {stopIndex: 2, arrivalDelay: intPtr(20)},
	}
	indices := []int{0, 1, 2}

	once := applyProjection(rows, indices)
	if once[1].arrivalDelay == nil || *once[1].arrivalDelay != 10 {
		t.Fatalf("expected index 1 to carry forward delay 10, got %+v", once[1])
	}
	if *once[2].arrivalDelay != 20 {
		t.Errorf("index 2 delay changed unexpectedly: %+v", once[2])
	}

	twice := applyProjection(once, indices)
	for i := range indices {
		a, b := once[i], twice[i]
		if (a.arrivalDelay == nil) != (b.arrivalDelay == nil) {
			t.Fatalf("idempotence violated at index %d: %+v vs %+v", i, a, b)
		}
		if a.arrivalDelay != nil && *a.arrivalDelay != *b.arrivalDelay {
			t.Fatalf("idempotence violated at index %d: %d vs %d", i, *a.arrivalDelay, *b.arrivalDelay)
		}
	}
}

func TestApplyProjectionLeavesLeadingGapUnfilled(t *testing.T) {
	rows := map[int]stopObservation{
		1: {stopIndex: 1, arrivalDelay: intPtr(10)},
	}
	out := applyProjection(rows, []int{0, 1, 2})
	if _, ok := out[0]; ok {
		t.Error("expected no projection before the first observed stop")
	}
	if _, ok := out[2]; !ok {
		t.Error("expected stop 2 to carry forward from stop 1")
	}
}
