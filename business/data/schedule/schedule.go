// Package schedule loads a GTFS static feed into an in-memory Schedule
// used by the ingestion loop and the statistics builder to look up a
// trip's route, stop sequence, and route-variant grouping.
package schedule

// Agency is a GTFS agency.txt record.
type Agency struct {
	ID   string
	Name string
}

// Route is a GTFS routes.txt record.
type Route struct {
	ID        string
	ShortName string
	AgencyID  string
	RouteType int
}

// Stop is a GTFS stops.txt record.
type Stop struct {
	ID   string
	Name string
}

// StopTime is one scheduled arrival/departure within a Trip.
type StopTime struct {
	StopSequence  int
	StopID        string
	ArrivalTime   int // seconds since midnight of the service day
	DepartureTime int
}

// Trip is a GTFS trips.txt record plus its ordered stop_times.txt rows.
// RouteVariant is expected (per this repository's schedule feed) to be a
// numeric string supplied directly by the source trips.txt; when the feed
// omits it, it is derived at load time as a stable key identifying trips
// that share the same route and stop pattern, so variant grouping still
// works against plain standard GTFS.
type Trip struct {
	ID           string
	RouteID      string
	RouteVariant string
	ServiceID    string
	Headsign     string
	ShapeID      string
	StopTimes    []StopTime
}

// StopCount returns the number of scheduled stops on the trip, used by
// business/routesection to classify a stop's position within it.
func (t *Trip) StopCount() int {
	return len(t.StopTimes)
}

// RouteVariant groups every trip in a Schedule that shares a (route,
// route-variant) key. Representative is the first trip observed for the
// variant during loading and stands in for the group's stop sequence.
type RouteVariant struct {
	RouteID        string
	VariantID      string
	Representative *Trip
	StopIDs        []string
}

// Schedule is one loaded GTFS static feed.
type Schedule struct {
	Agencies []Agency
	Routes   map[string]*Route
	Stops    map[string]*Stop
	Trips    map[string]*Trip

	// variants is keyed by the internal composite of (route id, variant
	// id): route_variant alone is only expected to be unique within its
	// own route, per §6.
	variants map[string]*RouteVariant
}

// variantCompositeKey joins a route id and route-variant id into the key
// used internally to keep variants distinct across routes.
func variantCompositeKey(routeID, variantID string) string {
	return routeID + "\x00" + variantID
}

// Variant looks up the RouteVariant for (routeID, variantID), as observed
// in the schedule's trips.txt.
func (s *Schedule) Variant(routeID, variantID string) *RouteVariant {
	return s.variants[variantCompositeKey(routeID, variantID)]
}

// TripsForVariant returns every trip sharing the given (route, variant)
// key.
func (s *Schedule) TripsForVariant(routeID, variantID string) []*Trip {
	var out []*Trip
	for _, t := range s.Trips {
		if t.RouteID == routeID && t.RouteVariant == variantID {
			out = append(out, t)
		}
	}
	return out
}

// Variants returns every RouteVariant loaded into the schedule, in no
// particular order. Used by callers that need to walk every route
// variant's representative trip, such as the scheduled-prediction
// advancer's trip selector.
func (s *Schedule) Variants() []*RouteVariant {
	out := make([]*RouteVariant, 0, len(s.variants))
	for _, v := range s.variants {
		out = append(out, v)
	}
	return out
}

// RouteType resolves routeID to its GTFS route_type, or -1 if the route
// is unknown. Backs the prediction resolver's and default-curve
// builder's routeTypeOf collaborator.
func (s *Schedule) RouteType(routeID string) int {
	r, ok := s.Routes[routeID]
	if !ok {
		return -1
	}
	return r.RouteType
}

// Agency resolves routeID to its agency id, or "" if the route or its
// agency is unknown. Backs the statistics repository's per-agency
// file-path layout.
func (s *Schedule) Agency(routeID string) string {
	r, ok := s.Routes[routeID]
	if !ok {
		return ""
	}
	return r.AgencyID
}
