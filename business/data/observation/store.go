package observation

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Store is the typed accessor the statistics builder and ingestion loop
// use to write and read observations; batched writes go through the
// embedded BatchedStatements.
type Store struct {
	*BatchedStatements
	db *sqlx.DB
}

// NewStore builds a Store backed by db, buffering writes up to capacity
// observations (see NewBatchedStatements).
func NewStore(db *sqlx.DB, capacity int) *Store {
	return &Store{BatchedStatements: NewBatchedStatements(db, capacity), db: db}
}

// LoadForRoute returns every observation recorded for routeID, ordered by
// service day then trip id, as the statistics builder requires (§4.6:
// "Load all observations for the route from the store in (service-day,
// trip-id) order").
func (s *Store) LoadForRoute(routeID string) ([]Observation, error) {
	var obs []Observation
	query := s.db.Rebind("select * from observation where route_id = ? order by service_day, trip_id, stop_sequence")
	if err := s.db.Select(&obs, query, routeID); err != nil {
		return nil, fmt.Errorf("observation: loading route %s: %w", routeID, err)
	}
	return obs, nil
}

// CountForRoute returns the number of observation rows recorded for
// routeID, backing the CLI's `analyse count` subcommand.
func (s *Store) CountForRoute(routeID string) (int, error) {
	var count int
	query := s.db.Rebind("select count(*) from observation where route_id = ?")
	if err := s.db.Get(&count, query, routeID); err != nil {
		return 0, fmt.Errorf("observation: counting route %s: %w", routeID, err)
	}
	return count, nil
}

// DistinctRoutes returns every route id with at least one recorded
// observation, the scope the statistics builder orchestrator iterates
// over per §4.6 ("For each route-id in scope...").
func (s *Store) DistinctRoutes() ([]string, error) {
	var routes []string
	if err := s.db.Select(&routes, "select distinct route_id from observation order by route_id"); err != nil {
		return nil, fmt.Errorf("observation: listing distinct routes: %w", err)
	}
	return routes, nil
}

// DistinctRouteVariants returns every route_variant_id recorded for
// routeID, the per-route grouping step §4.6 describes before building
// each variant's RouteVariantData.
func (s *Store) DistinctRouteVariants(routeID string) ([]string, error) {
	var variants []string
	query := s.db.Rebind("select distinct route_variant_id from observation where route_id = ? order by route_variant_id")
	if err := s.db.Select(&variants, query, routeID); err != nil {
		return nil, fmt.Errorf("observation: listing variants for route %s: %w", routeID, err)
	}
	return variants, nil
}
