package statistics

import (
	logger "log"

	"github.com/OpenTransitTools/delaycurves/business/data/delayerr"
	"github.com/OpenTransitTools/delaycurves/business/data/observation"
	"github.com/OpenTransitTools/delaycurves/business/data/schedule"
)

// RouteStore is the slice of observation.Store the builder orchestrator
// needs: enumerate routes and variants in scope, then load one route's
// rows at a time.
type RouteStore interface {
	DistinctRoutes() ([]string, error)
	DistinctRouteVariants(routeID string) ([]string, error)
	LoadForRoute(routeID string) ([]observation.Observation, error)
}

// Build orchestrates curve construction across every route variant, stop
// and event type recorded in store, per §4.6: load each route's
// observations once, group them by route-variant-id, build a
// RouteVariantData per variant (skipping variants with no matching
// schedule trip, per open question (c)), then aggregate the General
// fallback tree from the resulting specific curves.
//
// log receives one line per route-variant skipped for lack of a matching
// schedule trip; this does not fail the build. Cells with insufficient
// data are left out of the variant's curves without a log line.
func Build(store RouteStore, sched *schedule.Schedule, routeTypeOf func(routeID string) int,
	projection bool, log *logger.Logger) (*Tree, error) {

	tree := NewTree()

	routes, err := store.DistinctRoutes()
	if err != nil {
		return nil, err
	}

	for _, routeID := range routes {
		observations, err := store.LoadForRoute(routeID)
		if err != nil {
			return nil, err
		}

		variants, err := store.DistinctRouteVariants(routeID)
		if err != nil {
			return nil, err
		}

		for _, variantID := range variants {
			rows := filterByVariant(observations, variantID)
			rvd, err := BuildRouteVariant(routeID, variantID, rows, sched, projection)
			if err != nil {
				if _, skip := err.(*delayerr.SchemaMismatch); skip {
					if log != nil {
						log.Printf("statistics: skipping route %s variant %s: %v", routeID, variantID, err)
					}
					continue
				}
				return nil, err
			}
			byVariant, ok := tree.Specific[routeID]
			if !ok {
				byVariant = make(map[string]*RouteVariantData)
				tree.Specific[routeID] = byVariant
			}
			byVariant[variantID] = rvd
		}
	}

	BuildDefaultCurves(tree, routeTypeOf)
	return tree, nil
}

// filterByVariant narrows observations to those recorded for variantID,
// preserving the (service-day, trip-id) ordering LoadForRoute already
// applied.
func filterByVariant(observations []observation.Observation, variantID string) []observation.Observation {
	var out []observation.Observation
	for _, o := range observations {
		if o.RouteVariantID == variantID {
			out = append(out, o)
		}
	}
	return out
}
