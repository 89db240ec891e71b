// Package analyse backs the CLI's `analyse` subcommand: observation
// counts are answered directly from the observation store; graph and
// curve rendering delegate to an external gnuplot-based collaborator
// this repository declares an interface for but does not implement, per
// spec.md §1's "gnuplot-based visualization... treated as an external
// collaborator".
package analyse

import "github.com/OpenTransitTools/delaycurves/business/statistics"

// RouteCounter is the slice of observation.Store the `analyse count`
// subcommand needs.
type RouteCounter interface {
	CountForRoute(routeID string) (int, error)
}

// RouteCount pairs a route id with its recorded observation count.
type RouteCount struct {
	RouteID string
	Count   int
}

// Count answers the `analyse count` subcommand: the observation count
// for each of routeIDs.
func Count(counter RouteCounter, routeIDs []string) ([]RouteCount, error) {
	out := make([]RouteCount, 0, len(routeIDs))
	for _, routeID := range routeIDs {
		n, err := counter.CountForRoute(routeID)
		if err != nil {
			return nil, err
		}
		out = append(out, RouteCount{RouteID: routeID, Count: n})
	}
	return out, nil
}

// Kind distinguishes the two rendering subcommands a Renderer backs.
type Kind int

const (
	// Graph renders a time series of observed delays for a route.
	Graph Kind = iota
	// Curves renders a route variant's delay curves as box plots.
	Curves
)

// Renderer is the external gnuplot-based visualization collaborator:
// out of scope for this repository per spec.md §1, declared here only so
// the CLI has a pluggable seam to call into once a concrete
// implementation exists.
type Renderer interface {
	Render(kind Kind, routeID string, tree *statistics.Tree, outputPath string) error
}
