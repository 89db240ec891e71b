// Package analysecmd implements the CLI's `analyse count|graph|curves`
// subcommand.
package analysecmd

import (
	"fmt"
	logger "log"

	"github.com/jmoiron/sqlx"

	"github.com/OpenTransitTools/delaycurves/business/analyse"
	"github.com/OpenTransitTools/delaycurves/business/data/observation"
	"github.com/OpenTransitTools/delaycurves/business/statistics"
)

// Conf holds the flags the analyse subcommand needs.
type Conf struct {
	Action   string // "count", "graph", or "curves"
	RouteIDs []string
	DataDir  string
	Output   string
}

// Run dispatches to the requested analyse action.
func Run(log *logger.Logger, db *sqlx.DB, cfg Conf) error {
	switch cfg.Action {
	case "count":
		return runCount(db, cfg)
	case "graph":
		return runRender(analyse.Graph, cfg)
	case "curves":
		return runRender(analyse.Curves, cfg)
	default:
		return fmt.Errorf("analysecmd: unknown action %q (expected count, graph, or curves)", cfg.Action)
	}
}

func runCount(db *sqlx.DB, cfg Conf) error {
	if len(cfg.RouteIDs) == 0 {
		return fmt.Errorf("analysecmd: count requires at least one route id")
	}
	store := observation.NewStore(db, 0)
	counts, err := analyse.Count(store, cfg.RouteIDs)
	if err != nil {
		return fmt.Errorf("analysecmd: %w", err)
	}
	for _, c := range counts {
		fmt.Printf("%s\t%d\n", c.RouteID, c.Count)
	}
	return nil
}

// runRender loads the persisted statistics tree and hands it to the
// declared-but-unimplemented Renderer collaborator; until a concrete
// gnuplot backend is wired in, this always fails with a clear message
// rather than pretending to succeed.
func runRender(kind analyse.Kind, cfg Conf) error {
	if len(cfg.RouteIDs) != 1 {
		return fmt.Errorf("analysecmd: graph/curves requires exactly one route id")
	}
	tree, err := statistics.NewRepository(cfg.DataDir, statistics.NewGobCodec()).Load()
	if err != nil {
		return fmt.Errorf("analysecmd: loading statistics tree: %w", err)
	}

	var renderer analyse.Renderer
	if renderer == nil {
		return fmt.Errorf("analysecmd: no Renderer backend is configured; graph/curves rendering is an external collaborator this repository does not implement")
	}
	return renderer.Render(kind, cfg.RouteIDs[0], tree, cfg.Output)
}
