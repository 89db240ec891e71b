// Package importcmd implements the CLI's `import automatic|batch|manual`
// subcommand: it wires the ingestion loop's dependencies together and
// runs it in the requested mode.
package importcmd

import (
	"fmt"
	logger "log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/nats-io/nats.go"

	"github.com/OpenTransitTools/delaycurves/business/data/prediction"
	"github.com/OpenTransitTools/delaycurves/business/data/schedule"
	"github.com/OpenTransitTools/delaycurves/business/ingest"
	"github.com/OpenTransitTools/delaycurves/business/statistics"

	"github.com/OpenTransitTools/delaycurves/business/data/observation"
)

// Conf holds every flag and environment value the import subcommand
// needs, gathered by main from the shared conf.Parse struct.
type Conf struct {
	Mode        string // "automatic", "batch", or "manual"
	ManualFile  string
	ScheduleDir string
	RealtimeDir string
	TargetDir   string
	FailureDir  string
	DataDir     string // curve_data root, only needed when Predict is set
	Source      string
	PingURL     string
	NatsURL     string

	Record  bool
	Predict bool
	Cleanup bool
}

// Run builds the ingestion loop described by Conf and runs it in the
// requested mode, returning once batch/manual mode completes (automatic
// mode runs until the process is terminated).
func Run(log *logger.Logger, db *sqlx.DB, cfg Conf) error {
	provider := schedule.NewFileProvider()

	var obsStore *observation.Store
	if cfg.Record || cfg.Predict {
		obsStore = observation.NewStore(db, 0)
	}

	var predStore *prediction.Store
	var basisCache *prediction.BasisCache
	var advancer *prediction.Advancer
	if cfg.Predict {
		predStore = prediction.NewStore(db)
		basisCache = prediction.NewBasisCache(prediction.MaxTripDuration)

		adv, err := buildAdvancer(cfg, predStore)
		if err != nil {
			return fmt.Errorf("importcmd: %w", err)
		}
		advancer = adv
	}

	var publisher ingest.Publisher
	if cfg.NatsURL != "" {
		conn, err := nats.Connect(cfg.NatsURL)
		if err != nil {
			return fmt.Errorf("importcmd: connecting to nats: %w", err)
		}
		defer conn.Close()
		publisher = ingest.NewNatsPublisher(conn)
	}

	loop := ingest.NewLoop(ingest.Conf{
		ScheduleDir: cfg.ScheduleDir,
		RealtimeDir: cfg.RealtimeDir,
		TargetDir:   cfg.TargetDir,
		FailureDir:  cfg.FailureDir,
		Source:      cfg.Source,
		Record:      cfg.Record,
		Predict:     cfg.Predict,
		Cleanup:     cfg.Cleanup,
		Automatic:   cfg.Mode == "automatic",
		PingURL:     cfg.PingURL,
	}, log, provider, obsStore, predStore, basisCache, advancer, publisher)

	switch cfg.Mode {
	case "manual":
		return runManual(log, db, cfg)
	case "batch":
		_, err := loop.RunOnce(time.Now())
		return err
	case "automatic":
		loop.RunForever(make(chan struct{}))
		return nil
	default:
		return fmt.Errorf("importcmd: unknown mode %q (expected automatic, batch, or manual)", cfg.Mode)
	}
}

// buildAdvancer loads the newest schedule file and the persisted
// statistics tree eagerly so the scheduled-prediction advancer has a
// resolver and trip selector ready before the loop's first iteration.
func buildAdvancer(cfg Conf, predStore *prediction.Store) (*prediction.Advancer, error) {
	schedPath, err := newestScheduleFile(cfg.ScheduleDir)
	if err != nil {
		return nil, err
	}
	sched, err := schedule.NewFileProvider().Load(schedPath)
	if err != nil {
		return nil, fmt.Errorf("parsing schedule %s: %w", schedPath, err)
	}

	tree, err := statistics.NewRepository(cfg.DataDir, statistics.NewGobCodec()).Load()
	if err != nil {
		return nil, fmt.Errorf("loading statistics tree from %s: %w", cfg.DataDir, err)
	}

	resolver := prediction.NewResolver(tree, sched, sched.RouteType)
	selector := prediction.NewScheduleTripSelector(sched)
	return prediction.NewAdvancer(predStore, resolver, sched, selector, cfg.Source), nil
}

// newestScheduleFile returns the lexicographically greatest (and, since
// schedule filenames are date-encoded, newest) entry in dir.
func newestScheduleFile(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("reading schedule dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return "", fmt.Errorf("no schedule files found in %s", dir)
	}
	sort.Strings(names)
	return filepath.Join(dir, names[len(names)-1]), nil
}

// runManual decodes a single named realtime file against the newest
// schedule file in ScheduleDir, recording its observations when
// cfg.Record is set, without moving any file — for spot-checking one
// file against a live schedule during development.
func runManual(log *logger.Logger, db *sqlx.DB, cfg Conf) error {
	if cfg.ManualFile == "" {
		return fmt.Errorf("importcmd: manual mode requires a file argument")
	}

	schedPath, err := newestScheduleFile(cfg.ScheduleDir)
	if err != nil {
		return fmt.Errorf("importcmd: %w", err)
	}
	sched, err := schedule.NewFileProvider().Load(schedPath)
	if err != nil {
		return fmt.Errorf("importcmd: parsing schedule %s: %w", schedPath, err)
	}

	data, err := os.ReadFile(cfg.ManualFile)
	if err != nil {
		return fmt.Errorf("importcmd: reading %s: %w", cfg.ManualFile, err)
	}

	rows, err := ingest.DecodeRealtime(data, cfg.Source, cfg.ManualFile, sched)
	if err != nil {
		return fmt.Errorf("importcmd: decoding %s: %w", cfg.ManualFile, err)
	}
	log.Printf("importcmd: manual file %s decoded %d observations", cfg.ManualFile, len(rows))

	if cfg.Record {
		obsStore := observation.NewStore(db, 0)
		for _, row := range rows {
			if err := obsStore.AddObservation(row); err != nil {
				return fmt.Errorf("importcmd: recording observation from %s: %w", cfg.ManualFile, err)
			}
		}
		log.Printf("importcmd: recorded %d observations from %s", len(rows), cfg.ManualFile)
	}
	return nil
}
