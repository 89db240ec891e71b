package main

import (
	"fmt"
	logger "log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ardanlabs/conf"
	"github.com/jmoiron/sqlx"

	"github.com/OpenTransitTools/delaycurves/app/delaycurves/analysecmd"
	"github.com/OpenTransitTools/delaycurves/app/delaycurves/importcmd"
	"github.com/OpenTransitTools/delaycurves/app/delaycurves/monitorcmd"
	"github.com/OpenTransitTools/delaycurves/app/delaycurves/predictcmd"
	"github.com/OpenTransitTools/delaycurves/foundation/database"
)

var build = "develop"

func main() {
	log := logger.New(os.Stdout, "DELAYCURVES : ", logger.LstdFlags|logger.Lmicroseconds|logger.Lshortfile)
	if err := run(log); err != nil {
		log.Printf("main: error: %v", err)
		os.Exit(1)
	}
}

func run(log *logger.Logger) error {
	var cfg struct {
		conf.Version
		Args conf.Args
		DB   struct {
			User       string `conf:"default:postgres"`
			Password   string `conf:"default:postgres,noprint"`
			Host       string `conf:"default:0.0.0.0"`
			Name       string `conf:"default:postgres"`
			DisableTLS bool   `conf:"default:true"`
		}
		GTFS struct {
			DataSourceID string `conf:"default:default"`
			ScheduleDir  string `conf:"default:gtfs_schedule"`
			RealtimeDir  string `conf:"default:gtfs_realtime"`
			TargetDir    string `conf:"default:gtfs_imported"`
			FailureDir   string `conf:"default:gtfs_failed"`
			DataDir      string `conf:"default:data/curve_data"`
			// ScheduleFile names one schedule file directly, for the
			// predict subcommand, which answers requests against a single
			// fixed schedule rather than the ingestion loop's rolling
			// schedule-directory cache.
			ScheduleFile string
			ManualFile   string
			NatsURL      string
			PingURL      string
		}
		Predict struct {
			RouteID      string
			VariantID    string
			TripID       string
			StopSequence int
			Event        string `conf:"default:arrival"`
			StartStopID  string
			InitialDelay int
			HasDelay     bool `conf:"default:false"`
		}
		HTTP struct {
			Port int `conf:"default:3000"`
		}
		Flags struct {
			Record  bool `conf:"default:false"`
			Predict bool `conf:"default:false"`
			Cleanup bool `conf:"default:false"`
		}
	}
	cfg.Version.SVN = build
	cfg.Version.Desc = "Build and serve transit stop delay curves"

	const prefix = "DELAYCURVES"
	if err := conf.Parse(os.Args[1:], prefix, &cfg); err != nil {
		switch err {
		case conf.ErrHelpWanted:
			usage, err := conf.Usage(prefix, &cfg)
			if err != nil {
				return fmt.Errorf("generating config usage: %w", err)
			}
			fmt.Println(usage)
			return nil
		case conf.ErrVersionWanted:
			version, err := conf.VersionString(prefix, &cfg)
			if err != nil {
				return fmt.Errorf("generating config version: %w", err)
			}
			fmt.Println(version)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	log.Printf("main: Started : Application initializing : version %s", build)
	defer log.Println("main: Completed")

	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Printf("main: Config :\n%v\n", out)

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	switch cfg.Args.Num(0) {
	case "import":
		db, err := database.Open(database.Config{
			User: cfg.DB.User, Password: cfg.DB.Password, Host: cfg.DB.Host,
			Name: cfg.DB.Name, DisableTLS: cfg.DB.DisableTLS,
		})
		if err != nil {
			return fmt.Errorf("connecting to db: %w", err)
		}
		defer closeDB(log, db)
		return importcmd.Run(log, db, importcmd.Conf{
			Mode:        cfg.Args.Num(1),
			ManualFile:  cfg.GTFS.ManualFile,
			ScheduleDir: cfg.GTFS.ScheduleDir,
			RealtimeDir: cfg.GTFS.RealtimeDir,
			TargetDir:   cfg.GTFS.TargetDir,
			FailureDir:  cfg.GTFS.FailureDir,
			DataDir:     cfg.GTFS.DataDir,
			Source:      cfg.GTFS.DataSourceID,
			PingURL:     cfg.GTFS.PingURL,
			NatsURL:     cfg.GTFS.NatsURL,
			Record:      cfg.Flags.Record,
			Predict:     cfg.Flags.Predict,
			Cleanup:     cfg.Flags.Cleanup,
		})

	case "analyse":
		db, err := database.Open(database.Config{
			User: cfg.DB.User, Password: cfg.DB.Password, Host: cfg.DB.Host,
			Name: cfg.DB.Name, DisableTLS: cfg.DB.DisableTLS,
		})
		if err != nil {
			return fmt.Errorf("connecting to db: %w", err)
		}
		defer closeDB(log, db)
		return analysecmd.Run(log, db, analysecmd.Conf{
			Action:   cfg.Args.Num(1),
			RouteIDs: remainingArgs(cfg.Args, 2),
			DataDir:  cfg.GTFS.DataDir,
		})

	case "predict":
		predictConf := predictcmd.Conf{
			Action:       cfg.Args.Num(1),
			ScheduleFile: cfg.GTFS.ScheduleFile,
			DataDir:      cfg.GTFS.DataDir,
			RouteID:      cfg.Predict.RouteID,
			VariantID:    cfg.Predict.VariantID,
			TripID:       cfg.Predict.TripID,
			StopSequence: cfg.Predict.StopSequence,
			Event:        cfg.Predict.Event,
			StartStopID:  cfg.Predict.StartStopID,
		}
		if cfg.Predict.HasDelay {
			predictConf.InitialDelay = &cfg.Predict.InitialDelay
		}
		return predictcmd.Run(log, os.Stdin, os.Stdout, predictConf)

	case "monitor":
		db, err := database.Open(database.Config{
			User: cfg.DB.User, Password: cfg.DB.Password, Host: cfg.DB.Host,
			Name: cfg.DB.Name, DisableTLS: cfg.DB.DisableTLS,
		})
		if err != nil {
			return fmt.Errorf("connecting to db: %w", err)
		}
		defer closeDB(log, db)
		done := make(chan struct{})
		go func() {
			<-shutdown
			close(done)
		}()
		return monitorcmd.Run(log, db, monitorcmd.Conf{HTTPPort: cfg.HTTP.Port, PingURL: cfg.GTFS.PingURL}, done)

	default:
		fmt.Println("import automatic|batch|manual: run the realtime ingestion loop")
		fmt.Println("analyse count|graph|curves: inspect recorded observations and statistics")
		fmt.Println("predict start|single: answer prediction requests")
		fmt.Println("monitor: run the status HTTP endpoint")
		usage, err := conf.Usage(prefix, &cfg)
		if err != nil {
			return fmt.Errorf("generating config usage: %w", err)
		}
		fmt.Println(usage)
	}
	return nil
}

func closeDB(log *logger.Logger, db *sqlx.DB) {
	if err := db.Close(); err != nil {
		log.Printf("main: error closing database: %v", err)
	}
}

// remainingArgs returns every positional argument at and after index,
// converted from conf.Args's named slice type to a plain []string, or
// nil if there are fewer than index arguments.
func remainingArgs(args conf.Args, index int) []string {
	if index >= len(args) {
		return nil
	}
	return []string(args[index:])
}
