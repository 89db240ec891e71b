// Package monitorcmd implements the CLI's `monitor` subcommand: a
// status/health HTTP endpoint plus, if configured, a best-effort
// liveness ping.
package monitorcmd

import (
	"context"
	"encoding/json"
	logger "log"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"

	"github.com/OpenTransitTools/delaycurves/business/data/observation"
	"github.com/OpenTransitTools/delaycurves/business/data/prediction"
)

// pingInterval mirrors the ingestion loop's own best-effort ping cadence.
const pingInterval = time.Minute

// Conf holds the flags the monitor subcommand needs.
type Conf struct {
	HTTPPort int
	PingURL  string
}

// healthHandler answers "/healthz" with a fixed OK status, for load
// balancer and orchestrator liveness probes.
type healthHandler struct{}

func (healthHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Application-Status", "OK")
}

// statsHandler answers "/stats" with a JSON snapshot of how many routes
// have recorded observations and when the scheduled-prediction advancer
// last ran, the operator-facing counterpart to the aggregator/monitor's
// own status payloads.
type statsHandler struct {
	log       *logger.Logger
	obsStore  *observation.Store
	predStore *prediction.Store
}

type statsResponse struct {
	RoutesWithObservations int       `json:"routes_with_observations"`
	ScheduleWatermark      time.Time `json:"schedule_watermark,omitempty"`
}

func (h *statsHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	resp := statsResponse{}
	if h.obsStore != nil {
		if routes, err := h.obsStore.DistinctRoutes(); err != nil {
			h.log.Printf("monitorcmd: stats: %v", err)
		} else {
			resp.RoutesWithObservations = len(routes)
		}
	}
	if h.predStore != nil {
		if watermark, ok, err := h.predStore.ScheduleWatermark(); err != nil {
			h.log.Printf("monitorcmd: stats: %v", err)
		} else if ok {
			resp.ScheduleWatermark = watermark
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.log.Printf("monitorcmd: encoding stats response: %v", err)
	}
}

// createServer builds the configured http.Server answering "/healthz"
// and "/stats".
func createServer(log *logger.Logger, db *sqlx.DB, httpPort int) *http.Server {
	r := mux.NewRouter()
	r.Handle("/healthz", healthHandler{})
	r.Handle("/stats", &statsHandler{
		log:       log,
		obsStore:  observation.NewStore(db, 0),
		predStore: prediction.NewStore(db),
	})

	return &http.Server{
		Addr:         strings.Join([]string{"0.0.0.0", strconv.Itoa(httpPort)}, ":"),
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
		IdleTimeout:  60 * time.Second,
		Handler:      r,
	}
}

// Run starts the status HTTP server and, if cfg.PingURL is set, a
// best-effort liveness ping loop, returning once shutdown is closed.
func Run(log *logger.Logger, db *sqlx.DB, cfg Conf, shutdown <-chan struct{}) error {
	var wg sync.WaitGroup
	srv := createServer(log, db, cfg.HTTPPort)

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Printf("monitorcmd: starting server on port %d", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("monitorcmd: server ended: %v", err)
		}
	}()

	if cfg.PingURL != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runPingLoop(log, cfg.PingURL, shutdown)
		}()
	}

	<-shutdown
	log.Printf("monitorcmd: ending on shutdown signal")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("monitorcmd: error shutting down server: %v", err)
	}
	wg.Wait()
	return nil
}

// runPingLoop fires a best-effort GET to pingURL every pingInterval until
// shutdown is closed; a failed ping is logged, never fatal.
func runPingLoop(log *logger.Logger, pingURL string, shutdown <-chan struct{}) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-shutdown:
			return
		case <-ticker.C:
			resp, err := http.Get(pingURL)
			if err != nil {
				log.Printf("monitorcmd: ping failed: %v", err)
				continue
			}
			_ = resp.Body.Close()
		}
	}
}
