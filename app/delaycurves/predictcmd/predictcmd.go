// Package predictcmd implements the CLI's `predict start|single`
// subcommand: answering prediction requests from the resolver, either
// once from flags or continuously from stdin.
package predictcmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	logger "log"
	"time"

	"github.com/OpenTransitTools/delaycurves/business/data/prediction"
	"github.com/OpenTransitTools/delaycurves/business/data/schedule"
	"github.com/OpenTransitTools/delaycurves/business/eventtype"
	"github.com/OpenTransitTools/delaycurves/business/statistics"
)

// Conf holds the flags the predict subcommand needs.
type Conf struct {
	Action string // "start" or "single"

	ScheduleFile string
	DataDir      string

	RouteID      string
	VariantID    string
	TripID       string
	StopSequence int
	Event        string // "arrival" or "departure"
	StartStopID  string
	InitialDelay *int
}

// request is one line of a `predict start` session's stdin protocol.
type request struct {
	RouteID      string `json:"route_id"`
	VariantID    string `json:"variant_id"`
	TripID       string `json:"trip_id"`
	StopSequence int    `json:"stop_sequence"`
	Event        string `json:"event"`
	StartStopID  string `json:"start_stop_id,omitempty"`
	InitialDelay *int   `json:"initial_delay,omitempty"`
}

// response is the JSON line written back per request.
type response struct {
	Precision  string `json:"precision,omitempty"`
	SampleSize uint32 `json:"sample_size,omitempty"`
	Curve      bool   `json:"curve"`
	CurveSet   bool   `json:"curve_set"`
	Error      string `json:"error,omitempty"`
}

// Run loads the schedule and statistics tree shared by both actions,
// builds a Resolver over them, and dispatches to single or start mode.
func Run(log *logger.Logger, in io.Reader, out io.Writer, cfg Conf) error {
	sched, err := schedule.NewFileProvider().Load(cfg.ScheduleFile)
	if err != nil {
		return fmt.Errorf("predictcmd: parsing schedule %s: %w", cfg.ScheduleFile, err)
	}
	tree, err := statistics.NewRepository(cfg.DataDir, statistics.NewGobCodec()).Load()
	if err != nil {
		return fmt.Errorf("predictcmd: loading statistics tree: %w", err)
	}
	resolver := prediction.NewResolver(tree, sched, sched.RouteType)

	switch cfg.Action {
	case "single":
		return runSingle(resolver, out, cfg)
	case "start":
		return runStart(log, resolver, in, out)
	default:
		return fmt.Errorf("predictcmd: unknown action %q (expected start or single)", cfg.Action)
	}
}

func runSingle(resolver *prediction.Resolver, out io.Writer, cfg Conf) error {
	event, err := parseEvent(cfg.Event)
	if err != nil {
		return fmt.Errorf("predictcmd: %w", err)
	}

	var basis *prediction.Basis
	if cfg.StartStopID != "" {
		basis = &prediction.Basis{StartStopID: cfg.StartStopID, InitialDelay: cfg.InitialDelay}
	}

	result, err := resolver.Predict(cfg.RouteID, cfg.VariantID, cfg.TripID, basis, cfg.StopSequence, event, time.Now())
	if err != nil {
		return fmt.Errorf("predictcmd: %w", err)
	}
	return writeResponse(out, toResponse(result))
}

// runStart answers one JSON request per input line until EOF, writing one
// JSON response per line to out; malformed lines produce an error
// response rather than aborting the session.
func runStart(log *logger.Logger, resolver *prediction.Resolver, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		var req request
		line := scanner.Bytes()
		if err := json.Unmarshal(line, &req); err != nil {
			writeResponse(out, response{Error: err.Error()})
			continue
		}

		event, err := parseEvent(req.Event)
		if err != nil {
			writeResponse(out, response{Error: err.Error()})
			continue
		}

		var basis *prediction.Basis
		if req.StartStopID != "" {
			basis = &prediction.Basis{StartStopID: req.StartStopID, InitialDelay: req.InitialDelay}
		}

		result, err := resolver.Predict(req.RouteID, req.VariantID, req.TripID, basis, req.StopSequence, event, time.Now())
		if err != nil {
			writeResponse(out, response{Error: err.Error()})
			continue
		}
		if err := writeResponse(out, toResponse(result)); err != nil {
			log.Printf("predictcmd: writing response: %v", err)
		}
	}
	return scanner.Err()
}

func toResponse(result *prediction.Result) response {
	return response{
		Precision:  precisionName(result.Precision),
		SampleSize: result.SampleSize,
		Curve:      result.Curve != nil,
		CurveSet:   result.CurveSet != nil,
	}
}

func writeResponse(out io.Writer, resp response) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}

func parseEvent(s string) (eventtype.EventType, error) {
	switch s {
	case "arrival":
		return eventtype.Arrival, nil
	case "departure":
		return eventtype.Departure, nil
	default:
		return 0, fmt.Errorf("unknown event %q (expected arrival or departure)", s)
	}
}

func precisionName(p statistics.PrecisionType) string {
	switch p {
	case statistics.Specific:
		return "specific"
	case statistics.FallbackSpecific:
		return "fallback_specific"
	case statistics.SemiSpecific:
		return "semi_specific"
	case statistics.General:
		return "general"
	default:
		return "unknown"
	}
}
