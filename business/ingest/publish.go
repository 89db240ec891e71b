package ingest

import (
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
)

// FileIngestedSubject and PredictionsRefreshedSubject are the NATS
// subjects this loop publishes to, mirroring the teacher's
// ObservedStopTransitions/PredictionPublisher pub/sub roles without
// carrying over their ML-inference payload shape (this repository has no
// model round trip to publish).
const (
	FileIngestedSubject         = "delaycurves.file_ingested"
	PredictionsRefreshedSubject = "delaycurves.predictions_refreshed"
)

// FileIngestedEvent is published once per successfully processed
// realtime file.
type FileIngestedEvent struct {
	Source       string    `json:"source"`
	Path         string    `json:"path"`
	Observations int       `json:"observations"`
	At           time.Time `json:"at"`
}

// PredictionsRefreshedEvent is published once per scheduled-prediction
// advancer window, so downstream consumers (a journey-planner UI, a
// monitoring dashboard) know a fresh batch of schedule-only predictions
// landed.
type PredictionsRefreshedEvent struct {
	Source string    `json:"source"`
	Begin  time.Time `json:"begin"`
}

// Publisher is the pub/sub seam the ingestion loop optionally notifies.
// A nil Publisher (the default) disables publishing entirely; this is a
// best-effort notification, not a delivery guarantee the loop depends on.
type Publisher interface {
	PublishFileIngested(FileIngestedEvent) error
	PublishPredictionsRefreshed(PredictionsRefreshedEvent) error
}

// NatsPublisher is the Publisher backed by a *nats.Conn, JSON-encoding
// each event the same plain way the teacher's aggregator/monitor/
// tripupdate-svc binaries exchange messages over NATS.
type NatsPublisher struct {
	conn *nats.Conn
}

// NewNatsPublisher builds a NatsPublisher over an already-connected conn.
func NewNatsPublisher(conn *nats.Conn) *NatsPublisher {
	return &NatsPublisher{conn: conn}
}

func (p *NatsPublisher) PublishFileIngested(evt FileIngestedEvent) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	return p.conn.Publish(FileIngestedSubject, data)
}

func (p *NatsPublisher) PublishPredictionsRefreshed(evt PredictionsRefreshedEvent) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	return p.conn.Publish(PredictionsRefreshedSubject, data)
}
