package observation

import (
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
)

// defaultCapacity is the buffered-write threshold: once this many
// observations have accumulated, the producer responsible for the
// triggering add drains and flushes them in one transaction.
const defaultCapacity = 1000

const deadlockRetryDelay = 5 * time.Second

// BatchedStatements buffers observations and periodically flushes them as
// one transaction combining, per row, an UPDATE-where-older statement
// (latest-recording wins) and an INSERT-IGNORE statement (backfills rows
// that did not previously exist). Both statements run against the same
// parameter set to keep the pair idempotent under concurrent inserts from
// different sources.
//
// Additions from multiple producers are serialized only at two points:
// the buffer push (AddObservation) and the transaction execution
// (flush). A producer that finds itself responsible for flushing does
// not hold the buffer's mutex while the transaction runs, so new
// producers can keep pushing into a fresh buffer.
type BatchedStatements struct {
	db       *sqlx.DB
	capacity int

	mu     sync.Mutex
	buffer []Observation
}

// NewBatchedStatements builds a BatchedStatements backed by db, buffering
// up to capacity observations before flushing. A non-positive capacity
// falls back to defaultCapacity.
func NewBatchedStatements(db *sqlx.DB, capacity int) *BatchedStatements {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &BatchedStatements{db: db, capacity: capacity}
}

// AddObservation appends obs to the buffer, flushing the buffer in this
// goroutine if it has just reached capacity.
func (b *BatchedStatements) AddObservation(obs Observation) error {
	ready := b.push(obs)
	if ready == nil {
		return nil
	}
	return b.flush(ready)
}

// Flush drains and flushes any buffered observations immediately,
// regardless of whether capacity has been reached. Nothing in this
// repository calls it; observations still buffered when the process
// exits are not written.
func (b *BatchedStatements) Flush() error {
	b.mu.Lock()
	pending := b.buffer
	b.buffer = nil
	b.mu.Unlock()

	if len(pending) == 0 {
		return nil
	}
	return b.flush(pending)
}

// push appends obs to the buffer and, if that reached capacity, detaches
// and returns the full buffer for the caller to flush outside the lock.
func (b *BatchedStatements) push(obs Observation) []Observation {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.buffer = append(b.buffer, obs)
	if len(b.buffer) < b.capacity {
		return nil
	}
	ready := b.buffer
	b.buffer = nil
	return ready
}

// flush executes batch as one transaction, retrying on a recoverable
// deadlock and propagating every other error.
func (b *BatchedStatements) flush(batch []Observation) error {
	for {
		err := b.executeBatch(batch)
		if err == nil {
			return nil
		}
		if isDeadlock(err) {
			time.Sleep(deadlockRetryDelay)
			continue
		}
		return err
	}
}

func (b *BatchedStatements) executeBatch(batch []Observation) error {
	tx, err := b.db.Beginx()
	if err != nil {
		return fmt.Errorf("observation: beginning transaction: %w", err)
	}

	for _, obs := range batch {
		if err := updateWhereOlder(tx, obs); err != nil {
			_ = tx.Rollback()
			return err
		}
		if err := insertIgnore(tx, obs); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("observation: committing batch: %w", err)
	}
	return nil
}

func updateWhereOlder(tx *sqlx.Tx, obs Observation) error {
	statementString := "update observation set " +
		"stop_id = :stop_id, " +
		"time_of_recording = :time_of_recording, " +
		"arrival_delay = :arrival_delay, " +
		"departure_delay = :departure_delay, " +
		"schedule_file_tag = :schedule_file_tag " +
		"where source = :source " +
		"and route_id = :route_id " +
		"and route_variant_id = :route_variant_id " +
		"and trip_id = :trip_id " +
		"and service_day = :service_day " +
		"and stop_sequence = :stop_sequence " +
		"and time_of_recording < :time_of_recording"
	statementString = tx.Rebind(statementString)
	_, err := tx.NamedExec(statementString, obs)
	if err != nil {
		return fmt.Errorf("observation: update-where-older: %w", err)
	}
	return nil
}

func insertIgnore(tx *sqlx.Tx, obs Observation) error {
	statementString := "insert into observation (" +
		"source, route_id, route_variant_id, trip_id, service_day, stop_sequence, " +
		"stop_id, time_of_recording, arrival_delay, departure_delay, schedule_file_tag) " +
		"values (" +
		":source, :route_id, :route_variant_id, :trip_id, :service_day, :stop_sequence, " +
		":stop_id, :time_of_recording, :arrival_delay, :departure_delay, :schedule_file_tag) " +
		"on conflict (source, route_id, route_variant_id, trip_id, service_day, stop_sequence) do nothing"
	statementString = tx.Rebind(statementString)
	_, err := tx.NamedExec(statementString, obs)
	if err != nil {
		return fmt.Errorf("observation: insert-ignore: %w", err)
	}
	return nil
}
