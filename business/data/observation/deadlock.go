package observation

import (
	"errors"

	"github.com/jackc/pgx"
)

// postgres error codes signaling a recoverable concurrency conflict:
// deadlock_detected and serialization_failure.
const (
	sqlStateDeadlockDetected     = "40P01"
	sqlStateSerializationFailure = "40001"
)

// isDeadlock reports whether err was caused by a recoverable concurrency
// conflict that a transaction retry (with the same parameter set) can
// resolve, as opposed to an error that should propagate.
func isDeadlock(err error) bool {
	var pgErr pgx.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == sqlStateDeadlockDetected || pgErr.Code == sqlStateSerializationFailure
}
