// Package delayerr holds the error kinds shared across the ingestion,
// statistics and prediction components.
package delayerr

import "fmt"

// InsufficientData is returned by a curve or curve-set builder given fewer
// observations than required. Callers are expected to simply omit the cell
// from their output rather than log it at warning level.
type InsufficientData struct {
	Reason string
}

func (e *InsufficientData) Error() string {
	return fmt.Sprintf("insufficient data: %s", e.Reason)
}

// NewInsufficientData builds an InsufficientData error.
func NewInsufficientData(reason string) error {
	return &InsufficientData{Reason: reason}
}

// ParseError marks a realtime or schedule file as malformed. The file that
// produced it should be moved to the failure directory and processing
// should continue with the next file.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error in %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// NewParseError wraps err as a ParseError for path.
func NewParseError(path string, err error) error {
	return &ParseError{Path: path, Err: err}
}

// MissingBasisField marks a realtime trip_update that omits a mandatory
// field. Only the specific trip update should be skipped.
type MissingBasisField struct {
	Field string
}

func (e *MissingBasisField) Error() string {
	return fmt.Sprintf("missing required field: %s", e.Field)
}

// NewMissingBasisField builds a MissingBasisField error.
func NewMissingBasisField(field string) error {
	return &MissingBasisField{Field: field}
}

// SchemaMismatch marks a schedule reference to a stop or trip the realtime
// feed doesn't know about, or vice versa. Reported once per affected
// vehicle; the data involved is skipped.
type SchemaMismatch struct {
	VehicleID string
	Reason    string
}

func (e *SchemaMismatch) Error() string {
	return fmt.Sprintf("schema mismatch for vehicle %s: %s", e.VehicleID, e.Reason)
}

// NewSchemaMismatch builds a SchemaMismatch error.
func NewSchemaMismatch(vehicleID, reason string) error {
	return &SchemaMismatch{VehicleID: vehicleID, Reason: reason}
}

// StorageDeadlock is recoverable: the caller should sleep and retry the
// entire transaction with the same parameter set, with no retry cap.
type StorageDeadlock struct {
	Err error
}

func (e *StorageDeadlock) Error() string {
	return fmt.Sprintf("storage deadlock: %v", e.Err)
}

func (e *StorageDeadlock) Unwrap() error { return e.Err }

// NewStorageDeadlock wraps err as a StorageDeadlock error.
func NewStorageDeadlock(err error) error {
	return &StorageDeadlock{Err: err}
}

// StorageError is an unrecoverable storage fault. It terminates the
// current file or operation but not the enclosing loop.
type StorageError struct {
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error: %v", e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// NewStorageError wraps err as a StorageError error.
func NewStorageError(err error) error {
	return &StorageError{Err: err}
}

// NoStatistics indicates the prediction resolver found no applicable curve
// at any precision level. It is surfaced directly to the caller.
type NoStatistics struct {
	RouteID string
	StopID  string
}

func (e *NoStatistics) Error() string {
	return fmt.Sprintf("no statistics available for route %s stop %s", e.RouteID, e.StopID)
}

// NewNoStatistics builds a NoStatistics error.
func NewNoStatistics(routeID, stopID string) error {
	return &NoStatistics{RouteID: routeID, StopID: stopID}
}
