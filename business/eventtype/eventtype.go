// Package eventtype models the arrival/departure distinction that recurs
// throughout the statistics and prediction components as a two-variant
// sum type, so callers index a single generic container instead of
// maintaining parallel arrival/departure fields and code paths.
package eventtype

import (
	"bytes"
	"encoding/gob"
)

// EventType distinguishes an arrival event from a departure event at a
// stop.
type EventType int32

const (
	Arrival EventType = iota
	Departure
)

func (e EventType) String() string {
	switch e {
	case Arrival:
		return "Arrival"
	case Departure:
		return "Departure"
	default:
		return "Unknown"
	}
}

// Pair holds one value of T per EventType, indexed by Get/Set rather than
// by separate named fields.
type Pair[T any] struct {
	values [2]T
}

// Get returns the value stored for e.
func (p *Pair[T]) Get(e EventType) T {
	return p.values[e]
}

// Set stores v for e.
func (p *Pair[T]) Set(e EventType, v T) {
	p.values[e] = v
}

// All returns a two-element slice in (Arrival, Departure) order.
func All() []EventType {
	return []EventType{Arrival, Departure}
}

// gobPair is the exported surrogate Pair's values are encoded through:
// gob only encodes exported fields, so Pair implements GobEncoder/
// GobDecoder rather than exposing values directly, the same way
// business/curve.CurveSet does.
type gobPair[T any] struct {
	Values [2]T
}

func (p *Pair[T]) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(gobPair[T]{Values: p.values}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (p *Pair[T]) GobDecode(data []byte) error {
	var surrogate gobPair[T]
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&surrogate); err != nil {
		return err
	}
	p.values = surrogate.Values
	return nil
}
