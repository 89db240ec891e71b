package curve

import (
	"bytes"
	"encoding/gob"
	"sort"
)

// entry pairs a focus initial-delay with its conditional Curve.
type entry struct {
	Focus float64
	Curve *Curve
}

// CurveSet is an ordered mapping from a focus initial-delay to the Curve
// describing the final-delay distribution conditioned on that focus.
type CurveSet struct {
	entries []entry
}

// NewCurveSet builds an empty CurveSet.
func NewCurveSet() *CurveSet {
	return &CurveSet{}
}

// Add inserts c at focus, keeping entries ordered by ascending focus.
// Builders are expected to add in ascending focus order already (§4.5), but
// Add tolerates out-of-order insertion for use in tests and the default
// curve aggregation path.
func (cs *CurveSet) Add(focus float64, c *Curve) {
	i := sort.Search(len(cs.entries), func(i int) bool { return cs.entries[i].Focus >= focus })
	cs.entries = append(cs.entries, entry{})
	copy(cs.entries[i+1:], cs.entries[i:])
	cs.entries[i] = entry{Focus: focus, Curve: c}
}

// Len returns the number of curves in the set.
func (cs *CurveSet) Len() int {
	return len(cs.entries)
}

// Foci returns the ascending focus values currently in the set.
func (cs *CurveSet) Foci() []float64 {
	foci := make([]float64, len(cs.entries))
	for i, e := range cs.entries {
		foci[i] = e.Focus
	}
	return foci
}

// Curves returns the curves in ascending focus order.
func (cs *CurveSet) Curves() []*Curve {
	curves := make([]*Curve, len(cs.entries))
	for i, e := range cs.entries {
		curves[i] = e.Curve
	}
	return curves
}

// CurveAtXWithContinuation returns the curve whose focus is closest at or
// below x. For x inside [min focus, max focus] this is a plain bucket
// lookup: the chosen curve is returned unmodified. For x outside that
// range there is no bucket to select, so the nearest boundary curve is
// linearly extrapolated: its control points are shifted along x by
// (x - usedFocus), assuming (per the projection pass's same persistence
// assumption) that delay carries forward roughly 1:1 beyond the observed
// range.
func (cs *CurveSet) CurveAtXWithContinuation(x float64) *Curve {
	if len(cs.entries) == 0 {
		return nil
	}
	first := cs.entries[0]
	last := cs.entries[len(cs.entries)-1]

	if x < first.Focus {
		return shiftCurve(first.Curve, x-first.Focus)
	}
	if x > last.Focus {
		return shiftCurve(last.Curve, x-last.Focus)
	}

	// largest focus <= x
	idx := sort.Search(len(cs.entries), func(i int) bool { return cs.entries[i].Focus > x }) - 1
	return cs.entries[idx].Curve
}

// gobCurveSet is the exported surrogate CurveSet's entries are encoded
// through: gob only encodes exported fields, so CurveSet implements
// GobEncoder/GobDecoder rather than exposing entries directly.
type gobCurveSet struct {
	Entries []entry
}

func (cs *CurveSet) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(gobCurveSet{Entries: cs.entries}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (cs *CurveSet) GobDecode(data []byte) error {
	var surrogate gobCurveSet
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&surrogate); err != nil {
		return err
	}
	cs.entries = surrogate.Entries
	return nil
}

// shiftCurve returns a copy of c with every control point's x shifted by
// delta; y values are unchanged.
func shiftCurve(c *Curve, delta float64) *Curve {
	if delta == 0 {
		return c
	}
	points := make([]Point, len(c.Points))
	for i, p := range c.Points {
		points[i] = Point{X: p.X + delta, Y: p.Y}
	}
	return &Curve{Points: points}
}
