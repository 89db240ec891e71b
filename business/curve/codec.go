package curve

import (
	"encoding/binary"
	"fmt"
	"math"
)

// compactFormatV1 is the only format byte ever written today. A wire
// envelope around the version number lets EncodeCompact's layout change in
// the future without leaving today's persisted predictions unreadable.
const compactFormatV1 = 1

// EncodeCompact serializes c as a version-tagged sequence of control
// points: a format byte, a varint point count, then each point as two
// big-endian float64 bit patterns. Curves are small (typically under two
// dozen points after Simplify), so this favors a stable, trivially
// forward-compatible layout over bit-packing tricks.
func (c *Curve) EncodeCompact() []byte {
	buf := make([]byte, 1, 1+binary.MaxVarintLen64+len(c.Points)*16)
	buf[0] = compactFormatV1

	var varintBuf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(varintBuf[:], uint64(len(c.Points)))
	buf = append(buf, varintBuf[:n]...)

	for _, p := range c.Points {
		buf = appendFloat64(buf, p.X)
		buf = appendFloat64(buf, p.Y)
	}
	return buf
}

// DecodeCompact reverses EncodeCompact, rejecting unknown format bytes and
// truncated input.
func DecodeCompact(data []byte) (*Curve, error) {
	if len(data) < 1 {
		return nil, fmt.Errorf("curve: empty compact encoding")
	}
	if data[0] != compactFormatV1 {
		return nil, fmt.Errorf("curve: unrecognized compact format byte %d", data[0])
	}
	rest := data[1:]

	count, n := binary.Uvarint(rest)
	if n <= 0 {
		return nil, fmt.Errorf("curve: malformed point count")
	}
	rest = rest[n:]

	points := make([]Point, count)
	for i := range points {
		if len(rest) < 16 {
			return nil, fmt.Errorf("curve: truncated compact encoding at point %d", i)
		}
		points[i].X = math.Float64frombits(binary.BigEndian.Uint64(rest[0:8]))
		points[i].Y = math.Float64frombits(binary.BigEndian.Uint64(rest[8:16]))
		rest = rest[16:]
	}
	if len(points) < 2 {
		return nil, fmt.Errorf("curve: decoded fewer than two control points")
	}
	return &Curve{Points: points}, nil
}

func appendFloat64(buf []byte, v float64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], math.Float64bits(v))
	return append(buf, b[:]...)
}
