package curve

import (
	"math"
	"testing"
)

func TestCompactRoundTrip(t *testing.T) {
	c := New([]Point{{X: 0, Y: 0}, {X: 12, Y: 0.3}, {X: 40, Y: 0.9}, {X: 90, Y: 1}})
	decoded, err := DecodeCompact(c.EncodeCompact())
	if err != nil {
		t.Fatalf("DecodeCompact: %v", err)
	}
	if len(decoded.Points) != len(c.Points) {
		t.Fatalf("point count = %d, want %d", len(decoded.Points), len(c.Points))
	}
	for i, p := range c.Points {
		if math.Abs(p.X-decoded.Points[i].X) > 1e-12 || math.Abs(p.Y-decoded.Points[i].Y) > 1e-12 {
			t.Errorf("point %d = %v, want %v", i, decoded.Points[i], p)
		}
	}
}

func TestDecodeCompactRejectsUnknownFormat(t *testing.T) {
	if _, err := DecodeCompact([]byte{99, 0}); err == nil {
		t.Fatal("expected error for unknown format byte")
	}
}

func TestDecodeCompactRejectsTruncated(t *testing.T) {
	c := New([]Point{{X: 0, Y: 0}, {X: 10, Y: 1}})
	encoded := c.EncodeCompact()
	if _, err := DecodeCompact(encoded[:len(encoded)-4]); err == nil {
		t.Fatal("expected error for truncated encoding")
	}
}

func TestDecodeCompactRejectsEmpty(t *testing.T) {
	if _, err := DecodeCompact(nil); err == nil {
		t.Fatal("expected error for empty input")
	}
}
