// Package curve implements the empirical cumulative distribution function
// ("delay curve") used throughout the statistics and prediction components:
// a monotonically non-decreasing piecewise-linear function from a delay in
// seconds to a probability in [0, 1].
package curve

import (
	"fmt"
	"sort"
)

// Point is one (x, y) control point of a Curve.
type Point struct {
	X float64
	Y float64
}

// Curve is a monotonically non-decreasing piecewise-linear CDF, stored as
// an ordered sequence of control points with Y(first) = 0 and Y(last) = 1.
// A Curve always has at least two control points.
type Curve struct {
	Points []Point
}

// New builds a Curve from already-computed control points. It is the
// caller's responsibility to ensure points are sorted by X and satisfy the
// Y(first)=0, Y(last)=1 invariant; this is used internally by the builder
// and by tests constructing fixtures directly.
func New(points []Point) *Curve {
	return &Curve{Points: points}
}

// MinX returns the x value of the first control point.
func (c *Curve) MinX() float64 {
	return c.Points[0].X
}

// MaxX returns the x value of the last control point.
func (c *Curve) MaxX() float64 {
	return c.Points[len(c.Points)-1].X
}

// YAtX evaluates the curve at x, linearly interpolating between the
// bracketing control points. x values outside [MinX, MaxX] are clamped to
// the curve's first or last y value (0 or 1).
func (c *Curve) YAtX(x float64) float64 {
	pts := c.Points
	if x <= pts[0].X {
		return pts[0].Y
	}
	last := len(pts) - 1
	if x >= pts[last].X {
		return pts[last].Y
	}
	i := sort.Search(len(pts), func(i int) bool { return pts[i].X >= x })
	if pts[i].X == x {
		return pts[i].Y
	}
	prev, next := pts[i-1], pts[i]
	ratio := (x - prev.X) / (next.X - prev.X)
	return prev.Y + ratio*(next.Y-prev.Y)
}

// XAtY evaluates the inverse of the curve at y, linearly interpolating
// between the bracketing control points. y values outside [0, 1] are
// clamped to the curve's first or last x value.
func (c *Curve) XAtY(y float64) float64 {
	pts := c.Points
	if y <= pts[0].Y {
		return pts[0].X
	}
	last := len(pts) - 1
	if y >= pts[last].Y {
		return pts[last].X
	}
	i := sort.Search(len(pts), func(i int) bool { return pts[i].Y >= y })
	if pts[i].Y == y {
		return pts[i].X
	}
	prev, next := pts[i-1], pts[i]
	ratio := (y - prev.Y) / (next.Y - prev.Y)
	return prev.X + ratio*(next.X-prev.X)
}

// Simplify culls control points whose removal would not move any y value by
// more than eps, using a Ramer-Douglas-Peucker style recursive reduction.
// The first and last control points (and therefore MinX, MaxX, y(MinX)=0,
// y(MaxX)=1) are always preserved.
func (c *Curve) Simplify(eps float64) *Curve {
	if len(c.Points) <= 2 {
		out := make([]Point, len(c.Points))
		copy(out, c.Points)
		return &Curve{Points: out}
	}
	kept := rdpSimplify(c.Points, eps)
	return &Curve{Points: kept}
}

// rdpSimplify returns the subset of pts (always including the first and
// last) whose vertical deviation from the chord between their surviving
// neighbors exceeds eps.
func rdpSimplify(pts []Point, eps float64) []Point {
	if len(pts) <= 2 {
		return pts
	}
	first, last := pts[0], pts[len(pts)-1]
	maxDist := -1.0
	maxIdx := -1
	for i := 1; i < len(pts)-1; i++ {
		d := verticalDeviation(first, last, pts[i])
		if d > maxDist {
			maxDist = d
			maxIdx = i
		}
	}
	if maxDist <= eps {
		return []Point{first, last}
	}
	left := rdpSimplify(pts[:maxIdx+1], eps)
	right := rdpSimplify(pts[maxIdx:], eps)
	result := make([]Point, 0, len(left)+len(right)-1)
	result = append(result, left[:len(left)-1]...)
	result = append(result, right...)
	return result
}

// verticalDeviation returns the vertical (y-axis) distance between p and
// the straight line from a to b, evaluated at p.X. This, rather than the
// usual RDP perpendicular distance, is what keeps the simplified curve's
// YAtX error bounded by eps everywhere.
func verticalDeviation(a, b, p Point) float64 {
	if b.X == a.X {
		return 0
	}
	ratio := (p.X - a.X) / (b.X - a.X)
	lineY := a.Y + ratio*(b.Y-a.Y)
	d := p.Y - lineY
	if d < 0 {
		d = -d
	}
	return d
}

// Average computes the pointwise mean of the supplied curves' y values,
// resampled over the union of their control points' x positions, and
// simplifies the result at eps. Used by the default-curve builder to
// aggregate specific curves into a fallback.
func Average(curves []*Curve, eps float64) (*Curve, error) {
	if len(curves) == 0 {
		return nil, fmt.Errorf("curve: cannot average zero curves")
	}
	if len(curves) == 1 {
		return curves[0].Simplify(eps), nil
	}

	xSet := make(map[float64]struct{})
	for _, c := range curves {
		for _, p := range c.Points {
			xSet[p.X] = struct{}{}
		}
	}
	xs := make([]float64, 0, len(xSet))
	for x := range xSet {
		xs = append(xs, x)
	}
	sort.Float64s(xs)

	points := make([]Point, 0, len(xs))
	for _, x := range xs {
		sum := 0.0
		for _, c := range curves {
			sum += c.YAtX(x)
		}
		points = append(points, Point{X: x, Y: sum / float64(len(curves))})
	}
	// Pin the endpoints exactly, resampling can otherwise leave the
	// average a hair off 0/1 when curves disagree on their domain.
	points[0].Y = 0
	points[len(points)-1].Y = 1
	return (&Curve{Points: points}).Simplify(eps), nil
}
