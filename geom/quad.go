// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package geom

import (
	"fmt"
	"math"
)

// Corner identifies one of the four corners of a Quad.
type Corner uint8

const (
	TopLeft Corner = iota
	TopRight
	BottomRight
	BottomLeft
)

// Corners lists the corners in clockwise order starting at TopLeft.
var Corners = [4]Corner{TopLeft, TopRight, BottomRight, BottomLeft}

// String returns the two-letter corner abbreviation.
func (c Corner) String() string {
	switch c {
	case TopLeft:
		return "TL"
	case TopRight:
		return "TR"
	case BottomRight:
		return "BR"
	case BottomLeft:
		return "BL"
	default:
		return fmt.Sprintf("Corner(%d)", uint8(c))
	}
}

// Next returns the corner that follows c in clockwise order.
func (c Corner) Next() Corner {
	return (c + 1) % 4
}

// Quad is a destination region given by four independently placed corners.
//
// Corners are expected in clockwise order (on a y-down raster) forming a
// simple polygon. The type does not enforce this; see IsSimple, IsConvex and
// IsDegenerate.
type Quad struct {
	TopLeft     Point `json:"topLeft"`
	TopRight    Point `json:"topRight"`
	BottomRight Point `json:"bottomRight"`
	BottomLeft  Point `json:"bottomLeft"`
}

// RectQuad returns the axis-aligned quad covering (x, y, w, h).
func RectQuad(x, y, w, h float64) Quad {
	return Quad{
		TopLeft:     Pt(x, y),
		TopRight:    Pt(x+w, y),
		BottomRight: Pt(x+w, y+h),
		BottomLeft:  Pt(x, y+h),
	}
}

// Points returns the corners in TL, TR, BR, BL order.
func (q Quad) Points() [4]Point {
	return [4]Point{q.TopLeft, q.TopRight, q.BottomRight, q.BottomLeft}
}

// Corner returns the position of corner c.
func (q Quad) Corner(c Corner) Point {
	return q.Points()[c%4]
}

// WithCorner returns a copy of q with corner c moved to p.
func (q Quad) WithCorner(c Corner, p Point) Quad {
	switch c {
	case TopLeft:
		q.TopLeft = p
	case TopRight:
		q.TopRight = p
	case BottomRight:
		q.BottomRight = p
	case BottomLeft:
		q.BottomLeft = p
	}
	return q
}

// Area returns the signed shoelace area. Clockwise quads on a y-down raster
// have positive area.
func (q Quad) Area() float64 {
	pts := q.Points()
	var sum float64
	for i := range pts {
		j := (i + 1) % 4
		sum += pts[i].X*pts[j].Y - pts[j].X*pts[i].Y
	}
	return sum / 2
}

// Bounds returns the axis-aligned bounding box as (min, max).
func (q Quad) Bounds() (minPt, maxPt Point) {
	pts := q.Points()
	minPt, maxPt = pts[0], pts[0]
	for _, p := range pts[1:] {
		minPt.X = math.Min(minPt.X, p.X)
		minPt.Y = math.Min(minPt.Y, p.Y)
		maxPt.X = math.Max(maxPt.X, p.X)
		maxPt.Y = math.Max(maxPt.Y, p.Y)
	}
	return minPt, maxPt
}

// IsFinite reports whether every corner has finite coordinates.
func (q Quad) IsFinite() bool {
	for _, p := range q.Points() {
		if !p.IsFinite() {
			return false
		}
	}
	return true
}

// IsDegenerate reports whether any three corners are collinear (which
// includes coincident corners and zero-area quads). The tolerance is relative
// to the quad's bounding box so it behaves the same at any scale.
func (q Quad) IsDegenerate() bool {
	if !q.IsFinite() {
		return true
	}
	minPt, maxPt := q.Bounds()
	extent := math.Max(maxPt.X-minPt.X, maxPt.Y-minPt.Y)
	if extent <= 0 {
		return true
	}
	eps := degenerateEpsilon * extent * extent
	pts := q.Points()
	for skip := range pts {
		var tri [3]Point
		n := 0
		for i, p := range pts {
			if i != skip {
				tri[n] = p
				n++
			}
		}
		if math.Abs(tri[1].Sub(tri[0]).Cross(tri[2].Sub(tri[0]))) <= eps {
			return true
		}
	}
	return false
}

// degenerateEpsilon is the relative cross-product tolerance used by
// IsDegenerate.
const degenerateEpsilon = 1e-9

// IsConvex reports whether the quad is strictly convex with consistent
// winding in either direction.
func (q Quad) IsConvex() bool {
	if q.IsDegenerate() {
		return false
	}
	pts := q.Points()
	var sign float64
	for i := range pts {
		a := pts[i]
		b := pts[(i+1)%4]
		c := pts[(i+2)%4]
		cross := b.Sub(a).Cross(c.Sub(b))
		if cross == 0 {
			return false
		}
		if sign == 0 {
			sign = cross
		} else if (sign > 0) != (cross > 0) {
			return false
		}
	}
	return true
}

// IsSimple reports whether the quad does not self-intersect. Concave quads
// are simple; a "bow-tie" with crossing opposite edges is not.
func (q Quad) IsSimple() bool {
	if q.IsDegenerate() {
		return false
	}
	pts := q.Points()
	return !segmentsIntersect(pts[0], pts[1], pts[2], pts[3]) &&
		!segmentsIntersect(pts[1], pts[2], pts[3], pts[0])
}

// IsAxisAligned reports whether the quad is a rectangle with edges parallel
// to the axes, within eps.
func (q Quad) IsAxisAligned(eps float64) bool {
	return math.Abs(q.TopLeft.Y-q.TopRight.Y) <= eps &&
		math.Abs(q.BottomLeft.Y-q.BottomRight.Y) <= eps &&
		math.Abs(q.TopLeft.X-q.BottomLeft.X) <= eps &&
		math.Abs(q.TopRight.X-q.BottomRight.X) <= eps
}

// Transform returns the quad with every corner passed through fn.
func (q Quad) Transform(fn func(Point) Point) Quad {
	return Quad{
		TopLeft:     fn(q.TopLeft),
		TopRight:    fn(q.TopRight),
		BottomRight: fn(q.BottomRight),
		BottomLeft:  fn(q.BottomLeft),
	}
}

// segmentsIntersect reports whether segments ab and cd properly cross or touch.
func segmentsIntersect(a, b, c, d Point) bool {
	d1 := orient(c, d, a)
	d2 := orient(c, d, b)
	d3 := orient(a, b, c)
	d4 := orient(a, b, d)
	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	return (d1 == 0 && onSegment(c, d, a)) ||
		(d2 == 0 && onSegment(c, d, b)) ||
		(d3 == 0 && onSegment(a, b, c)) ||
		(d4 == 0 && onSegment(a, b, d))
}

func orient(a, b, c Point) float64 {
	return b.Sub(a).Cross(c.Sub(a))
}

func onSegment(a, b, p Point) bool {
	return math.Min(a.X, b.X) <= p.X && p.X <= math.Max(a.X, b.X) &&
		math.Min(a.Y, b.Y) <= p.Y && p.Y <= math.Max(a.Y, b.Y)
}
