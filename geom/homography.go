// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package geom

import (
	"errors"
	"math"
)

// ErrDegenerate is returned when a quad or triangle has no usable area and
// therefore no invertible transform.
var ErrDegenerate = errors.New("geom: degenerate geometry")

// Homography is a 3x3 projective transform in row-major order:
//
//	| H[0] H[1] H[2] |
//	| H[3] H[4] H[5] |
//	| H[6] H[7] H[8] |
//
// A point (x, y) maps to ((H0 x + H1 y + H2) / w, (H3 x + H4 y + H5) / w)
// with w = H6 x + H7 y + H8.
type Homography [9]float64

// IdentityHomography returns the identity projective transform.
func IdentityHomography() Homography {
	return Homography{1, 0, 0, 0, 1, 0, 0, 0, 1}
}

// SolveHomography computes the projective transform mapping the source
// rectangle (0, 0, src.Width, src.Height) onto dst, corner to corner:
// (0,0)->TopLeft, (w,0)->TopRight, (w,h)->BottomRight, (0,h)->BottomLeft.
//
// Returns ErrDegenerate if the source is empty or dst is degenerate.
func SolveHomography(src Size, dst Quad) (Homography, error) {
	if src.IsEmpty() || dst.IsDegenerate() {
		return Homography{}, ErrDegenerate
	}
	sq, err := squareToQuad(dst)
	if err != nil {
		return Homography{}, err
	}
	scale := Homography{1 / src.Width, 0, 0, 0, 1 / src.Height, 0, 0, 0, 1}
	h := sq.Multiply(scale).normalize()
	if !h.isFinite() {
		return Homography{}, ErrDegenerate
	}
	return h, nil
}

// squareToQuad maps the unit square onto q.
func squareToQuad(q Quad) (Homography, error) {
	x0, y0 := q.TopLeft.X, q.TopLeft.Y
	x1, y1 := q.TopRight.X, q.TopRight.Y
	x2, y2 := q.BottomRight.X, q.BottomRight.Y
	x3, y3 := q.BottomLeft.X, q.BottomLeft.Y

	dx3 := x0 - x1 + x2 - x3
	dy3 := y0 - y1 + y2 - y3
	if dx3 == 0 && dy3 == 0 {
		// Parallelogram: the transform is affine.
		return Homography{
			x1 - x0, x3 - x0, x0,
			y1 - y0, y3 - y0, y0,
			0, 0, 1,
		}, nil
	}

	dx1 := x1 - x2
	dx2 := x3 - x2
	dy1 := y1 - y2
	dy2 := y3 - y2
	den := dx1*dy2 - dx2*dy1
	if math.Abs(den) < 1e-12 {
		return Homography{}, ErrDegenerate
	}
	g := (dx3*dy2 - dx2*dy3) / den
	h := (dx1*dy3 - dx3*dy1) / den
	return Homography{
		x1 - x0 + g*x1, x3 - x0 + h*x3, x0,
		y1 - y0 + g*y1, y3 - y0 + h*y3, y0,
		g, h, 1,
	}, nil
}

// Multiply returns m * other (other is applied first).
func (m Homography) Multiply(other Homography) Homography {
	var out Homography
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			out[r*3+c] = m[r*3]*other[c] + m[r*3+1]*other[3+c] + m[r*3+2]*other[6+c]
		}
	}
	return out
}

// Apply maps p through the transform. The boolean is false when p lies on
// the transform's line at infinity and has no finite image.
func (m Homography) Apply(p Point) (Point, bool) {
	w := m[6]*p.X + m[7]*p.Y + m[8]
	if math.Abs(w) < 1e-12 {
		return Point{}, false
	}
	return Point{
		X: (m[0]*p.X + m[1]*p.Y + m[2]) / w,
		Y: (m[3]*p.X + m[4]*p.Y + m[5]) / w,
	}, true
}

// Determinant returns the determinant of the 3x3 matrix.
func (m Homography) Determinant() float64 {
	return m[0]*(m[4]*m[8]-m[5]*m[7]) -
		m[1]*(m[3]*m[8]-m[5]*m[6]) +
		m[2]*(m[3]*m[7]-m[4]*m[6])
}

// Invert returns the inverse transform, or ErrDegenerate if the matrix is
// singular.
func (m Homography) Invert() (Homography, error) {
	det := m.Determinant()
	scale := 0.0
	for _, v := range m {
		scale = math.Max(scale, math.Abs(v))
	}
	if scale == 0 || math.Abs(det) <= 1e-12*scale*scale*scale {
		return Homography{}, ErrDegenerate
	}
	inv := Homography{
		m[4]*m[8] - m[5]*m[7], m[2]*m[7] - m[1]*m[8], m[1]*m[5] - m[2]*m[4],
		m[5]*m[6] - m[3]*m[8], m[0]*m[8] - m[2]*m[6], m[2]*m[3] - m[0]*m[5],
		m[3]*m[7] - m[4]*m[6], m[1]*m[6] - m[0]*m[7], m[0]*m[4] - m[1]*m[3],
	}
	for i := range inv {
		inv[i] /= det
	}
	inv = inv.normalize()
	if !inv.isFinite() {
		return Homography{}, ErrDegenerate
	}
	return inv, nil
}

// IsAffine reports whether the projective row is (0, 0, 1), i.e. the
// transform has no perspective foreshortening.
func (m Homography) IsAffine() bool {
	return math.Abs(m[6]) < 1e-12 && math.Abs(m[7]) < 1e-12
}

// normalize scales the matrix so that H[8] == 1 when possible.
func (m Homography) normalize() Homography {
	if m[8] == 0 || math.Abs(m[8]) < 1e-15 {
		return m
	}
	s := m[8]
	for i := range m {
		m[i] /= s
	}
	return m
}

func (m Homography) isFinite() bool {
	for _, v := range m {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
