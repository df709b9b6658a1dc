// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package geom

import "math"

// Affine represents a 2D affine transformation matrix.
// It uses a 2x3 matrix in row-major order:
//
//	| a  b  c |
//	| d  e  f |
//
// This represents the transformation:
//
//	x' = a*x + b*y + c
//	y' = d*x + e*y + f
type Affine struct {
	A, B, C float64
	D, E, F float64
}

// Identity returns the identity transformation matrix.
func Identity() Affine {
	return Affine{A: 1, E: 1}
}

// Translate creates a translation matrix.
func Translate(x, y float64) Affine {
	return Affine{A: 1, C: x, E: 1, F: y}
}

// Scale creates a scaling matrix.
func Scale(x, y float64) Affine {
	return Affine{A: x, E: y}
}

// Multiply multiplies two matrices (m * other).
func (m Affine) Multiply(other Affine) Affine {
	return Affine{
		A: m.A*other.A + m.B*other.D,
		B: m.A*other.B + m.B*other.E,
		C: m.A*other.C + m.B*other.F + m.C,
		D: m.D*other.A + m.E*other.D,
		E: m.D*other.B + m.E*other.E,
		F: m.D*other.C + m.E*other.F + m.F,
	}
}

// TransformPoint applies the transformation to a point.
func (m Affine) TransformPoint(p Point) Point {
	return Point{
		X: m.A*p.X + m.B*p.Y + m.C,
		Y: m.D*p.X + m.E*p.Y + m.F,
	}
}

// Invert returns the inverse matrix, or ErrDegenerate if the matrix is
// singular.
func (m Affine) Invert() (Affine, error) {
	det := m.A*m.E - m.B*m.D
	if math.Abs(det) < 1e-12 {
		return Affine{}, ErrDegenerate
	}

	invDet := 1.0 / det
	return Affine{
		A: m.E * invDet,
		B: -m.B * invDet,
		C: (m.B*m.F - m.C*m.E) * invDet,
		D: -m.D * invDet,
		E: m.A * invDet,
		F: (m.C*m.D - m.A*m.F) * invDet,
	}, nil
}

// Homography returns m as a projective matrix.
func (m Affine) Homography() Homography {
	return Homography{m.A, m.B, m.C, m.D, m.E, m.F, 0, 0, 1}
}

// AffineFromTriangles returns the unique affine transform mapping the
// vertices of src onto the vertices of dst, in order.
func AffineFromTriangles(src, dst [3]Point) (Affine, error) {
	u := src[1].Sub(src[0])
	v := src[2].Sub(src[0])
	det := u.Cross(v)
	if math.Abs(det) < 1e-12 {
		return Affine{}, ErrDegenerate
	}
	// Inverse of the source basis [u v].
	ia, ib := v.Y/det, -v.X/det
	id, ie := -u.Y/det, u.X/det

	du := dst[1].Sub(dst[0])
	dv := dst[2].Sub(dst[0])
	m := Affine{
		A: du.X*ia + dv.X*id,
		B: du.X*ib + dv.X*ie,
		D: du.Y*ia + dv.Y*id,
		E: du.Y*ib + dv.Y*ie,
	}
	m.C = dst[0].X - (m.A*src[0].X + m.B*src[0].Y)
	m.F = dst[0].Y - (m.D*src[0].X + m.E*src[0].Y)
	return m, nil
}

// Triangle is a pair of corresponding source and destination triangles.
type Triangle struct {
	Src [3]Point
	Dst [3]Point
}

// SplitTriangles decomposes the warp of the source rectangle onto dst into
// two triangles, TL-TR-BL and TR-BR-BL. They share the TR-BL diagonal so
// every quad corner is hit exactly by at least one triangle.
func SplitTriangles(src Size, dst Quad) [2]Triangle {
	w, h := src.Width, src.Height
	return [2]Triangle{
		{
			Src: [3]Point{Pt(0, 0), Pt(w, 0), Pt(0, h)},
			Dst: [3]Point{dst.TopLeft, dst.TopRight, dst.BottomLeft},
		},
		{
			Src: [3]Point{Pt(w, 0), Pt(w, h), Pt(0, h)},
			Dst: [3]Point{dst.TopRight, dst.BottomRight, dst.BottomLeft},
		},
	}
}

// Affine returns the transform mapping t.Src onto t.Dst.
func (t Triangle) Affine() (Affine, error) {
	return AffineFromTriangles(t.Src, t.Dst)
}
