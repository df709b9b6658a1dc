// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package warp

import (
	"math"

	"github.com/gogpu/mockup/geom"
	"github.com/gogpu/mockup/internal/blend"
)

// Texture is a source surface together with the nominal size its pixels are
// stretched to. Source-space coordinates are in nominal units.
type Texture struct {
	Surface Surface
	Size    geom.Size
}

// FillTriangle rasterizes the destination triangle tri into dst. Every
// destination pixel whose center lies inside tri is mapped through inv
// (destination to source space), sampled from tex, scaled by opacity and
// composited source-over.
//
// Pixels whose centers fall exactly on an edge are assigned by a top-left
// rule, so two triangles sharing an edge never both draw (or both skip) a
// pixel on it. This acts as the per-triangle clip that keeps the diagonal of
// a split quad seam-free.
func FillTriangle(dst Surface, tri [3]geom.Point, inv geom.Affine, tex Texture, opacity uint8, mode Interpolation) {
	if dst.Empty() || tex.Surface.Empty() || opacity == 0 {
		return
	}
	v0, v1, v2 := tri[0], tri[1], tri[2]
	area := v1.Sub(v0).Cross(v2.Sub(v0))
	if area == 0 || math.IsNaN(area) {
		return
	}
	if area < 0 {
		v1, v2 = v2, v1
	}

	minX := math.Floor(math.Min(v0.X, math.Min(v1.X, v2.X)))
	maxX := math.Ceil(math.Max(v0.X, math.Max(v1.X, v2.X)))
	minY := math.Floor(math.Min(v0.Y, math.Min(v1.Y, v2.Y)))
	maxY := math.Ceil(math.Max(v0.Y, math.Max(v1.Y, v2.Y)))
	x0 := clamp(int(minX), 0, dst.Width)
	x1 := clamp(int(maxX), 0, dst.Width)
	y0 := clamp(int(minY), 0, dst.Height)
	y1 := clamp(int(maxY), 0, dst.Height)
	if x0 >= x1 || y0 >= y1 {
		return
	}

	e0 := newEdge(v0, v1)
	e1 := newEdge(v1, v2)
	e2 := newEdge(v2, v0)

	sx := float64(tex.Surface.Width) / tex.Size.Width
	sy := float64(tex.Surface.Height) / tex.Size.Height

	for y := y0; y < y1; y++ {
		py := float64(y) + 0.5
		row := dst.Row(y)
		for x := x0; x < x1; x++ {
			p := geom.Pt(float64(x)+0.5, py)
			if !e0.contains(p) || !e1.contains(p) || !e2.contains(p) {
				continue
			}
			sp := inv.TransformPoint(p)
			r, g, b, a := Sample(tex.Surface, sp.X*sx, sp.Y*sy, mode)
			r, g, b, a = blend.Scale(r, g, b, a, opacity)
			if a == 0 {
				continue
			}
			o := x * 4
			row[o], row[o+1], row[o+2], row[o+3] = blend.SourceOver(r, g, b, a, row[o], row[o+1], row[o+2], row[o+3])
		}
	}
}

// edge is a directed triangle edge with its top-left ownership flag.
type edge struct {
	a, d  geom.Point
	owned bool
}

func newEdge(a, b geom.Point) edge {
	d := b.Sub(a)
	// Exactly one of an edge and its reverse is owned.
	owned := d.Y < 0 || (d.Y == 0 && d.X > 0)
	return edge{a: a, d: d, owned: owned}
}

func (e edge) contains(p geom.Point) bool {
	w := e.d.Cross(p.Sub(e.a))
	if w > 0 {
		return true
	}
	return w == 0 && e.owned
}
