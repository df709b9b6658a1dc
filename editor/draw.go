// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package editor

import (
	"image"
	"image/draw"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/gogpu/mockup/geom"
)

const (
	edgeWidth    = 2
	handleRadius = 6
	// kappa places cubic control points for a quarter-circle arc.
	kappa = 0.5522847498
)

// DrawOverlay paints the quad edges, corner handles and their labels over
// dst in screen space. Handles are filled circles with a white ring; labels
// sit just above and to the right of each handle.
func (e *Editor) DrawOverlay(dst draw.Image) {
	b := dst.Bounds()
	if b.Empty() {
		return
	}
	origin := geom.Pt(float64(b.Min.X), float64(b.Min.Y))

	for _, edge := range e.Edges() {
		z := vector.NewRasterizer(b.Dx(), b.Dy())
		strokeLine(z, edge.A.Sub(origin), edge.B.Sub(origin), edgeWidth)
		z.Draw(dst, b, image.NewUniform(edge.Color), image.Point{})
	}

	pos := e.HandlePositions()
	for _, h := range handles {
		p := pos[h.Corner].Sub(origin)

		z := vector.NewRasterizer(b.Dx(), b.Dy())
		circle(z, p, handleRadius+1.5)
		z.Draw(dst, b, image.White, image.Point{})

		z = vector.NewRasterizer(b.Dx(), b.Dy())
		circle(z, p, handleRadius)
		z.Draw(dst, b, image.NewUniform(h.Color), image.Point{})
	}

	d := &font.Drawer{
		Dst:  dst,
		Face: basicfont.Face7x13,
	}
	for _, h := range handles {
		p := pos[h.Corner]
		d.Src = image.NewUniform(h.Color)
		d.Dot = fixed.P(int(math.Round(p.X))+handleRadius+2, int(math.Round(p.Y))-handleRadius-2)
		d.DrawString(h.Label)
	}
}

// strokeLine adds a segment of the given width as a filled rectangle.
func strokeLine(z *vector.Rasterizer, a, b geom.Point, width float64) {
	d := b.Sub(a)
	l := d.Length()
	if l == 0 {
		return
	}
	n := geom.Pt(-d.Y/l, d.X/l).Mul(width / 2)
	p0, p1, p2, p3 := a.Add(n), b.Add(n), b.Sub(n), a.Sub(n)
	z.MoveTo(float32(p0.X), float32(p0.Y))
	z.LineTo(float32(p1.X), float32(p1.Y))
	z.LineTo(float32(p2.X), float32(p2.Y))
	z.LineTo(float32(p3.X), float32(p3.Y))
	z.ClosePath()
}

// circle adds a closed circle built from four cubic arcs.
func circle(z *vector.Rasterizer, c geom.Point, r float64) {
	k := r * kappa
	x, y := float32(c.X), float32(c.Y)
	rf, kf := float32(r), float32(k)
	z.MoveTo(x+rf, y)
	z.CubeTo(x+rf, y+kf, x+kf, y+rf, x, y+rf)
	z.CubeTo(x-kf, y+rf, x-rf, y+kf, x-rf, y)
	z.CubeTo(x-rf, y-kf, x-kf, y-rf, x, y-rf)
	z.CubeTo(x+kf, y-rf, x+rf, y-kf, x+rf, y)
	z.ClosePath()
}
