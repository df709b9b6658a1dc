// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package warp

import (
	"github.com/gogpu/mockup/geom"
	"github.com/gogpu/mockup/internal/blend"
	"github.com/gogpu/mockup/internal/parallel"
)

// Quad warps tex onto the destination quad using the triangle-affine
// approximation: the quad is split along its TR-BL diagonal and each half is
// drawn with its own exact affine map. All four corners map exactly; the
// interior approximates true perspective.
//
// Returns geom.ErrDegenerate if the quad or texture has no area.
func Quad(dst Surface, tex Texture, q geom.Quad, opacity uint8, mode Interpolation) error {
	if tex.Size.IsEmpty() {
		tex.Size = geom.Sz(float64(tex.Surface.Width), float64(tex.Surface.Height))
	}
	if tex.Size.IsEmpty() || tex.Surface.Empty() || q.IsDegenerate() {
		return geom.ErrDegenerate
	}
	for _, tri := range geom.SplitTriangles(tex.Size, q) {
		fwd, err := tri.Affine()
		if err != nil {
			return err
		}
		inv, err := fwd.Invert()
		if err != nil {
			return err
		}
		FillTriangle(dst, tri.Dst, inv, tex, opacity, mode)
	}
	return nil
}

// Homography warps tex onto q by evaluating the exact inverse projective
// transform at every destination pixel center inside the quad. It is the
// CPU reference for the GPU shader and is used for per-operation fallback.
func Homography(dst Surface, tex Texture, q geom.Quad, opacity uint8, mode Interpolation) error {
	if tex.Size.IsEmpty() {
		tex.Size = geom.Sz(float64(tex.Surface.Width), float64(tex.Surface.Height))
	}
	if tex.Surface.Empty() {
		return geom.ErrDegenerate
	}
	h, err := geom.SolveHomography(tex.Size, q)
	if err != nil {
		return err
	}
	inv, err := h.Invert()
	if err != nil {
		return err
	}
	if dst.Empty() || opacity == 0 {
		return nil
	}

	minPt, maxPt := q.Bounds()
	x0 := clamp(int(minPt.X), 0, dst.Width)
	x1 := clamp(int(maxPt.X)+1, 0, dst.Width)
	y0 := clamp(int(minPt.Y), 0, dst.Height)
	y1 := clamp(int(maxPt.Y)+1, 0, dst.Height)

	sx := float64(tex.Surface.Width) / tex.Size.Width
	sy := float64(tex.Surface.Height) / tex.Size.Height
	parallel.Default().Rows(y0, y1, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			homographyRow(dst.Row(y), x0, x1, y, inv, tex, sx, sy, opacity, mode)
		}
	})
	return nil
}

func homographyRow(row []uint8, x0, x1, y int, inv geom.Homography, tex Texture, sx, sy float64, opacity uint8, mode Interpolation) {
	for x := x0; x < x1; x++ {
		sp, ok := inv.Apply(geom.Pt(float64(x)+0.5, float64(y)+0.5))
		if !ok || sp.X < 0 || sp.Y < 0 || sp.X >= tex.Size.Width || sp.Y >= tex.Size.Height {
			continue
		}
		r, g, b, a := Sample(tex.Surface, sp.X*sx, sp.Y*sy, mode)
		r, g, b, a = blend.Scale(r, g, b, a, opacity)
		if a == 0 {
			continue
		}
		o := x * 4
		row[o], row[o+1], row[o+2], row[o+3] = blend.SourceOver(r, g, b, a, row[o], row[o+1], row[o+2], row[o+3])
	}
}

// Composite blends src over the whole of dst with the given mode and
// opacity. Both surfaces must have the same dimensions.
func Composite(dst, src Surface, mode blend.Mode, opacity uint8) error {
	if dst.Width != src.Width || dst.Height != src.Height {
		return ErrSizeMismatch
	}
	parallel.Default().Rows(0, dst.Height, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			blend.Span(dst.Row(y), src.Row(y), mode, opacity)
		}
	})
	return nil
}
