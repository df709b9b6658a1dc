// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package warp

import "math"

// Interpolation defines how source pixels are sampled.
type Interpolation uint8

const (
	// Bilinear interpolates between 4 neighboring pixels. Default.
	Bilinear Interpolation = iota

	// Nearest selects the closest pixel (no interpolation).
	Nearest
)

// String returns a string representation of the interpolation mode.
func (m Interpolation) String() string {
	switch m {
	case Nearest:
		return "Nearest"
	case Bilinear:
		return "Bilinear"
	default:
		return "Unknown"
	}
}

// Sample reads src at continuous pixel coordinates (x, y), where pixel
// (i, j) covers [i, i+1) x [j, j+1). Coordinates outside the surface are
// clamped to the edge. Premultiplied channels are interpolated directly.
func Sample(src Surface, x, y float64, mode Interpolation) (r, g, b, a uint8) {
	if mode == Nearest {
		return sampleNearest(src, x, y)
	}
	return sampleBilinear(src, x, y)
}

func sampleNearest(src Surface, x, y float64) (r, g, b, a uint8) {
	ix := clamp(int(math.Floor(x)), 0, src.Width-1)
	iy := clamp(int(math.Floor(y)), 0, src.Height-1)
	o := src.offset(ix, iy)
	return src.Pix[o], src.Pix[o+1], src.Pix[o+2], src.Pix[o+3]
}

func sampleBilinear(src Surface, x, y float64) (r, g, b, a uint8) {
	// Shift to pixel-center coordinates
	fx := x - 0.5
	fy := y - 0.5

	x0 := int(math.Floor(fx))
	y0 := int(math.Floor(fy))
	tx := fx - float64(x0)
	ty := fy - float64(y0)

	x1 := clamp(x0+1, 0, src.Width-1)
	y1 := clamp(y0+1, 0, src.Height-1)
	x0 = clamp(x0, 0, src.Width-1)
	y0 = clamp(y0, 0, src.Height-1)

	o00 := src.offset(x0, y0)
	o10 := src.offset(x1, y0)
	o01 := src.offset(x0, y1)
	o11 := src.offset(x1, y1)

	var out [4]uint8
	for c := 0; c < 4; c++ {
		v := lerp2D(
			float64(src.Pix[o00+c]), float64(src.Pix[o10+c]),
			float64(src.Pix[o01+c]), float64(src.Pix[o11+c]),
			tx, ty,
		)
		out[c] = uint8(math.Min(255, math.Max(0, v+0.5)))
	}
	// Interpolation can round a color channel past its alpha.
	for c := 0; c < 3; c++ {
		if out[c] > out[3] {
			out[c] = out[3]
		}
	}
	return out[0], out[1], out[2], out[3]
}

// lerp2D performs bilinear interpolation between four values.
func lerp2D(v00, v10, v01, v11, tx, ty float64) float64 {
	top := v00 + (v10-v00)*tx
	bottom := v01 + (v11-v01)*tx
	return top + (bottom-top)*ty
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
