// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package warp implements the CPU side of mockup compositing: bilinear
// sampling, triangle rasterization and the triangle-affine approximation of
// a perspective warp.
package warp

import "errors"

// ErrSizeMismatch is returned when two surfaces that must match do not.
var ErrSizeMismatch = errors.New("warp: surface size mismatch")

// Surface is a view of a premultiplied RGBA8 pixel buffer.
type Surface struct {
	Pix           []uint8
	Width, Height int
	Stride        int // bytes per row
}

// NewSurface allocates a cleared surface.
func NewSurface(width, height int) Surface {
	return Surface{
		Pix:    make([]uint8, width*height*4),
		Width:  width,
		Height: height,
		Stride: width * 4,
	}
}

// Empty reports whether the surface has no pixels.
func (s Surface) Empty() bool {
	return s.Width <= 0 || s.Height <= 0 || len(s.Pix) < s.Stride*(s.Height-1)+s.Width*4
}

// offset returns the byte index of pixel (x, y).
func (s Surface) offset(x, y int) int {
	return y*s.Stride + x*4
}

// Row returns the bytes of row y.
func (s Surface) Row(y int) []uint8 {
	o := y * s.Stride
	return s.Pix[o : o+s.Width*4]
}
