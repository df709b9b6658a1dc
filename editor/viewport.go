// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package editor

import (
	"math"

	"github.com/gogpu/mockup/geom"
)

// DefaultMargin leaves a 5% border on each side of the fitted image.
const DefaultMargin = 0.9

// Viewport maps between image space (the background's natural pixels) and
// screen space (the editor view). The image is scaled uniformly to fit the
// view, shrunk by Margin, and centered.
type Viewport struct {
	ImageSize geom.Size
	ViewSize  geom.Size
	Margin    float64 // fraction of the fitted size to use; 0 means DefaultMargin
}

// Fit returns the image-to-screen scale and the screen position of the
// image origin. Empty image or view sizes yield scale 1 and zero offset.
func (v Viewport) Fit() (scale float64, offset geom.Point) {
	if v.ImageSize.IsEmpty() || v.ViewSize.IsEmpty() {
		return 1, geom.Point{}
	}
	margin := v.Margin
	if margin <= 0 || math.IsNaN(margin) {
		margin = DefaultMargin
	}
	scale = math.Min(v.ViewSize.Width/v.ImageSize.Width, v.ViewSize.Height/v.ImageSize.Height) * margin
	offset = geom.Pt(
		(v.ViewSize.Width-v.ImageSize.Width*scale)/2,
		(v.ViewSize.Height-v.ImageSize.Height*scale)/2,
	)
	return scale, offset
}

// ToScreen converts an image-space point to screen space.
func (v Viewport) ToScreen(p geom.Point) geom.Point {
	s, off := v.Fit()
	return geom.Pt(p.X*s+off.X, p.Y*s+off.Y)
}

// ToImage converts a screen-space point to image space.
func (v Viewport) ToImage(p geom.Point) geom.Point {
	s, off := v.Fit()
	return geom.Pt((p.X-off.X)/s, (p.Y-off.Y)/s)
}

// QuadToScreen converts every corner of q to screen space.
func (v Viewport) QuadToScreen(q geom.Quad) geom.Quad {
	return q.Transform(v.ToScreen)
}
