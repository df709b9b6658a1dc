// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package editor

import (
	"image/color"

	"github.com/gogpu/mockup"
	"github.com/gogpu/mockup/geom"
)

// Handle is the fixed visual identity of one quad corner.
type Handle struct {
	Corner geom.Corner
	Label  string
	Color  color.RGBA
}

var handles = [4]Handle{
	{Corner: geom.TopLeft, Label: "TL", Color: rgba(mockup.Hex("#e53935"))},
	{Corner: geom.TopRight, Label: "TR", Color: rgba(mockup.Hex("#43a047"))},
	{Corner: geom.BottomRight, Label: "BR", Color: rgba(mockup.Hex("#1e88e5"))},
	{Corner: geom.BottomLeft, Label: "BL", Color: rgba(mockup.Hex("#ffb300"))},
}

// Handles returns the four corner handles in TL, TR, BR, BL order.
func Handles() [4]Handle { return handles }

// HandleFor returns the handle of corner c. Corners wrap modulo 4, as in
// geom.Quad.Corner.
func HandleFor(c geom.Corner) Handle { return handles[c%4] }

// Edge is one side of the quad, drawn in the color of its leading corner.
type Edge struct {
	From, To geom.Corner
	A, B     geom.Point
	Color    color.RGBA
}

// EdgesOf returns the four edges of q, clockwise from the top edge.
func EdgesOf(q geom.Quad) [4]Edge {
	var edges [4]Edge
	for i, c := range geom.Corners {
		next := c.Next()
		edges[i] = Edge{
			From:  c,
			To:    next,
			A:     q.Corner(c),
			B:     q.Corner(next),
			Color: HandleFor(c).Color,
		}
	}
	return edges
}

func rgba(c mockup.RGBA) color.RGBA {
	n := c.Color().(color.NRGBA)
	return color.RGBA{R: n.R, G: n.G, B: n.B, A: n.A}
}
