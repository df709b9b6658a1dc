// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package psd

import (
	"image"
	"strconv"

	"github.com/gogpu/mockup/geom"
)

// MaxDepth bounds group nesting in the layer tree. Deeper groups are
// flattened into their ancestor at this depth with a warning.
const MaxDepth = 64

// Layer is one node of the layer tree: *Group, *SmartObject, *Pixel or
// *Text. Use a type switch to inspect it.
type Layer interface {
	Info() *LayerInfo
	isLayer()
}

// LayerInfo holds the properties every layer record carries.
type LayerInfo struct {
	// Index is the record's position in the file's bottom-to-top list.
	Index int
	// ID is the persistent layer ID from "lyid"; 0 when absent.
	ID      uint32
	Name    string
	Bounds  image.Rectangle
	Opacity uint8
	Hidden  bool
	// BlendKey is the 4-byte blend mode key, e.g. "norm" or "mul ".
	BlendKey string
}

// Key returns a stable identifier for the layer: "layer-<id>" when the file
// has persistent IDs, else "layer-index-<index>".
func (l *LayerInfo) Key() string {
	if l.ID != 0 {
		return "layer-" + strconv.FormatUint(uint64(l.ID), 10)
	}
	return "layer-index-" + strconv.Itoa(l.Index)
}

// Group is a layer folder. Children are in bottom-to-top order.
type Group struct {
	LayerInfo
	Open     bool
	Children []Layer
}

// SmartObject is a placed layer whose content is an embedded or linked
// document.
type SmartObject struct {
	LayerInfo
	// UniqueID identifies the placed content.
	UniqueID string
	// PlacedSize is the content's nominal size; empty when unknown.
	PlacedSize geom.Size
	// Transform is the affine placement of the content's corners, and
	// NonAffine the final corners including any perspective distortion.
	// Both are in TL, TR, BR, BL order and nil when absent.
	Transform *geom.Quad
	NonAffine *geom.Quad
	// Descriptor is the parsed SoLd descriptor, when present.
	Descriptor *Descriptor
	Preview    *image.NRGBA
}

// Pixel is an ordinary raster layer.
type Pixel struct {
	LayerInfo
	Preview *image.NRGBA
}

// Text is a type layer.
type Text struct {
	LayerInfo
	Text    string
	Preview *image.NRGBA
}

func (g *Group) Info() *LayerInfo       { return &g.LayerInfo }
func (s *SmartObject) Info() *LayerInfo { return &s.LayerInfo }
func (p *Pixel) Info() *LayerInfo       { return &p.LayerInfo }
func (t *Text) Info() *LayerInfo        { return &t.LayerInfo }

func (*Group) isLayer()       {}
func (*SmartObject) isLayer() {}
func (*Pixel) isLayer()       {}
func (*Text) isLayer()        {}

// Walk calls fn for every layer in the forest, depth-first, parents before
// children. Recursion stops at MaxDepth.
func Walk(layers []Layer, fn func(l Layer, depth int)) {
	walk(layers, 0, fn)
}

func walk(layers []Layer, depth int, fn func(Layer, int)) {
	if depth > MaxDepth {
		return
	}
	for _, l := range layers {
		fn(l, depth)
		if g, ok := l.(*Group); ok {
			walk(g.Children, depth+1, fn)
		}
	}
}
