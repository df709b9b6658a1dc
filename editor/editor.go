// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package editor models the interactive quad editor used to place an insert
// area on a mockup photo.
//
// The editor is UI-toolkit agnostic: the host forwards pointer events in
// screen coordinates and redraws from Quad, Edges, Handles and Readout (or
// DrawOverlay) after every change. All quad coordinates the editor reports
// are in image space.
//
// Drags that would fold the quad (self-intersecting edges or three collinear
// corners) are rejected: the dragged corner stays at its last valid
// position. Concave quads are allowed.
package editor

import (
	"fmt"

	"github.com/gogpu/mockup"
	"github.com/gogpu/mockup/geom"
)

// DefaultHandleRadius is the hit radius of a corner handle, in screen pixels.
const DefaultHandleRadius = 10

// State is the drag state of the editor.
type State uint8

const (
	// StateIdle means no corner is being dragged.
	StateIdle State = iota
	// StateDragging means a corner follows the pointer.
	StateDragging
)

func (s State) String() string {
	if s == StateDragging {
		return "dragging"
	}
	return "idle"
}

// Option configures an Editor.
type Option func(*Editor)

// WithHandleRadius sets the handle hit radius in screen pixels.
func WithHandleRadius(r float64) Option {
	return func(e *Editor) {
		if r > 0 {
			e.handleRadius = r
		}
	}
}

// WithMargin sets the viewport fit margin (see Viewport).
func WithMargin(m float64) Option {
	return func(e *Editor) { e.vp.Margin = m }
}

// WithOnChange registers the callback invoked with the updated quad after
// every accepted corner move.
func WithOnChange(fn func(geom.Quad)) Option {
	return func(e *Editor) { e.onChange = fn }
}

// Editor holds the quad being edited and the drag state machine.
// It is not safe for concurrent use; drive it from the UI goroutine.
type Editor struct {
	vp           Viewport
	quad         geom.Quad
	state        State
	active       geom.Corner
	handleRadius float64
	onChange     func(geom.Quad)
}

// New creates an editor for an image of imageSize shown in a view of
// viewSize. An empty quad is replaced by DefaultQuad(imageSize).
func New(imageSize, viewSize geom.Size, quad geom.Quad, opts ...Option) *Editor {
	e := &Editor{
		vp:           Viewport{ImageSize: imageSize, ViewSize: viewSize},
		quad:         quad,
		handleRadius: DefaultHandleRadius,
	}
	if quad == (geom.Quad{}) {
		e.quad = DefaultQuad(imageSize)
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// DefaultQuad is the starting quad for a new insert area: the centered
// rectangle covering half of each image dimension.
func DefaultQuad(imageSize geom.Size) geom.Quad {
	w, h := imageSize.Width, imageSize.Height
	return geom.RectQuad(w/4, h/4, w/2, h/2)
}

// Quad returns the current quad in image space.
func (e *Editor) Quad() geom.Quad { return e.quad }

// SetQuad replaces the quad, e.g. after the definition was edited elsewhere.
// It does not invoke the change callback.
func (e *Editor) SetQuad(q geom.Quad) { e.quad = q }

// Viewport returns the current image/screen mapping.
func (e *Editor) Viewport() Viewport { return e.vp }

// SetImageSize updates the mapping once the background image has loaded.
func (e *Editor) SetImageSize(s geom.Size) { e.vp.ImageSize = s }

// SetViewSize updates the mapping after the view was resized.
func (e *Editor) SetViewSize(s geom.Size) { e.vp.ViewSize = s }

// State returns the drag state.
func (e *Editor) State() State { return e.state }

// ActiveCorner returns the dragged corner, if any.
func (e *Editor) ActiveCorner() (geom.Corner, bool) {
	return e.active, e.state == StateDragging
}

// HitTest returns the corner whose handle contains the screen point p.
// When handles overlap, the nearest wins.
func (e *Editor) HitTest(p geom.Point) (geom.Corner, bool) {
	best, found := geom.TopLeft, false
	bestDist := e.handleRadius
	for _, c := range geom.Corners {
		d := e.vp.ToScreen(e.quad.Corner(c)).Distance(p)
		if d <= bestDist {
			best, bestDist, found = c, d, true
		}
	}
	return best, found
}

// PointerDown starts dragging the corner under p. It reports whether a
// handle was hit.
func (e *Editor) PointerDown(p geom.Point) bool {
	c, ok := e.HitTest(p)
	if !ok {
		return false
	}
	e.state, e.active = StateDragging, c
	mockup.Logger().Debug("editor: drag start", "corner", c)
	return true
}

// PointerMove moves the dragged corner to p, clamped to the image bounds.
// It reports whether the quad changed. Moves while idle are ignored, and
// moves that would fold the quad are rejected.
func (e *Editor) PointerMove(p geom.Point) bool {
	if e.state != StateDragging {
		return false
	}
	ip := e.vp.ToImage(p)
	if !ip.IsFinite() {
		return false
	}
	ip = ip.Clamp(e.vp.ImageSize.Width, e.vp.ImageSize.Height)

	if ip == e.quad.Corner(e.active) {
		return false
	}
	next := e.quad.WithCorner(e.active, ip)
	if !next.IsSimple() {
		return false
	}
	e.quad = next
	if e.onChange != nil {
		e.onChange(next)
	}
	return true
}

// PointerUp ends any drag.
func (e *Editor) PointerUp() { e.endDrag() }

// PointerLeave ends any drag; the pointer left the view.
func (e *Editor) PointerLeave() { e.endDrag() }

func (e *Editor) endDrag() {
	if e.state == StateDragging {
		mockup.Logger().Debug("editor: drag end", "corner", e.active, "quad", e.quad)
	}
	e.state = StateIdle
}

// Edges returns the quad's edges in screen space.
func (e *Editor) Edges() [4]Edge {
	return EdgesOf(e.vp.QuadToScreen(e.quad))
}

// HandlePositions returns the screen position of each corner handle, indexed
// by geom.Corner.
func (e *Editor) HandlePositions() [4]geom.Point {
	return e.vp.QuadToScreen(e.quad).Points()
}

// Readout returns one line per corner with its image-space coordinates,
// e.g. "TL: 200.0, 150.0".
func (e *Editor) Readout() []string {
	lines := make([]string, 0, 4)
	for _, h := range handles {
		p := e.quad.Corner(h.Corner)
		lines = append(lines, fmt.Sprintf("%s: %.1f, %.1f", h.Label, p.X, p.Y))
	}
	return lines
}
