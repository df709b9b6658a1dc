// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package editor

import (
	"image"
	"image/color"
	"testing"

	"github.com/gogpu/mockup/geom"
)

func TestViewportFit(t *testing.T) {
	tests := []struct {
		name   string
		vp     Viewport
		scale  float64
		offset geom.Point
	}{
		{"exact 2x", Viewport{ImageSize: geom.Sz(200, 100), ViewSize: geom.Sz(400, 200), Margin: 1}, 2, geom.Pt(0, 0)},
		{"default margin", Viewport{ImageSize: geom.Sz(1000, 500), ViewSize: geom.Sz(1000, 1000)}, 0.9, geom.Pt(50, 275)},
		{"empty image", Viewport{ViewSize: geom.Sz(100, 100)}, 1, geom.Pt(0, 0)},
		{"empty view", Viewport{ImageSize: geom.Sz(100, 100)}, 1, geom.Pt(0, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, off := tt.vp.Fit()
			if !near(s, tt.scale) || !off.Near(tt.offset, 1e-9) {
				t.Errorf("Fit() = %v, %v; want %v, %v", s, off, tt.scale, tt.offset)
			}
		})
	}
}

func TestViewportRoundTrip(t *testing.T) {
	vp := Viewport{ImageSize: geom.Sz(1200, 800), ViewSize: geom.Sz(640, 480)}
	for _, p := range []geom.Point{{}, geom.Pt(1200, 800), geom.Pt(317.5, 42.25)} {
		if got := vp.ToImage(vp.ToScreen(p)); !got.Near(p, 1e-9) {
			t.Errorf("round trip %v = %v", p, got)
		}
	}
}

// newTestEditor maps a 200x100 image to a 400x200 view at scale 2 with the
// default quad (50,25)-(150,75).
func newTestEditor(opts ...Option) *Editor {
	opts = append([]Option{WithMargin(1)}, opts...)
	return New(geom.Sz(200, 100), geom.Sz(400, 200), geom.Quad{}, opts...)
}

func TestNewDefaultQuad(t *testing.T) {
	e := newTestEditor()
	if want := geom.RectQuad(50, 25, 100, 50); e.Quad() != want {
		t.Errorf("Quad() = %v, want %v", e.Quad(), want)
	}
	if e.State() != StateIdle {
		t.Errorf("State() = %v, want idle", e.State())
	}
}

func TestHitTest(t *testing.T) {
	e := newTestEditor()
	tests := []struct {
		name   string
		p      geom.Point
		corner geom.Corner
		hit    bool
	}{
		{"top left", geom.Pt(101, 51), geom.TopLeft, true},
		{"bottom right edge of radius", geom.Pt(300, 160), geom.BottomRight, true},
		{"center", geom.Pt(200, 100), 0, false},
		{"just outside", geom.Pt(100, 61), 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ok := e.HitTest(tt.p)
			if ok != tt.hit || (ok && c != tt.corner) {
				t.Errorf("HitTest(%v) = %v, %v; want %v, %v", tt.p, c, ok, tt.corner, tt.hit)
			}
		})
	}
}

func TestDragStateMachine(t *testing.T) {
	var changes []geom.Quad
	e := newTestEditor(WithOnChange(func(q geom.Quad) { changes = append(changes, q) }))

	if e.PointerMove(geom.Pt(10, 10)) {
		t.Fatal("PointerMove while idle changed the quad")
	}
	if e.PointerDown(geom.Pt(200, 100)) {
		t.Fatal("PointerDown away from handles started a drag")
	}
	if !e.PointerDown(geom.Pt(100, 50)) {
		t.Fatal("PointerDown on TL handle missed")
	}
	if c, ok := e.ActiveCorner(); !ok || c != geom.TopLeft {
		t.Fatalf("ActiveCorner() = %v, %v", c, ok)
	}

	if !e.PointerMove(geom.Pt(60, 30)) {
		t.Fatal("PointerMove rejected a valid move")
	}
	if got, want := e.Quad().TopLeft, geom.Pt(30, 15); got != want {
		t.Errorf("TopLeft = %v, want %v", got, want)
	}
	if len(changes) != 1 || changes[0] != e.Quad() {
		t.Errorf("onChange calls = %v", changes)
	}

	e.PointerUp()
	if e.State() != StateIdle {
		t.Error("PointerUp did not end the drag")
	}
	if e.PointerMove(geom.Pt(80, 40)) {
		t.Error("PointerMove after PointerUp changed the quad")
	}
	if len(changes) != 1 {
		t.Errorf("onChange called %d times, want 1", len(changes))
	}
}

func TestDragClampsToImage(t *testing.T) {
	e := newTestEditor()
	e.PointerDown(geom.Pt(100, 50))
	e.PointerMove(geom.Pt(-100, -300))
	if got := e.Quad().TopLeft; got != (geom.Point{}) {
		t.Errorf("TopLeft = %v, want (0,0)", got)
	}
}

func TestDragRejectsFoldedQuad(t *testing.T) {
	tests := []struct {
		name   string
		screen geom.Point
		accept bool
	}{
		{"bow tie", geom.Pt(320, 80), false},
		{"onto TR", geom.Pt(300, 50), false},
		{"concave", geom.Pt(240, 120), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEditor()
			before := e.Quad()
			e.PointerDown(geom.Pt(100, 50))
			if got := e.PointerMove(tt.screen); got != tt.accept {
				t.Fatalf("PointerMove() = %v, want %v", got, tt.accept)
			}
			if !tt.accept && e.Quad() != before {
				t.Errorf("quad changed to %v", e.Quad())
			}
			if e.State() != StateDragging {
				t.Error("rejected move ended the drag")
			}
		})
	}
}

func TestPointerLeaveEndsDrag(t *testing.T) {
	e := newTestEditor()
	e.PointerDown(geom.Pt(300, 150))
	e.PointerLeave()
	if _, ok := e.ActiveCorner(); ok || e.State() != StateIdle {
		t.Errorf("state after leave = %v", e.State())
	}
}

func TestReadout(t *testing.T) {
	e := newTestEditor()
	want := []string{"TL: 50.0, 25.0", "TR: 150.0, 25.0", "BR: 150.0, 75.0", "BL: 50.0, 75.0"}
	got := e.Readout()
	if len(got) != len(want) {
		t.Fatalf("Readout() = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestEdgesColoredByLeadingCorner(t *testing.T) {
	e := newTestEditor()
	for i, edge := range e.Edges() {
		from := geom.Corners[i]
		if edge.From != from || edge.To != from.Next() {
			t.Errorf("edge %d = %v->%v", i, edge.From, edge.To)
		}
		if edge.Color != HandleFor(from).Color {
			t.Errorf("edge %d color = %v", i, edge.Color)
		}
	}
	if got := e.Edges()[0].A; got != geom.Pt(100, 50) {
		t.Errorf("first edge starts at %v, want screen (100,50)", got)
	}
}

func TestHandleIdentity(t *testing.T) {
	want := map[geom.Corner]struct {
		label string
		color color.RGBA
	}{
		geom.TopLeft:     {"TL", color.RGBA{0xe5, 0x39, 0x35, 0xff}},
		geom.TopRight:    {"TR", color.RGBA{0x43, 0xa0, 0x47, 0xff}},
		geom.BottomRight: {"BR", color.RGBA{0x1e, 0x88, 0xe5, 0xff}},
		geom.BottomLeft:  {"BL", color.RGBA{0xff, 0xb3, 0x00, 0xff}},
	}
	for _, h := range Handles() {
		w := want[h.Corner]
		if h.Label != w.label || h.Color != w.color {
			t.Errorf("%v = %q %v, want %q %v", h.Corner, h.Label, h.Color, w.label, w.color)
		}
	}
}

func TestHandleForWraps(t *testing.T) {
	tests := []struct {
		in   geom.Corner
		want geom.Corner
	}{
		{geom.TopLeft, geom.TopLeft},
		{geom.BottomLeft, geom.BottomLeft},
		{4, geom.TopLeft},
		{6, geom.BottomRight},
		{255, geom.BottomLeft},
	}
	for _, tt := range tests {
		if got := HandleFor(tt.in).Corner; got != tt.want {
			t.Errorf("HandleFor(%d).Corner = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestDrawOverlay(t *testing.T) {
	e := newTestEditor()
	dst := image.NewRGBA(image.Rect(0, 0, 400, 200))
	e.DrawOverlay(dst)

	checks := []struct {
		name string
		x, y int
		want color.RGBA
	}{
		{"TL handle", 100, 50, HandleFor(geom.TopLeft).Color},
		{"BR handle", 300, 150, HandleFor(geom.BottomRight).Color},
		{"right edge", 299, 100, HandleFor(geom.TopRight).Color},
		{"inside quad", 200, 100, color.RGBA{}},
	}
	for _, c := range checks {
		if got := dst.RGBAAt(c.x, c.y); got != c.want {
			t.Errorf("%s at (%d,%d) = %v, want %v", c.name, c.x, c.y, got, c.want)
		}
	}

	// Labels draw some non-transparent pixels to the upper right of TL.
	var label bool
	for y := 30; y < 45 && !label; y++ {
		for x := 108; x < 125; x++ {
			if dst.RGBAAt(x, y).A != 0 {
				label = true
				break
			}
		}
	}
	if !label {
		t.Error("no TL label pixels drawn")
	}
}

func near(a, b float64) bool {
	d := a - b
	return d < 1e-9 && d > -1e-9
}
