package mockup

import (
	"fmt"

	"github.com/gogpu/mockup/geom"
	"github.com/gogpu/mockup/internal/blend"
)

// MaxCanvasDimension bounds the canvas width and height a definition may
// request.
const MaxCanvasDimension = 16384

// BlendMode is the CSS keyword of an overlay blend mode.
type BlendMode string

// Supported overlay blend modes.
const (
	BlendNormal    BlendMode = "normal"
	BlendMultiply  BlendMode = "multiply"
	BlendScreen    BlendMode = "screen"
	BlendOverlay   BlendMode = "overlay"
	BlendSoftLight BlendMode = "soft-light"
	BlendHardLight BlendMode = "hard-light"
)

// Valid reports whether m is a supported mode. The empty mode means normal.
func (m BlendMode) Valid() bool {
	_, ok := blend.ParseMode(string(m))
	return ok
}

func (m BlendMode) internal() blend.Mode {
	mode, _ := blend.ParseMode(string(m))
	return mode
}

// BaseLayer is the photographed scene the designs are placed into.
type BaseLayer struct {
	Src     string  `json:"src"`
	Opacity float64 `json:"opacity"`
}

// OverlayLayer is the lighting/shadow pass drawn over the full composite.
type OverlayLayer struct {
	Src       string    `json:"src"`
	Opacity   float64   `json:"opacity"`
	BlendMode BlendMode `json:"blendMode"`
}

// Layers groups the fixed layers of a mockup.
type Layers struct {
	Base    BaseLayer     `json:"base"`
	Overlay *OverlayLayer `json:"overlay,omitempty"`
}

// InsertArea is one placement slot for a design.
type InsertArea struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`

	// Quad is the destination region in canvas space.
	Quad geom.Quad `json:"quad"`

	// ExpectedSize is the nominal size of the source rectangle assumed for
	// the warp. When empty, the snapshot's own size is used.
	ExpectedSize geom.Size `json:"expectedSize"`

	// Opacity in [0, 1]; values outside the range are clamped.
	Opacity float64 `json:"opacity"`
}

// Key returns the snapshot key for the area at position index: its ID, else
// its Name, else "area-<index>".
func (a InsertArea) Key(index int) string {
	switch {
	case a.ID != "":
		return a.ID
	case a.Name != "":
		return a.Name
	default:
		return fmt.Sprintf("area-%d", index)
	}
}

// MockupDefinition describes a mockup scene. It is treated as immutable
// configuration: the engine only reads it.
//
// InsertAreas order is z-order, ascending: later areas are drawn on top.
type MockupDefinition struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Category    string       `json:"category"`
	Tags        []string     `json:"tags"`
	CanvasSize  geom.Size    `json:"canvasSize"`
	Layers      Layers       `json:"layers"`
	InsertAreas []InsertArea `json:"insertAreas"`
}

// Validate checks the parts of the definition a render cannot proceed
// without. Degenerate (but finite) insert quads are not errors here; the
// pipeline skips them with a warning.
func (d *MockupDefinition) Validate() error {
	if d == nil {
		return &DefinitionError{Field: "definition", Reason: "is nil"}
	}
	w, h := d.CanvasSize.Pixels()
	if d.CanvasSize.IsEmpty() || w <= 0 || h <= 0 {
		return &DefinitionError{Field: "canvasSize", Reason: fmt.Sprintf("must be positive, got %vx%v", d.CanvasSize.Width, d.CanvasSize.Height)}
	}
	if w > MaxCanvasDimension || h > MaxCanvasDimension {
		return &DefinitionError{Field: "canvasSize", Reason: fmt.Sprintf("exceeds %d pixels", MaxCanvasDimension)}
	}
	if d.Layers.Base.Src == "" {
		return &DefinitionError{Field: "layers.base.src", Reason: "no base layer"}
	}
	if ov := d.Layers.Overlay; ov != nil {
		if ov.Src == "" {
			return &DefinitionError{Field: "layers.overlay.src", Reason: "overlay without source"}
		}
		if !ov.BlendMode.Valid() {
			return &DefinitionError{Field: "layers.overlay.blendMode", Reason: fmt.Sprintf("unsupported mode %q", ov.BlendMode)}
		}
	}
	for i, area := range d.InsertAreas {
		if !area.Quad.IsFinite() {
			return &DefinitionError{Field: fmt.Sprintf("insertAreas[%d].quad", i), Reason: "non-finite coordinates"}
		}
		if area.ExpectedSize.Width < 0 || area.ExpectedSize.Height < 0 {
			return &DefinitionError{Field: fmt.Sprintf("insertAreas[%d].expectedSize", i), Reason: "negative size"}
		}
	}
	return nil
}
