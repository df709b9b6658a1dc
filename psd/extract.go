// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package psd

import (
	"fmt"
	"image"
	"io"

	"github.com/oklog/ulid/v2"

	"github.com/gogpu/mockup"
	"github.com/gogpu/mockup/geom"
)

// Defaults used by Extract.
const (
	DefaultName     = "Imported PSD"
	DefaultCategory = "imported"
	// CompositeSrc is the base layer source that refers to the merged
	// composite returned in Extraction.Composite.
	CompositeSrc = "psd:composite"
)

// ExtractOptions configures Extract. The zero value is usable.
type ExtractOptions struct {
	// Name of the resulting definition; DefaultName when empty.
	Name string
	// Category of the resulting definition; DefaultCategory when empty.
	Category string
	Tags     []string
	// BaseSrc is the base layer source; CompositeSrc when empty. Callers
	// that persist the composite elsewhere pass its location here.
	BaseSrc string
	// IncludeHidden also turns hidden smart objects into insert areas.
	IncludeHidden bool
}

// Extraction is the best-effort result of importing a PSD file.
type Extraction struct {
	Definition *mockup.MockupDefinition
	// Previews holds each layer's decoded pixels keyed by LayerInfo.Key;
	// smart object previews share the key of their insert area.
	Previews map[string]*image.NRGBA
	// Composite is the merged document image, nil if the file has none.
	Composite *image.NRGBA
	Document  *Document
	Warnings  []string
}

// Extract decodes a PSD file and derives a mockup definition from its smart
// objects: one insert area per smart object, in bottom-to-top order. Only an
// unreadable container is an error (a *mockup.ParseError); every other
// problem is reported in Extraction.Warnings.
func Extract(r io.Reader, opts ExtractOptions) (*Extraction, error) {
	doc, err := Decode(r)
	if err != nil {
		return nil, err
	}

	ex := &Extraction{
		Previews:  make(map[string]*image.NRGBA),
		Composite: doc.Composite,
		Document:  doc,
		Warnings:  append([]string(nil), doc.Warnings...),
	}
	def := &mockup.MockupDefinition{
		ID:         ulid.Make().String(),
		Name:       firstNonEmpty(opts.Name, DefaultName),
		Category:   firstNonEmpty(opts.Category, DefaultCategory),
		Tags:       append([]string{}, opts.Tags...),
		CanvasSize: geom.Sz(float64(doc.Width), float64(doc.Height)),
		Layers: mockup.Layers{
			Base: mockup.BaseLayer{Src: firstNonEmpty(opts.BaseSrc, CompositeSrc), Opacity: 1},
		},
		InsertAreas: []mockup.InsertArea{},
	}
	ex.Definition = def

	Walk(doc.Layers, func(l Layer, _ int) {
		info := l.Info()
		switch v := l.(type) {
		case *SmartObject:
			if v.Preview != nil {
				ex.Previews[info.Key()] = v.Preview
			} else {
				ex.warnf("smart object %q: no embedded preview", info.Name)
			}
			if info.Hidden && !opts.IncludeHidden {
				ex.warnf("smart object %q is hidden; skipped", info.Name)
				return
			}
			if area, ok := ex.insertArea(v); ok {
				def.InsertAreas = append(def.InsertAreas, area)
			}
		case *Pixel:
			if v.Preview != nil {
				ex.Previews[info.Key()] = v.Preview
			}
		case *Text:
			if v.Preview != nil {
				ex.Previews[info.Key()] = v.Preview
			}
		}
	})

	if len(def.InsertAreas) == 0 {
		ex.warnf("no smart object layers found")
	}
	mockup.Logger().Info("psd: extracted",
		"areas", len(def.InsertAreas),
		"previews", len(ex.Previews),
		"warnings", len(ex.Warnings))
	return ex, nil
}

// insertArea derives the placement of one smart object. The quad prefers the
// non-affine corners, then a rotated or skewed affine transform, then the
// layer bounds.
func (ex *Extraction) insertArea(so *SmartObject) (mockup.InsertArea, bool) {
	info := so.Info()
	bounds := geom.RectQuad(float64(info.Bounds.Min.X), float64(info.Bounds.Min.Y),
		float64(info.Bounds.Dx()), float64(info.Bounds.Dy()))

	quad, found := geom.Quad{}, false
	for _, cand := range []struct {
		name string
		q    *geom.Quad
	}{
		{"perspective", so.NonAffine},
		{"transform", so.Transform},
	} {
		if cand.q == nil || cand.q.IsAxisAligned(0.5) {
			continue
		}
		if cand.q.IsDegenerate() || !cand.q.IsSimple() {
			ex.warnf("smart object %q: unusable %s quad, using bounds", info.Name, cand.name)
			continue
		}
		quad, found = *cand.q, true
		break
	}
	if !found {
		switch {
		case so.NonAffine != nil && !so.NonAffine.IsDegenerate():
			quad = *so.NonAffine
		case so.Transform != nil && !so.Transform.IsDegenerate():
			quad = *so.Transform
		default:
			quad = bounds
		}
	}
	if quad.IsDegenerate() {
		ex.warnf("smart object %q has empty bounds; skipped", info.Name)
		return mockup.InsertArea{}, false
	}

	size := so.PlacedSize
	if size.IsEmpty() {
		if !bounds.IsDegenerate() {
			size = geom.Sz(float64(info.Bounds.Dx()), float64(info.Bounds.Dy()))
		} else {
			lo, hi := quad.Bounds()
			size = geom.Sz(hi.X-lo.X, hi.Y-lo.Y)
		}
	}

	return mockup.InsertArea{
		ID:           info.Key(),
		Name:         info.Name,
		Quad:         quad,
		ExpectedSize: size,
		Opacity:      float64(info.Opacity) / 255,
	}, true
}

func (ex *Extraction) warnf(format string, args ...any) {
	ex.Warnings = append(ex.Warnings, fmt.Sprintf(format, args...))
}

func firstNonEmpty(s ...string) string {
	for _, v := range s {
		if v != "" {
			return v
		}
	}
	return ""
}
