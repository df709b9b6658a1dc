package mockup

import (
	"context"
	"errors"
	"fmt"
	"image"

	xdraw "golang.org/x/image/draw"

	"github.com/gogpu/mockup/geom"
)

// composite runs the compositing passes in order: base layer, insert areas
// in array order (later areas occlude earlier ones), then the overlay.
func (c *compositor) composite(ctx context.Context, def *MockupDefinition, snaps Snapshots) (*Pixmap, []string, error) {
	if err := def.Validate(); err != nil {
		return nil, nil, err
	}
	w, h := def.CanvasSize.Pixels()
	canvas := NewPixmap(w, h)
	var warnings []string

	// Base pass. Without a base there is nothing to place designs into.
	base, err := c.canvasLayer(ctx, def.Layers.Base.Src, w, h)
	if err != nil {
		return nil, nil, &DefinitionError{Field: "layers.base.src", Reason: "cannot load base layer", Err: err}
	}
	if err := c.blend(canvas.target(), base.target(), BlendNormal, def.Layers.Base.Opacity); err != nil {
		return nil, nil, fmt.Errorf("mockup: base layer: %w", err)
	}

	// Design pass.
	for i, area := range def.InsertAreas {
		if err := ctx.Err(); err != nil {
			return nil, warnings, err
		}
		key := area.Key(i)
		snap := snaps.lookup(key)
		if snap == nil {
			Logger().Debug("mockup: no snapshot for insert area, skipping", "area", key)
			continue
		}
		if area.Quad.IsDegenerate() {
			warnings = append(warnings, fmt.Sprintf("insert area %q: degenerate quad, skipped", key))
			Logger().Warn("mockup: degenerate insert area skipped", "area", key)
			continue
		}

		size := area.ExpectedSize
		if size.IsEmpty() {
			size = geom.Sz(float64(snap.Image.Width()), float64(snap.Image.Height()))
		}
		op := WarpOp{
			Source:        snap.Image.target(),
			SourceSize:    size,
			Quad:          area.Quad,
			Opacity:       area.Opacity,
			Interpolation: c.opts.interpolation,
		}
		if err := c.warp(canvas.target(), op); err != nil {
			if errors.Is(err, geom.ErrDegenerate) {
				warnings = append(warnings, fmt.Sprintf("insert area %q: %v, skipped", key, err))
				Logger().Warn("mockup: insert area skipped", "area", key, "err", err)
				continue
			}
			return nil, warnings, fmt.Errorf("mockup: insert area %q: %w", key, err)
		}
	}

	// Lighting pass.
	if ov := def.Layers.Overlay; ov != nil {
		layer, err := c.canvasLayer(ctx, ov.Src, w, h)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("overlay skipped: %v", err))
			Logger().Warn("mockup: overlay skipped", "src", ov.Src, "err", err)
		} else if err := c.blend(canvas.target(), layer.target(), ov.BlendMode, ov.Opacity); err != nil {
			return nil, warnings, fmt.Errorf("mockup: overlay: %w", err)
		}
	}

	return canvas, warnings, nil
}

// loadImage fetches and decodes src once per session.
func (c *compositor) loadImage(ctx context.Context, src string) (*Pixmap, error) {
	return c.images.GetOrLoad(src, func() (*Pixmap, error) {
		data, err := c.resolver.Resolve(ctx, src)
		if err != nil {
			return nil, &AssetLoadError{Src: src, Err: err}
		}
		pm, err := DecodeImage(data)
		if err != nil {
			return nil, &AssetLoadError{Src: src, Err: err}
		}
		Logger().Debug("mockup: decoded asset", "src", src, "width", pm.Width(), "height", pm.Height())
		return pm, nil
	})
}

// canvasLayer returns src scaled to cover a w×h canvas, center-cropped.
// Scaled versions are cached alongside the decoded originals.
func (c *compositor) canvasLayer(ctx context.Context, src string, w, h int) (*Pixmap, error) {
	img, err := c.loadImage(ctx, src)
	if err != nil {
		return nil, err
	}
	if img.Width() == w && img.Height() == h {
		return img, nil
	}
	key := fmt.Sprintf("%s#cover=%dx%d", src, w, h)
	return c.images.GetOrLoad(key, func() (*Pixmap, error) {
		return coverScale(img, w, h), nil
	})
}

// coverScale scales src uniformly so it covers w×h and crops the overflow
// symmetrically.
func coverScale(src *Pixmap, w, h int) *Pixmap {
	dst := NewPixmap(w, h)
	sw, sh := src.Width(), src.Height()
	if sw == 0 || sh == 0 {
		return dst
	}

	scale := max(float64(w)/float64(sw), float64(h)/float64(sh))
	cw := min(sw, int(float64(w)/scale+0.5))
	ch := min(sh, int(float64(h)/scale+0.5))
	x0 := (sw - cw) / 2
	y0 := (sh - ch) / 2

	xdraw.CatmullRom.Scale(dst.RGBA(), dst.Bounds(), src.RGBA(), image.Rect(x0, y0, x0+cw, y0+ch), xdraw.Src, nil)
	return dst
}
