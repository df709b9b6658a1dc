package mockup

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"math"

	"github.com/anthonynsimon/bild/transform"
)

// ExportOptions controls Export output.
type ExportOptions struct {
	// Scale multiplies the canvas size. Zero means 1.
	Scale float64

	// Compression selects the PNG compression level.
	Compression png.CompressionLevel
}

func (c *compositor) Export(ctx context.Context, def *MockupDefinition, snaps Snapshots, opts ExportOptions) ([]byte, error) {
	res := c.Render(ctx, def, snaps)
	if !res.Success {
		return nil, res.Err
	}
	for _, w := range res.Warnings {
		Logger().Warn("mockup: export warning", "warning", w)
	}

	img, err := scaleExport(res.Image, opts.Scale)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: opts.Compression}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("mockup: encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// scaleExport resizes the composite with a Lanczos filter. Premultiplied
// samples are filtered directly, which keeps edges against transparency
// free of dark fringes.
func scaleExport(pm *Pixmap, scale float64) (image.Image, error) {
	if scale == 0 || scale == 1 {
		return pm.RGBA(), nil
	}
	if scale < 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		return nil, fmt.Errorf("mockup: invalid export scale %v", scale)
	}
	w := max(1, int(math.Round(float64(pm.Width())*scale)))
	h := max(1, int(math.Round(float64(pm.Height())*scale)))
	if w > MaxCanvasDimension*2 || h > MaxCanvasDimension*2 {
		return nil, fmt.Errorf("mockup: export size %dx%d too large", w, h)
	}
	return transform.Resize(pm.RGBA(), w, h, transform.Lanczos), nil
}
