package mockup

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"os"
)

// Pixmap is a rectangular premultiplied RGBA buffer, 4 bytes per pixel, rows
// tightly packed. It is the raster type shared by every backend.
type Pixmap struct {
	width  int
	height int
	data   []uint8 // premultiplied RGBA
}

// NewPixmap creates a transparent pixmap with the given dimensions.
func NewPixmap(width, height int) *Pixmap {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Pixmap{
		width:  width,
		height: height,
		data:   make([]uint8, width*height*4),
	}
}

// Width returns the width of the pixmap.
func (p *Pixmap) Width() int {
	return p.width
}

// Height returns the height of the pixmap.
func (p *Pixmap) Height() int {
	return p.height
}

// Data returns the raw pixel data (premultiplied RGBA).
func (p *Pixmap) Data() []uint8 {
	return p.data
}

// Clone returns a deep copy.
func (p *Pixmap) Clone() *Pixmap {
	c := &Pixmap{width: p.width, height: p.height, data: make([]uint8, len(p.data))}
	copy(c.data, p.data)
	return c
}

// SetPixel sets the color of a single pixel.
func (p *Pixmap) SetPixel(x, y int, c RGBA) {
	if x < 0 || x >= p.width || y < 0 || y >= p.height {
		return
	}
	i := (y*p.width + x) * 4
	p.data[i], p.data[i+1], p.data[i+2], p.data[i+3] = c.premultiplied()
}

// PixelAt returns the raw premultiplied bytes of a pixel. Out-of-bounds
// coordinates yield transparent black.
func (p *Pixmap) PixelAt(x, y int) (r, g, b, a uint8) {
	if x < 0 || x >= p.width || y < 0 || y >= p.height {
		return 0, 0, 0, 0
	}
	i := (y*p.width + x) * 4
	return p.data[i], p.data[i+1], p.data[i+2], p.data[i+3]
}

// Clear fills the entire pixmap with a color.
func (p *Pixmap) Clear(c RGBA) {
	r, g, b, a := c.premultiplied()

	for i := 0; i < len(p.data); i += 4 {
		p.data[i+0] = r
		p.data[i+1] = g
		p.data[i+2] = b
		p.data[i+3] = a
	}
}

// RGBA returns an *image.RGBA view sharing the pixmap's memory. The standard
// library's RGBA is premultiplied too, so no conversion is needed.
func (p *Pixmap) RGBA() *image.RGBA {
	return &image.RGBA{
		Pix:    p.data,
		Stride: p.width * 4,
		Rect:   image.Rect(0, 0, p.width, p.height),
	}
}

// FromImage creates a pixmap from an image.
func FromImage(img image.Image) *Pixmap {
	if pm, ok := img.(*Pixmap); ok {
		return pm.Clone()
	}
	bounds := img.Bounds()
	pm := NewPixmap(bounds.Dx(), bounds.Dy())
	draw.Draw(pm.RGBA(), pm.Bounds(), img, bounds.Min, draw.Src)
	return pm
}

// EncodePNG writes the pixmap as a PNG.
func (p *Pixmap) EncodePNG(w io.Writer) error {
	return png.Encode(w, p.RGBA())
}

// PNG returns the PNG encoding of the pixmap.
func (p *Pixmap) PNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := p.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SavePNG saves the pixmap to a PNG file.
func (p *Pixmap) SavePNG(path string) error {
	f, err := os.Create(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return err
	}
	if err := p.EncodePNG(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// target exposes the pixmap as a renderer target.
func (p *Pixmap) target() RenderTarget {
	return RenderTarget{Data: p.data, Width: p.width, Height: p.height, Stride: p.width * 4}
}

// At implements the image.Image interface.
func (p *Pixmap) At(x, y int) color.Color {
	r, g, b, a := p.PixelAt(x, y)
	return color.RGBA{R: r, G: g, B: b, A: a}
}

// Bounds implements the image.Image interface.
func (p *Pixmap) Bounds() image.Rectangle {
	return image.Rect(0, 0, p.width, p.height)
}

// ColorModel implements the image.Image interface.
func (p *Pixmap) ColorModel() color.Model {
	return color.RGBAModel
}
