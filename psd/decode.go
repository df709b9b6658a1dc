// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package psd

import (
	"errors"
	"fmt"
	"image"
	"io"

	"github.com/gogpu/mockup"
)

// ColorMode is the document color mode from the file header.
type ColorMode uint16

// Color modes.
const (
	ColorBitmap       ColorMode = 0
	ColorGrayscale    ColorMode = 1
	ColorIndexed      ColorMode = 2
	ColorRGB          ColorMode = 3
	ColorCMYK         ColorMode = 4
	ColorMultichannel ColorMode = 7
	ColorDuotone      ColorMode = 8
	ColorLab          ColorMode = 9
)

func (m ColorMode) String() string {
	switch m {
	case ColorBitmap:
		return "Bitmap"
	case ColorGrayscale:
		return "Grayscale"
	case ColorIndexed:
		return "Indexed"
	case ColorRGB:
		return "RGB"
	case ColorCMYK:
		return "CMYK"
	case ColorMultichannel:
		return "Multichannel"
	case ColorDuotone:
		return "Duotone"
	case ColorLab:
		return "Lab"
	default:
		return fmt.Sprintf("ColorMode(%d)", uint16(m))
	}
}

// Header limits.
const (
	maxChannels = 56
	maxSizePSD  = 30000
	maxSizePSB  = 300000
)

// Image resource IDs.
const (
	resourceICCProfile = 1039
)

// Document is a decoded PSD or PSB file.
type Document struct {
	// Version is 1 for PSD and 2 for PSB.
	Version   int
	Width     int
	Height    int
	Channels  int
	Depth     int
	ColorMode ColorMode

	// ICCProfile is the embedded color profile, nil when absent or
	// unreadable.
	ICCProfile []byte

	// Layers is the layer tree, bottom-to-top at every level.
	Layers []Layer

	// Composite is the merged image; nil when the file has none or it could
	// not be decoded.
	Composite *image.NRGBA

	// Warnings lists recoverable problems met while decoding.
	Warnings []string
}

// Size returns the document dimensions.
func (d *Document) Size() image.Point { return image.Pt(d.Width, d.Height) }

// Decode reads a PSD or PSB file. Unreadable container structure (bad
// signature, truncated sections, malformed layer records) is reported as a
// *mockup.ParseError; everything else becomes a warning on the Document.
func Decode(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &mockup.ParseError{Section: "read", Err: err}
	}
	return decodeBytes(data)
}

type decoder struct {
	r   *reader
	doc *Document

	// mergedAlpha is set when the layer count is negative: the first extra
	// channel of the merged image is then its transparency.
	mergedAlpha bool
}

func (d *decoder) warnf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	d.doc.Warnings = append(d.doc.Warnings, msg)
	mockup.Logger().Debug("psd: warning", "msg", msg)
}

func decodeBytes(data []byte) (*Document, error) {
	d := &decoder{r: newReader(data), doc: &Document{}}
	if err := d.header(); err != nil {
		return nil, err
	}

	// Color mode data is only meaningful for indexed and duotone files.
	cm := d.r.sub(d.r.length32(), "color mode data")
	if err := firstErr(d.r.err, cm.err); err != nil {
		return nil, err
	}

	res := d.r.sub(d.r.length32(), "image resources")
	if d.r.err != nil {
		return nil, d.r.err
	}
	d.resources(res)

	lm := d.r.sub(d.r.length(), "layer and mask info")
	if d.r.err != nil {
		return nil, d.r.err
	}
	records, err := d.layerAndMask(lm)
	if err != nil {
		return nil, err
	}
	d.doc.Layers = d.buildTree(records)

	d.r.section = "image data"
	d.doc.Composite = d.merged()
	if d.doc.Composite == nil {
		d.warnf("no readable merged composite image")
	}
	return d.doc, nil
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func (d *decoder) header() error {
	r := d.r
	r.section = "header"
	if sig := r.key(); r.err == nil && sig != "8BPS" {
		r.fail(fmt.Errorf("bad signature %q", sig))
	}
	version := r.u16()
	r.skip(6)
	channels := r.u16()
	height := r.u32()
	width := r.u32()
	depth := r.u16()
	mode := r.u16()
	if r.err != nil {
		return r.err
	}

	limit := uint32(maxSizePSD)
	switch version {
	case 1:
	case 2:
		r.psb = true
		limit = maxSizePSB
	default:
		r.failf("unsupported version %d", version)
		return r.err
	}
	if channels == 0 || channels > maxChannels {
		r.failf("invalid channel count %d", channels)
		return r.err
	}
	if width == 0 || height == 0 || width > limit || height > limit {
		r.failf("invalid dimensions %dx%d", width, height)
		return r.err
	}
	switch depth {
	case 1, 8, 16, 32:
	default:
		r.failf("invalid bit depth %d", depth)
		return r.err
	}

	d.doc.Version = int(version)
	d.doc.Channels = int(channels)
	d.doc.Width = int(width)
	d.doc.Height = int(height)
	d.doc.Depth = int(depth)
	d.doc.ColorMode = ColorMode(mode)

	if d.doc.ColorMode != ColorRGB && d.doc.ColorMode != ColorGrayscale {
		d.warnf("color mode %v: layer previews are not decoded", d.doc.ColorMode)
	}
	return nil
}

// resources scans the image resource blocks. The section is length-bounded,
// so damage inside it is recoverable.
func (d *decoder) resources(r *reader) {
	for r.remaining() >= 12 && r.err == nil {
		switch sig := r.key(); sig {
		case "8BIM", "MeSa", "AgHg", "PHUT", "DCSR":
		default:
			d.warnf("image resources: unexpected signature %q, skipping the rest", sig)
			return
		}
		id := r.u16()
		r.pascal(2)
		n := r.length32()
		block := r.sub(n, "image resource")
		if n%2 == 1 {
			r.skip(1)
		}
		if block.err != nil {
			break
		}
		if id == resourceICCProfile {
			d.iccProfile(block.next(n))
		}
	}
	if r.err != nil {
		d.warnf("image resources: %v", r.err)
	}
}

// iccProfile keeps the embedded profile if its header is sane.
func (d *decoder) iccProfile(b []byte) {
	if err := validateICC(b); err != nil {
		d.warnf("unreadable color profile: %v", err)
		return
	}
	d.doc.ICCProfile = b
}

var errBadICC = errors.New("invalid ICC header")

func validateICC(b []byte) error {
	if len(b) < 128 {
		return fmt.Errorf("%w: %d bytes", errBadICC, len(b))
	}
	size := int(uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3]))
	if size != len(b) {
		return fmt.Errorf("%w: declared size %d, have %d", errBadICC, size, len(b))
	}
	if string(b[36:40]) != "acsp" {
		return fmt.Errorf("%w: missing acsp signature", errBadICC)
	}
	return nil
}
