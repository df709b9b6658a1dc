// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package psd

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"io"
	"math"

	"github.com/gogpu/mockup/internal/color"
)

// Compression methods for channel and merged image data.
const (
	compressionRaw     = 0
	compressionRLE     = 1
	compressionZip     = 2
	compressionZipPred = 3
)

// maxPreviewPixels caps the decoded size of one layer preview or of the
// merged image. Layer bounds come straight from the file.
const maxPreviewPixels = 1 << 26

var (
	errUnsupportedCompression = errors.New("psd: unsupported compression")
	errTooLarge               = errors.New("psd: image too large to decode")
)

// checkPreviewSize rejects planes wider or taller than the header limit of
// the file version, or with more than maxPreviewPixels samples.
func checkPreviewSize(w, h int, psb bool) error {
	limit := maxSizePSD
	if psb {
		limit = maxSizePSB
	}
	if w < 0 || h < 0 || w > limit || h > limit || w*h > maxPreviewPixels {
		return fmt.Errorf("%w: %dx%d", errTooLarge, w, h)
	}
	return nil
}

// channelData consumes the channel image data of rec and, when the color
// mode allows, decodes the layer's preview.
func (d *decoder) channelData(r *reader, rec *record) {
	w, h := rec.info.Bounds.Dx(), rec.info.Bounds.Dy()
	planes := make(map[int16][]byte, len(rec.channels))
	var decodeErr error
	if d.previewable() && w > 0 && h > 0 {
		decodeErr = checkPreviewSize(w, h, r.psb)
	}
	for _, ch := range rec.channels {
		block := r.sub(ch.length, "channel image data")
		if r.err != nil {
			return
		}
		if decodeErr != nil || !d.previewable() || w == 0 || h == 0 {
			continue
		}
		if ch.id == channelUserMask || ch.id == channelRealMask || ch.id < channelRealMask {
			continue
		}
		if ch.length < 2 {
			continue
		}
		plane, err := decodePlane(block.next(ch.length), w, h, d.doc.Depth, r.psb, ch.id == channelAlpha)
		if err != nil {
			decodeErr = fmt.Errorf("channel %d: %w", ch.id, err)
			continue
		}
		planes[ch.id] = plane
	}
	if decodeErr != nil {
		d.warnf("layer %q: preview not decoded: %v", rec.info.Name, decodeErr)
		return
	}
	if len(planes) == 0 {
		return
	}
	img := compose(planes, rec.info.Bounds, d.doc.ColorMode)
	if img == nil {
		d.warnf("layer %q: preview has no color channels", rec.info.Name)
		return
	}
	rec.preview = img
}

func (d *decoder) previewable() bool {
	switch d.doc.ColorMode {
	case ColorRGB, ColorGrayscale:
	default:
		return false
	}
	return d.doc.Depth == 8 || d.doc.Depth == 16 || d.doc.Depth == 32
}

// decodePlane decodes one compressed channel (with its 2-byte compression
// prefix) to 8-bit samples.
func decodePlane(b []byte, w, h, depth int, psb, alpha bool) ([]byte, error) {
	comp := binary.BigEndian.Uint16(b)
	raw, err := inflate(comp, b[2:], 1, w, h, depth, psb)
	if err != nil {
		return nil, err
	}
	return to8(raw, w*h, depth, alpha)
}

// inflate decompresses n consecutive planes of w x h samples.
func inflate(comp uint16, b []byte, n, w, h, depth int, psb bool) ([]byte, error) {
	if err := checkPreviewSize(w, h, psb); err != nil {
		return nil, err
	}
	rowBytes := (w*depth + 7) / 8
	size := n * h * rowBytes
	switch comp {
	case compressionRaw:
		if len(b) < size {
			return nil, errShort
		}
		return b[:size], nil
	case compressionRLE:
		return unpackRows(b, n*h, rowBytes, psb)
	case compressionZip, compressionZipPred:
		zr, err := zlib.NewReader(bytes.NewReader(b))
		if err != nil {
			return nil, fmt.Errorf("psd: zip: %w", err)
		}
		defer zr.Close()
		out, err := io.ReadAll(io.LimitReader(zr, int64(size)+1))
		if err != nil {
			return nil, fmt.Errorf("psd: zip: %w", err)
		}
		if len(out) != size {
			return nil, fmt.Errorf("psd: zip: %d bytes decoded, want %d", len(out), size)
		}
		if comp == compressionZipPred {
			if err := unpredict(out, n*h, w, depth); err != nil {
				return nil, err
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %d", errUnsupportedCompression, comp)
	}
}

// unpackRows decodes PackBits rows preceded by their byte counts.
func unpackRows(b []byte, rows, rowBytes int, psb bool) ([]byte, error) {
	countSize := 2
	if psb {
		countSize = 4
	}
	if len(b) < rows*countSize {
		return nil, errShort
	}
	counts := b[:rows*countSize]
	data := b[rows*countSize:]
	out := make([]byte, rows*rowBytes)
	for y := 0; y < rows; y++ {
		var n int
		if psb {
			n = int(binary.BigEndian.Uint32(counts[y*4:]))
		} else {
			n = int(binary.BigEndian.Uint16(counts[y*2:]))
		}
		if n > len(data) {
			return nil, errShort
		}
		if err := unpackBits(out[y*rowBytes:(y+1)*rowBytes], data[:n]); err != nil {
			return nil, fmt.Errorf("row %d: %w", y, err)
		}
		data = data[n:]
	}
	return out, nil
}

var errPackBits = errors.New("psd: corrupt PackBits data")

// unpackBits expands one PackBits-compressed row into dst, which must be
// filled exactly.
func unpackBits(dst, src []byte) error {
	i, j := 0, 0
	for j < len(dst) {
		if i >= len(src) {
			return errPackBits
		}
		n := int(int8(src[i]))
		i++
		switch {
		case n >= 0:
			n++
			if i+n > len(src) || j+n > len(dst) {
				return errPackBits
			}
			copy(dst[j:], src[i:i+n])
			i += n
			j += n
		case n != -128:
			n = 1 - n
			if i >= len(src) || j+n > len(dst) {
				return errPackBits
			}
			v := src[i]
			i++
			for k := 0; k < n; k++ {
				dst[j+k] = v
			}
			j += n
		}
	}
	return nil
}

// unpredict reverses the per-row delta encoding of zip-with-prediction data.
func unpredict(b []byte, rows, w, depth int) error {
	switch depth {
	case 8:
		for y := 0; y < rows; y++ {
			row := b[y*w : (y+1)*w]
			for x := 1; x < w; x++ {
				row[x] += row[x-1]
			}
		}
	case 16:
		for y := 0; y < rows; y++ {
			row := b[y*w*2 : (y+1)*w*2]
			prev := binary.BigEndian.Uint16(row)
			for x := 1; x < w; x++ {
				prev += binary.BigEndian.Uint16(row[x*2:])
				binary.BigEndian.PutUint16(row[x*2:], prev)
			}
		}
	default:
		return fmt.Errorf("%w: prediction at %d bits", errUnsupportedCompression, depth)
	}
	return nil
}

// to8 converts n samples at depth bits to 8-bit. 16-bit samples keep the
// high byte. 32-bit documents store linear light: color samples are
// encoded to sRGB, alpha samples are only clamped to [0, 1].
func to8(b []byte, n, depth int, alpha bool) ([]byte, error) {
	switch depth {
	case 8:
		out := make([]byte, n)
		copy(out, b)
		return out, nil
	case 16:
		out := make([]byte, n)
		for i := range out {
			out[i] = b[i*2]
		}
		return out, nil
	case 32:
		out := make([]byte, n)
		for i := range out {
			v := math.Float32frombits(binary.BigEndian.Uint32(b[i*4:]))
			if alpha {
				out[i] = uint8(math.Round(float64(min(max(v, 0), 1)) * 255))
			} else {
				out[i] = color.LinearToSRGB8(v)
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("psd: unsupported bit depth %d", depth)
	}
}

// compose interleaves 8-bit planes into an image at bounds. A missing alpha
// plane means opaque.
func compose(planes map[int16][]byte, bounds image.Rectangle, mode ColorMode) *image.NRGBA {
	var r, g, b []byte
	switch mode {
	case ColorRGB:
		r, g, b = planes[0], planes[1], planes[2]
		if r == nil || g == nil || b == nil {
			return nil
		}
	case ColorGrayscale:
		r = planes[0]
		if r == nil {
			return nil
		}
		g, b = r, r
	default:
		return nil
	}
	a := planes[channelAlpha]

	img := image.NewNRGBA(bounds)
	for i := range r {
		px := img.Pix[i*4 : i*4+4 : i*4+4]
		px[0], px[1], px[2] = r[i], g[i], b[i]
		if a != nil {
			px[3] = a[i]
		} else {
			px[3] = 0xff
		}
	}
	return img
}

// merged decodes the composite image that ends the file.
func (d *decoder) merged() *image.NRGBA {
	r := d.r
	if r.remaining() < 2 || !d.previewable() {
		return nil
	}
	comp := r.u16()
	w, h := d.doc.Width, d.doc.Height
	if err := checkPreviewSize(w, h, r.psb); err != nil {
		d.warnf("merged image: %v", err)
		return nil
	}
	channels := d.doc.Channels
	raw, err := inflate(comp, r.next(r.remaining()), channels, w, h, d.doc.Depth, r.psb)
	if err != nil {
		d.warnf("merged image: %v", err)
		return nil
	}
	rowBytes := (w*d.doc.Depth + 7) / 8
	planeBytes := h * rowBytes
	planes := make(map[int16][]byte, channels)
	colors := 3
	if d.doc.ColorMode == ColorGrayscale {
		colors = 1
	}
	for c := 0; c < channels && c <= colors; c++ {
		p, err := to8(raw[c*planeBytes:(c+1)*planeBytes], w*h, d.doc.Depth, c == colors)
		if err != nil {
			d.warnf("merged image: %v", err)
			return nil
		}
		id := int16(c)
		if c == colors {
			if !d.mergedAlpha {
				break
			}
			id = channelAlpha
		}
		planes[id] = p
	}
	return compose(planes, image.Rect(0, 0, w, h), d.doc.ColorMode)
}
