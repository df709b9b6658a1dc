// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package psd

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"math"
	"unicode/utf16"
)

// writer assembles big-endian PSD structures for tests.
type writer struct {
	bytes.Buffer
}

func (w *writer) u8(v uint8)   { w.WriteByte(v) }
func (w *writer) u16(v uint16) { _ = binary.Write(w, binary.BigEndian, v) }
func (w *writer) u32(v uint32) { _ = binary.Write(w, binary.BigEndian, v) }
func (w *writer) i16(v int16)  { _ = binary.Write(w, binary.BigEndian, v) }
func (w *writer) i32(v int32)  { _ = binary.Write(w, binary.BigEndian, v) }
func (w *writer) f64(v float64) {
	w.u32(uint32(math.Float64bits(v) >> 32))
	w.u32(uint32(math.Float64bits(v)))
}
func (w *writer) str(s string) { w.WriteString(s) }

// block writes a 4-byte length followed by body.
func (w *writer) block(body []byte) {
	w.u32(uint32(len(body)))
	w.Write(body)
}

func (w *writer) pascal(b []byte, pad int) {
	w.u8(uint8(len(b)))
	w.Write(b)
	for n := 1 + len(b); n%pad != 0; n++ {
		w.u8(0)
	}
}

func (w *writer) unicode(s string) {
	units := utf16.Encode([]rune(s))
	w.u32(uint32(len(units) + 1))
	for _, u := range units {
		w.u16(u)
	}
	w.u16(0)
}

func (w *writer) id(s string) {
	if len(s) == 4 {
		w.u32(0)
	} else {
		w.u32(uint32(len(s)))
	}
	w.str(s)
}

// field is one descriptor item: a value of Go type float64, []float64,
// string, int32, bool or desc.
type field struct {
	key string
	val any
}

type desc struct {
	class  string
	fields []field
}

func (w *writer) descriptor(d desc) {
	w.unicode("")
	w.id(d.class)
	w.u32(uint32(len(d.fields)))
	for _, f := range d.fields {
		w.id(f.key)
		w.value(f.val)
	}
}

func (w *writer) value(v any) {
	switch v := v.(type) {
	case float64:
		w.str("doub")
		w.f64(v)
	case []float64:
		w.str("VlLs")
		w.u32(uint32(len(v)))
		for _, f := range v {
			w.str("doub")
			w.f64(f)
		}
	case string:
		w.str("TEXT")
		w.unicode(v)
	case int32:
		w.str("long")
		w.i32(v)
	case bool:
		w.str("bool")
		if v {
			w.u8(1)
		} else {
			w.u8(0)
		}
	case desc:
		w.str("Objc")
		w.descriptor(v)
	default:
		panic("unsupported descriptor value")
	}
}

// testLayer describes one layer record of a generated file.
type testLayer struct {
	name     string
	rawName  []byte // MacRoman name bytes; overrides name
	uniName  string // written as "luni"
	id       uint32
	bounds   image.Rectangle
	opacity  uint8
	hidden   bool
	divider  int
	fill     color.NRGBA
	rle      bool
	soLd     *desc
	plLd     []float64
	text     string
	extraRaw []byte // appended verbatim to the tagged blocks
	chanData []byte // replaces the generated data of every channel
}

// testDoc describes a generated RGB 8-bit file.
type testDoc struct {
	width, height int
	layers        []testLayer
	icc           []byte
	composite     color.NRGBA
	noComposite   bool
	rawComposite  []byte // written in place of the generated composite
}

func (d testDoc) bytes() []byte {
	var w writer
	w.str("8BPS")
	w.u16(1)
	w.Write(make([]byte, 6))
	w.u16(3)
	w.u32(uint32(d.height))
	w.u32(uint32(d.width))
	w.u16(8)
	w.u16(uint16(ColorRGB))

	w.u32(0) // color mode data

	var res writer
	if d.icc != nil {
		res.str("8BIM")
		res.u16(resourceICCProfile)
		res.pascal(nil, 2)
		res.block(d.icc)
		if len(d.icc)%2 == 1 {
			res.u8(0)
		}
	}
	w.block(res.Bytes())

	var info writer
	if len(d.layers) > 0 {
		info.i16(int16(len(d.layers)))
		var channels writer
		for _, l := range d.layers {
			info.Write(l.record(&channels))
		}
		info.Write(channels.Bytes())
		if info.Len()%2 == 1 {
			info.u8(0)
		}
	}
	var lm writer
	lm.block(info.Bytes())
	lm.u32(0) // global mask info
	w.block(lm.Bytes())

	switch {
	case d.rawComposite != nil:
		w.Write(d.rawComposite)
	case !d.noComposite:
		w.u16(compressionRaw)
		c := d.composite
		for _, v := range []uint8{c.R, c.G, c.B} {
			w.Write(bytes.Repeat([]byte{v}, d.width*d.height))
		}
	}
	return w.Bytes()
}

// record returns the layer record and appends its channel data to ch.
func (l testLayer) record(ch *writer) []byte {
	var w writer
	b := l.bounds
	w.i32(int32(b.Min.Y))
	w.i32(int32(b.Min.X))
	w.i32(int32(b.Max.Y))
	w.i32(int32(b.Max.X))

	samples := []struct {
		id int16
		v  uint8
	}{{0, l.fill.R}, {1, l.fill.G}, {2, l.fill.B}, {channelAlpha, l.fill.A}}
	w.u16(uint16(len(samples)))
	for _, s := range samples {
		data := l.chanData
		if data == nil {
			data = channelBytes(b.Dx(), b.Dy(), s.v, l.rle)
		}
		w.i16(s.id)
		w.u32(uint32(len(data)))
		ch.Write(data)
	}

	w.str("8BIM")
	w.str("norm")
	opacity := l.opacity
	if opacity == 0 {
		opacity = 255
	}
	w.u8(opacity)
	w.u8(0)
	if l.hidden {
		w.u8(0x02)
	} else {
		w.u8(0)
	}
	w.u8(0)

	var extra writer
	extra.u32(0)
	extra.u32(0)
	name := l.rawName
	if name == nil {
		name = []byte(l.name)
	}
	extra.pascal(name, 4)
	if l.uniName != "" {
		var b writer
		b.unicode(l.uniName)
		extra.tagged("luni", b.Bytes())
	}
	if l.id != 0 {
		var b writer
		b.u32(l.id)
		extra.tagged("lyid", b.Bytes())
	}
	if l.divider != 0 {
		var b writer
		b.u32(uint32(l.divider))
		extra.tagged("lsct", b.Bytes())
	}
	if l.soLd != nil {
		var b writer
		b.str("soLD")
		b.u32(4)
		b.u32(16)
		b.descriptor(*l.soLd)
		extra.tagged("SoLd", b.Bytes())
	}
	if l.plLd != nil {
		var b writer
		b.str("plcL")
		b.u32(3)
		b.pascal([]byte("legacy-uid"), 1)
		b.u32(1)
		b.u32(1)
		b.u32(16)
		b.u32(2)
		for _, v := range l.plLd {
			b.f64(v)
		}
		extra.tagged("PlLd", b.Bytes())
	}
	if l.text != "" {
		var b writer
		b.u16(1)
		for i := 0; i < 6; i++ {
			b.f64(0)
		}
		b.u16(50)
		b.u32(16)
		b.descriptor(desc{class: "TxLr", fields: []field{{"Txt ", l.text}}})
		extra.tagged("TySh", b.Bytes())
	}
	extra.Write(l.extraRaw)
	w.block(extra.Bytes())
	return w.Bytes()
}

func (w *writer) tagged(key string, body []byte) {
	w.str("8BIM")
	w.str(key)
	if len(body)%2 == 1 {
		body = append(body, 0)
	}
	w.block(body)
}

// channelBytes encodes a solid w x h plane with its compression prefix.
func channelBytes(width, height int, v uint8, rle bool) []byte {
	var w writer
	if width == 0 || height == 0 {
		w.u16(compressionRaw)
		return w.Bytes()
	}
	if !rle {
		w.u16(compressionRaw)
		w.Write(bytes.Repeat([]byte{v}, width*height))
		return w.Bytes()
	}
	w.u16(compressionRLE)
	row := packRun(width, v)
	for y := 0; y < height; y++ {
		w.u16(uint16(len(row)))
	}
	for y := 0; y < height; y++ {
		w.Write(row)
	}
	return w.Bytes()
}

// packRun PackBits-encodes n copies of v.
func packRun(n int, v uint8) []byte {
	var out []byte
	for n > 0 {
		k := min(n, 128)
		if k == 1 {
			out = append(out, 0, v)
		} else {
			out = append(out, byte(int8(1-k)), v)
		}
		n -= k
	}
	return out
}

// smartDesc builds a SoLd descriptor with optional size and transforms.
func smartDesc(uid string, w, h float64, trnf, nonAffine []float64) *desc {
	d := &desc{class: "null", fields: []field{{"Idnt", uid}}}
	if w > 0 && h > 0 {
		d.fields = append(d.fields, field{"Sz  ", desc{class: "Pnt ", fields: []field{{"Wdth", w}, {"Hght", h}}}})
	}
	if trnf != nil {
		d.fields = append(d.fields, field{"Trnf", trnf})
	}
	if nonAffine != nil {
		d.fields = append(d.fields, field{"nonAffineTransform", nonAffine})
	}
	return d
}

// rectCorners returns TL, TR, BR, BL of r as x,y pairs.
func rectCorners(r image.Rectangle) []float64 {
	x0, y0, x1, y1 := float64(r.Min.X), float64(r.Min.Y), float64(r.Max.X), float64(r.Max.Y)
	return []float64{x0, y0, x1, y0, x1, y1, x0, y1}
}
