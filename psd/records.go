// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package psd

import (
	"image"

	"github.com/gogpu/mockup/geom"
)

// Section divider types from "lsct"/"lsdk".
const (
	dividerNone   = 0
	dividerOpen   = 1
	dividerClosed = 2
	dividerBottom = 3
)

type layerKind uint8

const (
	kindPixel layerKind = iota
	kindSmart
	kindText
)

// Channel IDs.
const (
	channelAlpha    = -1
	channelUserMask = -2
	channelRealMask = -3
)

type channelInfo struct {
	id     int16
	length int64
}

// record is one flat layer record before the tree is built.
type record struct {
	info     LayerInfo
	channels []channelInfo
	divider  int
	kind     layerKind

	uniqueID   string
	placedSize geom.Size
	transform  *geom.Quad
	nonAffine  *geom.Quad
	desc       *Descriptor
	text       string

	preview *image.NRGBA
}

// longKeys use 8-byte lengths in PSB files.
var longKeys = map[string]bool{
	"LMsk": true, "Lr16": true, "Lr32": true, "Layr": true, "Mt16": true,
	"Mt32": true, "Mtrn": true, "Alph": true, "FMsk": true, "lnk2": true,
	"FEid": true, "FXid": true, "PxSD": true,
}

func (d *decoder) layerAndMask(r *reader) ([]*record, error) {
	if r.remaining() == 0 {
		return nil, nil
	}
	r.section = "layer info"
	info := r.sub(r.length(), "layer info")
	if r.err != nil {
		return nil, r.err
	}
	if info.remaining() == 0 {
		return nil, nil
	}

	count := int(info.i16())
	if count < 0 {
		count = -count
		d.mergedAlpha = true
	}
	records := make([]*record, 0, count)
	for i := 0; i < count; i++ {
		rec := d.record(info, i)
		if info.err != nil {
			return nil, info.err
		}
		records = append(records, rec)
	}

	info.section = "channel image data"
	for _, rec := range records {
		d.channelData(info, rec)
		if info.err != nil {
			return nil, info.err
		}
	}
	// Global mask info and document-level tagged blocks follow; nothing in
	// them affects extraction.
	return records, nil
}

func (d *decoder) record(r *reader, index int) *record {
	r.section = "layer record"
	rec := &record{info: LayerInfo{Index: index}}

	top, left, bottom, right := r.i32(), r.i32(), r.i32(), r.i32()
	rec.info.Bounds = image.Rect(int(left), int(top), int(right), int(bottom))

	n := r.u16()
	if r.err == nil && n > maxChannels {
		r.failf("layer %d: %d channels", index, n)
	}
	if r.err != nil {
		return nil
	}
	rec.channels = make([]channelInfo, n)
	for i := range rec.channels {
		rec.channels[i] = channelInfo{id: r.i16(), length: r.length()}
	}

	if sig := r.key(); r.err == nil && sig != "8BIM" {
		r.failf("layer %d: bad blend signature %q", index, sig)
	}
	rec.info.BlendKey = r.key()
	rec.info.Opacity = r.u8()
	r.u8() // clipping
	flags := r.u8()
	rec.info.Hidden = flags&0x02 != 0
	r.u8() // filler

	extra := r.sub(r.length32(), "layer extra data")
	if r.err != nil {
		return nil
	}
	extra.skip(extra.length32()) // mask data
	extra.skip(extra.length32()) // blending ranges
	rec.info.Name = decodeMacRoman(extra.pascal(4))
	if extra.err != nil {
		r.err = extra.err
		return nil
	}
	d.taggedBlocks(extra, rec)
	return rec
}

// taggedBlocks parses the additional layer information of one record. Each
// block is length-bounded, so a damaged block is skipped with a warning.
func (d *decoder) taggedBlocks(r *reader, rec *record) {
	for r.remaining() >= 12 {
		sig := r.key()
		if sig != "8BIM" && sig != "8B64" {
			d.warnf("layer %q: unexpected block signature %q", rec.info.Name, sig)
			return
		}
		key := r.key()
		var n int64
		if r.psb && longKeys[key] {
			n = r.clampLen(r.u64())
		} else {
			n = r.length32()
		}
		if n > r.remaining() {
			d.warnf("layer %q: %s block overruns the record", rec.info.Name, key)
			return
		}
		block := r.sub(n, key)
		if n%2 == 1 && r.remaining() > 0 {
			r.skip(1)
		}
		d.taggedBlock(block, key, rec)
		if block.err != nil {
			d.warnf("layer %q: %s block unreadable: %v", rec.info.Name, key, block.err)
		}
	}
}

func (d *decoder) taggedBlock(r *reader, key string, rec *record) {
	switch key {
	case "luni":
		if name := r.unicode(); r.err == nil && name != "" {
			rec.info.Name = name
		}
	case "lyid":
		rec.info.ID = r.u32()
	case "lsct", "lsdk":
		rec.divider = int(r.u32())
	case "SoLd", "SoLE":
		rec.kind = kindSmart
		d.smartObjectData(r, rec)
	case "PlLd", "plLd":
		rec.kind = kindSmart
		d.placedLayer(r, rec)
	case "TySh":
		rec.kind = kindText
		d.typeTool(r, rec)
	}
}

// smartObjectData reads the "soLD" descriptor carrying the placed size and
// the affine and non-affine corner transforms.
func (d *decoder) smartObjectData(r *reader, rec *record) {
	if k := r.key(); r.err == nil && k != "soLD" {
		r.failf("unexpected type %q", k)
		return
	}
	r.u32() // version
	if v := r.u32(); r.err == nil && v != 16 {
		r.failf("descriptor version %d", v)
		return
	}
	desc := readDescriptor(r, 0)
	if desc == nil {
		return
	}
	rec.desc = desc
	if id, ok := desc.String("Idnt"); ok {
		rec.uniqueID = id
	}
	if sz, ok := desc.Object("Sz  "); ok {
		w, okw := sz.Float("Wdth")
		h, okh := sz.Float("Hght")
		if okw && okh && w > 0 && h > 0 {
			rec.placedSize = geom.Sz(w, h)
		}
	}
	if q, ok := quadField(desc, "Trnf"); ok {
		rec.transform = &q
	}
	if q, ok := quadField(desc, "nonAffineTransform"); ok {
		rec.nonAffine = &q
	}
}

// placedLayer reads the legacy "plcL" block. Its transform only fills in
// when the descriptor-based block did not provide one.
func (d *decoder) placedLayer(r *reader, rec *record) {
	if k := r.key(); r.err == nil && k != "plcL" {
		r.failf("unexpected type %q", k)
		return
	}
	r.u32() // version
	uid := decodeMacRoman(r.pascal(1))
	r.skip(16) // page, total pages, anti-alias, layer type
	var v [8]float64
	for i := range v {
		v[i] = r.f64()
	}
	if r.err != nil {
		return
	}
	if rec.uniqueID == "" {
		rec.uniqueID = uid
	}
	if rec.transform == nil {
		q := quadFrom(v[:])
		rec.transform = &q
	}
}

// typeTool reads the text of a type layer.
func (d *decoder) typeTool(r *reader, rec *record) {
	r.u16()       // version
	r.skip(6 * 8) // transform
	r.u16()       // text version
	if v := r.u32(); r.err == nil && v != 16 {
		r.failf("descriptor version %d", v)
		return
	}
	desc := readDescriptor(r, 0)
	if s, ok := desc.String("Txt "); ok {
		rec.text = s
	}
}

func quadField(desc *Descriptor, key string) (geom.Quad, bool) {
	v, ok := desc.Floats(key)
	if !ok || len(v) != 8 {
		return geom.Quad{}, false
	}
	return quadFrom(v), true
}

// quadFrom builds a quad from x,y pairs in TL, TR, BR, BL order.
func quadFrom(v []float64) geom.Quad {
	return geom.Quad{
		TopLeft:     geom.Pt(v[0], v[1]),
		TopRight:    geom.Pt(v[2], v[3]),
		BottomRight: geom.Pt(v[4], v[5]),
		BottomLeft:  geom.Pt(v[6], v[7]),
	}
}
