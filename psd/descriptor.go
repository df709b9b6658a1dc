// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package psd

import "fmt"

// maxDescriptorDepth bounds descriptor nesting (objects within lists within
// objects). Real files stay well below it.
const maxDescriptorDepth = 32

// Descriptor is an action descriptor: a class ID and a set of typed fields.
// Field values are one of float64, UnitFloat, UnitFloats, string, int32,
// int64, bool, Enum, *Descriptor, []any, Reference or []byte.
type Descriptor struct {
	Name   string
	Class  string
	Fields map[string]any
}

// UnitFloat is a float with a unit key such as "#Pxl" or "#Prc".
type UnitFloat struct {
	Unit  string
	Value float64
}

// UnitFloats is a unit-tagged list of floats.
type UnitFloats struct {
	Unit   string
	Values []float64
}

// Enum is an enumerated value.
type Enum struct {
	Type  string
	Value string
}

// Reference is an object reference; its items are kept as raw values.
type Reference []any

// Float returns the numeric field key as float64. Doubles, unit floats and
// integers are accepted.
func (d *Descriptor) Float(key string) (float64, bool) {
	if d == nil {
		return 0, false
	}
	switch v := d.Fields[key].(type) {
	case float64:
		return v, true
	case UnitFloat:
		return v.Value, true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

// Floats returns the field key as a list of floats, accepting both a value
// list of numbers and a unit float list.
func (d *Descriptor) Floats(key string) ([]float64, bool) {
	if d == nil {
		return nil, false
	}
	switch v := d.Fields[key].(type) {
	case UnitFloats:
		return v.Values, true
	case []any:
		out := make([]float64, 0, len(v))
		for _, item := range v {
			switch f := item.(type) {
			case float64:
				out = append(out, f)
			case UnitFloat:
				out = append(out, f.Value)
			case int32:
				out = append(out, float64(f))
			default:
				return nil, false
			}
		}
		return out, true
	}
	return nil, false
}

// String returns the text field key.
func (d *Descriptor) String(key string) (string, bool) {
	if d == nil {
		return "", false
	}
	s, ok := d.Fields[key].(string)
	return s, ok
}

// Object returns the nested descriptor field key.
func (d *Descriptor) Object(key string) (*Descriptor, bool) {
	if d == nil {
		return nil, false
	}
	o, ok := d.Fields[key].(*Descriptor)
	return o, ok
}

// readDescriptor reads a descriptor body (without the version prefix).
func readDescriptor(r *reader, depth int) *Descriptor {
	if depth > maxDescriptorDepth {
		r.failf("descriptor nesting deeper than %d", maxDescriptorDepth)
		return nil
	}
	d := &Descriptor{Name: r.unicode(), Class: readID(r)}
	n := r.u32()
	if int64(n) > r.remaining() {
		r.fail(errShort)
		return nil
	}
	d.Fields = make(map[string]any, n)
	for i := uint32(0); i < n && r.err == nil; i++ {
		key := readID(r)
		d.Fields[key] = readValue(r, r.key(), depth)
	}
	if r.err != nil {
		return nil
	}
	return d
}

// readID reads a class or key ID: a 4-byte length followed by that many
// bytes, or a 4-byte code when the length is zero.
func readID(r *reader) string {
	n := int64(r.u32())
	if n == 0 {
		n = 4
	}
	return string(r.next(n))
}

func readValue(r *reader, typ string, depth int) any {
	switch typ {
	case "Objc", "GlbO":
		return readDescriptor(r, depth+1)
	case "VlLs":
		n := r.u32()
		if int64(n) > r.remaining() {
			r.fail(errShort)
			return nil
		}
		list := make([]any, 0, n)
		for i := uint32(0); i < n && r.err == nil; i++ {
			list = append(list, readValue(r, r.key(), depth+1))
		}
		return list
	case "doub":
		return r.f64()
	case "UntF":
		return UnitFloat{Unit: r.key(), Value: r.f64()}
	case "UnFl":
		unit := r.key()
		n := r.u32()
		if int64(n) > r.remaining()/8 {
			r.fail(errShort)
			return nil
		}
		vals := make([]float64, n)
		for i := range vals {
			vals[i] = r.f64()
		}
		return UnitFloats{Unit: unit, Values: vals}
	case "TEXT":
		return r.unicode()
	case "enum":
		return Enum{Type: readID(r), Value: readID(r)}
	case "long":
		return r.i32()
	case "comp":
		return int64(r.u64())
	case "bool":
		return r.u8() != 0
	case "type", "GlbC":
		r.unicode()
		return readID(r)
	case "alis", "tdta", "Pth ":
		return r.next(r.length32())
	case "obj ":
		return readReference(r)
	default:
		r.failf("unsupported descriptor value type %q", typ)
		return nil
	}
}

func readReference(r *reader) Reference {
	n := r.u32()
	if int64(n) > r.remaining() {
		r.fail(errShort)
		return nil
	}
	ref := make(Reference, 0, n)
	for i := uint32(0); i < n && r.err == nil; i++ {
		switch typ := r.key(); typ {
		case "prop":
			r.unicode()
			readID(r)
			ref = append(ref, readID(r))
		case "Clss":
			r.unicode()
			ref = append(ref, readID(r))
		case "Enmr":
			r.unicode()
			readID(r)
			ref = append(ref, Enum{Type: readID(r), Value: readID(r)})
		case "rele":
			r.unicode()
			readID(r)
			ref = append(ref, r.i32())
		case "Idnt", "indx":
			ref = append(ref, r.i32())
		case "name":
			r.unicode()
			readID(r)
			ref = append(ref, r.unicode())
		default:
			r.fail(fmt.Errorf("unsupported reference item %q", typ))
		}
	}
	return ref
}
