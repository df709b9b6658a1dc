// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package psd

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/gogpu/mockup"
)

// errShort reports a read past the end of the data or of a length-bounded
// block.
var errShort = errors.New("psd: unexpected end of data")

// reader is a bounds-checked big-endian cursor over the file bytes. The
// first failed read latches err; later reads return zero values, so callers
// can read a whole record and check once.
type reader struct {
	data    []byte
	off     int64
	end     int64 // exclusive limit for the current block
	psb     bool
	section string
	err     error
}

func newReader(data []byte) *reader {
	return &reader{data: data, end: int64(len(data))}
}

// sub returns a reader limited to the next n bytes and advances r past them.
// A block that overruns r fails both readers, attributed to section.
func (r *reader) sub(n int64, section string) *reader {
	s := &reader{data: r.data, off: r.off, end: r.off + n, psb: r.psb, section: section}
	if r.err != nil {
		s.end, s.err = s.off, r.err
		return s
	}
	if n < 0 || s.end > r.end {
		s.end = s.off
		s.fail(errShort)
		r.err = s.err
		return s
	}
	r.off = s.end
	return s
}

func (r *reader) fail(err error) {
	if r.err == nil {
		r.err = &mockup.ParseError{Section: r.section, Offset: r.off, Err: err}
	}
}

func (r *reader) failf(format string, args ...any) {
	r.fail(fmt.Errorf(format, args...))
}

func (r *reader) remaining() int64 { return r.end - r.off }

func (r *reader) next(n int64) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || n > r.remaining() {
		r.fail(errShort)
		return nil
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b
}

func (r *reader) skip(n int64) { r.next(n) }

// skipTo moves to the absolute offset off, which must lie within the block.
func (r *reader) skipTo(off int64) {
	if r.err != nil {
		return
	}
	if off < r.off || off > r.end {
		r.fail(errShort)
		return
	}
	r.off = off
}

func (r *reader) u8() uint8 {
	if b := r.next(1); b != nil {
		return b[0]
	}
	return 0
}

func (r *reader) u16() uint16 {
	if b := r.next(2); b != nil {
		return binary.BigEndian.Uint16(b)
	}
	return 0
}

func (r *reader) u32() uint32 {
	if b := r.next(4); b != nil {
		return binary.BigEndian.Uint32(b)
	}
	return 0
}

func (r *reader) u64() uint64 {
	if b := r.next(8); b != nil {
		return binary.BigEndian.Uint64(b)
	}
	return 0
}

func (r *reader) i16() int16 { return int16(r.u16()) }
func (r *reader) i32() int32 { return int32(r.u32()) }

func (r *reader) f64() float64 { return math.Float64frombits(r.u64()) }

func (r *reader) key() string { return string(r.next(4)) }

// length reads a section length: 4 bytes in PSD, 8 bytes in PSB.
func (r *reader) length() int64 {
	if r.psb {
		return r.clampLen(r.u64())
	}
	return int64(r.u32())
}

// length32 reads a 4-byte length that is never widened in PSB.
func (r *reader) length32() int64 { return int64(r.u32()) }

func (r *reader) clampLen(n uint64) int64 {
	if n > math.MaxInt64 {
		r.fail(errShort)
		return 0
	}
	return int64(n)
}

// pascal reads a length-prefixed byte string whose total size (including the
// length byte) is padded to a multiple of pad.
func (r *reader) pascal(pad int64) []byte {
	start := r.off
	n := int64(r.u8())
	b := r.next(n)
	if pad > 1 {
		used := r.off - start
		if rem := used % pad; rem != 0 {
			r.skip(pad - rem)
		}
	}
	return b
}

// unicode reads a 4-byte count of UTF-16 code units followed by the units.
func (r *reader) unicode() string {
	n := int64(r.u32())
	if n > r.remaining()/2 {
		r.fail(errShort)
		return ""
	}
	return decodeUTF16(r.next(n * 2))
}
