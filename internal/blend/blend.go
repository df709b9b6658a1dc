// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package blend implements the compositing laws used to lay designs and
// lighting overlays onto a mockup scene.
//
// All operations work on premultiplied RGBA bytes (0-255), 4 bytes per pixel.
//
// References:
//   - Porter-Duff: "Compositing Digital Images" (1984)
//   - W3C Compositing and Blending Level 1: https://www.w3.org/TR/compositing-1/
package blend

// Mode represents a blending mode.
type Mode uint8

const (
	// ModeNormal is plain source-over compositing.
	ModeNormal Mode = iota
	// ModeMultiply darkens: B(Cb, Cs) = Cb * Cs.
	ModeMultiply
	// ModeScreen lightens: B(Cb, Cs) = 1 - (1-Cb)*(1-Cs).
	ModeScreen
	// ModeOverlay is HardLight with backdrop and source swapped.
	ModeOverlay
	// ModeSoftLight is a softer version of HardLight.
	ModeSoftLight
	// ModeHardLight is Multiply or Screen depending on the source.
	ModeHardLight
)

// String returns the CSS keyword for the mode.
func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "normal"
	case ModeMultiply:
		return "multiply"
	case ModeScreen:
		return "screen"
	case ModeOverlay:
		return "overlay"
	case ModeSoftLight:
		return "soft-light"
	case ModeHardLight:
		return "hard-light"
	default:
		return "unknown"
	}
}

// ParseMode maps a CSS blend keyword onto a Mode. The empty string is Normal.
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "", "normal":
		return ModeNormal, true
	case "multiply":
		return ModeMultiply, true
	case "screen":
		return ModeScreen, true
	case "overlay":
		return ModeOverlay, true
	case "soft-light":
		return ModeSoftLight, true
	case "hard-light":
		return ModeHardLight, true
	default:
		return ModeNormal, false
	}
}

// Func is the signature for per-pixel blend operations on premultiplied
// source and destination colors.
type Func func(sr, sg, sb, sa, dr, dg, db, da byte) (r, g, b, a byte)

// GetFunc returns the blend function for the given mode.
// Returns source-over for unknown modes.
func GetFunc(mode Mode) Func {
	switch mode {
	case ModeMultiply:
		return blendMultiply
	case ModeScreen:
		return blendScreen
	case ModeOverlay:
		return blendOverlay
	case ModeSoftLight:
		return blendSoftLight
	case ModeHardLight:
		return blendHardLight
	default:
		return blendSourceOver
	}
}

// Span blends n = len(dst)/4 source pixels onto dst in place. Source alpha
// (and premultiplied color) is first scaled by opacity, so opacity 0 leaves
// dst untouched and opacity 255 applies the source as is.
func Span(dst, src []byte, mode Mode, opacity byte) {
	if opacity == 0 {
		return
	}
	fn := GetFunc(mode)
	n := min(len(dst), len(src)) / 4
	for i := 0; i < n; i++ {
		o := i * 4
		sr, sg, sb, sa := Scale(src[o], src[o+1], src[o+2], src[o+3], opacity)
		if sa == 0 {
			continue
		}
		dst[o], dst[o+1], dst[o+2], dst[o+3] = fn(sr, sg, sb, sa, dst[o], dst[o+1], dst[o+2], dst[o+3])
	}
}

// Scale multiplies a premultiplied color by a coverage/opacity factor.
func Scale(r, g, b, a, factor byte) (byte, byte, byte, byte) {
	if factor == 255 {
		return r, g, b, a
	}
	return mulDiv255(r, factor), mulDiv255(g, factor), mulDiv255(b, factor), mulDiv255(a, factor)
}

// Opacity converts a [0, 1] opacity to a byte factor, clamping out-of-range
// and NaN values.
func Opacity(v float64) byte {
	if !(v > 0) {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return byte(v*255 + 0.5)
}
