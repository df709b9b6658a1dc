// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package blend

import "math"

// separableBlend applies a per-channel blend function B(Cb, Cs) using the
// general W3C formula on premultiplied inputs:
//
//	Co = (1 - Sa) * Dc + (1 - Da) * Sc + Sa * Da * B(cb, cs)
//	Ao = Sa + Da * (1 - Sa)
//
// where cb and cs are the unpremultiplied backdrop and source channels.
func separableBlend(sr, sg, sb, sa, dr, dg, db, da byte, blendChan func(cb, cs float64) float64) (byte, byte, byte, byte) {
	// Handle fully transparent cases
	if sa == 0 {
		return dr, dg, db, da
	}
	if da == 0 {
		return sr, sg, sb, sa
	}

	fsa := float64(sa) / 255
	fda := float64(da) / 255

	channel := func(s, d byte) byte {
		ps := float64(s) / 255
		pd := float64(d) / 255
		cs := clampUnit(ps / fsa)
		cb := clampUnit(pd / fda)
		return toByte((1-fsa)*pd + (1-fda)*ps + fsa*fda*blendChan(cb, cs))
	}

	return channel(sr, dr), channel(sg, dg), channel(sb, db),
		addDiv255(sa, mulDiv255(da, inv255(sa)))
}

// blendMultiply multiplies source and destination colors.
// Formula: B(Cb, Cs) = Cb * Cs
func blendMultiply(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return separableBlend(sr, sg, sb, sa, dr, dg, db, da, multiplyChan)
}

// blendScreen produces a lighter result than multiply.
// Formula: B(Cb, Cs) = 1 - (1 - Cb) * (1 - Cs)
func blendScreen(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return separableBlend(sr, sg, sb, sa, dr, dg, db, da, screenChan)
}

// blendOverlay combines Multiply and Screen based on the backdrop.
// Formula: B(Cb, Cs) = HardLight(Cs, Cb)
func blendOverlay(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return separableBlend(sr, sg, sb, sa, dr, dg, db, da, func(cb, cs float64) float64 {
		return hardLightChan(cs, cb)
	})
}

// blendHardLight combines Multiply and Screen based on the source.
// Formula: B(Cb, Cs) = if Cs <= 0.5: Multiply(Cb, 2*Cs), else: Screen(Cb, 2*Cs - 1)
func blendHardLight(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return separableBlend(sr, sg, sb, sa, dr, dg, db, da, hardLightChan)
}

// blendSoftLight is a softer version of HardLight.
func blendSoftLight(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return separableBlend(sr, sg, sb, sa, dr, dg, db, da, softLightChan)
}

func multiplyChan(cb, cs float64) float64 {
	return cb * cs
}

func screenChan(cb, cs float64) float64 {
	return cb + cs - cb*cs
}

func hardLightChan(cb, cs float64) float64 {
	if cs <= 0.5 {
		return multiplyChan(cb, 2*cs)
	}
	return screenChan(cb, 2*cs-1)
}

// softLightChan follows the W3C definition:
//
//	if Cs <= 0.5: Cb - (1 - 2*Cs) * Cb * (1 - Cb)
//	else:         Cb + (2*Cs - 1) * (D(Cb) - Cb)
//
// with D(x) = ((16*x - 12)*x + 4)*x for x <= 0.25, sqrt(x) otherwise.
func softLightChan(cb, cs float64) float64 {
	if cs <= 0.5 {
		return cb - (1-2*cs)*cb*(1-cb)
	}
	var d float64
	if cb <= 0.25 {
		d = ((16*cb-12)*cb + 4) * cb
	} else {
		d = math.Sqrt(cb)
	}
	return cb + (2*cs-1)*(d-cb)
}
