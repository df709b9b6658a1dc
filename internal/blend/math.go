// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package blend

// div255 divides x by 255 exactly without using division.
//
// Formula: ((x + 1) + ((x + 1) >> 8)) >> 8 (Alvy Ray Smith), exact for the
// products of two bytes. Exactness matters here: identity laws such as
// "multiply by black is black" and "opaque source replaces destination" must
// hold bit for bit.
func div255(x uint16) uint16 {
	t := x + 1
	return (t + (t >> 8)) >> 8
}

// mulDiv255 multiplies two bytes and divides by 255 with rounding.
func mulDiv255(a, b byte) byte {
	return byte(div255(uint16(a)*uint16(b) + 127))
}

// inv255 computes 255 - x (inverse alpha).
func inv255(x byte) byte {
	return 255 - x
}

// addDiv255 adds two bytes and clamps to 255.
func addDiv255(a, b byte) byte {
	sum := uint16(a) + uint16(b)
	if sum > 255 {
		return 255
	}
	return byte(sum)
}

// clampUnit clamps v to [0, 1].
func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// toByte converts a [0, 1] value to a rounded byte.
func toByte(v float64) byte {
	return byte(clampUnit(v)*255 + 0.5)
}
