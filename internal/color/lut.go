// Package color converts linear-light samples to 8-bit sRGB.
//
// 32-bit Photoshop documents store linear values. Previews and composites
// are handled as 8-bit sRGB everywhere else, so float planes go through
// this table once when they are decoded.
//
// References:
//   - sRGB specification: https://www.w3.org/Graphics/Color/sRGB
package color

import "math"

// lutSize gives 12-bit precision, enough for 8-bit sRGB output.
const lutSize = 4096

var linearToSRGBLUT [lutSize]uint8

func init() {
	for i := range lutSize {
		linearToSRGBLUT[i] = encode(float64(i) / (lutSize - 1))
	}
}

// LinearToSRGB8 converts a linear component to an sRGB byte using the
// lookup table. Input outside [0, 1] is clamped; NaN maps to 0.
func LinearToSRGB8(l float32) uint8 {
	if !(l > 0) {
		return 0
	}
	if l >= 1 {
		return 255
	}
	return linearToSRGBLUT[int(l*(lutSize-1)+0.5)]
}

// LinearToSRGB8Slow is the math.Pow reference for LinearToSRGB8.
func LinearToSRGB8Slow(l float32) uint8 {
	if !(l > 0) {
		return 0
	}
	return encode(min(float64(l), 1))
}

func encode(l float64) uint8 {
	var s float64
	if l <= 0.0031308 {
		s = l * 12.92
	} else {
		s = 1.055*math.Pow(l, 1.0/2.4) - 0.055
	}
	//nolint:gosec // G115: clamped to [0,255]
	return uint8(min(max(s*255.0+0.5, 0), 255))
}
