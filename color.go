package mockup

import (
	"image/color"
	"strconv"
	"strings"
)

// RGBA is a straight-alpha color with components in [0, 1].
type RGBA struct {
	R, G, B, A float64
}

// Color converts c to an 8-bit color.NRGBA, rounding to nearest.
func (c RGBA) Color() color.Color {
	return color.NRGBA{R: to8(c.R), G: to8(c.G), B: to8(c.B), A: to8(c.A)}
}

// RGBA implements color.Color with alpha-premultiplied 16-bit components.
func (c RGBA) RGBA() (r, g, b, a uint32) {
	return c.Color().RGBA()
}

// premultiplied returns the premultiplied 8-bit bytes stored in a Pixmap.
func (c RGBA) premultiplied() (r, g, b, a uint8) {
	return to8(c.R * c.A), to8(c.G * c.A), to8(c.B * c.A), to8(c.A)
}

func to8(v float64) uint8 {
	return uint8(min(max(v*255, 0), 255) + 0.5)
}

// Hex parses "RGB", "RGBA", "RRGGBB" or "RRGGBBAA", with an optional
// leading '#'. Anything else yields opaque black.
func Hex(s string) RGBA {
	s = strings.TrimPrefix(s, "#")
	if len(s) == 3 || len(s) == 4 {
		var long strings.Builder
		for i := 0; i < len(s); i++ {
			long.WriteByte(s[i])
			long.WriteByte(s[i])
		}
		s = long.String()
	}
	if len(s) == 6 {
		s += "ff"
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if len(s) != 8 || err != nil {
		return RGBA{A: 1}
	}
	return RGBA{
		R: float64(v>>24&0xff) / 255,
		G: float64(v>>16&0xff) / 255,
		B: float64(v>>8&0xff) / 255,
		A: float64(v&0xff) / 255,
	}
}
