// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package blend

import "testing"

func TestParseMode(t *testing.T) {
	tests := []struct {
		in   string
		want Mode
		ok   bool
	}{
		{"", ModeNormal, true},
		{"normal", ModeNormal, true},
		{"multiply", ModeMultiply, true},
		{"screen", ModeScreen, true},
		{"overlay", ModeOverlay, true},
		{"soft-light", ModeSoftLight, true},
		{"hard-light", ModeHardLight, true},
		{"color-dodge", ModeNormal, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseMode(tt.in)
			if got != tt.want || ok != tt.ok {
				t.Errorf("ParseMode(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
			}
			if ok && tt.in != "" && got.String() != tt.in {
				t.Errorf("String() = %q, want %q", got.String(), tt.in)
			}
		})
	}
}

func TestBlendModes(t *testing.T) {
	tests := []struct {
		name           string
		mode           Mode
		sr, sg, sb, sa byte
		dr, dg, db, da byte
		wr, wg, wb, wa byte
	}{
		{"normal opaque replaces", ModeNormal, 255, 0, 0, 255, 10, 20, 30, 255, 255, 0, 0, 255},
		{"normal transparent keeps", ModeNormal, 0, 0, 0, 0, 10, 20, 30, 255, 10, 20, 30, 255},
		{"normal half red over blue", ModeNormal, 128, 0, 0, 128, 0, 0, 255, 255, 128, 0, 127, 255},
		{"multiply black is black", ModeMultiply, 0, 0, 0, 255, 200, 100, 50, 255, 0, 0, 0, 255},
		{"multiply white is identity", ModeMultiply, 255, 255, 255, 255, 200, 100, 50, 255, 200, 100, 50, 255},
		{"multiply gray gray", ModeMultiply, 128, 128, 128, 255, 128, 128, 128, 255, 64, 64, 64, 255},
		{"screen white is white", ModeScreen, 255, 255, 255, 255, 10, 20, 30, 255, 255, 255, 255, 255},
		{"screen black is identity", ModeScreen, 0, 0, 0, 255, 10, 20, 30, 255, 10, 20, 30, 255},
		{"hard-light black is black", ModeHardLight, 0, 0, 0, 255, 200, 100, 50, 255, 0, 0, 0, 255},
		{"hard-light white is white", ModeHardLight, 255, 255, 255, 255, 200, 100, 50, 255, 255, 255, 255, 255},
		{"overlay keeps black backdrop", ModeOverlay, 200, 100, 50, 255, 0, 0, 0, 255, 0, 0, 0, 255},
		{"overlay keeps white backdrop", ModeOverlay, 200, 100, 50, 255, 255, 255, 255, 255, 255, 255, 255, 255},
		{"soft-light keeps black backdrop", ModeSoftLight, 200, 100, 50, 255, 0, 0, 0, 255, 0, 0, 0, 255},
		{"soft-light keeps white backdrop", ModeSoftLight, 10, 100, 250, 255, 255, 255, 255, 255, 255, 255, 255, 255},
		{"multiply over transparent is source", ModeMultiply, 10, 20, 30, 255, 0, 0, 0, 0, 10, 20, 30, 255},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, g, b, a := GetFunc(tt.mode)(tt.sr, tt.sg, tt.sb, tt.sa, tt.dr, tt.dg, tt.db, tt.da)
			if r != tt.wr || g != tt.wg || b != tt.wb || a != tt.wa {
				t.Errorf("got (%d,%d,%d,%d), want (%d,%d,%d,%d)", r, g, b, a, tt.wr, tt.wg, tt.wb, tt.wa)
			}
		})
	}
}

func TestSpanOpacity(t *testing.T) {
	dst := []byte{0, 0, 255, 255, 0, 0, 255, 255}
	src := []byte{255, 0, 0, 255, 255, 0, 0, 255}

	zero := append([]byte(nil), dst...)
	Span(zero, src, ModeNormal, 0)
	for i := range zero {
		if zero[i] != dst[i] {
			t.Fatalf("opacity 0 modified dst: %v", zero)
		}
	}

	full := append([]byte(nil), dst...)
	Span(full, src, ModeNormal, 255)
	for i := 0; i < len(full); i += 4 {
		if full[i] != 255 || full[i+2] != 0 || full[i+3] != 255 {
			t.Fatalf("opacity 255 pixel %d = %v, want opaque red", i/4, full[i:i+4])
		}
	}

	half := append([]byte(nil), dst...)
	Span(half, src, ModeNormal, 128)
	if half[0] != 128 || half[2] != 127 || half[3] != 255 {
		t.Errorf("opacity 128 = %v, want (128,0,127,255)", half[:4])
	}
}

func TestOpacity(t *testing.T) {
	tests := []struct {
		in   float64
		want byte
	}{
		{-1, 0}, {0, 0}, {0.5, 128}, {1, 255}, {3, 255},
	}
	for _, tt := range tests {
		if got := Opacity(tt.in); got != tt.want {
			t.Errorf("Opacity(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestMulDiv255(t *testing.T) {
	for a := 0; a < 256; a++ {
		for _, b := range []int{0, 1, 127, 128, 254, 255} {
			want := byte((a*b + 127) / 255)
			if got := mulDiv255(byte(a), byte(b)); got != want {
				t.Fatalf("mulDiv255(%d, %d) = %d, want %d", a, b, got, want)
			}
		}
	}
}
