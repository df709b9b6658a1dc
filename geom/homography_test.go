// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package geom

import (
	"errors"
	"math"
	"testing"
)

const tolerance = 1e-6

func TestSolveHomographyCornerCorrespondence(t *testing.T) {
	tests := []struct {
		name string
		src  Size
		dst  Quad
	}{
		{"axis aligned", Sz(400, 300), RectQuad(200, 150, 400, 300)},
		{"identity", Sz(100, 100), RectQuad(0, 0, 100, 100)},
		{"parallelogram", Sz(50, 20), Quad{Pt(10, 10), Pt(60, 20), Pt(70, 40), Pt(20, 30)}},
		{"perspective", Sz(400, 300), Quad{Pt(120, 80), Pt(520, 110), Pt(500, 420), Pt(90, 380)}},
		{"strong keystone", Sz(1000, 600), Quad{Pt(300, 100), Pt(700, 100), Pt(990, 590), Pt(10, 590)}},
		{"tiny", Sz(1, 1), Quad{Pt(0.1, 0.1), Pt(0.3, 0.12), Pt(0.31, 0.4), Pt(0.09, 0.38)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := SolveHomography(tt.src, tt.dst)
			if err != nil {
				t.Fatalf("SolveHomography() error = %v", err)
			}
			srcCorners := RectQuad(0, 0, tt.src.Width, tt.src.Height).Points()
			dstCorners := tt.dst.Points()
			for i, sp := range srcCorners {
				got, ok := h.Apply(sp)
				if !ok {
					t.Fatalf("Apply(%v) hit line at infinity", sp)
				}
				if !got.Near(dstCorners[i], tolerance) {
					t.Errorf("corner %v: Apply(%v) = %v, want %v", Corner(i), sp, got, dstCorners[i])
				}
			}
		})
	}
}

func TestSolveHomographyAxisAlignedIsScaleTranslate(t *testing.T) {
	h, err := SolveHomography(Sz(400, 300), RectQuad(200, 150, 400, 300))
	if err != nil {
		t.Fatalf("SolveHomography() error = %v", err)
	}
	if !h.IsAffine() {
		t.Fatalf("expected affine homography, got %v", h)
	}
	if math.Abs(h[1]) > tolerance || math.Abs(h[3]) > tolerance {
		t.Errorf("expected no shear, got %v", h)
	}
	if math.Abs(h[0]-1) > tolerance || math.Abs(h[4]-1) > tolerance {
		t.Errorf("expected unit scale, got %v", h)
	}
	if math.Abs(h[2]-200) > tolerance || math.Abs(h[5]-150) > tolerance {
		t.Errorf("expected translation (200,150), got (%v,%v)", h[2], h[5])
	}
}

func TestSolveHomographyPreservesLines(t *testing.T) {
	dst := Quad{Pt(120, 80), Pt(520, 110), Pt(500, 420), Pt(90, 380)}
	h, err := SolveHomography(Sz(400, 300), dst)
	if err != nil {
		t.Fatalf("SolveHomography() error = %v", err)
	}
	// Points along the top source edge must stay on the TL-TR line.
	for _, x := range []float64{50, 100, 200, 333} {
		p, _ := h.Apply(Pt(x, 0))
		cross := dst.TopRight.Sub(dst.TopLeft).Cross(p.Sub(dst.TopLeft))
		if math.Abs(cross) > 1e-6 {
			t.Errorf("Apply(%v,0) = %v is off the top edge (cross=%v)", x, p, cross)
		}
	}
}

func TestSolveHomographyDegenerate(t *testing.T) {
	p := Pt(42, 42)
	tests := []struct {
		name string
		src  Size
		dst  Quad
	}{
		{"all points equal", Sz(100, 100), Quad{p, p, p, p}},
		{"collinear", Sz(100, 100), Quad{Pt(0, 0), Pt(10, 0), Pt(20, 0), Pt(30, 0)}},
		{"three collinear", Sz(100, 100), Quad{Pt(0, 0), Pt(10, 0), Pt(20, 0), Pt(0, 10)}},
		{"empty source", Sz(0, 100), RectQuad(0, 0, 10, 10)},
		{"nan corner", Sz(10, 10), Quad{Pt(math.NaN(), 0), Pt(10, 0), Pt(10, 10), Pt(0, 10)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := SolveHomography(tt.src, tt.dst)
			if !errors.Is(err, ErrDegenerate) {
				t.Fatalf("SolveHomography() error = %v, want ErrDegenerate", err)
			}
			if h != (Homography{}) {
				t.Errorf("expected zero homography, got %v", h)
			}
		})
	}
}

func TestHomographyInvertRoundTrip(t *testing.T) {
	dst := Quad{Pt(120, 80), Pt(520, 110), Pt(500, 420), Pt(90, 380)}
	h, err := SolveHomography(Sz(400, 300), dst)
	if err != nil {
		t.Fatalf("SolveHomography() error = %v", err)
	}
	inv, err := h.Invert()
	if err != nil {
		t.Fatalf("Invert() error = %v", err)
	}
	for _, sp := range []Point{Pt(0, 0), Pt(400, 300), Pt(123, 45), Pt(399, 1)} {
		dp, _ := h.Apply(sp)
		back, ok := inv.Apply(dp)
		if !ok || !back.Near(sp, 1e-6) {
			t.Errorf("inverse(%v) = %v, want %v", dp, back, sp)
		}
	}
}

func TestHomographyInvertSingular(t *testing.T) {
	if _, err := (Homography{}).Invert(); !errors.Is(err, ErrDegenerate) {
		t.Errorf("Invert(zero) error = %v, want ErrDegenerate", err)
	}
	singular := Homography{1, 2, 3, 2, 4, 6, 0, 0, 1}
	if _, err := singular.Invert(); !errors.Is(err, ErrDegenerate) {
		t.Errorf("Invert(singular) error = %v, want ErrDegenerate", err)
	}
}
