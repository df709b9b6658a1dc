package mockup

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"io"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

func TestDecodeImageFormats(t *testing.T) {
	src := solidImage(8, 6, red)

	encoders := []struct {
		name string
		enc  func(io.Writer, image.Image) error
	}{
		{"png", func(w io.Writer, m image.Image) error { _, err := w.Write(solidPNG(t, 8, 6, red)); return err }},
		{"jpeg", func(w io.Writer, m image.Image) error { return jpeg.Encode(w, m, nil) }},
		{"gif", func(w io.Writer, m image.Image) error {
			p := image.NewPaletted(m.Bounds(), color.Palette{red, black})
			return gif.Encode(w, p, nil)
		}},
		{"bmp", bmp.Encode},
		{"tiff", func(w io.Writer, m image.Image) error { return tiff.Encode(w, m, nil) }},
	}

	for _, tt := range encoders {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := tt.enc(&buf, src); err != nil {
				t.Fatalf("encode: %v", err)
			}
			pm, err := DecodeImage(buf.Bytes())
			if err != nil {
				t.Fatalf("DecodeImage: %v", err)
			}
			if pm.Width() != 8 || pm.Height() != 6 {
				t.Errorf("size = %dx%d, want 8x6", pm.Width(), pm.Height())
			}
			if r, _, _, a := pm.PixelAt(4, 3); r < 240 || a != 255 {
				t.Errorf("center pixel r=%d a=%d, want red", r, a)
			}
		})
	}
}

func TestDecodeImageErrors(t *testing.T) {
	if _, err := DecodeImage(nil); !errors.Is(err, ErrEmptyData) {
		t.Errorf("DecodeImage(nil) = %v, want ErrEmptyData", err)
	}
	if _, err := DecodeImage([]byte("definitely not an image")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("DecodeImage(text) = %v, want ErrUnsupportedFormat", err)
	}
	// Valid PNG signature, truncated body.
	data := solidPNG(t, 4, 4, red)[:20]
	if _, err := DecodeImage(data); err == nil || errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("DecodeImage(truncated) = %v, want decode error", err)
	}
}

// pngHeader returns a PNG signature and IHDR chunk declaring w x h RGBA
// pixels, with no image data.
func pngHeader(w, h uint32) []byte {
	var ihdr bytes.Buffer
	ihdr.WriteString("IHDR")
	_ = binary.Write(&ihdr, binary.BigEndian, w)
	_ = binary.Write(&ihdr, binary.BigEndian, h)
	ihdr.Write([]byte{8, 6, 0, 0, 0})

	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")
	_ = binary.Write(&buf, binary.BigEndian, uint32(ihdr.Len()-4))
	buf.Write(ihdr.Bytes())
	_ = binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(ihdr.Bytes()))
	return buf.Bytes()
}

func TestDecodeImageTooLarge(t *testing.T) {
	tests := []struct {
		name string
		w, h uint32
	}{
		{"wide", MaxImageDimension + 1, 1},
		{"tall", 1, MaxImageDimension + 1},
		{"area", 30000, 30000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeImage(pngHeader(tt.w, tt.h)); !errors.Is(err, ErrImageTooLarge) {
				t.Errorf("DecodeImage(%dx%d) = %v, want ErrImageTooLarge", tt.w, tt.h, err)
			}
		})
	}

	// A header within limits gets past the size check and fails on the
	// missing pixel data instead.
	if _, err := DecodeImage(pngHeader(4, 4)); err == nil || errors.Is(err, ErrImageTooLarge) {
		t.Errorf("DecodeImage(4x4 header) = %v, want decode error", err)
	}
}

func TestRenderRejectsOversizedBase(t *testing.T) {
	def, res, snaps := scenarioA(t)
	res.(MapResolver)["base.png"] = pngHeader(60000, 60000)

	c := New(res, WithoutGPU())
	defer c.Destroy()

	out := render(t, c, def, snaps)
	if out.Success {
		t.Fatal("Render succeeded with an oversized base")
	}
	var ae *AssetLoadError
	if !errors.As(out.Err, &ae) || !errors.Is(out.Err, ErrImageTooLarge) {
		t.Errorf("Err = %v, want AssetLoadError wrapping ErrImageTooLarge", out.Err)
	}
}

func TestResolvers(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.png"), []byte("A"), 0o600); err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	tests := []struct {
		name    string
		r       AssetResolver
		src     string
		want    string
		wantErr error
	}{
		{"dir relative", DirResolver{Root: dir}, "a.png", "A", nil},
		{"dir file url", DirResolver{}, "file://" + filepath.Join(dir, "a.png"), "A", nil},
		{"dir missing", DirResolver{Root: dir}, "b.png", "", ErrAssetNotFound},
		{"map", MapResolver{"k": []byte("K")}, "k", "K", nil},
		{"map missing", MapResolver{}, "k", "", ErrAssetNotFound},
		{"fs", FSResolver{FS: fstest.MapFS{"x/y.png": {Data: []byte("Y")}}}, "/x/y.png", "Y", nil},
		{"chain", ChainResolver{MapResolver{}, MapResolver{"k": []byte("2")}}, "k", "2", nil},
		{"chain missing", ChainResolver{MapResolver{}}, "k", "", ErrAssetNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.r.Resolve(ctx, tt.src)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("Resolve = %q, want %q", got, tt.want)
			}
		})
	}
}
