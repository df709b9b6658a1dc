package mockup

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"
)

// Asset errors.
var (
	// ErrAssetNotFound is returned by resolvers for unknown sources.
	ErrAssetNotFound = errors.New("mockup: asset not found")

	// ErrUnsupportedFormat is returned when asset bytes are not a decodable
	// image.
	ErrUnsupportedFormat = errors.New("mockup: unsupported image format")

	// ErrEmptyData is returned when asset data is empty.
	ErrEmptyData = errors.New("mockup: empty image data")

	// ErrImageTooLarge is returned when an asset's declared size exceeds
	// MaxImageDimension.
	ErrImageTooLarge = errors.New("mockup: image too large")
)

// AssetResolver fetches the bytes behind an image source reference
// (layers.base.src, layers.overlay.src).
type AssetResolver interface {
	Resolve(ctx context.Context, src string) ([]byte, error)
}

// ResolverFunc adapts a function to AssetResolver.
type ResolverFunc func(ctx context.Context, src string) ([]byte, error)

// Resolve calls f.
func (f ResolverFunc) Resolve(ctx context.Context, src string) ([]byte, error) {
	return f(ctx, src)
}

// DirResolver resolves sources as paths relative to a directory. Absolute
// paths and "file://" URLs are read as-is.
type DirResolver struct {
	Root string
}

// Resolve reads the file named by src.
func (d DirResolver) Resolve(ctx context.Context, src string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p := strings.TrimPrefix(src, "file://")
	if !filepath.IsAbs(p) {
		p = filepath.Join(d.Root, p)
	}
	data, err := os.ReadFile(filepath.Clean(p))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrAssetNotFound, src)
	}
	return data, err
}

// FSResolver resolves sources inside an fs.FS (e.g. an embed.FS).
type FSResolver struct {
	FS fs.FS
}

// Resolve reads src from the file system.
func (r FSResolver) Resolve(ctx context.Context, src string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := fs.ReadFile(r.FS, strings.TrimPrefix(src, "/"))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrAssetNotFound, src)
	}
	return data, err
}

// MapResolver serves in-memory assets keyed by source.
type MapResolver map[string][]byte

// Resolve looks src up in the map.
func (m MapResolver) Resolve(_ context.Context, src string) ([]byte, error) {
	data, ok := m[src]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAssetNotFound, src)
	}
	return data, nil
}

// ChainResolver tries each resolver in order and returns the first result
// that is not ErrAssetNotFound.
type ChainResolver []AssetResolver

// Resolve walks the chain.
func (c ChainResolver) Resolve(ctx context.Context, src string) ([]byte, error) {
	for _, r := range c {
		data, err := r.Resolve(ctx, src)
		if errors.Is(err, ErrAssetNotFound) {
			continue
		}
		return data, err
	}
	return nil, fmt.Errorf("%w: %s", ErrAssetNotFound, src)
}

// MaxImageDimension bounds the width and height of a decoded asset.
const MaxImageDimension = MaxCanvasDimension * 2

// maxImagePixels bounds the decoded area of an asset.
const maxImagePixels = MaxCanvasDimension * MaxCanvasDimension

type imageCodec struct {
	decode func(io.Reader) (image.Image, error)
	config func(io.Reader) (image.Config, error)
}

// codecs is keyed by filetype extension.
var codecs = map[string]imageCodec{
	"png":  {png.Decode, png.DecodeConfig},
	"jpg":  {jpeg.Decode, jpeg.DecodeConfig},
	"gif":  {gif.Decode, gif.DecodeConfig},
	"webp": {webp.Decode, webp.DecodeConfig},
	"bmp":  {bmp.Decode, bmp.DecodeConfig},
	"tif":  {tiff.Decode, tiff.DecodeConfig},
}

// DecodeImage sniffs the container format of data and decodes it into a
// premultiplied Pixmap. PNG, JPEG, GIF, WebP, BMP and TIFF are supported.
// The header is checked first: images beyond MaxImageDimension are
// rejected with ErrImageTooLarge before any pixels are allocated.
func DecodeImage(data []byte) (*Pixmap, error) {
	if len(data) == 0 {
		return nil, ErrEmptyData
	}
	kind, err := filetype.Image(data)
	if err != nil || kind == filetype.Unknown {
		return nil, ErrUnsupportedFormat
	}
	codec, ok := codecs[kind.Extension]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, kind.MIME.Value)
	}

	cfg, err := codec.config(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("mockup: decode %s: %w", kind.Extension, err)
	}
	if cfg.Width > MaxImageDimension || cfg.Height > MaxImageDimension || cfg.Width*cfg.Height > maxImagePixels {
		return nil, fmt.Errorf("%w: %dx%d", ErrImageTooLarge, cfg.Width, cfg.Height)
	}

	img, err := codec.decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("mockup: decode %s: %w", kind.Extension, err)
	}
	return FromImage(img), nil
}
