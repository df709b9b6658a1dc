package mockup

import (
	"errors"
	"sync"

	"github.com/gogpu/mockup/geom"
)

// BackendKind names the class of renderer a Compositor selected.
type BackendKind string

const (
	// BackendGPU is the wgpu compute renderer evaluating the full homography
	// per pixel.
	BackendGPU BackendKind = "gpu"

	// BackendCPU is the software renderer using the triangle-affine split.
	BackendCPU BackendKind = "cpu"
)

// RenderTarget provides pixel buffer access to a renderer.
// The Data slice must be in premultiplied RGBA format, 4 bytes per pixel,
// laid out row by row with the given Stride.
type RenderTarget struct {
	Data          []uint8
	Width, Height int
	Stride        int // bytes per row
}

// WarpOp describes one projection of a source raster onto a quad.
type WarpOp struct {
	// Source holds the design pixels.
	Source RenderTarget

	// SourceSize is the nominal size of the source rectangle. The Source
	// pixels are stretched to it before the warp.
	SourceSize geom.Size

	// Quad is the destination region in canvas space.
	Quad geom.Quad

	// Opacity in [0, 1].
	Opacity float64

	// Interpolation selects the sampling filter.
	Interpolation Interpolation
}

// Renderer is a compositing backend. The Compositor selects one at
// construction (GPU first, CPU as fallback) and drives it through the
// compositing passes.
//
// Both implementations guarantee exact corner correspondence for Warp and the
// same blend laws for Blend; pixel-identical output is not guaranteed.
type Renderer interface {
	// Name returns a human-readable renderer name (e.g., "wgpu-vulkan").
	Name() string

	// Kind reports whether this is a GPU or CPU renderer.
	Kind() BackendKind

	// Init acquires backend resources. Called once before any other method.
	Init() error

	// Close releases backend resources.
	Close()

	// Warp projects op.Source onto op.Quad inside target, source-over.
	// Returns geom.ErrDegenerate for quads without area and
	// ErrFallbackToCPU when the operation should be re-run on the CPU.
	Warp(target RenderTarget, op WarpOp) error

	// Blend composites src (same size as target) over the whole target with
	// the given blend mode and opacity.
	Blend(target RenderTarget, src RenderTarget, mode BlendMode, opacity float64) error
}

// RendererFactory creates an uninitialized Renderer.
type RendererFactory func() Renderer

var (
	gpuMu         sync.RWMutex
	gpuFactory    RendererFactory
	gpuLoggerSink Renderer
)

// RegisterGPURenderer registers the factory used to create GPU renderers.
//
// Only one factory can be registered. Subsequent calls replace the previous
// one. Registration is typically done via blank import:
//
//	import _ "github.com/gogpu/mockup/gpu" // enables GPU compositing
func RegisterGPURenderer(f RendererFactory) error {
	if f == nil {
		return errors.New("mockup: renderer factory must not be nil")
	}
	gpuMu.Lock()
	gpuFactory = f
	gpuMu.Unlock()
	return nil
}

// registeredGPUFactory returns the GPU factory, or nil if none is registered.
func registeredGPUFactory() RendererFactory {
	gpuMu.RLock()
	f := gpuFactory
	gpuMu.RUnlock()
	return f
}

// trackGPURenderer remembers r as the target for logger propagation and
// hands it the current logger.
func trackGPURenderer(r Renderer) {
	gpuMu.Lock()
	gpuLoggerSink = r
	gpuMu.Unlock()
	propagateLogger(r, Logger())
}

// untrackGPURenderer drops r as the logger target if it is still current.
func untrackGPURenderer(r Renderer) {
	gpuMu.Lock()
	if gpuLoggerSink == r {
		gpuLoggerSink = nil
	}
	gpuMu.Unlock()
}
