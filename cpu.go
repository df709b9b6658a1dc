package mockup

import (
	"github.com/gogpu/mockup/internal/blend"
	"github.com/gogpu/mockup/internal/warp"
)

// cpuRenderer composites in software. Perspective is approximated with the
// triangle-affine split: exact at the four corners, affine inside each half.
type cpuRenderer struct{}

var _ Renderer = cpuRenderer{}

// newCPURenderer is a variable so tests can simulate a CPU init failure.
var newCPURenderer = func() Renderer { return cpuRenderer{} }

func (cpuRenderer) Name() string      { return "cpu-triangles" }
func (cpuRenderer) Kind() BackendKind { return BackendCPU }
func (cpuRenderer) Init() error       { return nil }
func (cpuRenderer) Close()            {}

func (cpuRenderer) Warp(target RenderTarget, op WarpOp) error {
	tex := warp.Texture{Surface: surface(op.Source), Size: op.SourceSize}
	return warp.Quad(surface(target), tex, op.Quad, blend.Opacity(op.Opacity), op.Interpolation.internal())
}

// warpExact evaluates the inverse homography at every destination pixel.
// It stands in for a GPU warp that declined, so a GPU session keeps true
// perspective inside the quad.
func warpExact(target RenderTarget, op WarpOp) error {
	tex := warp.Texture{Surface: surface(op.Source), Size: op.SourceSize}
	return warp.Homography(surface(target), tex, op.Quad, blend.Opacity(op.Opacity), op.Interpolation.internal())
}

func (cpuRenderer) Blend(target RenderTarget, src RenderTarget, mode BlendMode, opacity float64) error {
	return warp.Composite(surface(target), surface(src), mode.internal(), blend.Opacity(opacity))
}

func surface(t RenderTarget) warp.Surface {
	return warp.Surface{Pix: t.Data, Width: t.Width, Height: t.Height, Stride: t.Stride}
}
