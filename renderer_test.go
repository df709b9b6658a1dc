package mockup

import (
	"errors"
	"testing"

	"github.com/gogpu/mockup/geom"
)

func TestRegisterGPURendererNil(t *testing.T) {
	if err := RegisterGPURenderer(nil); err == nil {
		t.Error("RegisterGPURenderer(nil) = nil, want error")
	}
}

func TestRegisterGPURendererReplaces(t *testing.T) {
	useGPUFactory(t, nil)

	first := newMockRenderer("first")
	second := newMockRenderer("second")
	if err := RegisterGPURenderer(func() Renderer { return first }); err != nil {
		t.Fatal(err)
	}
	if err := RegisterGPURenderer(func() Renderer { return second }); err != nil {
		t.Fatal(err)
	}

	f := registeredGPUFactory()
	if f == nil {
		t.Fatal("no factory registered")
	}
	if got := f().Name(); got != "second" {
		t.Errorf("factory produced %q, want second", got)
	}
}

func TestCPURendererWarpDegenerate(t *testing.T) {
	target := NewPixmap(10, 10)
	src := NewPixmap(2, 2)
	err := cpuRenderer{}.Warp(target.target(), WarpOp{
		Source:     src.target(),
		SourceSize: geom.Sz(2, 2),
		Quad:       geom.Quad{},
		Opacity:    1,
	})
	if !errors.Is(err, geom.ErrDegenerate) {
		t.Errorf("Warp(degenerate) = %v, want ErrDegenerate", err)
	}
}

func TestCPURendererBlendSizeMismatch(t *testing.T) {
	target := NewPixmap(10, 10)
	src := NewPixmap(5, 5)
	if err := (cpuRenderer{}).Blend(target.target(), src.target(), BlendNormal, 1); err == nil {
		t.Error("Blend with mismatched sizes succeeded")
	}
}

func TestErrFallbackToCPU(t *testing.T) {
	wrapped := errors.Join(errors.New("buffer too large"), ErrFallbackToCPU)
	if !errors.Is(wrapped, ErrFallbackToCPU) {
		t.Error("wrapped ErrFallbackToCPU not detected")
	}
}
