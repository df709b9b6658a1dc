package mockup

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"

	"github.com/gogpu/mockup/geom"
)

var (
	gray  = color.RGBA{R: 128, G: 128, B: 128, A: 255}
	red   = color.RGBA{R: 255, A: 255}
	blue  = color.RGBA{B: 255, A: 255}
	black = color.RGBA{A: 255}
)

func solidImage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func solidPNG(t *testing.T, w, h int, c color.RGBA) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, solidImage(w, h, c)); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

func solidSnapshot(w, h int, c color.RGBA) *TemplateSnapshot {
	return NewSnapshot("tpl", solidImage(w, h, c))
}

// scenarioA is a gray 1200x800 scene with one axis-aligned insert area.
func scenarioA(t *testing.T) (*MockupDefinition, AssetResolver, Snapshots) {
	t.Helper()
	def := &MockupDefinition{
		ID:         "scenario-a",
		Name:       "Scenario A",
		CanvasSize: geom.Sz(1200, 800),
		Layers:     Layers{Base: BaseLayer{Src: "base.png", Opacity: 1}},
		InsertAreas: []InsertArea{{
			ID:           "front",
			Quad:         geom.RectQuad(200, 150, 400, 300),
			ExpectedSize: geom.Sz(400, 300),
			Opacity:      1,
		}},
	}
	res := MapResolver{"base.png": solidPNG(t, 1200, 800, gray)}
	snaps := Snapshots{"front": solidSnapshot(400, 300, red)}
	return def, res, snaps
}

func assertPixel(t *testing.T, pm *Pixmap, x, y int, want color.RGBA) {
	t.Helper()
	r, g, b, a := pm.PixelAt(x, y)
	if r != want.R || g != want.G || b != want.B || a != want.A {
		t.Errorf("pixel (%d,%d) = (%d,%d,%d,%d), want (%d,%d,%d,%d)",
			x, y, r, g, b, a, want.R, want.G, want.B, want.A)
	}
}

// mockRenderer is a scriptable Renderer. Warp and Blend delegate to the CPU
// renderer unless opErr is set.
type mockRenderer struct {
	name      string
	initErr   error
	initDelay chan struct{} // Init blocks until closed, when non-nil
	opErr     error

	mu     sync.Mutex
	closed bool
	warps  int
}

func newMockRenderer(name string) *mockRenderer {
	return &mockRenderer{name: name}
}

func (m *mockRenderer) Name() string      { return m.name }
func (m *mockRenderer) Kind() BackendKind { return BackendGPU }

func (m *mockRenderer) Init() error {
	if m.initDelay != nil {
		<-m.initDelay
	}
	return m.initErr
}

func (m *mockRenderer) Close() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
}

func (m *mockRenderer) isClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func (m *mockRenderer) Warp(target RenderTarget, op WarpOp) error {
	m.mu.Lock()
	m.warps++
	m.mu.Unlock()
	if m.opErr != nil {
		return m.opErr
	}
	return cpuRenderer{}.Warp(target, op)
}

func (m *mockRenderer) Blend(target, src RenderTarget, mode BlendMode, opacity float64) error {
	if m.opErr != nil {
		return m.opErr
	}
	return cpuRenderer{}.Blend(target, src, mode, opacity)
}

// useGPUFactory registers f for the duration of the test.
func useGPUFactory(t *testing.T, f RendererFactory) {
	t.Helper()
	gpuMu.Lock()
	prev := gpuFactory
	gpuFactory = f
	gpuMu.Unlock()
	t.Cleanup(func() {
		gpuMu.Lock()
		gpuFactory = prev
		gpuLoggerSink = nil
		gpuMu.Unlock()
	})
}

type failingCPU struct{ cpuRenderer }

func (failingCPU) Init() error { return errCPUBroken }
