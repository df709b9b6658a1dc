//go:build !nogpu

// Package gpu registers the wgpu compute renderer for GPU-accelerated
// mockup compositing.
//
// Import this package to let every mockup.Compositor try the GPU first. The
// renderer evaluates the full homography per pixel in a compute shader.
//
// If GPU initialization fails (no Vulkan available) or takes longer than the
// compositor's GPU timeout, the compositor silently falls back to the CPU
// renderer.
//
// Usage:
//
//	import _ "github.com/gogpu/mockup/gpu" // enable GPU compositing
package gpu

import (
	"errors"
	"sync"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/mockup"
	gpuimpl "github.com/gogpu/mockup/internal/gpu"
)

var (
	mu       sync.Mutex
	provider gpucontext.DeviceProvider
)

func init() {
	if err := mockup.RegisterGPURenderer(newRenderer); err != nil {
		mockup.Logger().Warn("GPU renderer not available", "err", err)
	}
}

// newRenderer creates a renderer bound to the shared device, if one was
// configured.
func newRenderer() mockup.Renderer {
	r := gpuimpl.New()

	mu.Lock()
	p := provider
	mu.Unlock()

	if p != nil {
		if err := r.SetDeviceProvider(p); err != nil {
			mockup.Logger().Warn("gpu: shared device rejected, opening a private one", "err", err)
		}
	}
	return r
}

// SetDeviceProvider makes compositors created afterwards use a shared GPU
// device from an external provider (e.g., gogpu) instead of opening their
// own. This avoids creating a separate GPU instance per compositor.
//
// The provider must also expose HalDevice() any and HalQueue() any for
// direct HAL access. Pass nil to go back to private devices.
func SetDeviceProvider(p gpucontext.DeviceProvider) error {
	if p != nil {
		type halProvider interface {
			HalDevice() any
			HalQueue() any
		}
		if _, ok := p.(halProvider); !ok {
			return errors.New("gpu: provider does not expose HAL types")
		}
	}
	mu.Lock()
	provider = p
	mu.Unlock()
	return nil
}
