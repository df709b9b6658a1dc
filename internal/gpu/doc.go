//go:build !nogpu

// Package gpu provides the wgpu/hal compute renderer for mockup compositing.
//
// This is an internal package used by the mockup library. Applications
// enable it with a blank import of github.com/gogpu/mockup/gpu.
//
// # Pipelines
//
// Two compute pipelines are created at Init:
//   - warp: evaluates the inverse homography per destination pixel inside
//     the quad's bounding box, samples the design (bilinear or nearest,
//     clamp-to-edge) and composites it source-over.
//   - blend: applies a W3C separable blend mode to a full-canvas layer.
//
// Shaders are written in WGSL and compiled to SPIR-V with naga.
//
// # Data Flow
//
// Pixels stay on the CPU between operations. Each operation uploads the
// canvas and source as packed u32 storage buffers, dispatches 8x8
// workgroups, and reads the canvas back through a staging buffer. Operations
// whose buffers exceed the device limits return mockup.ErrFallbackToCPU so
// the compositor re-runs them in software.
package gpu
