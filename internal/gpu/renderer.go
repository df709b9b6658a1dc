//go:build !nogpu

package gpu

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/mockup"
	"github.com/gogpu/mockup/geom"
	"github.com/gogpu/mockup/internal/blend"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// maxWorkgroups is the WebGPU default for workgroups per dispatch dimension.
const maxWorkgroups = 65535

// fenceTimeout bounds the wait for one submitted operation.
const fenceTimeout = 5 * time.Second

// ErrNotInitialized is returned when an operation runs before Init.
var ErrNotInitialized = errors.New("gpu: renderer not initialized")

// Renderer composites on the GPU through wgpu/hal compute pipelines.
// It implements mockup.Renderer.
type Renderer struct {
	mu sync.Mutex

	instance hal.Instance
	device   hal.Device
	queue    hal.Queue
	limits   gputypes.Limits

	warp  *computePipeline
	blend *computePipeline

	adapterName    string
	ready          bool
	externalDevice bool // true when using shared device (don't destroy on Close)

	log atomic.Pointer[slog.Logger]
}

var _ mockup.Renderer = (*Renderer)(nil)

// New returns an uninitialized renderer.
func New() *Renderer {
	r := &Renderer{limits: gputypes.DefaultLimits()}
	r.log.Store(mockup.Logger())
	return r
}

func (r *Renderer) Name() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.externalDevice {
		return "wgpu-shared"
	}
	return "wgpu-vulkan"
}

func (r *Renderer) Kind() mockup.BackendKind { return mockup.BackendGPU }

// SetLogger implements the logger propagation hook used by mockup.SetLogger.
// A nil logger silences the renderer.
func (r *Renderer) SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	r.log.Store(l)
}

func (r *Renderer) logger() *slog.Logger { return r.log.Load() }

// Init opens a Vulkan device (unless a shared device was provided) and
// creates the compute pipelines. Any failure is returned so the compositor
// can settle on the CPU renderer.
func (r *Renderer) Init() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ready {
		return nil
	}
	if r.device == nil {
		if err := r.openDevice(); err != nil {
			r.releaseDevice()
			return err
		}
	}
	if err := r.createPipelines(); err != nil {
		r.destroyPipelines()
		r.releaseDevice()
		return fmt.Errorf("gpu: create pipelines: %w", err)
	}
	r.ready = true
	r.logger().Info("gpu: compositor renderer initialized", "adapter", r.adapterName)
	return nil
}

func (r *Renderer) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.destroyPipelines()
	r.releaseDevice()
	r.ready = false
}

// SetDeviceProvider switches the renderer to a shared GPU device from an
// external provider. The provider must implement HalDevice() any and
// HalQueue() any returning hal.Device and hal.Queue.
func (r *Renderer) SetDeviceProvider(provider any) error {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return errors.New("gpu: provider does not expose HAL types")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return errors.New("gpu: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return errors.New("gpu: provider HalQueue is not hal.Queue")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.destroyPipelines()
	r.releaseDevice()

	r.device = device
	r.queue = queue
	r.externalDevice = true
	r.adapterName = "shared"

	if err := r.createPipelines(); err != nil {
		r.ready = false
		return fmt.Errorf("gpu: create pipelines with shared device: %w", err)
	}
	r.ready = true
	r.logger().Info("gpu: switched to shared GPU device")
	return nil
}

// Warp projects op.Source onto op.Quad, evaluating the inverse homography
// per destination pixel.
func (r *Renderer) Warp(target mockup.RenderTarget, op mockup.WarpOp) error {
	size := op.SourceSize
	if size.IsEmpty() {
		size = geom.Sz(float64(op.Source.Width), float64(op.Source.Height))
	}
	if size.IsEmpty() || op.Source.Width <= 0 || op.Source.Height <= 0 {
		return geom.ErrDegenerate
	}
	h, err := geom.SolveHomography(size, op.Quad)
	if err != nil {
		return err
	}
	inv, err := h.Invert()
	if err != nil {
		return err
	}

	opacity := blend.Opacity(op.Opacity)
	if opacity == 0 || target.Width <= 0 || target.Height <= 0 {
		return nil
	}

	minPt, maxPt := op.Quad.Bounds()
	x0 := clampInt(int(minPt.X), 0, target.Width)
	y0 := clampInt(int(minPt.Y), 0, target.Height)
	x1 := clampInt(int(maxPt.X)+1, 0, target.Width)
	y1 := clampInt(int(maxPt.Y)+1, 0, target.Height)
	if x0 >= x1 || y0 >= y1 {
		return nil // entirely off-canvas
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.ready {
		return ErrNotInitialized
	}
	if err := r.checkTarget(target); err != nil {
		return err
	}
	if err := r.checkTarget(op.Source); err != nil {
		return err
	}

	params := warpParams{
		DstWidth: uint32(target.Width), DstHeight: uint32(target.Height), //nolint:gosec // checked by checkTarget
		SrcWidth: uint32(op.Source.Width), SrcHeight: uint32(op.Source.Height), //nolint:gosec // checked by checkTarget
		X0: uint32(x0), Y0: uint32(y0), X1: uint32(x1), Y1: uint32(y1), //nolint:gosec // clamped to target
		Size:    size,
		Opacity: float32(opacity) / 255,
		Nearest: op.Interpolation == mockup.InterpNearest,
		Inverse: inv,
	}
	groupsX := uint32(x1-x0+7) / 8 //nolint:gosec // clamped to target
	groupsY := uint32(y1-y0+7) / 8 //nolint:gosec // clamped to target
	return r.run(r.warp, params.bytes(), op.Source, target, groupsX, groupsY)
}

// Blend composites src over the whole target with a separable blend mode.
func (r *Renderer) Blend(target, src mockup.RenderTarget, mode mockup.BlendMode, opacity float64) error {
	if target.Width != src.Width || target.Height != src.Height {
		return fmt.Errorf("gpu: blend size mismatch: %dx%d vs %dx%d", target.Width, target.Height, src.Width, src.Height)
	}
	m, ok := blend.ParseMode(string(mode))
	if !ok {
		return fmt.Errorf("gpu: unsupported blend mode %q", mode)
	}
	o := blend.Opacity(opacity)
	if o == 0 || target.Width <= 0 || target.Height <= 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.ready {
		return ErrNotInitialized
	}
	if err := r.checkTarget(target); err != nil {
		return err
	}

	params := blendParams{
		Width:   uint32(target.Width),  //nolint:gosec // checked by checkTarget
		Height:  uint32(target.Height), //nolint:gosec // checked by checkTarget
		Mode:    uint32(m),
		Opacity: float32(o) / 255,
	}
	groupsX := (params.Width + 7) / 8
	groupsY := (params.Height + 7) / 8
	return r.run(r.blend, params.bytes(), src, target, groupsX, groupsY)
}

// checkTarget rejects rasters the device cannot hold in one storage buffer.
func (r *Renderer) checkTarget(t mockup.RenderTarget) error {
	if t.Width <= 0 || t.Height <= 0 || t.Stride < t.Width*4 || len(t.Data) < (t.Height-1)*t.Stride+t.Width*4 {
		return fmt.Errorf("gpu: invalid raster %dx%d stride %d: %w", t.Width, t.Height, t.Stride, mockup.ErrFallbackToCPU)
	}
	size := uint64(t.Width) * uint64(t.Height) * 4 //nolint:gosec // positive
	if r.limits.MaxBufferSize > 0 && size > r.limits.MaxBufferSize {
		return fmt.Errorf("gpu: raster of %d bytes exceeds buffer limit: %w", size, mockup.ErrFallbackToCPU)
	}
	if (t.Width+7)/8 > maxWorkgroups || (t.Height+7)/8 > maxWorkgroups {
		return fmt.Errorf("gpu: raster %dx%d exceeds dispatch limit: %w", t.Width, t.Height, mockup.ErrFallbackToCPU)
	}
	return nil
}

// run uploads params, src and target, dispatches p, and reads target back.
// target is only modified when the whole operation succeeds.
func (r *Renderer) run(p *computePipeline, params []byte, src, target mockup.RenderTarget, groupsX, groupsY uint32) error {
	srcPixels := packPixels(src.Data, src.Width, src.Height, src.Stride)
	dstPixels := packPixels(target.Data, target.Width, target.Height, target.Stride)
	dstSize := uint64(len(dstPixels))

	paramBuf, err := r.uploadBuffer(p.label+"_params", params, gputypes.BufferUsageUniform|gputypes.BufferUsageCopyDst)
	if err != nil {
		return err
	}
	defer r.device.DestroyBuffer(paramBuf)

	srcBuf, err := r.uploadBuffer(p.label+"_src", srcPixels, gputypes.BufferUsageStorage|gputypes.BufferUsageCopyDst)
	if err != nil {
		return err
	}
	defer r.device.DestroyBuffer(srcBuf)

	dstBuf, err := r.uploadBuffer(p.label+"_dst", dstPixels,
		gputypes.BufferUsageStorage|gputypes.BufferUsageCopySrc|gputypes.BufferUsageCopyDst)
	if err != nil {
		return err
	}
	defer r.device.DestroyBuffer(dstBuf)

	stagingBuf, err := r.device.CreateBuffer(&hal.BufferDescriptor{
		Label: p.label + "_staging", Size: dstSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create staging buffer: %w", err)
	}
	defer r.device.DestroyBuffer(stagingBuf)

	bg, err := r.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label: p.label + "_bind", Layout: p.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{Buffer: paramBuf.NativeHandle(), Offset: 0, Size: uint64(len(params))}},
			{Binding: 1, Resource: gputypes.BufferBinding{Buffer: srcBuf.NativeHandle(), Offset: 0, Size: uint64(len(srcPixels))}},
			{Binding: 2, Resource: gputypes.BufferBinding{Buffer: dstBuf.NativeHandle(), Offset: 0, Size: dstSize}},
		},
	})
	if err != nil {
		return fmt.Errorf("create bind group: %w", err)
	}
	defer r.device.DestroyBindGroup(bg)

	encoder, err := r.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: p.label + "_encoder"})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding(p.label); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}
	pass := encoder.BeginComputePass(&hal.ComputePassDescriptor{Label: p.label + "_pass"})
	pass.SetPipeline(p.pipeline)
	pass.SetBindGroup(0, bg, nil)
	pass.Dispatch(groupsX, groupsY, 1)
	pass.End()
	encoder.CopyBufferToBuffer(dstBuf, stagingBuf, []hal.BufferCopy{
		{SrcOffset: 0, DstOffset: 0, Size: dstSize},
	})
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer r.device.FreeCommandBuffer(cmdBuf)

	fence, err := r.device.CreateFence()
	if err != nil {
		return fmt.Errorf("create fence: %w", err)
	}
	defer r.device.DestroyFence(fence)
	if err := r.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	fenceOK, err := r.device.Wait(fence, 1, fenceTimeout)
	if err != nil || !fenceOK {
		return fmt.Errorf("wait for GPU: ok=%v err=%w", fenceOK, err)
	}

	readback := make([]byte, dstSize)
	if err := r.queue.ReadBuffer(stagingBuf, 0, readback); err != nil {
		return fmt.Errorf("readback: %w", err)
	}
	unpackPixels(readback, target.Data, target.Width, target.Height, target.Stride)
	r.logger().Debug("gpu: dispatched", "pipeline", p.label, "groups_x", groupsX, "groups_y", groupsY)
	return nil
}

func (r *Renderer) uploadBuffer(label string, data []byte, usage gputypes.BufferUsage) (hal.Buffer, error) {
	buf, err := r.device.CreateBuffer(&hal.BufferDescriptor{Label: label, Size: uint64(len(data)), Usage: usage})
	if err != nil {
		return nil, fmt.Errorf("create %s buffer: %w", label, err)
	}
	r.queue.WriteBuffer(buf, 0, data)
	return buf, nil
}

func (r *Renderer) openDevice() error {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return errors.New("gpu: vulkan backend not available")
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return fmt.Errorf("gpu: create instance: %w", err)
	}
	r.instance = instance
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		return errors.New("gpu: no GPU adapters found")
	}
	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}
	openDev, err := selected.Adapter.Open(gputypes.Features(0), r.limits)
	if err != nil {
		return fmt.Errorf("gpu: open device: %w", err)
	}
	r.device = openDev.Device
	r.queue = openDev.Queue
	r.adapterName = selected.Info.Name
	return nil
}

func (r *Renderer) createPipelines() error {
	var err error
	if r.warp, err = newComputePipeline(r.device, "mockup_warp", warpShaderSource); err != nil {
		return err
	}
	if r.blend, err = newComputePipeline(r.device, "mockup_blend", blendShaderSource); err != nil {
		return err
	}
	return nil
}

func (r *Renderer) destroyPipelines() {
	r.warp.destroy(r.device)
	r.blend.destroy(r.device)
	r.warp, r.blend = nil, nil
}

// releaseDevice drops the device, destroying it only when this renderer
// created it.
func (r *Renderer) releaseDevice() {
	if !r.externalDevice {
		if r.device != nil {
			r.device.Destroy()
		}
		if r.instance != nil {
			r.instance.Destroy()
		}
	}
	r.device = nil
	r.queue = nil
	r.instance = nil
	r.externalDevice = false
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
