package mockup

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gogpu/mockup/geom"
	"github.com/gogpu/mockup/internal/cache"
)

// Compositor renders mockup definitions. One Compositor is one session: it
// owns the selected backend and a cache of decoded images.
//
// Backend selection starts when the Compositor is created and completes
// asynchronously; Render and Export wait for it. Calls to Render must not
// overlap on a single Compositor. Overlapping calls are serialized.
type Compositor interface {
	// Ready blocks until backend negotiation is done and reports the
	// selected backend. It returns *BackendInitError when neither backend
	// could be initialized.
	Ready(ctx context.Context) (BackendKind, error)

	// Render composites def with the given snapshots. It never panics;
	// failures are reported through RenderResult.
	Render(ctx context.Context, def *MockupDefinition, snaps Snapshots) RenderResult

	// Export renders def and encodes the result as PNG.
	Export(ctx context.Context, def *MockupDefinition, snaps Snapshots, opts ExportOptions) ([]byte, error)

	// Destroy releases backend resources. Later calls fail with ErrDestroyed.
	Destroy()
}

// RenderResult is the outcome of one Render call.
type RenderResult struct {
	// Image is the composite, nil when Success is false.
	Image *Pixmap

	// RenderTime is the wall time spent in the call, including the wait for
	// backend readiness.
	RenderTime time.Duration

	// Backend is the negotiated backend. Individual operations may still
	// have run on the CPU after a GPU fallback.
	Backend BackendKind

	Success bool
	Err     error

	// Warnings lists non-fatal issues such as skipped insert areas or an
	// overlay that failed to load.
	Warnings []string
}

type compositor struct {
	resolver AssetResolver
	opts     options

	ready   chan struct{} // closed when negotiation is done
	closing chan struct{} // closed by Destroy
	once    sync.Once

	// Set by negotiate before ready is closed; read-only afterwards.
	kind     BackendKind
	renderer Renderer
	cpu      Renderer
	initErr  error

	mu        sync.Mutex // serializes Render and Destroy
	destroyed atomic.Bool
	images    *cache.Store[string, *Pixmap]
}

// New creates a Compositor that loads layer images through resolver and
// starts backend negotiation in the background.
//
// The GPU renderer is tried first when one is registered (see
// RegisterGPURenderer); the CPU renderer is used when it is absent, fails,
// or does not become ready within the GPU timeout.
func New(resolver AssetResolver, opts ...Option) Compositor {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if resolver == nil {
		resolver = MapResolver{}
	}
	c := &compositor{
		resolver: resolver,
		opts:     o,
		ready:    make(chan struct{}),
		closing:  make(chan struct{}),
		images:   cache.New[string, *Pixmap](o.cacheLimit),
	}
	go c.negotiate()
	return c
}

func (c *compositor) negotiate() {
	defer close(c.ready)

	var gpuErr error
	if !c.opts.disableGPU {
		if f := registeredGPUFactory(); f != nil {
			r, err := c.initGPU(f)
			if err != nil {
				gpuErr = err
				Logger().Warn("mockup: GPU renderer unavailable, using CPU", "err", err)
			} else {
				c.renderer, c.kind = r, BackendGPU
				trackGPURenderer(r)
			}
		}
	}

	cpu := newCPURenderer()
	if err := cpu.Init(); err != nil {
		if c.renderer == nil {
			c.initErr = &BackendInitError{GPU: gpuErr, CPU: err}
			Logger().Error("mockup: no backend available", "err", c.initErr)
			return
		}
		Logger().Warn("mockup: CPU renderer unavailable, GPU fallback disabled", "err", err)
	} else {
		c.cpu = cpu
	}
	if c.renderer == nil {
		c.renderer, c.kind = c.cpu, BackendCPU
	}

	Logger().Info("mockup: backend selected", "backend", c.kind, "renderer", c.renderer.Name())
	if c.opts.onReady != nil {
		c.opts.onReady(c.kind)
	}
}

// initGPU runs the GPU renderer's Init bounded by the configured timeout.
// A renderer that finishes initializing after the deadline is closed.
func (c *compositor) initGPU(f RendererFactory) (Renderer, error) {
	r := f()
	if r == nil {
		return nil, errors.New("mockup: GPU factory returned nil renderer")
	}

	done := make(chan error, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- fmt.Errorf("mockup: GPU init panic: %v", p)
			}
		}()
		done <- r.Init()
	}()

	abandon := func() {
		go func() {
			if err := <-done; err == nil {
				r.Close()
			}
		}()
	}

	timer := time.NewTimer(c.opts.gpuTimeout)
	defer timer.Stop()

	select {
	case err := <-done:
		if err != nil {
			return nil, err
		}
		return r, nil
	case <-timer.C:
		abandon()
		return nil, fmt.Errorf("mockup: GPU init timed out after %v", c.opts.gpuTimeout)
	case <-c.closing:
		abandon()
		return nil, ErrDestroyed
	}
}

func (c *compositor) Ready(ctx context.Context) (BackendKind, error) {
	select {
	case <-c.ready:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	if c.destroyed.Load() {
		return c.kind, ErrDestroyed
	}
	return c.kind, c.initErr
}

func (c *compositor) Render(ctx context.Context, def *MockupDefinition, snaps Snapshots) (res RenderResult) {
	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			Logger().Error("mockup: render panic", "panic", p)
			res = RenderResult{Backend: res.Backend, Err: fmt.Errorf("mockup: render panic: %v", p)}
		}
		res.RenderTime = time.Since(start)
	}()

	kind, err := c.Ready(ctx)
	res.Backend = kind
	if err != nil {
		res.Err = err
		return res
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.destroyed.Load() {
		res.Err = ErrDestroyed
		return res
	}

	img, warnings, err := c.composite(ctx, def, snaps)
	res.Warnings = warnings
	if err != nil {
		Logger().Debug("mockup: render failed", "err", err)
		res.Err = err
		return res
	}
	res.Image = img
	res.Success = true
	return res
}

func (c *compositor) Destroy() {
	c.once.Do(func() {
		close(c.closing)
		<-c.ready

		c.mu.Lock()
		defer c.mu.Unlock()
		c.destroyed.Store(true)

		if c.renderer != nil && c.renderer != c.cpu {
			untrackGPURenderer(c.renderer)
			c.renderer.Close()
		}
		if c.cpu != nil {
			c.cpu.Close()
		}
	})
}

// warp runs op on the selected renderer. When the GPU declines or fails,
// the operation is re-run with the exact CPU homography warp, which matches
// the GPU shader's per-pixel projection.
func (c *compositor) warp(target RenderTarget, op WarpOp) error {
	err := c.renderer.Warp(target, op)
	if !c.shouldFallback(err) {
		return err
	}
	Logger().Debug("mockup: warp fell back to CPU", "renderer", c.renderer.Name(), "err", err)
	return warpExact(target, op)
}

// blend composites src over target, with the same fallback policy as warp.
func (c *compositor) blend(target, src RenderTarget, mode BlendMode, opacity float64) error {
	err := c.renderer.Blend(target, src, mode, opacity)
	if !c.shouldFallback(err) {
		return err
	}
	Logger().Debug("mockup: blend fell back to CPU", "renderer", c.renderer.Name(), "err", err)
	return c.cpu.Blend(target, src, mode, opacity)
}

func (c *compositor) shouldFallback(err error) bool {
	if err == nil || c.cpu == nil || c.renderer == c.cpu {
		return false
	}
	return !errors.Is(err, geom.ErrDegenerate)
}
