package mockup

import (
	"time"

	"github.com/gogpu/mockup/internal/warp"
)

// DefaultGPUTimeout bounds GPU renderer initialization before the Compositor
// settles on the CPU renderer.
const DefaultGPUTimeout = 3 * time.Second

// Interpolation selects how design pixels are sampled during the warp.
type Interpolation uint8

const (
	// InterpBilinear blends the four nearest source pixels. Default.
	InterpBilinear Interpolation = iota

	// InterpNearest picks the closest source pixel.
	InterpNearest
)

// String returns the interpolation name.
func (i Interpolation) String() string {
	return i.internal().String()
}

func (i Interpolation) internal() warp.Interpolation {
	if i == InterpNearest {
		return warp.Nearest
	}
	return warp.Bilinear
}

// Option configures a Compositor during creation.
//
// Example:
//
//	// CPU only, with a readiness notification
//	c := mockup.New(resolver,
//	    mockup.WithoutGPU(),
//	    mockup.WithReadyCallback(func(k mockup.BackendKind) { log.Println("backend:", k) }),
//	)
type Option func(*options)

// options holds optional configuration for Compositor creation.
type options struct {
	gpuTimeout    time.Duration
	disableGPU    bool
	onReady       func(BackendKind)
	interpolation Interpolation
	cacheLimit    int
}

// defaultOptions returns the default compositor options.
func defaultOptions() options {
	return options{
		gpuTimeout: DefaultGPUTimeout,
	}
}

// WithGPUTimeout bounds GPU initialization. A GPU renderer that becomes ready
// after the timeout is closed and the CPU renderer is used instead.
// Non-positive values restore the default.
func WithGPUTimeout(d time.Duration) Option {
	return func(o *options) {
		if d <= 0 {
			d = DefaultGPUTimeout
		}
		o.gpuTimeout = d
	}
}

// WithoutGPU skips GPU negotiation entirely.
func WithoutGPU() Option {
	return func(o *options) {
		o.disableGPU = true
	}
}

// WithReadyCallback registers fn to be called once with the selected backend
// when negotiation completes successfully. fn runs on the negotiation
// goroutine.
func WithReadyCallback(fn func(BackendKind)) Option {
	return func(o *options) {
		o.onReady = fn
	}
}

// WithInterpolation sets the sampling filter for design warps.
func WithInterpolation(i Interpolation) Option {
	return func(o *options) {
		o.interpolation = i
	}
}

// WithCacheLimit caps the number of decoded images kept by the session
// cache. Zero (the default) means unbounded. Once full, new images are
// decoded on every use instead of being cached.
func WithCacheLimit(n int) Option {
	return func(o *options) {
		if n < 0 {
			n = 0
		}
		o.cacheLimit = n
	}
}
