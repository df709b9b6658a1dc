package mockup

import (
	"context"
	"testing"
	"time"
)

func TestDefaultOptions(t *testing.T) {
	o := defaultOptions()
	if o.gpuTimeout != DefaultGPUTimeout {
		t.Errorf("gpuTimeout = %v, want %v", o.gpuTimeout, DefaultGPUTimeout)
	}
	if o.disableGPU {
		t.Error("GPU disabled by default")
	}
	if o.interpolation != InterpBilinear {
		t.Errorf("interpolation = %v, want Bilinear", o.interpolation)
	}
	if o.cacheLimit != 0 {
		t.Errorf("cacheLimit = %d, want 0", o.cacheLimit)
	}
}

func TestOptions(t *testing.T) {
	tests := []struct {
		name  string
		opt   Option
		check func(t *testing.T, o options)
	}{
		{
			name: "gpu timeout",
			opt:  WithGPUTimeout(time.Second),
			check: func(t *testing.T, o options) {
				if o.gpuTimeout != time.Second {
					t.Errorf("gpuTimeout = %v, want 1s", o.gpuTimeout)
				}
			},
		},
		{
			name: "non-positive gpu timeout restores default",
			opt:  WithGPUTimeout(-time.Second),
			check: func(t *testing.T, o options) {
				if o.gpuTimeout != DefaultGPUTimeout {
					t.Errorf("gpuTimeout = %v, want %v", o.gpuTimeout, DefaultGPUTimeout)
				}
			},
		},
		{
			name: "without gpu",
			opt:  WithoutGPU(),
			check: func(t *testing.T, o options) {
				if !o.disableGPU {
					t.Error("disableGPU not set")
				}
			},
		},
		{
			name: "nearest interpolation",
			opt:  WithInterpolation(InterpNearest),
			check: func(t *testing.T, o options) {
				if o.interpolation != InterpNearest {
					t.Errorf("interpolation = %v, want Nearest", o.interpolation)
				}
			},
		},
		{
			name: "cache limit",
			opt:  WithCacheLimit(8),
			check: func(t *testing.T, o options) {
				if o.cacheLimit != 8 {
					t.Errorf("cacheLimit = %d, want 8", o.cacheLimit)
				}
			},
		},
		{
			name: "negative cache limit is unbounded",
			opt:  WithCacheLimit(-1),
			check: func(t *testing.T, o options) {
				if o.cacheLimit != 0 {
					t.Errorf("cacheLimit = %d, want 0", o.cacheLimit)
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := defaultOptions()
			tt.opt(&o)
			tt.check(t, o)
		})
	}
}

func TestInterpolationString(t *testing.T) {
	if got := InterpBilinear.String(); got != "Bilinear" {
		t.Errorf("InterpBilinear.String() = %q", got)
	}
	if got := InterpNearest.String(); got != "Nearest" {
		t.Errorf("InterpNearest.String() = %q", got)
	}
}

func TestWithReadyCallback(t *testing.T) {
	got := make(chan BackendKind, 1)
	c := New(MapResolver{}, WithoutGPU(), WithReadyCallback(func(k BackendKind) { got <- k }))
	defer c.Destroy()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := c.Ready(ctx); err != nil {
		t.Fatalf("Ready: %v", err)
	}
	select {
	case k := <-got:
		if k != BackendCPU {
			t.Errorf("callback backend = %v, want %v", k, BackendCPU)
		}
	default:
		t.Fatal("ready callback not called before Ready returned")
	}
}

func TestWithInterpolationNearestRenders(t *testing.T) {
	def, res, snaps := scenarioA(t)
	c := New(res, WithoutGPU(), WithInterpolation(InterpNearest))
	defer c.Destroy()

	out := render(t, c, def, snaps)
	if !out.Success {
		t.Fatalf("Render failed: %v", out.Err)
	}
	assertPixel(t, out.Image, 400, 300, red)
	assertPixel(t, out.Image, 100, 100, gray)
}
