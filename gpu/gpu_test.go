//go:build !nogpu

package gpu

import (
	"context"
	"testing"
	"time"

	"github.com/gogpu/mockup"
)

// TestRegistration checks that importing the package gives compositors a
// working backend whether or not a GPU is present.
func TestRegistration(t *testing.T) {
	c := mockup.New(mockup.MapResolver{}, mockup.WithGPUTimeout(2*time.Second))
	defer c.Destroy()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	kind, err := c.Ready(ctx)
	if err != nil {
		t.Fatalf("Ready: %v", err)
	}
	if kind != mockup.BackendGPU && kind != mockup.BackendCPU {
		t.Errorf("Ready = %q, want gpu or cpu", kind)
	}
	t.Logf("selected backend: %s", kind)
}

func TestSetDeviceProviderNil(t *testing.T) {
	if err := SetDeviceProvider(nil); err != nil {
		t.Errorf("SetDeviceProvider(nil) = %v, want nil", err)
	}
}
