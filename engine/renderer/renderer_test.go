package renderer

import (
	"strings"
	"sync"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
)

func TestPresentModeMapping(t *testing.T) {
	tests := []struct {
		name string
		mode PresentMode
		want wgpu.PresentMode
	}{
		{name: "vsync maps to fifo", mode: PresentModeVSync, want: wgpu.PresentModeFifo},
		{name: "uncapped maps to immediate", mode: PresentModeUncapped, want: wgpu.PresentModeImmediate},
		{name: "unknown falls back to immediate", mode: PresentMode(99), want: wgpu.PresentModeImmediate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.mode.wgpuMode(); got != tt.want {
				t.Errorf("wgpuMode() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResizeZeroDimensionIsNoOp(t *testing.T) {
	// The surface is nil, so any attempt to reconfigure would dereference it.
	r := &rendererImpl{mu: &sync.Mutex{}}
	r.Resize(0, 600)
	r.Resize(800, 0)
	r.Resize(0, 0)
	if w, h := r.Size(); w != 0 || h != 0 {
		t.Errorf("size after zero resizes: got %dx%d, want 0x0", w, h)
	}
}

func TestPresentWithoutFrameIsNoOp(t *testing.T) {
	r := &rendererImpl{mu: &sync.Mutex{}}
	r.Present()
}

func TestEndFrameWithoutFrameErrors(t *testing.T) {
	r := &rendererImpl{mu: &sync.Mutex{}}
	err := r.EndFrame()
	if err == nil {
		t.Fatalf("expected error from EndFrame outside a frame")
	}
	if !strings.Contains(err.Error(), "without an active frame") {
		t.Errorf("unexpected error text: %v", err)
	}
}

func TestBeginFrameWhileFrameHeldErrors(t *testing.T) {
	r := &rendererImpl{mu: &sync.Mutex{}, frameSurface: new(wgpu.Texture)}
	err := r.BeginFrame()
	if err == nil {
		t.Fatalf("expected error from double BeginFrame")
	}
	if !strings.Contains(err.Error(), "not yet presented") {
		t.Errorf("unexpected error text: %v", err)
	}
}

func TestPassNilOutsideFrame(t *testing.T) {
	r := &rendererImpl{mu: &sync.Mutex{}}
	if pass := r.Pass(); pass != nil {
		t.Errorf("Pass() outside a frame: got %v, want nil", pass)
	}
}
