package renderer

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/lumen-go/engine/texture"
	"github.com/Carmen-Shannon/lumen-go/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// wgpuMode maps the present mode onto the underlying surface configuration value.
func (m PresentMode) wgpuMode() wgpu.PresentMode {
	switch m {
	case PresentModeVSync:
		return wgpu.PresentModeFifo
	case PresentModeUncapped:
		fallthrough
	default:
		return wgpu.PresentModeImmediate
	}
}

// rendererImpl is the implementation of the Renderer interface.
type rendererImpl struct {
	mu *sync.Mutex

	instance *wgpu.Instance
	surface  *wgpu.Surface
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	surfaceFormat wgpu.TextureFormat
	presentMode   PresentMode
	clearColor    wgpu.Color

	width, height uint32
	depth         *texture.Texture

	renderPassDescriptor *wgpu.RenderPassDescriptor

	forceFallbackAdapter bool

	// Frame state held between BeginFrame and Present.
	frameEncoder *wgpu.CommandEncoder
	framePass    *wgpu.RenderPassEncoder
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView
}

// Renderer owns the GPU device, the presentation surface, and the depth
// attachment, and drives the per-frame render pass lifecycle. All model
// drawing happens between BeginFrame and EndFrame against the pass returned
// by Pass; Present delivers the finished frame to the display.
type Renderer interface {
	// Device returns the GPU device used to create buffers, textures, and pipelines.
	//
	// Returns:
	//   - *wgpu.Device: the device handle, valid for the renderer's lifetime
	Device() *wgpu.Device

	// Queue returns the GPU queue used for buffer and texture uploads.
	//
	// Returns:
	//   - *wgpu.Queue: the queue handle, valid for the renderer's lifetime
	Queue() *wgpu.Queue

	// SurfaceFormat returns the texture format of the presentation surface.
	// Render pipelines must declare their color target in this format.
	//
	// Returns:
	//   - wgpu.TextureFormat: the configured surface format
	SurfaceFormat() wgpu.TextureFormat

	// Size returns the dimensions the surface was last configured with.
	//
	// Returns:
	//   - uint32: the surface width in pixels
	//   - uint32: the surface height in pixels
	Size() (uint32, uint32)

	// Resize reconfigures the surface and recreates the depth attachment for
	// a new size. Should be called when the window framebuffer size changes,
	// or with the last known size to recover a lost surface. A width or
	// height of zero is a no-op.
	//
	// Parameters:
	//   - width: the new surface width in pixels
	//   - height: the new surface height in pixels
	Resize(width, height uint32)

	// BeginFrame acquires the next surface texture and begins the frame's
	// render pass, clearing the color and depth attachments. Must be paired
	// with EndFrame and Present.
	//
	// Returns:
	//   - error: ErrSurfaceLost, ErrSurfaceOutdated, ErrSurfaceTimeout, or
	//     ErrOutOfMemory (matched with errors.Is) when acquisition fails,
	//     or an unclassified error for other failures
	BeginFrame() error

	// Pass returns the render pass recording handle for the current frame.
	// Only valid between BeginFrame and EndFrame.
	//
	// Returns:
	//   - RenderPass: the active render pass, or nil outside a frame
	Pass() RenderPass

	// EndFrame ends the current render pass and submits the frame's command
	// buffer to the GPU queue. Does not present the surface; call Present
	// after EndFrame to display the frame.
	//
	// Returns:
	//   - error: an error if no frame is active or command encoding fails
	EndFrame() error

	// Present presents the surface to the display and releases the frame's
	// surface texture. Must be called once per frame after EndFrame. A no-op
	// when no frame is held.
	Present()

	// Release frees the renderer's recreatable GPU resources. The device and
	// surface handles live for the rest of the process.
	Release()
}

var _ Renderer = &rendererImpl{}

// NewRenderer performs the one-time GPU bring-up for a window: instance,
// surface, adapter, device, and queue, followed by the initial surface
// configuration and depth attachment. This is the only blocking setup in the
// engine and runs once before the frame loop starts.
//
// Panics if no suitable adapter or device can be acquired; there is nothing
// to render with and no fallback.
//
// Parameters:
//   - win: the window providing the platform surface descriptor and initial size
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: a new Renderer with a configured surface, ready for BeginFrame
func NewRenderer(win window.Window, options ...RendererBuilderOption) Renderer {
	if win == nil {
		panic("renderer: NewRenderer requires a non-nil Window")
	}

	runtime.LockOSThread()
	r := &rendererImpl{
		mu:          &sync.Mutex{},
		presentMode: PresentModeUncapped,
		clearColor:  wgpu.Color{R: 0.1, G: 0.2, B: 0.3, A: 1.0},
	}

	// Apply options first so config flags (e.g. forceFallbackAdapter) are
	// available before the adapter is requested.
	for _, opt := range options {
		opt(r)
	}

	r.instance = wgpu.CreateInstance(nil)
	r.surface = r.instance.CreateSurface(win.SurfaceDescriptor())

	adapter, err := r.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: r.forceFallbackAdapter,
		CompatibleSurface:    r.surface,
	})
	if err != nil {
		panic(err)
	}
	r.adapter = adapter

	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "main-device",
	})
	if err != nil {
		panic(err)
	}
	r.device = device
	r.queue = device.GetQueue()

	r.configureSurface(uint32(win.Width()), uint32(win.Height()))
	return r
}

func (r *rendererImpl) Device() *wgpu.Device {
	return r.device
}

func (r *rendererImpl) Queue() *wgpu.Queue {
	return r.queue
}

func (r *rendererImpl) SurfaceFormat() wgpu.TextureFormat {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.surfaceFormat
}

func (r *rendererImpl) Size() (uint32, uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.width, r.height
}

func (r *rendererImpl) Resize(width, height uint32) {
	if width == 0 || height == 0 {
		return
	}
	r.configureSurface(width, height)
}

// configureSurface configures the surface for the given size, recreates the
// depth attachment, and rebuilds the cached render pass descriptor. Called
// once at construction and again on every resize or surface recovery.
func (r *rendererImpl) configureSurface(width, height uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()

	capabilities := r.surface.GetCapabilities(r.adapter)
	r.surfaceFormat = capabilities.Formats[0]

	r.surface.Configure(r.adapter, r.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      r.surfaceFormat,
		Width:       width,
		Height:      height,
		PresentMode: r.presentMode.wgpuMode(),
		AlphaMode:   capabilities.AlphaModes[0],
	})

	if r.depth != nil {
		r.depth.Release()
	}
	depth, err := texture.NewDepth(r, "depth-attachment", width, height)
	if err != nil {
		panic(err)
	}
	r.depth = depth

	r.width = width
	r.height = height

	r.renderPassDescriptor = &wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       nil, // swapchain view, set in BeginFrame
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: r.clearColor,
			},
		},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            r.depth.View, // persistent until resize
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard, // depth is never sampled after the pass
			DepthClearValue: 1.0,
		},
	}
}

func (r *rendererImpl) BeginFrame() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// If a previous frame's surface texture is still held, avoid acquiring
	// another one. This prevents wgpu-native validation errors like
	// "Surface image is already acquired" when frames overlap.
	if r.frameSurface != nil {
		return fmt.Errorf("renderer: previous frame surface not yet presented")
	}

	surfaceTexture, err := r.surface.GetCurrentTexture()
	if err != nil {
		return classifySurfaceError(err)
	}

	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return fmt.Errorf("renderer: failed to create surface view: %w", err)
	}

	encoder, err := r.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		return fmt.Errorf("renderer: failed to create command encoder: %w", err)
	}

	r.renderPassDescriptor.ColorAttachments[0].View = view
	pass := encoder.BeginRenderPass(r.renderPassDescriptor)

	r.frameEncoder = encoder
	r.framePass = pass
	r.frameSurface = surfaceTexture
	r.frameView = view

	return nil
}

func (r *rendererImpl) Pass() RenderPass {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.framePass == nil {
		return nil
	}
	return r.framePass
}

func (r *rendererImpl) EndFrame() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.framePass == nil {
		return fmt.Errorf("renderer: EndFrame called without an active frame")
	}

	r.framePass.End()
	r.framePass = nil

	commandBuffer, err := r.frameEncoder.Finish(nil)
	if err != nil {
		r.frameEncoder.Release()
		r.frameView.Release()
		r.frameSurface.Release()
		r.frameEncoder = nil
		r.frameView = nil
		r.frameSurface = nil
		return fmt.Errorf("renderer: failed to finish frame encoder: %w", err)
	}

	r.queue.Submit(commandBuffer)

	commandBuffer.Release()
	r.frameEncoder.Release()
	r.frameEncoder = nil

	return nil
}

func (r *rendererImpl) Present() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frameSurface == nil {
		return
	}

	r.surface.Present()

	if r.frameView != nil {
		r.frameView.Release()
		r.frameView = nil
	}
	r.frameSurface.Release()
	r.frameSurface = nil
}

func (r *rendererImpl) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frameView != nil {
		r.frameView.Release()
		r.frameView = nil
	}
	if r.frameSurface != nil {
		r.frameSurface.Release()
		r.frameSurface = nil
	}
	if r.frameEncoder != nil {
		r.frameEncoder.Release()
		r.frameEncoder = nil
	}
	r.framePass = nil

	if r.depth != nil {
		r.depth.Release()
		r.depth = nil
	}
	r.renderPassDescriptor = nil
}
