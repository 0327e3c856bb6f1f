// Package scene ties one camera, one light, and a set of model renderers to a
// renderer's frame lifecycle. The scene advances the shared uniforms once per
// frame and then records every model renderer's draw calls into a single
// render pass.
package scene

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/lumen-go/engine/camera"
	"github.com/Carmen-Shannon/lumen-go/engine/light"
	"github.com/Carmen-Shannon/lumen-go/engine/renderer"
	"github.com/cogentcore/webgpu/wgpu"
)

// sceneCount is an atomic counter used to generate unique default scene names.
var sceneCount atomic.Uint64

// sceneImpl is the implementation of the Scene interface.
type sceneImpl struct {
	mu sync.RWMutex

	name string

	gpu renderer.Renderer
	cam camera.Camera
	lt  light.Light

	renderers []renderer.ModelRenderer
}

// Scene owns the per-frame orchestration: Update advances the camera and
// light uniforms, Render drives one cleared render pass through every
// registered model renderer with the frame's shared camera/light bind groups.
// Model renderers are registered during setup and iterated in registration
// order each frame.
type Scene interface {
	// Name returns the scene's identifier.
	//
	// Returns:
	//   - string: the scene name
	Name() string

	// SetName sets the scene's identifier.
	//
	// Parameters:
	//   - name: the new scene name
	SetName(name string)

	// Camera returns the scene's camera.
	//
	// Returns:
	//   - camera.Camera: the camera, never nil
	Camera() camera.Camera

	// Light returns the scene's light.
	//
	// Returns:
	//   - light.Light: the light, never nil
	Light() light.Light

	// Renderer returns the renderer driving the scene's frames.
	//
	// Returns:
	//   - renderer.Renderer: the renderer, never nil
	Renderer() renderer.Renderer

	// AddRenderer registers a model renderer for per-frame drawing.
	// Renderers are drawn in registration order.
	//
	// Parameters:
	//   - mr: the model renderer to register
	AddRenderer(mr renderer.ModelRenderer)

	// Renderers returns a copy of the registered model renderers in
	// registration order.
	//
	// Returns:
	//   - []renderer.ModelRenderer: the registered model renderers
	Renderers() []renderer.ModelRenderer

	// Update advances the camera and then the light by the elapsed time,
	// rewriting both uniform buffers. Called once per frame before Render.
	//
	// Parameters:
	//   - dt: seconds elapsed since the previous frame
	Update(dt float32)

	// Render records and presents one frame: begin the cleared render pass,
	// dispatch every registered model renderer with the shared camera and
	// light bind groups, submit, and present.
	//
	// Returns:
	//   - error: a renderer surface sentinel (matched with errors.Is) when
	//     frame acquisition fails, or a submission error; nil on success
	Render() error

	// Resize reconfigures the renderer's surface for a new framebuffer size
	// and updates the camera's aspect ratio. A zero width or height is
	// ignored entirely, matching a minimized window.
	//
	// Parameters:
	//   - width: the new framebuffer width in pixels
	//   - height: the new framebuffer height in pixels
	Resize(width, height int)

	// Release frees every model renderer registered with the scene, then the
	// light, camera, and renderer resources, in that order.
	Release()
}

var _ Scene = &sceneImpl{}

// NewScene creates a Scene from its three collaborators. All three are
// required; passing nil is a construction error and panics, since a scene
// without a renderer, camera, or light can never produce a frame.
//
// Parameters:
//   - r: the renderer driving frame acquisition and presentation
//   - cam: the shared camera whose bind group every draw consumes
//   - lt: the shared light whose bind group every draw consumes
//   - options: variadic list of SceneBuilderOption functions to configure the Scene
//
// Returns:
//   - Scene: the new scene, ready for AddRenderer and the frame loop
func NewScene(r renderer.Renderer, cam camera.Camera, lt light.Light, options ...SceneBuilderOption) Scene {
	if r == nil {
		panic("scene: NewScene requires a non-nil Renderer")
	}
	if cam == nil {
		panic("scene: NewScene requires a non-nil Camera")
	}
	if lt == nil {
		panic("scene: NewScene requires a non-nil Light")
	}

	s := &sceneImpl{
		name: fmt.Sprintf("scene-%d", sceneCount.Add(1)),
		gpu:  r,
		cam:  cam,
		lt:   lt,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

func (s *sceneImpl) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

func (s *sceneImpl) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
}

func (s *sceneImpl) Camera() camera.Camera {
	return s.cam
}

func (s *sceneImpl) Light() light.Light {
	return s.lt
}

func (s *sceneImpl) Renderer() renderer.Renderer {
	return s.gpu
}

func (s *sceneImpl) AddRenderer(mr renderer.ModelRenderer) {
	if mr == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.renderers = append(s.renderers, mr)
}

func (s *sceneImpl) Renderers() []renderer.ModelRenderer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cp := make([]renderer.ModelRenderer, len(s.renderers))
	copy(cp, s.renderers)
	return cp
}

func (s *sceneImpl) Update(dt float32) {
	s.cam.Update(dt)
	s.lt.Update(dt)
}

func (s *sceneImpl) Render() error {
	if err := s.gpu.BeginFrame(); err != nil {
		return err
	}

	pass := s.gpu.Pass()
	sharedGroups := []*wgpu.BindGroup{s.cam.BindGroup(), s.lt.BindGroup()}

	s.mu.RLock()
	for _, mr := range s.renderers {
		renderer.Draw(pass, mr, sharedGroups)
	}
	s.mu.RUnlock()

	if err := s.gpu.EndFrame(); err != nil {
		return err
	}
	s.gpu.Present()
	return nil
}

func (s *sceneImpl) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	s.gpu.Resize(uint32(width), uint32(height))
	s.cam.SetAspect(float32(width) / float32(height))
}

func (s *sceneImpl) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, mr := range s.renderers {
		mr.Release()
	}
	s.renderers = nil

	s.lt.Release()
	s.cam.Release()
	s.gpu.Release()
}
