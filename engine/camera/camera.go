package camera

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/lumen-go/common"

	"github.com/cogentcore/webgpu/wgpu"
)

// cameraCount is an atomic counter used to generate unique resource labels for each camera instance.
var cameraCount atomic.Uint64

// GPU provides the device and queue handles camera resources are created
// against. Satisfied by renderer.Renderer.
type GPU interface {
	Device() *wgpu.Device
	Queue() *wgpu.Queue
}

type cameraImpl struct {
	mu *sync.Mutex

	gpu  GPU
	name string

	up [3]float32

	fov    float32
	aspect float32
	near   float32
	far    float32

	position             [3]float32
	viewMatrix           [16]float32
	projectionMatrix     [16]float32
	viewProjectionMatrix [16]float32

	controller CameraController

	uniformBuffer *wgpu.Buffer
	layout        *wgpu.BindGroupLayout
	bindGroup     *wgpu.BindGroup
}

// Camera defines the interface for the camera system.
// The camera holds perspective settings, computes view/projection matrices
// from an attached CameraController each frame via Update(), and owns the
// uniform buffer and bind group the render pipelines consume.
type Camera interface {
	// Up returns the camera's up vector.
	//
	// Returns:
	//   - x, y, z: up vector components
	Up() (x, y, z float32)

	// Fov returns the field of view in radians.
	//
	// Returns:
	//   - float32: field of view in radians
	Fov() float32

	// Aspect returns the aspect ratio (width / height).
	//
	// Returns:
	//   - float32: the aspect ratio
	Aspect() float32

	// Near returns the near clipping plane distance.
	//
	// Returns:
	//   - float32: near plane distance
	Near() float32

	// Far returns the far clipping plane distance.
	//
	// Returns:
	//   - float32: far plane distance
	Far() float32

	// ViewMatrix returns the current 4x4 view matrix as 16 floats (column-major).
	//
	// Returns:
	//   - [16]float32: the view matrix
	ViewMatrix() [16]float32

	// ProjectionMatrix returns the current 4x4 projection matrix as 16 floats (column-major).
	//
	// Returns:
	//   - [16]float32: the projection matrix
	ProjectionMatrix() [16]float32

	// ViewProjectionMatrix returns the current combined view-projection matrix as 16 floats (column-major).
	//
	// Returns:
	//   - [16]float32: the combined view-projection matrix
	ViewProjectionMatrix() [16]float32

	// Controller returns the attached CameraController.
	// Returns nil if no controller is attached.
	//
	// Returns:
	//   - CameraController: the attached controller or nil
	Controller() CameraController

	// Layout returns the bind group layout describing the camera uniform,
	// a single uniform buffer at binding 0 visible to the vertex and
	// fragment stages.
	//
	// Returns:
	//   - *wgpu.BindGroupLayout: the camera bind group layout
	Layout() *wgpu.BindGroupLayout

	// BindGroup returns the bind group exposing the camera uniform buffer.
	//
	// Returns:
	//   - *wgpu.BindGroup: the camera bind group
	BindGroup() *wgpu.BindGroup

	// Update advances the controller one frame, recomputes matrices from its
	// position/target, and rewrites the uniform buffer through the queue.
	// Should be called once per frame before rendering.
	//
	// Parameters:
	//   - dt: seconds elapsed since the previous frame
	Update(dt float32)

	// SetUp sets the camera's up vector.
	//
	// Parameters:
	//   - x, y, z: up vector components
	SetUp(x, y, z float32)

	// SetFov sets the field of view in radians and recomputes matrices.
	//
	// Parameters:
	//   - fov: field of view in radians
	SetFov(fov float32)

	// SetAspect sets the aspect ratio (width / height) and recomputes matrices.
	// Called by the scene when the surface is resized.
	//
	// Parameters:
	//   - aspect: the aspect ratio
	SetAspect(aspect float32)

	// SetNear sets the near clipping plane distance and recomputes matrices.
	//
	// Parameters:
	//   - near: near plane distance
	SetNear(near float32)

	// SetFar sets the far clipping plane distance and recomputes matrices.
	//
	// Parameters:
	//   - far: far plane distance
	SetFar(far float32)

	// SetController attaches a CameraController to the camera.
	//
	// Parameters:
	//   - ctrl: the controller to attach
	SetController(ctrl CameraController)

	// Release frees the camera's GPU resources.
	Release()
}

var _ Camera = &cameraImpl{}

// NewCamera creates a new Camera with default perspective settings and its
// GPU resources (uniform buffer, bind group layout, bind group). A controller
// must be attached via SetController or WithController option before
// position/target data is available.
//
// Parameters:
//   - gpu: the device/queue provider to create resources against
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
//   - error: error if GPU resource creation fails
func NewCamera(gpu GPU, options ...CameraBuilderOption) (Camera, error) {
	if gpu == nil {
		panic("camera: NewCamera requires a non-nil GPU")
	}

	c := &cameraImpl{
		mu:                   &sync.Mutex{},
		gpu:                  gpu,
		name:                 fmt.Sprintf("camera-%d", cameraCount.Add(1)),
		up:                   [3]float32{0, 1, 0},
		fov:                  45.0 * (math.Pi / 180.0), // radians
		aspect:               1.0,
		near:                 0.1,
		far:                  100.0,
		viewMatrix:           [16]float32{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1},
		projectionMatrix:     [16]float32{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1},
		viewProjectionMatrix: [16]float32{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1},
	}
	for _, option := range options {
		option(c)
	}
	if c.controller != nil {
		c.updateMatrices()
	}

	if err := c.initGPU(); err != nil {
		return nil, err
	}
	return c, nil
}

// initGPU creates the uniform buffer, bind group layout, and bind group, and
// performs the initial uniform upload.
func (c *cameraImpl) initGPU() error {
	device := c.gpu.Device()

	buffer, err := device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            c.name + "-uniform-buffer",
		Size:             uint64((&GPUCameraUniform{}).Size()),
		Usage:            wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	})
	if err != nil {
		return fmt.Errorf("failed to create camera uniform buffer: %w", err)
	}
	c.uniformBuffer = buffer

	layout, err := device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: c.name + "-bind-group-layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
				Buffer: wgpu.BufferBindingLayout{
					Type: wgpu.BufferBindingTypeUniform,
				},
			},
		},
	})
	if err != nil {
		c.Release()
		return fmt.Errorf("failed to create camera bind group layout: %w", err)
	}
	c.layout = layout

	bindGroup, err := device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  c.name + "-bind-group",
		Layout: layout,
		Entries: []wgpu.BindGroupEntry{
			{
				Binding: 0,
				Buffer:  c.uniformBuffer,
				Offset:  0,
				Size:    wgpu.WholeSize,
			},
		},
	})
	if err != nil {
		c.Release()
		return fmt.Errorf("failed to create camera bind group: %w", err)
	}
	c.bindGroup = bindGroup

	c.uploadUniform()
	return nil
}

func (c *cameraImpl) Up() (x, y, z float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.up[0], c.up[1], c.up[2]
}

func (c *cameraImpl) Fov() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fov
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) Near() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.near
}

func (c *cameraImpl) Far() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.far
}

func (c *cameraImpl) ViewMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewMatrix
}

func (c *cameraImpl) ProjectionMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projectionMatrix
}

func (c *cameraImpl) ViewProjectionMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewProjectionMatrix
}

func (c *cameraImpl) Controller() CameraController {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.controller
}

func (c *cameraImpl) Layout() *wgpu.BindGroupLayout {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.layout
}

func (c *cameraImpl) BindGroup() *wgpu.BindGroup {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bindGroup
}

func (c *cameraImpl) Update(dt float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.controller != nil {
		c.controller.Step(dt)
		c.updateMatrices()
	}
	c.uploadUniform()
}

func (c *cameraImpl) SetUp(x, y, z float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.up = [3]float32{x, y, z}
	c.updateMatrices()
}

func (c *cameraImpl) SetFov(fov float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fov = fov
	c.updateMatrices()
}

func (c *cameraImpl) SetAspect(aspect float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aspect = aspect
	c.updateMatrices()
}

func (c *cameraImpl) SetNear(near float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.near = near
	c.updateMatrices()
}

func (c *cameraImpl) SetFar(far float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.far = far
	c.updateMatrices()
}

func (c *cameraImpl) SetController(ctrl CameraController) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.controller = ctrl
	c.updateMatrices()
}

func (c *cameraImpl) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.bindGroup != nil {
		c.bindGroup.Release()
		c.bindGroup = nil
	}
	if c.layout != nil {
		c.layout.Release()
		c.layout = nil
	}
	if c.uniformBuffer != nil {
		c.uniformBuffer.Release()
		c.uniformBuffer = nil
	}
}

// updateMatrices recalculates the view, projection, and view-projection
// matrices from the attached controller's position and target. This is a
// no-op when the controller is nil. Caller must hold the mutex.
func (c *cameraImpl) updateMatrices() {
	if c.controller == nil {
		return
	}

	px, py, pz := c.controller.Position()
	tx, ty, tz := c.controller.Target()
	c.position = [3]float32{px, py, pz}

	common.LookAt(c.viewMatrix[:],
		px, py, pz,
		tx, ty, tz,
		c.up[0], c.up[1], c.up[2],
	)

	common.Perspective(c.projectionMatrix[:],
		c.fov, c.aspect, c.near, c.far,
	)

	common.Mul4(c.viewProjectionMatrix[:], c.projectionMatrix[:], c.viewMatrix[:])
}

// uploadUniform writes the current matrices and position into the uniform
// buffer. Caller must hold the mutex.
func (c *cameraImpl) uploadUniform() {
	if c.uniformBuffer == nil {
		return
	}
	uniform := GPUCameraUniform{
		ViewProj:       c.viewProjectionMatrix,
		CameraPosition: c.position,
	}
	c.gpu.Queue().WriteBuffer(c.uniformBuffer, 0, uniform.Marshal())
}
