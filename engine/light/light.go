package light

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/cogentcore/webgpu/wgpu"
)

// lightCount is an atomic counter used to generate unique resource labels for each light instance.
var lightCount atomic.Uint64

// GPU provides the device and queue handles light resources are created
// against. Satisfied by renderer.Renderer.
type GPU interface {
	Device() *wgpu.Device
	Queue() *wgpu.Queue
}

// lightImpl is the implementation of the Light interface.
type lightImpl struct {
	mu *sync.Mutex

	gpu  GPU
	name string

	position   [3]float32
	color      [3]float32
	intensity  float32
	orbitSpeed float32 // radians per second around the world Y axis

	uniformBuffer *wgpu.Buffer
	layout        *wgpu.BindGroupLayout
	bindGroup     *wgpu.BindGroup
}

// Light defines the interface for the scene's point light.
//
// The light contributes position, color, and intensity to the lit forward
// pass through a uniform buffer it owns. Update animates the position in an
// orbit around the world Y axis and rewrites the uniform each frame.
type Light interface {
	// Position returns the world-space position of the light.
	//
	// Returns:
	//   - [3]float32: position as (x, y, z)
	Position() [3]float32

	// Color returns the RGB color of the light.
	//
	// Returns:
	//   - [3]float32: color as (r, g, b)
	Color() [3]float32

	// Intensity returns the scalar intensity multiplier for the light.
	//
	// Returns:
	//   - float32: the intensity value
	Intensity() float32

	// OrbitSpeed returns the orbit angular speed around the world Y axis.
	//
	// Returns:
	//   - float32: radians per second
	OrbitSpeed() float32

	// SetPosition sets the world-space position of the light.
	//
	// Parameters:
	//   - x, y, z: position components
	SetPosition(x, y, z float32)

	// SetColor sets the RGB color of the light.
	//
	// Parameters:
	//   - r, g, b: color components
	SetColor(r, g, b float32)

	// SetIntensity sets the scalar intensity multiplier.
	//
	// Parameters:
	//   - intensity: the intensity value
	SetIntensity(intensity float32)

	// SetOrbitSpeed sets the orbit angular speed around the world Y axis.
	// Zero stops the orbit.
	//
	// Parameters:
	//   - radiansPerSecond: the angular speed
	SetOrbitSpeed(radiansPerSecond float32)

	// Layout returns the bind group layout describing the light uniform,
	// a single uniform buffer at binding 0 visible to the vertex and
	// fragment stages.
	//
	// Returns:
	//   - *wgpu.BindGroupLayout: the light bind group layout
	Layout() *wgpu.BindGroupLayout

	// BindGroup returns the bind group exposing the light uniform buffer.
	//
	// Returns:
	//   - *wgpu.BindGroup: the light bind group
	BindGroup() *wgpu.BindGroup

	// Update rotates the light position around the world Y axis by the orbit
	// speed scaled with dt and rewrites the uniform buffer through the queue.
	// Should be called once per frame before rendering.
	//
	// Parameters:
	//   - dt: seconds elapsed since the previous frame
	Update(dt float32)

	// Release frees the light's GPU resources.
	Release()
}

var _ Light = &lightImpl{}

// NewLight creates a new point light with sensible defaults and its GPU
// resources (uniform buffer, bind group layout, bind group).
//
// Parameters:
//   - gpu: the device/queue provider to create resources against
//   - options: functional options to configure the light
//
// Returns:
//   - Light: the newly created light
//   - error: error if GPU resource creation fails
func NewLight(gpu GPU, options ...LightBuilderOption) (Light, error) {
	if gpu == nil {
		panic("light: NewLight requires a non-nil GPU")
	}

	l := &lightImpl{
		mu:         &sync.Mutex{},
		gpu:        gpu,
		name:       fmt.Sprintf("light-%d", lightCount.Add(1)),
		position:   [3]float32{2.0, 2.0, 2.0},
		color:      [3]float32{1, 1, 1},
		intensity:  1.0,
		orbitSpeed: float32(math.Pi / 3), // 60 degrees per second
	}
	for _, option := range options {
		option(l)
	}

	if err := l.initGPU(); err != nil {
		return nil, err
	}
	return l, nil
}

// initGPU creates the uniform buffer, bind group layout, and bind group, and
// performs the initial uniform upload.
func (l *lightImpl) initGPU() error {
	device := l.gpu.Device()

	buffer, err := device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            l.name + "-uniform-buffer",
		Size:             uint64((&GPULightUniform{}).Size()),
		Usage:            wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	})
	if err != nil {
		return fmt.Errorf("failed to create light uniform buffer: %w", err)
	}
	l.uniformBuffer = buffer

	layout, err := device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: l.name + "-bind-group-layout",
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
		l.Release()
		return fmt.Errorf("failed to create light bind group layout: %w", err)
	}
	l.layout = layout

	bindGroup, err := device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  l.name + "-bind-group",
		Layout: layout,
		Entries: []wgpu.BindGroupEntry{
			{
				Binding: 0,
				Buffer:  l.uniformBuffer,
				Offset:  0,
				Size:    wgpu.WholeSize,
			},
		},
	})
	if err != nil {
		l.Release()
		return fmt.Errorf("failed to create light bind group: %w", err)
	}
	l.bindGroup = bindGroup

	l.uploadUniform()
	return nil
}

func (l *lightImpl) Position() [3]float32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.position
}

func (l *lightImpl) Color() [3]float32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.color
}

func (l *lightImpl) Intensity() float32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.intensity
}

func (l *lightImpl) OrbitSpeed() float32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.orbitSpeed
}

func (l *lightImpl) SetPosition(x, y, z float32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.position = [3]float32{x, y, z}
	l.uploadUniform()
}

func (l *lightImpl) SetColor(r, g, b float32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.color = [3]float32{r, g, b}
	l.uploadUniform()
}

func (l *lightImpl) SetIntensity(intensity float32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.intensity = intensity
	l.uploadUniform()
}

func (l *lightImpl) SetOrbitSpeed(radiansPerSecond float32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.orbitSpeed = radiansPerSecond
}

func (l *lightImpl) Layout() *wgpu.BindGroupLayout {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.layout
}

func (l *lightImpl) BindGroup() *wgpu.BindGroup {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.bindGroup
}

func (l *lightImpl) Update(dt float32) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.orbitSpeed != 0 {
		angle := float64(l.orbitSpeed * dt)
		cos := float32(math.Cos(angle))
		sin := float32(math.Sin(angle))
		x, z := l.position[0], l.position[2]
		l.position[0] = x*cos + z*sin
		l.position[2] = -x*sin + z*cos
	}

	l.uploadUniform()
}

func (l *lightImpl) Release() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.bindGroup != nil {
		l.bindGroup.Release()
		l.bindGroup = nil
	}
	if l.layout != nil {
		l.layout.Release()
		l.layout = nil
	}
	if l.uniformBuffer != nil {
		l.uniformBuffer.Release()
		l.uniformBuffer = nil
	}
}

// uploadUniform writes the current position, intensity, and color into the
// uniform buffer. Caller must hold the mutex.
func (l *lightImpl) uploadUniform() {
	if l.uniformBuffer == nil {
		return
	}
	uniform := GPULightUniform{
		Position:  l.position,
		Intensity: l.intensity,
		Color:     l.color,
	}
	l.gpu.Queue().WriteBuffer(l.uniformBuffer, 0, uniform.Marshal())
}
