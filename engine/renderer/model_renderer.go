package renderer

import (
	"fmt"

	"github.com/Carmen-Shannon/lumen-go/engine/model"
	"github.com/cogentcore/webgpu/wgpu"
)

// RenderPass is the recording surface a draw dispatch writes into. It is the
// subset of the render pass encoder the dispatcher needs, so tests can record
// commands without a GPU device.
type RenderPass interface {
	SetPipeline(pipeline *wgpu.RenderPipeline)
	SetBindGroup(groupIndex uint32, group *wgpu.BindGroup, dynamicOffsets []uint32)
	SetVertexBuffer(slot uint32, buffer *wgpu.Buffer, offset, size uint64)
	SetIndexBuffer(buffer *wgpu.Buffer, format wgpu.IndexFormat, offset, size uint64)
	DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32)
}

var _ RenderPass = &wgpu.RenderPassEncoder{}

// modelRendererImpl is the implementation of the ModelRenderer interface.
// Read-only after construction; the frame loop only records draws from it.
type modelRendererImpl struct {
	mdl       model.Model
	pipeline  *wgpu.RenderPipeline
	instances *model.InstanceSet

	// Pre-creation config collected from builder options
	pendingInstances []model.Instance
}

// ModelRenderer pairs a Model with the compiled pipeline that draws it and,
// when the model is drawn more than once per frame, an uploaded instance
// buffer. Constructed once during scene setup and immutable afterwards.
type ModelRenderer interface {
	// Model returns the model this renderer draws.
	//
	// Returns:
	//   - model.Model: the model, never nil
	Model() model.Model

	// Pipeline returns the compiled render pipeline for this model.
	//
	// Returns:
	//   - *wgpu.RenderPipeline: the pipeline bound at the start of every dispatch
	Pipeline() *wgpu.RenderPipeline

	// Instances returns the uploaded instance buffer and count, or nil when
	// the model draws once per frame without a second vertex stream.
	//
	// Returns:
	//   - *model.InstanceSet: the instance set, or nil when not instanced
	Instances() *model.InstanceSet

	// Release frees the pipeline and instance buffer this renderer created.
	// The model is caller-owned and is not released.
	Release()
}

var _ ModelRenderer = &modelRendererImpl{}

// NewModelRenderer compiles a render pipeline for the model and, when the
// WithInstances option supplies transforms, uploads them as the second vertex
// stream. The bind group layout order is material (textured models only),
// then camera, then light; the shader source must declare its groups and
// vertex locations to match.
//
// Panics if a required collaborator is nil. Returns an error when shader
// compilation, pipeline creation, or the instance upload fails; these are
// fatal to scene setup.
//
// Parameters:
//   - gpu: the renderer providing the device and surface format
//   - mdl: the model to draw
//   - cameraLayout: the shared camera bind group layout
//   - lightLayout: the shared light bind group layout
//   - shaderSource: WGSL source exporting vs_main and fs_main entry points
//   - options: variadic list of ModelRendererBuilderOption functions to configure the ModelRenderer
//
// Returns:
//   - ModelRenderer: the renderer ready for per-frame dispatch
//   - error: an error if pipeline or instance buffer creation fails
func NewModelRenderer(gpu Renderer, mdl model.Model, cameraLayout, lightLayout *wgpu.BindGroupLayout, shaderSource string, options ...ModelRendererBuilderOption) (ModelRenderer, error) {
	if gpu == nil {
		panic("renderer: NewModelRenderer requires a non-nil Renderer")
	}
	if mdl == nil {
		panic("renderer: NewModelRenderer requires a non-nil Model")
	}
	if cameraLayout == nil || lightLayout == nil {
		panic("renderer: NewModelRenderer requires camera and light bind group layouts")
	}

	mr := &modelRendererImpl{
		mdl: mdl,
	}
	for _, opt := range options {
		opt(mr)
	}

	if len(mr.pendingInstances) > 0 {
		instances, err := model.NewInstanceSet(gpu, fmt.Sprintf("%s-instances", mdl.Name()), mr.pendingInstances)
		if err != nil {
			return nil, fmt.Errorf("failed to upload instances for %s: %w", mdl.Name(), err)
		}
		mr.instances = instances
		mr.pendingInstances = nil
	}

	pipeline, err := newModelPipeline(gpu, mdl, cameraLayout, lightLayout, shaderSource, mr.instances != nil)
	if err != nil {
		if mr.instances != nil {
			mr.instances.Release()
		}
		return nil, err
	}
	mr.pipeline = pipeline

	return mr, nil
}

func (m *modelRendererImpl) Model() model.Model {
	return m.mdl
}

func (m *modelRendererImpl) Pipeline() *wgpu.RenderPipeline {
	return m.pipeline
}

func (m *modelRendererImpl) Instances() *model.InstanceSet {
	return m.instances
}

func (m *modelRendererImpl) Release() {
	if m.pipeline != nil {
		m.pipeline.Release()
		m.pipeline = nil
	}
	if m.instances != nil {
		m.instances.Release()
		m.instances = nil
	}
}

// Draw records one model renderer's draw commands into the pass. sharedGroups
// is the frame's camera bind group followed by its light bind group; they are
// rebound per mesh at the slots above the mesh's material group.
//
// Per mesh, in stored order: the mesh's vertex buffer goes to slot 0 and its
// 32-bit index buffer is bound; when the mesh has a material, that material's
// bind group takes group 0 and the shared groups shift up by one, otherwise
// the shared groups start at group 0. The shift is decided per mesh from the
// mesh's own material id, so a model holding both textured and untextured
// meshes dispatches each correctly. Instanced renderers bind the instance
// buffer at vertex slot 1 once, before any mesh, and every mesh draws the
// full instance range.
//
// Parameters:
//   - pass: the active render pass to record into
//   - mr: the model renderer to dispatch
//   - sharedGroups: the frame's shared bind groups, camera then light
func Draw(pass RenderPass, mr ModelRenderer, sharedGroups []*wgpu.BindGroup) {
	pass.SetPipeline(mr.Pipeline())

	instanceCount := uint32(1)
	if instances := mr.Instances(); instances != nil {
		pass.SetVertexBuffer(1, instances.Buffer, 0, wgpu.WholeSize)
		instanceCount = instances.Count
	}

	mdl := mr.Model()
	materials := mdl.Materials()
	for _, mesh := range mdl.Meshes() {
		pass.SetVertexBuffer(0, mesh.Geometry.VertexBuffer, 0, wgpu.WholeSize)
		pass.SetIndexBuffer(mesh.Geometry.IndexBuffer, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)

		offset := uint32(0)
		if mesh.HasMaterial() {
			pass.SetBindGroup(0, materials[mesh.MaterialID].BindGroup, nil)
			offset = 1
		}
		for i, group := range sharedGroups {
			pass.SetBindGroup(offset+uint32(i), group, nil)
		}

		pass.DrawIndexed(mesh.Geometry.ElementCount, instanceCount, 0, 0, 0)
	}
}
