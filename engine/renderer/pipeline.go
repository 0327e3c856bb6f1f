package renderer

import (
	"fmt"

	"github.com/Carmen-Shannon/lumen-go/engine/model"
	"github.com/Carmen-Shannon/lumen-go/engine/texture"
	"github.com/cogentcore/webgpu/wgpu"
)

// Shader entry points every model shader must export.
const (
	vertexEntryPoint   = "vs_main"
	fragmentEntryPoint = "fs_main"
)

// pipelineBindGroupLayouts assembles the ordered bind group layout list for a
// model's render pipeline: the material layout first when and only when the
// model is textured, then the camera layout, then the light layout. Shader
// sources must declare their groups in this exact order.
func pipelineBindGroupLayouts(mdl model.Model, cameraLayout, lightLayout *wgpu.BindGroupLayout) []*wgpu.BindGroupLayout {
	layouts := make([]*wgpu.BindGroupLayout, 0, 3)
	if materialLayout := mdl.MaterialLayout(); materialLayout != nil {
		layouts = append(layouts, materialLayout)
	}
	return append(layouts, cameraLayout, lightLayout)
}

// pipelineVertexLayouts assembles the ordered vertex buffer layout list: the
// per-vertex layout always, followed by the per-instance layout when and only
// when instance data was supplied. The instance layout's shader locations
// start at 5, above the vertex layout's, so the two ranges stay disjoint.
func pipelineVertexLayouts(instanced bool) []wgpu.VertexBufferLayout {
	layouts := []wgpu.VertexBufferLayout{model.VertexBufferLayout()}
	if instanced {
		layouts = append(layouts, model.InstanceBufferLayout())
	}
	return layouts
}

// newModelPipeline compiles the single render pipeline a ModelRenderer draws
// with. The fixed state: depth test Less with depth writes against the shared
// depth format, back-face culling with CCW front winding, triangle list
// topology, and opaque replace blending into one color target in the surface
// format. A compile failure is fatal to scene setup; there is no fallback
// pipeline.
func newModelPipeline(gpu Renderer, mdl model.Model, cameraLayout, lightLayout *wgpu.BindGroupLayout, shaderSource string, instanced bool) (*wgpu.RenderPipeline, error) {
	name := mdl.Name()

	shaderModule, err := gpu.Device().CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: fmt.Sprintf("%s-shader", name),
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: shaderSource,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create shader module for %s: %w", name, err)
	}

	pipelineLayout, err := gpu.Device().CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            fmt.Sprintf("%s-pipeline-layout", name),
		BindGroupLayouts: pipelineBindGroupLayouts(mdl, cameraLayout, lightLayout),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline layout for %s: %w", name, err)
	}

	pipeline, err := gpu.Device().CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  fmt.Sprintf("%s-pipeline", name),
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     shaderModule,
			EntryPoint: vertexEntryPoint,
			Buffers:    pipelineVertexLayouts(instanced),
		},
		Fragment: &wgpu.FragmentState{
			Module:     shaderModule,
			EntryPoint: fragmentEntryPoint,
			Targets: []wgpu.ColorTargetState{
				{
					Format: gpu.SurfaceFormat(),
					Blend: &wgpu.BlendState{
						Color: wgpu.BlendComponent{
							SrcFactor: wgpu.BlendFactorOne,
							DstFactor: wgpu.BlendFactorZero,
							Operation: wgpu.BlendOperationAdd,
						},
						Alpha: wgpu.BlendComponent{
							SrcFactor: wgpu.BlendFactorOne,
							DstFactor: wgpu.BlendFactorZero,
							Operation: wgpu.BlendOperationAdd,
						},
					},
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeBack,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            texture.DepthFormat,
			DepthWriteEnabled: true,
			DepthCompare:      wgpu.CompareFunctionLess,
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create render pipeline for %s: %w", name, err)
	}

	return pipeline, nil
}
