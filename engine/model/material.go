package model

import (
	"fmt"

	"github.com/Carmen-Shannon/lumen-go/engine/texture"
	"github.com/cogentcore/webgpu/wgpu"
)

// Material is a named diffuse texture plus the bind group that exposes it to
// the fragment shader. Materials are shared by reference among every mesh in
// the owning Model that names them by index.
type Material struct {
	// Name is the material identifier from the source file.
	Name string

	// Diffuse is the material's diffuse texture.
	Diffuse *texture.Texture

	// BindGroup binds the diffuse view and sampler at group slot 0 when the
	// mesh using this material is drawn.
	BindGroup *wgpu.BindGroup
}

// Release frees the material's bind group and texture.
func (m *Material) Release() {
	if m.BindGroup != nil {
		m.BindGroup.Release()
		m.BindGroup = nil
	}
	if m.Diffuse != nil {
		m.Diffuse.Release()
		m.Diffuse = nil
	}
}

// MaterialBindGroupLayout creates the binding layout shared by every material:
// a filterable 2D texture at binding 0 and a filtering sampler at binding 1,
// both visible to the fragment stage. One layout serves all materials in a
// model (one layout, many bind groups).
//
// Parameters:
//   - gpu: device handles used to create the layout
//
// Returns:
//   - *wgpu.BindGroupLayout: the shared material layout
//   - error: error if creation fails
func MaterialBindGroupLayout(gpu GPU) (*wgpu.BindGroupLayout, error) {
	layout, err := gpu.Device().CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "material-bind-group-layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageFragment,
				Texture: wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleTypeFloat,
					ViewDimension: wgpu.TextureViewDimension2D,
					Multisampled:  false,
				},
			},
			{
				Binding:    1,
				Visibility: wgpu.ShaderStageFragment,
				Sampler: wgpu.SamplerBindingLayout{
					Type: wgpu.SamplerBindingTypeFiltering,
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create material bind group layout: %w", err)
	}
	return layout, nil
}

// NewMaterial builds one material from an already-uploaded diffuse texture.
// The bind group is created against the model's shared material layout so that
// every material in the model is interchangeable at group slot 0.
//
// Parameters:
//   - gpu: device handles used to create the bind group
//   - layout: the shared material layout from MaterialBindGroupLayout
//   - name: the material identifier
//   - diffuse: the uploaded diffuse texture (must have a view and sampler)
//
// Returns:
//   - Material: the assembled material
//   - error: error if bind group creation fails
func NewMaterial(gpu GPU, layout *wgpu.BindGroupLayout, name string, diffuse *texture.Texture) (Material, error) {
	bindGroup, err := gpu.Device().CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  fmt.Sprintf("%s-material-bind-group", name),
		Layout: layout,
		Entries: []wgpu.BindGroupEntry{
			{
				Binding:     0,
				TextureView: diffuse.View,
			},
			{
				Binding: 1,
				Sampler: diffuse.Sampler,
			},
		},
	})
	if err != nil {
		return Material{}, fmt.Errorf("material %s: failed to create bind group: %w", name, err)
	}

	return Material{
		Name:      name,
		Diffuse:   diffuse,
		BindGroup: bindGroup,
	}, nil
}
