// package model assembles decoded mesh and material data into GPU-ready models:
// one vertex/index buffer pair per mesh partition, one shared material binding
// layout, and one material bind group per diffuse texture.
package model

import (
	"fmt"
	"sync/atomic"

	"github.com/Carmen-Shannon/lumen-go/common"
	"github.com/Carmen-Shannon/lumen-go/engine/texture"
	"github.com/cogentcore/webgpu/wgpu"
)

// GPU provides the device handles required to create model resources.
// Satisfied by renderer.Renderer.
type GPU interface {
	Device() *wgpu.Device
	Queue() *wgpu.Queue
}

// modelCount tracks created models for default naming.
var modelCount uint64

// materialSet pairs the shared material binding layout with the materials it
// describes. A model holds either both or neither.
type materialSet struct {
	layout    *wgpu.BindGroupLayout
	materials []Material
}

// model is the implementation of the Model interface.
type model struct {
	name   string
	meshes []Mesh
	mats   *materialSet
}

// Model is a GPU-ready ordered collection of meshes plus the materials they
// reference. Models are read-only after assembly: the draw path rebinds their
// buffers and bind groups each frame but never mutates them.
type Model interface {
	// Name retrieves the model identifier.
	//
	// Returns:
	//   - string: the model name
	Name() string

	// Meshes retrieves the model's meshes in stored order.
	//
	// Returns:
	//   - []Mesh: the meshes
	Meshes() []Mesh

	// Materials retrieves the model's materials, or nil when the model is
	// untextured. When non-nil, every mesh's MaterialID indexes this slice.
	//
	// Returns:
	//   - []Material: the materials, or nil
	Materials() []Material

	// MaterialLayout retrieves the binding layout shared by the model's
	// materials, or nil when the model is untextured. Pipeline construction
	// places this layout at group slot 0 when present.
	//
	// Returns:
	//   - *wgpu.BindGroupLayout: the shared material layout, or nil
	MaterialLayout() *wgpu.BindGroupLayout

	// Textured reports whether the model carries materials. Materials and
	// the material layout are always both present or both absent.
	//
	// Returns:
	//   - bool: true when the model has materials
	Textured() bool

	// Release frees every GPU resource owned by the model: mesh buffers,
	// material bind groups, textures, and the shared layout.
	Release()
}

var _ Model = &model{}

// NewModel assembles a Model from one decoded object.
//
// When the object carries no textures the model is untextured: no materials,
// no material layout, and every mesh gets MaterialID -1. When textures are
// present, one shared binding layout is created, one material is built per
// texture in input order, and each mesh's MaterialID is taken from its source
// material index, defaulting to 0 when the source left it unset.
//
// Malformed geometry (mismatched attribute lengths, index out of range, a
// material index past the texture list) is a fatal asset error: assembly stops,
// already-created GPU resources are released, and the error is returned.
//
// Parameters:
//   - gpu: device handles used to create GPU resources
//   - object: the decoded meshes and textures to assemble
//   - options: a variadic list of ModelBuilderOption functions to configure the Model
//
// Returns:
//   - Model: the assembled model
//   - error: error if the object is empty or malformed
func NewModel(gpu GPU, object common.ImportedObject, options ...ModelBuilderOption) (Model, error) {
	if gpu == nil {
		panic("model: NewModel requires a non-nil GPU")
	}

	m := &model{
		name: fmt.Sprintf("model-%d", atomic.AddUint64(&modelCount, 1)),
	}
	for _, opt := range options {
		opt(m)
	}

	if len(object.Meshes) == 0 {
		return nil, fmt.Errorf("model %s: no meshes in imported object", m.name)
	}

	textured := len(object.Textures) > 0
	if textured {
		layout, err := MaterialBindGroupLayout(gpu)
		if err != nil {
			return nil, fmt.Errorf("model %s: %w", m.name, err)
		}
		m.mats = &materialSet{layout: layout}

		for i := range object.Textures {
			imported := &object.Textures[i]
			pixels, width, height, err := imported.Decode()
			if err != nil {
				m.Release()
				return nil, fmt.Errorf("model %s: failed to decode texture %d: %w", m.name, i, err)
			}

			name := common.Coalesce(imported.Name, fmt.Sprintf("%s-material-%d", m.name, i))
			diffuse, err := texture.NewDiffuse(gpu, name, pixels, width, height)
			if err != nil {
				m.Release()
				return nil, fmt.Errorf("model %s: %w", m.name, err)
			}

			mat, err := NewMaterial(gpu, layout, name, diffuse)
			if err != nil {
				diffuse.Release()
				m.Release()
				return nil, fmt.Errorf("model %s: %w", m.name, err)
			}
			m.mats.materials = append(m.mats.materials, mat)
		}
	}

	for i := range object.Meshes {
		imported := &object.Meshes[i]

		vertices, err := buildVertices(imported)
		if err != nil {
			m.Release()
			return nil, fmt.Errorf("model %s: %w", m.name, err)
		}

		materialID := -1
		if textured {
			materialID = imported.MaterialID
			if materialID < 0 {
				materialID = 0
			}
			if materialID >= len(m.mats.materials) {
				m.Release()
				return nil, fmt.Errorf("model %s: mesh %d references material %d, have %d materials", m.name, i, materialID, len(m.mats.materials))
			}
		}

		label := common.Coalesce(imported.Name, fmt.Sprintf("%s-mesh-%d", m.name, i))
		geometry, err := newGeometryBuffer(gpu, label, vertices, imported.Indices)
		if err != nil {
			m.Release()
			return nil, fmt.Errorf("model %s: %w", m.name, err)
		}

		m.meshes = append(m.meshes, Mesh{
			Name:       label,
			Geometry:   geometry,
			MaterialID: materialID,
		})
	}

	return m, nil
}

// buildVertices interleaves the decoded attribute arrays of one mesh into the
// GPU vertex layout, validating that every attribute array describes the same
// vertex count.
func buildVertices(imported *common.ImportedMesh) ([]GPUVertex, error) {
	if len(imported.Positions)%3 != 0 {
		return nil, fmt.Errorf("mesh %s: position array length %d is not a multiple of 3", imported.Name, len(imported.Positions))
	}
	count := len(imported.Positions) / 3
	if len(imported.TexCoords) != count*2 {
		return nil, fmt.Errorf("mesh %s: have %d texture coordinate values for %d vertices", imported.Name, len(imported.TexCoords), count)
	}
	if len(imported.Normals) != count*3 {
		return nil, fmt.Errorf("mesh %s: have %d normal values for %d vertices", imported.Name, len(imported.Normals), count)
	}

	vertices := make([]GPUVertex, count)
	for i := 0; i < count; i++ {
		vertices[i] = GPUVertex{
			Position:  [3]float32{imported.Positions[i*3], imported.Positions[i*3+1], imported.Positions[i*3+2]},
			TexCoords: [2]float32{imported.TexCoords[i*2], imported.TexCoords[i*2+1]},
			Normal:    [3]float32{imported.Normals[i*3], imported.Normals[i*3+1], imported.Normals[i*3+2]},
		}
	}
	return vertices, nil
}

func (m *model) Name() string {
	return m.name
}

func (m *model) Meshes() []Mesh {
	return m.meshes
}

func (m *model) Materials() []Material {
	if m.mats == nil {
		return nil
	}
	return m.mats.materials
}

func (m *model) MaterialLayout() *wgpu.BindGroupLayout {
	if m.mats == nil {
		return nil
	}
	return m.mats.layout
}

func (m *model) Textured() bool {
	return m.mats != nil
}

func (m *model) Release() {
	for i := range m.meshes {
		m.meshes[i].Geometry.Release()
	}
	m.meshes = nil

	if m.mats != nil {
		for i := range m.mats.materials {
			m.mats.materials[i].Release()
		}
		if m.mats.layout != nil {
			m.mats.layout.Release()
		}
		m.mats = nil
	}
}
