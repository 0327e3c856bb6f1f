package model

import (
	"fmt"

	"github.com/Carmen-Shannon/lumen-go/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// GeometryBuffer holds the immutable GPU-resident vertex and index data for one
// mesh partition. Buffers are created once during model assembly and never
// written again; they are released when the owning Model is released.
type GeometryBuffer struct {
	// VertexBuffer is the slot-0 vertex buffer (GPUVertex layout).
	VertexBuffer *wgpu.Buffer

	// IndexBuffer is the 32-bit triangle index buffer.
	IndexBuffer *wgpu.Buffer

	// ElementCount is the number of indices to draw. Always equal to the
	// length of the source index array.
	ElementCount uint32
}

// Release frees the GPU buffers held by the geometry.
func (g *GeometryBuffer) Release() {
	if g.VertexBuffer != nil {
		g.VertexBuffer.Release()
		g.VertexBuffer = nil
	}
	if g.IndexBuffer != nil {
		g.IndexBuffer.Release()
		g.IndexBuffer = nil
	}
}

// Mesh pairs one geometry partition with the index of the material it renders
// with. MaterialID is -1 for meshes that render without a material; otherwise
// it indexes the owning Model's material list.
type Mesh struct {
	// Name is the mesh identifier from the source file (may be empty).
	Name string

	// Geometry holds the mesh's GPU vertex/index buffers.
	Geometry GeometryBuffer

	// MaterialID indexes the owning Model's materials, or -1 when the mesh
	// renders without a material.
	MaterialID int
}

// HasMaterial reports whether the mesh references a material.
//
// Returns:
//   - bool: true when MaterialID is a valid material index
func (m *Mesh) HasMaterial() bool {
	return m.MaterialID >= 0
}

// newGeometryBuffer validates and uploads one mesh partition. Every index must
// address a vertex that exists; an out-of-range index is a fatal asset error.
// A partition with zero faces is legal and produces an empty draw.
func newGeometryBuffer(gpu GPU, label string, vertices []GPUVertex, indices []uint32) (GeometryBuffer, error) {
	for i, idx := range indices {
		if int(idx) >= len(vertices) {
			return GeometryBuffer{}, fmt.Errorf("mesh %s: index %d at position %d out of range (have %d vertices)", label, idx, i, len(vertices))
		}
	}

	vertexData := common.SliceToBytes(vertices)
	vertexBuffer, err := gpu.Device().CreateBuffer(&wgpu.BufferDescriptor{
		Label:            fmt.Sprintf("%s-vertex-buffer", label),
		Size:             uint64(len(vertexData)),
		Usage:            wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	})
	if err != nil {
		return GeometryBuffer{}, fmt.Errorf("mesh %s: failed to create vertex buffer: %w", label, err)
	}
	if len(vertexData) > 0 {
		gpu.Queue().WriteBuffer(vertexBuffer, 0, vertexData)
	}

	indexData := common.SliceToBytes(indices)
	indexBuffer, err := gpu.Device().CreateBuffer(&wgpu.BufferDescriptor{
		Label:            fmt.Sprintf("%s-index-buffer", label),
		Size:             uint64(len(indexData)),
		Usage:            wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	})
	if err != nil {
		vertexBuffer.Release()
		return GeometryBuffer{}, fmt.Errorf("mesh %s: failed to create index buffer: %w", label, err)
	}
	if len(indexData) > 0 {
		gpu.Queue().WriteBuffer(indexBuffer, 0, indexData)
	}

	return GeometryBuffer{
		VertexBuffer: vertexBuffer,
		IndexBuffer:  indexBuffer,
		ElementCount: uint32(len(indices)),
	}, nil
}
