package model

import (
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
)

// GPUVertex is the GPU-aligned representation of a single mesh vertex.
// Matches the WGSL VertexInput struct layout exactly: shader locations 0-2.
// Size: 32 bytes (std430 aligned, no padding required).
type GPUVertex struct {
	Position  [3]float32 // offset  0: vertex position in model space (12 bytes), shader location 0
	TexCoords [2]float32 // offset 12: UV texture coordinate (8 bytes), shader location 1
	Normal    [3]float32 // offset 20: vertex normal for lighting (12 bytes), shader location 2
}

// Size returns the size of the GPUVertex struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUVertex) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUVertex struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 32-byte buffer ready for GPU upload.
func (g *GPUVertex) Marshal() []byte {
	buf := make([]byte, 32)
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(g.Position[0]))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(g.Position[1]))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(g.Position[2]))
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(g.TexCoords[0]))
	binary.LittleEndian.PutUint32(buf[16:20], math.Float32bits(g.TexCoords[1]))
	binary.LittleEndian.PutUint32(buf[20:24], math.Float32bits(g.Normal[0]))
	binary.LittleEndian.PutUint32(buf[24:28], math.Float32bits(g.Normal[1]))
	binary.LittleEndian.PutUint32(buf[28:32], math.Float32bits(g.Normal[2]))
	return buf
}

// VertexBufferLayout describes the per-vertex buffer layout bound at vertex
// stream slot 0. Every render pipeline in this engine declares it first.
//
// Returns:
//   - wgpu.VertexBufferLayout: the slot-0 vertex layout (stride 32, locations 0-2)
func VertexBufferLayout() wgpu.VertexBufferLayout {
	return wgpu.VertexBufferLayout{
		ArrayStride: uint64(unsafe.Sizeof(GPUVertex{})),
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
			{Offset: 0, ShaderLocation: 0, Format: wgpu.VertexFormatFloat32x3},
			{Offset: 12, ShaderLocation: 1, Format: wgpu.VertexFormatFloat32x2},
			{Offset: 20, ShaderLocation: 2, Format: wgpu.VertexFormatFloat32x3},
		},
	}
}

// GPUInstance is the GPU-aligned representation of a single instance transform.
// Matches the WGSL InstanceInput struct layout exactly: the model matrix occupies
// shader locations 5-8 (one vec4 column per location) and the normal matrix
// occupies locations 9-11 (one vec3 column per location). The location range
// starts at 5 so the per-vertex layout can grow without colliding.
// Size: 100 bytes (std430 aligned, no padding required).
type GPUInstance struct {
	Model  [16]float32 // offset  0: 4x4 model-to-world matrix, column-major (64 bytes), shader locations 5-8
	Normal [9]float32  // offset 64: 3x3 normal matrix, column-major (36 bytes), shader locations 9-11
}

// Size returns the size of the GPUInstance struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUInstance) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUInstance struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 100-byte buffer ready for GPU upload.
func (g *GPUInstance) Marshal() []byte {
	buf := make([]byte, 100)
	for i := 0; i < 16; i++ {
		binary.LittleEndian.PutUint32(buf[i*4:(i+1)*4], math.Float32bits(g.Model[i]))
	}
	for i := 0; i < 9; i++ {
		binary.LittleEndian.PutUint32(buf[64+i*4:64+(i+1)*4], math.Float32bits(g.Normal[i]))
	}
	return buf
}

// InstanceBufferLayout describes the per-instance buffer layout bound at vertex
// stream slot 1 when a renderer carries an InstanceSet. Pipelines compiled
// without instance data must not declare it.
//
// Returns:
//   - wgpu.VertexBufferLayout: the slot-1 instance layout (stride 100, locations 5-11)
func InstanceBufferLayout() wgpu.VertexBufferLayout {
	return wgpu.VertexBufferLayout{
		ArrayStride: uint64(unsafe.Sizeof(GPUInstance{})),
		StepMode:    wgpu.VertexStepModeInstance,
		Attributes: []wgpu.VertexAttribute{
			{Offset: 0, ShaderLocation: 5, Format: wgpu.VertexFormatFloat32x4},
			{Offset: 16, ShaderLocation: 6, Format: wgpu.VertexFormatFloat32x4},
			{Offset: 32, ShaderLocation: 7, Format: wgpu.VertexFormatFloat32x4},
			{Offset: 48, ShaderLocation: 8, Format: wgpu.VertexFormatFloat32x4},
			{Offset: 64, ShaderLocation: 9, Format: wgpu.VertexFormatFloat32x3},
			{Offset: 76, ShaderLocation: 10, Format: wgpu.VertexFormatFloat32x3},
			{Offset: 88, ShaderLocation: 11, Format: wgpu.VertexFormatFloat32x3},
		},
	}
}
