package light

import (
	"encoding/binary"
	"math"
	"unsafe"
)

// GPULightUniform is the GPU-aligned representation of the light uniform buffer.
// Matches the WGSL Light struct layout exactly.
// Size: 32 bytes (std430 / WGSL aligned).
type GPULightUniform struct {
	Position  [3]float32 // offset  0: world-space position (vec3<f32>)
	Intensity float32    // offset 12: scalar multiplier (f32)
	Color     [3]float32 // offset 16: RGB color (vec3<f32>)
	_pad      float32    // offset 28: padding to 32 bytes
}

// Size returns the size of the GPULightUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (32)
func (g *GPULightUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPULightUniform struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 32-byte buffer ready for GPU upload
func (g *GPULightUniform) Marshal() []byte {
	buf := make([]byte, 32)
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(g.Position[0]))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(g.Position[1]))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(g.Position[2]))
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(g.Intensity))
	binary.LittleEndian.PutUint32(buf[16:20], math.Float32bits(g.Color[0]))
	binary.LittleEndian.PutUint32(buf[20:24], math.Float32bits(g.Color[1]))
	binary.LittleEndian.PutUint32(buf[24:28], math.Float32bits(g.Color[2]))
	binary.LittleEndian.PutUint32(buf[28:32], 0) // padding
	return buf
}
