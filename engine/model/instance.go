package model

import (
	"fmt"

	"github.com/Carmen-Shannon/lumen-go/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// Instance is the logical transform of one repetition of a model: a world
// position and a rotation quaternion. Instances are packed into GPUInstance
// records and uploaded once; they are not mutated after upload.
type Instance struct {
	// Position is the instance's translation in world space.
	Position [3]float32

	// Rotation is the instance's orientation as a unit quaternion (x, y, z, w).
	Rotation [4]float32
}

// ToRaw packs the instance into its GPU wire format: the model matrix composed
// from translation and rotation, and the rotation's 3x3 linear part as the
// normal matrix.
//
// Returns:
//   - GPUInstance: the packed instance record
func (i *Instance) ToRaw() GPUInstance {
	var raw GPUInstance
	common.ComposeTransform(raw.Model[:], i.Position[0], i.Position[1], i.Position[2],
		i.Rotation[0], i.Rotation[1], i.Rotation[2], i.Rotation[3])
	common.QuaternionMatrix3(raw.Normal[:], i.Rotation[0], i.Rotation[1], i.Rotation[2], i.Rotation[3])
	return raw
}

// InstanceSet is an uploaded array of instance transforms bound as the slot-1
// vertex stream. The count fixes the instance range of every draw issued for
// the owning renderer.
type InstanceSet struct {
	// Buffer is the instance-rate vertex buffer holding packed GPUInstance records.
	Buffer *wgpu.Buffer

	// Count is the number of instances in the buffer.
	Count uint32
}

// Release frees the instance buffer.
func (s *InstanceSet) Release() {
	if s.Buffer != nil {
		s.Buffer.Release()
		s.Buffer = nil
	}
}

// NewInstanceSet packs and uploads a non-empty list of instance transforms.
//
// Parameters:
//   - gpu: device handles used to create and write the buffer
//   - label: debug label applied to the created buffer
//   - instances: the instance transforms to upload (must be non-empty)
//
// Returns:
//   - *InstanceSet: the uploaded instance set
//   - error: error if instances is empty or buffer creation fails
func NewInstanceSet(gpu GPU, label string, instances []Instance) (*InstanceSet, error) {
	if len(instances) == 0 {
		return nil, fmt.Errorf("instance set %s: no instances supplied", label)
	}

	raw := make([]GPUInstance, len(instances))
	for i := range instances {
		raw[i] = instances[i].ToRaw()
	}

	data := common.SliceToBytes(raw)
	buffer, err := gpu.Device().CreateBuffer(&wgpu.BufferDescriptor{
		Label:            fmt.Sprintf("%s-instance-buffer", label),
		Size:             uint64(len(data)),
		Usage:            wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	})
	if err != nil {
		return nil, fmt.Errorf("instance set %s: failed to create buffer: %w", label, err)
	}
	gpu.Queue().WriteBuffer(buffer, 0, data)

	return &InstanceSet{
		Buffer: buffer,
		Count:  uint32(len(instances)),
	}, nil
}
