// package texture creates the GPU texture resources used by the engine: diffuse
// textures sampled by the fragment shader and the depth attachment used for
// depth testing.
package texture

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// DepthFormat is the texture format of the engine's depth attachment. Render
// pipelines that enable depth testing must declare this exact format.
const DepthFormat = wgpu.TextureFormatDepth24Plus

// GPU provides the device handles required to create texture resources.
type GPU interface {
	Device() *wgpu.Device
	Queue() *wgpu.Queue
}

// Texture bundles a GPU texture with the view and sampler handles needed to
// bind it. Depth textures carry no sampler; they are only ever used as a
// render attachment.
type Texture struct {
	// Texture is the underlying GPU texture.
	Texture *wgpu.Texture

	// View is the full-texture view bound into bind groups or render passes.
	View *wgpu.TextureView

	// Sampler is the filtering sampler for diffuse textures, nil for depth.
	Sampler *wgpu.Sampler

	// Width and Height are the texture dimensions in pixels.
	Width, Height uint32
}

// Release frees the GPU resources held by the texture.
func (t *Texture) Release() {
	if t.Sampler != nil {
		t.Sampler.Release()
		t.Sampler = nil
	}
	if t.View != nil {
		t.View.Release()
		t.View = nil
	}
	if t.Texture != nil {
		t.Texture.Release()
		t.Texture = nil
	}
}

// NewDiffuse uploads decoded RGBA pixel data as an sRGB texture with a
// linear-filtering repeat sampler, ready to bind as a material's diffuse slot.
//
// Parameters:
//   - gpu: device handles used to create and write the texture
//   - label: debug label applied to the created GPU objects
//   - pixels: raw RGBA pixel data, 4 bytes per pixel, row-major
//   - width: texture width in pixels
//   - height: texture height in pixels
//
// Returns:
//   - *Texture: the uploaded texture with view and sampler
//   - error: error if the pixel data is malformed or creation fails
func NewDiffuse(gpu GPU, label string, pixels []byte, width, height uint32) (*Texture, error) {
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("texture %s: zero dimension %dx%d", label, width, height)
	}
	if len(pixels) != int(width)*int(height)*4 {
		return nil, fmt.Errorf("texture %s: pixel data is %d bytes, want %d for %dx%d RGBA", label, len(pixels), int(width)*int(height)*4, width, height)
	}

	size := wgpu.Extent3D{
		Width:              width,
		Height:             height,
		DepthOrArrayLayers: 1,
	}
	tex, err := gpu.Device().CreateTexture(&wgpu.TextureDescriptor{
		Label:         label,
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatRGBA8UnormSrgb,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("texture %s: failed to create texture: %w", label, err)
	}

	gpu.Queue().WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  tex,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		pixels,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  width * 4,
			RowsPerImage: height,
		},
		&size,
	)

	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("texture %s: failed to create view: %w", label, err)
	}

	sampler, err := gpu.Device().CreateSampler(&wgpu.SamplerDescriptor{
		Label:         fmt.Sprintf("%s-sampler", label),
		AddressModeU:  wgpu.AddressModeRepeat,
		AddressModeV:  wgpu.AddressModeRepeat,
		AddressModeW:  wgpu.AddressModeRepeat,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeLinear,
		LodMinClamp:   0,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	})
	if err != nil {
		view.Release()
		tex.Release()
		return nil, fmt.Errorf("texture %s: failed to create sampler: %w", label, err)
	}

	return &Texture{
		Texture: tex,
		View:    view,
		Sampler: sampler,
		Width:   width,
		Height:  height,
	}, nil
}

// NewDepth creates the depth attachment for a surface of the given size. The
// frame driver recreates it wholesale on every resize; it is never sampled.
//
// Parameters:
//   - gpu: device handles used to create the texture
//   - label: debug label applied to the created GPU objects
//   - width: attachment width in pixels (must be > 0)
//   - height: attachment height in pixels (must be > 0)
//
// Returns:
//   - *Texture: the depth texture with view (no sampler)
//   - error: error if creation fails
func NewDepth(gpu GPU, label string, width, height uint32) (*Texture, error) {
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("texture %s: zero dimension %dx%d", label, width, height)
	}

	tex, err := gpu.Device().CreateTexture(&wgpu.TextureDescriptor{
		Label: label,
		Size: wgpu.Extent3D{
			Width:              width,
			Height:             height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        DepthFormat,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return nil, fmt.Errorf("texture %s: failed to create depth texture: %w", label, err)
	}

	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("texture %s: failed to create depth view: %w", label, err)
	}

	return &Texture{
		Texture: tex,
		View:    view,
		Width:   width,
		Height:  height,
	}, nil
}
