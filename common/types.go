// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"
)

// ImportedMesh holds the decoded geometry of a single mesh from a model file.
// Attribute slices are tightly packed: Positions and Normals carry 3 floats
// per vertex, TexCoords carries 2. All three describe the same vertex count.
type ImportedMesh struct {
	// Name is the mesh identifier from the source file (may be empty).
	Name string

	// Positions holds vertex positions as [x, y, z] triples.
	Positions []float32

	// TexCoords holds texture coordinates as [u, v] pairs. When the source
	// mesh has no texture coordinates this slice is zero-filled.
	TexCoords []float32

	// Normals holds vertex normals as [x, y, z] triples. When the source
	// mesh has no normals this slice is zero-filled.
	Normals []float32

	// Indices holds the triangle list indexing into the attribute slices.
	Indices []uint32

	// MaterialID indexes into the owning object's Textures slice, or -1 when
	// the mesh has no material.
	MaterialID int
}

// VertexCount returns the number of vertices described by the mesh.
func (m *ImportedMesh) VertexCount() int {
	return len(m.Positions) / 3
}

// ImportedTexture represents texture data extracted from a model file.
// For embedded textures (GLB), the Data field contains raw image bytes.
// For external textures, the Path field contains the file path.
type ImportedTexture struct {
	// Name is an identifier for this texture, typically the material name.
	Name string

	// Path is the file path for external textures (empty for embedded).
	Path string

	// Data contains raw image bytes for embedded textures (PNG/JPEG).
	Data []byte

	// Width is the texture width in pixels (populated after Decode).
	Width int

	// Height is the texture height in pixels (populated after Decode).
	Height int
}

// ImportedObject is the complete decoded contents of one model file: every
// mesh plus the diffuse textures their materials reference. Textures is nil
// when the object is untextured; otherwise each mesh's MaterialID is a valid
// index into it.
type ImportedObject struct {
	// Meshes holds every mesh decoded from the file, in file order.
	Meshes []ImportedMesh

	// Textures holds one diffuse texture per material referenced by the
	// meshes. Nil when no mesh carries a material.
	Textures []ImportedTexture
}

// Decode decodes the texture to raw RGBA pixel data.
// Uses either embedded Data bytes or loads from Path on disk.
// Supports PNG and JPEG formats.
// Reference: https://pkg.go.dev/image
//
// Returns:
//   - []byte: raw RGBA pixel data (4 bytes per pixel, row-major order)
//   - uint32: texture width in pixels
//   - uint32: texture height in pixels
//   - error: error if decoding fails
func (t *ImportedTexture) Decode() ([]byte, uint32, uint32, error) {
	if t == nil {
		return nil, 0, 0, fmt.Errorf("texture is nil")
	}

	var img image.Image
	var err error

	if len(t.Data) > 0 {
		img, _, err = image.Decode(bytes.NewReader(t.Data))
		if err != nil {
			return nil, 0, 0, fmt.Errorf("failed to decode embedded image: %w", err)
		}
	} else if t.Path != "" {
		file, fileErr := os.Open(t.Path)
		if fileErr != nil {
			return nil, 0, 0, fmt.Errorf("failed to open texture file %s: %w", t.Path, fileErr)
		}
		defer file.Close()

		img, _, err = image.Decode(file)
		if err != nil {
			return nil, 0, 0, fmt.Errorf("failed to decode texture file %s: %w", t.Path, err)
		}
	} else {
		return nil, 0, 0, fmt.Errorf("texture has neither data nor path")
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	rgba := image.NewRGBA(bounds)
	draw.Draw(rgba, bounds, img, bounds.Min, draw.Src)

	t.Width = width
	t.Height = height

	return rgba.Pix, uint32(width), uint32(height), nil
}
