package loader

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/qmuntal/gltf"
)

func indexPtr(i int) *int { return &i }

func TestGLTFMaterialTextureBufferView(t *testing.T) {
	doc := &gltf.Document{
		Materials: []*gltf.Material{
			{
				Name: "wood",
				PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
					BaseColorTexture: &gltf.TextureInfo{Index: 0},
				},
			},
		},
		Textures:    []*gltf.Texture{{Source: indexPtr(0)}},
		Images:      []*gltf.Image{{BufferView: indexPtr(0)}},
		BufferViews: []*gltf.BufferView{{Buffer: 0, ByteOffset: 2, ByteLength: 3}},
		Buffers:     []*gltf.Buffer{{Data: []byte{0, 0, 7, 8, 9}}},
	}

	ref, err := (&gltfBackend{}).materialTexture(doc, "", 0)
	if err != nil {
		t.Fatalf("materialTexture failed: %v", err)
	}
	if ref.name != "wood" {
		t.Errorf("name = %q, want wood", ref.name)
	}
	if ref.texture == nil {
		t.Fatal("expected a texture reference")
	}
	if !bytes.Equal(ref.texture.Data, []byte{7, 8, 9}) {
		t.Errorf("texture data = %v, want [7 8 9]", ref.texture.Data)
	}

	// The bytes are copied out of the document buffer.
	doc.Buffers[0].Data[2] = 0
	if ref.texture.Data[0] != 7 {
		t.Error("texture data aliases the document buffer")
	}
}

func TestGLTFMaterialTextureDataURI(t *testing.T) {
	payload := []byte{9, 9, 9}
	doc := &gltf.Document{
		Materials: []*gltf.Material{
			{
				PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
					BaseColorTexture: &gltf.TextureInfo{Index: 0},
				},
			},
		},
		Textures: []*gltf.Texture{{Source: indexPtr(0)}},
		Images: []*gltf.Image{
			{URI: "data:image/png;base64," + base64.StdEncoding.EncodeToString(payload)},
		},
	}

	ref, err := (&gltfBackend{}).materialTexture(doc, "", 0)
	if err != nil {
		t.Fatalf("materialTexture failed: %v", err)
	}
	if ref.name != "material-0" {
		t.Errorf("name = %q, want the material-0 fallback", ref.name)
	}
	if ref.texture == nil || !bytes.Equal(ref.texture.Data, payload) {
		t.Errorf("unexpected texture data: %+v", ref.texture)
	}
}

func TestGLTFMaterialTextureExternalURI(t *testing.T) {
	doc := &gltf.Document{
		Materials: []*gltf.Material{
			{
				Name: "brick",
				PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
					BaseColorTexture: &gltf.TextureInfo{Index: 0},
				},
			},
		},
		Textures: []*gltf.Texture{{Source: indexPtr(0)}},
		Images:   []*gltf.Image{{URI: "tex/brick.png"}},
	}

	ref, err := (&gltfBackend{}).materialTexture(doc, filepath.Join("assets", "models"), 0)
	if err != nil {
		t.Fatalf("materialTexture failed: %v", err)
	}
	want := filepath.Join("assets", "models", "tex", "brick.png")
	if ref.texture == nil || ref.texture.Path != want {
		t.Errorf("texture path = %+v, want %q", ref.texture, want)
	}
}

func TestGLTFMaterialTextureUntextured(t *testing.T) {
	doc := &gltf.Document{
		Materials: []*gltf.Material{{Name: "flat"}},
	}
	ref, err := (&gltfBackend{}).materialTexture(doc, "", 0)
	if err != nil {
		t.Fatalf("materialTexture failed: %v", err)
	}
	if ref.name != "flat" || ref.texture != nil {
		t.Errorf("expected an untextured reference, got %+v", ref)
	}
}

func TestGLTFMaterialTextureErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  *gltf.Document
		idx  int
		want string
	}{
		{
			name: "material index out of range",
			doc:  &gltf.Document{},
			idx:  0,
			want: "material index 0 out of range",
		},
		{
			name: "texture index out of range",
			doc: &gltf.Document{
				Materials: []*gltf.Material{
					{PBRMetallicRoughness: &gltf.PBRMetallicRoughness{BaseColorTexture: &gltf.TextureInfo{Index: 5}}},
				},
			},
			idx:  0,
			want: "texture index 5 out of range",
		},
		{
			name: "texture without source",
			doc: &gltf.Document{
				Materials: []*gltf.Material{
					{PBRMetallicRoughness: &gltf.PBRMetallicRoughness{BaseColorTexture: &gltf.TextureInfo{Index: 0}}},
				},
				Textures: []*gltf.Texture{{}},
			},
			idx:  0,
			want: "no image source",
		},
		{
			name: "image without data or uri",
			doc: &gltf.Document{
				Materials: []*gltf.Material{
					{PBRMetallicRoughness: &gltf.PBRMetallicRoughness{BaseColorTexture: &gltf.TextureInfo{Index: 0}}},
				},
				Textures: []*gltf.Texture{{Source: indexPtr(0)}},
				Images:   []*gltf.Image{{}},
			},
			idx:  0,
			want: "neither buffer view nor URI",
		},
		{
			name: "image buffer view exceeds buffer",
			doc: &gltf.Document{
				Materials: []*gltf.Material{
					{PBRMetallicRoughness: &gltf.PBRMetallicRoughness{BaseColorTexture: &gltf.TextureInfo{Index: 0}}},
				},
				Textures:    []*gltf.Texture{{Source: indexPtr(0)}},
				Images:      []*gltf.Image{{BufferView: indexPtr(0)}},
				BufferViews: []*gltf.BufferView{{Buffer: 0, ByteOffset: 4, ByteLength: 8}},
				Buffers:     []*gltf.Buffer{{Data: []byte{1, 2, 3}}},
			},
			idx:  0,
			want: "exceeds buffer size",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := (&gltfBackend{}).materialTexture(tt.doc, "", tt.idx)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.want)
			}
		})
	}
}

func TestDecodeDataURI(t *testing.T) {
	payload := []byte("hello")
	uri := "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(payload)
	data, err := decodeDataURI(uri)
	if err != nil {
		t.Fatalf("decodeDataURI failed: %v", err)
	}
	if !bytes.Equal(data, payload) {
		t.Errorf("decoded %v, want %v", data, payload)
	}

	if _, err := decodeDataURI("data:image/png;base64"); err == nil {
		t.Error("expected error for data URI without comma")
	}
	if _, err := decodeDataURI("data:image/png,plain"); err == nil {
		t.Error("expected error for non-base64 data URI")
	}
	if _, err := decodeDataURI("data:image/png;base64,!!!"); err == nil {
		t.Error("expected error for corrupt base64 payload")
	}
}

// triangleGLTF composes a minimal document with one triangle, 16-bit indices
// in a data URI buffer, and one material referencing an external image.
func triangleGLTF(t *testing.T) string {
	t.Helper()

	var buf bytes.Buffer
	positions := []float32{0, 0, 0, 1, 0, 0, 0, 1, 0}
	for _, p := range positions {
		if err := binary.Write(&buf, binary.LittleEndian, math.Float32bits(p)); err != nil {
			t.Fatalf("failed to pack positions: %v", err)
		}
	}
	for _, i := range []uint16{0, 1, 2} {
		if err := binary.Write(&buf, binary.LittleEndian, i); err != nil {
			t.Fatalf("failed to pack indices: %v", err)
		}
	}

	doc := fmt.Sprintf(`{
  "asset": {"version": "2.0"},
  "scene": 0,
  "scenes": [{"nodes": [0]}],
  "nodes": [{"mesh": 0}],
  "meshes": [{"name": "tri", "primitives": [{"attributes": {"POSITION": 0}, "indices": 1, "material": 0}]}],
  "materials": [{"name": "wood", "pbrMetallicRoughness": {"baseColorTexture": {"index": 0}}}],
  "textures": [{"source": 0}],
  "images": [{"uri": "wood.png"}],
  "accessors": [
    {"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3", "min": [0, 0, 0], "max": [1, 1, 0]},
    {"bufferView": 1, "componentType": 5123, "count": 3, "type": "SCALAR"}
  ],
  "bufferViews": [
    {"buffer": 0, "byteOffset": 0, "byteLength": 36},
    {"buffer": 0, "byteOffset": 36, "byteLength": 6}
  ],
  "buffers": [{"byteLength": %d, "uri": "data:application/octet-stream;base64,%s"}]
}`, buf.Len(), base64.StdEncoding.EncodeToString(buf.Bytes()))

	dir := t.TempDir()
	path := filepath.Join(dir, "tri.gltf")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("failed to write gltf: %v", err)
	}
	return path
}

func TestGLTFBackendLoad(t *testing.T) {
	path := triangleGLTF(t)
	obj, err := newGLTFLoaderBackend().Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(obj.Meshes) != 1 {
		t.Fatalf("expected 1 mesh, got %d", len(obj.Meshes))
	}
	mesh := obj.Meshes[0]
	if mesh.Name != "tri" {
		t.Errorf("mesh name = %q, want tri", mesh.Name)
	}
	if mesh.VertexCount() != 3 {
		t.Fatalf("expected 3 vertices, got %d", mesh.VertexCount())
	}
	if mesh.Positions[3] != 1 || mesh.Positions[7] != 1 {
		t.Errorf("unexpected positions: %v", mesh.Positions)
	}
	if len(mesh.Indices) != 3 || mesh.Indices[2] != 2 {
		t.Errorf("unexpected indices: %v", mesh.Indices)
	}
	if len(mesh.TexCoords) != 6 || len(mesh.Normals) != 9 {
		t.Errorf("absent attributes not zero-filled: %d uvs, %d normals", len(mesh.TexCoords), len(mesh.Normals))
	}
	if mesh.MaterialID != 0 {
		t.Errorf("material id = %d, want 0", mesh.MaterialID)
	}

	if len(obj.Textures) != 1 {
		t.Fatalf("expected 1 texture, got %d", len(obj.Textures))
	}
	if obj.Textures[0].Name != "wood" {
		t.Errorf("texture name = %q, want wood", obj.Textures[0].Name)
	}
	if want := filepath.Join(filepath.Dir(path), "wood.png"); obj.Textures[0].Path != want {
		t.Errorf("texture path = %q, want %q", obj.Textures[0].Path, want)
	}
}

func TestGLTFBackendLoadMissingFile(t *testing.T) {
	_, err := newGLTFLoaderBackend().Load("/nonexistent/model.glb")
	if err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func TestGLTFBackendLoadNoGeometry(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.gltf")
	doc := `{"asset": {"version": "2.0"}, "meshes": []}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("failed to write gltf: %v", err)
	}
	_, err := newGLTFLoaderBackend().Load(path)
	if err == nil || !strings.Contains(err.Error(), "no triangle geometry") {
		t.Errorf("expected no-geometry error, got %v", err)
	}
}
