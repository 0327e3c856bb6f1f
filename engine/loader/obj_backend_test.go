package loader

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/lumen-go/common"
)

func decodeOBJ(t *testing.T, src, dir string) common.ImportedObject {
	t.Helper()
	obj, err := (&objBackend{}).decode(strings.NewReader(src), dir)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	return obj
}

func TestOBJDecodeTriangle(t *testing.T) {
	src := `# a single triangle
v 0 0 0
v 1 0 0
v 0 1 0
vt 0 0
vt 1 0
vt 0 1
vn 0 0 1

f 1/1/1 2/2/1 3/3/1
`
	obj := decodeOBJ(t, src, "")
	if len(obj.Meshes) != 1 {
		t.Fatalf("expected 1 mesh, got %d", len(obj.Meshes))
	}
	mesh := obj.Meshes[0]
	if mesh.VertexCount() != 3 {
		t.Fatalf("expected 3 vertices, got %d", mesh.VertexCount())
	}
	if len(mesh.Indices) != 3 || mesh.Indices[0] != 0 || mesh.Indices[1] != 1 || mesh.Indices[2] != 2 {
		t.Errorf("unexpected indices: %v", mesh.Indices)
	}
	if mesh.MaterialID != -1 {
		t.Errorf("expected no material, got id %d", mesh.MaterialID)
	}
	if obj.Textures != nil {
		t.Errorf("expected no textures, got %d", len(obj.Textures))
	}

	wantPositions := []float32{0, 0, 0, 1, 0, 0, 0, 1, 0}
	for i, want := range wantPositions {
		if mesh.Positions[i] != want {
			t.Errorf("positions[%d] = %v, want %v", i, mesh.Positions[i], want)
		}
	}

	// V is flipped from the bottom-left origin to the top-left origin.
	wantUVs := []float32{0, 1, 1, 1, 0, 0}
	for i, want := range wantUVs {
		if mesh.TexCoords[i] != want {
			t.Errorf("texCoords[%d] = %v, want %v", i, mesh.TexCoords[i], want)
		}
	}

	for i := 0; i < 3; i++ {
		if mesh.Normals[i*3] != 0 || mesh.Normals[i*3+1] != 0 || mesh.Normals[i*3+2] != 1 {
			t.Errorf("vertex %d normal = %v, want (0 0 1)", i, mesh.Normals[i*3:i*3+3])
		}
	}
}

func TestOBJDecodeQuadFanTriangulation(t *testing.T) {
	src := `v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
f 1 2 3 4
`
	mesh := decodeOBJ(t, src, "").Meshes[0]
	if mesh.VertexCount() != 4 {
		t.Fatalf("expected 4 unique vertices, got %d", mesh.VertexCount())
	}
	want := []uint32{0, 1, 2, 0, 2, 3}
	if len(mesh.Indices) != len(want) {
		t.Fatalf("expected %d indices, got %d", len(want), len(mesh.Indices))
	}
	for i, w := range want {
		if mesh.Indices[i] != w {
			t.Errorf("indices[%d] = %d, want %d", i, mesh.Indices[i], w)
		}
	}
}

func TestOBJDecodeSharedCornersDeduplicated(t *testing.T) {
	src := `v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
f 1 2 3
f 1 3 4
`
	mesh := decodeOBJ(t, src, "").Meshes[0]
	if mesh.VertexCount() != 4 {
		t.Errorf("expected shared corners to deduplicate to 4 vertices, got %d", mesh.VertexCount())
	}
	if len(mesh.Indices) != 6 {
		t.Errorf("expected 6 indices, got %d", len(mesh.Indices))
	}
}

func TestOBJDecodeNegativeIndices(t *testing.T) {
	src := `v 0 0 0
v 1 0 0
v 0 1 0
f -3 -2 -1
`
	mesh := decodeOBJ(t, src, "").Meshes[0]
	if mesh.VertexCount() != 3 {
		t.Fatalf("expected 3 vertices, got %d", mesh.VertexCount())
	}
	if mesh.Positions[3] != 1 {
		t.Errorf("negative indices resolved wrong vertex order: %v", mesh.Positions)
	}
}

func TestOBJDecodeObjectPartitions(t *testing.T) {
	src := `o first
v 0 0 0
v 1 0 0
v 0 1 0
f 1 2 3
o second
v 0 0 1
v 1 0 1
v 0 1 1
f 4 5 6
`
	obj := decodeOBJ(t, src, "")
	if len(obj.Meshes) != 2 {
		t.Fatalf("expected 2 meshes, got %d", len(obj.Meshes))
	}
	if obj.Meshes[0].Name != "first" || obj.Meshes[1].Name != "second" {
		t.Errorf("unexpected mesh names: %q, %q", obj.Meshes[0].Name, obj.Meshes[1].Name)
	}
	if obj.Meshes[1].Positions[2] != 1 {
		t.Errorf("second mesh references wrong vertices: %v", obj.Meshes[1].Positions)
	}
}

func TestOBJDecodeZeroFillsMissingAttributes(t *testing.T) {
	src := `v 0 0 0
v 1 0 0
v 0 1 0
vn 0 0 1
f 1//1 2//1 3//1
`
	mesh := decodeOBJ(t, src, "").Meshes[0]
	for i := 0; i < 6; i++ {
		if mesh.TexCoords[i] != 0 {
			t.Errorf("texCoords[%d] = %v, want 0 for absent vt", i, mesh.TexCoords[i])
		}
	}
	if mesh.Normals[2] != 1 {
		t.Errorf("normals not populated: %v", mesh.Normals[:3])
	}

	src = `v 0 0 0
v 1 0 0
v 0 1 0
f 1 2 3
`
	mesh = decodeOBJ(t, src, "").Meshes[0]
	for i := 0; i < 9; i++ {
		if mesh.Normals[i] != 0 {
			t.Errorf("normals[%d] = %v, want 0 for absent vn", i, mesh.Normals[i])
		}
	}
}

func TestOBJDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "zero index",
			src:  "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 0 2 3\n",
			want: "1-based",
		},
		{
			name: "index out of range",
			src:  "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 9\n",
			want: "out of range",
		},
		{
			name: "texture coordinate index out of range",
			src:  "v 0 0 0\nv 1 0 0\nv 0 1 0\nvt 0 0\nf 1/1 2/2 3/1\n",
			want: "out of range",
		},
		{
			name: "too few face corners",
			src:  "v 0 0 0\nv 1 0 0\nf 1 2\n",
			want: "at least 3",
		},
		{
			name: "invalid position value",
			src:  "v a 0 0\n",
			want: "invalid value",
		},
		{
			name: "truncated position",
			src:  "v 0 0\n",
			want: "want 3",
		},
		{
			name: "malformed face corner",
			src:  "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1/1/1/1 2 3\n",
			want: "malformed face corner",
		},
		{
			name: "usemtl without name",
			src:  "usemtl\n",
			want: "missing material name",
		},
		{
			name: "unknown material",
			src:  "v 0 0 0\nv 1 0 0\nv 0 1 0\nusemtl missing\nf 1 2 3\n",
			want: "not defined in any mtllib",
		},
		{
			name: "no faces",
			src:  "v 0 0 0\n",
			want: "no faces",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := (&objBackend{}).decode(strings.NewReader(tt.src), "")
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.want)
			}
		})
	}
}

func TestOBJDecodeMissingMaterialLibrary(t *testing.T) {
	dir := t.TempDir()
	_, err := (&objBackend{}).decode(strings.NewReader("mtllib nope.mtl\n"), dir)
	if err == nil || !strings.Contains(err.Error(), "failed to open material library") {
		t.Errorf("expected material library error, got %v", err)
	}
}

func TestOBJDecodeMaterials(t *testing.T) {
	dir := t.TempDir()
	mtl := `newmtl stone
Kd 0.5 0.5 0.5
map_Kd stone.png
newmtl brick
map_Kd textures/brick diffuse.png
`
	if err := os.WriteFile(filepath.Join(dir, "cube.mtl"), []byte(mtl), 0o644); err != nil {
		t.Fatalf("failed to write mtl: %v", err)
	}

	src := `mtllib cube.mtl
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
usemtl stone
f 1 2 3
usemtl brick
f 1 3 4
`
	obj := decodeOBJ(t, src, dir)
	if len(obj.Meshes) != 2 {
		t.Fatalf("expected usemtl to split meshes, got %d", len(obj.Meshes))
	}
	if obj.Meshes[0].MaterialID != 0 || obj.Meshes[1].MaterialID != 1 {
		t.Errorf("unexpected material ids: %d, %d", obj.Meshes[0].MaterialID, obj.Meshes[1].MaterialID)
	}
	if len(obj.Textures) != 2 {
		t.Fatalf("expected 2 textures, got %d", len(obj.Textures))
	}
	if obj.Textures[0].Name != "stone" {
		t.Errorf("textures[0].Name = %q, want stone", obj.Textures[0].Name)
	}
	if want := filepath.Join(dir, "stone.png"); obj.Textures[0].Path != want {
		t.Errorf("textures[0].Path = %q, want %q", obj.Textures[0].Path, want)
	}
	if want := filepath.Join(dir, "textures", "brick diffuse.png"); obj.Textures[1].Path != want {
		t.Errorf("textures[1].Path = %q, want %q", obj.Textures[1].Path, want)
	}
}

func TestOBJDecodeUntexturedMaterials(t *testing.T) {
	dir := t.TempDir()
	mtl := `newmtl flat
Kd 1 0 0
newmtl shiny
Ks 1 1 1
`
	if err := os.WriteFile(filepath.Join(dir, "lib.mtl"), []byte(mtl), 0o644); err != nil {
		t.Fatalf("failed to write mtl: %v", err)
	}

	src := `mtllib lib.mtl
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
usemtl flat
f 1 2 3
usemtl shiny
f 1 3 4
`
	obj := decodeOBJ(t, src, dir)
	if obj.Textures != nil {
		t.Errorf("expected no textures when no material has a diffuse map, got %d", len(obj.Textures))
	}
	for i, mesh := range obj.Meshes {
		if mesh.MaterialID != -1 {
			t.Errorf("mesh %d material id = %d, want -1", i, mesh.MaterialID)
		}
	}
}

func TestOBJDecodeMixedMaterialTexturesFails(t *testing.T) {
	dir := t.TempDir()
	mtl := `newmtl textured
map_Kd stone.png
newmtl flat
Kd 1 0 0
`
	if err := os.WriteFile(filepath.Join(dir, "lib.mtl"), []byte(mtl), 0o644); err != nil {
		t.Fatalf("failed to write mtl: %v", err)
	}

	src := `mtllib lib.mtl
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
usemtl textured
f 1 2 3
usemtl flat
f 1 3 4
`
	_, err := (&objBackend{}).decode(strings.NewReader(src), dir)
	if err == nil || !strings.Contains(err.Error(), "no diffuse texture") {
		t.Errorf("expected mixed texture error, got %v", err)
	}
}

func TestOBJBackendLoadMissingFile(t *testing.T) {
	_, err := newOBJLoaderBackend().Load("/nonexistent/model.obj")
	if err == nil {
		t.Error("expected error for nonexistent file")
	}
}
