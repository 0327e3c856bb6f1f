package loader

import (
	"encoding/base64"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/lumen-go/common"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// gltfBackend decodes glTF 2.0 documents, both the JSON .gltf form and the
// binary .glb container. Buffer data is resolved by the gltf package, including
// external .bin files and data URIs; accessor interpretation is delegated to
// the modeler package. This backend walks primitives for triangle geometry and
// pulls the base color texture out of each referenced material.
//
// glTF texture coordinates already use a top-left origin and triangles already
// wind counter-clockwise, so unlike the OBJ backend nothing is flipped here.
type gltfBackend struct{}

// newGLTFLoaderBackend creates the glTF format backend.
func newGLTFLoaderBackend() loaderBackend {
	return &gltfBackend{}
}

func (g *gltfBackend) Load(path string) (common.ImportedObject, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return common.ImportedObject{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	dir := filepath.Dir(path)

	var meshes []common.ImportedMesh
	var refs []resolvedMaterial
	refIndex := make(map[int]int)

	for mi, m := range doc.Meshes {
		name := common.Coalesce(m.Name, fmt.Sprintf("mesh-%d", mi))
		for pi, prim := range m.Primitives {
			if prim.Mode != gltf.PrimitiveTriangles && prim.Mode != 0 {
				continue
			}

			posIdx, ok := prim.Attributes[gltf.POSITION]
			if !ok {
				return common.ImportedObject{}, fmt.Errorf("mesh %s primitive %d has no position attribute", name, pi)
			}
			accessor, err := documentAccessor(doc, posIdx)
			if err != nil {
				return common.ImportedObject{}, fmt.Errorf("mesh %s: %w", name, err)
			}
			positions, err := modeler.ReadPosition(doc, accessor, nil)
			if err != nil {
				return common.ImportedObject{}, fmt.Errorf("mesh %s: failed to read positions: %w", name, err)
			}
			count := len(positions)

			texCoords := make([]float32, count*2)
			if uvIdx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
				accessor, err := documentAccessor(doc, uvIdx)
				if err != nil {
					return common.ImportedObject{}, fmt.Errorf("mesh %s: %w", name, err)
				}
				uvs, err := modeler.ReadTextureCoord(doc, accessor, nil)
				if err != nil {
					return common.ImportedObject{}, fmt.Errorf("mesh %s: failed to read texture coordinates: %w", name, err)
				}
				if len(uvs) != count {
					return common.ImportedObject{}, fmt.Errorf("mesh %s: have %d texture coordinates for %d vertices", name, len(uvs), count)
				}
				for i, uv := range uvs {
					texCoords[i*2] = uv[0]
					texCoords[i*2+1] = uv[1]
				}
			}

			normals := make([]float32, count*3)
			if normIdx, ok := prim.Attributes[gltf.NORMAL]; ok {
				accessor, err := documentAccessor(doc, normIdx)
				if err != nil {
					return common.ImportedObject{}, fmt.Errorf("mesh %s: %w", name, err)
				}
				norms, err := modeler.ReadNormal(doc, accessor, nil)
				if err != nil {
					return common.ImportedObject{}, fmt.Errorf("mesh %s: failed to read normals: %w", name, err)
				}
				if len(norms) != count {
					return common.ImportedObject{}, fmt.Errorf("mesh %s: have %d normals for %d vertices", name, len(norms), count)
				}
				for i, n := range norms {
					normals[i*3] = n[0]
					normals[i*3+1] = n[1]
					normals[i*3+2] = n[2]
				}
			}

			var indices []uint32
			if prim.Indices != nil {
				accessor, err := documentAccessor(doc, *prim.Indices)
				if err != nil {
					return common.ImportedObject{}, fmt.Errorf("mesh %s: %w", name, err)
				}
				indices, err = modeler.ReadIndices(doc, accessor, nil)
				if err != nil {
					return common.ImportedObject{}, fmt.Errorf("mesh %s: failed to read indices: %w", name, err)
				}
			} else {
				indices = make([]uint32, count)
				for i := range indices {
					indices[i] = uint32(i)
				}
			}

			materialID := -1
			if prim.Material != nil {
				idx, ok := refIndex[*prim.Material]
				if !ok {
					ref, err := g.materialTexture(doc, dir, *prim.Material)
					if err != nil {
						return common.ImportedObject{}, fmt.Errorf("mesh %s: %w", name, err)
					}
					idx = len(refs)
					refs = append(refs, ref)
					refIndex[*prim.Material] = idx
				}
				materialID = idx
			}

			meshName := name
			if len(m.Primitives) > 1 {
				meshName = fmt.Sprintf("%s-%d", name, pi)
			}
			positionData := make([]float32, 0, count*3)
			for _, p := range positions {
				positionData = append(positionData, p[0], p[1], p[2])
			}
			meshes = append(meshes, common.ImportedMesh{
				Name:       meshName,
				Positions:  positionData,
				TexCoords:  texCoords,
				Normals:    normals,
				Indices:    indices,
				MaterialID: materialID,
			})
		}
	}

	if len(meshes) == 0 {
		return common.ImportedObject{}, fmt.Errorf("%s contains no triangle geometry", path)
	}
	return resolveMaterialTextures(meshes, refs)
}

// materialTexture resolves a document material index to its name and base
// color image. Images embedded in a buffer view or a data URI are copied out
// as bytes; external images are referenced by path for later decoding.
func (g *gltfBackend) materialTexture(doc *gltf.Document, dir string, idx int) (resolvedMaterial, error) {
	if idx < 0 || idx >= len(doc.Materials) {
		return resolvedMaterial{}, fmt.Errorf("material index %d out of range (document has %d)", idx, len(doc.Materials))
	}
	mat := doc.Materials[idx]
	ref := resolvedMaterial{name: common.Coalesce(mat.Name, fmt.Sprintf("material-%d", idx))}

	if mat.PBRMetallicRoughness == nil || mat.PBRMetallicRoughness.BaseColorTexture == nil {
		return ref, nil
	}
	texIdx := mat.PBRMetallicRoughness.BaseColorTexture.Index
	if texIdx < 0 || texIdx >= len(doc.Textures) {
		return resolvedMaterial{}, fmt.Errorf("material %s: texture index %d out of range", ref.name, texIdx)
	}
	tex := doc.Textures[texIdx]
	if tex.Source == nil {
		return resolvedMaterial{}, fmt.Errorf("material %s: texture %d has no image source", ref.name, texIdx)
	}
	if *tex.Source < 0 || *tex.Source >= len(doc.Images) {
		return resolvedMaterial{}, fmt.Errorf("material %s: image index %d out of range", ref.name, *tex.Source)
	}
	img := doc.Images[*tex.Source]

	imported := &common.ImportedTexture{Name: ref.name}
	switch {
	case img.BufferView != nil:
		data, err := readBufferViewBytes(doc, *img.BufferView)
		if err != nil {
			return resolvedMaterial{}, fmt.Errorf("material %s: failed to read image: %w", ref.name, err)
		}
		imported.Data = data
	case strings.HasPrefix(img.URI, "data:"):
		data, err := decodeDataURI(img.URI)
		if err != nil {
			return resolvedMaterial{}, fmt.Errorf("material %s: failed to decode image data URI: %w", ref.name, err)
		}
		imported.Data = data
	case img.URI != "":
		imported.Path = filepath.Join(dir, img.URI)
	default:
		return resolvedMaterial{}, fmt.Errorf("material %s: image %d has neither buffer view nor URI", ref.name, *tex.Source)
	}
	ref.texture = imported
	return ref, nil
}

func documentAccessor(doc *gltf.Document, idx int) (*gltf.Accessor, error) {
	if idx < 0 || idx >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor index %d out of range (document has %d)", idx, len(doc.Accessors))
	}
	return doc.Accessors[idx], nil
}

// readBufferViewBytes copies the raw bytes of a buffer view, used for image
// data that is stored directly in a view without accessor interpretation. The
// copy keeps cached textures from pinning the document's full buffer.
func readBufferViewBytes(doc *gltf.Document, idx int) ([]byte, error) {
	if idx < 0 || idx >= len(doc.BufferViews) {
		return nil, fmt.Errorf("buffer view index %d out of range", idx)
	}
	view := doc.BufferViews[idx]
	if view.Buffer < 0 || view.Buffer >= len(doc.Buffers) {
		return nil, fmt.Errorf("buffer index %d out of range", view.Buffer)
	}
	buffer := doc.Buffers[view.Buffer]
	end := view.ByteOffset + view.ByteLength
	if end > len(buffer.Data) {
		return nil, fmt.Errorf("buffer view [%d:%d] exceeds buffer size %d", view.ByteOffset, end, len(buffer.Data))
	}
	data := make([]byte, view.ByteLength)
	copy(data, buffer.Data[view.ByteOffset:end])
	return data, nil
}

// decodeDataURI decodes a base64 data URI of the form
// data:[<mediatype>][;base64],<data> into raw bytes.
func decodeDataURI(uri string) ([]byte, error) {
	commaIdx := strings.Index(uri, ",")
	if commaIdx < 0 {
		return nil, fmt.Errorf("malformed data URI: no comma found")
	}
	if !strings.Contains(uri[:commaIdx], ";base64") {
		return nil, fmt.Errorf("data URI is not base64 encoded")
	}
	data, err := base64.StdEncoding.DecodeString(uri[commaIdx+1:])
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64: %w", err)
	}
	return data, nil
}
