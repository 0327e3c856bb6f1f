package loader

import (
	"fmt"

	"github.com/Carmen-Shannon/lumen-go/common"
)

// loaderBackend defines the generic interface for decoding models from files.
// Concrete implementations (objBackend, gltfBackend) handle format-specific details.
type loaderBackend interface {
	// Load decodes the model file at the given path into CPU-side mesh and
	// texture data. Malformed input fails with a decode error; no partial
	// object is returned.
	//
	// Parameters:
	//   - path: the file path to load
	//
	// Returns:
	//   - common.ImportedObject: the decoded meshes and textures
	//   - error: error if decoding fails
	Load(path string) (common.ImportedObject, error)
}

// resolvedMaterial pairs a source material name with its diffuse texture,
// nil when the material defines none.
type resolvedMaterial struct {
	name    string
	texture *common.ImportedTexture
}

// resolveMaterialTextures applies the all-or-nothing material rule shared by
// every backend: when each referenced material carries a diffuse texture the
// object is textured, when none do the object is untextured, and a mix is a
// decode error. On input each mesh's MaterialID indexes refs (or is -1); on
// output it indexes the returned Textures slice, or is -1 throughout for the
// untextured case.
func resolveMaterialTextures(meshes []common.ImportedMesh, refs []resolvedMaterial) (common.ImportedObject, error) {
	for i := range meshes {
		if id := meshes[i].MaterialID; id >= len(refs) {
			return common.ImportedObject{}, fmt.Errorf("mesh %d references material %d, have %d materials", i, id, len(refs))
		}
	}

	textured := 0
	for _, ref := range refs {
		if ref.texture != nil {
			textured++
		}
	}

	if textured == 0 {
		for i := range meshes {
			meshes[i].MaterialID = -1
		}
		return common.ImportedObject{Meshes: meshes}, nil
	}

	if textured != len(refs) {
		for _, ref := range refs {
			if ref.texture == nil {
				return common.ImportedObject{}, fmt.Errorf("material %q has no diffuse texture while other materials do", ref.name)
			}
		}
	}

	textures := make([]common.ImportedTexture, len(refs))
	for i, ref := range refs {
		textures[i] = *ref.texture
	}
	return common.ImportedObject{Meshes: meshes, Textures: textures}, nil
}
