package scene

import (
	"github.com/Carmen-Shannon/lumen-go/engine/renderer"
)

// SceneBuilderOption is a functional option applied to a scene during construction via NewScene.
type SceneBuilderOption func(*sceneImpl)

// WithName sets the scene's identifier.
//
// Parameters:
//   - name: the scene name
//
// Returns:
//   - SceneBuilderOption: a function that applies the name option to a scene
func WithName(name string) SceneBuilderOption {
	return func(s *sceneImpl) {
		s.name = name
	}
}

// WithModelRenderer registers a model renderer during scene construction.
// Equivalent to calling AddRenderer after NewScene; renderers are drawn in
// registration order.
//
// Parameters:
//   - mr: the model renderer to register
//
// Returns:
//   - SceneBuilderOption: a function that applies the renderer option to a scene
func WithModelRenderer(mr renderer.ModelRenderer) SceneBuilderOption {
	return func(s *sceneImpl) {
		if mr != nil {
			s.renderers = append(s.renderers, mr)
		}
	}
}
