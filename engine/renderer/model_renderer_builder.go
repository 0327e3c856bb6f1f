package renderer

import (
	"github.com/Carmen-Shannon/lumen-go/engine/model"
)

// ModelRendererBuilderOption is a functional option applied to a model renderer during construction via NewModelRenderer.
type ModelRendererBuilderOption func(*modelRendererImpl)

// WithInstances supplies the per-instance transforms for this model. They are
// uploaded once during construction as a second vertex stream, and their count
// becomes the instance range for every draw of this model. Without this
// option the model draws a single instance and the pipeline declares no
// instance stream.
//
// Parameters:
//   - instances: the instance transforms to upload, one per drawn copy
//
// Returns:
//   - ModelRendererBuilderOption: a function that applies the instances option to a model renderer
func WithInstances(instances []model.Instance) ModelRendererBuilderOption {
	return func(mr *modelRendererImpl) {
		mr.pendingInstances = instances
	}
}
