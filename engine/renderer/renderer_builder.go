package renderer

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*rendererImpl)

// WithPresentMode sets the surface present mode which controls how frames are delivered to the display.
//
// Parameters:
//   - mode: the PresentMode to use (VSync or Uncapped)
//
// Returns:
//   - RendererBuilderOption: a function that applies the present mode option to a renderer
func WithPresentMode(mode PresentMode) RendererBuilderOption {
	return func(r *rendererImpl) {
		r.presentMode = mode
	}
}

// WithClearColor sets the color the render pass clears the surface to at the
// start of every frame. The default is a dark slate blue (0.1, 0.2, 0.3, 1.0).
//
// Parameters:
//   - red: the red channel in [0, 1]
//   - green: the green channel in [0, 1]
//   - blue: the blue channel in [0, 1]
//   - alpha: the alpha channel in [0, 1]
//
// Returns:
//   - RendererBuilderOption: a function that applies the clear color option to a renderer
func WithClearColor(red, green, blue, alpha float64) RendererBuilderOption {
	return func(r *rendererImpl) {
		r.clearColor.R = red
		r.clearColor.G = green
		r.clearColor.B = blue
		r.clearColor.A = alpha
	}
}

// WithForceSoftwareRenderer forces WGPU to use a CPU/software fallback adapter instead of
// hardware GPU acceleration. This requires a software Vulkan ICD to be installed on the system
// (e.g. SwiftShader or lavapipe). Useful for benchmarking CPU vs GPU rendering performance.
//
// Parameters:
//   - force: true to force the software fallback adapter, false to use hardware (default)
//
// Returns:
//   - RendererBuilderOption: a function that applies the force software renderer option to a renderer
func WithForceSoftwareRenderer(force bool) RendererBuilderOption {
	return func(r *rendererImpl) {
		r.forceFallbackAdapter = force
	}
}
