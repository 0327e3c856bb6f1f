package engine

import (
	"time"
)

// EngineBuilderOption is a functional option applied to an engine during construction via NewEngine.
type EngineBuilderOption func(*engineImpl)

// WithProfiling enables or disables frame-rate and memory profiling output.
//
// Parameters:
//   - enabled: if true, enables profiling output to the log
//
// Returns:
//   - EngineBuilderOption: a function that applies the profiling option to an engine
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engineImpl) {
		e.profilingEnabled = enabled
	}
}

// WithFrameLimit caps the frame rate in frames per second by sleeping out the
// remainder of each frame. Values <= 0 leave the loop uncapped (the default).
//
// Parameters:
//   - fps: maximum frames per second (0 = uncapped)
//
// Returns:
//   - EngineBuilderOption: a function that applies the frame limit option to an engine
func WithFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engineImpl) {
		if fps <= 0 {
			e.frameLimit = 0
			return
		}
		e.frameLimit = time.Second / time.Duration(fps)
	}
}
