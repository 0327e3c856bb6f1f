// Package engine owns the frame-driven control loop: it pumps the window's
// message loop, advances the scene by the measured frame delta, renders, and
// classifies per-frame errors into recover, skip, or stop.
package engine

import (
	"errors"
	"log"
	"time"

	"github.com/Carmen-Shannon/lumen-go/common"
	"github.com/Carmen-Shannon/lumen-go/engine/profiler"
	"github.com/Carmen-Shannon/lumen-go/engine/renderer"
	"github.com/Carmen-Shannon/lumen-go/engine/scene"
	"github.com/Carmen-Shannon/lumen-go/engine/window"
)

// engineImpl is the implementation of the Engine interface.
//
// The loop is strictly single-threaded: every frame runs update then render
// on the window's message loop thread. The only blocking setup (GPU device
// negotiation) happened before the engine was constructed, inside
// renderer.NewRenderer.
type engineImpl struct {
	win window.Window
	scn scene.Scene

	profiler         *profiler.Profiler
	profilingEnabled bool

	// frameLimit is the minimum frame duration; 0 leaves the loop uncapped.
	frameLimit time.Duration

	// lastFrame is the timestamp of the previous frame, owned by the engine
	// and advanced exactly once per iteration.
	lastFrame time.Time

	// runErr holds the fatal error that stopped the loop, returned by Run.
	runErr error

	// dragging tracks whether a middle-mouse orbit drag is in progress.
	dragging               bool
	lastMouseX, lastMouseY int32
}

// Engine drives the window message loop and the per-frame update/render
// cycle for one scene. Input events are forwarded to the scene's camera
// controller and resize events to the scene; per-frame render errors are
// classified so a lost surface recovers, a transient failure skips one
// frame, and GPU memory exhaustion stops the loop.
type Engine interface {
	// Window returns the window the engine pumps.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Scene returns the scene the engine updates and renders each frame.
	//
	// Returns:
	//   - scene.Scene: the scene instance
	Scene() scene.Scene

	// EnableProfiler enables frame-rate and memory profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables profiling output.
	DisableProfiler()

	// SetFrameLimit caps the frame rate by sleeping out the remainder of each
	// frame. Pass 0 to uncap (the default).
	//
	// Parameters:
	//   - fps: maximum frames per second (0 = uncapped)
	SetFrameLimit(fps float64)

	// Run blocks pumping the window message loop, running one update/render
	// cycle per iteration, until the window closes or a fatal frame error
	// stops the loop.
	//
	// Returns:
	//   - error: the fatal error that stopped the loop (e.g. GPU out of
	//     memory), or nil when the window closed normally
	Run() error

	// Quit closes the window, which ends the Run loop after the current
	// frame. Safe to call more than once.
	Quit()
}

var _ Engine = &engineImpl{}

// NewEngine creates an Engine for a window and scene and wires the window's
// events to them: framebuffer resizes reach the scene (and through it the
// renderer's surface and the camera's aspect ratio), the scroll wheel zooms
// the camera controller, middle-mouse drags orbit it, and WASD/arrow keys
// nudge the orbit. Both collaborators are required.
//
// Parameters:
//   - win: the window whose message loop the engine pumps
//   - scn: the scene updated and rendered each frame
//   - options: variadic list of EngineBuilderOption functions to configure the Engine
//
// Returns:
//   - Engine: the engine, ready for Run
func NewEngine(win window.Window, scn scene.Scene, options ...EngineBuilderOption) Engine {
	if win == nil {
		panic("engine: NewEngine requires a non-nil Window")
	}
	if scn == nil {
		panic("engine: NewEngine requires a non-nil Scene")
	}

	e := &engineImpl{
		win:      win,
		scn:      scn,
		profiler: profiler.NewProfiler(),
	}
	for _, opt := range options {
		opt(e)
	}

	e.win.SetResizeCallback(func(width, height int) {
		e.scn.Resize(width, height)
	})
	e.wireCameraInput()

	return e
}

// wireCameraInput forwards window input events to the scene camera's
// controller. A camera without a controller receives no input.
func (e *engineImpl) wireCameraInput() {
	ctrl := e.scn.Camera().Controller()
	if ctrl == nil {
		return
	}

	e.win.SetScrollCallback(func(delta float32) {
		ctrl.Zoom(delta)
	})

	e.win.SetMiddleMouseDownCallback(func(x, y int32) {
		e.dragging = true
		e.lastMouseX = x
		e.lastMouseY = y
	})
	e.win.SetMiddleMouseUpCallback(func(x, y int32) {
		e.dragging = false
	})
	e.win.SetMouseMoveCallback(func(x, y int32) {
		if !e.dragging {
			return
		}
		ctrl.Drag(float32(x-e.lastMouseX), float32(y-e.lastMouseY))
		e.lastMouseX = x
		e.lastMouseY = y
	})

	e.win.SetKeyDownCallback(func(keyCode uint32) {
		switch keyCode {
		case common.KeyA, common.KeyLeft:
			ctrl.OrbitLeft()
		case common.KeyD, common.KeyRight:
			ctrl.OrbitRight()
		case common.KeyW, common.KeyUp:
			ctrl.OrbitUp()
		case common.KeyS, common.KeyDown:
			ctrl.OrbitDown()
		}
	})
}

func (e *engineImpl) Window() window.Window {
	return e.win
}

func (e *engineImpl) Scene() scene.Scene {
	return e.scn
}

func (e *engineImpl) EnableProfiler() {
	e.profilingEnabled = true
}

func (e *engineImpl) DisableProfiler() {
	e.profilingEnabled = false
}

func (e *engineImpl) SetFrameLimit(fps float64) {
	if fps <= 0 {
		e.frameLimit = 0
		return
	}
	e.frameLimit = time.Second / time.Duration(fps)
}

func (e *engineImpl) Run() error {
	e.runErr = nil
	e.lastFrame = time.Now()
	e.win.SetUpdateCallback(e.frame)
	e.win.ProcessMessages()
	e.win.SetUpdateCallback(nil)
	return e.runErr
}

func (e *engineImpl) Quit() {
	if err := e.win.Close(); err != nil {
		log.Printf("engine: failed to close window: %v", err)
	}
}

// frame runs one update/render cycle. Called once per message loop iteration.
func (e *engineImpl) frame() {
	frameStart := time.Now()
	dt := float32(frameStart.Sub(e.lastFrame).Seconds())
	e.lastFrame = frameStart

	e.scn.Update(dt)

	if err := e.handleFrameError(e.scn.Render()); err != nil {
		e.runErr = err
		e.Quit()
		return
	}

	if e.profilingEnabled && e.profiler != nil {
		e.profiler.Tick()
	}

	if e.frameLimit > 0 {
		if remaining := e.frameLimit - time.Since(frameStart); remaining > 0 {
			time.Sleep(remaining)
		}
	}
}

// handleFrameError classifies a render error. A lost surface is recovered by
// reconfiguring at the last known size; GPU memory exhaustion is returned as
// fatal; anything else is logged once and the frame skipped, trusting the
// next frame to self-heal.
func (e *engineImpl) handleFrameError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, renderer.ErrOutOfMemory):
		return err
	case errors.Is(err, renderer.ErrSurfaceLost):
		log.Printf("engine: surface lost, reconfiguring: %v", err)
		width, height := e.scn.Renderer().Size()
		e.scn.Resize(int(width), int(height))
		return nil
	default:
		log.Printf("engine: frame skipped: %v", err)
		return nil
	}
}
