package engine

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Carmen-Shannon/lumen-go/common"
	"github.com/Carmen-Shannon/lumen-go/engine/camera"
	"github.com/Carmen-Shannon/lumen-go/engine/light"
	"github.com/Carmen-Shannon/lumen-go/engine/renderer"
	"github.com/Carmen-Shannon/lumen-go/engine/scene"
	"github.com/Carmen-Shannon/lumen-go/engine/window"
)

// fakeWindow captures the callbacks the engine installs so tests can fire
// input and resize events directly. Methods the engine never calls are left
// to the embedded nil interface, where a call would panic the test.
type fakeWindow struct {
	window.Window

	onUpdate    func()
	onResize    func(width, height int)
	onScroll    func(delta float32)
	onKeyDown   func(keyCode uint32)
	onMouseDown func(x, y int32)
	onMouseUp   func(x, y int32)
	onMouseMove func(x, y int32)

	closed bool
}

func (f *fakeWindow) SetUpdateCallback(callback func())                { f.onUpdate = callback }
func (f *fakeWindow) SetResizeCallback(callback func(w, h int))        { f.onResize = callback }
func (f *fakeWindow) SetScrollCallback(callback func(delta float32))   { f.onScroll = callback }
func (f *fakeWindow) SetKeyDownCallback(callback func(keyCode uint32)) { f.onKeyDown = callback }
func (f *fakeWindow) SetKeyUpCallback(callback func(keyCode uint32))   {}

func (f *fakeWindow) SetMiddleMouseDownCallback(callback func(x, y int32)) {
	f.onMouseDown = callback
}

func (f *fakeWindow) SetMiddleMouseUpCallback(callback func(x, y int32)) { f.onMouseUp = callback }
func (f *fakeWindow) SetMouseMoveCallback(callback func(x, y int32))     { f.onMouseMove = callback }

func (f *fakeWindow) Close() error {
	f.closed = true
	return nil
}

// fakeGPU satisfies renderer.Renderer for the parts the engine touches.
type fakeGPU struct {
	renderer.Renderer
	width, height uint32
}

func (f *fakeGPU) Size() (uint32, uint32) { return f.width, f.height }

// fakeCamera exposes a real orbit controller so input wiring can be verified
// against actual controller state.
type fakeCamera struct {
	camera.Camera
	ctrl camera.CameraController
}

func (f *fakeCamera) Controller() camera.CameraController { return f.ctrl }

// fakeScene records the calls the engine loop makes.
type fakeScene struct {
	cam camera.Camera
	gpu renderer.Renderer

	updates   []float32
	renderErr error
	renders   int

	resizes [][2]int
}

func (f *fakeScene) Name() string                            { return "fake" }
func (f *fakeScene) SetName(string)                          {}
func (f *fakeScene) Camera() camera.Camera                   { return f.cam }
func (f *fakeScene) Light() light.Light                      { return nil }
func (f *fakeScene) Renderer() renderer.Renderer             { return f.gpu }
func (f *fakeScene) AddRenderer(renderer.ModelRenderer)      {}
func (f *fakeScene) Renderers() []renderer.ModelRenderer     { return nil }
func (f *fakeScene) Update(dt float32)                       { f.updates = append(f.updates, dt) }
func (f *fakeScene) Resize(width, height int)                { f.resizes = append(f.resizes, [2]int{width, height}) }
func (f *fakeScene) Release()                                {}

func (f *fakeScene) Render() error {
	f.renders++
	return f.renderErr
}

func newTestEngine(options ...EngineBuilderOption) (*engineImpl, *fakeWindow, *fakeScene) {
	win := &fakeWindow{}
	scn := &fakeScene{
		cam: &fakeCamera{ctrl: camera.NewCameraController()},
		gpu: &fakeGPU{width: 800, height: 600},
	}
	e := NewEngine(win, scn, options...).(*engineImpl)
	return e, win, scn
}

func TestNewEnginePanicsOnNilCollaborators(t *testing.T) {
	tests := []struct {
		name string
		call func()
	}{
		{name: "nil window", call: func() { NewEngine(nil, &fakeScene{}) }},
		{name: "nil scene", call: func() { NewEngine(&fakeWindow{}, nil) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Fatalf("expected panic")
				}
			}()
			tt.call()
		})
	}
}

func TestHandleFrameError(t *testing.T) {
	oom := fmt.Errorf("begin frame: %w", renderer.ErrOutOfMemory)
	lost := fmt.Errorf("begin frame: %w", renderer.ErrSurfaceLost)
	outdated := fmt.Errorf("begin frame: %w", renderer.ErrSurfaceOutdated)
	timeout := fmt.Errorf("begin frame: %w", renderer.ErrSurfaceTimeout)

	tests := []struct {
		name        string
		err         error
		wantFatal   bool
		wantResizes int
	}{
		{name: "nil error", err: nil},
		{name: "out of memory is fatal", err: oom, wantFatal: true},
		{name: "surface lost reconfigures", err: lost, wantResizes: 1},
		{name: "surface outdated skips", err: outdated},
		{name: "surface timeout skips", err: timeout},
		{name: "unknown error skips", err: errors.New("validation failure")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _, scn := newTestEngine()

			got := e.handleFrameError(tt.err)

			if tt.wantFatal {
				if !errors.Is(got, tt.err) {
					t.Fatalf("fatal error: got %v, want %v", got, tt.err)
				}
			} else if got != nil {
				t.Fatalf("expected frame to be survivable, got %v", got)
			}
			if len(scn.resizes) != tt.wantResizes {
				t.Fatalf("scene resizes: got %d, want %d", len(scn.resizes), tt.wantResizes)
			}
			if tt.wantResizes > 0 && scn.resizes[0] != [2]int{800, 600} {
				t.Errorf("recovery resize: got %v, want last known 800x600", scn.resizes[0])
			}
		})
	}
}

func TestFrameUpdatesThenRenders(t *testing.T) {
	e, _, scn := newTestEngine()
	e.lastFrame = time.Now().Add(-16 * time.Millisecond)

	e.frame()

	if len(scn.updates) != 1 {
		t.Fatalf("updates: got %d, want 1", len(scn.updates))
	}
	if scn.updates[0] <= 0 {
		t.Errorf("dt not positive: %v", scn.updates[0])
	}
	if scn.renders != 1 {
		t.Fatalf("renders: got %d, want 1", scn.renders)
	}
}

func TestFrameFatalErrorClosesWindow(t *testing.T) {
	e, win, scn := newTestEngine()
	scn.renderErr = fmt.Errorf("begin frame: %w", renderer.ErrOutOfMemory)
	e.lastFrame = time.Now()

	e.frame()

	if !win.closed {
		t.Fatalf("window not closed after fatal frame error")
	}
	if !errors.Is(e.runErr, renderer.ErrOutOfMemory) {
		t.Fatalf("runErr: got %v, want out-of-memory", e.runErr)
	}
}

func TestResizeEventReachesScene(t *testing.T) {
	_, win, scn := newTestEngine()

	win.onResize(1024, 768)

	if len(scn.resizes) != 1 || scn.resizes[0] != [2]int{1024, 768} {
		t.Fatalf("resizes: got %v, want [[1024 768]]", scn.resizes)
	}
}

func TestKeyInputOrbitsController(t *testing.T) {
	e, win, _ := newTestEngine()
	ctrl := e.scn.Camera().Controller()

	before := ctrl.Azimuth()
	win.onKeyDown(common.KeyA)
	after := ctrl.Azimuth()
	if before == after {
		t.Fatalf("azimuth unchanged after orbit key")
	}

	before = ctrl.Elevation()
	win.onKeyDown(common.KeyUp)
	if ctrl.Elevation() == before {
		t.Fatalf("elevation unchanged after orbit key")
	}
}

func TestMouseDragOrbitsController(t *testing.T) {
	e, win, _ := newTestEngine()
	ctrl := e.scn.Camera().Controller()

	before := ctrl.Azimuth()
	// Movement without a held button must not orbit.
	win.onMouseMove(50, 50)
	if ctrl.Azimuth() != before {
		t.Fatalf("azimuth changed without a drag in progress")
	}

	win.onMouseDown(10, 10)
	win.onMouseMove(50, 10)
	if ctrl.Azimuth() == before {
		t.Fatalf("azimuth unchanged after drag")
	}

	moved := ctrl.Azimuth()
	win.onMouseUp(50, 10)
	win.onMouseMove(90, 10)
	if ctrl.Azimuth() != moved {
		t.Fatalf("azimuth changed after drag released")
	}
}

func TestScrollZoomsController(t *testing.T) {
	e, win, _ := newTestEngine()
	ctrl := e.scn.Camera().Controller()

	before := ctrl.Radius()
	win.onScroll(1.0)
	ctrl.Step(1.0)

	if ctrl.Radius() >= before {
		t.Fatalf("radius %v did not glide toward zoom target below %v", ctrl.Radius(), before)
	}
}

func TestSetFrameLimit(t *testing.T) {
	e, _, _ := newTestEngine()

	e.SetFrameLimit(60)
	if e.frameLimit != time.Second/60 {
		t.Fatalf("frame limit: got %v, want %v", e.frameLimit, time.Second/60)
	}

	e.SetFrameLimit(0)
	if e.frameLimit != 0 {
		t.Fatalf("frame limit not cleared: %v", e.frameLimit)
	}
}

func TestQuitClosesWindow(t *testing.T) {
	e, win, _ := newTestEngine()
	e.Quit()
	if !win.closed {
		t.Fatalf("window not closed by Quit")
	}
}

// Compile-time check that the test fake tracks the real Scene interface.
var _ scene.Scene = &fakeScene{}
