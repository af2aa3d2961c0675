package engine

import (
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-galaxy/common"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/camera"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/frame"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/sim"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWindow struct {
	onUpdate   func()
	onResize   func(width, height int)
	onKeyDown  func(key uint32)
	onDrag     func(button uint32, dx, dy float32)
	title      string
	iterations int
	closed     bool
}

func (w *fakeWindow) SetUpdateCallback(callback func()) { w.onUpdate = callback }
func (w *fakeWindow) SetResizeCallback(callback func(width, height int)) { w.onResize = callback }
func (w *fakeWindow) SetScrollCallback(func(delta float32)) {}
func (w *fakeWindow) SetKeyDownCallback(callback func(keyCode uint32)) { w.onKeyDown = callback }
func (w *fakeWindow) SetKeyUpCallback(func(keyCode uint32)) {}
func (w *fakeWindow) SetDragCallback(callback func(button uint32, dx, dy float32)) { w.onDrag = callback }
func (w *fakeWindow) SetTitle(title string) { w.title = title }
func (w *fakeWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor { return nil }
func (w *fakeWindow) IsRunning() bool { return !w.closed }
func (w *fakeWindow) Width() int { return 640 }
func (w *fakeWindow) Height() int { return 480 }

func (w *fakeWindow) Close() error {
	w.closed = true
	return nil
}

func (w *fakeWindow) ProcessMessages() {
	for i := 0; i < w.iterations && w.IsRunning(); i++ {
		w.onUpdate()
	}
}

type fakeOrchestrator struct {
	cam      camera.Camera
	state    *sim.State
	frames   int
	selected []string
	resized  common.Extent
}

func newFakeOrchestrator() *fakeOrchestrator {
	return &fakeOrchestrator{cam: camera.NewCamera(), state: sim.NewState()}
}

func (o *fakeOrchestrator) RenderFrame(time.Time) (bool, error) {
	o.frames++
	return true, nil
}
func (o *fakeOrchestrator) Resize(width, height int) { o.resized = common.NewExtent(width, height) }
func (o *fakeOrchestrator) Apply(sim.ChangeSet) {}
func (o *fakeOrchestrator) SelectPreset(p sim.Preset) { o.selected = append(o.selected, p.Name) }
func (o *fakeOrchestrator) RequestReset(string) {}
func (o *fakeOrchestrator) SetPaused(bool) {}
func (o *fakeOrchestrator) Paused() bool { return false }
func (o *fakeOrchestrator) State() *sim.State { return o.state }
func (o *fakeOrchestrator) Camera() camera.Camera { return o.cam }
func (o *fakeOrchestrator) Stats() frame.Stats { return frame.Stats{} }
func (o *fakeOrchestrator) Release() {}

var _ frame.Orchestrator = &fakeOrchestrator{}

func TestNewEngineRequiresCollaborators(t *testing.T) {
	assert.Panics(t, func() { NewEngine() })
	assert.Panics(t, func() { NewEngine(WithWindow(&fakeWindow{})) })
}

func TestRunRendersEveryIterationWhenUncapped(t *testing.T) {
	w := &fakeWindow{iterations: 5}
	o := newFakeOrchestrator()
	e := NewEngine(WithWindow(w), WithOrchestrator(o))

	results := 0
	e.SetFrameCallback(func(rendered bool, err error) {
		assert.True(t, rendered)
		assert.NoError(t, err)
		results++
	})
	e.Run()

	assert.Equal(t, 5, o.frames)
	assert.Equal(t, 5, results)
}

func TestFrameLimitGatesRendering(t *testing.T) {
	w := &fakeWindow{iterations: 50}
	o := newFakeOrchestrator()
	e := NewEngine(WithWindow(w), WithOrchestrator(o), WithFrameLimit(0.001))
	e.Run()

	assert.Equal(t, 1, o.frames)
}

func TestPresetsSelectedInOrderBeforeFrame(t *testing.T) {
	w := &fakeWindow{iterations: 1}
	o := newFakeOrchestrator()
	e := NewEngine(WithWindow(w), WithOrchestrator(o))

	require.True(t, e.SubmitPreset(sim.Preset{Name: "a"}))
	require.True(t, e.SubmitPreset(sim.Preset{Name: "b"}))
	e.Run()

	assert.Equal(t, []string{"a", "b"}, o.selected)
}

func TestForwardPresets(t *testing.T) {
	o := newFakeOrchestrator()
	e := NewEngine(WithWindow(&fakeWindow{}), WithOrchestrator(o))
	defer e.Quit()

	ch := make(chan sim.Preset)
	e.ForwardPresets(ch)
	ch <- sim.Preset{Name: "watched"}

	eng := e.(*engine)
	select {
	case p := <-eng.presets:
		assert.Equal(t, "watched", p.Name)
	case <-time.After(5 * time.Second):
		t.Fatal("preset not forwarded")
	}
}

func TestSubmitPresetDropsWhenFull(t *testing.T) {
	e := NewEngine(WithWindow(&fakeWindow{}), WithOrchestrator(newFakeOrchestrator()))
	for i := 0; i < cap(e.(*engine).presets); i++ {
		require.True(t, e.SubmitPreset(sim.Preset{}))
	}
	assert.False(t, e.SubmitPreset(sim.Preset{}))
}

func TestQuitClosesWindow(t *testing.T) {
	w := &fakeWindow{iterations: 10}
	o := newFakeOrchestrator()
	e := NewEngine(WithWindow(w), WithOrchestrator(o))
	e.Quit()
	e.Quit()
	e.Run()

	assert.True(t, w.closed)
	assert.Zero(t, o.frames)
}

func TestCallbacksWired(t *testing.T) {
	w := &fakeWindow{}
	o := newFakeOrchestrator()
	e := NewEngine(WithWindow(w), WithOrchestrator(o))

	var keys []uint32
	e.SetKeyCallback(func(key uint32) { keys = append(keys, key) })
	w.onKeyDown(common.KeyR)
	w.onResize(800, 600)

	assert.Equal(t, []uint32{common.KeyR}, keys)
	assert.Equal(t, common.Extent{Width: 800, Height: 600}, o.resized)

	before := o.cam.Pose()
	require.NotNil(t, w.onDrag)
	w.onDrag(common.MouseLeft, 40, 0)
	assert.NotEqual(t, before.Azimuth, o.cam.Pose().Azimuth)
}
