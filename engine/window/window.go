package window

import (
	"fmt"
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
)

// Window is the viewer's platform window: it owns the WebGPU surface source and forwards input.
type Window interface {
	// SetUpdateCallback sets the function called once per message loop iteration.
	//
	// Parameters:
	//   - callback: function to call (or nil to disable)
	SetUpdateCallback(callback func())

	// SetResizeCallback sets the function called when the framebuffer size changes.
	// Minimising the window reports a zero size.
	//
	// Parameters:
	//   - callback: function receiving new width and height in pixels
	SetResizeCallback(callback func(width, height int))

	// SetScrollCallback sets the callback for mouse wheel events.
	//
	// Parameters:
	//   - callback: function receiving the vertical scroll delta, positive away from the user
	SetScrollCallback(callback func(delta float32))

	// SetKeyDownCallback sets the callback for key presses. Auto-repeat does not fire it again.
	//
	// Parameters:
	//   - callback: function receiving the virtual key code
	SetKeyDownCallback(callback func(keyCode uint32))

	// SetKeyUpCallback sets the callback for key releases.
	//
	// Parameters:
	//   - callback: function receiving the virtual key code
	SetKeyUpCallback(callback func(keyCode uint32))

	// SetDragCallback sets the callback for cursor movement while a mouse button is held.
	// When several buttons are held the lowest button code wins.
	//
	// Parameters:
	//   - callback: function receiving the held button and the cursor movement in pixels
	SetDragCallback(callback func(button uint32, dx, dy float32))

	// SetTitle replaces the title bar text.
	//
	// Parameters:
	//   - title: the new title
	SetTitle(title string)

	// SurfaceDescriptor returns a wgpu.SurfaceDescriptor for the platform window, created by the
	// wgpuglfw bridge.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the surface descriptor, or nil if the window is not initialized
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// IsRunning reports whether the window is still open.
	IsRunning() bool

	// Close destroys the window and releases platform resources.
	//
	// Returns:
	//   - error: error if the window was never initialized
	Close() error

	// ProcessMessages runs the message loop until the window closes, calling the update callback
	// after every poll.
	ProcessMessages()

	// Width returns the framebuffer width in pixels.
	Width() int

	// Height returns the framebuffer height in pixels.
	Height() int
}

// sizeLimits bounds interactive resizing. Zero fields are unbounded.
type sizeLimits struct {
	minWidth, minHeight int
	maxWidth, maxHeight int
}

type engineWindow struct {
	title  string
	limits sizeLimits

	// framebuffer size in pixels
	width  int
	height int

	// internalWindow holds the platform window (*glfwWindow).
	internalWindow any

	onUpdate  func()
	onResize  func(width, height int)
	onScroll  func(delta float32)
	onKeyDown func(keyCode uint32)
	onKeyUp   func(keyCode uint32)
	onDrag    func(button uint32, dx, dy float32)

	// drag state: held button mask and the last cursor position
	buttons    uint32
	lastX      float64
	lastY      float64
	haveCursor bool
}

var _ Window = &engineWindow{}

// NewWindow creates and shows the platform window.
// Applies default values first, then each option in order.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the open window
func NewWindow(options ...WindowBuilderOption) Window {
	w := &engineWindow{
		title:  "oxy-galaxy",
		limits: sizeLimits{minWidth: 320, minHeight: 200},
		width:  1280,
		height: 720,
	}
	for _, opt := range options {
		opt(w)
	}
	if err := newPlatformWindow(w); err != nil {
		panic(fmt.Sprintf("failed to create platform window: %v", err))
	}
	return w
}

func (w *engineWindow) SetUpdateCallback(callback func()) { w.onUpdate = callback }
func (w *engineWindow) SetResizeCallback(callback func(width, height int)) { w.onResize = callback }
func (w *engineWindow) SetScrollCallback(callback func(delta float32)) { w.onScroll = callback }
func (w *engineWindow) SetKeyDownCallback(callback func(keyCode uint32)) { w.onKeyDown = callback }
func (w *engineWindow) SetKeyUpCallback(callback func(keyCode uint32)) { w.onKeyUp = callback }
func (w *engineWindow) SetDragCallback(callback func(button uint32, dx, dy float32)) { w.onDrag = callback }

func (w *engineWindow) SetTitle(title string) {
	w.title = title
	platformSetTitle(w, title)
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return platformGetSurfaceDescriptor(w)
}

func (w *engineWindow) IsRunning() bool {
	return platformIsRunningCheck(w)
}

func (w *engineWindow) Close() error {
	return platformCloseWindow(w)
}

func (w *engineWindow) ProcessMessages() {
	for w.IsRunning() {
		if !platformProcessMessages(w) {
			break
		}
		if w.onUpdate != nil {
			w.onUpdate()
		}
		runtime.Gosched()
	}
}

func (w *engineWindow) Width() int  { return w.width }
func (w *engineWindow) Height() int { return w.height }

// buttonChanged updates the held button mask. The cursor anchor is reset on every change so a
// new drag never starts with a jump.
func (w *engineWindow) buttonChanged(button uint32, pressed bool) {
	if button >= 32 {
		return
	}
	if pressed {
		w.buttons |= 1 << button
	} else {
		w.buttons &^= 1 << button
	}
	w.haveCursor = false
}

// cursorMoved reports a drag for the lowest held button.
func (w *engineWindow) cursorMoved(x, y float64) {
	dx, dy := x-w.lastX, y-w.lastY
	had := w.haveCursor
	w.lastX, w.lastY, w.haveCursor = x, y, true
	if !had || w.buttons == 0 || w.onDrag == nil {
		return
	}
	for b := uint32(0); b < 32; b++ {
		if w.buttons&(1<<b) != 0 {
			w.onDrag(b, float32(dx), float32(dy))
			return
		}
	}
}
