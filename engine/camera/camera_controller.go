package camera

// CameraController turns held keys, mouse drags and scroll input into camera motion.
// Key state is recorded by KeyDown/KeyUp and applied once per frame by Update, so motion speed
// does not depend on the keyboard repeat rate.
type CameraController interface {
	// KeyDown records a pressed key.
	//
	// Parameters:
	//   - key: the virtual key code (see common key codes)
	KeyDown(key uint32)

	// KeyUp records a released key.
	//
	// Parameters:
	//   - key: the virtual key code
	KeyUp(key uint32)

	// Scroll dollies the camera immediately.
	//
	// Parameters:
	//   - delta: scroll delta, positive zooms in
	Scroll(delta float32)

	// Drag applies a mouse drag immediately. The left button orbits and the middle button pans;
	// other buttons are ignored.
	//
	// Parameters:
	//   - button: the mouse button (see common mouse button codes)
	//   - dx: horizontal cursor movement in pixels, positive to the right
	//   - dy: vertical cursor movement in pixels, positive downward
	Drag(button uint32, dx, dy float32)

	// Update applies held keys for a frame lasting dt seconds.
	//
	// Parameters:
	//   - dt: elapsed wall-clock seconds
	Update(dt float32)

	// Camera returns the controlled camera.
	//
	// Returns:
	//   - Camera: the camera
	Camera() Camera
}
