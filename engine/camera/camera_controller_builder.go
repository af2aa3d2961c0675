package camera

// CameraControllerOption is a functional option for configuring a CameraController.
type CameraControllerOption func(*cameraControllerImpl)

// WithOrbitSpeed sets the orbit rate for held arrow keys.
//
// Parameters:
//   - speed: radians per second
//
// Returns:
//   - CameraControllerOption: functional option to set the orbit speed
func WithOrbitSpeed(speed float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.orbitSpeed = speed
	}
}

// WithZoomSpeed sets the dolly rate for held +/- keys and for scrolling.
//
// Parameters:
//   - keys: dolly amount per second while a key is held
//   - scroll: dolly amount per scroll unit
//
// Returns:
//   - CameraControllerOption: functional option to set the zoom speeds
func WithZoomSpeed(keys, scroll float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.zoomSpeed = keys
		cc.scrollSpeed = scroll
	}
}

// WithPanSpeed sets the pan rate for held WASD keys.
//
// Parameters:
//   - speed: visible half-heights per second
//
// Returns:
//   - CameraControllerOption: functional option to set the pan speed
func WithPanSpeed(speed float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.panSpeed = speed
	}
}

// WithDragSensitivity sets how far a mouse drag moves the camera.
//
// Parameters:
//   - orbit: radians per pixel for left-button drags
//   - pan: visible half-heights per pixel for middle-button drags
//
// Returns:
//   - CameraControllerOption: functional option to set the drag sensitivity
func WithDragSensitivity(orbit, pan float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.dragOrbit = orbit
		cc.dragPan = pan
	}
}
