package camera

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-galaxy/common"
)

// cameraControllerImpl is the single implementation of CameraController.
// Arrows orbit, +/- dolly and WASD pan. Left drag orbits, middle drag pans.
type cameraControllerImpl struct {
	mu *sync.Mutex

	camera Camera
	held   map[uint32]bool

	orbitSpeed  float32 // radians per second
	zoomSpeed   float32 // dolly amount per second
	scrollSpeed float32 // dolly amount per scroll unit
	panSpeed    float32 // half-heights per second
	dragOrbit   float32 // radians per pixel
	dragPan     float32 // half-heights per pixel
}

// Compile-time interface compliance check
var _ CameraController = &cameraControllerImpl{}

// NewCameraController creates a controller driving the given camera.
//
// Parameters:
//   - cam: the camera to drive
//   - options: functional options to configure the controller
//
// Returns:
//   - CameraController: the newly created controller
func NewCameraController(cam Camera, options ...CameraControllerOption) CameraController {
	if cam == nil {
		panic("camera: controller requires a camera")
	}
	cc := &cameraControllerImpl{
		mu:          &sync.Mutex{},
		camera:      cam,
		held:        make(map[uint32]bool),
		orbitSpeed:  1.2,
		zoomSpeed:   1.5,
		scrollSpeed: 0.1,
		panSpeed:    0.8,
		dragOrbit:   0.005,
		dragPan:     0.003,
	}
	for _, option := range options {
		option(cc)
	}
	return cc
}

func (cc *cameraControllerImpl) KeyDown(key uint32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.held[key] = true
}

func (cc *cameraControllerImpl) KeyUp(key uint32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	delete(cc.held, key)
}

func (cc *cameraControllerImpl) Scroll(delta float32) {
	cc.camera.Dolly(delta * cc.scrollSpeed)
}

func (cc *cameraControllerImpl) Drag(button uint32, dx, dy float32) {
	switch button {
	case common.MouseLeft:
		cc.camera.Orbit(-dx*cc.dragOrbit, dy*cc.dragOrbit)
	case common.MouseMiddle:
		cc.camera.Pan(-dx*cc.dragPan, dy*cc.dragPan)
	}
}

func (cc *cameraControllerImpl) Update(dt float32) {
	cc.mu.Lock()
	azimuth := cc.axis(common.KeyRight, common.KeyLeft) * cc.orbitSpeed * dt
	elevation := cc.axis(common.KeyUp, common.KeyDown) * cc.orbitSpeed * dt
	dolly := cc.axis(common.KeyEqual, common.KeyMinus) * cc.zoomSpeed * dt
	panX := cc.axis(common.KeyD, common.KeyA) * cc.panSpeed * dt
	panY := cc.axis(common.KeyW, common.KeyS) * cc.panSpeed * dt
	cc.mu.Unlock()

	if azimuth != 0 || elevation != 0 {
		cc.camera.Orbit(azimuth, elevation)
	}
	if dolly != 0 {
		cc.camera.Dolly(dolly)
	}
	if panX != 0 || panY != 0 {
		cc.camera.Pan(panX, panY)
	}
}

func (cc *cameraControllerImpl) Camera() Camera {
	return cc.camera
}

// axis returns +1, -1 or 0 depending on which of the two keys is held.
// Caller must hold the mutex.
func (cc *cameraControllerImpl) axis(positive, negative uint32) float32 {
	var v float32
	if cc.held[positive] {
		v++
	}
	if cc.held[negative] {
		v--
	}
	return v
}
