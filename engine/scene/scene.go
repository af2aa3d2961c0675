package scene

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-galaxy/common"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/camera"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/galaxy"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/renderer"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/renderer/resource"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/sim"
	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"
)

// Scene owns the per-frame state every GPU pass reads: the camera and the two shared
// uniforms (camera and galaxy parameters). Passes borrow the uniform buffers and register
// their bind groups as dependents of the scene's slots.
type Scene interface {
	// Camera returns the scene's camera.
	Camera() camera.Camera

	// SetCamera replaces the scene's camera.
	//
	// Parameters:
	//   - cam: the new camera
	SetCamera(cam camera.Camera)

	// Renderer returns the scene's renderer.
	Renderer() renderer.Renderer

	// Prepare ensures both uniform buffers exist and writes whichever value changed.
	//
	// Parameters:
	//   - params: the simulation parameters
	//   - time: the simulated time in years
	//   - viewport: the canvas size
	//
	// Returns:
	//   - camera.Pose: the pose the camera uniform was built from
	//   - error: an error if a buffer could not be created
	Prepare(params *sim.Params, time float32, viewport common.Extent) (camera.Pose, error)

	// CameraBuffer returns the camera uniform buffer, or nil before Prepare.
	CameraBuffer() *wgpu.Buffer

	// GalaxyBuffer returns the galaxy parameter uniform buffer, or nil before Prepare.
	GalaxyBuffer() *wgpu.Buffer

	// CameraSlot returns the cache node of the camera uniform for dependency registration.
	CameraSlot() resource.Node

	// GalaxySlot returns the cache node of the galaxy uniform for dependency registration.
	GalaxySlot() resource.Node

	// Sized returns the slots counted in the VRAM estimate.
	Sized() []resource.Sized

	// Release destroys both buffers.
	Release()
}

// scene is the implementation of the Scene interface.
type scene struct {
	mu       sync.Mutex
	camera   camera.Camera
	renderer renderer.Renderer
	logger   *zap.Logger

	cameraBuffer *resource.Slot[uint64, *wgpu.Buffer]
	galaxyBuffer *resource.Slot[uint64, *wgpu.Buffer]

	cameraUniform resource.Uniform[camera.GPUCameraUniform]
	galaxyUniform resource.Uniform[galaxy.GPUGalaxyParams]
}

var _ Scene = &scene{}

// NewScene creates a Scene drawing with r.
// Panics if r is nil.
//
// Parameters:
//   - r: the renderer creating the uniform buffers
//   - options: optional SceneBuilderOption values
//
// Returns:
//   - Scene: the new scene
func NewScene(r renderer.Renderer, options ...SceneBuilderOption) Scene {
	if r == nil {
		panic("scene: NewScene requires a renderer")
	}
	s := &scene{
		renderer: r,
		logger:   zap.NewNop(),
	}
	for _, opt := range options {
		opt(s)
	}
	if s.camera == nil {
		s.camera = camera.NewCamera()
	}
	usage := wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst
	s.cameraBuffer = renderer.NewBufferSlot(r, "Camera Uniform", usage)
	s.galaxyBuffer = renderer.NewBufferSlot(r, "Galaxy Uniform", usage)
	return s
}

func (s *scene) Camera() camera.Camera {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.camera
}

func (s *scene) SetCamera(cam camera.Camera) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.camera = cam
}

func (s *scene) Renderer() renderer.Renderer {
	return s.renderer
}

func (s *scene) Prepare(params *sim.Params, time float32, viewport common.Extent) (camera.Pose, error) {
	cam := s.Camera()
	cam.SetAspect(viewport.Aspect())
	pose := cam.Pose()

	camData := camera.NewGPUCameraUniform(pose, time, viewport)
	camBuf, created, err := s.cameraBuffer.Ensure(uint64(camData.Size()))
	if err != nil {
		return pose, err
	}
	if created {
		s.cameraUniform.Reset()
	}
	if s.cameraUniform.Changed(camData) {
		s.renderer.WriteBuffer(camBuf, 0, camData.Marshal())
	}

	galaxyData := galaxy.NewGPUGalaxyParams(params)
	galaxyBuf, created, err := s.galaxyBuffer.Ensure(uint64(galaxyData.Size()))
	if err != nil {
		return pose, err
	}
	if created {
		s.galaxyUniform.Reset()
	}
	if s.galaxyUniform.Changed(galaxyData) {
		s.renderer.WriteBuffer(galaxyBuf, 0, galaxyData.Marshal())
		s.logger.Debug("galaxy uniform written")
	}
	return pose, nil
}

func (s *scene) CameraBuffer() *wgpu.Buffer {
	buf, _ := s.cameraBuffer.Get()
	return buf
}

func (s *scene) GalaxyBuffer() *wgpu.Buffer {
	buf, _ := s.galaxyBuffer.Get()
	return buf
}

func (s *scene) CameraSlot() resource.Node {
	return s.cameraBuffer
}

func (s *scene) GalaxySlot() resource.Node {
	return s.galaxyBuffer
}

func (s *scene) Sized() []resource.Sized {
	return []resource.Sized{s.cameraBuffer, s.galaxyBuffer}
}

func (s *scene) Release() {
	s.cameraBuffer.Release()
	s.galaxyBuffer.Release()
	s.cameraUniform.Reset()
	s.galaxyUniform.Reset()
}
