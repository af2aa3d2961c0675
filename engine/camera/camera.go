package camera

import (
	"sync"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

type cameraImpl struct {
	mu *sync.Mutex

	pose Pose

	minDistance  float32
	maxDistance  float32
	minElevation float32
	maxElevation float32
}

// Camera is an orbit camera around a movable pivot. Rotation changes azimuth and elevation,
// dolly changes the distance, and pan slides the pivot in the screen plane.
type Camera interface {
	// Pose returns a snapshot of the current pose.
	//
	// Returns:
	//   - Pose: the current pose
	Pose() Pose

	// SetPose replaces the pose, clamping distance and elevation to the configured bounds.
	//
	// Parameters:
	//   - pose: the new pose
	SetPose(pose Pose)

	// Orbit rotates around the pivot.
	//
	// Parameters:
	//   - dAzimuth: azimuth change in radians
	//   - dElevation: elevation change in radians
	Orbit(dAzimuth, dElevation float32)

	// Dolly scales the distance to the pivot by exp(-amount). Positive amounts move closer.
	//
	// Parameters:
	//   - amount: the dolly amount
	Dolly(amount float32)

	// Pan moves the pivot along the screen axes. Offsets are fractions of the visible half-height,
	// so panning feels the same at every distance.
	//
	// Parameters:
	//   - dx: offset along the right axis
	//   - dy: offset along the up axis
	Pan(dx, dy float32)

	// SetAspect sets the aspect ratio (width / height).
	//
	// Parameters:
	//   - aspect: the aspect ratio
	SetAspect(aspect float32)
}

var _ Camera = &cameraImpl{}

// NewCamera creates a new Camera starting at DefaultPose.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:           &sync.Mutex{},
		pose:         DefaultPose(),
		minDistance:  2,
		maxDistance:  1500,
		minElevation: mgl32.DegToRad(-89),
		maxElevation: mgl32.DegToRad(89),
	}
	for _, option := range options {
		option(c)
	}
	c.clamp()
	return c
}

func (c *cameraImpl) Pose() Pose {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pose
}

func (c *cameraImpl) SetPose(pose Pose) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pose = pose
	c.clamp()
}

func (c *cameraImpl) Orbit(dAzimuth, dElevation float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pose.Azimuth = math32.Mod(c.pose.Azimuth+dAzimuth, 2*math32.Pi)
	c.pose.Elevation += dElevation
	c.clamp()
}

func (c *cameraImpl) Dolly(amount float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pose.Distance *= math32.Exp(-amount)
	c.clamp()
}

func (c *cameraImpl) Pan(dx, dy float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	right, up, _ := c.pose.Axes()
	_, halfHeight := c.pose.HalfExtent()
	c.pose.Target = c.pose.Target.Add(right.Mul(dx * halfHeight)).Add(up.Mul(dy * halfHeight))
}

func (c *cameraImpl) SetAspect(aspect float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if aspect > 0 {
		c.pose.Aspect = aspect
	}
}

// clamp keeps distance and elevation inside their bounds.
// Caller must hold the mutex.
func (c *cameraImpl) clamp() {
	c.pose.Distance = math32.Min(math32.Max(c.pose.Distance, c.minDistance), c.maxDistance)
	c.pose.Elevation = math32.Min(math32.Max(c.pose.Elevation, c.minElevation), c.maxElevation)
}
