package camera

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// depthFix maps the OpenGL clip-space depth range [-1, 1] produced by mgl32.Perspective onto the
// [0, 1] range WebGPU expects. Column-major.
var depthFix = mgl32.Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 0.5, 0,
	0, 0, 0.5, 1,
}

// Pose is an immutable snapshot of the orbit camera. The frame orchestrator keeps the pose of the
// previous frame to decide between reprojecting history and resetting it.
type Pose struct {
	Azimuth   float32    // radians around +Y, 0 looks down -Z from +Z
	Elevation float32    // radians above the disk plane
	Distance  float32    // distance from Target along the view direction
	Target    mgl32.Vec3 // orbit pivot
	Fov       float32    // vertical field of view in radians
	Aspect    float32    // width / height
	Near      float32
	Far       float32
}

// DefaultPose looks at the galactic centre from 40 degrees above the disk.
func DefaultPose() Pose {
	return Pose{
		Azimuth:   0,
		Elevation: mgl32.DegToRad(40),
		Distance:  120,
		Fov:       mgl32.DegToRad(55),
		Aspect:    1,
		Near:      0.1,
		Far:       5000,
	}
}

// Position returns the world-space eye position.
func (p Pose) Position() mgl32.Vec3 {
	ce, se := math32.Cos(p.Elevation), math32.Sin(p.Elevation)
	ca, sa := math32.Cos(p.Azimuth), math32.Sin(p.Azimuth)
	return p.Target.Add(mgl32.Vec3{ce * sa, se, ce * ca}.Mul(p.Distance))
}

// Axes returns the camera's world-space right, up and forward unit vectors, consistent with the
// view matrix.
//
// Returns:
//   - right: the screen +X direction
//   - up: the screen +Y direction
//   - forward: the view direction
func (p Pose) Axes() (right, up, forward mgl32.Vec3) {
	forward = p.Target.Sub(p.Position())
	if forward.Len() < 1e-8 {
		return mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}, mgl32.Vec3{0, 0, -1}
	}
	forward = forward.Normalize()
	right = forward.Cross(mgl32.Vec3{0, 1, 0})
	if right.Len() < 1e-8 {
		right = mgl32.Vec3{1, 0, 0}
	}
	right = right.Normalize()
	up = right.Cross(forward)
	return right, up, forward
}

// View returns the world-to-view matrix.
func (p Pose) View() mgl32.Mat4 {
	return mgl32.LookAtV(p.Position(), p.Target, mgl32.Vec3{0, 1, 0})
}

// Projection returns the perspective matrix with WebGPU's [0, 1] depth range.
func (p Pose) Projection() mgl32.Mat4 {
	aspect := p.Aspect
	if aspect <= 0 {
		aspect = 1
	}
	return depthFix.Mul4(mgl32.Perspective(p.Fov, aspect, p.Near, p.Far))
}

// ViewProj returns Projection * View.
func (p Pose) ViewProj() mgl32.Mat4 {
	return p.Projection().Mul4(p.View())
}

// ProjScale returns the larger of the projection's x and y focal scales. Multiplying a
// world-space radius by ProjScale and dividing by clip w gives its NDC radius.
func (p Pose) ProjScale() float32 {
	proj := p.Projection()
	return math32.Max(proj.At(0, 0), proj.At(1, 1))
}

// HalfExtent returns the half-width and half-height, in world units, of the view frustum cut at the
// target distance.
func (p Pose) HalfExtent() (halfWidth, halfHeight float32) {
	halfHeight = p.Distance * math32.Tan(p.Fov/2)
	aspect := p.Aspect
	if aspect <= 0 {
		aspect = 1
	}
	return halfHeight * aspect, halfHeight
}

// SameOrientation reports whether two poses look in the same direction through the same lens.
// Differences in dolly distance or pan are not orientation changes.
func (p Pose) SameOrientation(o Pose) bool {
	return p.Azimuth == o.Azimuth && p.Elevation == o.Elevation && p.Fov == o.Fov
}
