package camera

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-galaxy/common"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectionDepthRange(t *testing.T) {
	pose := DefaultPose()
	proj := pose.Projection()

	near := proj.Mul4x1(mgl32.Vec4{0, 0, -pose.Near, 1})
	far := proj.Mul4x1(mgl32.Vec4{0, 0, -pose.Far, 1})
	assert.InDelta(t, 0, near.Z()/near.W(), 1e-4)
	assert.InDelta(t, 1, far.Z()/far.W(), 1e-4)
}

func TestTargetProjectsToCentre(t *testing.T) {
	pose := DefaultPose()
	pose.Target = mgl32.Vec3{5, 0, -3}
	clip := pose.ViewProj().Mul4x1(pose.Target.Vec4(1))
	require.Greater(t, clip.W(), float32(0))
	assert.InDelta(t, 0, clip.X()/clip.W(), 1e-5)
	assert.InDelta(t, 0, clip.Y()/clip.W(), 1e-5)
}

func TestAxesAreOrthonormal(t *testing.T) {
	pose := DefaultPose()
	pose.Azimuth = 1.1
	right, up, forward := pose.Axes()
	assert.InDelta(t, 1, right.Len(), 1e-5)
	assert.InDelta(t, 1, up.Len(), 1e-5)
	assert.InDelta(t, 0, right.Dot(up), 1e-5)
	assert.InDelta(t, 0, right.Dot(forward), 1e-5)
	assert.InDelta(t, 0, right.Y(), 1e-6)
}

func TestRightAxisMapsToScreenRight(t *testing.T) {
	pose := DefaultPose()
	right, up, _ := pose.Axes()
	vp := pose.ViewProj()

	r := vp.Mul4x1(right.Vec4(1))
	u := vp.Mul4x1(up.Vec4(1))
	assert.Greater(t, r.X()/r.W(), float32(0))
	assert.Greater(t, u.Y()/u.W(), float32(0))
}

func TestCameraClampsDistanceAndElevation(t *testing.T) {
	cam := NewCamera(WithDistanceBounds(10, 100))
	cam.Dolly(50)
	assert.Equal(t, float32(10), cam.Pose().Distance)
	cam.Dolly(-50)
	assert.Equal(t, float32(100), cam.Pose().Distance)

	cam.Orbit(0, 10)
	assert.InDelta(t, mgl32.DegToRad(89), cam.Pose().Elevation, 1e-6)
}

func TestPanKeepsOrientation(t *testing.T) {
	cam := NewCamera()
	before := cam.Pose()
	cam.Pan(0.5, -0.25)
	after := cam.Pose()

	assert.True(t, before.SameOrientation(after))
	assert.NotEqual(t, before.Target, after.Target)

	right, _, _ := before.Axes()
	_, halfHeight := before.HalfExtent()
	moved := after.Target.Sub(before.Target)
	assert.InDelta(t, 0.5*halfHeight, moved.Dot(right), 1e-3)
}

func TestControllerAppliesHeldKeys(t *testing.T) {
	cam := NewCamera()
	cc := NewCameraController(cam, WithOrbitSpeed(1))
	start := cam.Pose()

	cc.KeyDown(common.KeyRight)
	cc.Update(0.5)
	assert.InDelta(t, start.Azimuth+0.5, cam.Pose().Azimuth, 1e-5)

	cc.KeyUp(common.KeyRight)
	cc.Update(0.5)
	assert.InDelta(t, start.Azimuth+0.5, cam.Pose().Azimuth, 1e-5)

	cc.KeyDown(common.KeyLeft)
	cc.KeyDown(common.KeyRight)
	cc.Update(1)
	assert.InDelta(t, start.Azimuth+0.5, cam.Pose().Azimuth, 1e-5)
}

func TestControllerDrag(t *testing.T) {
	cam := NewCamera()
	cc := NewCameraController(cam, WithDragSensitivity(0.01, 0.01))
	start := cam.Pose()

	cc.Drag(common.MouseLeft, 10, 10)
	orbited := cam.Pose()
	assert.InDelta(t, start.Azimuth-0.1, orbited.Azimuth, 1e-5)
	assert.InDelta(t, start.Elevation+0.1, orbited.Elevation, 1e-5)
	assert.Equal(t, start.Target, orbited.Target)

	cc.Drag(common.MouseRight, 50, 50)
	assert.Equal(t, orbited, cam.Pose())

	cc.Drag(common.MouseMiddle, 20, 0)
	panned := cam.Pose()
	assert.True(t, orbited.SameOrientation(panned))
	right, _, _ := orbited.Axes()
	_, halfHeight := orbited.HalfExtent()
	assert.InDelta(t, -0.2*halfHeight, panned.Target.Sub(orbited.Target).Dot(right), 1e-3)
}

func TestGPUCameraUniformLayout(t *testing.T) {
	u := NewGPUCameraUniform(DefaultPose(), 42, common.Extent{Width: 800, Height: 600})
	assert.Equal(t, 112, u.Size())

	buf := u.Marshal()
	require.Len(t, buf, 112)
	assert.Equal(t, float32(42), u.Time)
	assert.Equal(t, [2]float32{800, 600}, u.Viewport)
}
