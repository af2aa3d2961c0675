package temporal

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-galaxy/common"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/camera"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/sim"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShadersCompile(t *testing.T) {
	for _, s := range Shaders() {
		_, err := shader.Validate(s)
		if errors.Is(err, shader.ErrValidatorUnsupported) {
			t.Logf("skipping %s: %v", s.Key(), err)
			continue
		}
		require.NoError(t, err, s.Key())
	}
}

func TestDenoiseLayout(t *testing.T) {
	fs := Shaders()[1]
	desc := fs.BindGroupLayoutDescriptor(0)
	require.Len(t, desc.Entries, 4)
	assert.Equal(t, uint64(48), desc.Entries[3].Buffer.MinBindingSize)

	for key, want := range map[shader.AnnotationArg]int{
		shader.AnnotationArgSourceTexture:  0,
		shader.AnnotationArgHistoryTexture: 1,
		shader.AnnotationArgLinearSampler:  2,
		shader.AnnotationArgPassParams:     3,
	} {
		_, binding, ok := fs.Binding(key)
		require.True(t, ok, key)
		assert.Equal(t, want, binding, key)
	}
}

func TestResetWindowForcesExactlyN(t *testing.T) {
	for _, n := range []uint32{1, 4, 9} {
		w := NewResetWindow(n)
		assert.False(t, w.Active())

		w.Request("test")
		forced := 0
		for w.Advance() {
			forced++
		}
		assert.Equal(t, int(n), forced)
		assert.False(t, w.Active())
		assert.Equal(t, "test", w.Reason())
	}
}

func TestResetWindowRequestRearms(t *testing.T) {
	w := NewResetWindow(3)
	w.Request("resize")
	w.Advance()
	w.Advance()
	require.Equal(t, uint32(1), w.Remaining())

	w.Request("preset")
	assert.Equal(t, uint32(3), w.Remaining())
}

func TestResetWindowNeverEmpty(t *testing.T) {
	w := NewResetWindow(0)
	w.Request("resize")
	assert.True(t, w.Advance())
	assert.False(t, w.Advance())
}

func TestReprojectionIdentity(t *testing.T) {
	pose := camera.DefaultPose()
	r := NewReprojection(pose, pose)
	assert.Equal(t, [2]float32{1, 1}, r.Scale)
	assert.Equal(t, [2]float32{0, 0}, r.Offset)
}

func TestReprojectionDolly(t *testing.T) {
	prev := camera.DefaultPose()
	cur := prev
	cur.Distance = prev.Distance / 2

	r := NewReprojection(prev, cur)
	assert.InDelta(t, 0.5, r.Scale[0], 1e-6)
	assert.InDelta(t, 0.5, r.Scale[1], 1e-6)

	u, v := r.Apply(0.5, 0.5)
	assert.InDelta(t, 0.5, u, 1e-6, "dolly zooms about the centre")
	assert.InDelta(t, 0.5, v, 1e-6)
}

// project returns the uv of a world point under pose.
func project(pose camera.Pose, p mgl32.Vec3) (float32, float32) {
	clip := pose.ViewProj().Mul4x1(p.Vec4(1))
	return 0.5 + 0.5*clip.X()/clip.W(), 0.5 - 0.5*clip.Y()/clip.W()
}

func TestReprojectionMatchesProjection(t *testing.T) {
	prev := camera.DefaultPose()
	prev.Aspect = 16.0 / 9.0

	right, up, _ := prev.Axes()
	cur := prev
	cur.Target = prev.Target.Add(right.Mul(4)).Add(up.Mul(-2))
	cur.Distance = prev.Distance * 0.8

	r := NewReprojection(prev, cur)
	for _, offset := range [][2]float32{{0, 0}, {10, 5}, {-20, 8}, {15, -12}} {
		world := cur.Target.Add(right.Mul(offset[0])).Add(up.Mul(offset[1]))
		cu, cv := project(cur, world)
		pu, pv := project(prev, world)
		hu, hv := r.Apply(cu, cv)
		assert.InDelta(t, pu, hu, 1e-3, "u for %v", offset)
		assert.InDelta(t, pv, hv, 1e-3, "v for %v", offset)
	}
}

func TestDenoiseParamsMarshal(t *testing.T) {
	params := sim.DefaultParams()
	g := NewGPUDenoiseParams(&params, common.Extent{Width: 200, Height: 100}, Identity, true)
	require.Equal(t, 48, g.Size())
	assert.Equal(t, [2]float32{1.0 / 200, 1.0 / 100}, g.Texel)
	assert.Equal(t, uint32(1), g.ForceCurrent)
	assert.Equal(t, uint32(1), g.Enabled)
	assert.Len(t, g.Marshal(), 48)
}
