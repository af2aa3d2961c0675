package galaxy

import (
	"context"
	"testing"

	"github.com/Carmen-Shannon/oxy-galaxy/engine/sim"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testView looks at the origin from above the disk at a 40 degree elevation.
func testView(distance float32) *View {
	proj := mgl32.Perspective(mgl32.DegToRad(60), 16.0/9.0, 0.1, 10000)
	depthFix := mgl32.Mat4{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 0.5, 0, 0, 0, 0.5, 1}
	elev := mgl32.DegToRad(40)
	eye := mgl32.Vec3{0, distance * math32.Sin(elev), distance * math32.Cos(elev)}
	view := mgl32.LookAtV(eye, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	return &View{
		ViewProj:  depthFix.Mul4(proj).Mul4(view),
		ProjScale: math32.Max(proj.At(0, 0), proj.At(1, 1)),
	}
}

func TestRandRange(t *testing.T) {
	for i := uint32(0); i < 10000; i++ {
		for s := streamArchetype; s <= streamJitter; s++ {
			v := Rand(i, s)
			require.GreaterOrEqual(t, v, float32(0))
			require.Less(t, v, float32(1))
		}
	}
	assert.NotEqual(t, Rand(7, streamPhase), Rand(7, streamRadius), "streams must be independent")
}

func TestCensusDefaultCounts(t *testing.T) {
	params := sim.DefaultParams()
	report, err := Census(context.Background(), params, CensusOptions{})
	require.NoError(t, err)

	assert.Equal(t, uint64(1_017_000), report.Total)
	assert.Equal(t, uint64(1_745), report.Stars)
	assert.Equal(t, uint64(1_017_000-1_745), report.Dust)
	assert.Equal(t, report.Stars, report.ByArchetype[ArchetypeBright])

	assert.InDelta(t, 0.25, report.Share(ArchetypeBulge), 0.01)
	assert.InDelta(t, 0.60, report.Share(ArchetypeDisk), 0.01)
	assert.InDelta(t, 0.15, report.Share(ArchetypeBackground), 0.01)
}

func TestCensusBrightStarsClampedToTotal(t *testing.T) {
	params := sim.DefaultParams()
	params.TotalParticles = 1000
	params.BrightStars = 5000
	report, err := Census(context.Background(), params, CensusOptions{Chunk: 300})
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), report.Total)
	assert.Equal(t, uint64(1000), report.Stars)
	assert.Zero(t, report.Dust)
}

func TestCensusZeroParticles(t *testing.T) {
	params := sim.DefaultParams()
	params.TotalParticles = 0
	report, err := Census(context.Background(), params, CensusOptions{})
	require.NoError(t, err)
	assert.Zero(t, report.Total)
}

func TestCensusCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Census(ctx, sim.DefaultParams(), CensusOptions{Chunk: 1 << 16})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestZeroDensitiesFallBackToDisk(t *testing.T) {
	params := sim.DefaultParams()
	params.BulgeDensity, params.DiskDensity, params.BackgroundDensity = 0, 0, 0
	for i := params.BrightStars; i < params.BrightStars+2000; i++ {
		p := Generate(i, &params)
		require.Equal(t, ArchetypeDisk, p.Archetype)
	}
}

func TestGenerateDeterministic(t *testing.T) {
	params := sim.DefaultParams()
	for _, i := range []uint32{0, 1, 1744, 1745, 500_000, 1_016_999} {
		a := Generate(i, &params)
		b := Generate(i, &params)
		assert.Equal(t, a, b)

		pa := Position(&a, &params, 12345.5)
		pb := Position(&b, &params, 12345.5)
		assert.Equal(t, math32.Float32bits(pa.X()), math32.Float32bits(pb.X()))
		assert.Equal(t, math32.Float32bits(pa.Y()), math32.Float32bits(pb.Y()))
		assert.Equal(t, math32.Float32bits(pa.Z()), math32.Float32bits(pb.Z()))
	}
}

func TestGenerateRanges(t *testing.T) {
	params := sim.DefaultParams()
	for i := uint32(0); i < 20000; i++ {
		p := Generate(i, &params)
		require.GreaterOrEqual(t, p.RadiusA, float32(0))
		require.LessOrEqual(t, p.RadiusB, p.RadiusA+1e-4)
		require.LessOrEqual(t, p.RadiusA, params.GalaxyRadius*params.BackgroundExtent+1e-3)
		require.GreaterOrEqual(t, p.Temperature, float32(1000))
		require.GreaterOrEqual(t, p.Magnitude, float32(0))
		require.LessOrEqual(t, p.Magnitude, float32(1))
		require.Less(t, p.Phase, float32(360))
		if p.Archetype == ArchetypeBright {
			require.GreaterOrEqual(t, p.Temperature, params.BrightTempMin)
			require.LessOrEqual(t, p.Temperature, params.BrightTempMax)
		}
	}
}

func TestEccentricityTapersAtCentreAndEdge(t *testing.T) {
	params := sim.DefaultParams()
	for i := uint32(0); i < 20000; i++ {
		p := Generate(i, &params)
		x := p.RadiusA / params.GalaxyRadius
		if x <= 0 || x >= 1 {
			require.InDelta(t, p.RadiusA, p.RadiusB, 1e-4, "no eccentricity outside the disk, x=%v", x)
		}
	}
}

func TestPositionAtTimeZeroOnEllipse(t *testing.T) {
	params := sim.DefaultParams()
	p := Particle{Phase: 0, RadiusA: 10, RadiusB: 5, Height: 0.3}
	pos := Position(&p, &params, 0)
	assert.InDelta(t, 10, pos.X(), 1e-4)
	assert.InDelta(t, 0.3, pos.Y(), 1e-6)
	assert.InDelta(t, 0, pos.Z(), 1e-4)

	p.Phase = 90
	pos = Position(&p, &params, 0)
	assert.InDelta(t, 0, pos.X(), 1e-4)
	assert.InDelta(t, 5, pos.Z(), 1e-4)
}

func TestDensityWaveScalesRadius(t *testing.T) {
	params := sim.DefaultParams()
	params.WaveCount = 2
	params.WaveStrength = 0.5
	p := Particle{RadiusA: 10, RadiusB: 10}
	pos := Position(&p, &params, 0)
	// theta = 0 so the wave factor is 1 + 0.5*cos(0).
	assert.InDelta(t, 15, pos.X(), 1e-4)
}

func TestAngularVelocityFallsWithRadius(t *testing.T) {
	params := sim.DefaultParams()
	inner := AngularVelocity(20, &params)
	outer := AngularVelocity(40, &params)
	assert.Greater(t, inner, outer)
	assert.Greater(t, outer, float32(0))
	assert.False(t, math32.IsInf(AngularVelocity(0, &params), 0))
}

func TestVisibleRejectsBehindCamera(t *testing.T) {
	view := testView(100)
	assert.True(t, Visible(mgl32.Vec3{}, 0, view))
	// The camera sits at +z looking towards the origin, so a point far behind it is culled.
	assert.False(t, Visible(mgl32.Vec3{0, 200, 400}, 1, view))
	assert.False(t, Visible(mgl32.Vec3{5000, 0, 0}, 0, view))
}

func TestVisibleFootprintWidensBox(t *testing.T) {
	view := testView(100)
	var edge mgl32.Vec3
	// Walk along +x until the point leaves the unwidened box.
	for x := float32(0); x < 1000; x += 0.5 {
		if !Visible(mgl32.Vec3{x, 0, 0}, 0, view) {
			edge = mgl32.Vec3{x, 0, 0}
			break
		}
	}
	require.NotZero(t, edge.X())
	assert.True(t, Visible(edge, 5, view))
}

func TestCensusVisibleMatchesBruteForce(t *testing.T) {
	params := sim.DefaultParams()
	params.TotalParticles = 40_000
	params.BrightStars = 500
	view := testView(60)
	const when = 250_000.0

	report, err := Census(context.Background(), params, CensusOptions{Workers: 3, Chunk: 7000, View: view, Time: when})
	require.NoError(t, err)

	var brute uint64
	for i := uint32(0); i < params.TotalParticles; i++ {
		if VisibleParticle(i, &params, when, view) {
			brute++
		}
	}
	assert.Equal(t, brute, report.Visible)
	assert.LessOrEqual(t, report.Visible, report.Total)
	assert.Greater(t, report.Visible, uint64(0))
}

func TestDustScale(t *testing.T) {
	assert.InDelta(t, 1, DustScale(1_000_000), 1e-6)
	assert.InDelta(t, 0.5, DustScale(4_000_000), 1e-6)
	assert.False(t, math32.IsInf(DustScale(0), 0))
}

func TestFootprint(t *testing.T) {
	params := sim.DefaultParams()
	star := Particle{Kind: KindStar, Magnitude: 0.5}
	assert.InDelta(t, params.StarSize*0.5*params.SizeVariation, Footprint(&star, &params), 1e-6)
	dust := Particle{Kind: KindDust}
	assert.InDelta(t, params.DustSize*DustScale(params.TotalParticles)*params.DustJitter, Footprint(&dust, &params), 1e-6)
}

func TestBlackbodyColor(t *testing.T) {
	cool := BlackbodyColor(3000)
	hot := BlackbodyColor(25000)
	assert.Greater(t, cool[0], cool[2], "cool stars are red")
	assert.Greater(t, hot[2], hot[0]-0.3, "hot stars are blue-white")
	for _, c := range [][3]float32{cool, hot, BlackbodyColor(0), BlackbodyColor(1e9)} {
		for _, ch := range c {
			assert.GreaterOrEqual(t, ch, float32(0))
			assert.LessOrEqual(t, ch, float32(1))
		}
	}
}

func TestPackRGBA8(t *testing.T) {
	c := [3]float32{1, 0.5, 0}
	packed := PackRGBA8(c)
	assert.Equal(t, uint32(0xFF), packed&0xFF)
	assert.Equal(t, uint32(0xFF), packed>>24)
	back := UnpackRGBA8(packed)
	for i := range c {
		assert.InDelta(t, c[i], back[i], 1.0/255)
	}
}

func TestGPUStructSizes(t *testing.T) {
	var particle GPUParticle
	assert.Equal(t, ParticleStride, particle.Size())
	assert.Len(t, particle.Marshal(), ParticleStride)

	var params GPUGalaxyParams
	assert.Equal(t, 144, params.Size())
	assert.Len(t, params.Marshal(), 144)

	var args GPUDrawIndirectArgs
	assert.Len(t, args.Marshal(), DrawIndirectArgsSize)
}

func TestNewGPUGalaxyParamsClampsBrightStars(t *testing.T) {
	params := sim.DefaultParams()
	params.TotalParticles = 100
	g := NewGPUGalaxyParams(&params)
	assert.Equal(t, uint32(100), g.BrightStars)
	assert.Equal(t, Seed, g.Seed)
	assert.InDelta(t, 1, g.WeightBulge+g.WeightDisk+g.WeightBackground, 1e-6)
}

func TestEstimateBytes(t *testing.T) {
	assert.Equal(t, uint64(10*ParticleStride+10*4+4+DrawIndirectArgsSize), EstimateBytes(10))
}
