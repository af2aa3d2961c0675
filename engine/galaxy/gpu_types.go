package galaxy

import (
	_ "embed"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-galaxy/common"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/sim"
)

// GPUParticleSource is the WGSL definition of the Particle struct.
// Matches GPUParticle layout exactly (40 bytes).
//
//go:embed assets/particle.wgsl
var GPUParticleSource string

// GPUGalaxyParamsSource is the WGSL definition of the GalaxyParams uniform struct.
// Matches GPUGalaxyParams layout exactly (144 bytes).
//
//go:embed assets/galaxy_params.wgsl
var GPUGalaxyParamsSource string

// GPUDrawIndirectArgsSource is the WGSL definition of the DrawIndirectArgs struct.
//
//go:embed assets/draw_indirect_args.wgsl
var GPUDrawIndirectArgsSource string

// GalaxyFunctionsSource holds the WGSL hash, generation and orbit functions shared by the
// generator, the culler and the star rasterizer. It references Particle and GalaxyParams, so
// shaders including it must also include both structs.
//
//go:embed assets/galaxy.wgsl
var GalaxyFunctionsSource string

// ParticleStride is the size of one GPUParticle in bytes.
const ParticleStride = 40

// DrawIndirectArgsSize is the size of the non-indexed indirect draw arguments in bytes.
const DrawIndirectArgsSize = 16

// VerticesPerParticle is the billboard vertex count: two triangles.
const VerticesPerParticle = 6

// GPUParticle is the GPU representation of a Particle. The particle buffer is written only by the
// generator compute shader, so the CPU side uses this type for size math and tests.
type GPUParticle struct {
	Phase       float32 // offset  0
	AngVel      float32 // offset  4
	Tilt        float32 // offset  8
	RadiusA     float32 // offset 12
	RadiusB     float32 // offset 16
	Temperature float32 // offset 20
	Magnitude   float32 // offset 24
	Kind        uint32  // offset 28
	Height      float32 // offset 32
	Color       uint32  // offset 36: RGBA8, red in the low byte
}

// NewGPUParticle converts a CPU particle to its GPU layout.
func NewGPUParticle(p *Particle) GPUParticle {
	return GPUParticle{
		Phase:       p.Phase,
		AngVel:      p.AngVel,
		Tilt:        p.Tilt,
		RadiusA:     p.RadiusA,
		RadiusB:     p.RadiusB,
		Temperature: p.Temperature,
		Magnitude:   p.Magnitude,
		Kind:        uint32(p.Kind),
		Height:      p.Height,
		Color:       p.Color,
	}
}

// Size returns the size of the GPUParticle struct in bytes.
func (g *GPUParticle) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the particle for upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUParticle) Marshal() []byte {
	buf := make([]byte, g.Size())
	common.PutFloat32(buf, 0, g.Phase)
	common.PutFloat32(buf, 4, g.AngVel)
	common.PutFloat32(buf, 8, g.Tilt)
	common.PutFloat32(buf, 12, g.RadiusA)
	common.PutFloat32(buf, 16, g.RadiusB)
	common.PutFloat32(buf, 20, g.Temperature)
	common.PutFloat32(buf, 24, g.Magnitude)
	common.PutUint32(buf, 28, g.Kind)
	common.PutFloat32(buf, 32, g.Height)
	common.PutUint32(buf, 36, g.Color)
	return buf
}

// GPUGalaxyParams is the uniform shared by the generator, culler and rasterizer. It carries the
// shape and particle size parameters; tone, bloom and denoise parameters live in their own passes.
// Size: 144 bytes.
type GPUGalaxyParams struct {
	TotalParticles        uint32
	BrightStars           uint32
	GalaxyRadius          float32
	BulgeRadius           float32
	WeightBulge           float32
	WeightDisk            float32
	WeightBackground      float32
	DiskScaleLength       float32
	BackgroundExtent      float32
	DiskThickness         float32
	SpiralPeak            float32
	SpiralWidth           float32
	MaxEccentricity       float32
	ArmTwist              float32
	RotationVelocity      float32
	RotationScale         float32
	WaveCount             float32
	WaveStrength          float32
	BaseTemperature       float32
	TemperatureGradient   float32
	BrightTempMin         float32
	BrightTempMax         float32
	EdgeFade              float32
	CoreSuppression       float32
	CoreSuppressionRadius float32
	StarSize              float32
	DustSize              float32
	DustScale             float32
	SizeVariation         float32
	DustJitter            float32
	EdgeSoftness          float32
	StarSharpness         float32
	StarBrightness        float32
	DustBrightness        float32
	Seed                  uint32
	_pad                  uint32
}

// NewGPUGalaxyParams packs the simulation parameters the GPU passes read.
//
// Parameters:
//   - p: the simulation parameters
//
// Returns:
//   - GPUGalaxyParams: the packed uniform
func NewGPUGalaxyParams(p *sim.Params) GPUGalaxyParams {
	wb, wd, wbg := ArchetypeWeights(p)
	return GPUGalaxyParams{
		TotalParticles:        p.TotalParticles,
		BrightStars:           p.EffectiveBrightStars(),
		GalaxyRadius:          p.GalaxyRadius,
		BulgeRadius:           p.BulgeRadius,
		WeightBulge:           wb,
		WeightDisk:            wd,
		WeightBackground:      wbg,
		DiskScaleLength:       p.DiskScaleLength,
		BackgroundExtent:      p.BackgroundExtent,
		DiskThickness:         p.DiskThickness,
		SpiralPeak:            p.SpiralPeak,
		SpiralWidth:           p.SpiralWidth,
		MaxEccentricity:       p.MaxEccentricity,
		ArmTwist:              p.ArmTwist,
		RotationVelocity:      p.RotationVelocity,
		RotationScale:         p.RotationScale,
		WaveCount:             p.WaveCount,
		WaveStrength:          p.WaveStrength,
		BaseTemperature:       p.BaseTemperature,
		TemperatureGradient:   p.TemperatureGradient,
		BrightTempMin:         p.BrightTempMin,
		BrightTempMax:         p.BrightTempMax,
		EdgeFade:              p.EdgeFade,
		CoreSuppression:       p.CoreSuppression,
		CoreSuppressionRadius: p.CoreSuppressionRadius,
		StarSize:              p.StarSize,
		DustSize:              p.DustSize,
		DustScale:             DustScale(p.TotalParticles),
		SizeVariation:         p.SizeVariation,
		DustJitter:            p.DustJitter,
		EdgeSoftness:          p.EdgeSoftness,
		StarSharpness:         p.StarSharpness,
		StarBrightness:        p.StarBrightness,
		DustBrightness:        p.DustBrightness,
		Seed:                  Seed,
	}
}

// Size returns the size of the GPUGalaxyParams struct in bytes.
func (g *GPUGalaxyParams) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the uniform in declaration order.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUGalaxyParams) Marshal() []byte {
	buf := make([]byte, g.Size())
	common.PutUint32(buf, 0, g.TotalParticles)
	common.PutUint32(buf, 4, g.BrightStars)
	floats := [...]float32{
		g.GalaxyRadius, g.BulgeRadius, g.WeightBulge, g.WeightDisk, g.WeightBackground,
		g.DiskScaleLength, g.BackgroundExtent, g.DiskThickness, g.SpiralPeak, g.SpiralWidth,
		g.MaxEccentricity, g.ArmTwist, g.RotationVelocity, g.RotationScale, g.WaveCount,
		g.WaveStrength, g.BaseTemperature, g.TemperatureGradient, g.BrightTempMin, g.BrightTempMax,
		g.EdgeFade, g.CoreSuppression, g.CoreSuppressionRadius, g.StarSize, g.DustSize,
		g.DustScale, g.SizeVariation, g.DustJitter, g.EdgeSoftness, g.StarSharpness,
		g.StarBrightness, g.DustBrightness,
	}
	for i, f := range floats {
		common.PutFloat32(buf, 8+i*4, f)
	}
	common.PutUint32(buf, 136, g.Seed)
	common.PutUint32(buf, 140, 0) // _pad
	return buf
}

// GPUDrawIndirectArgs matches the WebGPU non-indexed indirect draw layout (16 bytes).
type GPUDrawIndirectArgs struct {
	VertexCount   uint32
	InstanceCount uint32
	FirstVertex   uint32
	FirstInstance uint32
}

// Marshal serializes the arguments.
func (g *GPUDrawIndirectArgs) Marshal() []byte {
	buf := make([]byte, DrawIndirectArgsSize)
	common.PutUint32(buf, 0, g.VertexCount)
	common.PutUint32(buf, 4, g.InstanceCount)
	common.PutUint32(buf, 8, g.FirstVertex)
	common.PutUint32(buf, 12, g.FirstInstance)
	return buf
}
