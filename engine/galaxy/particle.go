package galaxy

import (
	"github.com/Carmen-Shannon/oxy-galaxy/common"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/sim"
	"github.com/chewxy/math32"
)

// Kind selects how a particle is rendered.
type Kind uint32

const (
	// KindStar is a bright, sharp billboard.
	KindStar Kind = iota
	// KindDust is a faint, soft billboard whose size shrinks with the particle count.
	KindDust
)

func (k Kind) String() string {
	if k == KindStar {
		return "star"
	}
	return "dust"
}

// Archetype is the population a particle was drawn from.
type Archetype uint8

const (
	// ArchetypeBright is the bright-star prefix of the particle buffer.
	ArchetypeBright Archetype = iota
	// ArchetypeBulge is dust inside the bulge radius.
	ArchetypeBulge
	// ArchetypeDisk is dust in the exponential disk.
	ArchetypeDisk
	// ArchetypeBackground is the sparse halo reaching past the galaxy radius.
	ArchetypeBackground
	archetypeCount
)

func (a Archetype) String() string {
	switch a {
	case ArchetypeBright:
		return "bright"
	case ArchetypeBulge:
		return "bulge"
	case ArchetypeDisk:
		return "disk"
	default:
		return "background"
	}
}

// Astronomical constants used by the rotation curve.
const (
	KmPerKly       = 9.4607e15
	SecondsPerYear = 3.15576e7
)

// Particle is one generated star or dust cloud. Angles are in degrees, distances in kly.
type Particle struct {
	Phase       float32
	AngVel      float32
	Tilt        float32
	RadiusA     float32
	RadiusB     float32
	Temperature float32
	Magnitude   float32
	Kind        Kind
	Height      float32
	Color       uint32
	Archetype   Archetype
}

// ArchetypeWeights returns the normalised bulge, disk and background selection weights. When all
// densities are zero every dust particle lands in the disk.
func ArchetypeWeights(p *sim.Params) (bulge, disk, background float32) {
	sum := p.BulgeDensity + p.DiskDensity + p.BackgroundDensity
	if sum <= 0 {
		return 0, 1, 0
	}
	return p.BulgeDensity / sum, p.DiskDensity / sum, p.BackgroundDensity / sum
}

// truncExp samples an exponential distribution with the given scale truncated to [0, limit].
func truncExp(u, scale, limit float32) float32 {
	if limit <= 0 || scale <= 0 {
		return 0
	}
	return -scale * math32.Log(1-u*(1-math32.Exp(-limit/scale)))
}

// Generate builds particle i from the shape parameters. The GPU generator runs the same
// algorithm, so for a given index and parameter set both produce the same particle.
//
// Parameters:
//   - i: the particle index
//   - p: the simulation parameters
//
// Returns:
//   - Particle: the generated particle
func Generate(i uint32, p *sim.Params) Particle {
	R := p.GalaxyRadius
	u := Rand(i, streamRadius)

	var part Particle
	var r float32
	if i < p.EffectiveBrightStars() {
		part.Archetype = ArchetypeBright
		part.Kind = KindStar
		r = truncExp(u, p.DiskScaleLength, R)
	} else {
		part.Kind = KindDust
		wb, wd, _ := ArchetypeWeights(p)
		a := Rand(i, streamArchetype)
		switch {
		case a < wb:
			part.Archetype = ArchetypeBulge
			r = truncExp(u, p.BulgeRadius/3, p.BulgeRadius)
		case a < wb+wd:
			part.Archetype = ArchetypeDisk
			r = p.BulgeRadius + truncExp(u, p.DiskScaleLength, R-p.BulgeRadius)
		default:
			part.Archetype = ArchetypeBackground
			r = R * p.BackgroundExtent * math32.Sqrt(u)
		}
	}

	x := r / R
	bell := math32.Exp(-(x - p.SpiralPeak) * (x - p.SpiralPeak) / (2 * p.SpiralWidth * p.SpiralWidth))
	taper := common.Saturate(4 * x * (1 - x))
	e := p.MaxEccentricity * bell * taper

	part.RadiusA = r
	part.RadiusB = r * (1 - e)
	part.Tilt = r * p.ArmTwist
	part.Phase = Rand(i, streamPhase) * 360
	part.AngVel = AngularVelocity(r, p)

	t := Rand(i, streamTemperature)
	if part.Archetype == ArchetypeBright {
		part.Temperature = common.Mix(p.BrightTempMin, p.BrightTempMax, t)
	} else {
		part.Temperature = math32.Max(1000, p.BaseTemperature+p.TemperatureGradient*(1-x)+(t-0.5)*500)
	}

	mag := common.Mix(0.4, 1.0, Rand(i, streamMagnitude))
	mag *= 1 - common.Smoothstep(p.EdgeFade, p.BackgroundExtent, x)
	if part.Archetype == ArchetypeBright {
		mag *= 1 - p.CoreSuppression*math32.Exp(-r/p.CoreSuppressionRadius)
	}
	part.Magnitude = mag

	bulgeScale := float32(1)
	if part.Archetype == ArchetypeBulge {
		bulgeScale = 3
	}
	part.Height = (Rand(i, streamHeight) - 0.5) * p.DiskThickness * math32.Exp(-x) * bulgeScale
	part.Color = PackRGBA8(BlackbodyColor(part.Temperature))
	return part
}

// AngularVelocity evaluates the rotation curve v(r) = V(1 - exp(-r/scale)) km/s at radius r kly
// and converts it to degrees per year.
func AngularVelocity(r float32, p *sim.Params) float32 {
	rr := math32.Max(r, 1e-3)
	v := p.RotationVelocity * (1 - math32.Exp(-rr/p.RotationScale))
	return v / (rr * KmPerKly) * SecondsPerYear * (180 / math32.Pi)
}
