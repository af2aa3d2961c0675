package sim

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

var (
	// ErrUnknownParam is returned when a parameter name is not in the registry.
	ErrUnknownParam = errors.New("unknown parameter")
	// ErrClassMismatch is returned when a grouped update function is handed a parameter of another class.
	ErrClassMismatch = errors.New("parameter belongs to another change class")
)

// ParamSpec describes one tunable parameter: its name, change class, legal range and accessors.
type ParamSpec struct {
	Name    string
	Class   ChangeSet
	Min     float64
	Max     float64
	Integer bool
	get     func(*Params) float64
	set     func(*Params, float64)
}

// Clamp limits v to the parameter's range and rounds integer parameters.
func (s ParamSpec) Clamp(v float64) float64 {
	if math.IsNaN(v) {
		v = s.Min
	}
	v = math.Max(s.Min, math.Min(s.Max, v))
	if s.Integer {
		v = math.Round(v)
	}
	return v
}

func f32(name string, class ChangeSet, lo, hi float64, field func(*Params) *float32) ParamSpec {
	return ParamSpec{
		Name: name, Class: class, Min: lo, Max: hi,
		get: func(p *Params) float64 { return float64(*field(p)) },
		set: func(p *Params, v float64) { *field(p) = float32(v) },
	}
}

func u32(name string, class ChangeSet, lo, hi float64, field func(*Params) *uint32) ParamSpec {
	return ParamSpec{
		Name: name, Class: class, Min: lo, Max: hi, Integer: true,
		get: func(p *Params) float64 { return float64(*field(p)) },
		set: func(p *Params, v float64) { *field(p) = uint32(v) },
	}
}

func flag(name string, class ChangeSet, field func(*Params) *bool) ParamSpec {
	return ParamSpec{
		Name: name, Class: class, Min: 0, Max: 1, Integer: true,
		get: func(p *Params) float64 {
			if *field(p) {
				return 1
			}
			return 0
		},
		set: func(p *Params, v float64) { *field(p) = v != 0 },
	}
}

var registry = []ParamSpec{
	u32("total_particles", ChangeShape, 0, 8_000_000, func(p *Params) *uint32 { return &p.TotalParticles }),
	u32("bright_stars", ChangeShape, 0, 200_000, func(p *Params) *uint32 { return &p.BrightStars }),
	f32("galaxy_radius", ChangeShape, 1, 500, func(p *Params) *float32 { return &p.GalaxyRadius }),
	f32("bulge_radius", ChangeShape, 0.1, 100, func(p *Params) *float32 { return &p.BulgeRadius }),
	f32("bulge_density", ChangeShape, 0, 1, func(p *Params) *float32 { return &p.BulgeDensity }),
	f32("disk_density", ChangeShape, 0, 1, func(p *Params) *float32 { return &p.DiskDensity }),
	f32("background_density", ChangeShape, 0, 1, func(p *Params) *float32 { return &p.BackgroundDensity }),
	f32("disk_scale_length", ChangeShape, 0.1, 200, func(p *Params) *float32 { return &p.DiskScaleLength }),
	f32("background_extent", ChangeShape, 1, 4, func(p *Params) *float32 { return &p.BackgroundExtent }),
	f32("disk_thickness", ChangeShape, 0, 20, func(p *Params) *float32 { return &p.DiskThickness }),
	f32("spiral_peak", ChangeShape, 0, 1, func(p *Params) *float32 { return &p.SpiralPeak }),
	f32("spiral_width", ChangeShape, 0.01, 1, func(p *Params) *float32 { return &p.SpiralWidth }),
	f32("max_eccentricity", ChangeShape, 0, 0.95, func(p *Params) *float32 { return &p.MaxEccentricity }),
	f32("arm_twist", ChangeShape, -1, 1, func(p *Params) *float32 { return &p.ArmTwist }),
	f32("rotation_velocity", ChangeShape, 0, 1000, func(p *Params) *float32 { return &p.RotationVelocity }),
	f32("rotation_scale", ChangeShape, 0.1, 100, func(p *Params) *float32 { return &p.RotationScale }),
	f32("time_scale", ChangeShape, 0, 1e9, func(p *Params) *float32 { return &p.TimeScale }),
	f32("wave_count", ChangeShape, 0, 16, func(p *Params) *float32 { return &p.WaveCount }),
	f32("wave_strength", ChangeShape, 0, 1, func(p *Params) *float32 { return &p.WaveStrength }),
	f32("base_temperature", ChangeShape, 1000, 40000, func(p *Params) *float32 { return &p.BaseTemperature }),
	f32("temperature_gradient", ChangeShape, -20000, 20000, func(p *Params) *float32 { return &p.TemperatureGradient }),
	f32("bright_temp_min", ChangeShape, 1000, 40000, func(p *Params) *float32 { return &p.BrightTempMin }),
	f32("bright_temp_max", ChangeShape, 1000, 40000, func(p *Params) *float32 { return &p.BrightTempMax }),
	f32("edge_fade", ChangeShape, 0, 1, func(p *Params) *float32 { return &p.EdgeFade }),
	f32("core_suppression", ChangeShape, 0, 1, func(p *Params) *float32 { return &p.CoreSuppression }),
	f32("core_suppression_radius", ChangeShape, 0.1, 100, func(p *Params) *float32 { return &p.CoreSuppressionRadius }),

	f32("star_size", ChangeParticleSize, 0.001, 5, func(p *Params) *float32 { return &p.StarSize }),
	f32("dust_size", ChangeParticleSize, 0.001, 5, func(p *Params) *float32 { return &p.DustSize }),
	f32("size_variation", ChangeParticleSize, 1, 10, func(p *Params) *float32 { return &p.SizeVariation }),
	f32("dust_jitter", ChangeParticleSize, 1, 10, func(p *Params) *float32 { return &p.DustJitter }),
	f32("edge_softness", ChangeParticleSize, 0, 1, func(p *Params) *float32 { return &p.EdgeSoftness }),
	f32("star_sharpness", ChangeParticleSize, 1, 8, func(p *Params) *float32 { return &p.StarSharpness }),
	f32("star_brightness", ChangeParticleSize, 0, 100, func(p *Params) *float32 { return &p.StarBrightness }),
	f32("dust_brightness", ChangeParticleSize, 0, 10, func(p *Params) *float32 { return &p.DustBrightness }),

	f32("exposure", ChangeToneCurve, 0, 64, func(p *Params) *float32 { return &p.Exposure }),
	f32("toe", ChangeToneCurve, 0.01, 1, func(p *Params) *float32 { return &p.Toe }),
	f32("shoulder", ChangeToneCurve, 0.01, 1, func(p *Params) *float32 { return &p.Shoulder }),
	f32("contrast", ChangeToneCurve, 0.01, 2, func(p *Params) *float32 { return &p.Contrast }),
	f32("white_point", ChangeToneCurve, 0.5, 64, func(p *Params) *float32 { return &p.WhitePoint }),
	f32("saturation", ChangeToneCurve, 0, 3, func(p *Params) *float32 { return &p.Saturation }),
	f32("shadow_lift", ChangeToneCurve, 0, 0.5, func(p *Params) *float32 { return &p.ShadowLift }),
	f32("shadow_floor", ChangeToneCurve, 0, 0.5, func(p *Params) *float32 { return &p.ShadowFloor }),

	f32("bloom_threshold", ChangeBloom, 0, 16, func(p *Params) *float32 { return &p.BloomThreshold }),
	f32("bloom_knee", ChangeBloom, 0, 1, func(p *Params) *float32 { return &p.BloomKnee }),
	f32("bloom_intensity", ChangeBloom, 0, 8, func(p *Params) *float32 { return &p.BloomIntensity }),
	f32("bloom_radius", ChangeBloom, 0, 8, func(p *Params) *float32 { return &p.BloomRadius }),

	u32("overdraw_limit", ChangeOverdraw, 0, 1024, func(p *Params) *uint32 { return &p.OverdrawLimit }),
	flag("overdraw_view", ChangeOverdraw, func(p *Params) *bool { return &p.OverdrawView }),

	flag("denoise_enabled", ChangeDenoise, func(p *Params) *bool { return &p.DenoiseEnabled }),
	f32("denoise_spatial_sigma", ChangeDenoise, 0.1, 8, func(p *Params) *float32 { return &p.DenoiseSpatialSigma }),
	f32("denoise_color_sigma", ChangeDenoise, 0.01, 4, func(p *Params) *float32 { return &p.DenoiseColorSigma }),
	f32("denoise_max_history", ChangeDenoise, 0, 0.99, func(p *Params) *float32 { return &p.DenoiseMaxHistory }),
	f32("denoise_variance_clamp", ChangeDenoise, 0, 8, func(p *Params) *float32 { return &p.DenoiseVarianceClamp }),
	u32("denoise_reset_frames", ChangeDenoise, 0, 120, func(p *Params) *uint32 { return &p.DenoiseResetFrames }),
}

var registryIndex = func() map[string]int {
	idx := make(map[string]int, len(registry))
	for i, s := range registry {
		idx[s.Name] = i
	}
	return idx
}()

// Lookup returns the registry entry for name.
//
// Parameters:
//   - name: the snake_case parameter name
//
// Returns:
//   - ParamSpec: the registry entry
//   - error: ErrUnknownParam if no parameter has that name
func Lookup(name string) (ParamSpec, error) {
	i, ok := registryIndex[name]
	if !ok {
		return ParamSpec{}, fmt.Errorf("%w: %q", ErrUnknownParam, name)
	}
	return registry[i], nil
}

// Names returns every parameter name in sorted order.
func Names() []string {
	out := make([]string, 0, len(registry))
	for _, s := range registry {
		out = append(out, s.Name)
	}
	sort.Strings(out)
	return out
}

// NamesIn returns the names of every parameter in class, in registry order.
func NamesIn(class ChangeSet) []string {
	var out []string
	for _, s := range registry {
		if s.Class == class {
			out = append(out, s.Name)
		}
	}
	return out
}

// Get reads a parameter by name as a float64.
func (p *Params) Get(name string) (float64, error) {
	s, err := Lookup(name)
	if err != nil {
		return 0, err
	}
	return s.get(p), nil
}

// diff returns the union of classes whose fields differ between a and b.
func diff(a, b *Params) ChangeSet {
	var out ChangeSet
	for _, s := range registry {
		if out.Has(s.Class) {
			continue
		}
		if s.get(a) != s.get(b) {
			out |= s.Class
		}
	}
	return out
}
