package sim

// Params is the flat record of every tunable simulation parameter. Field order follows the
// change classes in change.go. The toml tags double as the parameter names accepted by Set.
type Params struct {
	// Shape: particle generation and orbit evaluation.
	TotalParticles        uint32  `toml:"total_particles"`
	BrightStars           uint32  `toml:"bright_stars"`
	GalaxyRadius          float32 `toml:"galaxy_radius"`
	BulgeRadius           float32 `toml:"bulge_radius"`
	BulgeDensity          float32 `toml:"bulge_density"`
	DiskDensity           float32 `toml:"disk_density"`
	BackgroundDensity     float32 `toml:"background_density"`
	DiskScaleLength       float32 `toml:"disk_scale_length"`
	BackgroundExtent      float32 `toml:"background_extent"`
	DiskThickness         float32 `toml:"disk_thickness"`
	SpiralPeak            float32 `toml:"spiral_peak"`
	SpiralWidth           float32 `toml:"spiral_width"`
	MaxEccentricity       float32 `toml:"max_eccentricity"`
	ArmTwist              float32 `toml:"arm_twist"`
	RotationVelocity      float32 `toml:"rotation_velocity"`
	RotationScale         float32 `toml:"rotation_scale"`
	TimeScale             float32 `toml:"time_scale"`
	WaveCount             float32 `toml:"wave_count"`
	WaveStrength          float32 `toml:"wave_strength"`
	BaseTemperature       float32 `toml:"base_temperature"`
	TemperatureGradient   float32 `toml:"temperature_gradient"`
	BrightTempMin         float32 `toml:"bright_temp_min"`
	BrightTempMax         float32 `toml:"bright_temp_max"`
	EdgeFade              float32 `toml:"edge_fade"`
	CoreSuppression       float32 `toml:"core_suppression"`
	CoreSuppressionRadius float32 `toml:"core_suppression_radius"`

	// Particle size.
	StarSize       float32 `toml:"star_size"`
	DustSize       float32 `toml:"dust_size"`
	SizeVariation  float32 `toml:"size_variation"`
	DustJitter     float32 `toml:"dust_jitter"`
	EdgeSoftness   float32 `toml:"edge_softness"`
	StarSharpness  float32 `toml:"star_sharpness"`
	StarBrightness float32 `toml:"star_brightness"`
	DustBrightness float32 `toml:"dust_brightness"`

	// Tone curve.
	Exposure    float32 `toml:"exposure"`
	Toe         float32 `toml:"toe"`
	Shoulder    float32 `toml:"shoulder"`
	Contrast    float32 `toml:"contrast"`
	WhitePoint  float32 `toml:"white_point"`
	Saturation  float32 `toml:"saturation"`
	ShadowLift  float32 `toml:"shadow_lift"`
	ShadowFloor float32 `toml:"shadow_floor"`

	// Bloom.
	BloomThreshold float32 `toml:"bloom_threshold"`
	BloomKnee      float32 `toml:"bloom_knee"`
	BloomIntensity float32 `toml:"bloom_intensity"`
	BloomRadius    float32 `toml:"bloom_radius"`

	// Overdraw debug. A limit of OverdrawDisabled turns the mode and its buffer off entirely.
	OverdrawLimit uint32 `toml:"overdraw_limit"`
	OverdrawView  bool   `toml:"overdraw_view"`

	// Denoise.
	DenoiseEnabled       bool    `toml:"denoise_enabled"`
	DenoiseSpatialSigma  float32 `toml:"denoise_spatial_sigma"`
	DenoiseColorSigma    float32 `toml:"denoise_color_sigma"`
	DenoiseMaxHistory    float32 `toml:"denoise_max_history"`
	DenoiseVarianceClamp float32 `toml:"denoise_variance_clamp"`
	DenoiseResetFrames   uint32  `toml:"denoise_reset_frames"`
}

// OverdrawDisabled is the overdraw_limit sentinel that skips the debug mode and its buffer.
const OverdrawDisabled uint32 = 0

// OverdrawActive reports whether the overdraw counter buffer is needed at all.
func (p *Params) OverdrawActive() bool {
	return p.OverdrawLimit != OverdrawDisabled
}

// EffectiveBrightStars returns the bright-star prefix length, never larger than the particle count.
func (p *Params) EffectiveBrightStars() uint32 {
	return min(p.BrightStars, p.TotalParticles)
}

// DefaultParams returns the parameters of the "milky-way" preset.
//
// Returns:
//   - Params: the default parameter record
func DefaultParams() Params {
	return Params{
		TotalParticles:        1_017_000,
		BrightStars:           1_745,
		GalaxyRadius:          50,
		BulgeRadius:           8,
		BulgeDensity:          0.25,
		DiskDensity:           0.6,
		BackgroundDensity:     0.15,
		DiskScaleLength:       12,
		BackgroundExtent:      1.15,
		DiskThickness:         1.2,
		SpiralPeak:            0.45,
		SpiralWidth:           0.2,
		MaxEccentricity:       0.35,
		ArmTwist:              0.09,
		RotationVelocity:      220,
		RotationScale:         6,
		TimeScale:             2e6,
		WaveCount:             0,
		WaveStrength:          0.05,
		BaseTemperature:       4000,
		TemperatureGradient:   3000,
		BrightTempMin:         8000,
		BrightTempMax:         25000,
		EdgeFade:              0.8,
		CoreSuppression:       0.85,
		CoreSuppressionRadius: 6,

		StarSize:       0.12,
		DustSize:       0.05,
		SizeVariation:  1.4,
		DustJitter:     2,
		EdgeSoftness:   0.35,
		StarSharpness:  1.5,
		StarBrightness: 1.6,
		DustBrightness: 0.08,

		Exposure:    1,
		Toe:         0.2,
		Shoulder:    0.15,
		Contrast:    0.5,
		WhitePoint:  11.2,
		Saturation:  1.1,
		ShadowLift:  0.03,
		ShadowFloor: 0.002,

		BloomThreshold: 0.8,
		BloomKnee:      0.5,
		BloomIntensity: 0.6,
		BloomRadius:    1.5,

		OverdrawLimit: OverdrawDisabled,
		OverdrawView:  false,

		DenoiseEnabled:       true,
		DenoiseSpatialSigma:  1.2,
		DenoiseColorSigma:    0.25,
		DenoiseMaxHistory:    0.9,
		DenoiseVarianceClamp: 1.25,
		DenoiseResetFrames:   4,
	}
}
