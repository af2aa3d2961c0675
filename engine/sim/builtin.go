package sim

import (
	"path/filepath"
	"strings"
)

// BuiltinPresets returns the presets compiled into the binary, in key-binding order.
func BuiltinPresets() []Preset {
	milkyWay := DefaultParams()

	denseCore := DefaultParams()
	denseCore.BulgeRadius = 14
	denseCore.BulgeDensity = 0.55
	denseCore.DiskDensity = 0.35
	denseCore.BackgroundDensity = 0.1
	denseCore.CoreSuppression = 0.95
	denseCore.BaseTemperature = 3600
	denseCore.Exposure = 0.8

	grandDesign := DefaultParams()
	grandDesign.MaxEccentricity = 0.55
	grandDesign.SpiralPeak = 0.5
	grandDesign.SpiralWidth = 0.3
	grandDesign.ArmTwist = 0.14
	grandDesign.WaveCount = 2
	grandDesign.WaveStrength = 0.12
	grandDesign.BloomIntensity = 0.8

	diffuse := DefaultParams()
	diffuse.TotalParticles = 600_000
	diffuse.BrightStars = 800
	diffuse.MaxEccentricity = 0.1
	diffuse.BackgroundDensity = 0.4
	diffuse.DiskThickness = 4
	diffuse.DustBrightness = 0.12
	diffuse.Saturation = 0.8

	return []Preset{
		{Name: "milky-way", Params: milkyWay},
		{Name: "dense-core", Params: denseCore},
		{Name: "grand-design", Params: grandDesign},
		{Name: "diffuse", Params: diffuse},
	}
}

// BuiltinPreset returns the built-in preset called name.
func BuiltinPreset(name string) (Preset, bool) {
	for _, p := range BuiltinPresets() {
		if p.Name == name {
			return p, true
		}
	}
	return Preset{}, false
}

func presetNameFromPath(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}
