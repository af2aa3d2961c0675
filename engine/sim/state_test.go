package sim

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEveryParamBelongsToOneClass(t *testing.T) {
	seen := map[string]bool{}
	total := 0
	for _, c := range ChangeAll.Classes() {
		for _, n := range NamesIn(c) {
			assert.False(t, seen[n], "%s listed twice", n)
			seen[n] = true
			total++
		}
	}
	assert.Equal(t, 54, total)
	assert.Len(t, Names(), total)
}

func TestMutationReturnsExactlyItsClass(t *testing.T) {
	for _, name := range Names() {
		spec, err := Lookup(name)
		require.NoError(t, err)

		s := NewState()
		cur, err := s.Params.Get(name)
		require.NoError(t, err)

		next := spec.Max
		if cur == spec.Max {
			next = spec.Min
		}
		changed, err := s.Set(name, next)
		require.NoError(t, err, name)
		assert.Equal(t, spec.Class, changed, name)
		assert.Len(t, changed.Classes(), 1, name)

		again, err := s.Set(name, next)
		require.NoError(t, err)
		assert.True(t, again.Empty(), "%s reported %s on an unchanged value", name, again)
	}
}

func TestGroupedUpdateRejectsOtherClass(t *testing.T) {
	s := NewState()
	_, err := s.UpdateToneCurve("galaxy_radius", 10)
	assert.ErrorIs(t, err, ErrClassMismatch)

	_, err = s.UpdateBloom("no_such_param", 1)
	assert.ErrorIs(t, err, ErrUnknownParam)

	_, err = s.Set("no_such_param", 1)
	assert.ErrorIs(t, err, ErrUnknownParam)
}

func TestUpdateClampsAndRounds(t *testing.T) {
	s := NewState()
	changed, err := s.UpdateShape("max_eccentricity", 5)
	require.NoError(t, err)
	assert.Equal(t, ChangeShape, changed)
	assert.InDelta(t, 0.95, s.Params.MaxEccentricity, 1e-6)

	_, err = s.UpdateOverdraw("overdraw_limit", 7.6)
	require.NoError(t, err)
	assert.Equal(t, uint32(8), s.Params.OverdrawLimit)
	assert.True(t, s.Params.OverdrawActive())

	changed, err = s.UpdateDenoise("denoise_color_sigma", float64(s.Params.DenoiseColorSigma))
	require.NoError(t, err)
	assert.True(t, changed.Empty())
}

func TestAdvance(t *testing.T) {
	s := NewState()
	s.Params.TimeScale = 1000
	s.Advance(0.5)
	s.Advance(-1)
	assert.InDelta(t, 500, s.Time, 1e-9)
}

func TestApplyPresetReportsDifferingClasses(t *testing.T) {
	s := NewState()
	s.Time = 12

	p := s.Preset("tweak")
	p.Params.Exposure = 3
	p.Params.BloomRadius = 2

	changed := s.ApplyPreset(p)
	assert.Equal(t, ChangeToneCurve|ChangeBloom, changed)
	assert.Zero(t, s.Time)

	assert.True(t, s.ApplyPreset(p).Empty())
}

func TestPresetRoundTrip(t *testing.T) {
	s := NewState()
	for _, name := range Names() {
		spec, _ := Lookup(name)
		_, err := s.Set(name, (spec.Min+spec.Max)/3)
		require.NoError(t, err)
	}
	s.Time = 42

	path := filepath.Join(t.TempDir(), "custom.toml")
	require.NoError(t, SavePreset(path, s.Preset("custom")))

	loaded, err := LoadPreset(path)
	require.NoError(t, err)
	assert.Equal(t, "custom", loaded.Name)

	restored := FromPreset(loaded)
	assert.Equal(t, s.Params, restored.Params)
	assert.Zero(t, restored.Time)
}

func TestUnmarshalPresetDefaultsAndClamp(t *testing.T) {
	p, err := UnmarshalPreset([]byte("name = \"partial\"\n[params]\nexposure = 1000.0\n"))
	require.NoError(t, err)
	assert.Equal(t, float32(64), p.Params.Exposure)
	assert.Equal(t, DefaultParams().GalaxyRadius, p.Params.GalaxyRadius)

	_, err = UnmarshalPreset([]byte("[params]\nbogus = 1\n"))
	assert.Error(t, err)
}

func TestBuiltinPresets(t *testing.T) {
	ps := BuiltinPresets()
	require.Len(t, ps, 4)
	assert.Equal(t, "milky-way", ps[0].Name)
	assert.Equal(t, DefaultParams(), ps[0].Params)

	p, ok := BuiltinPreset("grand-design")
	assert.True(t, ok)
	assert.Equal(t, float32(2), p.Params.WaveCount)

	_, ok = BuiltinPreset("andromeda")
	assert.False(t, ok)
}

func TestChangeSetString(t *testing.T) {
	assert.Equal(t, "none", ChangeSet(0).String())
	assert.Equal(t, "shape|bloom", (ChangeShape | ChangeBloom).String())
	assert.True(t, ChangeAll.Has(ChangeDenoise|ChangeOverdraw))
	assert.False(t, ChangeShape.Has(0))
	assert.Equal(t, ChangeShape|ChangeBloom, ChangeShape.Union(ChangeBloom))
}
