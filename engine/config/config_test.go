package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.Validate())
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParseOverridesOnlyGivenKeys(t *testing.T) {
	cfg, err := Parse([]byte(`
[window]
width = 800

[render]
msaa = 1
frame_limit = 30
stats_window = "500ms"

[metrics]
listen = ":9100"
`))
	require.NoError(t, err)

	assert.Equal(t, 800, cfg.Window.Width)
	assert.Equal(t, Default().Window.Height, cfg.Window.Height)
	assert.Equal(t, uint32(1), cfg.Render.MSAA)
	assert.Equal(t, 30.0, cfg.Render.FrameLimit)
	assert.Equal(t, Duration(500*time.Millisecond), cfg.Render.StatsWindow)
	assert.Equal(t, ":9100", cfg.Metrics.Listen)
	assert.Equal(t, "vsync", cfg.Render.PresentMode)
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"zero width", "[window]\nwidth = 0"},
		{"negative height", "[window]\nheight = -5"},
		{"msaa 2", "[render]\nmsaa = 2"},
		{"negative frame limit", "[render]\nframe_limit = -1"},
		{"present mode", "[render]\npresent_mode = \"mailbox\""},
		{"unknown key", "[render]\nsamples = 4"},
		{"bad duration", "[render]\nstats_window = \"soon\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestValidateWrapsErrInvalid(t *testing.T) {
	cfg := Default()
	cfg.Render.MSAA = 8
	assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "galaxy.toml")
	require.NoError(t, os.WriteFile(path, []byte("[presets]\ninitial = \"diffuse\"\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "diffuse", cfg.Presets.Initial)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestDurationText(t *testing.T) {
	d := Duration(1500 * time.Millisecond)
	text, err := d.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "1.5s", string(text))

	var back Duration
	require.NoError(t, back.UnmarshalText(text))
	assert.Equal(t, d, back)
}
