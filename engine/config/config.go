package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid config")

// Duration is a time.Duration written in TOML as a Go duration string such as "500ms".
type Duration time.Duration

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText formats the duration as a string.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Config is the application configuration.
type Config struct {
	Window  WindowConfig  `toml:"window"`
	Render  RenderConfig  `toml:"render"`
	Log     LogConfig     `toml:"log"`
	Metrics MetricsConfig `toml:"metrics"`
	Presets PresetConfig  `toml:"presets"`
}

// WindowConfig holds the initial window size and title.
type WindowConfig struct {
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	Title  string `toml:"title"`
}

// RenderConfig holds device and frame pacing settings.
type RenderConfig struct {
	// PresentMode is "vsync" or "uncapped".
	PresentMode string `toml:"present_mode"`
	// MSAA is the star pass sample count, 1 or 4.
	MSAA uint32 `toml:"msaa"`
	// FrameLimit caps the frame rate; 0 is uncapped.
	FrameLimit float64 `toml:"frame_limit"`
	// StatsWindow is the FPS aggregation and profiler report window.
	StatsWindow Duration `toml:"stats_window"`
	// ForceSoftware requests a fallback adapter.
	ForceSoftware bool `toml:"force_software"`
}

// LogConfig selects the logger's encoder and level.
type LogConfig struct {
	Level       string `toml:"level"`
	Environment string `toml:"environment"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	// Listen is the HTTP listen address; empty disables the endpoint.
	Listen string `toml:"listen"`
}

// PresetConfig locates preset files.
type PresetConfig struct {
	// Dir is watched for *.toml preset files; empty disables file presets.
	Dir string `toml:"dir"`
	// Initial names the preset applied at startup, built-in or from Dir.
	Initial string `toml:"initial"`
	// Debounce delays a reload until writes to a file have settled.
	Debounce Duration `toml:"debounce"`
}

// Default returns the configuration used for keys missing from a file.
func Default() Config {
	return Config{
		Window: WindowConfig{Width: 1600, Height: 900, Title: "oxy-galaxy"},
		Render: RenderConfig{
			PresentMode: "vsync",
			MSAA:        4,
			StatsWindow: Duration(time.Second),
		},
		Log:     LogConfig{Level: "info", Environment: "production"},
		Presets: PresetConfig{Initial: "milky-way", Debounce: Duration(200 * time.Millisecond)},
	}
}

// Validate checks the ranges of every field.
//
// Returns:
//   - error: an error wrapping ErrInvalid naming the first bad field, or nil
func (c *Config) Validate() error {
	switch {
	case c.Window.Width <= 0 || c.Window.Height <= 0:
		return fmt.Errorf("%w: window size %dx%d", ErrInvalid, c.Window.Width, c.Window.Height)
	case c.Render.MSAA != 1 && c.Render.MSAA != 4:
		return fmt.Errorf("%w: msaa must be 1 or 4, got %d", ErrInvalid, c.Render.MSAA)
	case c.Render.FrameLimit < 0:
		return fmt.Errorf("%w: negative frame_limit %v", ErrInvalid, c.Render.FrameLimit)
	case c.Render.PresentMode != "vsync" && c.Render.PresentMode != "uncapped":
		return fmt.Errorf("%w: present_mode must be vsync or uncapped, got %q", ErrInvalid, c.Render.PresentMode)
	case c.Render.StatsWindow <= 0:
		return fmt.Errorf("%w: stats_window must be positive", ErrInvalid)
	}
	return nil
}

// Parse decodes TOML over the defaults and validates the result. Unknown keys are an error.
//
// Parameters:
//   - data: the TOML document
//
// Returns:
//   - Config: the decoded configuration
//   - error: a decode or validation error
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads and parses the config file at path. An empty path returns the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}
