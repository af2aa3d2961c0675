package sim

import (
	"bytes"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Preset is a named snapshot of every simulation parameter. Time is never part of a preset.
type Preset struct {
	Name   string `toml:"name"`
	Params Params `toml:"params"`
}

// MarshalPreset encodes p as TOML.
func MarshalPreset(p Preset) ([]byte, error) {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(p); err != nil {
		return nil, fmt.Errorf("failed to encode preset %q: %w", p.Name, err)
	}
	return buf.Bytes(), nil
}

// UnmarshalPreset decodes a TOML preset. Keys missing from data keep their default values, and
// every value is clamped into its registered range.
func UnmarshalPreset(data []byte) (Preset, error) {
	p := Preset{Params: DefaultParams()}
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return Preset{}, fmt.Errorf("failed to decode preset: %w", err)
	}
	for _, s := range registry {
		s.set(&p.Params, s.Clamp(s.get(&p.Params)))
	}
	return p, nil
}

// LoadPreset reads a preset file from path.
//
// Parameters:
//   - path: the TOML file to read
//
// Returns:
//   - Preset: the decoded preset; its name defaults to the file's base name when empty
//   - error: an error if the file cannot be read or decoded
func LoadPreset(path string) (Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Preset{}, fmt.Errorf("failed to read preset %s: %w", path, err)
	}
	p, err := UnmarshalPreset(data)
	if err != nil {
		return Preset{}, fmt.Errorf("%s: %w", path, err)
	}
	if p.Name == "" {
		p.Name = presetNameFromPath(path)
	}
	return p, nil
}

// SavePreset writes p to path as TOML.
func SavePreset(path string, p Preset) error {
	data, err := MarshalPreset(p)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write preset %s: %w", path, err)
	}
	return nil
}
