package sim

import "fmt"

// State is the complete simulation state: the parameter record plus the simulated time in years.
// It is owned by the host thread and mutated only through the functions in this file.
type State struct {
	Params Params
	Time   float64
}

// NewState returns a state holding the default parameters at time zero.
func NewState() *State {
	return &State{Params: DefaultParams()}
}

func (s *State) update(class ChangeSet, name string, v float64) (ChangeSet, error) {
	spec, err := Lookup(name)
	if err != nil {
		return 0, err
	}
	if spec.Class != class {
		return 0, fmt.Errorf("%w: %s is %s, not %s", ErrClassMismatch, name, spec.Class, class)
	}
	next := s.Params
	spec.set(&next, spec.Clamp(v))
	if spec.get(&next) == spec.get(&s.Params) {
		return 0, nil
	}
	s.Params = next
	return class, nil
}

// UpdateShape sets a shape parameter.
//
// Parameters:
//   - name: the parameter name
//   - v: the new value, clamped to the parameter's range
//
// Returns:
//   - ChangeSet: ChangeShape, or empty when the clamped value equals the current one
//   - error: ErrUnknownParam or ErrClassMismatch
func (s *State) UpdateShape(name string, v float64) (ChangeSet, error) {
	return s.update(ChangeShape, name, v)
}

// UpdateParticleSize sets a particle size parameter. See UpdateShape.
func (s *State) UpdateParticleSize(name string, v float64) (ChangeSet, error) {
	return s.update(ChangeParticleSize, name, v)
}

// UpdateToneCurve sets a tone curve parameter. See UpdateShape.
func (s *State) UpdateToneCurve(name string, v float64) (ChangeSet, error) {
	return s.update(ChangeToneCurve, name, v)
}

// UpdateBloom sets a bloom parameter. See UpdateShape.
func (s *State) UpdateBloom(name string, v float64) (ChangeSet, error) {
	return s.update(ChangeBloom, name, v)
}

// UpdateOverdraw sets an overdraw debug parameter. See UpdateShape.
func (s *State) UpdateOverdraw(name string, v float64) (ChangeSet, error) {
	return s.update(ChangeOverdraw, name, v)
}

// UpdateDenoise sets a denoiser parameter. See UpdateShape.
func (s *State) UpdateDenoise(name string, v float64) (ChangeSet, error) {
	return s.update(ChangeDenoise, name, v)
}

// Set dispatches to the grouped update function of the parameter's class.
//
// Parameters:
//   - name: the parameter name
//   - v: the new value
//
// Returns:
//   - ChangeSet: the parameter's class, or empty when nothing changed
//   - error: ErrUnknownParam if the name is not registered
func (s *State) Set(name string, v float64) (ChangeSet, error) {
	spec, err := Lookup(name)
	if err != nil {
		return 0, err
	}
	switch spec.Class {
	case ChangeShape:
		return s.UpdateShape(name, v)
	case ChangeParticleSize:
		return s.UpdateParticleSize(name, v)
	case ChangeToneCurve:
		return s.UpdateToneCurve(name, v)
	case ChangeBloom:
		return s.UpdateBloom(name, v)
	case ChangeOverdraw:
		return s.UpdateOverdraw(name, v)
	default:
		return s.UpdateDenoise(name, v)
	}
}

// Advance moves simulated time forward by dt seconds of wall clock scaled by time_scale.
func (s *State) Advance(dt float64) {
	if dt <= 0 {
		return
	}
	s.Time += dt * float64(s.Params.TimeScale)
}

// ApplyPreset replaces every parameter with the preset's and resets time to zero.
//
// Parameters:
//   - p: the preset to apply
//
// Returns:
//   - ChangeSet: the union of classes whose fields differ from the previous state
func (s *State) ApplyPreset(p Preset) ChangeSet {
	changed := diff(&s.Params, &p.Params)
	s.Params = p.Params
	s.Time = 0
	return changed
}

// Preset snapshots the state's parameters under name.
func (s *State) Preset(name string) Preset {
	return Preset{Name: name, Params: s.Params}
}

// FromPreset reconstructs a state from a preset with time reset to zero.
func FromPreset(p Preset) *State {
	return &State{Params: p.Params}
}
