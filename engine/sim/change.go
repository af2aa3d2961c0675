package sim

import "strings"

// ChangeSet is a bit set of change classes. Every simulation parameter belongs to exactly one
// class, and a grouped update function returns only the bit of its own class. The frame
// orchestrator matches on the set to decide which cached resources to invalidate.
type ChangeSet uint8

const (
	// ChangeShape marks parameters that feed particle generation and the orbit formula.
	ChangeShape ChangeSet = 1 << iota
	// ChangeToneCurve marks exposure, filmic curve, saturation and shadow lift parameters.
	ChangeToneCurve
	// ChangeBloom marks bloom extraction and blur parameters.
	ChangeBloom
	// ChangeParticleSize marks billboard size, softness and brightness parameters.
	ChangeParticleSize
	// ChangeOverdraw marks the overdraw debug budget and view toggle.
	ChangeOverdraw
	// ChangeDenoise marks temporal denoiser parameters.
	ChangeDenoise
)

// ChangeAll is the union of every class. Presets that replace the whole state report it.
const ChangeAll = ChangeShape | ChangeToneCurve | ChangeBloom | ChangeParticleSize | ChangeOverdraw | ChangeDenoise

var classNames = []struct {
	class ChangeSet
	name  string
}{
	{ChangeShape, "shape"},
	{ChangeToneCurve, "tone-curve"},
	{ChangeBloom, "bloom"},
	{ChangeParticleSize, "particle-size"},
	{ChangeOverdraw, "overdraw"},
	{ChangeDenoise, "denoise"},
}

// Has reports whether every bit of class is present in c.
func (c ChangeSet) Has(class ChangeSet) bool {
	return class != 0 && c&class == class
}

// Union returns the set containing the classes of both c and other.
func (c ChangeSet) Union(other ChangeSet) ChangeSet {
	return c | other
}

// Empty reports whether no class is set.
func (c ChangeSet) Empty() bool {
	return c == 0
}

// Classes splits the set into its single-class members in declaration order.
//
// Returns:
//   - []ChangeSet: one entry per set bit
func (c ChangeSet) Classes() []ChangeSet {
	var out []ChangeSet
	for _, cn := range classNames {
		if c&cn.class != 0 {
			out = append(out, cn.class)
		}
	}
	return out
}

func (c ChangeSet) String() string {
	if c == 0 {
		return "none"
	}
	parts := make([]string, 0, len(classNames))
	for _, cn := range classNames {
		if c&cn.class != 0 {
			parts = append(parts, cn.name)
		}
	}
	return strings.Join(parts, "|")
}
