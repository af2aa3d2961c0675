package galaxy

// Seed is mixed into every random stream. Changing it changes every galaxy.
const Seed uint32 = 0x2545F491

// Random streams. Each particle property draws from its own stream so that adding a property
// never shifts the values of another.
const (
	streamArchetype uint32 = iota + 1
	streamRadius
	streamPhase
	streamTemperature
	streamMagnitude
	streamHeight
	streamJitter
)

// pcg is the PCG-RXS-M-XS 32 bit hash.
func pcg(v uint32) uint32 {
	state := v*747796405 + 2891336453
	word := ((state >> ((state >> 28) + 4)) ^ state) * 277803737
	return (word >> 22) ^ word
}

// Rand returns a uniform value in [0, 1) for particle index and stream. The top 24 bits of the
// hash are used so the result is exact in float32.
//
// Parameters:
//   - index: the particle index
//   - stream: the property stream
//
// Returns:
//   - float32: a value in [0, 1)
func Rand(index, stream uint32) float32 {
	h := pcg(index ^ pcg(stream*0x9E3779B9+Seed))
	return float32(h>>8) / 16777216.0
}
