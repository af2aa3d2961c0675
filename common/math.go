package common

import (
	"github.com/chewxy/math32"
)

// Clamp restricts v to the closed interval [lo, hi].
func Clamp(v, lo, hi float32) float32 {
	return math32.Max(lo, math32.Min(hi, v))
}

// Saturate clamps v to [0, 1], matching the WGSL builtin of the same name.
func Saturate(v float32) float32 {
	return Clamp(v, 0, 1)
}

// Mix linearly interpolates between a and b, matching WGSL mix.
func Mix(a, b, t float32) float32 {
	return a + (b-a)*t
}

// Smoothstep is the Hermite interpolation used by WGSL smoothstep.
// Returns 0 below edge0, 1 above edge1, and a smooth ramp in between.
//
// Parameters:
//   - edge0: lower edge
//   - edge1: upper edge
//   - x: value to map
//
// Returns:
//   - float32: the interpolated value in [0, 1]
func Smoothstep(edge0, edge1, x float32) float32 {
	if edge0 == edge1 {
		if x < edge0 {
			return 0
		}
		return 1
	}
	t := Saturate((x - edge0) / (edge1 - edge0))
	return t * t * (3 - 2*t)
}

// Radians converts degrees to radians in float32.
func Radians(deg float32) float32 {
	return deg * (math32.Pi / 180)
}

// IsPowerOfTwo reports whether n is a positive power of two.
func IsPowerOfTwo(n uint32) bool {
	return n != 0 && n&(n-1) == 0
}

// DivCeil returns ceil(n / d) for workgroup dispatch sizing. d must be non-zero.
func DivCeil(n, d uint32) uint32 {
	return (n + d - 1) / d
}

// MaxWorkgroupsPerDimension is the WebGPU default limit on workgroups in one dispatch dimension.
const MaxWorkgroupsPerDimension = 65535

// DispatchSize returns the workgroup grid for n invocations of a one-dimensional kernel. Large
// counts spill into y; the shader recovers the flat index as id.x + id.y * num_workgroups.x * size.
//
// Parameters:
//   - n: number of invocations needed
//   - workgroupSize: invocations per workgroup, must be non-zero
//
// Returns:
//   - [3]uint32: the workgroup counts for x, y and z
func DispatchSize(n, workgroupSize uint32) [3]uint32 {
	groups := max(DivCeil(n, workgroupSize), 1)
	if groups <= MaxWorkgroupsPerDimension {
		return [3]uint32{groups, 1, 1}
	}
	return [3]uint32{MaxWorkgroupsPerDimension, DivCeil(groups, MaxWorkgroupsPerDimension), 1}
}
