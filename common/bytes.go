package common

import (
	"encoding/binary"
	"math"
)

// PutFloat32 writes v little-endian at offset, the layout every WGSL f32 expects.
//
// Parameters:
//   - buf: destination buffer
//   - offset: byte offset of the field
//   - v: value to write
func PutFloat32(buf []byte, offset int, v float32) {
	binary.LittleEndian.PutUint32(buf[offset:], math.Float32bits(v))
}

// PutUint32 writes v little-endian at offset.
//
// Parameters:
//   - buf: destination buffer
//   - offset: byte offset of the field
//   - v: value to write
func PutUint32(buf []byte, offset int, v uint32) {
	binary.LittleEndian.PutUint32(buf[offset:], v)
}

// PutMat4 writes a column-major 4x4 matrix at offset (64 bytes).
//
// Parameters:
//   - buf: destination buffer
//   - offset: byte offset of the matrix
//   - m: the matrix in column-major order
func PutMat4(buf []byte, offset int, m [16]float32) {
	for i := range 16 {
		PutFloat32(buf, offset+i*4, m[i])
	}
}

// BoolToUint32 converts a flag to the u32 encoding used by WGSL uniforms.
func BoolToUint32(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
