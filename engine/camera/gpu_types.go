package camera

import (
	_ "embed"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-galaxy/common"
)

// GPUCameraUniformSource is the canonical WGSL definition of the CameraUniform struct.
// Matches GPUCameraUniform layout exactly (112 bytes).
//
//go:embed assets/camera_uniform.wgsl
var GPUCameraUniformSource string

// GPUCameraUniform is the GPU-aligned representation of the camera uniform buffer.
// Matches the WGSL CameraUniform struct layout exactly (see GPUCameraUniformSource).
// Size: 112 bytes.
type GPUCameraUniform struct {
	ViewProj  [16]float32 // offset   0: combined view-projection matrix (mat4x4<f32>)
	Right     [3]float32  // offset  64: world-space billboard right axis
	ProjScale float32     // offset  76: max(P[0][0], P[1][1])
	Up        [3]float32  // offset  80: world-space billboard up axis
	Time      float32     // offset  92: simulated time in years
	Viewport  [2]float32  // offset  96: canvas size in pixels
	_pad      [2]float32  // offset 104: padding to 112 bytes
}

// NewGPUCameraUniform packs a pose, the simulated time and the canvas size.
//
// Parameters:
//   - pose: the camera pose for this frame
//   - time: simulated time in years
//   - viewport: the canvas extent
//
// Returns:
//   - GPUCameraUniform: the packed uniform
func NewGPUCameraUniform(pose Pose, time float32, viewport common.Extent) GPUCameraUniform {
	right, up, _ := pose.Axes()
	return GPUCameraUniform{
		ViewProj:  pose.ViewProj(),
		Right:     right,
		ProjScale: pose.ProjScale(),
		Up:        up,
		Time:      time,
		Viewport:  [2]float32{float32(viewport.Width), float32(viewport.Height)},
	}
}

// Size returns the size of the GPUCameraUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (112)
func (g *GPUCameraUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUCameraUniform struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUCameraUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	common.PutMat4(buf, 0, g.ViewProj)
	for i := range 3 {
		common.PutFloat32(buf, 64+i*4, g.Right[i])
		common.PutFloat32(buf, 80+i*4, g.Up[i])
	}
	common.PutFloat32(buf, 76, g.ProjScale)
	common.PutFloat32(buf, 92, g.Time)
	common.PutFloat32(buf, 96, g.Viewport[0])
	common.PutFloat32(buf, 100, g.Viewport[1])
	return buf
}
