package shader

import _ "embed"

//go:embed assets/fullscreen_vs.wgsl
var fullscreenVertexSource string

// FullscreenVertexCount is the number of vertices drawn by a fullscreen pass.
const FullscreenVertexCount = 3

// NewFullscreenVertexShader returns the vertex stage shared by post-processing passes: a single
// triangle covering the viewport with uv (0,0) at the top-left.
//
// Parameters:
//   - key: the shader key, unique per pipeline
//
// Returns:
//   - Shader: the vertex shader
func NewFullscreenVertexShader(key string) Shader {
	return NewShader(key, ShaderTypeVertex, fullscreenVertexSource)
}
