package frame

import (
	"github.com/Carmen-Shannon/oxy-galaxy/engine/culling"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/particles"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/postfx"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/stars"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/temporal"
)

// Shaders returns every shader the orchestrator's passes register, in pass order.
func Shaders() []shader.Shader {
	var out []shader.Shader
	for _, pass := range [][]shader.Shader{
		particles.Shaders(),
		culling.Shaders(),
		stars.Shaders(),
		temporal.Shaders(),
		postfx.Shaders(),
	} {
		out = append(out, pass...)
	}
	return out
}
