package galaxy

import (
	"github.com/Carmen-Shannon/oxy-galaxy/engine/sim"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Position evaluates the world-space position of p at simulated time t years. The disk lies in
// the XZ plane with Y up. Each particle moves on an ellipse rotated by its tilt, and an optional
// density wave scales the radius by 1 + strength*cos(count*theta).
//
// Parameters:
//   - p: the particle
//   - params: the simulation parameters
//   - t: simulated time in years
//
// Returns:
//   - mgl32.Vec3: the world-space position
func Position(p *Particle, params *sim.Params, t float64) mgl32.Vec3 {
	angle := math32.Mod(p.Phase+p.AngVel*float32(t), 360)
	theta := angle * (math32.Pi / 180)

	ex := p.RadiusA * math32.Cos(theta)
	ez := p.RadiusB * math32.Sin(theta)

	ct, st := math32.Cos(p.Tilt), math32.Sin(p.Tilt)
	x := ex*ct - ez*st
	z := ex*st + ez*ct

	if params.WaveCount > 0 {
		w := 1 + params.WaveStrength*math32.Cos(params.WaveCount*math32.Atan2(z, x))
		x *= w
		z *= w
	}
	return mgl32.Vec3{x, p.Height, z}
}
