package galaxy

import (
	"github.com/Carmen-Shannon/oxy-galaxy/engine/sim"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// CullMargin widens the NDC acceptance box so billboards straddling the edge are kept.
const CullMargin float32 = 0.01

// View is the camera state the culler needs.
type View struct {
	ViewProj  mgl32.Mat4
	ProjScale float32 // max(P[0][0], P[1][1]) of the projection matrix
}

// DustScale shrinks dust with the particle count so the total dust coverage stays roughly
// constant as the count changes.
func DustScale(total uint32) float32 {
	return 1 / math32.Sqrt(math32.Max(float32(total), 1)/1e6)
}

// Footprint returns the largest half-size, in world units, a particle can be rendered at.
func Footprint(p *Particle, params *sim.Params) float32 {
	if p.Kind == KindStar {
		return params.StarSize * p.Magnitude * params.SizeVariation
	}
	return params.DustSize * DustScale(params.TotalParticles) * params.DustJitter
}

// Visible reports whether a particle at world position pos with the given footprint survives the
// frustum test: it must be in front of the camera and its projected centre must lie within the
// NDC box widened by CullMargin and the projected radius.
//
// Parameters:
//   - pos: the world-space position
//   - footprint: the world-space half-size from Footprint
//   - view: the camera state
//
// Returns:
//   - bool: true if the particle should be drawn
func Visible(pos mgl32.Vec3, footprint float32, view *View) bool {
	clip := view.ViewProj.Mul4x1(pos.Vec4(1))
	w := clip.W()
	if w <= 0 {
		return false
	}
	limit := 1 + CullMargin + footprint*view.ProjScale/w
	return math32.Abs(clip.X()/w) <= limit && math32.Abs(clip.Y()/w) <= limit
}

// VisibleParticle combines Generate, Position, Footprint and Visible for index i.
func VisibleParticle(i uint32, params *sim.Params, t float64, view *View) bool {
	p := Generate(i, params)
	return Visible(Position(&p, params, t), Footprint(&p, params), view)
}
