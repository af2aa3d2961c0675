package temporal

import "github.com/Carmen-Shannon/oxy-galaxy/engine/camera"

// Reprojection approximates where each pixel of the current frame was in the previous one,
// as a 2D affine on uv: historyUV = uv*Scale + Offset. It models dolly as a zoom about the
// screen centre and pan as a translation. Rotation is not modelled; callers reset history
// when the orientation changes.
type Reprojection struct {
	Scale  [2]float32
	Offset [2]float32
}

// Identity is the reprojection of a camera that did not move.
var Identity = Reprojection{Scale: [2]float32{1, 1}}

// NewReprojection computes the affine mapping from the current pose's uv to the previous one's.
//
// Parameters:
//   - prev: the pose the history was rendered with
//   - cur: the pose of the frame being rendered
//
// Returns:
//   - Reprojection: the affine; exactly Identity when the poses are equal
func NewReprojection(prev, cur camera.Pose) Reprojection {
	if prev == cur {
		return Identity
	}
	prevHalfW, prevHalfH := prev.HalfExtent()
	curHalfW, curHalfH := cur.HalfExtent()
	if prevHalfW <= 0 || prevHalfH <= 0 {
		return Identity
	}
	sx := curHalfW / prevHalfW
	sy := curHalfH / prevHalfH

	right, up, _ := prev.Axes()
	delta := cur.Target.Sub(prev.Target)
	dx := delta.Dot(right) / prevHalfW
	dy := delta.Dot(up) / prevHalfH

	// uv y grows downwards while NDC y grows upwards.
	return Reprojection{
		Scale: [2]float32{sx, sy},
		Offset: [2]float32{
			0.5*(1-sx) + 0.5*dx,
			0.5*(1-sy) - 0.5*dy,
		},
	}
}

// Apply maps a current-frame uv to the history uv.
func (r Reprojection) Apply(u, v float32) (float32, float32) {
	return u*r.Scale[0] + r.Offset[0], v*r.Scale[1] + r.Offset[1]
}
