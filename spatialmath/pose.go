// Package spatialmath implements the 2D rigid-pose algebra used by the
// odometry engine.
package spatialmath

import (
	"fmt"
	"math"

	"github.com/golang/geo/r2"

	"go.viam.com/odometry/utils"
)

// Pose is a position and orientation in the global frame. X and Y are in
// meters, Theta in radians. Theta accumulates without normalization so that
// multi-turn rotations stay distinguishable; wrap it yourself if you need a
// bounded angle.
type Pose struct {
	X     float64
	Y     float64
	Theta float64
}

// NewPose returns a pose at (x, y) meters with the given heading in radians.
func NewPose(x, y, theta float64) Pose {
	return Pose{X: x, Y: y, Theta: theta}
}

// Point returns the position component.
func (p Pose) Point() r2.Point {
	return r2.Point{X: p.X, Y: p.Y}
}

// Compose treats other as a displacement expressed in p's frame and returns
// the pose reached by applying it to p.
func (p Pose) Compose(other Pose) Pose {
	sin, cos := math.Sincos(p.Theta)
	return Pose{
		X:     p.X + other.X*cos - other.Y*sin,
		Y:     p.Y + other.X*sin + other.Y*cos,
		Theta: p.Theta + other.Theta,
	}
}

// Distance returns the Euclidean distance between the positions of p and
// other, ignoring heading.
func (p Pose) Distance(other Pose) float64 {
	return p.Point().Sub(other.Point()).Norm()
}

func (p Pose) String() string {
	return fmt.Sprintf("(%.3fm, %.3fm, %.1f°)", p.X, p.Y, utils.RadToDeg(p.Theta))
}
