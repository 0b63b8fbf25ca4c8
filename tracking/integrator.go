package tracking

import (
	"math"

	"github.com/golang/geo/r2"
	"gonum.org/v1/gonum/stat"

	"go.viam.com/odometry/spatialmath"
	"go.viam.com/odometry/utils"
)

// wheelReading pairs one wheel's cumulative travel with its mounting offset,
// both in meters.
type wheelReading struct {
	travel float64
	offset float64
}

func travels(readings []wheelReading) []float64 {
	out := make([]float64, len(readings))
	for i, r := range readings {
		out[i] = r.travel
	}
	return out
}

// integrator turns per-tick wheel travel and heading changes into
// global-frame pose increments using arc-to-chord correction.
type integrator struct {
	prevRawHeading float64
	prevForward    []float64
	prevSideways   []float64
}

func newIntegrator(rawHeading float64, forward, sideways []wheelReading) *integrator {
	return &integrator{
		prevRawHeading: rawHeading,
		prevForward:    travels(forward),
		prevSideways:   travels(sideways),
	}
}

// update advances pose by one tick and returns the new pose along with the
// wrapped heading delta. headingOffset rotates the raw heading frame into the
// global frame.
func (it *integrator) update(
	pose spatialmath.Pose,
	rawHeading, headingOffset float64,
	forward, sideways []wheelReading,
) (spatialmath.Pose, float64) {
	deltaHeading := utils.WrapRad(rawHeading - it.prevRawHeading)
	// The chord displacement spans the whole tick, so it is projected at the
	// midpoint of the previous and current headings.
	avgHeading := it.prevRawHeading + deltaHeading/2 + headingOffset
	it.prevRawHeading = rawHeading

	localX := meanLocalComponent(forward, it.prevForward, deltaHeading)
	localY := meanLocalComponent(sideways, it.prevSideways, deltaHeading)

	sin, cos := math.Sincos(avgHeading)
	delta := r2.Point{
		X: localX*cos - localY*sin,
		Y: localX*sin + localY*cos,
	}

	return spatialmath.Pose{
		X:     pose.X + delta.X,
		Y:     pose.Y + delta.Y,
		Theta: rawHeading + headingOffset,
	}, deltaHeading
}

// meanLocalComponent converts each wheel's travel delta into its local-frame
// displacement and averages across the axis. prev is updated in place with
// the current travels. An empty axis contributes zero displacement.
func meanLocalComponent(readings []wheelReading, prev []float64, deltaHeading float64) float64 {
	if len(readings) == 0 {
		return 0
	}
	unitChord := 2 * math.Sin(deltaHeading/2)
	locals := make([]float64, len(readings))
	for i, r := range readings {
		delta := r.travel - prev[i]
		prev[i] = r.travel
		if deltaHeading == 0 {
			// Pure translation: the arc already is a straight line.
			locals[i] = delta
			continue
		}
		// delta/deltaHeading recovers the wheel's turn radius about the
		// tracking center; adding the mount offset removes the travel that
		// rotation alone induced, and the unit chord re-applies the result
		// as straight-line displacement.
		locals[i] = unitChord * (delta/deltaHeading + r.offset)
	}
	return stat.Mean(locals, nil)
}
