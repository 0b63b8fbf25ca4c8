package tracking

import "gonum.org/v1/gonum/stat"

// velocityEstimator derives linear and angular rates from successive ticks.
type velocityEstimator struct {
	prevForwardTravel float64
}

// update returns the mean cumulative forward travel plus the linear and
// angular velocities over the tick. A non-positive dt reports zero rates for
// the tick rather than dividing by zero. An empty forward set carries the
// previous travel unchanged.
func (ve *velocityEstimator) update(forwardTravels []float64, deltaHeading, dt float64) (forwardTravel, linear, angular float64) {
	forwardTravel = ve.prevForwardTravel
	if len(forwardTravels) > 0 {
		forwardTravel = stat.Mean(forwardTravels, nil)
	}
	if dt > 0 {
		linear = (forwardTravel - ve.prevForwardTravel) / dt
		angular = deltaHeading / dt
	}
	ve.prevForwardTravel = forwardTravel
	return forwardTravel, linear, angular
}
