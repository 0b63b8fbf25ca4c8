package tracking

import (
	"context"
	"math"

	"github.com/pkg/errors"

	"go.viam.com/odometry/imu"
	"go.viam.com/odometry/wheel"
)

// parallelPairTolerance is how close to zero two forward wheel offsets must
// sum for the wheels to count as a pair straddling the rotation center.
const parallelPairTolerance = 0.5

// headingState is the resolver's degradation state. The only transitions are
// inertial -> wheelFallback and wheelFallback -> failed; an inertial source
// that drops a read is never trusted again even if it comes back.
type headingState int

const (
	headingStateInertial headingState = iota
	headingStateWheelFallback
	headingStateFailed
)

var (
	errHeadingLost    = errors.New("heading lost: inertial source failed and no parallel wheel pair available")
	errNoParallelPair = errors.New("no valid parallel wheel pair to derive heading from")
)

// recoverableError marks a single bad sensor read. The rig responds by
// skipping the tick and trying again at the next cadence.
type recoverableError struct {
	err error
}

func (e *recoverableError) Error() string {
	return e.err.Error()
}

func (e *recoverableError) Unwrap() error {
	return e.err
}

func isRecoverable(err error) bool {
	var re *recoverableError
	return errors.As(err, &re)
}

// wheelPair indexes two forward wheels mounted on opposite sides of the
// rotation center. left always has the smaller offset.
type wheelPair struct {
	left  int
	right int
}

// findParallelPair scans unordered index pairs of forward wheels and returns
// the first whose offsets sum to within parallelPairTolerance of zero, or nil
// if none do. First found wins; there is no global best-fit search.
func findParallelPair(wheels []*wheel.TrackingWheel) *wheelPair {
	for i := 0; i < len(wheels); i++ {
		for j := i + 1; j < len(wheels); j++ {
			iOffset := wheels[i].Offset()
			jOffset := wheels[j].Offset()
			if math.Abs(iOffset+jOffset) > parallelPairTolerance {
				continue
			}
			if iOffset < jOffset {
				return &wheelPair{left: i, right: j}
			}
			return &wheelPair{left: j, right: i}
		}
	}
	return nil
}

// headingResolver produces a raw heading each tick, preferring the inertial
// source and degrading one-way to a wheel-differential estimate from a
// parallel forward pair.
type headingResolver struct {
	imu    imu.IMU
	wheels []*wheel.TrackingWheel
	pair   *wheelPair
	state  headingState
}

func newHeadingResolver(src imu.IMU, forward []*wheel.TrackingWheel) (*headingResolver, error) {
	pair := findParallelPair(forward)
	if src == nil && pair == nil {
		return nil, errors.New("an imu or two parallel forward wheels are required to determine heading")
	}
	state := headingStateInertial
	if src == nil {
		state = headingStateWheelFallback
	}
	return &headingResolver{
		imu:    src,
		wheels: forward,
		pair:   pair,
		state:  state,
	}, nil
}

// resolve returns the current raw heading in radians in the global frame.
// Recoverable errors mean this one tick had a bad read; any other error means
// heading is undeterminable for good.
func (hr *headingResolver) resolve(ctx context.Context) (float64, error) {
	switch hr.state {
	case headingStateInertial:
		heading, err := hr.imu.Heading(ctx)
		if err == nil {
			// The sensor's positive rotation runs opposite the global
			// frame's, so flip the sign.
			return -heading, nil
		}
		if hr.pair == nil {
			hr.state = headingStateFailed
			return 0, errors.Wrap(errHeadingLost, err.Error())
		}
		hr.state = headingStateWheelFallback
		return hr.wheelHeading(ctx)
	case headingStateWheelFallback:
		if hr.pair == nil {
			hr.state = headingStateFailed
			return 0, errNoParallelPair
		}
		return hr.wheelHeading(ctx)
	default:
		return 0, errHeadingLost
	}
}

// wheelHeading estimates heading from the travel differential of the parallel
// pair. Wheel read failures are recoverable; a degenerate zero track width is
// not.
func (hr *headingResolver) wheelHeading(ctx context.Context) (float64, error) {
	left := hr.wheels[hr.pair.left]
	right := hr.wheels[hr.pair.right]

	trackWidth := math.Abs(right.Offset() - left.Offset())
	if trackWidth == 0 {
		hr.state = headingStateFailed
		return 0, errNoParallelPair
	}

	leftTravel, err := left.Distance(ctx)
	if err != nil {
		return 0, &recoverableError{err}
	}
	rightTravel, err := right.Distance(ctx)
	if err != nil {
		return 0, &recoverableError{err}
	}
	return (rightTravel - leftTravel) / trackWidth, nil
}
