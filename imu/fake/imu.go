// Package fake implements a settable IMU for tests and examples.
package fake

import (
	"context"
	"sync"

	"go.viam.com/odometry/imu"
	"go.viam.com/odometry/spatialmath"
)

// IMU always returns the heading and angular velocity it was last given.
// Heading reads can be made to fail, which is how tests drive the one-way
// inertial-to-wheel degradation.
type IMU struct {
	mu              sync.Mutex
	heading         float64
	angularVelocity spatialmath.AngularVelocity
	headingErr      error
	rateUnsupported bool
}

// Heading returns the set heading in radians.
func (i *IMU) Heading(ctx context.Context) (float64, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.headingErr != nil {
		return 0, i.headingErr
	}
	return i.heading, nil
}

// AngularVelocity returns the set angular rate, or
// imu.ErrAngularVelocityUnsupported if the fake was marked rate-less.
func (i *IMU) AngularVelocity(ctx context.Context) (spatialmath.AngularVelocity, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.rateUnsupported {
		return spatialmath.AngularVelocity{}, imu.ErrAngularVelocityUnsupported
	}
	return i.angularVelocity, nil
}

// SetHeading sets the heading in radians.
func (i *IMU) SetHeading(heading float64) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.heading = heading
}

// SetAngularVelocity sets the reported angular rate.
func (i *IMU) SetAngularVelocity(av spatialmath.AngularVelocity) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.angularVelocity = av
}

// SetHeadingError makes subsequent Heading calls fail with err. A nil err
// restores normal reads.
func (i *IMU) SetHeadingError(err error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.headingErr = err
}

// SetRateUnsupported marks the fake as a heading-only sensor.
func (i *IMU) SetRateUnsupported(unsupported bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.rateUnsupported = unsupported
}
