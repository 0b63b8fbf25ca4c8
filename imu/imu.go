// Package imu defines the inertial heading source consumed by the tracking
// rig.
package imu

import (
	"context"

	"github.com/pkg/errors"

	"go.viam.com/odometry/spatialmath"
)

// ErrAngularVelocityUnsupported is returned by heading-only sensors that
// cannot report a gyro rate. Consumers then derive angular velocity from
// successive heading readings instead.
var ErrAngularVelocityUnsupported = errors.New("angular velocity unsupported")

// An IMU reports an absolute heading and, optionally, an angular rate. The
// heading is in the sensor's own frame, which rotates opposite the global
// frame; consumers flip its sign.
type IMU interface {
	// Heading returns the absolute heading in radians in the sensor frame.
	Heading(ctx context.Context) (float64, error)

	// AngularVelocity returns the angular rate in rad/s. Heading-only
	// sensors return ErrAngularVelocityUnsupported.
	AngularVelocity(ctx context.Context) (spatialmath.AngularVelocity, error)
}
