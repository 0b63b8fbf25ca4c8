package spatialmath

import "github.com/golang/geo/r3"

// AngularVelocity contains angular velocity in rad/s across the x/y/z axes.
// A planar robot rotating counterclockwise reports a positive Z.
type AngularVelocity r3.Vector
