// Package utils contains the small math helpers shared across the odometry
// packages.
package utils

import "math"

// DegToRad converts degrees to radians.
func DegToRad(degrees float64) float64 {
	return degrees * math.Pi / 180
}

// RadToDeg converts radians to degrees.
func RadToDeg(radians float64) float64 {
	return radians * 180 / math.Pi
}

// ModAngDeg returns the angle normalized into [0, 360).
func ModAngDeg(ang float64) float64 {
	return math.Mod(math.Mod(ang, 360)+360, 360)
}

// WrapRad wraps an angle in radians onto (-π, π] by taking the shortest arc.
// A raw heading jump from 350° to 10° comes out as +20°, not -340°.
func WrapRad(theta float64) float64 {
	return math.Remainder(theta, 2*math.Pi)
}
