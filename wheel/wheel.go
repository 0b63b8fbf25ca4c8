// Package wheel converts encoder rotation into ground-contact travel for a
// single passive tracking wheel.
package wheel

import (
	"context"
	"math"

	"github.com/pkg/errors"
	"go.viam.com/utils"

	"go.viam.com/odometry/encoder"
)

// Diameters of common omni tracking wheels, in meters.
const (
	Omni275Diameter = 2.75 * 0.0254
	Omni325Diameter = 3.25 * 0.0254
	Omni4Diameter   = 4.125 * 0.0254
)

// Config describes how a tracking wheel is mounted and geared.
type Config struct {
	// Offset is the signed perpendicular distance in meters from the wheel
	// to the robot's rotation center. For forward wheels, negative is left
	// of center and positive is right.
	Offset float64 `json:"offset_m"`
	// WheelDiameter is the wheel diameter in meters.
	WheelDiameter float64 `json:"wheel_diameter_m"`
	// GearRatio is encoder revolutions per wheel revolution. Zero means 1:1.
	GearRatio float64 `json:"gear_ratio,omitempty"`
	// Reversed flips the polarity of the measured travel.
	Reversed bool `json:"reversed,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (cfg *Config) Validate(path string) error {
	if cfg.WheelDiameter == 0 {
		return utils.NewConfigValidationFieldRequiredError(path, "wheel_diameter_m")
	}
	if cfg.WheelDiameter < 0 {
		return utils.NewConfigValidationError(path, errors.New("wheel_diameter_m cannot be negative"))
	}
	if cfg.GearRatio < 0 {
		return utils.NewConfigValidationError(path, errors.New("gear_ratio cannot be negative"))
	}
	return nil
}

// A TrackingWheel measures cumulative ground-contact travel along one axis of
// the robot. It is passive: nothing drives it, so as long as it keeps ground
// contact its travel reflects actual motion rather than commanded motion.
type TrackingWheel struct {
	enc           encoder.Encoder
	offset        float64
	circumference float64
	gearRatio     float64
	reversed      bool
}

// New returns a tracking wheel reading from enc.
func New(enc encoder.Encoder, cfg Config) (*TrackingWheel, error) {
	if err := cfg.Validate(""); err != nil {
		return nil, err
	}
	gearRatio := cfg.GearRatio
	if gearRatio == 0 {
		gearRatio = 1
	}
	return &TrackingWheel{
		enc:           enc,
		offset:        cfg.Offset,
		circumference: cfg.WheelDiameter * math.Pi,
		gearRatio:     gearRatio,
		reversed:      cfg.Reversed,
	}, nil
}

// Offset returns the signed distance in meters from the rotation center.
func (w *TrackingWheel) Offset() float64 {
	return w.offset
}

// Distance returns the cumulative signed travel in meters since construction
// or the last Reset.
func (w *TrackingWheel) Distance(ctx context.Context) (float64, error) {
	revolutions, err := w.enc.Position(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "failed to read wheel encoder")
	}
	distance := revolutions * w.circumference / w.gearRatio
	if w.reversed {
		distance = -distance
	}
	return distance, nil
}

// Reset zeroes the wheel's encoder so travel accumulates from here.
func (w *TrackingWheel) Reset(ctx context.Context) error {
	return errors.Wrap(w.enc.ResetPosition(ctx), "failed to reset wheel encoder")
}
