// Package encoder defines the rotary encoder capability consumed by tracking
// wheels.
package encoder

import "context"

// An Encoder reports cumulative rotation. Implementations wrap real hardware,
// so a read can fail transiently; callers treat a failed read as recoverable
// and retry on their own cadence rather than give up.
type Encoder interface {
	// Position returns the cumulative rotation in full revolutions since
	// construction or the last ResetPosition. It is signed and keeps
	// accumulating across multiple turns.
	Position(ctx context.Context) (float64, error)

	// ResetPosition zeroes the encoder so Position accumulates from here.
	ResetPosition(ctx context.Context) error
}
