// Package fake implements a settable encoder for tests and examples.
package fake

import (
	"context"
	"sync"
)

// Encoder reports whatever position it was last told. Reads and resets can
// be made to fail by injecting errors, which is how tests exercise the
// tick-skip and sensor-degradation paths.
type Encoder struct {
	mu          sync.Mutex
	position    float64 // revolutions
	positionErr error
	resetErr    error
}

// Position returns the current fake position in revolutions.
func (e *Encoder) Position(ctx context.Context) (float64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.positionErr != nil {
		return 0, e.positionErr
	}
	return e.position, nil
}

// ResetPosition zeroes the fake position.
func (e *Encoder) ResetPosition(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.resetErr != nil {
		return e.resetErr
	}
	e.position = 0
	return nil
}

// SetPosition sets the position in revolutions.
func (e *Encoder) SetPosition(position float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.position = position
}

// Advance adds delta revolutions to the position.
func (e *Encoder) Advance(delta float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.position += delta
}

// SetPositionError makes subsequent Position calls fail with err. A nil err
// restores normal reads.
func (e *Encoder) SetPositionError(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.positionErr = err
}

// SetResetError makes subsequent ResetPosition calls fail with err.
func (e *Encoder) SetResetError(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.resetErr = err
}
