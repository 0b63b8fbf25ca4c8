package tracking

import "sync"

// lastError stores recent sensor errors from the fusion loop. An error only
// surfaces once at least threshold of the last size ticks failed, so a lone
// dropped read does not look like a fault.
type lastError struct {
	// These values are immutable.
	size      int
	threshold int

	mu    sync.Mutex
	errs  []error // oldest to newest
	count int     // how many entries in errs are non-nil
}

func newLastError(size, threshold int) *lastError {
	return &lastError{size: size, threshold: threshold, errs: make([]error, size)}
}

// set records the outcome of one tick, nil for success.
func (le *lastError) set(err error) {
	le.mu.Lock()
	defer le.mu.Unlock()

	if le.errs[0] != nil {
		le.count--
	}
	if err != nil {
		le.count++
	}
	le.errs = append(le.errs[1:], err)
}

// get returns the most recent error if enough recent ticks failed, wiping the
// stored history so the same error is not reported twice.
func (le *lastError) get() error {
	le.mu.Lock()
	defer le.mu.Unlock()

	if le.count < le.threshold {
		return nil
	}

	var errToReturn error
	for i := len(le.errs) - 1; i >= 0; i-- {
		if le.errs[i] == nil {
			continue
		}
		errToReturn = le.errs[i]
		break
	}

	le.errs = make([]error, le.size)
	le.count = 0
	return errToReturn
}
