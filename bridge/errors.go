package bridge

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrTimeout         = errors.New("operation timed out")
	ErrNoActiveSession = errors.New("no active media session")
	ErrDiscovery       = errors.New("error getting media session")
	ErrMetadata        = errors.New("error getting media properties")
	ErrControl         = errors.New("error during playback control")
)

// TimeoutError is returned when a downstream call runs past its budget.
// It matches ErrTimeout with errors.Is.
type TimeoutError struct {
	Op     string
	Budget time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s timed out after %s", e.Op, e.Budget)
}

func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}
