package circuitbreaker

import (
	"fmt"
	"time"
)

// OpenError is returned when a call is rejected because the circuit is open
// and the reset timeout has not elapsed yet. The wrapped operation was never
// invoked.
type OpenError struct {
	Circuit     string
	State       State
	NextAttempt time.Time
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("circuitbreaker: circuit %q is %s until %s",
		e.Circuit, e.State, e.NextAttempt.Format(time.RFC3339))
}

// TimeoutError is returned when the wrapped operation did not settle within
// the configured timeout. It counts as a failure like any other operation
// error.
type TimeoutError struct {
	Circuit string
	After   time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("circuitbreaker: circuit %q operation timed out after %s",
		e.Circuit, e.After)
}
