package infra

import (
	"time"
)

const (
	baseDelay = 1 * time.Second
	maxDelay  = 60 * time.Second
)

// CalculateBackoff returns baseDelay * 2^step, capped at maxDelay.
// The circuit breaker uses it to extend the open period after repeated trips.
// A negative step yields baseDelay.
func CalculateBackoff(step int) time.Duration {
	if step < 0 {
		return baseDelay
	}

	// 2^30 seconds is far beyond maxDelay, stop before the shift overflows
	if step > 30 {
		return maxDelay
	}

	backoff := baseDelay * time.Duration(1<<step)
	if backoff > maxDelay {
		return maxDelay
	}

	return backoff
}
