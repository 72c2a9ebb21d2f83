package resock

import (
	"time"
)

// BackoffPolicy computes reconnect delays. Pure and deterministic:
// Delay(attempt) = min(Base * 2^attempt, Max), no jitter.
type BackoffPolicy struct {
	// Base is the delay of the first retry (attempt 0).
	Base time.Duration
	// Max caps the computed delay.
	Max time.Duration
}

// Delay returns the wait before re-entering the connecting state.
// attempt is the 0-based count of prior failures.
func (p BackoffPolicy) Delay(attempt int) time.Duration {
	d := p.Base
	for i := 0; i < attempt; i++ {
		d *= 2
		if d >= p.Max {
			return p.Max
		}
	}
	if d > p.Max {
		return p.Max
	}
	return d
}
