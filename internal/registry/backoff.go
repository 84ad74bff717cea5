package registry

import (
	"math/rand"
	"time"
)

const (
	baseBackoff = 2 * time.Second
	maxBackoff  = time.Minute
)

// CalculateBackoff returns the wait before the next sync attempt after the given
// number of consecutive failures: 2s * 2^failures, capped at one minute.
//   - 0 failures: 2s
//   - 3 failures: 16s
//   - 5+ failures: 1m
func CalculateBackoff(consecutiveFailures int32) time.Duration {
	if consecutiveFailures <= 0 {
		return baseBackoff
	}
	if consecutiveFailures >= 16 {
		return maxBackoff
	}

	duration := baseBackoff * time.Duration(1<<uint(consecutiveFailures))
	if duration > maxBackoff {
		return maxBackoff
	}
	return duration
}

// AddJitter returns d with ±10% random jitter applied, so concurrent
// syncs against one registry do not retry in lockstep.
func AddJitter(d time.Duration) time.Duration {
	jitterAmount := d / 10
	if jitterAmount <= 0 {
		return d
	}

	// rand.Int63n(n) returns [0, n); shift to [-jitterAmount, +jitterAmount).
	return d + time.Duration(rand.Int63n(int64(2*jitterAmount))) - jitterAmount
}
