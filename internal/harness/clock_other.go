//go:build !linux

package harness

// NewMonotonicClock returns the highest-resolution monotonic clock available.
// Outside Linux this is Go's runtime monotonic clock.
func NewMonotonicClock() Clock {
	return newGoClock()
}
