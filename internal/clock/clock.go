package clock

import "time"

// Clock abstracts wall time and timer scheduling so cache expiry and
// overlay animation/scan delays can be driven deterministically in tests.
type Clock interface {
	Now() time.Time
	// AfterFunc schedules fn after d and returns a cancel function.
	// Cancelling after the timer fired is a no-op.
	AfterFunc(d time.Duration, fn func()) (cancel func())
}

type systemClock struct{}

// System returns a Clock backed by the runtime timer wheel.
func System() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now()
}

func (systemClock) AfterFunc(d time.Duration, fn func()) func() {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}
