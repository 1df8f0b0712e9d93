package ports

import "time"

// Timer is a pending cooperative timer. Stop is the only cancellation
// mechanism: a superseded debounce window or a cancelled deferred removal is
// simply stopped and replaced.
type Timer interface {
	// Stop cancels the timer. It reports whether the call prevented the
	// callback from firing.
	Stop() bool
}

// Clock abstracts the two cooperative waits the engine uses: the debounce
// window on continuous input and the cosmetic-removal window on option
// toggles. Tests substitute a manual clock to make both deterministic.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, fn func()) Timer
}

// systemClock implements Clock with the real time package.
type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// SystemClock returns the wall clock. This is the default for engines that
// are not given an explicit Clock.
func SystemClock() Clock { return systemClock{} }
