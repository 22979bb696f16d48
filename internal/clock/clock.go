// Package clock is the countdown's time source.
//
// Production code takes a Clock instead of calling time.Now or time.After
// directly; Real() wraps the time package and Fake() gives tests a clock
// that only moves when Advance is called.
package clock

import "time"

// Clock returns the current wall-clock instant and provides the timed wait
// the scheduler blocks on between ticks.
type Clock interface {
	Now() time.Time

	// After returns a channel that receives once d has elapsed. If d <= 0 the
	// channel is ready immediately.
	After(d time.Duration) <-chan time.Time
}

// Real returns a Clock backed by the standard time package.
func Real() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }
