package engine

import "time"

// Clock abstracts wall time so the loop can be paced deterministically in
// tests.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type realClock struct{}

func (realClock) Now() time.Time        { return time.Now() }
func (realClock) Sleep(d time.Duration) { time.Sleep(d) }

// NewClock returns the wall clock.
func NewClock() Clock {
	return realClock{}
}
