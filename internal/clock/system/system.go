// Package system provides the wall clock used to stamp pipeline output.
package system

import "time"

// Clock implements the Now() time.Time clock interfaces using time.Now.
type Clock struct{}

// New creates a new Clock.
func New() *Clock {
	return &Clock{}
}

// Now returns the current time in the local zone, which is how load
// timestamps and output file names are rendered.
func (Clock) Now() time.Time {
	return time.Now()
}

// Fixed always reports the same instant. It stamps reproducible output.
type Fixed time.Time

// Now returns the fixed instant.
func (f Fixed) Now() time.Time {
	return time.Time(f)
}
