package models

import "time"

// Clock abstracts the current time so tests can pin "now".
type Clock interface {
	Now() time.Time
}

// SystemClock returns wall-clock time in a fixed location.
type SystemClock struct {
	Location *time.Location
}

// Now returns the current time.
func (c SystemClock) Now() time.Time {
	if c.Location == nil {
		return time.Now()
	}
	return time.Now().In(c.Location)
}

// FixedClock always returns the same instant.
type FixedClock time.Time

// Now returns the pinned instant.
func (c FixedClock) Now() time.Time {
	return time.Time(c)
}
