// Package clock abstracts wall-clock access so attribute-metadata timestamps
// stay deterministic under test.
package clock

import "time"

// Clock supplies the current time. The Directory Agent never calls
// time.Now() directly; it threads a Clock through so commit timestamps in
// §8 of the spec are reproducible.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

// System returns a Clock backed by the real wall clock.
func System() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now()
}
