// Package clock abstracts wall-clock reads so duration math is
// deterministic under test.
package clock

import "time"

// Clock supplies timestamps with second resolution. Every compound store
// operation reads the clock exactly once and uses that value throughout.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}

// System returns a Clock backed by time.Now, truncated to whole seconds.
func System() Clock {
	return systemClock{}
}
