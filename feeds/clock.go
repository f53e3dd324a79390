package feeds

import "time"

// Clock supplies timestamps for updatedAt stamping
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

// ClockFunc adapts a function to a Clock
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time {
	return f()
}
