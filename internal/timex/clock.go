package timex

import "time"

// Now returns the current UTC time truncated to microseconds, the precision
// both local and remote stores keep.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// Max returns the later of a and b.
func Max(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}
