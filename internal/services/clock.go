package services

import "time"

type Clock func() time.Time

// SystemClock truncates to microseconds so values survive a Postgres round trip unchanged.
func SystemClock() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
