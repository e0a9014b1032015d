package clock

import (
	"time"
)

type Interface interface {
	Now() time.Time
}

// Clock reports the current time in a fixed location so that dates written to
// the ledger follow the group's calendar rather than the host's.
type Clock struct {
	loc *time.Location
}

func NewZonedClock(location *time.Location) *Clock {
	return &Clock{loc: location}
}

func (c *Clock) Now() time.Time {
	return time.Now().In(c.loc)
}

// StartOfDay truncates t to 00:00:00.000 in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns 23:59:59.999 of t's day in t's location.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), t.Location())
}
