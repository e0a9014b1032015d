package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const (
	DateLayout = "2006/01/02"
	TimeLayout = "15:04"
)

var (
	// Header is the first row of the sheet backend.
	Header = []string{"名前", "日付", "参加時刻", "退室時刻", "勉強時間"}

	ErrRowNotFound = errors.New("row not found")

	dateLayouts = []string{DateLayout, "2006/1/2", "2006-01-02"}
	timeLayouts = []string{TimeLayout, "15:04:05", "3:04"}
)

type (
	// Row is a single join/leave session as stored in the ledger.
	// ID references the row inside its backend and is assigned by the store.
	Row struct {
		ID         int64
		Name       string
		DateJoined string
		TimeJoined string
		TimeLeft   string
		Duration   string
	}

	Store interface {
		Append(ctx context.Context, row Row) error
		// Rows returns data rows in append order.
		Rows(ctx context.Context) ([]Row, error)
		// Complete sets the leave time and duration of the row with the given ID.
		Complete(ctx context.Context, id int64, timeLeft, duration string) error
	}
)

func NewRow(name string, joinedAt time.Time) Row {
	return Row{
		Name:       name,
		DateJoined: joinedAt.Format(DateLayout),
		TimeJoined: joinedAt.Format(TimeLayout),
	}
}

func (r Row) IsOpen() bool {
	return r.TimeLeft == ""
}

func (r Row) IsClosed() bool {
	return r.DateJoined != "" && r.TimeJoined != "" && r.TimeLeft != ""
}

// JoinedAt rebuilds the join instant: the time of day comes from TimeJoined,
// the calendar day from DateJoined.
func (r Row) JoinedAt(loc *time.Location) (time.Time, error) {
	date, err := ParseDate(r.DateJoined, loc)
	if err != nil {
		return time.Time{}, err
	}
	clock, err := ParseClock(r.TimeJoined)
	if err != nil {
		return time.Time{}, err
	}
	y, m, d := date.Date()
	return time.Date(y, m, d,
		int(clock/time.Hour), int(clock%time.Hour/time.Minute), int(clock%time.Minute/time.Second),
		0, loc), nil
}

// ParseDate returns midnight of the given date in loc.
func ParseDate(value string, loc *time.Location) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("parse date %q", value)
}

// ParseClock returns the offset from midnight of a time-of-day value.
func ParseClock(value string) (time.Duration, error) {
	for _, layout := range timeLayouts {
		t, err := time.Parse(layout, value)
		if err != nil {
			continue
		}
		return time.Duration(t.Hour())*time.Hour +
			time.Duration(t.Minute())*time.Minute +
			time.Duration(t.Second())*time.Second, nil
	}
	return 0, fmt.Errorf("parse time %q", value)
}

// FindOpen scans rows from the newest to the oldest and returns the first open
// row whose name matches.
func FindOpen(rows []Row, name string) (Row, bool) {
	for i := len(rows) - 1; i >= 0; i-- {
		if rows[i].Name == name && rows[i].IsOpen() {
			return rows[i], true
		}
	}
	return Row{}, false
}
