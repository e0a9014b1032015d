package summary

import (
	"sort"
	"time"

	"github.com/Roma7-7-7/study-attendance-bot/internal/ledger"
	"github.com/Roma7-7-7/study-attendance-bot/pkg/clock"
)

const windowDays = 7

type (
	Window struct {
		Start time.Time
		End   time.Time
	}

	Total struct {
		Name    string
		Elapsed time.Duration
	}

	// Skipped describes a closed row that could not be parsed.
	Skipped struct {
		Row ledger.Row
		Err error
	}
)

// WindowAt returns the trailing window for a run at now: from midnight seven
// days ago to the last millisecond of today.
func WindowAt(now time.Time) Window {
	return Window{
		Start: clock.StartOfDay(now.AddDate(0, 0, -windowDays)),
		End:   clock.EndOfDay(now),
	}
}

func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Aggregate sums the time-of-day delta between join and leave per name over
// closed rows whose join date falls in the window. A negative delta means the
// session crossed midnight and is wrapped by a day. Totals are ranked by
// elapsed time, descending, ties keep first-seen order.
func Aggregate(rows []ledger.Row, w Window) ([]Total, []Skipped) {
	var (
		totals  []Total
		index   = map[string]int{}
		skipped []Skipped
	)

	for _, row := range rows {
		if !row.IsClosed() {
			continue
		}

		date, err := ledger.ParseDate(row.DateJoined, w.Start.Location())
		if err != nil {
			skipped = append(skipped, Skipped{Row: row, Err: err})
			continue
		}
		if !w.Contains(date) {
			continue
		}

		elapsed, err := clockDelta(row.TimeJoined, row.TimeLeft)
		if err != nil {
			skipped = append(skipped, Skipped{Row: row, Err: err})
			continue
		}

		i, ok := index[row.Name]
		if !ok {
			i = len(totals)
			index[row.Name] = i
			totals = append(totals, Total{Name: row.Name})
		}
		totals[i].Elapsed += elapsed
	}

	sort.SliceStable(totals, func(i, j int) bool {
		return totals[i].Elapsed > totals[j].Elapsed
	})

	return totals, skipped
}

func clockDelta(joined, left string) (time.Duration, error) {
	from, err := ledger.ParseClock(joined)
	if err != nil {
		return 0, err
	}
	to, err := ledger.ParseClock(left)
	if err != nil {
		return 0, err
	}

	delta := to - from
	if delta < 0 {
		delta += 24 * time.Hour
	}
	return delta, nil
}
