package internal

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// NextRun returns the first activation of the standard cron schedule strictly
// after t, in t's location.
func NextRun(schedule string, t time.Time) (time.Time, error) {
	s, err := cron.ParseStandard(schedule)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse schedule %q: %w", schedule, err)
	}
	return s.Next(t), nil
}
