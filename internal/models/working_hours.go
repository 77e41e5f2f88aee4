package models

import (
	"fmt"
	"time"
)

// TimeOfDay is an offset from local midnight
type TimeOfDay time.Duration

// ParseTimeOfDay parses "HH:MM" or "HH:MM:SS"
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			d := time.Duration(t.Hour())*time.Hour +
				time.Duration(t.Minute())*time.Minute +
				time.Duration(t.Second())*time.Second
			return TimeOfDay(d), nil
		}
	}
	return 0, fmt.Errorf("invalid time of day %q", s)
}

func (t TimeOfDay) String() string {
	d := time.Duration(t)
	return fmt.Sprintf("%02d:%02d", int(d.Hours()), int(d.Minutes())%60)
}

// BusinessHours is the open window of a single weekday, [Start, End)
type BusinessHours struct {
	Start TimeOfDay
	End   TimeOfDay
}

// WorkingHours holds business hours per weekday, indexed by time.Weekday.
// A nil entry means the day has no business hours.
type WorkingHours [7]*BusinessHours

// DefaultWorkingHours is Mon-Thu 10:00-17:00, Fri 10:00-15:00
func DefaultWorkingHours() WorkingHours {
	week := func(start, end time.Duration) *BusinessHours {
		return &BusinessHours{Start: TimeOfDay(start), End: TimeOfDay(end)}
	}
	return WorkingHours{
		time.Sunday:    nil,
		time.Monday:    week(10*time.Hour, 17*time.Hour),
		time.Tuesday:   week(10*time.Hour, 17*time.Hour),
		time.Wednesday: week(10*time.Hour, 17*time.Hour),
		time.Thursday:  week(10*time.Hour, 17*time.Hour),
		time.Friday:    week(10*time.Hour, 15*time.Hour),
		time.Saturday:  nil,
	}
}

// IsWorkingDay checks if the given weekday has business hours
func (w WorkingHours) IsWorkingDay(weekday time.Weekday) bool {
	return w[weekday] != nil
}

// Validate checks every open day has start before end within one day
func (w WorkingHours) Validate() error {
	hasOpenDay := false
	for day, hours := range w {
		if hours == nil {
			continue
		}
		hasOpenDay = true
		if hours.Start < 0 || hours.End > TimeOfDay(24*time.Hour) || hours.Start >= hours.End {
			return fmt.Errorf("%w: %s %s-%s", ErrInvalidWorkingHours, time.Weekday(day), hours.Start, hours.End)
		}
	}
	if !hasOpenDay {
		return fmt.Errorf("%w: at least one working day must be configured", ErrInvalidWorkingHours)
	}
	return nil
}
