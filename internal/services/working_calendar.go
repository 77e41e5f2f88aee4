package services

import (
	"fmt"
	"time"

	"github.com/alimgiray/prslo/internal/models"
)

const holidayLayout = "2006-01-02"

// maxCalendarScanDays bounds backwards walks over calendars with long closures
const maxCalendarScanDays = 3660

// WorkingCalendar measures elapsed time inside business hours.
// It is immutable after construction and safe for concurrent use.
type WorkingCalendar struct {
	hours    models.WorkingHours
	holidays map[string]struct{}
	loc      *time.Location
}

// NewWorkingCalendar creates a calendar evaluated in loc. Holidays are YYYY-MM-DD dates.
func NewWorkingCalendar(hours models.WorkingHours, holidays []string, loc *time.Location) (*WorkingCalendar, error) {
	if err := hours.Validate(); err != nil {
		return nil, err
	}
	if loc == nil {
		loc = time.Local
	}

	set := make(map[string]struct{}, len(holidays))
	for _, h := range holidays {
		if _, err := time.Parse(holidayLayout, h); err != nil {
			return nil, fmt.Errorf("%w: %q", models.ErrInvalidHoliday, h)
		}
		set[h] = struct{}{}
	}

	return &WorkingCalendar{hours: hours, holidays: set, loc: loc}, nil
}

// Location returns the zone business hours are evaluated in
func (c *WorkingCalendar) Location() *time.Location {
	return c.loc
}

// IsHoliday checks whether the calendar day of t is a holiday
func (c *WorkingCalendar) IsHoliday(t time.Time) bool {
	_, ok := c.holidays[t.In(c.loc).Format(holidayLayout)]
	return ok
}

// WorkingDurationBetween returns the business time between a and b.
// The arguments may be given in either order; the result is never negative.
func (c *WorkingCalendar) WorkingDurationBetween(a, b time.Time) time.Duration {
	if a.After(b) {
		a, b = b, a
	}
	start := a.In(c.loc)
	end := b.In(c.loc)

	var total time.Duration
	for day := startOfDay(start); !day.After(end); day = day.AddDate(0, 0, 1) {
		open, closing, ok := c.window(day)
		if !ok {
			continue
		}
		lo := laterOf(open, start)
		hi := earlierOf(closing, end)
		if hi.After(lo) {
			total += hi.Sub(lo)
		}
	}
	return total
}

// WorkingHoursBetween is WorkingDurationBetween in fractional hours
func (c *WorkingCalendar) WorkingHoursBetween(a, b time.Time) float64 {
	return c.WorkingDurationBetween(a, b).Hours()
}

// SubtractWorkingTime returns the instant d of business time before t
func (c *WorkingCalendar) SubtractWorkingTime(t time.Time, d time.Duration) time.Time {
	cursor := t.In(c.loc)
	remaining := d
	if remaining <= 0 {
		return cursor
	}

	day := startOfDay(cursor)
	for i := 0; i < maxCalendarScanDays; i++ {
		if open, closing, ok := c.window(day); ok {
			hi := earlierOf(closing, cursor)
			if hi.After(open) {
				available := hi.Sub(open)
				if available >= remaining {
					return hi.Add(-remaining)
				}
				remaining -= available
			}
		}
		day = day.AddDate(0, 0, -1)
		cursor = day.AddDate(0, 0, 1)
	}
	return cursor
}

// window returns the business hours of the given local day
func (c *WorkingCalendar) window(day time.Time) (time.Time, time.Time, bool) {
	hours := c.hours[day.Weekday()]
	if hours == nil {
		return time.Time{}, time.Time{}, false
	}
	if _, holiday := c.holidays[day.Format(holidayLayout)]; holiday {
		return time.Time{}, time.Time{}, false
	}
	return atTimeOfDay(day, hours.Start), atTimeOfDay(day, hours.End), true
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// atTimeOfDay uses wall clock fields so DST transitions keep the configured hours
func atTimeOfDay(day time.Time, tod models.TimeOfDay) time.Time {
	d := time.Duration(tod)
	y, m, dd := day.Date()
	h := int(d / time.Hour)
	minute := int((d % time.Hour) / time.Minute)
	sec := int((d % time.Minute) / time.Second)
	return time.Date(y, m, dd, h, minute, sec, 0, day.Location())
}

func laterOf(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func earlierOf(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
