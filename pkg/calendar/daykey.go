package calendar

import (
	"fmt"
	"time"
)

// DayKey identifies a calendar day in the reference timezone an Index was
// built with. It is a plain year/month/day value, distinct from an instant,
// and is comparable so it can be used as a map key.
type DayKey struct {
	Year  int
	Month time.Month
	Day   int
}

// String renders the key as YYYY-MM-DD, the wire form the dashboard uses
func (k DayKey) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", k.Year, int(k.Month), k.Day)
}

// ParseDayKey parses a YYYY-MM-DD string into a DayKey
func ParseDayKey(s string) (DayKey, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return DayKey{}, fmt.Errorf("invalid day key %q: %w", s, err)
	}
	y, m, d := t.Date()
	return DayKey{Year: y, Month: m, Day: d}, nil
}

// Time returns the first instant of the day in the given timezone
func (k DayKey) Time(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(k.Year, k.Month, k.Day, 0, 0, 0, 0, loc)
}

// Before reports whether k is an earlier calendar day than other
func (k DayKey) Before(other DayKey) bool {
	if k.Year != other.Year {
		return k.Year < other.Year
	}
	if k.Month != other.Month {
		return k.Month < other.Month
	}
	return k.Day < other.Day
}

// DayOf maps an instant to the calendar day it falls on in the given
// timezone. Days are half-open intervals [day, day+1): an instant exactly
// at midnight belongs to the day that begins there, not the day that just
// ended.
func DayOf(t time.Time, loc *time.Location) DayKey {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return DayKey{Year: y, Month: m, Day: d}
}

// Today returns the day key for the current instant in the given timezone,
// used by the rendering layer to highlight the current day.
func Today(now time.Time, loc *time.Location) DayKey {
	return DayOf(now, loc)
}

// MonthWindow produces the full week-aligned grid of day keys a calendar UI
// needs to render a month: it starts at the week-start day on or before the
// 1st of the month and ends at the week-end day on or after the last day of
// the month, yielding 35 or 42 entries. Week start is a parameter because
// locales differ on it.
//
// Day keys are derived with calendar arithmetic in the target timezone, not
// fixed 24-hour offsets, so months spanning a DST transition still produce
// exactly one key per calendar day. Noon anchors sidestep zones where
// midnight does not exist on the transition day.
func MonthWindow(year int, month time.Month, loc *time.Location, weekStart time.Weekday) []DayKey {
	if loc == nil {
		loc = time.UTC
	}

	first := time.Date(year, month, 1, 12, 0, 0, 0, loc)
	last := time.Date(year, month+1, 0, 12, 0, 0, 0, loc)

	lead := (int(first.Weekday()) - int(weekStart) + 7) % 7
	trail := (int(weekStart) + 6 - int(last.Weekday()) + 7) % 7
	total := lead + last.Day() + trail

	keys := make([]DayKey, 0, total)
	for i := 0; i < total; i++ {
		d := time.Date(year, month, 1-lead+i, 12, 0, 0, 0, loc)
		y, m, dd := d.Date()
		keys = append(keys, DayKey{Year: y, Month: m, Day: dd})
	}
	return keys
}
