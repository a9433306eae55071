package models

import (
	"fmt"
	"time"

	"wfm-planner/errors"
)

// DateLayout is the canonical key format for historical records.
const DateLayout = "2006-01-02"

// Day truncates t to its calendar date. The result is expressed in UTC so
// that weekday and day-of-month depend only on the calendar fields.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DateKey formats t as YYYY-MM-DD using its own calendar fields.
func DateKey(t time.Time) string {
	return Day(t).Format(DateLayout)
}

// ParseDateKey parses a YYYY-MM-DD key.
func ParseDateKey(key string) (time.Time, error) {
	t, err := time.Parse(DateLayout, key)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w %q: %v", errors.ErrInvalidDateKey, key, err)
	}
	return t, nil
}

// DateRange is an inclusive span of calendar days.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange returns the range starting at start covering days days.
func NewDateRange(start time.Time, days int) DateRange {
	start = Day(start)
	if days < 1 {
		days = 1
	}
	return DateRange{Start: start, End: start.AddDate(0, 0, days-1)}
}

// Valid reports whether End is not before Start.
func (r DateRange) Valid() bool {
	return !Day(r.End).Before(Day(r.Start))
}

// Days lists every calendar day in the range in order.
func (r DateRange) Days() []time.Time {
	if !r.Valid() {
		return nil
	}
	var days []time.Time
	for d := Day(r.Start); !d.After(Day(r.End)); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// MaxRangeDays bounds a requested forecast horizon.
const MaxRangeDays = 3660

// ResolveRange overrides def with optional YYYY-MM-DD bounds and a day
// count. from moves the start and keeps the length; days sets the length;
// to sets the end and wins over days.
func ResolveRange(def DateRange, from, to string, days int) (DateRange, error) {
	r := DateRange{Start: Day(def.Start), End: Day(def.End)}
	length := len(r.Days())

	if from != "" {
		start, err := ParseDateKey(from)
		if err != nil {
			return DateRange{}, err
		}
		r = NewDateRange(start, length)
	}
	if days != 0 {
		if days < 1 || days > MaxRangeDays {
			return DateRange{}, fmt.Errorf("%w: days must be between 1 and %d", errors.ErrInvalidDateRange, MaxRangeDays)
		}
		r = NewDateRange(r.Start, days)
	}
	if to != "" {
		end, err := ParseDateKey(to)
		if err != nil {
			return DateRange{}, err
		}
		r.End = end
	}

	if !r.Valid() {
		return DateRange{}, fmt.Errorf("%w: %s is before %s", errors.ErrInvalidDateRange, DateKey(r.End), DateKey(r.Start))
	}
	if r.End.Sub(r.Start).Hours()/24 >= MaxRangeDays {
		return DateRange{}, fmt.Errorf("%w: longer than %d days", errors.ErrInvalidDateRange, MaxRangeDays)
	}
	return r, nil
}
