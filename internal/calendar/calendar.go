// Package calendar does holiday-aware business-day arithmetic on civil
// dates. Weekends are Saturday and Sunday; holidays are the union of a
// project's own holidays and a named regional preset supplied as
// configuration.
package calendar

import (
	"fmt"
	"time"

	"github.com/alexanderramin/phaseline/internal/domain"
)

// InvalidRangeError is returned when a range ends before it starts.
type InvalidRangeError struct {
	Start time.Time
	End   time.Time
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid range: end %s is before start %s",
		e.End.Format(domain.DateLayout), e.Start.Format(domain.DateLayout))
}

func (e *InvalidRangeError) Unwrap() error { return domain.ErrValidation }

// HolidaySet is a set of civil dates keyed at UTC midnight.
type HolidaySet map[time.Time]string

// NewHolidaySet builds a set from holidays. When two holidays share a date
// the first name wins.
func NewHolidaySet(holidays ...domain.Holiday) HolidaySet {
	set := make(HolidaySet, len(holidays))
	for _, h := range holidays {
		d := domain.Day(h.Date)
		if _, ok := set[d]; !ok {
			set[d] = h.Name
		}
	}
	return set
}

// Contains reports whether d is a holiday.
func (s HolidaySet) Contains(d time.Time) bool {
	_, ok := s[domain.Day(d)]
	return ok
}

// Union returns a new set holding the dates of s and other.
func (s HolidaySet) Union(other HolidaySet) HolidaySet {
	out := make(HolidaySet, len(s)+len(other))
	for d, n := range s {
		out[d] = n
	}
	for d, n := range other {
		if _, ok := out[d]; !ok {
			out[d] = n
		}
	}
	return out
}

// IsWeekend reports whether d is a Saturday or Sunday.
func IsWeekend(d time.Time) bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// IsWorkingDay reports whether d is neither a weekend nor a holiday.
func IsWorkingDay(d time.Time, holidays HolidaySet) bool {
	return !IsWeekend(d) && !holidays.Contains(d)
}

func checkRange(start, end time.Time) (time.Time, time.Time, error) {
	s, e := domain.Day(start), domain.Day(end)
	if e.Before(s) {
		return s, e, &InvalidRangeError{Start: s, End: e}
	}
	return s, e, nil
}

// WorkingDays returns the inclusive number of days in [start, end] that are
// not weekends and not in holidays.
func WorkingDays(start, end time.Time, holidays HolidaySet) (int, error) {
	s, e, err := checkRange(start, end)
	if err != nil {
		return 0, err
	}
	n := 0
	for d := s; !d.After(e); d = d.AddDate(0, 0, 1) {
		if IsWorkingDay(d, holidays) {
			n++
		}
	}
	return n, nil
}

// CalendarDays returns the inclusive number of days in [start, end].
func CalendarDays(start, end time.Time) (int, error) {
	s, e, err := checkRange(start, end)
	if err != nil {
		return 0, err
	}
	return domain.DaysBetween(s, e) + 1, nil
}

// AddWorkingDays returns the date on which a span of n working days that
// begins on start ends. Non-working start dates roll forward.
func AddWorkingDays(start time.Time, n int, holidays HolidaySet) (time.Time, error) {
	if n < 1 {
		return time.Time{}, domain.Invalid("working_days", domain.RuleDateRange, "must be at least 1, got %d", n)
	}
	d := domain.Day(start)
	for {
		if IsWorkingDay(d, holidays) {
			n--
			if n == 0 {
				return d, nil
			}
		}
		d = d.AddDate(0, 0, 1)
	}
}

// FormatAsMonths renders a calendar-day count with a fixed 30-day month,
// e.g. 63 -> "2mo 3d". It is an estimate label, not a billing figure.
func FormatAsMonths(days int) string {
	if days <= 0 {
		return "0d"
	}
	months, rem := days/30, days%30
	switch {
	case months == 0:
		return fmt.Sprintf("%dd", rem)
	case rem == 0:
		return fmt.Sprintf("%dmo", months)
	default:
		return fmt.Sprintf("%dmo %dd", months, rem)
	}
}
