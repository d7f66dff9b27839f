package timeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/phaseline/internal/domain"
)

// Granularity is the marker period of a timeline, ordered fine to coarse.
type Granularity int

const (
	Day Granularity = iota
	Week
	Month
	Quarter
	Year
)

var granularityNames = [...]string{"day", "week", "month", "quarter", "year"}

func (g Granularity) String() string {
	if g < Day || g > Year {
		return fmt.Sprintf("granularity(%d)", int(g))
	}
	return granularityNames[g]
}

// ParseGranularity parses a granularity name (case-insensitive).
func ParseGranularity(s string) (Granularity, error) {
	for i, name := range granularityNames {
		if strings.EqualFold(s, name) {
			return Granularity(i), nil
		}
	}
	return Day, domain.Invalid("granularity", domain.RuleUnknownRef,
		"unknown granularity %q (expected day, week, month, quarter or year)", s)
}

// PeriodDays is the nominal length of one period, used to estimate marker
// counts.
func (g Granularity) PeriodDays() int {
	switch g {
	case Week:
		return 7
	case Month:
		return 30
	case Quarter:
		return 91
	case Year:
		return 365
	default:
		return 1
	}
}

// Coarser returns the next coarser granularity; Year stays Year.
func (g Granularity) Coarser() Granularity {
	if g >= Year {
		return Year
	}
	return g + 1
}

// Finer returns the next finer granularity; Day stays Day.
func (g Granularity) Finer() Granularity {
	if g <= Day {
		return Day
	}
	return g - 1
}

// PeriodStart returns the first day of the period of g containing t. Weeks
// start on Monday.
func PeriodStart(t time.Time, g Granularity) time.Time {
	d := domain.Day(t)
	y, m, _ := d.Date()
	switch g {
	case Week:
		offset := (int(d.Weekday()) + 6) % 7
		return d.AddDate(0, 0, -offset)
	case Month:
		return domain.Date(y, m, 1)
	case Quarter:
		qm := time.Month((int(m)-1)/3*3 + 1)
		return domain.Date(y, qm, 1)
	case Year:
		return domain.Date(y, time.January, 1)
	default:
		return d
	}
}

// PeriodEnd returns the last day of the period of g containing t.
func PeriodEnd(t time.Time, g Granularity) time.Time {
	start := PeriodStart(t, g)
	switch g {
	case Week:
		return start.AddDate(0, 0, 6)
	case Month:
		return start.AddDate(0, 1, -1)
	case Quarter:
		return start.AddDate(0, 3, -1)
	case Year:
		return start.AddDate(1, 0, -1)
	default:
		return start
	}
}

// Label renders a marker date at granularity g.
func Label(t time.Time, g Granularity) string {
	switch g {
	case Month:
		return t.Format("Jan 2006")
	case Quarter:
		return fmt.Sprintf("Q%d %d", (int(t.Month())-1)/3+1, t.Year())
	case Year:
		return t.Format("2006")
	default:
		return t.Format("Jan 2")
	}
}
