package calendar

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/alexanderramin/phaseline/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(y int, m time.Month, day int) time.Time { return domain.Date(y, m, day) }

func TestWorkingDays_FullWeek(t *testing.T) {
	// Mon 5 Jan 2026 .. Fri 9 Jan 2026
	n, err := WorkingDays(d(2026, 1, 5), d(2026, 1, 9), nil)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}

func TestWorkingDays_SingleDay(t *testing.T) {
	tests := []struct {
		name     string
		day      time.Time
		holidays HolidaySet
		want     int
	}{
		{"weekday", d(2026, 1, 7), nil, 1},
		{"saturday", d(2026, 1, 10), nil, 0},
		{"sunday", d(2026, 1, 11), nil, 0},
		{"holiday", d(2026, 1, 1), NewHolidaySet(domain.Holiday{Date: d(2026, 1, 1), Name: "New Year"}), 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			n, err := WorkingDays(tc.day, tc.day, tc.holidays)
			require.NoError(t, err)
			assert.Equal(t, tc.want, n)
		})
	}
}

func TestWorkingDays_EndBeforeStart(t *testing.T) {
	_, err := WorkingDays(d(2026, 1, 9), d(2026, 1, 5), nil)
	require.Error(t, err)

	var rangeErr *InvalidRangeError
	require.True(t, errors.As(err, &rangeErr))
	assert.True(t, errors.Is(err, domain.ErrValidation))
	assert.Equal(t, d(2026, 1, 9), rangeErr.Start)

	_, err = CalendarDays(d(2026, 1, 9), d(2026, 1, 5))
	assert.ErrorAs(t, err, &rangeErr)
}

func TestWorkingDays_HolidayMatchIsDateOnly(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*3600)
	holiday := domain.Holiday{Date: time.Date(2026, 1, 7, 23, 30, 0, 0, loc), Name: "Local"}

	n, err := WorkingDays(d(2026, 1, 5), d(2026, 1, 9), NewHolidaySet(holiday))
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestWorkingDays_January2026(t *testing.T) {
	holidays := NewHolidaySet(domain.Holiday{Date: d(2026, 1, 1), Name: "New Year"})
	n, err := WorkingDays(d(2026, 1, 1), d(2026, 1, 31), holidays)
	require.NoError(t, err)
	// 22 weekdays in Jan 2026 minus New Year's Day.
	assert.Equal(t, 21, n)

	cal, err := CalendarDays(d(2026, 1, 1), d(2026, 1, 31))
	require.NoError(t, err)
	assert.Equal(t, 31, cal)
}

// TestWorkingDays_NeverExceedsCalendarDays property-tests the bound
// workingDays <= calendarDays over random ranges and holiday sets.
func TestWorkingDays_NeverExceedsCalendarDays(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	base := d(2025, 1, 1)

	for trial := 0; trial < 300; trial++ {
		start := base.AddDate(0, 0, rng.Intn(700))
		end := start.AddDate(0, 0, rng.Intn(120))

		var hs []domain.Holiday
		for i := 0; i < rng.Intn(15); i++ {
			hs = append(hs, domain.Holiday{Date: start.AddDate(0, 0, rng.Intn(150)-10), Name: "h"})
		}
		set := NewHolidaySet(hs...)

		wd, err := WorkingDays(start, end, set)
		require.NoError(t, err)
		cd, err := CalendarDays(start, end)
		require.NoError(t, err)

		assert.LessOrEqual(t, wd, cd, "trial %d: %s..%s", trial, start, end)
		assert.GreaterOrEqual(t, wd, 0)
	}
}

func TestWorkingDays_FiveCenturies(t *testing.T) {
	start, end := d(2026, 1, 1), d(2526, 1, 1)

	wd, err := WorkingDays(start, end, nil)
	require.NoError(t, err)
	cd, err := CalendarDays(start, end)
	require.NoError(t, err)

	assert.Equal(t, 182622, cd)
	assert.Equal(t, 130444, wd)
	assert.LessOrEqual(t, wd, cd)
}

func TestFormatAsMonths(t *testing.T) {
	tests := []struct {
		days int
		want string
	}{
		{0, "0d"},
		{-4, "0d"},
		{3, "3d"},
		{30, "1mo"},
		{63, "2mo 3d"},
		{365, "12mo 5d"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, FormatAsMonths(tc.days), "days=%d", tc.days)
	}
}

func TestAddWorkingDays(t *testing.T) {
	holidays := NewHolidaySet(domain.Holiday{Date: d(2026, 1, 7), Name: "Mid-week"})

	end, err := AddWorkingDays(d(2026, 1, 5), 5, holidays)
	require.NoError(t, err)
	// Mon..Fri minus Wednesday rolls into next Monday.
	assert.Equal(t, d(2026, 1, 12), end)

	end, err = AddWorkingDays(d(2026, 1, 10), 1, nil)
	require.NoError(t, err)
	assert.Equal(t, d(2026, 1, 12), end, "weekend start rolls forward")

	_, err = AddWorkingDays(d(2026, 1, 5), 0, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestCalendar_HolidaysForUnionsProjectAndRegion(t *testing.T) {
	cal := New(Presets{
		"my": {{Date: d(2026, 8, 31), Name: "Merdeka"}},
	})
	p := &domain.Project{
		Region:   "MY",
		Holidays: []domain.Holiday{{Date: d(2026, 8, 28), Name: "Go-live freeze"}},
	}

	set := cal.HolidaysFor(p)
	assert.True(t, set.Contains(d(2026, 8, 31)))
	assert.True(t, set.Contains(d(2026, 8, 28)))
	assert.Len(t, set, 2)

	n, err := cal.ProjectWorkingDays(p, d(2026, 8, 24), d(2026, 9, 4))
	require.NoError(t, err)
	assert.Equal(t, 8, n)

	assert.Equal(t, []string{"MY"}, cal.Regions())
}

func TestCalendar_UnknownRegionContributesNothing(t *testing.T) {
	cal := New(nil)
	set := cal.HolidaysFor(&domain.Project{Region: "ZZ"})
	assert.Empty(t, set)
}

func TestHolidays_InRangeSorted(t *testing.T) {
	set := NewHolidaySet(
		domain.Holiday{Date: d(2026, 12, 25), Name: "Christmas"},
		domain.Holiday{Date: d(2026, 5, 1), Name: "Labour Day"},
		domain.Holiday{Date: d(2027, 1, 1), Name: "New Year"},
	)
	got := Holidays(set, d(2026, 1, 1), d(2026, 12, 31))
	require.Len(t, got, 2)
	assert.Equal(t, "Labour Day", got[0].Name)
	assert.Equal(t, "Christmas", got[1].Name)
}
