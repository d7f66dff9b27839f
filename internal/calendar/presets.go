package calendar

import (
	"sort"
	"strings"
	"time"

	"github.com/alexanderramin/phaseline/internal/domain"
)

// Presets maps a region tag (e.g. "MY") to its public holidays.
type Presets map[string][]domain.Holiday

// Calendar resolves the effective holiday set of a project from its own
// holidays and the configured regional presets.
type Calendar struct {
	presets Presets
}

// New creates a Calendar over the given presets. Region tags are matched
// case-insensitively.
func New(presets Presets) *Calendar {
	norm := make(Presets, len(presets))
	for region, hs := range presets {
		key := strings.ToUpper(region)
		norm[key] = append(norm[key], hs...)
	}
	return &Calendar{presets: norm}
}

// Regions returns the configured region tags in sorted order.
func (c *Calendar) Regions() []string {
	regions := make([]string, 0, len(c.presets))
	for r := range c.presets {
		regions = append(regions, r)
	}
	sort.Strings(regions)
	return regions
}

// Preset returns the holidays of a region.
func (c *Calendar) Preset(region string) (HolidaySet, bool) {
	hs, ok := c.presets[strings.ToUpper(region)]
	if !ok {
		return HolidaySet{}, false
	}
	return NewHolidaySet(hs...), true
}

// HolidaysFor returns the union of the project's holidays and its region's
// preset. An unknown region contributes nothing.
func (c *Calendar) HolidaysFor(p *domain.Project) HolidaySet {
	own := NewHolidaySet(p.Holidays...)
	if p.Region == "" {
		return own
	}
	preset, _ := c.Preset(p.Region)
	return own.Union(preset)
}

// ProjectWorkingDays counts working days in [start, end] using the
// project's effective holiday set.
func (c *Calendar) ProjectWorkingDays(p *domain.Project, start, end time.Time) (int, error) {
	return WorkingDays(start, end, c.HolidaysFor(p))
}

// Holidays lists the holidays of set that fall in [start, end], in date
// order.
func Holidays(set HolidaySet, start, end time.Time) []domain.Holiday {
	s, e := domain.Day(start), domain.Day(end)
	var out []domain.Holiday
	for d, name := range set {
		if d.Before(s) || d.After(e) {
			continue
		}
		out = append(out, domain.Holiday{Date: d, Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}
