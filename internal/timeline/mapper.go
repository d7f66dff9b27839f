// Package timeline projects dates onto a percentage axis for the Gantt
// renderer and picks a legible marker granularity for the available width.
package timeline

import (
	"math"
	"time"

	"github.com/alexanderramin/phaseline/internal/calendar"
	"github.com/alexanderramin/phaseline/internal/domain"
)

// Marker is one axis tick.
type Marker struct {
	Date    time.Time
	Percent float64
	Label   string
}

// Span is a horizontal extent in percent of the extended window.
type Span struct {
	Left  float64
	Width float64
}

// Mapper maps dates in a visible window to [0,100]. The window end is
// extended to the natural boundary of the granularity so the last marker is
// never truncated.
type Mapper struct {
	start       time.Time
	end         time.Time
	granularity Granularity
	totalDays   int
}

// NewMapper builds a Mapper over [start, end] at granularity g.
func NewMapper(start, end time.Time, g Granularity) (*Mapper, error) {
	s, e := domain.Day(start), domain.Day(end)
	if e.Before(s) {
		return nil, &calendar.InvalidRangeError{Start: s, End: e}
	}
	ext := PeriodEnd(e, g)
	return &Mapper{
		start:       s,
		end:         ext,
		granularity: g,
		totalDays:   domain.DaysBetween(s, ext) + 1,
	}, nil
}

func (m *Mapper) Start() time.Time         { return m.start }
func (m *Mapper) End() time.Time           { return m.end }
func (m *Mapper) Granularity() Granularity { return m.granularity }

// TotalDays is the inclusive length of the extended window.
func (m *Mapper) TotalDays() int { return m.totalDays }

// Markers returns the window start followed by the start of every later
// period up to the extended end.
func (m *Mapper) Markers() []Marker {
	var out []Marker
	for cur := m.start; !cur.After(m.end); cur = PeriodEnd(cur, m.granularity).AddDate(0, 0, 1) {
		out = append(out, Marker{
			Date:    cur,
			Percent: m.PositionOf(cur),
			Label:   Label(cur, m.granularity),
		})
	}
	return out
}

// PositionOf maps d linearly onto [0,100] against the extended window.
// Dates outside the window clamp to the edges.
func (m *Mapper) PositionOf(d time.Time) float64 {
	offset := domain.DaysBetween(m.start, d)
	pct := float64(offset) / float64(m.totalDays) * 100
	return clampPct(pct)
}

// BarSpan returns the inclusive-day extent of [start, end]. The width counts
// end-start+1 days so single-day items stay visible.
func (m *Mapper) BarSpan(start, end time.Time) Span {
	left := m.PositionOf(start)
	days := domain.DaysBetween(start, end) + 1
	if days < 1 {
		days = 1
	}
	width := float64(days) / float64(m.totalDays) * 100
	width = math.Min(width, 100-left)
	return Span{Left: left, Width: math.Max(width, 0)}
}

func clampPct(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}
