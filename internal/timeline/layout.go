package timeline

import (
	"time"

	"github.com/alexanderramin/phaseline/internal/domain"
)

type BarKind string

const (
	BarPhase   BarKind = "phase"
	BarTask    BarKind = "task"
	BarSupport BarKind = "support"
)

// Bar is one row of the Gantt layout.
type Bar struct {
	ID    string
	Name  string
	Kind  BarKind
	Start time.Time
	End   time.Time
	Span  Span
	Depth int // 0 for phases, 1 for tasks
}

// Layout is everything a renderer needs to draw a project: the chosen
// granularity, the axis markers and one bar per visible phase or task.
type Layout struct {
	Mapper      *Mapper
	Granularity Granularity
	Markers     []Marker
	Bars        []Bar
}

// SupportAnchor returns the date ongoing-support markers are drawn at:
// SupportOffsetDays after the latest standard phase end, or the support
// phase's own start when the project has no standard phases.
func SupportAnchor(p *domain.Project, ph domain.Phase, cfg Config) time.Time {
	if end, ok := p.LatestStandardEnd(); ok {
		return end.AddDate(0, 0, cfg.SupportOffsetDays)
	}
	return domain.Day(ph.StartDate)
}

// SupportMarker places an ongoing-support phase as a fixed-width marker.
// Its own end date never takes part, so a multi-year contract cannot stretch
// the axis.
func SupportMarker(p *domain.Project, ph domain.Phase, m *Mapper, cfg Config) Span {
	left := m.PositionOf(SupportAnchor(p, ph, cfg))
	width := cfg.SupportWidthPct
	if left+width > 100 {
		left = 100 - width
	}
	return Span{Left: clampPct(left), Width: width}
}

// Window returns the date range a layout of p must show: from the earliest
// phase start to the latest standard end, stretched to the support anchor
// when the project has support phases.
func Window(p *domain.Project, cfg Config) (start, end time.Time, err error) {
	found := false
	hasSupport := false
	for _, ph := range p.Phases {
		if ph.IsSupport() {
			hasSupport = true
			if !found {
				start, end, found = domain.Day(ph.StartDate), domain.Day(ph.StartDate), true
			}
			start = domain.MinDate(start, domain.Day(ph.StartDate))
			continue
		}
		if !found {
			start, end, found = domain.Day(ph.StartDate), ph.EndDate(), true
			continue
		}
		start = domain.MinDate(start, domain.Day(ph.StartDate))
		end = domain.MaxDate(end, ph.EndDate())
	}
	if !found {
		return start, end, domain.Invalid("phases", domain.RuleRequired, "project %q has no phases to lay out", p.Name)
	}
	if hasSupport {
		for _, ph := range p.Phases {
			if ph.IsSupport() {
				end = domain.MaxDate(end, SupportAnchor(p, ph, cfg))
			}
		}
	}
	return start, end, nil
}

// BuildLayout lays out p starting from granularity g. When pixelWidth is
// positive the granularity is adapted to it first. Tasks of collapsed phases
// are omitted.
func BuildLayout(p *domain.Project, g Granularity, pixelWidth float64, cfg Config) (*Layout, error) {
	start, end, err := Window(p, cfg)
	if err != nil {
		return nil, err
	}
	if pixelWidth > 0 {
		g = AdaptFully(g, domain.DaysBetween(start, end)+1, pixelWidth, cfg)
	}
	m, err := NewMapper(start, end, g)
	if err != nil {
		return nil, err
	}

	out := &Layout{Mapper: m, Granularity: g, Markers: m.Markers()}
	for _, ph := range p.Phases {
		if ph.IsSupport() {
			anchor := SupportAnchor(p, ph, cfg)
			out.Bars = append(out.Bars, Bar{
				ID: ph.ID, Name: ph.Name, Kind: BarSupport,
				Start: anchor, End: anchor,
				Span: SupportMarker(p, ph, m, cfg),
			})
		} else {
			out.Bars = append(out.Bars, Bar{
				ID: ph.ID, Name: ph.Name, Kind: BarPhase,
				Start: domain.Day(ph.StartDate), End: ph.EndDate(),
				Span: m.BarSpan(ph.StartDate, ph.EndDate()),
			})
		}
		if ph.Collapsed {
			continue
		}
		for _, t := range ph.Tasks {
			out.Bars = append(out.Bars, Bar{
				ID: t.ID, Name: t.Name, Kind: BarTask,
				Start: domain.Day(t.StartDate), End: domain.Day(t.EndDate),
				Span:  m.BarSpan(t.StartDate, t.EndDate),
				Depth: 1,
			})
		}
	}
	return out, nil
}
