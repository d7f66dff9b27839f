package domain

import (
	"slices"
	"time"
)

// PhaseSpan is the closed set of ways a phase determines its end date:
// StandardSpan carries an explicit end, SupportSpan derives it from a
// duration in years. A phase holds exactly one of them, so a standard phase
// with support years (or a support phase with an editable end) cannot exist.
type PhaseSpan interface {
	Kind() PhaseKind
	endFrom(start time.Time) time.Time
}

// StandardSpan is a phase with an explicit end date.
type StandardSpan struct {
	End time.Time
}

func (StandardSpan) Kind() PhaseKind { return PhaseStandard }

func (s StandardSpan) endFrom(time.Time) time.Time { return Day(s.End) }

// MaxSupportYears bounds a support contract so day-by-day calendar walks
// over it stay short.
const MaxSupportYears = 50

// CheckSupportYears validates a support duration against [1, MaxSupportYears].
func CheckSupportYears(field string, years int) error {
	if years < 1 || years > MaxSupportYears {
		return Invalid(field, RuleSupportYears, "support duration must be between 1 and %d years, got %d", MaxSupportYears, years)
	}
	return nil
}

// SupportSpan is an open-ended support contract lasting Years from the
// phase start.
type SupportSpan struct {
	Years int
}

func (SupportSpan) Kind() PhaseKind { return PhaseOngoingSupport }

func (s SupportSpan) endFrom(start time.Time) time.Time {
	return Day(start).AddDate(s.Years, 0, 0)
}

type Phase struct {
	ID           string
	Name         string
	StartDate    time.Time
	Span         PhaseSpan
	ColorTag     string
	Dependencies []string // phase ids this phase waits on
	Tasks        []Task
	Collapsed    bool
	RACI         []RACIEntry
}

// Kind reports the phase variant. A phase without a span is standard.
func (p Phase) Kind() PhaseKind {
	if p.Span == nil {
		return PhaseStandard
	}
	return p.Span.Kind()
}

// IsSupport reports whether p is an ongoing-support phase.
func (p Phase) IsSupport() bool {
	return p.Kind() == PhaseOngoingSupport
}

// EndDate returns the explicit end of a standard phase or the derived end
// (start + years) of a support phase.
func (p Phase) EndDate() time.Time {
	if p.Span == nil {
		return Day(p.StartDate)
	}
	return p.Span.endFrom(p.StartDate)
}

// SupportYears returns the support duration when p is a support phase.
func (p Phase) SupportYears() (int, bool) {
	if s, ok := p.Span.(SupportSpan); ok {
		return s.Years, true
	}
	return 0, false
}

// DependsOn reports whether p lists phaseID as a prerequisite.
func (p Phase) DependsOn(phaseID string) bool {
	return slices.Contains(p.Dependencies, phaseID)
}

// TaskIDs returns the set of ids of the tasks owned by p.
func (p Phase) TaskIDs() map[string]bool {
	ids := make(map[string]bool, len(p.Tasks))
	for _, t := range p.Tasks {
		ids[t.ID] = true
	}
	return ids
}

// TaskIndex returns the position of taskID in p.Tasks, or -1.
func (p Phase) TaskIndex(taskID string) int {
	for i := range p.Tasks {
		if p.Tasks[i].ID == taskID {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of p.
func (p Phase) Clone() Phase {
	out := p
	out.Dependencies = slices.Clone(p.Dependencies)
	out.RACI = slices.Clone(p.RACI)
	if p.Tasks != nil {
		out.Tasks = make([]Task, len(p.Tasks))
		for i, t := range p.Tasks {
			out.Tasks[i] = t.Clone()
		}
	}
	return out
}
