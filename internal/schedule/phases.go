package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/phaseline/internal/domain"
	"github.com/google/uuid"
)

// AddPhase appends ph. An empty id is filled with a fresh UUID. Tasks carried
// by ph are validated together with it.
func (g *Graph) AddPhase(ph domain.Phase) (*Graph, error) {
	ph = ph.Clone()
	if ph.ID == "" {
		ph.ID = uuid.NewString()
	}
	if g.HasPhase(ph.ID) {
		return nil, domain.Invalid("phase.id", domain.RuleDuplicateID, "phase %q already exists", ph.ID)
	}
	for j := range ph.Tasks {
		if ph.Tasks[j].ID == "" {
			ph.Tasks[j].ID = uuid.NewString()
		}
	}
	return g.mutate(func(p *domain.Project) error {
		p.Phases = append(p.Phases, ph)
		if errs := Check(p); len(errs) > 0 {
			return errs[0]
		}
		return nil
	})
}

// RemovePhase deletes a phase with its tasks. References to the phase and to
// its tasks are stripped from the rest of the project, and milestones
// anchored to it are dropped.
func (g *Graph) RemovePhase(id string) (*Graph, error) {
	i, ok := g.phases[id]
	if !ok {
		return nil, domain.NotFound("phase", id)
	}
	gone := g.project.Phases[i].TaskIDs()
	return g.mutate(func(p *domain.Project) error {
		p.Phases = append(p.Phases[:i], p.Phases[i+1:]...)
		for k := range p.Phases {
			ph := &p.Phases[k]
			ph.Dependencies = without(ph.Dependencies, func(dep string) bool { return dep == id })
			for j := range ph.Tasks {
				t := &ph.Tasks[j]
				t.Dependencies = without(t.Dependencies, func(dep string) bool { return gone[dep] })
			}
		}
		var kept []domain.Milestone
		for _, m := range p.Milestones {
			if m.PhaseID != id {
				kept = append(kept, m)
			}
		}
		p.Milestones = kept
		return nil
	})
}

// Reorder swaps a phase or task with its neighbour. Moving the first item up
// or the last item down returns g unchanged with no error.
func (g *Graph) Reorder(itemID string, dir Direction) (*Graph, error) {
	if i, ok := g.phases[itemID]; ok {
		j, inRange := neighbour(i, len(g.project.Phases), dir)
		if !inRange {
			return g, nil
		}
		return g.mutate(func(p *domain.Project) error {
			p.Phases[i], p.Phases[j] = p.Phases[j], p.Phases[i]
			return nil
		})
	}
	if ref, ok := g.tasks[itemID]; ok {
		j, inRange := neighbour(ref.task, len(g.project.Phases[ref.phase].Tasks), dir)
		if !inRange {
			return g, nil
		}
		return g.mutate(func(p *domain.Project) error {
			ts := p.Phases[ref.phase].Tasks
			ts[ref.task], ts[j] = ts[j], ts[ref.task]
			return nil
		})
	}
	return nil, domain.NotFound("item", itemID)
}

func neighbour(i, n int, dir Direction) (int, bool) {
	j := i - 1
	if dir == Down {
		j = i + 1
	}
	return j, j >= 0 && j < n
}

// SetDates changes the dates of a phase or a task.
//
// Task edits follow the containment policy. Phase edits never truncate
// tasks: if a task would fall outside the new bounds the edit fails with
// RuleTasksOutside and the caller is expected to analyze the impact and use
// ResizePhase. A support phase's end is derived; end may be zero or equal to
// the derived end, anything else fails with RuleDerivedEnd.
func (g *Graph) SetDates(itemID string, start, end time.Time) (*Graph, error) {
	if i, ok := g.phases[itemID]; ok {
		ph, err := g.rebound(g.project.Phases[i], start, end)
		if err != nil {
			return nil, err
		}
		if names := outsideTasks(ph, domain.Day(ph.StartDate), ph.EndDate()); len(names) > 0 {
			return nil, domain.Invalid("phase.dates", domain.RuleTasksOutside,
				"%d task(s) would fall outside phase %q: %s", len(names), ph.Name, strings.Join(names, ", "))
		}
		return g.mutate(func(p *domain.Project) error {
			p.Phases[i] = ph
			return nil
		})
	}
	if ref, ok := g.tasks[itemID]; ok {
		ph := g.project.Phases[ref.phase]
		s, e, err := g.fitTask("task.dates", ph, start, end)
		if err != nil {
			return nil, err
		}
		return g.mutate(func(p *domain.Project) error {
			t := &p.Phases[ref.phase].Tasks[ref.task]
			t.StartDate, t.EndDate = s, e
			return nil
		})
	}
	return nil, domain.NotFound("item", itemID)
}

// rebound returns ph moved to [start, end], checking the span rules but not
// task containment.
func (g *Graph) rebound(ph domain.Phase, start, end time.Time) (domain.Phase, error) {
	if start.IsZero() {
		return ph, domain.Invalid("phase.start_date", domain.RuleRequired, "phase start date is required")
	}
	out := ph.Clone()
	out.StartDate = domain.Day(start)
	switch ph.Span.(type) {
	case domain.SupportSpan:
		derived := out.EndDate()
		if !end.IsZero() && !domain.SameDay(end, derived) {
			return ph, domain.Invalid("phase.end_date", domain.RuleDerivedEnd,
				"end of support phase %q is derived from its start and duration (%s); change support years instead",
				ph.Name, derived.Format(domain.DateLayout))
		}
	default:
		out.Span = domain.StandardSpan{End: domain.Day(end)}
		if end.IsZero() || !out.EndDate().After(out.StartDate) {
			return ph, domain.Invalid("phase.end_date", domain.RuleDateRange,
				"phase end %s must be after start %s", domain.Day(end).Format(domain.DateLayout), out.StartDate.Format(domain.DateLayout))
		}
	}
	return out, nil
}

// ResizePhase moves a phase's bounds and clamps every task into them. It is
// the explicit, destructive counterpart of SetDates and should only follow
// an impact analysis.
func (g *Graph) ResizePhase(id string, start, end time.Time) (*Graph, error) {
	i, ok := g.phases[id]
	if !ok {
		return nil, domain.NotFound("phase", id)
	}
	ph, err := g.rebound(g.project.Phases[i], start, end)
	if err != nil {
		return nil, err
	}
	clampTasks(&ph)
	return g.mutate(func(p *domain.Project) error {
		p.Phases[i] = ph
		return nil
	})
}

func clampTasks(ph *domain.Phase) {
	lo, hi := domain.Day(ph.StartDate), ph.EndDate()
	for j := range ph.Tasks {
		t := &ph.Tasks[j]
		t.StartDate, t.EndDate = clampWindow(t.StartDate, t.EndDate, lo, hi)
	}
}

// SetSupportYears changes the duration of a support phase. Shortening it
// below the end of one of its tasks fails with RuleTasksOutside.
func (g *Graph) SetSupportYears(id string, years int) (*Graph, error) {
	i, ok := g.phases[id]
	if !ok {
		return nil, domain.NotFound("phase", id)
	}
	ph := g.project.Phases[i]
	if !ph.IsSupport() {
		return nil, domain.Invalid("phase.kind", domain.RulePhaseKind, "phase %q is not an ongoing-support phase", ph.Name)
	}
	if err := domain.CheckSupportYears("phase.support_years", years); err != nil {
		return nil, err
	}
	out := ph.Clone()
	out.Span = domain.SupportSpan{Years: years}
	if names := outsideTasks(out, domain.Day(out.StartDate), out.EndDate()); len(names) > 0 {
		return nil, domain.Invalid("phase.support_years", domain.RuleTasksOutside,
			"%d task(s) would fall outside phase %q: %s", len(names), ph.Name, strings.Join(names, ", "))
	}
	return g.mutate(func(p *domain.Project) error {
		p.Phases[i] = out
		return nil
	})
}

// SetCollapsed toggles whether a phase's tasks are hidden in the timeline.
func (g *Graph) SetCollapsed(id string, collapsed bool) (*Graph, error) {
	i, ok := g.phases[id]
	if !ok {
		return nil, domain.NotFound("phase", id)
	}
	if g.project.Phases[i].Collapsed == collapsed {
		return g, nil
	}
	return g.mutate(func(p *domain.Project) error {
		p.Phases[i].Collapsed = collapsed
		return nil
	})
}

// PhaseIndex returns the position of a phase in project order.
func (g *Graph) PhaseIndex(id string) (int, error) {
	i, ok := g.phases[id]
	if !ok {
		return -1, fmt.Errorf("phase index: %w", domain.NotFound("phase", id))
	}
	return i, nil
}
