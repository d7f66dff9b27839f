package impact

import (
	"fmt"
	"time"

	"github.com/alexanderramin/phaseline/internal/domain"
	"github.com/alexanderramin/phaseline/internal/ledger"
	"github.com/alexanderramin/phaseline/internal/schedule"
)

// AnalyzeResize reports what ResizePhase(phaseID, start, end) would do:
// which tasks get clamped, how working days and resource cost change, and
// which dependent phases would start before the phase ends. The headline
// severity is the highest category severity.
func (a *Analyzer) AnalyzeResize(g *schedule.Graph, phaseID string, start, end time.Time) (*Report, error) {
	before, err := g.Phase(phaseID)
	if err != nil {
		return nil, err
	}
	next, err := g.ResizePhase(phaseID, start, end)
	if err != nil {
		return nil, err
	}
	after, err := next.Phase(phaseID)
	if err != nil {
		return nil, err
	}
	r := &Report{
		Action: ActionResize,
		Target: Target{Kind: "phase", ID: before.ID, Name: before.Name},
	}

	if c, ok := rescheduledCategory(before.Tasks, after.Tasks); ok {
		r.add(c)
	}
	if c, ok, err := a.costDelta(g.View(), before.Tasks, next.View(), after.Tasks); err != nil {
		return nil, fmt.Errorf("analyze resize %s: %w", phaseID, err)
	} else if ok {
		r.add(c)
	}

	var overlaps []string
	for _, dp := range next.DependentPhases(phaseID) {
		if dp.StartDate.Before(after.EndDate()) || domain.SameDay(dp.StartDate, after.EndDate()) {
			overlaps = append(overlaps, fmt.Sprintf("Phase %q starts %s, before %q ends %s",
				dp.Name, dp.StartDate.Format(domain.DateLayout), after.Name, after.EndDate().Format(domain.DateLayout)))
		}
	}
	if len(overlaps) > 0 {
		r.add(Category{
			Label:    LabelDependencies,
			Severity: Medium,
			Items:    overlaps,
			Facts:    Facts{DependentPhases: len(overlaps)},
		})
	}

	wdBefore, err := a.cal.ProjectWorkingDays(g.View(), before.StartDate, before.EndDate())
	if err != nil {
		return nil, err
	}
	wdAfter, err := a.cal.ProjectWorkingDays(next.View(), after.StartDate, after.EndDate())
	if err != nil {
		return nil, err
	}
	cdBefore := domain.DaysBetween(before.StartDate, before.EndDate()) + 1
	cdAfter := domain.DaysBetween(after.StartDate, after.EndDate()) + 1
	r.add(Category{
		Label:    LabelTimeline,
		Severity: Low,
		Items: []string{fmt.Sprintf("%+d working days (%d -> %d), %+d calendar days",
			wdAfter-wdBefore, wdBefore, wdAfter, cdAfter-cdBefore)},
		Facts: Facts{WorkingDays: wdAfter - wdBefore, CalendarDays: cdAfter - cdBefore},
	})

	r.Severity = r.MaxCategorySeverity
	return r, nil
}

// AnalyzeMove reports what MoveTask(taskID, toPhaseID) would do: date
// clamping into the new phase, dependency edges that start crossing phases,
// subtasks left behind and the resulting cost change.
func (a *Analyzer) AnalyzeMove(g *schedule.Graph, taskID, toPhaseID string) (*Report, error) {
	t, err := g.Task(taskID)
	if err != nil {
		return nil, err
	}
	from, err := g.PhaseOf(taskID)
	if err != nil {
		return nil, err
	}
	next, err := g.MoveTask(taskID, toPhaseID)
	if err != nil {
		return nil, err
	}
	moved, err := next.Task(taskID)
	if err != nil {
		return nil, err
	}
	to, err := next.Phase(toPhaseID)
	if err != nil {
		return nil, err
	}
	r := &Report{
		Action: ActionMove,
		Target: Target{Kind: "task", ID: t.ID, Name: t.Name},
	}

	r.add(Category{
		Label:    LabelTasks,
		Severity: Low,
		Items:    []string{fmt.Sprintf("%s moves from %q to %q", t.Name, from.Name, to.Name)},
		Facts:    Facts{TaskCount: 1},
	})
	if c, ok := rescheduledCategory([]domain.Task{t}, []domain.Task{moved}); ok {
		r.add(c)
	}

	// Edges between the task and its old siblings now cross phases.
	var crossing []string
	for _, sib := range from.Tasks {
		switch {
		case sib.ID == t.ID:
		case t.DependsOn(sib.ID):
			crossing = append(crossing, fmt.Sprintf("%s depends on %s, which stays in %q", t.Name, sib.Name, from.Name))
		case sib.DependsOn(t.ID):
			crossing = append(crossing, fmt.Sprintf("%s in %q depends on %s", sib.Name, from.Name, t.Name))
		}
	}
	if len(crossing) > 0 {
		r.add(Category{
			Label:    LabelDependencies,
			Severity: Medium,
			Items:    crossing,
			Facts:    Facts{DependentTasks: len(crossing)},
		})
	}

	if children := g.Children(taskID); len(children) > 0 {
		items := make([]string, len(children))
		for i, c := range children {
			items[i] = fmt.Sprintf("%s stays in %q as a top-level task", c.Name, from.Name)
		}
		r.add(Category{
			Label:    LabelSubtasks,
			Severity: Low,
			Items:    items,
			Facts:    Facts{TaskCount: len(children)},
		})
	}

	if c, ok, err := a.costDelta(g.View(), []domain.Task{t}, next.View(), []domain.Task{moved}); err != nil {
		return nil, fmt.Errorf("analyze move %s: %w", taskID, err)
	} else if ok {
		r.add(c)
	}

	r.Severity = r.MaxCategorySeverity
	return r, nil
}

// rescheduledCategory lists tasks whose dates differ between before and
// after, matched by id.
func rescheduledCategory(before, after []domain.Task) (Category, bool) {
	byID := make(map[string]domain.Task, len(after))
	for _, t := range after {
		byID[t.ID] = t
	}
	var items []string
	for _, b := range before {
		a, ok := byID[b.ID]
		if !ok {
			continue
		}
		if domain.SameDay(a.StartDate, b.StartDate) && domain.SameDay(a.EndDate, b.EndDate) {
			continue
		}
		items = append(items, fmt.Sprintf("%s: %s..%s -> %s..%s", b.Name,
			b.StartDate.Format(domain.DateLayout), b.EndDate.Format(domain.DateLayout),
			a.StartDate.Format(domain.DateLayout), a.EndDate.Format(domain.DateLayout)))
	}
	if len(items) == 0 {
		return Category{}, false
	}
	return Category{
		Label:    LabelRescheduled,
		Severity: High,
		Items:    items,
		Facts:    Facts{TaskCount: len(items)},
	}, true
}

// costDelta compares the resource cost of the same tasks before and after a
// change.
func (a *Analyzer) costDelta(pBefore *domain.Project, before []domain.Task, pAfter *domain.Project, after []domain.Task) (Category, bool, error) {
	tb, err := a.ledger.Rollup(pBefore, before)
	if err != nil {
		return Category{}, false, err
	}
	ta, err := a.ledger.Rollup(pAfter, after)
	if err != nil {
		return Category{}, false, err
	}
	hb, cb := ledger.Sum(tb)
	ha, ca := ledger.Sum(ta)
	if ca == cb && ha == hb {
		return Category{}, false, nil
	}
	return Category{
		Label:    LabelResources,
		Severity: Medium,
		Items: []string{fmt.Sprintf("%+.1fh, %s -> %s",
			ha-hb, FormatMoney(cb), FormatMoney(ca))},
		Facts: Facts{ResourceCount: len(ta), Hours: ha - hb, Cost: ca - cb},
	}, true, nil
}
