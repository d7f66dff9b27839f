package schedule

import (
	"time"

	"github.com/alexanderramin/phaseline/internal/domain"
)

// taskWindowError checks date order and that [start, end] lies within ph.
func taskWindowError(field string, ph domain.Phase, start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return domain.Invalid(field, domain.RuleRequired, "task start and end dates are required")
	}
	s, e := domain.Day(start), domain.Day(end)
	if e.Before(s) {
		return domain.Invalid(field, domain.RuleDateRange, "task end %s is before start %s",
			e.Format(domain.DateLayout), s.Format(domain.DateLayout))
	}
	lo, hi := domain.Day(ph.StartDate), ph.EndDate()
	if s.Before(lo) || e.After(hi) {
		return domain.Invalid(field, domain.RuleContainment, "task %s..%s falls outside phase %q (%s..%s)",
			s.Format(domain.DateLayout), e.Format(domain.DateLayout), ph.Name,
			lo.Format(domain.DateLayout), hi.Format(domain.DateLayout))
	}
	return nil
}

func assignmentError(field string, a domain.ResourceAssignment, resourceIDs map[string]bool) error {
	if !resourceIDs[a.ResourceID] {
		return domain.Invalid(field+".resource_id", domain.RuleUnknownRef, "resource %q not found", a.ResourceID)
	}
	if a.AllocationPercent < 0 || a.AllocationPercent > 100 {
		return domain.Invalid(field+".allocation_percent", domain.RuleAllocation,
			"allocation %.1f%% must be between 0 and 100", a.AllocationPercent)
	}
	return nil
}

// clampWindow pulls [start, end] into [lo, hi]. A window lying entirely
// outside collapses to a single day on the nearest bound.
func clampWindow(start, end, lo, hi time.Time) (time.Time, time.Time) {
	s, e := domain.Day(start), domain.Day(end)
	switch {
	case e.Before(lo):
		return lo, lo
	case s.After(hi):
		return hi, hi
	}
	return domain.MaxDate(s, lo), domain.MinDate(e, hi)
}

// fitTask applies the containment policy to a proposed task window.
func (g *Graph) fitTask(field string, ph domain.Phase, start, end time.Time) (time.Time, time.Time, error) {
	err := taskWindowError(field, ph, start, end)
	if err == nil {
		return domain.Day(start), domain.Day(end), nil
	}
	if g.policy != PolicyClamp || domain.RuleOf(err) != domain.RuleContainment {
		return start, end, err
	}
	s, e := clampWindow(start, end, domain.Day(ph.StartDate), ph.EndDate())
	return s, e, nil
}

// outsideTasks lists the tasks of ph that would not fit in [lo, hi].
func outsideTasks(ph domain.Phase, lo, hi time.Time) []string {
	var names []string
	for _, t := range ph.Tasks {
		if domain.Day(t.StartDate).Before(lo) || domain.Day(t.EndDate).After(hi) {
			names = append(names, t.Name)
		}
	}
	return names
}
