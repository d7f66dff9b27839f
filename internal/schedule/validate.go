package schedule

import (
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/phaseline/internal/domain"
)

// Validate checks every structural invariant of p and joins all problems
// into one error. It returns nil for a valid project.
func Validate(p *domain.Project) error {
	return errors.Join(Check(p)...)
}

// Check returns every invariant violation in p, in project order.
func Check(p *domain.Project) []error {
	var errs []error

	phaseIDs := make(map[string]bool, len(p.Phases))
	taskIDs := make(map[string]bool)
	resourceIDs := make(map[string]bool, len(p.Resources))

	for i, r := range p.Resources {
		prefix := fmt.Sprintf("resources[%d]", i)
		errs = append(errs, checkResource(prefix, r, resourceIDs)...)
	}

	var phaseOrder, taskOrder []string
	for i, ph := range p.Phases {
		prefix := fmt.Sprintf("phases[%d]", i)
		if ph.ID == "" {
			errs = append(errs, domain.Invalid(prefix+".id", domain.RuleRequired, "phase id is required"))
		} else if phaseIDs[ph.ID] {
			errs = append(errs, domain.Invalid(prefix+".id", domain.RuleDuplicateID, "duplicate phase id %q", ph.ID))
		} else {
			phaseIDs[ph.ID] = true
			phaseOrder = append(phaseOrder, ph.ID)
		}
		errs = append(errs, checkPhaseShape(prefix, ph)...)

		for j, t := range ph.Tasks {
			tprefix := fmt.Sprintf("%s.tasks[%d]", prefix, j)
			if t.ID == "" {
				errs = append(errs, domain.Invalid(tprefix+".id", domain.RuleRequired, "task id is required"))
			} else if taskIDs[t.ID] {
				errs = append(errs, domain.Invalid(tprefix+".id", domain.RuleDuplicateID, "duplicate task id %q", t.ID))
			} else {
				taskIDs[t.ID] = true
				taskOrder = append(taskOrder, t.ID)
			}
			errs = append(errs, checkTaskDates(tprefix, ph, t.StartDate, t.EndDate)...)
			errs = append(errs, checkAssignments(tprefix, t.Assignments, resourceIDs)...)
		}
	}

	// References need the full id sets.
	for i, ph := range p.Phases {
		prefix := fmt.Sprintf("phases[%d]", i)
		for _, dep := range ph.Dependencies {
			switch {
			case dep == ph.ID:
				errs = append(errs, domain.Invalid(prefix+".dependencies", domain.RuleSelfDependency, "phase %q depends on itself", ph.ID))
			case !phaseIDs[dep]:
				errs = append(errs, domain.Invalid(prefix+".dependencies", domain.RuleUnknownRef, "phase %q not found", dep))
			}
		}
		local := ph.TaskIDs()
		for j, t := range ph.Tasks {
			tprefix := fmt.Sprintf("%s.tasks[%d]", prefix, j)
			for _, dep := range t.Dependencies {
				switch {
				case dep == t.ID:
					errs = append(errs, domain.Invalid(tprefix+".dependencies", domain.RuleSelfDependency, "task %q depends on itself", t.ID))
				case !taskIDs[dep]:
					errs = append(errs, domain.Invalid(tprefix+".dependencies", domain.RuleUnknownRef, "task %q not found", dep))
				}
			}
			if t.ParentTaskID != nil {
				parent := *t.ParentTaskID
				switch {
				case parent == t.ID:
					errs = append(errs, domain.Invalid(tprefix+".parent_task_id", domain.RuleParentTask, "task %q is its own parent", t.ID))
				case !local[parent]:
					errs = append(errs, domain.Invalid(tprefix+".parent_task_id", domain.RuleParentTask,
						"parent task %q must belong to phase %q", parent, ph.ID))
				}
			}
		}
	}

	for i, m := range p.Milestones {
		if m.PhaseID != "" && !phaseIDs[m.PhaseID] {
			errs = append(errs, domain.Invalid(fmt.Sprintf("milestones[%d].phase_id", i), domain.RuleUnknownRef, "phase %q not found", m.PhaseID))
		}
	}

	errs = append(errs, phaseAdjacency(p).cycles("phases.dependencies", phaseOrder)...)
	errs = append(errs, taskAdjacency(p).cycles("tasks.dependencies", taskOrder)...)
	errs = append(errs, parentCycles(p)...)
	return errs
}

func checkResource(prefix string, r domain.Resource, seen map[string]bool) []error {
	var errs []error
	if r.ID == "" {
		errs = append(errs, domain.Invalid(prefix+".id", domain.RuleRequired, "resource id is required"))
	} else if seen[r.ID] {
		errs = append(errs, domain.Invalid(prefix+".id", domain.RuleDuplicateID, "duplicate resource id %q", r.ID))
	} else {
		seen[r.ID] = true
	}
	if r.Name == "" {
		errs = append(errs, domain.Invalid(prefix+".name", domain.RuleRequired, "resource name is required"))
	}
	if r.HourlyRate < 0 {
		errs = append(errs, domain.Invalid(prefix+".hourly_rate", domain.RuleHourlyRate, "hourly rate %.2f must not be negative", r.HourlyRate))
	}
	return errs
}

// checkPhaseShape validates a phase on its own: name, span variant and date
// order.
func checkPhaseShape(prefix string, ph domain.Phase) []error {
	var errs []error
	if ph.Name == "" {
		errs = append(errs, domain.Invalid(prefix+".name", domain.RuleRequired, "phase name is required"))
	}
	if ph.StartDate.IsZero() {
		errs = append(errs, domain.Invalid(prefix+".start_date", domain.RuleRequired, "phase start date is required"))
	}
	switch span := ph.Span.(type) {
	case nil:
		errs = append(errs, domain.Invalid(prefix+".kind", domain.RulePhaseKind, "phase %q has no span", ph.ID))
	case domain.SupportSpan:
		if err := domain.CheckSupportYears(prefix+".support_years", span.Years); err != nil {
			errs = append(errs, err)
		}
	case domain.StandardSpan:
		if !ph.EndDate().After(domain.Day(ph.StartDate)) {
			errs = append(errs, domain.Invalid(prefix+".end_date", domain.RuleDateRange,
				"phase end %s must be after start %s", ph.EndDate().Format(domain.DateLayout), ph.StartDate.Format(domain.DateLayout)))
		}
	}
	return errs
}

func checkTaskDates(prefix string, ph domain.Phase, start, end time.Time) []error {
	if err := taskWindowError(prefix, ph, start, end); err != nil {
		return []error{err}
	}
	return nil
}

func checkAssignments(prefix string, as []domain.ResourceAssignment, resourceIDs map[string]bool) []error {
	var errs []error
	for k, a := range as {
		aprefix := fmt.Sprintf("%s.assignments[%d]", prefix, k)
		if err := assignmentError(aprefix, a, resourceIDs); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// parentCycles rejects parent chains that loop back on themselves.
func parentCycles(p *domain.Project) []error {
	parents := make(map[string]string)
	for _, pt := range p.AllTasks() {
		if pt.Task.ParentTaskID != nil && *pt.Task.ParentTaskID != pt.Task.ID {
			parents[pt.Task.ID] = *pt.Task.ParentTaskID
		}
	}
	var errs []error
	reported := make(map[string]bool)
	for _, pt := range p.AllTasks() {
		seen := map[string]bool{pt.Task.ID: true}
		for cur, ok := parents[pt.Task.ID]; ok; cur, ok = parents[cur] {
			if seen[cur] {
				if !reported[cur] {
					reported[cur] = true
					errs = append(errs, domain.Invalid("tasks.parent_task_id", domain.RuleParentTask,
						"parent chain of task %q loops through %q", pt.Task.ID, cur))
				}
				break
			}
			seen[cur] = true
		}
	}
	return errs
}
