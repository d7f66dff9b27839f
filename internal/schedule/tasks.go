package schedule

import (
	"slices"

	"github.com/alexanderramin/phaseline/internal/domain"
	"github.com/google/uuid"
)

// AddTask appends t to a phase. An empty id is filled with a fresh UUID.
// Dates follow the containment policy; dependencies, parent and assignments
// must reference existing items.
func (g *Graph) AddTask(phaseID string, t domain.Task) (*Graph, error) {
	i, ok := g.phases[phaseID]
	if !ok {
		return nil, domain.NotFound("phase", phaseID)
	}
	ph := g.project.Phases[i]

	t = t.Clone()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if g.HasTask(t.ID) {
		return nil, domain.Invalid("task.id", domain.RuleDuplicateID, "task %q already exists", t.ID)
	}
	if t.Name == "" {
		return nil, domain.Invalid("task.name", domain.RuleRequired, "task name is required")
	}
	s, e, err := g.fitTask("task.dates", ph, t.StartDate, t.EndDate)
	if err != nil {
		return nil, err
	}
	t.StartDate, t.EndDate = s, e

	for _, dep := range t.Dependencies {
		if dep == t.ID {
			return nil, domain.Invalid("task.dependencies", domain.RuleSelfDependency, "task %q depends on itself", t.ID)
		}
		if !g.HasTask(dep) {
			return nil, domain.NotFound("task", dep)
		}
	}
	t.Dependencies = slices.Compact(slices.Sorted(slices.Values(t.Dependencies)))

	if t.ParentTaskID != nil {
		if ph.TaskIndex(*t.ParentTaskID) < 0 {
			return nil, domain.Invalid("task.parent_task_id", domain.RuleParentTask,
				"parent task %q must belong to phase %q", *t.ParentTaskID, ph.ID)
		}
	}
	for k, a := range t.Assignments {
		if err := assignmentError("task.assignments", a, g.resourceSet()); err != nil {
			return nil, err
		}
		if slices.ContainsFunc(t.Assignments[:k], func(o domain.ResourceAssignment) bool { return o.ResourceID == a.ResourceID }) {
			return nil, domain.Invalid("task.assignments", domain.RuleDuplicateID, "resource %q assigned twice", a.ResourceID)
		}
	}

	// A new task has no incoming edges, so its outgoing edges cannot close
	// a cycle.
	return g.mutate(func(p *domain.Project) error {
		p.Phases[i].Tasks = append(p.Phases[i].Tasks, t)
		return nil
	})
}

// RemoveTask deletes a task. Other tasks lose their dependency on it and its
// children become top-level tasks of the phase.
func (g *Graph) RemoveTask(id string) (*Graph, error) {
	ref, ok := g.tasks[id]
	if !ok {
		return nil, domain.NotFound("task", id)
	}
	return g.mutate(func(p *domain.Project) error {
		ph := &p.Phases[ref.phase]
		ph.Tasks = append(ph.Tasks[:ref.task], ph.Tasks[ref.task+1:]...)
		detachTask(p, id)
		return nil
	})
}

// detachTask strips every reference to id from p.
func detachTask(p *domain.Project, id string) {
	for k := range p.Phases {
		for j := range p.Phases[k].Tasks {
			t := &p.Phases[k].Tasks[j]
			t.Dependencies = without(t.Dependencies, func(dep string) bool { return dep == id })
			if t.ParentTaskID != nil && *t.ParentTaskID == id {
				t.ParentTaskID = nil
			}
		}
	}
}

// MoveTask reparents a task into another phase, appending it there and
// clamping its dates into the new phase. Its parent link is dropped and its
// own children stay behind as top-level tasks. Moving a task into the phase
// that already owns it is a no-op.
func (g *Graph) MoveTask(taskID, toPhaseID string) (*Graph, error) {
	ref, ok := g.tasks[taskID]
	if !ok {
		return nil, domain.NotFound("task", taskID)
	}
	to, ok := g.phases[toPhaseID]
	if !ok {
		return nil, domain.NotFound("phase", toPhaseID)
	}
	if to == ref.phase {
		return g, nil
	}
	return g.mutate(func(p *domain.Project) error {
		from := &p.Phases[ref.phase]
		t := from.Tasks[ref.task]
		from.Tasks = append(from.Tasks[:ref.task], from.Tasks[ref.task+1:]...)
		for j := range from.Tasks {
			c := &from.Tasks[j]
			if c.ParentTaskID != nil && *c.ParentTaskID == taskID {
				c.ParentTaskID = nil
			}
		}

		dst := &p.Phases[to]
		t.ParentTaskID = nil
		t.StartDate, t.EndDate = clampWindow(t.StartDate, t.EndDate, domain.Day(dst.StartDate), dst.EndDate())
		dst.Tasks = append(dst.Tasks, t)
		return nil
	})
}

// DependentTasks returns the tasks outside the given set that depend on any
// task in it, in project order.
func (g *Graph) DependentTasks(ids map[string]bool) []domain.PhaseTask {
	var out []domain.PhaseTask
	for _, pt := range g.project.AllTasks() {
		if ids[pt.Task.ID] {
			continue
		}
		if pt.Task.DependsOnAny(ids) {
			out = append(out, pt)
		}
	}
	return out
}

// Children returns the tasks whose parent is taskID.
func (g *Graph) Children(taskID string) []domain.Task {
	ref, ok := g.tasks[taskID]
	if !ok {
		return nil
	}
	var out []domain.Task
	for _, t := range g.project.Phases[ref.phase].Tasks {
		if t.ParentTaskID != nil && *t.ParentTaskID == taskID {
			out = append(out, t)
		}
	}
	return out
}
