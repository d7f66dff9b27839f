package schedule

import (
	"slices"
	"strings"

	"github.com/alexanderramin/phaseline/internal/domain"
)

// adjacency maps an item id to the ids it depends on. An edge a -> b means
// "a waits on b".
type adjacency map[string][]string

func phaseAdjacency(p *domain.Project) adjacency {
	adj := make(adjacency, len(p.Phases))
	for _, ph := range p.Phases {
		adj[ph.ID] = ph.Dependencies
	}
	return adj
}

func taskAdjacency(p *domain.Project) adjacency {
	adj := make(adjacency)
	for _, pt := range p.AllTasks() {
		adj[pt.Task.ID] = pt.Task.Dependencies
	}
	return adj
}

// path returns a dependency path from -> ... -> to, or nil when to is not
// reachable. Iterative DFS; the dependency depth of a real plan is small but
// imported data is not trusted.
func (adj adjacency) path(from, to string) []string {
	parent := map[string]string{from: ""}
	stack := []string{from}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur == to {
			var out []string
			for n := cur; n != ""; n = parent[n] {
				out = append(out, n)
			}
			slices.Reverse(out)
			return out
		}
		for _, next := range adj[cur] {
			if _, seen := parent[next]; seen {
				continue
			}
			parent[next] = cur
			stack = append(stack, next)
		}
	}
	return nil
}

// checkEdge rejects a -> b when b already reaches a, which would close a
// cycle.
func (adj adjacency) checkEdge(field, a, b string) error {
	if a == b {
		return domain.Invalid(field, domain.RuleSelfDependency, "%s cannot depend on itself", a)
	}
	if back := adj.path(b, a); back != nil {
		cycle := append([]string{a}, back...)
		return domain.Invalid(field, domain.RuleCycle, "dependency %s -> %s would create a cycle: %s",
			a, b, strings.Join(cycle, " -> "))
	}
	return nil
}

// cycles finds every back edge using the white/gray/black colouring. order
// fixes the traversal so reports are deterministic.
func (adj adjacency) cycles(field string, order []string) []error {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int, len(adj))
	var errs []error

	type frame struct {
		id   string
		next int
	}
	for _, root := range order {
		if color[root] != white {
			continue
		}
		stack := []frame{{id: root}}
		color[root] = gray
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			deps := adj[top.id]
			if top.next >= len(deps) {
				color[top.id] = black
				stack = stack[:len(stack)-1]
				continue
			}
			dep := deps[top.next]
			top.next++
			if _, known := adj[dep]; !known {
				continue
			}
			switch color[dep] {
			case gray:
				errs = append(errs, domain.Invalid(field, domain.RuleCycle,
					"circular dependency detected involving %q and %q", top.id, dep))
			case white:
				color[dep] = gray
				stack = append(stack, frame{id: dep})
			}
		}
	}
	return errs
}

func addUnique(ids []string, id string) []string {
	if slices.Contains(ids, id) {
		return ids
	}
	out := append(slices.Clone(ids), id)
	slices.Sort(out)
	return out
}

func without(ids []string, drop func(string) bool) []string {
	if len(ids) == 0 {
		return ids
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !drop(id) {
			out = append(out, id)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// AddPhaseDependency makes phaseID wait on dependsOn. Adding an existing edge
// is a no-op.
func (g *Graph) AddPhaseDependency(phaseID, dependsOn string) (*Graph, error) {
	i, ok := g.phases[phaseID]
	if !ok {
		return nil, domain.NotFound("phase", phaseID)
	}
	if !g.HasPhase(dependsOn) {
		return nil, domain.NotFound("phase", dependsOn)
	}
	if g.project.Phases[i].DependsOn(dependsOn) {
		return g, nil
	}
	if err := phaseAdjacency(g.project).checkEdge("phase.dependencies", phaseID, dependsOn); err != nil {
		return nil, err
	}
	return g.mutate(func(p *domain.Project) error {
		p.Phases[i].Dependencies = addUnique(p.Phases[i].Dependencies, dependsOn)
		return nil
	})
}

// RemovePhaseDependency drops an edge. A missing edge is a no-op.
func (g *Graph) RemovePhaseDependency(phaseID, dependsOn string) (*Graph, error) {
	i, ok := g.phases[phaseID]
	if !ok {
		return nil, domain.NotFound("phase", phaseID)
	}
	if !g.project.Phases[i].DependsOn(dependsOn) {
		return g, nil
	}
	return g.mutate(func(p *domain.Project) error {
		p.Phases[i].Dependencies = without(p.Phases[i].Dependencies, func(id string) bool { return id == dependsOn })
		return nil
	})
}

// AddTaskDependency makes taskID wait on dependsOn, which may live in any
// phase. Adding an existing edge is a no-op.
func (g *Graph) AddTaskDependency(taskID, dependsOn string) (*Graph, error) {
	ref, ok := g.tasks[taskID]
	if !ok {
		return nil, domain.NotFound("task", taskID)
	}
	if !g.HasTask(dependsOn) {
		return nil, domain.NotFound("task", dependsOn)
	}
	if g.project.Phases[ref.phase].Tasks[ref.task].DependsOn(dependsOn) {
		return g, nil
	}
	if err := taskAdjacency(g.project).checkEdge("task.dependencies", taskID, dependsOn); err != nil {
		return nil, err
	}
	return g.mutate(func(p *domain.Project) error {
		t := &p.Phases[ref.phase].Tasks[ref.task]
		t.Dependencies = addUnique(t.Dependencies, dependsOn)
		return nil
	})
}

// RemoveTaskDependency drops an edge. A missing edge is a no-op.
func (g *Graph) RemoveTaskDependency(taskID, dependsOn string) (*Graph, error) {
	ref, ok := g.tasks[taskID]
	if !ok {
		return nil, domain.NotFound("task", taskID)
	}
	if !g.project.Phases[ref.phase].Tasks[ref.task].DependsOn(dependsOn) {
		return g, nil
	}
	return g.mutate(func(p *domain.Project) error {
		t := &p.Phases[ref.phase].Tasks[ref.task]
		t.Dependencies = without(t.Dependencies, func(id string) bool { return id == dependsOn })
		return nil
	})
}

// DependentPhases returns the phases that list phaseID as a prerequisite, in
// project order.
func (g *Graph) DependentPhases(phaseID string) []domain.Phase {
	var out []domain.Phase
	for _, ph := range g.project.Phases {
		if ph.ID != phaseID && ph.DependsOn(phaseID) {
			out = append(out, ph)
		}
	}
	return out
}
