package schedule

import (
	"github.com/alexanderramin/phaseline/internal/domain"
	"github.com/google/uuid"
)

// RateResolver derives a resource's rate from a designation.
type RateResolver interface {
	ApplyDesignation(r domain.Resource, designation string) (domain.Resource, error)
}

func (g *Graph) resourceSet() map[string]bool {
	set := make(map[string]bool, len(g.resources))
	for id := range g.resources {
		set[id] = true
	}
	return set
}

// AddResource registers a resource. An empty id is filled with a fresh UUID.
func (g *Graph) AddResource(r domain.Resource) (*Graph, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	seen := g.resourceSet()
	if errs := checkResource("resource", r, seen); len(errs) > 0 {
		return nil, errs[0]
	}
	return g.mutate(func(p *domain.Project) error {
		p.Resources = append(p.Resources, r)
		return nil
	})
}

// RemoveResource deletes a resource and strips its assignments and RACI
// entries everywhere.
func (g *Graph) RemoveResource(id string) (*Graph, error) {
	i, ok := g.resources[id]
	if !ok {
		return nil, domain.NotFound("resource", id)
	}
	return g.mutate(func(p *domain.Project) error {
		p.Resources = append(p.Resources[:i], p.Resources[i+1:]...)
		for k := range p.Phases {
			ph := &p.Phases[k]
			ph.RACI = withoutRACI(ph.RACI, id)
			for j := range ph.Tasks {
				t := &ph.Tasks[j]
				t.RACI = withoutRACI(t.RACI, id)
				t.Assignments = withoutAssignment(t.Assignments, id)
			}
		}
		return nil
	})
}

// Assign sets a resource's allocation on a task, replacing any existing
// allocation of the same resource.
func (g *Graph) Assign(taskID string, a domain.ResourceAssignment) (*Graph, error) {
	ref, ok := g.tasks[taskID]
	if !ok {
		return nil, domain.NotFound("task", taskID)
	}
	if _, ok := g.resources[a.ResourceID]; !ok {
		return nil, domain.NotFound("resource", a.ResourceID)
	}
	if err := assignmentError("assignment", a, g.resourceSet()); err != nil {
		return nil, err
	}
	return g.mutate(func(p *domain.Project) error {
		t := &p.Phases[ref.phase].Tasks[ref.task]
		for k := range t.Assignments {
			if t.Assignments[k].ResourceID == a.ResourceID {
				t.Assignments[k] = a
				return nil
			}
		}
		t.Assignments = append(t.Assignments, a)
		return nil
	})
}

// Unassign removes a resource from a task. An absent assignment is a no-op.
func (g *Graph) Unassign(taskID, resourceID string) (*Graph, error) {
	ref, ok := g.tasks[taskID]
	if !ok {
		return nil, domain.NotFound("task", taskID)
	}
	if _, ok := g.project.Phases[ref.phase].Tasks[ref.task].Assignment(resourceID); !ok {
		return g, nil
	}
	return g.mutate(func(p *domain.Project) error {
		t := &p.Phases[ref.phase].Tasks[ref.task]
		t.Assignments = withoutAssignment(t.Assignments, resourceID)
		return nil
	})
}

// SetDesignation changes a resource's designation through rates, which
// decides whether the hourly rate follows.
func (g *Graph) SetDesignation(resourceID, designation string, rates RateResolver) (*Graph, error) {
	i, ok := g.resources[resourceID]
	if !ok {
		return nil, domain.NotFound("resource", resourceID)
	}
	updated, err := rates.ApplyDesignation(g.project.Resources[i], designation)
	if err != nil {
		return nil, err
	}
	return g.mutate(func(p *domain.Project) error {
		p.Resources[i] = updated
		return nil
	})
}

func withoutAssignment(as []domain.ResourceAssignment, resourceID string) []domain.ResourceAssignment {
	var out []domain.ResourceAssignment
	for _, a := range as {
		if a.ResourceID != resourceID {
			out = append(out, a)
		}
	}
	return out
}

func withoutRACI(entries []domain.RACIEntry, resourceID string) []domain.RACIEntry {
	var out []domain.RACIEntry
	for _, e := range entries {
		if e.ResourceID != resourceID {
			out = append(out, e)
		}
	}
	return out
}
