// Package schedule holds the phase/task/dependency graph of a project and
// the mutations allowed on it.
//
// A Graph is immutable. Every mutation clones the project, applies the change
// to the clone, re-indexes it and returns a new Graph; the receiver is never
// touched. A rejected mutation returns an error and leaves the caller holding
// the unchanged receiver, so a consumer never observes a half-applied change.
package schedule

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/phaseline/internal/domain"
)

// ContainmentPolicy decides what happens when a task edit would place the
// task outside its phase.
type ContainmentPolicy int

const (
	PolicyReject ContainmentPolicy = iota
	PolicyClamp
)

func (p ContainmentPolicy) String() string {
	if p == PolicyClamp {
		return "clamp"
	}
	return "reject"
}

// ParsePolicy parses "reject" or "clamp".
func ParsePolicy(s string) (ContainmentPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "reject":
		return PolicyReject, nil
	case "clamp":
		return PolicyClamp, nil
	}
	return PolicyReject, domain.Invalid("containment", domain.RuleUnknownRef, "unknown containment policy %q (expected reject or clamp)", s)
}

// Direction is a reorder direction.
type Direction int

const (
	Up Direction = iota
	Down
)

type Option func(*Graph)

// WithContainment sets the policy applied to task date edits.
func WithContainment(p ContainmentPolicy) Option {
	return func(g *Graph) { g.policy = p }
}

type taskRef struct {
	phase int
	task  int
}

// Graph is an indexed, validated snapshot of a project.
type Graph struct {
	project   *domain.Project
	policy    ContainmentPolicy
	phases    map[string]int
	tasks     map[string]taskRef
	resources map[string]int
}

// New validates p and indexes a private copy of it.
func New(p *domain.Project, opts ...Option) (*Graph, error) {
	if p == nil {
		return nil, domain.Invalid("project", domain.RuleRequired, "project is required")
	}
	g := &Graph{}
	for _, opt := range opts {
		opt(g)
	}
	if err := Validate(p); err != nil {
		return nil, err
	}
	return g.with(p.Clone()), nil
}

// with wraps an already-mutated project in a new Graph sharing g's options.
// ids are assumed unique: every caller checks before inserting.
func (g *Graph) with(p *domain.Project) *Graph {
	ng := &Graph{
		project:   p,
		policy:    g.policy,
		phases:    make(map[string]int, len(p.Phases)),
		tasks:     make(map[string]taskRef),
		resources: make(map[string]int, len(p.Resources)),
	}
	for i := range p.Phases {
		ng.phases[p.Phases[i].ID] = i
		for j := range p.Phases[i].Tasks {
			ng.tasks[p.Phases[i].Tasks[j].ID] = taskRef{phase: i, task: j}
		}
	}
	for i := range p.Resources {
		ng.resources[p.Resources[i].ID] = i
	}
	return ng
}

// Project returns a deep copy of the underlying project.
func (g *Graph) Project() *domain.Project { return g.project.Clone() }

// Policy returns the containment policy.
func (g *Graph) Policy() ContainmentPolicy { return g.policy }

// View exposes the underlying project without copying. Callers must not
// modify it.
func (g *Graph) View() *domain.Project { return g.project }

func (g *Graph) Phase(id string) (domain.Phase, error) {
	i, ok := g.phases[id]
	if !ok {
		return domain.Phase{}, domain.NotFound("phase", id)
	}
	return g.project.Phases[i].Clone(), nil
}

func (g *Graph) Task(id string) (domain.Task, error) {
	ref, ok := g.tasks[id]
	if !ok {
		return domain.Task{}, domain.NotFound("task", id)
	}
	return g.project.Phases[ref.phase].Tasks[ref.task].Clone(), nil
}

// PhaseOf returns the phase owning taskID.
func (g *Graph) PhaseOf(taskID string) (domain.Phase, error) {
	ref, ok := g.tasks[taskID]
	if !ok {
		return domain.Phase{}, domain.NotFound("task", taskID)
	}
	return g.project.Phases[ref.phase].Clone(), nil
}

func (g *Graph) Resource(id string) (domain.Resource, error) {
	i, ok := g.resources[id]
	if !ok {
		return domain.Resource{}, domain.NotFound("resource", id)
	}
	return g.project.Resources[i], nil
}

func (g *Graph) HasPhase(id string) bool {
	_, ok := g.phases[id]
	return ok
}

func (g *Graph) HasTask(id string) bool {
	_, ok := g.tasks[id]
	return ok
}

// Kind reports whether id names a phase or a task.
func (g *Graph) Kind(id string) (string, error) {
	switch {
	case g.HasPhase(id):
		return "phase", nil
	case g.HasTask(id):
		return "task", nil
	}
	return "", domain.NotFound("item", id)
}

// Validate runs the full invariant check over the current project.
func (g *Graph) Validate() error { return Validate(g.project) }

func (g *Graph) String() string {
	return fmt.Sprintf("schedule.Graph{%s: %d phases, %d tasks}", g.project.Name, len(g.phases), len(g.tasks))
}

// mutate clones the project, hands the clone to fn and wraps the result.
// When fn fails the clone is discarded.
func (g *Graph) mutate(fn func(p *domain.Project) error) (*Graph, error) {
	p := g.project.Clone()
	if err := fn(p); err != nil {
		return nil, err
	}
	return g.with(p), nil
}
