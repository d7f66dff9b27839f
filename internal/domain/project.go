package domain

import (
	"slices"
	"time"
)

type Resource struct {
	ID          string
	Name        string
	Designation string
	Category    ResourceCategory
	HourlyRate  float64
	Billable    bool
}

type Holiday struct {
	Date      time.Time
	Name      string
	RegionTag string
}

type Milestone struct {
	ID      string
	Name    string
	Date    time.Time
	PhaseID string // empty when the milestone is not anchored to a phase
}

// Project is the plain-data planning graph. Phases own tasks; everything
// else (dependencies, parent tasks, assignments) refers to other entities by
// id.
type Project struct {
	ID         string
	Name       string
	Region     string // named regional holiday calendar
	Phases     []Phase
	Resources  []Resource
	Holidays   []Holiday
	Milestones []Milestone
}

// Clone returns a deep copy of p. Mutations always work on a clone so that
// earlier snapshots stay intact.
func (p *Project) Clone() *Project {
	if p == nil {
		return nil
	}
	out := *p
	if p.Phases != nil {
		out.Phases = make([]Phase, len(p.Phases))
		for i, ph := range p.Phases {
			out.Phases[i] = ph.Clone()
		}
	}
	out.Resources = slices.Clone(p.Resources)
	out.Holidays = slices.Clone(p.Holidays)
	out.Milestones = slices.Clone(p.Milestones)
	return &out
}

// FindResource returns the resource with the given id.
func (p *Project) FindResource(id string) (Resource, bool) {
	for _, r := range p.Resources {
		if r.ID == id {
			return r, true
		}
	}
	return Resource{}, false
}

// AllTasks returns every task in phase order, paired with its phase.
func (p *Project) AllTasks() []PhaseTask {
	var out []PhaseTask
	for i := range p.Phases {
		for j := range p.Phases[i].Tasks {
			out = append(out, PhaseTask{Phase: &p.Phases[i], Task: &p.Phases[i].Tasks[j]})
		}
	}
	return out
}

// PhaseTask pairs a task with its owning phase.
type PhaseTask struct {
	Phase *Phase
	Task  *Task
}

// Bounds returns the earliest phase start and the latest phase end over all
// phases. ok is false when the project has no phases.
func (p *Project) Bounds() (start, end time.Time, ok bool) {
	for i := range p.Phases {
		ph := &p.Phases[i]
		if !ok {
			start, end, ok = Day(ph.StartDate), ph.EndDate(), true
			continue
		}
		start = MinDate(start, Day(ph.StartDate))
		end = MaxDate(end, ph.EndDate())
	}
	return start, end, ok
}

// LatestStandardEnd returns the latest end date among standard phases.
func (p *Project) LatestStandardEnd() (time.Time, bool) {
	var latest time.Time
	found := false
	for i := range p.Phases {
		ph := &p.Phases[i]
		if ph.IsSupport() {
			continue
		}
		if !found || ph.EndDate().After(latest) {
			latest = ph.EndDate()
			found = true
		}
	}
	return latest, found
}
