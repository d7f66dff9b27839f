package testutil

import (
	"time"

	"github.com/alexanderramin/phaseline/internal/domain"
	"github.com/google/uuid"
)

// Date is shorthand for a civil date in fixtures.
func Date(y int, m time.Month, d int) time.Time { return domain.Date(y, m, d) }

// Project options
type ProjectOption func(*domain.Project)

func WithRegion(region string) ProjectOption {
	return func(p *domain.Project) {
		p.Region = region
	}
}

func WithHoliday(d time.Time, name string) ProjectOption {
	return func(p *domain.Project) {
		p.Holidays = append(p.Holidays, domain.Holiday{Date: d, Name: name})
	}
}

func WithResources(rs ...domain.Resource) ProjectOption {
	return func(p *domain.Project) {
		p.Resources = append(p.Resources, rs...)
	}
}

func WithPhases(phs ...domain.Phase) ProjectOption {
	return func(p *domain.Project) {
		p.Phases = append(p.Phases, phs...)
	}
}

func WithMilestone(id, name string, d time.Time, phaseID string) ProjectOption {
	return func(p *domain.Project) {
		p.Milestones = append(p.Milestones, domain.Milestone{ID: id, Name: name, Date: d, PhaseID: phaseID})
	}
}

func NewTestProject(name string, opts ...ProjectOption) *domain.Project {
	p := &domain.Project{
		ID:   uuid.New().String(),
		Name: name,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Phase options
type PhaseOption func(*domain.Phase)

func WithPhaseID(id string) PhaseOption {
	return func(ph *domain.Phase) {
		ph.ID = id
	}
}

// WithSupportYears turns the phase into an ongoing-support phase.
func WithSupportYears(years int) PhaseOption {
	return func(ph *domain.Phase) {
		ph.Span = domain.SupportSpan{Years: years}
	}
}

func WithPhaseDependencies(ids ...string) PhaseOption {
	return func(ph *domain.Phase) {
		ph.Dependencies = append(ph.Dependencies, ids...)
	}
}

func WithTasks(ts ...domain.Task) PhaseOption {
	return func(ph *domain.Phase) {
		ph.Tasks = append(ph.Tasks, ts...)
	}
}

func WithCollapsed() PhaseOption {
	return func(ph *domain.Phase) {
		ph.Collapsed = true
	}
}

func NewTestPhase(name string, start, end time.Time, opts ...PhaseOption) domain.Phase {
	ph := domain.Phase{
		ID:        uuid.New().String(),
		Name:      name,
		StartDate: start,
		Span:      domain.StandardSpan{End: end},
	}
	for _, opt := range opts {
		opt(&ph)
	}
	return ph
}

// Task options
type TaskOption func(*domain.Task)

func WithTaskID(id string) TaskOption {
	return func(t *domain.Task) {
		t.ID = id
	}
}

func WithTaskDependencies(ids ...string) TaskOption {
	return func(t *domain.Task) {
		t.Dependencies = append(t.Dependencies, ids...)
	}
}

func WithAssignment(resourceID string, pct float64) TaskOption {
	return func(t *domain.Task) {
		t.Assignments = append(t.Assignments, domain.ResourceAssignment{ResourceID: resourceID, AllocationPercent: pct})
	}
}

func WithParentTask(id string) TaskOption {
	return func(t *domain.Task) {
		t.ParentTaskID = &id
	}
}

func NewTestTask(name string, start, end time.Time, opts ...TaskOption) domain.Task {
	t := domain.Task{
		ID:        uuid.New().String(),
		Name:      name,
		StartDate: start,
		EndDate:   end,
	}
	for _, opt := range opts {
		opt(&t)
	}
	return t
}

// Resource options
type ResourceOption func(*domain.Resource)

func WithResourceID(id string) ResourceOption {
	return func(r *domain.Resource) {
		r.ID = id
	}
}

func WithDesignation(d string) ResourceOption {
	return func(r *domain.Resource) {
		r.Designation = d
	}
}

func NonBillable() ResourceOption {
	return func(r *domain.Resource) {
		r.Billable = false
	}
}

func NewTestResource(name string, rate float64, opts ...ResourceOption) domain.Resource {
	r := domain.Resource{
		ID:          uuid.New().String(),
		Name:        name,
		Designation: "Consultant",
		Category:    domain.CategoryInternal,
		HourlyRate:  rate,
		Billable:    true,
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// BuildAndTest is the reference plan used across packages: phase "Build"
// (Jan 1-31 2026) owns task "Dev" (Jan 5-9) staffed by "Eng" at 50/h and
// 100%, and phase "Test" (Feb 2-27) depends on Build. Ids are the lower-case
// names.
func BuildAndTest(opts ...ProjectOption) *domain.Project {
	eng := NewTestResource("Eng", 50, WithResourceID("eng"))
	dev := NewTestTask("Dev", Date(2026, 1, 5), Date(2026, 1, 9),
		WithTaskID("dev"), WithAssignment("eng", 100))
	build := NewTestPhase("Build", Date(2026, 1, 1), Date(2026, 1, 31),
		WithPhaseID("build"), WithTasks(dev))
	test := NewTestPhase("Test", Date(2026, 2, 2), Date(2026, 2, 27),
		WithPhaseID("test"), WithPhaseDependencies("build"))

	all := append([]ProjectOption{WithResources(eng), WithPhases(build, test)}, opts...)
	p := NewTestProject("Launch", all...)
	p.ID = "launch"
	return p
}
