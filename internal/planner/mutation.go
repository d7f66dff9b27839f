package planner

import (
	"fmt"
	"time"

	"github.com/alexanderramin/phaseline/internal/domain"
	"github.com/alexanderramin/phaseline/internal/impact"
	"github.com/alexanderramin/phaseline/internal/schedule"
)

// Mutation is a structural change a Session can analyze and commit.
type Mutation interface {
	Describe() string
	analyze(a *impact.Analyzer, g *schedule.Graph) (*impact.Report, error)
	apply(g *schedule.Graph) (*schedule.Graph, error)
}

type DeletePhase struct{ ID string }

func (m DeletePhase) Describe() string { return fmt.Sprintf("delete phase %s", m.ID) }

func (m DeletePhase) analyze(a *impact.Analyzer, g *schedule.Graph) (*impact.Report, error) {
	return a.AnalyzePhaseDeletion(g, m.ID)
}

func (m DeletePhase) apply(g *schedule.Graph) (*schedule.Graph, error) { return g.RemovePhase(m.ID) }

type DeleteTask struct{ ID string }

func (m DeleteTask) Describe() string { return fmt.Sprintf("delete task %s", m.ID) }

func (m DeleteTask) analyze(a *impact.Analyzer, g *schedule.Graph) (*impact.Report, error) {
	return a.AnalyzeTaskDeletion(g, m.ID)
}

func (m DeleteTask) apply(g *schedule.Graph) (*schedule.Graph, error) { return g.RemoveTask(m.ID) }

// ResizePhase moves a phase's bounds, clamping its tasks.
type ResizePhase struct {
	ID    string
	Start time.Time
	End   time.Time
}

func (m ResizePhase) Describe() string {
	return fmt.Sprintf("resize phase %s to %s..%s", m.ID, m.Start.Format(domain.DateLayout), m.End.Format(domain.DateLayout))
}

func (m ResizePhase) analyze(a *impact.Analyzer, g *schedule.Graph) (*impact.Report, error) {
	return a.AnalyzeResize(g, m.ID, m.Start, m.End)
}

func (m ResizePhase) apply(g *schedule.Graph) (*schedule.Graph, error) {
	return g.ResizePhase(m.ID, m.Start, m.End)
}

// MoveTask reparents a task into another phase.
type MoveTask struct {
	TaskID    string
	ToPhaseID string
}

func (m MoveTask) Describe() string {
	return fmt.Sprintf("move task %s to phase %s", m.TaskID, m.ToPhaseID)
}

func (m MoveTask) analyze(a *impact.Analyzer, g *schedule.Graph) (*impact.Report, error) {
	return a.AnalyzeMove(g, m.TaskID, m.ToPhaseID)
}

func (m MoveTask) apply(g *schedule.Graph) (*schedule.Graph, error) {
	return g.MoveTask(m.TaskID, m.ToPhaseID)
}

// Edit wraps any other graph operation. It carries no impact analysis and
// commits with a plain confirmation.
type Edit struct {
	Name string
	Fn   func(g *schedule.Graph) (*schedule.Graph, error)
}

func (m Edit) Describe() string { return m.Name }

func (Edit) analyze(*impact.Analyzer, *schedule.Graph) (*impact.Report, error) { return nil, nil }

func (m Edit) apply(g *schedule.Graph) (*schedule.Graph, error) { return m.Fn(g) }
