package planner

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/alexanderramin/phaseline/internal/domain"
	"github.com/alexanderramin/phaseline/internal/impact"
	"github.com/alexanderramin/phaseline/internal/schedule"
	"github.com/alexanderramin/phaseline/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var d = testutil.Date

func newSession(t *testing.T, p *domain.Project, opts ...Option) *Session {
	t.Helper()
	g, err := schedule.New(p)
	require.NoError(t, err)
	return NewSession(g, impact.New(nil, nil), opts...)
}

func TestSession_DeletePhaseThenUndo(t *testing.T) {
	ctx := context.Background()
	s := newSession(t, testutil.BuildAndTest())
	before := s.Graph().Project()

	prop, err := s.Propose(ctx, DeletePhase{ID: "build"})
	require.NoError(t, err)
	require.NotNil(t, prop.Report)
	assert.Equal(t, impact.Medium, prop.Report.Severity)
	assert.Equal(t, impact.ConfirmPlain, prop.Confirmation())
	assert.Equal(t, before, s.Graph().Project(), "proposing never mutates")

	require.NoError(t, s.Commit(ctx, prop, AckConfirm))
	assert.False(t, s.Graph().HasPhase("build"))
	assert.Equal(t, 1, s.UndoLen())

	require.True(t, s.Undo(ctx))
	assert.Equal(t, before, s.Graph().Project())
	assert.Zero(t, s.UndoLen())
}

func TestSession_UndoOnEmptyStackIsNoop(t *testing.T) {
	ctx := context.Background()
	s := newSession(t, testutil.BuildAndTest())
	g := s.Graph()

	assert.False(t, s.Undo(ctx))
	assert.False(t, s.Undo(ctx))
	assert.Same(t, g, s.Graph())
}

func TestSession_StaleProposal(t *testing.T) {
	ctx := context.Background()
	s := newSession(t, testutil.BuildAndTest())

	stale, err := s.Propose(ctx, DeleteTask{ID: "dev"})
	require.NoError(t, err)
	require.NoError(t, s.Apply(ctx, ResizePhase{ID: "test", Start: d(2026, 2, 2), End: d(2026, 3, 6)}))

	err = s.Commit(ctx, stale, AckConfirm)
	assert.ErrorIs(t, err, ErrStaleProposal)
	assert.True(t, s.Graph().HasTask("dev"))
}

func TestSession_ProposalFromAnotherSession(t *testing.T) {
	ctx := context.Background()
	mine := newSession(t, testutil.BuildAndTest())
	other := newSession(t, testutil.BuildAndTest())

	foreign, err := other.Propose(ctx, DeleteTask{ID: "dev"})
	require.NoError(t, err)

	err = mine.Commit(ctx, foreign, AckConfirm)
	assert.ErrorIs(t, err, ErrStaleProposal)
	assert.True(t, mine.Graph().HasTask("dev"))
	assert.Zero(t, mine.UndoLen())
}

func TestSession_UndoRevalidatesEarlierProposal(t *testing.T) {
	ctx := context.Background()
	s := newSession(t, testutil.BuildAndTest())

	prop, err := s.Propose(ctx, DeleteTask{ID: "dev"})
	require.NoError(t, err)
	require.NoError(t, s.Apply(ctx, ResizePhase{ID: "test", Start: d(2026, 2, 2), End: d(2026, 3, 6)}))
	require.True(t, s.Undo(ctx))

	require.NoError(t, s.Commit(ctx, prop, AckConfirm), "the graph is back to the one the proposal saw")
	assert.False(t, s.Graph().HasTask("dev"))
}

func TestSession_CommitWithoutProposal(t *testing.T) {
	ctx := context.Background()
	s := newSession(t, testutil.BuildAndTest())

	assert.ErrorIs(t, s.Commit(ctx, nil, AckConfirm), ErrNoProposal)
	assert.ErrorIs(t, s.Commit(ctx, &Proposal{}, AckConfirm), ErrNoProposal)
	assert.Zero(t, s.UndoLen())
}

func TestSession_CriticalRequiresDeleteAnyway(t *testing.T) {
	ctx := context.Background()
	var resources []domain.Resource
	for i := 0; i < 6; i++ {
		resources = append(resources, testutil.NewTestResource(fmt.Sprintf("R%d", i), 400, testutil.WithResourceID(fmt.Sprintf("r%d", i))))
	}
	var tasks []domain.Task
	for i := 0; i < 11; i++ {
		tasks = append(tasks, testutil.NewTestTask(fmt.Sprintf("T%d", i), d(2026, 1, 5), d(2026, 1, 9),
			testutil.WithTaskID(fmt.Sprintf("t%d", i)), testutil.WithAssignment(fmt.Sprintf("r%d", i%6), 100)))
	}
	p := testutil.BuildAndTest(testutil.WithResources(resources...))
	p.Phases[0].Tasks = append(p.Phases[0].Tasks, tasks...)
	p.Phases[1].Tasks = []domain.Task{testutil.NewTestTask("QA", d(2026, 2, 2), d(2026, 2, 6),
		testutil.WithTaskID("qa"), testutil.WithTaskDependencies("t3"))}
	s := newSession(t, p)

	prop, err := s.Propose(ctx, DeletePhase{ID: "build"})
	require.NoError(t, err)
	require.Equal(t, impact.Critical, prop.Report.Severity)

	before := s.Graph()
	assert.ErrorIs(t, s.Commit(ctx, prop, AckConfirm), ErrAckRequired)
	assert.Same(t, before, s.Graph())

	require.NoError(t, s.Commit(ctx, prop, AckDeleteAnyway))
	assert.False(t, s.Graph().HasPhase("build"))
}

func TestSession_FailedCommitLeavesGraph(t *testing.T) {
	ctx := context.Background()
	s := newSession(t, testutil.BuildAndTest())
	before := s.Graph()

	err := s.Apply(ctx, Edit{Name: "add cycle", Fn: func(g *schedule.Graph) (*schedule.Graph, error) {
		return g.AddPhaseDependency("build", "test")
	}})
	assert.Equal(t, domain.RuleCycle, domain.RuleOf(err))
	assert.Same(t, before, s.Graph())
	assert.Zero(t, s.UndoLen())
}

func TestSession_BoundaryNoopRecordsNothing(t *testing.T) {
	ctx := context.Background()
	s := newSession(t, testutil.BuildAndTest())

	for i := 0; i < 3; i++ {
		require.NoError(t, s.Apply(ctx, Edit{Name: "move up", Fn: func(g *schedule.Graph) (*schedule.Graph, error) {
			return g.Reorder("build", schedule.Up)
		}}))
	}
	assert.Zero(t, s.UndoLen())
}

func TestSession_UndoDepthIsBounded(t *testing.T) {
	ctx := context.Background()
	s := newSession(t, testutil.BuildAndTest(), WithUndoDepth(2))
	original := s.Graph().Project()

	for i := 0; i < 3; i++ {
		require.NoError(t, s.Apply(ctx, Edit{Name: "swap", Fn: func(g *schedule.Graph) (*schedule.Graph, error) {
			first := g.View().Phases[0].ID
			return g.Reorder(first, schedule.Down)
		}}))
	}
	assert.Equal(t, 2, s.UndoLen())

	assert.True(t, s.Undo(ctx))
	assert.True(t, s.Undo(ctx))
	assert.False(t, s.Undo(ctx))
	// Three swaps, two undone: one swap remains.
	assert.NotEqual(t, original, s.Graph().Project())
	assert.Equal(t, "test", s.Graph().View().Phases[0].ID)
}

func TestSession_LogObserver(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	s := newSession(t, testutil.BuildAndTest(), WithObserver(NewLogObserver(&buf)))

	prop, err := s.Propose(ctx, MoveTask{TaskID: "dev", ToPhaseID: "test"})
	require.NoError(t, err)
	require.NoError(t, s.Commit(ctx, prop, AckConfirm))

	out := buf.String()
	assert.Contains(t, out, "planner_op")
	assert.Contains(t, out, "op=propose")
	assert.Contains(t, out, "op=commit")
	assert.Contains(t, out, "severity=high")

	_, err = s.Propose(ctx, DeleteTask{ID: "ghost"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Contains(t, buf.String(), "level=ERROR")
}
