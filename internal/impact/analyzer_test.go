package impact

import (
	"fmt"
	"testing"

	"github.com/alexanderramin/phaseline/internal/calendar"
	"github.com/alexanderramin/phaseline/internal/domain"
	"github.com/alexanderramin/phaseline/internal/ledger"
	"github.com/alexanderramin/phaseline/internal/schedule"
	"github.com/alexanderramin/phaseline/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var d = testutil.Date

func newAnalyzer() *Analyzer {
	cal := calendar.New(nil)
	return New(cal, ledger.New(cal, ledger.DefaultRateTable()))
}

func newGraph(t *testing.T, p *domain.Project) *schedule.Graph {
	t.Helper()
	g, err := schedule.New(p)
	require.NoError(t, err)
	return g
}

func category(t *testing.T, r *Report, label string) Category {
	t.Helper()
	c, ok := r.Category(label)
	require.True(t, ok, "missing category %q in %v", label, r.Categories)
	return c
}

// Scenario B.
func TestAnalyzePhaseDeletion_BuildWithDependentTest(t *testing.T) {
	g := newGraph(t, testutil.BuildAndTest())

	r, err := newAnalyzer().AnalyzeDeletion(g, "build")
	require.NoError(t, err)

	assert.Equal(t, Target{Kind: "phase", ID: "build", Name: "Build"}, r.Target)

	tasks := category(t, r, LabelTasks)
	assert.Equal(t, Critical, tasks.Severity)
	assert.Equal(t, []string{"Dev"}, tasks.Items)
	assert.Equal(t, 1, tasks.Facts.TaskCount)

	res := category(t, r, LabelResources)
	assert.Equal(t, High, res.Severity)
	assert.Equal(t, 1, res.Facts.ResourceCount)
	assert.Equal(t, 2000.0, res.Facts.Cost)
	assert.Equal(t, 40.0, res.Facts.Hours)
	assert.Equal(t, []string{"Eng: 40.0h, $2,000.00 across 1 task(s)", "Total: 40.0h, $2,000.00"}, res.Items)

	deps := category(t, r, LabelDependencies)
	assert.Equal(t, Critical, deps.Severity)
	assert.Equal(t, 1, deps.Facts.DependentPhases)
	assert.Zero(t, deps.Facts.DependentTasks)
	require.Len(t, deps.Items, 1)
	assert.Contains(t, deps.Items[0], `"Test"`)

	budget := category(t, r, LabelBudget)
	assert.Equal(t, Medium, budget.Severity)
	assert.InDelta(t, 100.0, budget.Facts.BudgetPercent, 1e-9)
	assert.Equal(t, "executive approval recommended", budget.Advisory)

	tl := category(t, r, LabelTimeline)
	assert.Equal(t, Low, tl.Severity)
	assert.Equal(t, 22, tl.Facts.WorkingDays)
	assert.Equal(t, 31, tl.Facts.CalendarDays)

	assert.Equal(t, []string{FactorDependentPhases}, r.Factors)
	assert.Equal(t, Medium, r.Severity)
	assert.Equal(t, Critical, r.MaxCategorySeverity)
	assert.Equal(t, ConfirmPlain, r.Confirmation())
}

func TestAnalyzeDeletion_IsPure(t *testing.T) {
	p := testutil.BuildAndTest(testutil.WithMilestone("m1", "Freeze", d(2026, 1, 30), "build"))
	g := newGraph(t, p)
	before := g.Project()
	a := newAnalyzer()

	first, err := a.AnalyzeDeletion(g, "build")
	require.NoError(t, err)
	second, err := a.AnalyzeDeletion(g, "build")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, before, g.Project())

	ms := category(t, first, LabelMilestones)
	assert.Equal(t, []string{"Freeze (2026-01-30)"}, ms.Items)
}

func TestAnalyzeTaskDeletion(t *testing.T) {
	p := testutil.BuildAndTest()
	p.Phases[0].Tasks = append(p.Phases[0].Tasks,
		testutil.NewTestTask("Unit tests", d(2026, 1, 6), d(2026, 1, 8), testutil.WithTaskID("unit"), testutil.WithParentTask("dev")))
	p.Phases[1].Tasks = append(p.Phases[1].Tasks,
		testutil.NewTestTask("QA", d(2026, 2, 2), d(2026, 2, 6), testutil.WithTaskID("qa"), testutil.WithTaskDependencies("dev")))
	g := newGraph(t, p)

	r, err := newAnalyzer().AnalyzeDeletion(g, "dev")
	require.NoError(t, err)

	assert.Equal(t, "task", r.Target.Kind)
	assert.Equal(t, []string{"Dev"}, category(t, r, LabelTasks).Items)

	deps := category(t, r, LabelDependencies)
	assert.Zero(t, deps.Facts.DependentPhases, "task deletion never touches phase dependencies")
	assert.Equal(t, 1, deps.Facts.DependentTasks)
	assert.Contains(t, deps.Items[0], `"QA"`)

	sub := category(t, r, LabelSubtasks)
	assert.Equal(t, 1, sub.Facts.TaskCount)

	tl := category(t, r, LabelTimeline)
	assert.Equal(t, 5, tl.Facts.WorkingDays)

	assert.Equal(t, []string{FactorDependentTasks}, r.Factors)
	assert.Equal(t, Medium, r.Severity)
}

func TestAnalyzeDeletion_EmptyPhaseIsLow(t *testing.T) {
	g := newGraph(t, testutil.BuildAndTest())

	r, err := newAnalyzer().AnalyzeDeletion(g, "test")
	require.NoError(t, err)

	assert.Empty(t, r.Factors)
	assert.Equal(t, Low, r.Severity)
	require.Len(t, r.Categories, 1)
	assert.Equal(t, LabelTimeline, r.Categories[0].Label)
}

func TestAnalyzeDeletion_CriticalRequiresDeleteAnyway(t *testing.T) {
	var resources []domain.Resource
	for i := 0; i < 6; i++ {
		resources = append(resources, testutil.NewTestResource(fmt.Sprintf("R%d", i), 200, testutil.WithResourceID(fmt.Sprintf("r%d", i))))
	}
	var tasks []domain.Task
	for i := 0; i < 11; i++ {
		tasks = append(tasks, testutil.NewTestTask(fmt.Sprintf("T%02d", i), d(2026, 1, 5), d(2026, 1, 30),
			testutil.WithTaskID(fmt.Sprintf("t%d", i)), testutil.WithAssignment(fmt.Sprintf("r%d", i%6), 100)))
	}
	build := testutil.NewTestPhase("Build", d(2026, 1, 1), d(2026, 1, 31), testutil.WithPhaseID("build"), testutil.WithTasks(tasks...))
	qa := testutil.NewTestTask("QA", d(2026, 2, 2), d(2026, 2, 6), testutil.WithTaskID("qa"), testutil.WithTaskDependencies("t0"))
	test := testutil.NewTestPhase("Test", d(2026, 2, 2), d(2026, 2, 27), testutil.WithPhaseID("test"),
		testutil.WithPhaseDependencies("build"), testutil.WithTasks(qa))
	g := newGraph(t, testutil.NewTestProject("Big", testutil.WithResources(resources...), testutil.WithPhases(build, test)))

	r, err := newAnalyzer().AnalyzeDeletion(g, "build")
	require.NoError(t, err)

	assert.Len(t, r.Factors, 5)
	assert.Equal(t, Critical, r.Severity)
	assert.Equal(t, ConfirmDeleteAnyway, r.Confirmation())

	tasksCat := category(t, r, LabelTasks)
	require.Len(t, tasksCat.Items, MaxListedTasks+1)
	assert.Equal(t, "... and 6 more", tasksCat.Items[MaxListedTasks])

	res := category(t, r, LabelResources)
	assert.Equal(t, 6, res.Facts.ResourceCount)
	// 11 tasks x 20 working days x 8h x 200/h
	assert.Equal(t, 352000.0, res.Facts.Cost)
	require.Len(t, res.Items, TopResources+2)
	assert.Equal(t, "... and 3 more", res.Items[TopResources])
	assert.Len(t, r.Resources, 6)
}

func TestAnalyzeDeletion_SupportPhaseWithTasks(t *testing.T) {
	care := testutil.NewTestPhase("Support", d(2026, 3, 2), d(2026, 3, 2), testutil.WithPhaseID("care"), testutil.WithSupportYears(2),
		testutil.WithTasks(testutil.NewTestTask("On-call", d(2026, 3, 2), d(2026, 3, 6), testutil.WithTaskID("oncall"))))
	g := newGraph(t, testutil.BuildAndTest(testutil.WithPhases(care)))

	r, err := newAnalyzer().AnalyzeDeletion(g, "care")
	require.NoError(t, err)
	assert.Equal(t, []string{FactorSupportTasks}, r.Factors)
	assert.Equal(t, Medium, r.Severity)
}

func TestAnalyzeDeletion_NotFound(t *testing.T) {
	g := newGraph(t, testutil.BuildAndTest())
	_, err := newAnalyzer().AnalyzeDeletion(g, "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAggregateSeverity(t *testing.T) {
	want := []Severity{Low, Medium, Medium, High, High, Critical, Critical}
	for n, sev := range want {
		assert.Equal(t, sev, AggregateSeverity(n), "factors=%d", n)
	}
}

func TestAnalyzeResize(t *testing.T) {
	g := newGraph(t, testutil.BuildAndTest())
	a := newAnalyzer()

	t.Run("shrink clamps tasks", func(t *testing.T) {
		r, err := a.AnalyzeResize(g, "build", d(2026, 1, 7), d(2026, 1, 20))
		require.NoError(t, err)

		moved := category(t, r, LabelRescheduled)
		assert.Equal(t, []string{"Dev: 2026-01-05..2026-01-09 -> 2026-01-07..2026-01-09"}, moved.Items)

		cost := category(t, r, LabelResources)
		assert.Equal(t, -800.0, cost.Facts.Cost)

		tl := category(t, r, LabelTimeline)
		assert.Equal(t, -12, tl.Facts.WorkingDays)

		assert.Equal(t, High, r.Severity)
	})

	t.Run("extend overlaps dependent phase", func(t *testing.T) {
		r, err := a.AnalyzeResize(g, "build", d(2026, 1, 1), d(2026, 2, 10))
		require.NoError(t, err)

		_, ok := r.Category(LabelRescheduled)
		assert.False(t, ok)
		deps := category(t, r, LabelDependencies)
		assert.Equal(t, 1, deps.Facts.DependentPhases)
		assert.Equal(t, Medium, r.Severity)
	})

	t.Run("invalid range", func(t *testing.T) {
		_, err := a.AnalyzeResize(g, "build", d(2026, 1, 20), d(2026, 1, 7))
		assert.Equal(t, domain.RuleDateRange, domain.RuleOf(err))
	})
}

func TestAnalyzeMove(t *testing.T) {
	p := testutil.BuildAndTest()
	p.Phases[0].Tasks = append(p.Phases[0].Tasks,
		testutil.NewTestTask("Docs", d(2026, 1, 12), d(2026, 1, 16), testutil.WithTaskID("docs"), testutil.WithTaskDependencies("dev")))
	g := newGraph(t, p)
	before := g.Project()

	r, err := newAnalyzer().AnalyzeMove(g, "dev", "test")
	require.NoError(t, err)

	assert.Equal(t, ActionMove, r.Action)
	assert.Equal(t, []string{`Dev moves from "Build" to "Test"`}, category(t, r, LabelTasks).Items)
	assert.Len(t, category(t, r, LabelRescheduled).Items, 1)
	assert.Equal(t, 1, category(t, r, LabelDependencies).Facts.DependentTasks)
	// Clamped to a single working day: 8h instead of 40h.
	assert.Equal(t, -1600.0, category(t, r, LabelResources).Facts.Cost)
	assert.Equal(t, High, r.Severity)
	assert.Equal(t, before, g.Project())
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "$2,000.00", FormatMoney(2000))
	assert.Equal(t, "$1,234,567.89", FormatMoney(1234567.891))
	assert.Equal(t, "-$800.00", FormatMoney(-800))
}
