package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/alexanderramin/phaseline/internal/config"
	"github.com/alexanderramin/phaseline/internal/domain"
	"github.com/alexanderramin/phaseline/internal/repository"
	"github.com/alexanderramin/phaseline/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

func stripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

type fakePrompter struct {
	confirm bool
	input   string
	asked   []string
}

func (f *fakePrompter) Confirm(title, _ string) (bool, error) {
	f.asked = append(f.asked, title)
	return f.confirm, nil
}

func (f *fakePrompter) Input(title, _ string) (string, error) {
	f.asked = append(f.asked, title)
	return f.input, nil
}

// testApp wires a full App backed by an in-memory DB for CLI integration tests.
func testApp(t *testing.T) *App {
	t.Helper()
	database := testutil.NewTestDB(t)
	store := repository.NewProjectStore(database, testutil.NewTestUoW(database))
	app, err := NewApp(config.Default(), store)
	require.NoError(t, err)
	app.Prompter = &fakePrompter{}
	app.RunViewer = nil
	return app
}

func seedProject(t *testing.T, app *App, p *domain.Project) {
	t.Helper()
	require.NoError(t, app.Store.Import(context.Background(), p))
}

func loadProject(t *testing.T, app *App, id string) (*domain.Project, int) {
	t.Helper()
	p, rev, err := app.Store.Load(context.Background(), id)
	require.NoError(t, err)
	return p, rev
}

// executeCmd runs a cobra command and captures stdout/stderr.
func executeCmd(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(app)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return stripANSI(buf.String()), err
}

// bigProject has a build phase whose deletion trips every aggregate factor.
func bigProject() *domain.Project {
	d := testutil.Date
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
	p := testutil.NewTestProject("Big", testutil.WithResources(resources...), testutil.WithPhases(build, test))
	p.ID = "big"
	return p
}

const importDoc = `{
  "project": {"id": "launch", "name": "Launch", "region": "MY"},
  "resources": [{"id": "eng", "name": "Eng", "designation": "Senior Consultant"}],
  "phases": [
    {"id": "build", "name": "Build", "start_date": "2026-01-01", "end_date": "2026-01-31",
     "tasks": [{"id": "dev", "name": "Dev", "start_date": "2026-01-05", "end_date": "2026-01-09",
                "assignments": [{"resource_id": "eng", "allocation_percent": 100}]}]},
    {"id": "care", "name": "Care", "kind": "ongoing_support", "start_date": "2026-02-02", "support_years": 1}
  ]
}`

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "project.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// --- project ---

func TestProjectImport_ThenList(t *testing.T) {
	app := testApp(t)

	out, err := executeCmd(t, app, "project", "import", writeFile(t, importDoc))
	require.NoError(t, err)
	assert.Contains(t, out, "Imported project Launch [launch]: 2 phases, 1 tasks, 1 resources")

	out, err = executeCmd(t, app, "project", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "launch")
	assert.Contains(t, out, "Launch")
	assert.Contains(t, out, "MY")

	p, rev := loadProject(t, app, "launch")
	assert.Equal(t, 1, rev)
	assert.Equal(t, 70.0, p.Resources[0].HourlyRate)
}

func TestProjectImport_ReportsEveryProblem(t *testing.T) {
	app := testApp(t)
	doc := `{"project": {"name": ""}, "phases": [{"name": "A", "start_date": "nope", "end_date": "2026-01-31"}]}`

	out, err := executeCmd(t, app, "project", "import", writeFile(t, doc))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "import failed: 2 problem(s)")
	assert.Contains(t, out, "project.name")
	assert.Contains(t, out, "phases[0].start_date")

	projects, err := app.Store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, projects)
}

func TestProjectImport_Duplicate(t *testing.T) {
	app := testApp(t)
	seedProject(t, app, testutil.BuildAndTest())

	_, err := executeCmd(t, app, "project", "import", writeFile(t, importDoc))
	require.Error(t, err)
	assert.Equal(t, domain.RuleDuplicateID, domain.RuleOf(err))
}

func TestProjectList_Empty(t *testing.T) {
	app := testApp(t)
	out, err := executeCmd(t, app, "project", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No projects")
}

func TestProjectShow(t *testing.T) {
	app := testApp(t)
	seedProject(t, app, testutil.BuildAndTest())

	out, err := executeCmd(t, app, "project", "show", "launch")
	require.NoError(t, err)
	assert.Contains(t, out, "LAUNCH")
	assert.Contains(t, out, "2026-01-01 → 2026-02-27")
	assert.Contains(t, out, "42 working / 58 calendar")
	assert.Contains(t, out, "Cost: $2,000.00")
	assert.Contains(t, out, "build")
	assert.Contains(t, out, "Test")
}

func TestProjectShow_NotFound(t *testing.T) {
	app := testApp(t)
	_, err := executeCmd(t, app, "project", "show", "ghost")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProjectExport_RoundTrips(t *testing.T) {
	app := testApp(t)
	seedProject(t, app, testutil.BuildAndTest())

	path := filepath.Join(t.TempDir(), "out.json")
	out, err := executeCmd(t, app, "project", "export", "launch", "--output", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported project launch")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"id": "launch"`)

	require.NoError(t, app.Store.Remove(context.Background(), "launch"))
	_, err = executeCmd(t, app, "project", "import", path)
	require.NoError(t, err)
	p, _ := loadProject(t, app, "launch")
	assert.Equal(t, testutil.BuildAndTest(), p)
}

func TestProjectRemove(t *testing.T) {
	app := testApp(t)
	seedProject(t, app, testutil.BuildAndTest())

	_, err := executeCmd(t, app, "project", "remove", "launch")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--yes")

	out, err := executeCmd(t, app, "project", "remove", "launch", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed project launch")

	_, _, err = app.Store.Load(context.Background(), "launch")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProjectRemove_InteractiveDeclined(t *testing.T) {
	app := testApp(t)
	seedProject(t, app, testutil.BuildAndTest())
	app.IsInteractive = func() bool { return true }
	prompter := &fakePrompter{confirm: false}
	app.Prompter = prompter

	out, err := executeCmd(t, app, "project", "remove", "launch")
	require.NoError(t, err)
	assert.Contains(t, out, "Cancelled")
	assert.Len(t, prompter.asked, 1)
	loadProject(t, app, "launch")
}

func TestProjectHistoryAndRestore(t *testing.T) {
	app := testApp(t)
	seedProject(t, app, testutil.BuildAndTest())

	_, err := executeCmd(t, app, "phase", "delete", "launch", "build", "--yes")
	require.NoError(t, err)

	out, err := executeCmd(t, app, "project", "history", "launch")
	require.NoError(t, err)
	assert.Contains(t, out, "delete phase build")
	assert.Contains(t, out, "● MEDIUM")
	assert.Contains(t, out, "import")

	out, err = executeCmd(t, app, "project", "restore", "launch", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Restored revision 1 of launch as revision 3")

	p, rev := loadProject(t, app, "launch")
	assert.Equal(t, 3, rev)
	assert.Len(t, p.Phases, 2)

	_, err = executeCmd(t, app, "project", "restore", "launch", "zero")
	assert.Error(t, err)
}

// --- phase / task mutations ---

func TestPhaseDelete_RequiresConfirmation(t *testing.T) {
	app := testApp(t)
	seedProject(t, app, testutil.BuildAndTest())

	out, err := executeCmd(t, app, "phase", "delete", "launch", "build")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rerun with --yes")
	assert.Contains(t, out, "Dependencies", "the report is shown before asking")

	_, rev := loadProject(t, app, "launch")
	assert.Equal(t, 1, rev)
}

func TestPhaseDelete_WithYes(t *testing.T) {
	app := testApp(t)
	seedProject(t, app, testutil.BuildAndTest())

	out, err := executeCmd(t, app, "phase", "delete", "launch", "build", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Impact: ● MEDIUM")
	assert.Contains(t, out, "worst finding: critical")
	assert.Contains(t, out, "Factors: dependent phases")
	assert.Contains(t, out, "! executive approval recommended")
	assert.Contains(t, out, "✔ delete phase build (revision 2)")

	p, rev := loadProject(t, app, "launch")
	assert.Equal(t, 2, rev)
	require.Len(t, p.Phases, 1)
	assert.Equal(t, "test", p.Phases[0].ID)
	assert.Empty(t, p.Phases[0].Dependencies)
}

func TestPhaseDelete_InteractiveConfirm(t *testing.T) {
	app := testApp(t)
	seedProject(t, app, testutil.BuildAndTest())
	app.IsInteractive = func() bool { return true }

	prompter := &fakePrompter{confirm: false}
	app.Prompter = prompter
	out, err := executeCmd(t, app, "phase", "delete", "launch", "test")
	require.NoError(t, err)
	assert.Contains(t, out, "Cancelled; nothing changed.")
	assert.Equal(t, []string{"Proceed with delete phase test?"}, prompter.asked)

	prompter.confirm = true
	_, err = executeCmd(t, app, "phase", "delete", "launch", "test")
	require.NoError(t, err)
	p, _ := loadProject(t, app, "launch")
	assert.Len(t, p.Phases, 1)
}

func TestPhaseDelete_CriticalNeedsDeleteAnyway(t *testing.T) {
	app := testApp(t)
	seedProject(t, app, bigProject())

	out, err := executeCmd(t, app, "phase", "delete", "big", "build", "--yes")
	require.Error(t, err, "--yes does not cover critical impact")
	assert.Contains(t, err.Error(), "critical impact")
	assert.Contains(t, out, "Impact: ● CRITICAL")
	assert.Contains(t, out, `type "delete anyway" to proceed`)

	app.IsInteractive = func() bool { return true }
	app.Prompter = &fakePrompter{input: "nope"}
	out, err = executeCmd(t, app, "phase", "delete", "big", "build")
	require.NoError(t, err)
	assert.Contains(t, out, "Cancelled")
	_, rev := loadProject(t, app, "big")
	assert.Equal(t, 1, rev)

	app.Prompter = &fakePrompter{input: "  Delete Anyway "}
	_, err = executeCmd(t, app, "phase", "delete", "big", "build")
	require.NoError(t, err)
	p, rev := loadProject(t, app, "big")
	assert.Equal(t, 2, rev)
	assert.Len(t, p.Phases, 1)
}

func TestPhaseDelete_Force(t *testing.T) {
	app := testApp(t)
	seedProject(t, app, bigProject())

	out, err := executeCmd(t, app, "phase", "delete", "big", "build", "--force")
	require.NoError(t, err)
	assert.Contains(t, out, "✔ delete phase build")

	revs, err := app.Store.History(context.Background(), "big")
	require.NoError(t, err)
	assert.Equal(t, "critical", revs[0].Severity)
}

func TestPhaseDelete_UnknownPhase(t *testing.T) {
	app := testApp(t)
	seedProject(t, app, testutil.BuildAndTest())

	_, err := executeCmd(t, app, "phase", "delete", "launch", "ghost", "--yes")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTaskDelete(t *testing.T) {
	app := testApp(t)
	seedProject(t, app, testutil.BuildAndTest())

	out, err := executeCmd(t, app, "task", "delete", "launch", "dev", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, `DELETE TASK "DEV"`)
	assert.Contains(t, out, "Eng: 40.0h, $2,000.00")

	p, _ := loadProject(t, app, "launch")
	assert.Empty(t, p.Phases[0].Tasks)
}

func TestPhaseResize_ClampsTasks(t *testing.T) {
	app := testApp(t)
	seedProject(t, app, testutil.BuildAndTest())

	out, err := executeCmd(t, app, "phase", "resize", "launch", "build", "2026-01-07", "2026-01-20", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Rescheduled Tasks")

	p, _ := loadProject(t, app, "launch")
	assert.Equal(t, testutil.Date(2026, 1, 20), p.Phases[0].EndDate())
	assert.Equal(t, testutil.Date(2026, 1, 7), p.Phases[0].Tasks[0].StartDate)
}

func TestPhaseResize_BadDate(t *testing.T) {
	app := testApp(t)
	seedProject(t, app, testutil.BuildAndTest())

	_, err := executeCmd(t, app, "phase", "resize", "launch", "build", "2026-01-07", "soon", "--yes")
	assert.Error(t, err)
}

func TestTaskMove(t *testing.T) {
	app := testApp(t)
	seedProject(t, app, testutil.BuildAndTest())

	out, err := executeCmd(t, app, "task", "move", "launch", "dev", "test", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, `Dev moves from "Build" to "Test"`)

	p, _ := loadProject(t, app, "launch")
	assert.Empty(t, p.Phases[0].Tasks)
	require.Len(t, p.Phases[1].Tasks, 1)
	assert.Equal(t, "dev", p.Phases[1].Tasks[0].ID)
}

func TestPhaseCollapse(t *testing.T) {
	app := testApp(t)
	seedProject(t, app, testutil.BuildAndTest())

	_, err := executeCmd(t, app, "phase", "collapse", "launch", "build")
	require.NoError(t, err)
	p, rev := loadProject(t, app, "launch")
	assert.True(t, p.Phases[0].Collapsed)
	assert.Equal(t, 2, rev)

	out, err := executeCmd(t, app, "phase", "collapse", "launch", "build")
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing to change.")
	_, rev = loadProject(t, app, "launch")
	assert.Equal(t, 2, rev, "a no-op writes no revision")

	_, err = executeCmd(t, app, "phase", "collapse", "launch", "build", "--expand")
	require.NoError(t, err)
	p, _ = loadProject(t, app, "launch")
	assert.False(t, p.Phases[0].Collapsed)
}

func TestResourceDesignate(t *testing.T) {
	app := testApp(t)
	seedProject(t, app, testutil.BuildAndTest())

	_, err := executeCmd(t, app, "resource", "designate", "launch", "eng", "senior consultant")
	require.NoError(t, err)
	p, _ := loadProject(t, app, "launch")
	assert.Equal(t, 70.0, p.Resources[0].HourlyRate)

	_, err = executeCmd(t, app, "resource", "designate", "launch", "eng", "Wizard")
	require.Error(t, err)
	assert.Equal(t, domain.RuleUnknownRef, domain.RuleOf(err))
}

// --- read-only commands ---

func TestImpact_IsReadOnly(t *testing.T) {
	app := testApp(t)
	seedProject(t, app, testutil.BuildAndTest())

	out, err := executeCmd(t, app, "impact", "launch", "build")
	require.NoError(t, err)
	assert.Contains(t, out, `DELETE PHASE "BUILD"`)
	assert.Contains(t, out, "Budget Impact")
	assert.Contains(t, out, "Timeline")

	_, rev := loadProject(t, app, "launch")
	assert.Equal(t, 1, rev)
}

func TestImpact_ResizeAndMove(t *testing.T) {
	app := testApp(t)
	seedProject(t, app, testutil.BuildAndTest())

	out, err := executeCmd(t, app, "impact", "launch", "build", "--start", "2026-01-01", "--end", "2026-02-10")
	require.NoError(t, err)
	assert.Contains(t, out, `RESIZE PHASE "BUILD"`)
	assert.Contains(t, out, `Phase "Test" starts 2026-02-02`)

	out, err = executeCmd(t, app, "impact", "launch", "dev", "--move-to", "test")
	require.NoError(t, err)
	assert.Contains(t, out, `MOVE TASK "DEV"`)

	_, err = executeCmd(t, app, "impact", "launch", "build", "--start", "2026-01-01")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "together")
}

func TestImpact_BadDateFlag(t *testing.T) {
	app := testApp(t)
	seedProject(t, app, testutil.BuildAndTest())

	_, err := executeCmd(t, app, "impact", "launch", "build", "--start", "01/02/2026", "--end", "2026-02-10")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--start")
}

func TestDays_Region(t *testing.T) {
	app := testApp(t)

	out, err := executeCmd(t, app, "days", "2026-01-01", "2026-01-31", "--region", "my")
	require.NoError(t, err)
	assert.Contains(t, out, "Working days:  21")
	assert.Contains(t, out, "Calendar days: 31 (1mo 1d)")
	assert.Contains(t, out, "2026-01-01  New Year's Day")
}

func TestDays_NoRegion(t *testing.T) {
	app := testApp(t)

	out, err := executeCmd(t, app, "days", "2026-01-01", "2026-01-31")
	require.NoError(t, err)
	assert.Contains(t, out, "Working days:  22")
	assert.NotContains(t, out, "Holidays")
}

func TestDays_ProjectHolidaysAndAdd(t *testing.T) {
	app := testApp(t)
	seedProject(t, app, testutil.BuildAndTest(testutil.WithHoliday(testutil.Date(2026, 1, 5), "Offsite")))

	out, err := executeCmd(t, app, "days", "2026-01-02", "2026-01-09", "--project", "launch", "--add", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "Working days:  5")
	assert.Contains(t, out, "Offsite")
	// Fri 2, (Mon 5 is a holiday), Tue 6, Wed 7.
	assert.Contains(t, out, "3 working days after 2026-01-02: 2026-01-07")
}

func TestDays_Errors(t *testing.T) {
	app := testApp(t)

	_, err := executeCmd(t, app, "days", "2026-01-31", "2026-01-01")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = executeCmd(t, app, "days", "2026-01-01", "2026-01-31", "--region", "XX")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no holiday preset")
}

func TestResources(t *testing.T) {
	app := testApp(t)
	idle := testutil.NewTestResource("Idle", 80, testutil.WithResourceID("idle"))
	seedProject(t, app, testutil.BuildAndTest(testutil.WithResources(idle)))

	out, err := executeCmd(t, app, "resources", "launch")
	require.NoError(t, err)
	assert.Contains(t, out, "Eng")
	assert.Contains(t, out, "40.0h")
	assert.Contains(t, out, "$2,000.00")
	assert.Contains(t, out, "100%")
	assert.Contains(t, out, "Idle")
	assert.Contains(t, out, "Total: 40.0h, $2,000.00")
}

func TestTimeline_FixedGranularity(t *testing.T) {
	app := testApp(t)
	seedProject(t, app, testutil.BuildAndTest())

	out, err := executeCmd(t, app, "timeline", "launch", "--granularity", "month", "--width", "60")
	require.NoError(t, err)
	assert.Contains(t, out, "month")
	assert.Contains(t, out, "Jan 2026")
	assert.Contains(t, out, "Feb 2026")
	assert.Contains(t, out, "Build")
	assert.Contains(t, out, "  Dev")
	assert.Contains(t, out, "2026-01-05 → 2026-01-09 (5d)")
}

func TestTimeline_AutoAdaptsToWidth(t *testing.T) {
	app := testApp(t)
	seedProject(t, app, testutil.BuildAndTest())

	// 59 days across 80 columns: months are too sparse, weeks fit.
	out, err := executeCmd(t, app, "timeline", "launch", "--width", "80")
	require.NoError(t, err)
	assert.Contains(t, out, "week")
}

func TestTimeline_BadGranularity(t *testing.T) {
	app := testApp(t)
	seedProject(t, app, testutil.BuildAndTest())

	_, err := executeCmd(t, app, "timeline", "launch", "--granularity", "fortnight")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestTimeline_InteractiveNeedsTerminal(t *testing.T) {
	app := testApp(t)
	seedProject(t, app, testutil.BuildAndTest())

	_, err := executeCmd(t, app, "timeline", "launch", "--interactive")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "needs a terminal")
}
