package importer

import (
	"testing"

	"github.com/alexanderramin/phaseline/internal/domain"
	"github.com/alexanderramin/phaseline/internal/ledger"
	"github.com/alexanderramin/phaseline/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRates() ledger.RateTable { return ledger.DefaultRateTable() }

const fullDoc = `{
  "project": {"id": "launch", "name": "Launch", "region": "my"},
  "holidays": [{"date": "2026-01-07", "name": "Company Day"}],
  "resources": [
    {"id": "eng", "name": "Eng", "designation": "Senior Consultant"},
    {"id": "pm", "name": "PM", "designation": "Manager", "hourly_rate": 120},
    {"id": "client", "name": "Client Lead", "category": "client", "billable": false, "designation": "Partner"}
  ],
  "phases": [
    {"id": "build", "name": "Build", "start_date": "2026-01-01", "end_date": "2026-01-31", "color": "blue",
     "raci": [{"resource_id": "pm", "role": "A"}],
     "tasks": [
       {"id": "dev", "name": "Dev", "start_date": "2026-01-05", "end_date": "2026-01-09",
        "assignments": [{"resource_id": "eng", "allocation_percent": 100}]},
       {"id": "review", "name": "Review", "start_date": "2026-01-12", "end_date": "2026-01-13",
        "dependencies": ["dev"], "parent_task_id": "dev"}
     ]},
    {"id": "care", "name": "Care", "kind": "ongoing_support", "start_date": "2026-02-02", "support_years": 2,
     "dependencies": ["build"], "collapsed": true}
  ],
  "milestones": [{"id": "golive", "name": "Go live", "date": "2026-01-31", "phase_id": "build"}]
}`

func TestImport_FullDocument(t *testing.T) {
	p, errs := Import([]byte(fullDoc), testRates())
	require.Empty(t, errs, messages(errs))

	assert.Equal(t, "launch", p.ID)
	assert.Equal(t, "MY", p.Region)
	require.Len(t, p.Holidays, 1)
	assert.Equal(t, testutil.Date(2026, 1, 7), p.Holidays[0].Date)

	require.Len(t, p.Resources, 3)
	assert.Equal(t, 70.0, p.Resources[0].HourlyRate, "priced from designation")
	assert.True(t, p.Resources[0].Billable)
	assert.Equal(t, 120.0, p.Resources[1].HourlyRate, "explicit rate wins")
	assert.Zero(t, p.Resources[2].HourlyRate, "non-billable stays unpriced")
	assert.Equal(t, domain.CategoryClient, p.Resources[2].Category)

	require.Len(t, p.Phases, 2)
	build, care := p.Phases[0], p.Phases[1]
	assert.Equal(t, domain.PhaseStandard, build.Kind())
	assert.Equal(t, testutil.Date(2026, 1, 31), build.EndDate())
	assert.Equal(t, "blue", build.ColorTag)
	assert.Equal(t, []domain.RACIEntry{{ResourceID: "pm", Role: domain.RoleAccountable}}, build.RACI)
	require.Len(t, build.Tasks, 2)
	require.NotNil(t, build.Tasks[1].ParentTaskID)
	assert.Equal(t, "dev", *build.Tasks[1].ParentTaskID)

	assert.True(t, care.IsSupport())
	assert.Equal(t, testutil.Date(2028, 2, 2), care.EndDate())
	assert.True(t, care.Collapsed)
	assert.Equal(t, []string{"build"}, care.Dependencies)

	require.Len(t, p.Milestones, 1)
	assert.Equal(t, "build", p.Milestones[0].PhaseID)
}

func TestConvert_FillsMissingIDs(t *testing.T) {
	f := &ProjectFile{
		Project: ProjectImport{Name: "Anon"},
		Phases: []PhaseImport{{Name: "Only", StartDate: "2026-03-02", EndDate: ptrStr("2026-03-31"),
			Tasks: []TaskImport{{Name: "Work", StartDate: "2026-03-02", EndDate: "2026-03-06"}}}},
	}
	p, errs := ImportFile(f, testRates())
	require.Empty(t, errs)

	assert.NotEmpty(t, p.ID)
	assert.NotEmpty(t, p.Phases[0].ID)
	assert.NotEmpty(t, p.Phases[0].Tasks[0].ID)
	assert.NotEqual(t, p.Phases[0].ID, p.Phases[0].Tasks[0].ID)
}

func TestConvert_UnknownDesignationUnpriced(t *testing.T) {
	f := validMinimalFile()
	f.Resources = []ResourceImport{{ID: "x", Name: "X", Designation: "Wizard"}}
	p, errs := ImportFile(f, testRates())
	require.Empty(t, errs)
	assert.Zero(t, p.Resources[0].HourlyRate)
}

func TestExportImport_RoundTrip(t *testing.T) {
	original := testutil.BuildAndTest(
		testutil.WithRegion("MY"),
		testutil.WithHoliday(testutil.Date(2026, 1, 7), "Company Day"),
		testutil.WithMilestone("golive", "Go live", testutil.Date(2026, 2, 27), "test"),
	)
	original.Phases = append(original.Phases, testutil.NewTestPhase("Care", testutil.Date(2026, 3, 2), testutil.Date(2026, 3, 2),
		testutil.WithPhaseID("care"), testutil.WithSupportYears(1)))
	original.Phases[0].Tasks = append(original.Phases[0].Tasks, testutil.NewTestTask("Fix", testutil.Date(2026, 1, 12), testutil.Date(2026, 1, 14),
		testutil.WithTaskID("fix"), testutil.WithTaskDependencies("dev"), testutil.WithParentTask("dev")))

	data, err := Marshal(original)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"support_years": 1`)
	assert.Contains(t, string(data), `"start_date": "2026-01-05"`)

	back, errs := Import(data, testRates())
	require.Empty(t, errs, messages(errs))
	assert.Equal(t, original, back)
}
