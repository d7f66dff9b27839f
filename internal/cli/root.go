package cli

import (
	"fmt"

	"github.com/alexanderramin/phaseline/internal/calendar"
	"github.com/alexanderramin/phaseline/internal/config"
	"github.com/alexanderramin/phaseline/internal/domain"
	"github.com/alexanderramin/phaseline/internal/impact"
	"github.com/alexanderramin/phaseline/internal/ledger"
	"github.com/alexanderramin/phaseline/internal/planner"
	"github.com/alexanderramin/phaseline/internal/repository"
	"github.com/alexanderramin/phaseline/internal/schedule"
	"github.com/alexanderramin/phaseline/internal/timeline"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// App holds the engine components and the store used by CLI commands.
type App struct {
	Store       *repository.ProjectStore
	Calendar    *calendar.Calendar
	Ledger      *ledger.Ledger
	Analyzer    *impact.Analyzer
	Rates       ledger.RateTable
	Timeline    timeline.Config
	Containment schedule.ContainmentPolicy
	UndoDepth   int
	Observer    planner.Observer

	// IsInteractive reports whether prompts can be shown. Nil means never.
	IsInteractive func() bool
	Prompter      Prompter
	// RunViewer runs a bubbletea model to completion and returns its final
	// state. Tests replace it to drive the model synchronously.
	RunViewer func(m tea.Model) (tea.Model, error)
}

// NewApp wires the engine from cfg around an open store.
func NewApp(cfg *config.Config, store *repository.ProjectStore) (*App, error) {
	cal, err := cfg.NewCalendar()
	if err != nil {
		return nil, fmt.Errorf("building calendar: %w", err)
	}
	rates := cfg.RateTable()
	l := ledger.New(cal, rates)
	return &App{
		Store:       store,
		Calendar:    cal,
		Ledger:      l,
		Analyzer:    impact.New(cal, l),
		Rates:       rates,
		Timeline:    cfg.TimelineConfig(),
		Containment: cfg.Containment(),
		UndoDepth:   cfg.Planner.UndoDepth,
		Observer:    planner.NoopObserver{},
		Prompter:    huhPrompter{},
		RunViewer:   runProgram,
	}, nil
}

// NewRootCmd creates the top-level "phaseline" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "phaseline",
		Short:         "Calendar-aware phase planning and change impact analysis",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newProjectCmd(app),
		newPhaseCmd(app),
		newTaskCmd(app),
		newResourceCmd(app),
		newImpactCmd(app),
		newTimelineCmd(app),
		newDaysCmd(app),
		newResourcesCmd(app),
	)

	return root
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

// graph builds a schedule graph over a loaded project with the configured
// containment policy.
func (a *App) graph(p *domain.Project) (*schedule.Graph, error) {
	return schedule.New(p, schedule.WithContainment(a.Containment))
}

func (a *App) session(g *schedule.Graph) *planner.Session {
	return planner.NewSession(g, a.Analyzer,
		planner.WithUndoDepth(a.UndoDepth),
		planner.WithObserver(a.Observer),
	)
}

func runProgram(m tea.Model) (tea.Model, error) {
	return tea.NewProgram(m, tea.WithAltScreen()).Run()
}
