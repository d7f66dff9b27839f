package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/phaseline/internal/cli/formatter"
	"github.com/alexanderramin/phaseline/internal/impact"
	"github.com/alexanderramin/phaseline/internal/planner"
	"github.com/alexanderramin/phaseline/internal/repository"
	"github.com/spf13/cobra"
)

// confirmFlags are the flags shared by every command that changes a project.
type confirmFlags struct {
	yes   bool
	force bool
}

func (f *confirmFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&f.yes, "yes", "y", false, "Skip the confirmation prompt for non-critical changes")
	cmd.Flags().BoolVar(&f.force, "force", false, `Acknowledge critical impact without typing "delete anyway"`)
}

// runMutation loads a project, analyzes m, shows the impact report,
// collects the acknowledgement the report asks for, commits and saves a new
// revision. Declining leaves the stored project untouched.
func runMutation(cmd *cobra.Command, app *App, projectID string, m planner.Mutation, flags confirmFlags) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	p, rev, err := app.Store.Load(ctx, projectID)
	if err != nil {
		return err
	}
	g, err := app.graph(p)
	if err != nil {
		return err
	}
	s := app.session(g)

	prop, err := s.Propose(ctx, m)
	if err != nil {
		return err
	}
	if prop.Report != nil {
		fmt.Fprint(out, formatter.FormatImpactReport(prop.Report))
		fmt.Fprintln(out)
	}

	ack, ok, err := app.acknowledge(prop, flags)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(out, formatter.Dim("Cancelled; nothing changed."))
		return nil
	}

	if err := s.Commit(ctx, prop, ack); err != nil {
		return err
	}
	if s.UndoLen() == 0 {
		fmt.Fprintln(out, formatter.Dim("Nothing to change."))
		return nil
	}

	change := repository.Change{Action: m.Describe()}
	if prop.Report != nil {
		change.Severity = prop.Report.Severity.String()
	}
	next, err := app.Store.Save(ctx, s.Graph().Project(), rev, change)
	if err != nil {
		if errors.Is(err, repository.ErrRevisionConflict) {
			return fmt.Errorf("%w: reload and try again", err)
		}
		return err
	}
	fmt.Fprintf(out, "%s %s (revision %d)\n", formatter.StyleGreen.Render("✔"), m.Describe(), next)
	return nil
}

// acknowledge decides how a proposal is confirmed. --force satisfies any
// report. A critical report otherwise needs the typed phrase, which is only
// possible interactively; --yes covers plain confirmations.
func (a *App) acknowledge(prop *planner.Proposal, flags confirmFlags) (planner.Ack, bool, error) {
	if flags.force {
		return planner.AckDeleteAnyway, true, nil
	}

	if prop.Confirmation() == impact.ConfirmDeleteAnyway {
		if !a.interactive() {
			return 0, false, fmt.Errorf("critical impact: rerun interactively and type %q, or pass --force", impact.DeleteAnywayPhrase)
		}
		typed, err := a.Prompter.Input(
			fmt.Sprintf("Type %q to confirm", impact.DeleteAnywayPhrase),
			"This change has critical impact.",
		)
		if err != nil {
			return 0, false, err
		}
		if !strings.EqualFold(strings.TrimSpace(typed), impact.DeleteAnywayPhrase) {
			return 0, false, nil
		}
		return planner.AckDeleteAnyway, true, nil
	}

	if flags.yes {
		return planner.AckConfirm, true, nil
	}
	if !a.interactive() {
		return 0, false, errors.New("confirmation required: rerun with --yes")
	}
	ok, err := a.Prompter.Confirm(fmt.Sprintf("Proceed with %s?", prop.Mutation.Describe()), "")
	if err != nil {
		return 0, false, err
	}
	return planner.AckConfirm, ok, nil
}
