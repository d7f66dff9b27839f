package cli

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/alexanderramin/phaseline/internal/cli/formatter"
	"github.com/alexanderramin/phaseline/internal/domain"
	"github.com/alexanderramin/phaseline/internal/importer"
	"github.com/spf13/cobra"
)

func newProjectCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage stored projects",
	}

	cmd.AddCommand(
		newProjectImportCmd(app),
		newProjectListCmd(app),
		newProjectShowCmd(app),
		newProjectExportCmd(app),
		newProjectRemoveCmd(app),
		newProjectHistoryCmd(app),
		newProjectRestoreCmd(app),
	)

	return cmd
}

func newProjectImportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Import a project from a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}
			p, errs := importer.Import(data, app.Rates)
			if len(errs) > 0 {
				out := cmd.ErrOrStderr()
				for _, e := range errs {
					fmt.Fprintf(out, "  %s %s\n", formatter.StyleRed.Render("✖"), e)
				}
				return fmt.Errorf("import failed: %d problem(s) in %s", len(errs), args[0])
			}
			if err := app.Store.Import(cmd.Context(), p); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Imported project %s [%s]: %d phases, %d tasks, %d resources\n",
				p.Name, p.ID, len(p.Phases), len(p.AllTasks()), len(p.Resources))
			for _, w := range domain.ProjectRACIWarnings(p) {
				fmt.Fprintln(out, formatter.StyleYellow.Render("! "+w))
			}
			return nil
		},
	}
}

func newProjectListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			projects, err := app.Store.List(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatProjectList(projects))
			return nil
		},
	}
}

func newProjectShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show a project's phases, window and cost",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, rev, err := app.Store.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			d, err := app.projectDetail(p, rev)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatProjectDetail(d))
			return nil
		},
	}
}

func (a *App) projectDetail(p *domain.Project, rev int) (formatter.ProjectDetail, error) {
	d := formatter.ProjectDetail{
		Project:    p,
		Revision:   rev,
		PhaseCosts: make(map[string]float64, len(p.Phases)),
		Warnings:   domain.ProjectRACIWarnings(p),
	}
	if start, end, ok := p.Bounds(); ok {
		wd, err := a.Calendar.ProjectWorkingDays(p, start, end)
		if err != nil {
			return d, err
		}
		d.Start, d.End = start, end
		d.WorkingDays = wd
		d.CalendarDays = domain.DaysBetween(start, end) + 1
	}
	for _, ph := range p.Phases {
		cost, err := a.Ledger.PhaseCost(p, ph.ID)
		if err != nil {
			return d, err
		}
		d.PhaseCosts[ph.ID] = cost
		d.Cost += cost
	}
	return d, nil
}

func newProjectExportCmd(app *App) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export ID",
		Short: "Export a project as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, _, err := app.Store.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			data, err := importer.Marshal(p)
			if err != nil {
				return err
			}
			if output == "" {
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}
			if err := os.WriteFile(output, append(data, '\n'), 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", output, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported project %s to %s\n", p.ID, output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to a file instead of stdout")

	return cmd
}

func newProjectRemoveCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "remove ID",
		Short: "Remove a project and its history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			if !yes {
				if !app.interactive() {
					return errors.New("refusing to remove without confirmation: rerun with --yes")
				}
				ok, err := app.Prompter.Confirm(fmt.Sprintf("Remove project %s?", id), "Its revision history is removed too.")
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), formatter.Dim("Cancelled."))
					return nil
				}
			}
			if err := app.Store.Remove(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed project %s\n", id)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}

func newProjectHistoryCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "history ID",
		Short: "List a project's saved revisions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			revs, err := app.Store.History(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatHistory(revs))
			return nil
		},
	}
}

func newProjectRestoreCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "restore ID REVISION",
		Short: "Make an earlier revision current again",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rev, err := strconv.Atoi(args[1])
			if err != nil || rev < 1 {
				return fmt.Errorf("invalid revision %q", args[1])
			}
			next, err := app.Store.Restore(cmd.Context(), args[0], rev)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Restored revision %d of %s as revision %d\n", rev, args[0], next)
			return nil
		},
	}
}
