package cli

import (
	"errors"
	"fmt"

	"github.com/alexanderramin/phaseline/internal/cli/formatter"
	"github.com/alexanderramin/phaseline/internal/impact"
	"github.com/spf13/cobra"
)

func newImpactCmd(app *App) *cobra.Command {
	var resizeStart, resizeEnd dateValue
	var moveTo string

	cmd := &cobra.Command{
		Use:   "impact PROJECT ID",
		Short: "Report what deleting (or resizing or moving) a phase or task would affect",
		Long: `Analyze a change without applying it.

By default the change is deleting the phase or task ID. With --start/--end
the phase is resized instead; with --move-to the task is moved.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, _, err := app.Store.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			g, err := app.graph(p)
			if err != nil {
				return err
			}

			id := args[1]
			var r *impact.Report
			switch {
			case moveTo != "":
				r, err = app.Analyzer.AnalyzeMove(g, id, moveTo)
			case resizeStart.IsSet() || resizeEnd.IsSet():
				if !resizeStart.IsSet() || !resizeEnd.IsSet() {
					return errors.New("--start and --end must be given together")
				}
				r, err = app.Analyzer.AnalyzeResize(g, id, resizeStart.t, resizeEnd.t)
			default:
				r, err = app.Analyzer.AnalyzeDeletion(g, id)
			}
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatImpactReport(r))
			return nil
		},
	}

	dateFlag(cmd.Flags(), &resizeStart, "start", "New phase start (YYYY-MM-DD)")
	dateFlag(cmd.Flags(), &resizeEnd, "end", "New phase end (YYYY-MM-DD)")
	cmd.Flags().StringVar(&moveTo, "move-to", "", "Target phase for moving a task")

	return cmd
}
