package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/phaseline/internal/cli/formatter"
	"github.com/alexanderramin/phaseline/internal/repository"
	"github.com/alexanderramin/phaseline/internal/timeline"
	"github.com/spf13/cobra"
)

func newTimelineCmd(app *App) *cobra.Command {
	var granularity string
	var width int
	var interactive bool

	cmd := &cobra.Command{
		Use:   "timeline PROJECT",
		Short: "Draw a project's phases and tasks on a time axis",
		Long: `Draw the project as a Gantt-style chart.

With --granularity auto the marker period is chosen from the track width so
labels stay legible; any other value fixes it. --interactive opens a viewer
where resizing the terminal re-runs the zoom, +/- change it, and phases can
be collapsed (changes are saved on quit).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, rev, err := app.Store.Load(ctx, args[0])
			if err != nil {
				return err
			}

			adapt := strings.EqualFold(granularity, "auto")
			g := timeline.Month
			if !adapt {
				if g, err = timeline.ParseGranularity(granularity); err != nil {
					return err
				}
			}

			if !interactive {
				px := 0.0
				if adapt {
					px = float64(width) * formatter.CellPx
				}
				l, err := timeline.BuildLayout(p, g, px, app.Timeline)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), formatter.FormatTimeline(l, width))
				return nil
			}

			if !app.interactive() || app.RunViewer == nil {
				return errors.New("--interactive needs a terminal")
			}
			graph, err := app.graph(p)
			if err != nil {
				return err
			}
			final, err := app.RunViewer(newTimelineModel(ctx, app.session(graph), g, app.Timeline, adapt))
			if err != nil {
				return err
			}
			m, ok := final.(timelineModel)
			if !ok || !m.Changed() {
				return nil
			}
			next, err := app.Store.Save(ctx, m.session.Graph().Project(), rev,
				repository.Change{Action: fmt.Sprintf("timeline edits (%d)", m.session.UndoLen())})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s as revision %d\n", p.ID, next)
			return nil
		},
	}

	cmd.Flags().StringVarP(&granularity, "granularity", "g", "auto", "day, week, month, quarter, year or auto")
	cmd.Flags().IntVarP(&width, "width", "w", 80, "Track width in columns")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Open the interactive viewer")

	return cmd
}
