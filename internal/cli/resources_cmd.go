package cli

import (
	"fmt"

	"github.com/alexanderramin/phaseline/internal/cli/formatter"
	"github.com/alexanderramin/phaseline/internal/domain"
	"github.com/alexanderramin/phaseline/internal/ledger"
	"github.com/spf13/cobra"
)

func newResourcesCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "resources PROJECT",
		Short: "Show hours, cost and peak allocation per resource",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, _, err := app.Store.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			var tasks []domain.Task
			for _, ph := range p.Phases {
				tasks = append(tasks, ph.Tasks...)
			}
			totals, err := app.Ledger.Rollup(p, tasks)
			if err != nil {
				return err
			}
			seen := make(map[string]bool, len(totals))
			rows := make([]formatter.ResourceRow, 0, len(p.Resources))
			for _, t := range totals {
				seen[t.Resource.ID] = true
				rows = append(rows, formatter.ResourceRow{Total: t, Peak: app.Ledger.Utilization(p, t.Resource.ID)})
			}
			for _, r := range p.Resources {
				if !seen[r.ID] {
					rows = append(rows, formatter.ResourceRow{Total: ledger.ResourceTotal{Resource: r}})
				}
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatResources(p.Name, rows))
			return nil
		},
	}
}
