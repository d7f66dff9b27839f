package cli

import (
	"fmt"

	"github.com/alexanderramin/phaseline/internal/calendar"
	"github.com/alexanderramin/phaseline/internal/cli/formatter"
	"github.com/alexanderramin/phaseline/internal/domain"
	"github.com/spf13/cobra"
)

func newDaysCmd(app *App) *cobra.Command {
	var region, projectID string
	var add int

	cmd := &cobra.Command{
		Use:   "days START END",
		Short: "Count working and calendar days between two dates",
		Long: `Count working days (weekdays that are not holidays) and calendar days in
the inclusive range START..END.

Holidays come from --region's preset, or from a stored project (its own
holidays plus its region's preset) with --project.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := domain.ParseDate(args[0])
			if err != nil {
				return err
			}
			end, err := domain.ParseDate(args[1])
			if err != nil {
				return err
			}

			holidays := calendar.HolidaySet{}
			switch {
			case projectID != "":
				p, _, err := app.Store.Load(cmd.Context(), projectID)
				if err != nil {
					return err
				}
				holidays = app.Calendar.HolidaysFor(p)
				region = p.Region
			case region != "":
				set, ok := app.Calendar.Preset(region)
				if !ok {
					return domain.Invalid("region", domain.RuleUnknownRef, "no holiday preset for region %q (known: %v)", region, app.Calendar.Regions())
				}
				holidays = set
			}

			wd, err := calendar.WorkingDays(start, end, holidays)
			if err != nil {
				return err
			}
			cd, err := calendar.CalendarDays(start, end)
			if err != nil {
				return err
			}
			res := formatter.DaysResult{
				Start:        start,
				End:          end,
				Region:       region,
				WorkingDays:  wd,
				CalendarDays: cd,
				Holidays:     calendar.Holidays(holidays, start, end),
			}
			if add > 0 {
				d, err := calendar.AddWorkingDays(start, add, holidays)
				if err != nil {
					return err
				}
				res.Added, res.AddedDays = &d, add
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatDays(res))
			return nil
		},
	}

	cmd.Flags().StringVar(&region, "region", "", "Regional holiday preset, e.g. MY")
	cmd.Flags().StringVar(&projectID, "project", "", "Use a stored project's holidays")
	cmd.Flags().IntVar(&add, "add", 0, "Also report the date N working days after START")
	cmd.MarkFlagsMutuallyExclusive("region", "project")

	return cmd
}
