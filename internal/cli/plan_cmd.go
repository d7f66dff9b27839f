package cli

import (
	"fmt"

	"github.com/alexanderramin/phaseline/internal/domain"
	"github.com/alexanderramin/phaseline/internal/planner"
	"github.com/alexanderramin/phaseline/internal/schedule"
	"github.com/spf13/cobra"
)

func newPhaseCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "phase",
		Short: "Change phases of a project",
	}

	cmd.AddCommand(
		newPhaseDeleteCmd(app),
		newPhaseResizeCmd(app),
		newPhaseCollapseCmd(app),
	)

	return cmd
}

func newPhaseDeleteCmd(app *App) *cobra.Command {
	var flags confirmFlags

	cmd := &cobra.Command{
		Use:   "delete PROJECT PHASE",
		Short: "Delete a phase and its tasks after reviewing the impact",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMutation(cmd, app, args[0], planner.DeletePhase{ID: args[1]}, flags)
		},
	}

	flags.register(cmd)

	return cmd
}

func newPhaseResizeCmd(app *App) *cobra.Command {
	var flags confirmFlags

	cmd := &cobra.Command{
		Use:   "resize PROJECT PHASE START END",
		Short: "Move a phase's bounds, clamping its tasks",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := domain.ParseDate(args[2])
			if err != nil {
				return err
			}
			end, err := domain.ParseDate(args[3])
			if err != nil {
				return err
			}
			return runMutation(cmd, app, args[0], planner.ResizePhase{ID: args[1], Start: start, End: end}, flags)
		},
	}

	flags.register(cmd)

	return cmd
}

func newPhaseCollapseCmd(app *App) *cobra.Command {
	var expand bool

	cmd := &cobra.Command{
		Use:   "collapse PROJECT PHASE",
		Short: "Hide (or with --expand, show) a phase's tasks in the timeline",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMutation(cmd, app, args[0], collapseEdit(args[1], !expand), confirmFlags{yes: true})
		},
	}

	cmd.Flags().BoolVar(&expand, "expand", false, "Show the phase's tasks again")

	return cmd
}

func collapseEdit(phaseID string, collapsed bool) planner.Edit {
	verb := "collapse"
	if !collapsed {
		verb = "expand"
	}
	return planner.Edit{
		Name: fmt.Sprintf("%s phase %s", verb, phaseID),
		Fn: func(g *schedule.Graph) (*schedule.Graph, error) {
			return g.SetCollapsed(phaseID, collapsed)
		},
	}
}

func newTaskCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Change tasks of a project",
	}

	cmd.AddCommand(
		newTaskDeleteCmd(app),
		newTaskMoveCmd(app),
	)

	return cmd
}

func newTaskDeleteCmd(app *App) *cobra.Command {
	var flags confirmFlags

	cmd := &cobra.Command{
		Use:   "delete PROJECT TASK",
		Short: "Delete a task after reviewing the impact",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMutation(cmd, app, args[0], planner.DeleteTask{ID: args[1]}, flags)
		},
	}

	flags.register(cmd)

	return cmd
}

func newTaskMoveCmd(app *App) *cobra.Command {
	var flags confirmFlags

	cmd := &cobra.Command{
		Use:   "move PROJECT TASK PHASE",
		Short: "Move a task into another phase",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMutation(cmd, app, args[0], planner.MoveTask{TaskID: args[1], ToPhaseID: args[2]}, flags)
		},
	}

	flags.register(cmd)

	return cmd
}

func newResourceCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resource",
		Short: "Change resources of a project",
	}

	cmd.AddCommand(newResourceDesignateCmd(app))

	return cmd
}

func newResourceDesignateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "designate PROJECT RESOURCE DESIGNATION",
		Short: "Change a resource's designation; billable rates follow the rate table",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			resourceID, designation := args[1], args[2]
			edit := planner.Edit{
				Name: fmt.Sprintf("designate resource %s as %s", resourceID, designation),
				Fn: func(g *schedule.Graph) (*schedule.Graph, error) {
					return g.SetDesignation(resourceID, designation, app.Rates)
				},
			}
			return runMutation(cmd, app, args[0], edit, confirmFlags{yes: true})
		},
	}
}
