package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/aristath/taskplanner/internal/tui"
)

func (c *cli) goalsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "goals",
		Short: "List stored goals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.open(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer a.Close()

			goals, err := a.orch.ListGoals(cmd.Context())
			if err != nil {
				return err
			}
			if len(goals) == 0 {
				fmt.Fprintln(c.out, "No goals yet.")
				return nil
			}
			for _, g := range goals {
				fmt.Fprintln(c.out, renderGoalLine(g))
			}
			return nil
		},
	}
}

func (c *cli) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <goal-id>",
		Short: "Show a goal's tasks in dependency order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.open(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer a.Close()

			gwt, err := a.orch.GetGoalWithTasks(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			schedule, err := a.orch.GetSchedule(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(c.out, renderGoal(gwt, schedule))
			return nil
		},
	}
}

func (c *cli) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <task-id> <pending|in_progress|completed|blocked>",
		Short: "Set a task's status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.open(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer a.Close()

			task, err := a.orch.UpdateTaskStatus(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "%s %s → %s\n", tui.StatusIcon(task.Status), task.Title, task.Status)
			return nil
		},
	}
}

func (c *cli) browseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "browse [goal-id]",
		Short: "Browse goals and update tasks in a terminal UI",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := c.open(ctx, false)
			if err != nil {
				return err
			}
			defer a.Close()

			model := tui.New(ctx, a.orch, a.bus, c.cfg, c.globalPath, c.projectPath)
			if len(args) == 1 {
				model = model.SelectGoal(args[0])
			}
			p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
			if _, err := p.Run(); err != nil && ctx.Err() == nil {
				return err
			}
			return nil
		},
	}
}
