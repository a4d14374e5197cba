package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aristath/taskplanner/internal/export/googletasks"
)

func (c *cli) exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <goal-id>",
		Short: "Export a goal's tasks to a new Google Tasks list",
		Long: `Creates a Google Tasks list named after the goal and adds its tasks in
dependency order. Credentials are read from export.credentials_dir
(oauth_client.json and token.json); run "planner export login" once first.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			exporter, err := googletasks.New(ctx, c.cfg.Export.CredentialsDir, c.logger)
			if err != nil {
				return err
			}

			a, err := c.open(ctx, false)
			if err != nil {
				return err
			}
			defer a.Close()

			gwt, err := a.orch.GetGoalWithTasks(ctx, args[0])
			if err != nil {
				return err
			}
			result, err := exporter.Export(ctx, gwt.Goal, gwt.Tasks)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "Exported %d tasks to list %q (%s)\n", len(result.TaskIDs), gwt.Goal.Title, result.ListID)
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "login",
		Short: "Authorize Google Tasks access",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := googletasks.Login(cmd.Context(), c.cfg.Export.CredentialsDir, cmd.ErrOrStderr()); err != nil {
				return err
			}
			fmt.Fprintln(c.out, "ok")
			return nil
		},
	})
	return cmd
}
