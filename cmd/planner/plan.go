package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/aristath/taskplanner/internal/orchestrator"
)

// goalFile is the YAML layout accepted by plan --file.
type goalFile struct {
	Goals []orchestrator.GoalRequest `yaml:"goals"`
}

func (c *cli) planCmd() *cobra.Command {
	var (
		description string
		deadline    string
		file        string
		concurrency int
	)
	cmd := &cobra.Command{
		Use:   "plan [title]",
		Short: "Create a goal and generate its tasks",
		Long: `Creates a goal and asks the model to break it into tasks.

With --file, every goal in a YAML file is planned concurrently:

  goals:
    - title: Launch website
      description: Marketing site for the spring release
      deadline: "2025-03-01"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var reqs []orchestrator.GoalRequest
			switch {
			case file != "" && len(args) > 0:
				return fmt.Errorf("pass either a title or --file, not both")
			case file != "":
				loaded, err := readGoalFile(file)
				if err != nil {
					return err
				}
				reqs = loaded
			case len(args) == 1:
				req := orchestrator.GoalRequest{Title: args[0], Description: description}
				if deadline != "" {
					req.Deadline = &deadline
				}
				reqs = append(reqs, req)
			default:
				return fmt.Errorf("a goal title or --file is required")
			}

			a, err := c.open(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer a.Close()

			var failed int
			for _, res := range a.orch.CreateGoals(cmd.Context(), reqs, concurrency) {
				if res.Err != nil {
					failed++
					fmt.Fprintln(c.out, styleError.Render(fmt.Sprintf("✗ %s: %v", res.Request.Title, res.Err)))
					continue
				}
				fmt.Fprintln(c.out, renderPlan(res.Result))
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d goals failed", failed, len(reqs))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "goal description")
	cmd.Flags().StringVar(&deadline, "deadline", "", "ISO-8601 deadline, e.g. 2025-03-01")
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML file of goals to plan")
	cmd.Flags().IntVar(&concurrency, "concurrency", 4, "goals planned at once with --file")
	return cmd
}

func readGoalFile(path string) ([]orchestrator.GoalRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read goal file: %w", err)
	}
	var f goalFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse goal file %s: %w", path, err)
	}
	if len(f.Goals) == 0 {
		return nil, fmt.Errorf("goal file %s lists no goals", path)
	}
	return f.Goals, nil
}
