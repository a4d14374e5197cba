// Command planner turns goals into dependency-ordered task plans with a
// generative model and serves them over HTTP, a terminal browser, and
// Google Tasks export.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aristath/taskplanner/internal/config"
	"github.com/aristath/taskplanner/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := newCLI(os.Stdout)
	if err := c.root().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// cli carries global flags and shared state between cobra commands.
type cli struct {
	configPath string
	verbose    bool

	cfg         *config.Config
	globalPath  string
	projectPath string
	logger      *zap.Logger
	out         io.Writer

	// newGenerator builds the model session. Tests replace it.
	newGenerator generatorFactory
}

func newCLI(out io.Writer) *cli {
	return &cli{out: out, newGenerator: defaultGenerator}
}

func (c *cli) root() *cobra.Command {
	root := &cobra.Command{
		Use:   "planner",
		Short: "Break goals into scheduled tasks with a generative model",
		Long: `planner stores goals, asks a model (Gemini or the Claude CLI) to break each
goal into tasks with priorities, estimates, dates, and dependencies, and keeps
the resulting plan in SQLite or MongoDB.

Run "planner serve" for the JSON API or "planner browse" for the terminal UI.`,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "project config file (default .taskplanner/config.yaml)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		c.serveCmd(),
		c.planCmd(),
		c.goalsCmd(),
		c.showCmd(),
		c.statusCmd(),
		c.browseCmd(),
		c.exportCmd(),
	)
	return root
}

// setup loads configuration and builds the logger before any subcommand runs.
func (c *cli) setup(cmd *cobra.Command, args []string) error {
	globalPath, projectPath, err := config.DefaultPaths()
	if err != nil {
		return err
	}
	if c.configPath != "" {
		projectPath = c.configPath
	}
	c.globalPath, c.projectPath = globalPath, projectPath

	cfg, err := config.Load(globalPath, projectPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	c.cfg = cfg

	logger, err := logging.New(cfg.Logging, c.verbose)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	c.logger = logger
	return nil
}
