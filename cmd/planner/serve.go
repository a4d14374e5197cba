package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/aristath/taskplanner/internal/events"
	"github.com/aristath/taskplanner/internal/httpapi"
)

const shutdownTimeout = 10 * time.Second

func (c *cli) serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the planner JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = c.cfg.Server.Addr()
			}
			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return err
			}
			return c.serve(cmd.Context(), ln)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, 0.0.0.0:8000)")
	return cmd
}

// serve runs the API on ln until ctx is cancelled, then drains in-flight
// requests and kills any model subprocesses.
func (c *cli) serve(ctx context.Context, ln net.Listener) error {
	a, err := c.open(ctx, true)
	if err != nil {
		ln.Close()
		return err
	}
	defer a.Close()

	api := httpapi.NewServer(a.orch, c.cfg.Server.AllowedOrigins, c.logger)
	srv := api.NewHTTPServer(ln.Addr().String())

	g, gctx := errgroup.WithContext(ctx)

	logCtx, stopLog := context.WithCancel(context.Background())
	defer stopLog()
	g.Go(func() error {
		events.LogEvents(logCtx, a.bus.SubscribeAll(256), c.logger)
		return nil
	})

	g.Go(func() error {
		c.logger.Info("serving planner API", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		c.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		if killErr := a.pm.KillAll(); killErr != nil {
			c.logger.Warn("failed to kill subprocesses", zap.Error(killErr))
		}
		stopLog()
		return err
	})

	return g.Wait()
}
