package cli

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/catdiagram/internal/server"
	"github.com/matzehuels/catdiagram/pkg/library"
	"github.com/matzehuels/catdiagram/pkg/metrics"
	"github.com/matzehuels/catdiagram/pkg/observability"
)

// serveCommand creates the serve command that runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		noLibrary bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the layout, render and check HTTP API",
		Long: `Serve the layout, render and check HTTP API.

Routes:
  POST /v1/layout          place a document's diagram on a grid
  POST /v1/render          lay out and render a document's diagram
  POST /v1/check           check a document's diagram against its axioms
  GET  /v1/library         list stored axiom libraries
  GET  /v1/library/{name}  fetch one library
  GET  /healthz            liveness probe
  GET  /metrics            Prometheus metrics

The server uses the configured cache and library backends and stops
gracefully on interrupt.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, noLibrary)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, or :8080)")
	cmd.Flags().BoolVar(&noLibrary, "no-library", false, "disable the library routes")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string, noLibrary bool) error {
	cfg := c.settings()
	if addr == "" {
		addr = cfg.Server.Addr
	}

	runner, err := c.newRunner(ctx, false)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	var lib library.Library
	if !noLibrary {
		lib, err = c.openLibrary(ctx)
		if err != nil {
			return err
		}
		defer lib.Close(context.Background())
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics.New(reg).Install()
	defer observability.Reset()

	srv := server.New(runner, server.Config{
		Defaults:       cfg.Options(),
		Library:        lib,
		Gatherer:       reg,
		RequestTimeout: cfg.Server.RequestTimeout,
		Logger:         c.Logger,
	})
	c.Logger.Info("starting server", "addr", addr, "cache", cacheBackend(cfg.Cache.Backend), "library", !noLibrary)
	return srv.ListenAndServe(ctx, addr)
}

func cacheBackend(name string) string {
	if name == "" {
		return "file"
	}
	return name
}
