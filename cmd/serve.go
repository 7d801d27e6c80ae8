package cmd

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/helmcode/devcompanion/pkg/config"
	"github.com/helmcode/devcompanion/pkg/server"
	"github.com/helmcode/devcompanion/pkg/snapshot"
)

var (
	serveAddr       string
	serveConfigPath string
)

func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the DevCompanion HTTP API",
		Long: `Serve the analysis and snapshot API.

Routes:
  GET  /api/health
  POST /api/analyze          {"code": "...", "language": "Python"}
  POST /api/snapshots
  GET  /api/snapshots        ?latest=true | ?file=<path or filename> | ?limit=N
  GET  /api/snapshots/:id

Examples:
  # Listen on the configured address (default :4000)
  devcompanion serve

  # Use a different port and config file
  devcompanion serve --addr :8080 --config /etc/devcompanion.yaml`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	cmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides server.addr and PORT)")
	cmd.Flags().StringVar(&serveConfigPath, "config", config.DefaultPath, "Path to config file")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadRuntime(serveConfigPath)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}
	if cfg.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := cmd.Context()
	a, err := newAnalyzer(ctx, cfg, "", "", false, logger)
	if err != nil {
		return err
	}

	store, err := snapshot.OpenSQLite(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("failed to open snapshot store: %w", err)
	}
	defer store.Close()

	srv := server.New(a, store, server.Options{
		Env:            cfg.Env,
		RequestTimeout: cfg.GetRequestTimeout(),
		Logger:         logger,
	})

	printSuccess(fmt.Sprintf("DevCompanion API listening on %s (snapshots in %s)", cfg.Server.Addr, store.Path()))
	return srv.ListenAndServe(ctx, cfg.Server.Addr)
}
