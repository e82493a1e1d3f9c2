// Package main implements the taskboard command: the HTTP API server and
// the database migration tool.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/phrazzld/taskboard-api/internal/config"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "taskboard",
		Short:         "Taskboard personal task management API",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"path to a YAML config file (default: ./config.yaml if present)")

	root.AddCommand(newServeCmd(&configPath))
	root.AddCommand(newMigrateCmd(&configPath))
	root.AddCommand(newHashPasswordCmd())
	return root
}

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := initializeApp(*configPath)
			if err != nil {
				return err
			}

			ctx, stop := commandContext(cmd)
			defer stop()

			db, err := setupAppDatabase(ctx, cfg.Database, log)
			if err != nil {
				return err
			}

			app, err := newApplication(ctx, cfg, log, db)
			if err != nil {
				_ = db.Close()
				return fmt.Errorf("failed to initialize application: %w", err)
			}
			return app.Run(ctx)
		},
	}
}

// initializeApp loads configuration and sets up structured logging.
func initializeApp(configPath string) (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	log.Info("Server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.Bool("cache_enabled", cfg.Redis.URL != ""),
		slog.Bool("suggestions_enabled", cfg.LLM.GeminiAPIKey != ""))
	return cfg, log, nil
}

// commandContext returns a context cancelled on SIGINT or SIGTERM.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
}
