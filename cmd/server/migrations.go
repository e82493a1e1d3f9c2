package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"

	"github.com/phrazzld/taskboard-api/internal/config"
	"github.com/phrazzld/taskboard-api/internal/platform/postgres/migrations"
)

// defaultMigrationsDir is where `migrate create` writes new files. The other
// commands read the migrations embedded in the binary.
const defaultMigrationsDir = "internal/platform/postgres/migrations"

// slogGooseLogger forwards goose output to slog. Fatalf does not exit so
// the command can return the error normally.
type slogGooseLogger struct {
	logger *slog.Logger
}

func (l *slogGooseLogger) Printf(format string, v ...any) {
	l.logger.Info(fmt.Sprintf(format, v...))
}

func (l *slogGooseLogger) Fatalf(format string, v ...any) {
	l.logger.Error(fmt.Sprintf(format, v...))
}

func newMigrateCmd(configPath *string) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	simple := []struct {
		use   string
		short string
	}{
		{"up", "Apply all pending migrations"},
		{"down", "Roll back the most recent migration"},
		{"reset", "Roll back all migrations"},
		{"status", "Print the status of every migration"},
		{"version", "Print the current schema version"},
	}
	for _, s := range simple {
		command := s.use
		cmd.AddCommand(&cobra.Command{
			Use:   command,
			Short: s.short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, log, err := initializeApp(*configPath)
				if err != nil {
					return err
				}
				ctx, stop := commandContext(cmd)
				defer stop()
				return runMigrations(ctx, cfg, log, command)
			},
		})
	}

	create := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a new SQL migration file",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			goose.SetLogger(&slogGooseLogger{logger: slog.Default()})
			if err := goose.Create(nil, dir, args[0], "sql"); err != nil {
				return fmt.Errorf("failed to create migration: %w", err)
			}
			return nil
		},
	}
	create.Flags().StringVar(&dir, "dir", defaultMigrationsDir, "directory to write the migration to")
	cmd.AddCommand(create)

	return cmd
}

// runMigrations applies a goose command against the embedded migrations.
func runMigrations(ctx context.Context, cfg *config.Config, logger *slog.Logger, command string) (err error) {
	log := logger.With(
		slog.String("component", "migrations"),
		slog.String("command", command),
		slog.String("correlation_id", uuid.NewString()))

	start := time.Now()
	defer func() {
		log.Info("Migration operation completed",
			slog.Int64("duration_ms", time.Since(start).Milliseconds()),
			slog.Bool("success", err == nil))
	}()

	db, err := setupAppDatabase(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			log.Error("Error closing database connection", slog.String("error", cerr.Error()))
		}
	}()

	return migrate(ctx, db, log, command)
}

func migrate(ctx context.Context, db *sql.DB, log *slog.Logger, command string) error {
	goose.SetLogger(&slogGooseLogger{logger: log})
	goose.SetBaseFS(migrations.FS)
	goose.SetTableName(migrations.TableName)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	var err error
	switch command {
	case "up":
		err = goose.UpContext(ctx, db, ".")
	case "down":
		err = goose.DownContext(ctx, db, ".")
	case "reset":
		err = goose.ResetContext(ctx, db, ".")
	case "status":
		err = goose.StatusContext(ctx, db, ".")
	case "version":
		err = goose.VersionContext(ctx, db, ".")
	default:
		return fmt.Errorf("unknown migration command %q", command)
	}
	if err != nil {
		return fmt.Errorf("migration %s failed: %w", command, err)
	}
	return nil
}
