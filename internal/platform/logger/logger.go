package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/phrazzld/taskboard-api/internal/config"
)

type contextKey struct{}

// Setup builds a JSON logger at the configured level, installs it as the slog
// default and returns it. An unrecognized level falls back to info.
func Setup(cfg config.ServerConfig) (*slog.Logger, error) {
	return setup(os.Stdout, cfg.LogLevel), nil
}

func setup(w io.Writer, levelName string) *slog.Logger {
	level, ok := ParseLevel(levelName)
	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if !ok {
		logger.Warn("invalid log level configured, using default level",
			slog.String("configured_level", levelName),
			slog.String("default_level", "info"))
	}
	return logger
}

// ParseLevel maps debug|info|warn|error (any case) to a slog.Level. The
// second result is false for anything else, in which case info is returned.
func ParseLevel(name string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// WithLogger returns a copy of ctx carrying logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, logger)
}

// FromContext returns the logger stored in ctx, or slog.Default().
func FromContext(ctx context.Context) *slog.Logger {
	return FromContextOrDefault(ctx, slog.Default())
}

// FromContextOrDefault returns the logger stored in ctx, or fallback when ctx
// carries none.
func FromContextOrDefault(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(contextKey{}).(*slog.Logger); ok && l != nil {
			return l
		}
	}
	if fallback == nil {
		return slog.Default()
	}
	return fallback
}
