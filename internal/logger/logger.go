// Package logger builds the application's *slog.Logger.
//
// Development (dev): human-readable text output at DEBUG level.
// Staging (staging): JSON output at DEBUG level.
// Production (prod): JSON output at INFO level.
//
// When a log file is configured, records go to stdout and to a
// size-rotated file managed by lumberjack.
package logger

import (
	"io"
	"log/slog"
	"os"

	"github.com/aanand-mishra/songs-api/internal/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New returns a logger for env. The returned io.Closer releases the log
// file, if any, and is always safe to call.
func New(env string, cfg config.Log) (*slog.Logger, io.Closer) {
	var out io.Writer = os.Stdout
	var closer io.Closer = nopCloser{}

	if cfg.File != "" {
		rotating := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
		}
		out = io.MultiWriter(os.Stdout, rotating)
		closer = rotating
	}

	return slog.New(handler(env, out)), closer
}

func handler(env string, out io.Writer) slog.Handler {
	switch env {
	case "prod":
		return slog.NewJSONHandler(out, &slog.HandlerOptions{Level: slog.LevelInfo})
	case "staging":
		return slog.NewJSONHandler(out, &slog.HandlerOptions{Level: slog.LevelDebug})
	default: // "dev" and anything unrecognised
		return slog.NewTextHandler(out, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
