// Package logging constructs the application's slog logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/histparl/rollcall/internal/model"
)

// New builds a logger from configuration. Logs go to stderr; when a log
// directory is configured they are teed into rollcall.log there as well.
func New(cfg model.LoggingConfig) (*slog.Logger, error) {
	var w io.Writer = os.Stderr

	if cfg.Dir != "" {
		if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
		path := filepath.Join(cfg.Dir, "rollcall.log")
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("open log file %s: %w", path, err)
		}
		w = io.MultiWriter(os.Stderr, file)
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: parseLevel(cfg.Level),
	})
	return slog.New(handler), nil
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "info", "":
		return slog.LevelInfo
	default:
		return slog.LevelInfo
	}
}
