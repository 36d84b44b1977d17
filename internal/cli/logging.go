package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/tgienger/todo/internal/config"
)

// newLogger writes to the configured log file, since the TUI owns the
// terminal. With verbose set, debug output goes to stderr instead.
func newLogger(env *environment, cfg *config.Config, verbose bool) (*slog.Logger, io.Closer, error) {
	if verbose {
		h := slog.NewTextHandler(env.stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
		return slog.New(h), nil, nil
	}

	path := cfg.LogFile()
	if err := env.fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := env.fs.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	h := slog.NewTextHandler(f, &slog.HandlerOptions{Level: cfg.LogLevel()})
	return slog.New(h), f, nil
}
