// Package logging configures the daemon's single process-wide slog.Logger.
// Event names follow the teacher's dotted convention (syncengine.remove.
// vectorstore_err, watch.debouncer.output_full); this package only picks
// the handler and output.
package logging

import (
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/agentindex/codeindexd/internal/config"
)

// Setup builds a slog.Logger from cfg: a JSON handler when stderr isn't a
// TTY (the daemon's normal, unattended mode) or a file is configured, and
// a human-readable text handler when stderr is a TTY and no file is set.
// The returned cleanup function closes the log file, if one was opened.
func Setup(cfg config.LoggingConfig) (*slog.Logger, func(), error) {
	level := parseLevel(cfg.Level)

	var out io.Writer = os.Stderr
	cleanup := func() {}
	useJSON := !isatty.IsTerminal(os.Stderr.Fd())

	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, err
		}
		out = f
		cleanup = func() { _ = f.Close() }
		useJSON = true
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if useJSON {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	logger := slog.New(handler)
	return logger, cleanup, nil
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
