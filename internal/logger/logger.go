// Package logger builds the process-wide slog logger. The handler is
// keyed on the deployment environment: pretty text output for local
// work, JSON elsewhere.
package logger

import (
	"io"
	"os"

	"golang.org/x/exp/slog"

	"github.com/faroucksc/sms-sync/internal/config"
)

// New returns a logger writing to stdout.
func New(env string) *slog.Logger {
	return newWithWriter(env, os.Stdout)
}

// NewWithFile returns a logger that tees every record to stdout and to
// the given log file, creating or appending as needed. The returned
// closer owns the file handle. When the file cannot be opened the
// logger degrades to stdout only and the error is returned alongside.
func NewWithFile(env, path string) (*slog.Logger, io.Closer, error) {
	if path == "" {
		return New(env), nil, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return New(env), nil, err
	}
	return newWithWriter(env, io.MultiWriter(os.Stdout, f)), f, nil
}

func newWithWriter(env string, w io.Writer) *slog.Logger {
	switch env {
	case config.EnvLocal:
		return setupPrettySlog(w)
	case config.EnvDev:
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	default:
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
}

func setupPrettySlog(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
