// Package logger builds the slog logger used by the threadpool command.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/utkarsh5026/threadpool/internal/config"
)

const (
	// LevelTrace is below debug so that every other level is logged.
	LevelTrace = slog.Level(-8)
	// LevelOff is above error so that nothing is logged.
	LevelOff = slog.Level(12)
)

// ParseSeverity maps a configured severity to a slog level.
// Matching is case insensitive.
func ParseSeverity(severity string) (slog.Level, error) {
	switch strings.ToUpper(severity) {
	case "TRACE":
		return LevelTrace, nil
	case "DEBUG":
		return slog.LevelDebug, nil
	case "INFO":
		return slog.LevelInfo, nil
	case "WARNING":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	case "OFF":
		return LevelOff, nil
	default:
		return 0, fmt.Errorf("unknown log severity %q", severity)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New returns a logger configured by cfg. Records go to stderr, or to a
// rotated file when cfg.FilePath is set. The returned closer releases the
// file and must be called once logging is done.
func New(cfg config.LoggingConfig) (*slog.Logger, io.Closer, error) {
	var w io.Writer = os.Stderr
	var closer io.Closer = nopCloser{}

	if cfg.FilePath != "" {
		lj := &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			Compress:   cfg.Compress,
		}
		w, closer = lj, lj
	}

	logger, err := NewWithWriter(w, cfg)
	if err != nil {
		_ = closer.Close()
		return nil, nil, err
	}
	return logger, closer, nil
}

// NewWithWriter returns a logger configured by cfg that writes to w.
// cfg.FilePath is ignored.
func NewWithWriter(w io.Writer, cfg config.LoggingConfig) (*slog.Logger, error) {
	level, err := ParseSeverity(cfg.Severity)
	if err != nil {
		return nil, err
	}

	programLevel := new(slog.LevelVar)
	programLevel.Set(level)
	opts := &slog.HandlerOptions{
		Level:       programLevel,
		ReplaceAttr: renameLevel,
	}

	var h slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "json":
		h = slog.NewJSONHandler(w, opts)
	case "text", "":
		h = slog.NewTextHandler(w, opts)
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}
	return slog.New(h), nil
}

// renameLevel prints the trace level by name instead of "DEBUG-4".
func renameLevel(_ []string, a slog.Attr) slog.Attr {
	if a.Key != slog.LevelKey {
		return a
	}
	if level, ok := a.Value.Any().(slog.Level); ok && level <= LevelTrace {
		a.Value = slog.StringValue("TRACE")
	}
	return a
}
