package main

import (
	"io"
	"log/slog"

	"github.com/fatih/color"

	"github.com/vango-dev/morph/internal/config"
)

// newLogger builds the process logger from the log section of the config.
func newLogger(w io.Writer, c config.LogConfig) (*slog.Logger, error) {
	level, err := c.SlogLevel()
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if c.Format == "json" {
		h = slog.NewJSONHandler(w, opts)
	} else {
		opts.ReplaceAttr = colorLevel
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h), nil
}

// colorLevel rewrites the top-level level attribute with a colored name.
func colorLevel(groups []string, a slog.Attr) slog.Attr {
	if a.Key != slog.LevelKey || len(groups) != 0 {
		return a
	}
	level, ok := a.Value.Any().(slog.Level)
	if !ok {
		return a
	}

	var text string
	switch level {
	case slog.LevelDebug:
		text = faint("DEBUG")
	case slog.LevelInfo:
		text = color.GreenString("INFO")
	case slog.LevelWarn:
		text = color.YellowString("WARN")
	case slog.LevelError:
		text = color.RedString("ERROR")
	default:
		text = level.String()
	}
	a.Value = slog.StringValue(text)
	return a
}
