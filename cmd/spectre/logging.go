package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/lmittmann/tint"
)

// configureLogging installs the default slog logger: a tinted console
// handler for interactive use, JSON for log collectors.
func configureLogging(rawLevel, format string) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(rawLevel)); err != nil {
		return fmt.Errorf("invalid --log-level %q", rawLevel)
	}

	var handler slog.Handler
	switch strings.ToLower(format) {
	case "console", "":
		handler = tint.NewHandler(os.Stderr, &tint.Options{Level: level})
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	default:
		return fmt.Errorf("invalid --log-format %q", format)
	}

	slog.SetDefault(slog.New(handler))
	return nil
}
