package cmd

import (
	"io"
	"log/slog"
	"strings"
)

var logLevelMap = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// initLogging installs a text handler on w as the default logger. Unknown
// levels fall back to warn.
func initLogging(w io.Writer, logLevel string) *slog.Logger {
	level, ok := logLevelMap[strings.ToLower(strings.TrimSpace(logLevel))]
	if !ok {
		level = slog.LevelWarn
	}
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	logger.Debug("logging initialized", "level", level.String())
	return logger
}
