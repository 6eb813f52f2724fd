package main

import (
	"fmt"
	"io"
	"log/slog"
)

var globalLogger *slog.Logger

// InitLogger installs a text slog handler writing to w at the given level.
func InitLogger(level string, w io.Writer) error {
	var slogLevel slog.Level

	switch level {
	case "debug":
		slogLevel = slog.LevelDebug
	case "info":
		slogLevel = slog.LevelInfo
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		return fmt.Errorf("invalid log level: %s", level)
	}

	globalLogger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slogLevel}))
	slog.SetDefault(globalLogger)
	return nil
}

func GetLogger() *slog.Logger {
	if globalLogger == nil {
		return slog.Default()
	}
	return globalLogger
}
