package slogobs

import (
	"log/slog"
	"os"
	"strings"
)

// LevelTrace sits below slog.LevelDebug and enables per-fragment stream logs.
const LevelTrace = slog.LevelDebug - 4

// Environment variables consulted by [GetLogLevelFromEnv], in priority order.
const (
	EnvLogLevel         = "GENIUSENGINE_LOG_LEVEL"
	EnvLogLevelFallback = "LOG_LEVEL"
)

// ParseLogLevel maps a level name to a slog.Level. It accepts trace, debug,
// info, warn/warning and error in any case; anything else yields INFO.
func ParseLogLevel(s string) slog.Level {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "trace":
		return LevelTrace
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// GetLogLevelFromEnv reads GENIUSENGINE_LOG_LEVEL, then LOG_LEVEL, and
// defaults to INFO.
func GetLogLevelFromEnv() slog.Level {
	for _, name := range []string{EnvLogLevel, EnvLogLevelFallback} {
		if level := os.Getenv(name); level != "" {
			return ParseLogLevel(level)
		}
	}
	return slog.LevelInfo
}

// levelString returns the label printed for level, collapsing custom levels
// into the nearest named one.
func levelString(level slog.Level) string {
	switch {
	case level < slog.LevelDebug:
		return "TRACE"
	case level < slog.LevelInfo:
		return "DEBUG"
	case level < slog.LevelWarn:
		return "INFO"
	case level < slog.LevelError:
		return "WARN"
	default:
		return "ERROR"
	}
}
