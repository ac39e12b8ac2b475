package slogobs

import (
	"os"
	"strings"
)

// Format represents the output format for logs.
type Format string

const (
	// FormatCompact is a single-line format with JSON attributes (default).
	// Example: 2026-10-15 10:40:35 DEBUG Request dispatched -> {"llm.provider":"claude"}
	FormatCompact Format = "compact"

	// FormatPretty is a multi-line format with one attribute per line.
	// Example:
	//   2026-10-15 10:40:35 DEBUG  Request dispatched
	//                      `- llm.provider: claude
	FormatPretty Format = "pretty"

	// FormatJSON is one JSON object per line, for log aggregation.
	FormatJSON Format = "json"
)

// Environment variables consulted by [GetFormatFromEnv], in priority order.
const (
	EnvLogFormat         = "GENIUSENGINE_LOG_FORMAT"
	EnvLogFormatFallback = "LOG_FORMAT"
)

// ParseFormat parses a format string and returns the corresponding Format.
// Unknown values map to FormatCompact.
func ParseFormat(s string) Format {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "pretty":
		return FormatPretty
	case "json":
		return FormatJSON
	default:
		return FormatCompact
	}
}

// GetFormatFromEnv retrieves the log format from the environment, checking
// GENIUSENGINE_LOG_FORMAT before LOG_FORMAT.
func GetFormatFromEnv() Format {
	for _, name := range []string{EnvLogFormat, EnvLogFormatFallback} {
		if format := os.Getenv(name); format != "" {
			return ParseFormat(format)
		}
	}
	return FormatCompact
}

func (f Format) String() string {
	return string(f)
}
