package slogobs

import (
	"os"
	"strings"
)

// Format represents the output format for logs.
type Format string

const (
	// FormatCompact is one line per record with JSON attributes.
	// Example: 2025-11-03 10:40:35  INFO reply recovered after repair -> {"correlation_id":"..."}
	FormatCompact Format = "compact"

	// FormatPretty puts each attribute on its own indented line.
	FormatPretty Format = "pretty"

	// FormatJSON is one JSON object per record, for log aggregation.
	FormatJSON Format = "json"
)

// ParseFormat parses a format string. Unknown values yield FormatCompact.
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

// GetFormatFromEnv reads AGENTSWARM_LOG_FORMAT, then LOG_FORMAT, and
// defaults to FormatCompact.
func GetFormatFromEnv() Format {
	if format := os.Getenv("AGENTSWARM_LOG_FORMAT"); format != "" {
		return ParseFormat(format)
	}
	if format := os.Getenv("LOG_FORMAT"); format != "" {
		return ParseFormat(format)
	}
	return FormatCompact
}

func (f Format) String() string {
	return string(f)
}
