package slogobs

import (
	"log/slog"
	"testing"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"TRACE", LevelTrace},
		{"trace", LevelTrace},
		{"DEBUG", slog.LevelDebug},
		{"DeBuG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"UNKNOWN", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"  DEBUG  ", slog.LevelDebug},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLogLevel(tt.input); got != tt.expected {
				t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestGetLogLevelFromEnv(t *testing.T) {
	tests := []struct {
		name       string
		swarmLevel string
		logLevel   string
		expected   slog.Level
	}{
		{"AGENTSWARM_LOG_LEVEL takes precedence", "DEBUG", "ERROR", slog.LevelDebug},
		{"fallback to LOG_LEVEL", "", "WARN", slog.LevelWarn},
		{"default", "", "", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("AGENTSWARM_LOG_LEVEL", tt.swarmLevel)
			t.Setenv("LOG_LEVEL", tt.logLevel)

			if got := GetLogLevelFromEnv(); got != tt.expected {
				t.Errorf("GetLogLevelFromEnv() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestLogLevelString_RoundTrip(t *testing.T) {
	for _, name := range []string{"TRACE", "DEBUG", "INFO", "WARN", "ERROR"} {
		if got := LogLevelString(ParseLogLevel(name)); got != name {
			t.Errorf("LogLevelString(ParseLogLevel(%q)) = %q", name, got)
		}
	}
	if got := LogLevelString(slog.Level(2)); got != "LEVEL(2)" {
		t.Errorf("unexpected string for custom level: %q", got)
	}
}
