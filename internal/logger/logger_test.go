package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := parseLevel(tt.in); got != tt.want {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestGetLevel(t *testing.T) {
	if got := GetLevel("debug"); got != "DEBUG" {
		t.Errorf("expected DEBUG, got %s", got)
	}
	if got := GetLevel("nonsense"); got != "INFO" {
		t.Errorf("expected INFO fallback, got %s", got)
	}
}

func TestNewJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "info", Output: &buf})

	log.Debug("hidden")
	log.Info("review submitted", "company_id", "abc")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 log line, got %d: %q", len(lines), buf.String())
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["msg"] != "review submitted" {
		t.Errorf("unexpected msg: %v", entry["msg"])
	}
	if entry["company_id"] != "abc" {
		t.Errorf("unexpected company_id: %v", entry["company_id"])
	}
}

func TestNewTextOutput(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "debug", Format: "text", Output: &buf})
	log.Debug("migrating", "version", "001")

	if !strings.Contains(buf.String(), "msg=migrating") {
		t.Errorf("expected text handler output, got %q", buf.String())
	}
}
