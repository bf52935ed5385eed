package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestPrettyHandlerPrefixesComponent(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newPrettyHandler(&buf, lvl, false))

	WithComponent(logger, "discovery").Info("run started", Int("target", 5))

	line := buf.String()
	if !strings.Contains(line, "INFO discovery: run started") {
		t.Fatalf("unexpected line: %q", line)
	}
	if !strings.Contains(line, "target=5") {
		t.Fatalf("missing attr in line: %q", line)
	}
	if strings.Contains(line, "component=") {
		t.Fatalf("component should not be emitted as key=value: %q", line)
	}
}

func TestPrettyHandlerQuotesValuesWithSpaces(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newPrettyHandler(&buf, lvl, false))

	logger.Warn("query failed", String("query", "true crime podcast"))

	if !strings.Contains(buf.String(), `query="true crime podcast"`) {
		t.Fatalf("expected quoted value, got %q", buf.String())
	}
}

func TestJSONFormatEmitsLowercaseLevel(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newJSONHandler(&buf, lvl, false))

	logger.Info("hello")

	var payload map[string]any
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if payload["level"] != "info" {
		t.Fatalf("unexpected level: %v", payload["level"])
	}
	if payload["msg"] != "hello" {
		t.Fatalf("unexpected msg: %v", payload["msg"])
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}
