package internal

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/pkg/errors"
)

func TestVersionString(t *testing.T) {
	prevVersion, prevStage, prevCommit := version, stage, gitCommit
	t.Cleanup(func() { version, stage, gitCommit = prevVersion, prevStage, prevCommit })

	version, stage, gitCommit = "", "", ""
	if got := VersionString(); got != defaultLocalBuild {
		t.Fatalf("VersionString = %q, want %q", got, defaultLocalBuild)
	}

	version, stage, gitCommit = "V1.2.3", "main", "abc123"
	if got := VersionString(); !strings.HasPrefix(got, "1.2.3 abc123 [") {
		t.Fatalf("VersionString = %q", got)
	}

	stage = "Staging"
	if got := VersionString(); !strings.HasPrefix(got, "1.2.3+staging abc123 [") {
		t.Fatalf("VersionString = %q", got)
	}
}

func TestLogLevel(t *testing.T) {
	prevDebug, prevQuiet := IsDebug(), IsQuiet()
	t.Cleanup(func() {
		SetDebug(prevDebug)
		SetQuiet(prevQuiet)
	})

	tests := []struct {
		debug, quiet bool
		want         slog.Level
	}{
		{false, false, slog.LevelInfo},
		{false, true, slog.LevelWarn},
		{true, false, slog.LevelDebug},
		{true, true, slog.LevelDebug},
	}

	for _, tt := range tests {
		SetDebug(tt.debug)
		SetQuiet(tt.quiet)
		if got := LogLevel(); got != tt.want {
			t.Fatalf("LogLevel(debug=%v, quiet=%v) = %v, want %v", tt.debug, tt.quiet, got, tt.want)
		}
	}
}

func TestNewLoggerWritesJSONToNonTerminal(t *testing.T) {
	prev := logLevel.Level()
	t.Cleanup(func() { SetLogLevel(prev) })

	var buf bytes.Buffer
	logger := NewLogger(&buf)

	SetLogLevel(slog.LevelWarn)
	logger.Info("hidden")
	logger.Warn("shown", "channel", "#a")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1:\n%s", len(lines), buf.String())
	}

	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if rec["msg"] != "shown" || rec["channel"] != "#a" {
		t.Fatalf("record = %v", rec)
	}
}

func TestTextLoggerPrintsErrorMessages(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newHandler(&buf, true))

	err := errors.Wrap(errors.New("connection refused"), "dialing")
	logger.Error("connect failed", "error", err)

	out := strings.TrimSpace(buf.String())
	if strings.Contains(out, "\n") {
		t.Fatalf("error attribute spans several lines:\n%s", out)
	}
	if !strings.Contains(out, `error="dialing: connection refused"`) {
		t.Fatalf("log line = %s", out)
	}
}
