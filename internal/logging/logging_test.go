package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"":        slog.LevelInfo,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		if err != nil {
			t.Errorf("ParseLevel(%q) error: %v", in, err)
		}
		if got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}

	if _, err := ParseLevel("verbose"); err == nil {
		t.Error("unknown level should fail")
	}
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Level: "info", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New 실패: %v", err)
	}

	l.Debug("hidden")
	l.Info("widget.create", "user_id", "u-1")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d: %q", len(lines), buf.String())
	}

	var rec map[string]interface{}
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if rec["msg"] != "widget.create" || rec["user_id"] != "u-1" {
		t.Errorf("unexpected record: %v", rec)
	}
}

func TestSetupReplacesGlobal(t *testing.T) {
	var buf bytes.Buffer
	if _, err := Setup(Config{Format: "text", Output: &buf}); err != nil {
		t.Fatalf("Setup 실패: %v", err)
	}
	L().Info("hello")
	if !strings.Contains(buf.String(), "msg=hello") {
		t.Errorf("text output missing: %q", buf.String())
	}

	if _, err := New(Config{Format: "xml"}); err == nil {
		t.Error("unknown format should fail")
	}
}
