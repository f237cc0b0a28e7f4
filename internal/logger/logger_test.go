package logger

import (
	"bytes"
	"encoding/json"
	"log"
	"log/slog"
	"strings"
	"testing"
)

func TestNewUsesJSONAndLevel(t *testing.T) {
	var buf bytes.Buffer
	lg := New(Options{Level: "debug", Writer: &buf, Instance: "denac-test", Component: "frames"})
	lg.Debug("boot", "k", "v")

	out := strings.TrimSpace(buf.String())
	if !strings.Contains(out, `"level":"DEBUG"`) {
		t.Fatalf("expected DEBUG level, got %s", out)
	}
	if !strings.Contains(out, `"instance":"denac-test"`) {
		t.Fatalf("expected instance field, got %s", out)
	}
	if !strings.Contains(out, `"component":"frames"`) {
		t.Fatalf("expected component field, got %s", out)
	}
}

func TestNewFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	lg := New(Options{Level: "warn", Writer: &buf})
	lg.Info("dropped")
	if buf.Len() != 0 {
		t.Fatalf("info should be filtered at warn level, got %s", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"chatty":  slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestJSONLoggerWrapsStdLog(t *testing.T) {
	var buf bytes.Buffer
	std := log.New(&JSONLogger{Instance: "denac-1", Out: &buf}, "", 0)
	std.Printf("Serving on port %s...", "8080")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v (%s)", err, buf.String())
	}
	if entry["message"] != "Serving on port 8080..." {
		t.Errorf("message = %v", entry["message"])
	}
	if entry["instance"] != "denac-1" {
		t.Errorf("instance = %v", entry["instance"])
	}
	if entry["level"] != "info" {
		t.Errorf("level = %v", entry["level"])
	}
}
