package observability

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNewLogger_LevelAndService(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, "pipeline", "prod", "warn")

	l.Info().Msg("hidden")
	l.Warn().Str("stage", "sentiment").Msg("shown")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines: %q", len(lines), buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("not json: %v", err)
	}
	if entry["service"] != "pipeline" || entry["level"] != "warn" || entry["message"] != "shown" {
		t.Fatalf("entry = %v", entry)
	}
}

func TestNewLogger_UnknownLevelIsInfo(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, "api", "prod", "chatty")
	l.Debug().Msg("hidden")
	l.Info().Msg("shown")
	if out := buf.String(); strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Fatalf("output = %q", out)
	}
}

func TestNewLogger_DevConsole(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, "scraper", "dev", "debug")
	l.Debug().Msg("hello")
	out := buf.String()
	if strings.HasPrefix(out, "{") || !strings.Contains(out, "hello") || !strings.Contains(out, "scraper") {
		t.Fatalf("console output = %q", out)
	}
}
