package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewWithWriter_Level(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, "warn", false)

	logger.Info().Msg("hidden")
	logger.Warn().Str("slot_id", "s1").Msg("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info message must be filtered at warn level: %s", out)
	}
	if !strings.Contains(out, `"slot_id":"s1"`) || !strings.Contains(out, "visible") {
		t.Fatalf("expected structured warn line, got %s", out)
	}
}

func TestNewWithWriter_BadLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, "verbose", false)

	logger.Debug().Msg("debug")
	logger.Info().Msg("info")

	if strings.Contains(buf.String(), "debug") {
		t.Fatalf("debug must be filtered by default")
	}
	if !strings.Contains(buf.String(), "info") {
		t.Fatalf("expected info line")
	}
}
