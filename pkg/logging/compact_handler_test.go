package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestCompactHandlerFormat(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewCompactHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	log.Info("batch applied", "nodes", 3, "label", "two words", "error", errors.New("boom"))

	line := buf.String()
	if !strings.HasPrefix(line, "[INFO]  ") {
		t.Errorf("Expected INFO prefix, got %q", line)
	}
	for _, want := range []string{"batch applied |", "nodes=3", `label="two words"`, `error="boom"`} {
		if !strings.Contains(line, want) {
			t.Errorf("Expected %q in %q", want, line)
		}
	}
}

func TestCompactHandlerLevels(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewCompactHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))

	log.Info("hidden")
	log.Warn("shown")

	if strings.Contains(buf.String(), "hidden") {
		t.Error("INFO record should be filtered at WARN level")
	}
	if !strings.Contains(buf.String(), "[WARN]  ") {
		t.Errorf("Expected WARN record, got %q", buf.String())
	}
}

func TestCompactHandlerAttrsAndGroups(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewCompactHandler(&buf, nil)).With("store", "main").WithGroup("edge")

	log.Info("connected", "id", "e1")

	line := buf.String()
	if !strings.Contains(line, "store=main") || !strings.Contains(line, "edge.id=e1") {
		t.Errorf("Expected accumulated attrs and group prefix, got %q", line)
	}
}

func TestSessionID(t *testing.T) {
	ctx := NewSession(context.Background())
	id := GetSessionID(ctx)
	if len(id) != 36 {
		t.Fatalf("Expected a UUID session id, got %q", id)
	}

	var buf bytes.Buffer
	Configure(&buf, slog.LevelInfo, "compact")
	defer Configure(&bytes.Buffer{}, slog.LevelInfo, "compact")

	InfoContext(ctx, "rendered")
	if !strings.Contains(buf.String(), "session="+id[:8]) {
		t.Errorf("Expected shortened session id in %q", buf.String())
	}
}

func TestLevelFromVerbosity(t *testing.T) {
	tests := []struct {
		name  string
		count int
		want  slog.Level
	}{
		{"", 0, slog.LevelInfo},
		{"", 1, slog.LevelDebug},
		{"", 3, LevelTrace},
		{"warn", 2, slog.LevelWarn},
		{"error", 0, slog.LevelError},
		{"trace", 0, LevelTrace},
	}

	for _, tt := range tests {
		if got := LevelFromVerbosity(tt.name, tt.count); got != tt.want {
			t.Errorf("LevelFromVerbosity(%q, %d) = %v, want %v", tt.name, tt.count, got, tt.want)
		}
	}
}
