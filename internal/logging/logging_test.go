package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestNew_FiltersByLevel(t *testing.T) {
	tests := []struct {
		name    string
		level   slog.Level
		log     func(*slog.Logger)
		wantLog bool
	}{
		{"info at info", slog.LevelInfo, func(l *slog.Logger) { l.Info("hello") }, true},
		{"debug at info", slog.LevelInfo, func(l *slog.Logger) { l.Debug("hello") }, false},
		{"debug at debug", slog.LevelDebug, func(l *slog.Logger) { l.Debug("hello") }, true},
		{"warn at error", slog.LevelError, func(l *slog.Logger) { l.Warn("hello") }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.log(New(&buf, tt.level))
			if got := buf.Len() > 0; got != tt.wantLog {
				t.Fatalf("expected output=%v, got %q", tt.wantLog, buf.String())
			}
		})
	}
}

func TestNew_WritesAttributes(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, slog.LevelInfo).Info("layout pass complete", "strategy", "below")
	out := buf.String()
	if !strings.Contains(out, "layout pass complete") || !strings.Contains(out, "strategy=below") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"":      slog.LevelInfo,
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		if err != nil {
			t.Fatalf("ParseLevel(%q) error: %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}
