package logging_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/ferdiebergado/hbnb/internal/pkg/logging"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"Warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			if got := logging.ParseLevel(tt.in); got != tt.want {
				t.Errorf("logging.ParseLevel(%q) = %v, want: %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestSetupLogger(t *testing.T) {
	defer slog.SetDefault(slog.Default())

	var buf bytes.Buffer
	logger := logging.SetupLogger("production", "warn", &buf)

	logger.Info("Dropped.")
	logger.Warn("Kept.", "key", "value")

	out := strings.TrimSpace(buf.String())
	if strings.Count(out, "\n") != 0 {
		t.Fatalf("got %q, want a single log line", out)
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(out), &entry); err != nil {
		t.Fatalf("production output is not JSON: %v", err)
	}
	if entry["msg"] != "Kept." || entry["key"] != "value" {
		t.Errorf("entry = %v, want msg %q and key %q", entry, "Kept.", "value")
	}
}
