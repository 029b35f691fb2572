package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/histparl/rollcall/internal/model"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"unknown": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNew_TeesIntoLogDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	logger, err := New(model.LoggingConfig{Level: "info", Dir: dir})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	logger.Info("reference data loaded", "speakers", 2)

	data, err := os.ReadFile(filepath.Join(dir, "rollcall.log"))
	if err != nil {
		t.Fatalf("log file not created: %v", err)
	}
	if !strings.Contains(string(data), "reference data loaded") {
		t.Errorf("log file missing record: %q", data)
	}
}
