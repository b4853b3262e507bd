package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLogRotation(t *testing.T) {
	tempDir := t.TempDir()
	logFile := filepath.Join(tempDir, "frames.log")

	// lumberjack sizes are in MB, 1 is the smallest it accepts.
	cfg := FileConfig{
		Path:       logFile,
		MaxSizeMB:  1,
		MaxBackups: 2,
		MaxAgeDays: 1,
		Compress:   false,
	}
	if err := InitWithFileConfig("debug", cfg, false); err != nil {
		t.Fatalf("failed to init logger: %v", err)
	}
	t.Cleanup(func() { _ = InitWithFileConfig("info", FileConfig{}, false) })

	payload := strings.Repeat("w", 200)
	for i := 0; i < 8000; i++ {
		Sugar.Infof("frame %d weights %s", i, payload)
	}
	Sync()

	files, err := os.ReadDir(tempDir)
	if err != nil {
		t.Fatalf("failed to read temp dir: %v", err)
	}

	var logFiles []string
	for _, f := range files {
		if strings.HasPrefix(f.Name(), "frames") && strings.Contains(f.Name(), ".log") {
			logFiles = append(logFiles, f.Name())
		}
	}
	if len(logFiles) < 2 {
		t.Errorf("expected at least 2 log files (rotation), got %d: %v", len(logFiles), logFiles)
	}
}

func TestLogLevels(t *testing.T) {
	tempDir := t.TempDir()

	tests := []struct {
		level    string
		expected []string
		excluded []string
	}{
		{level: "error", expected: []string{"error"}, excluded: []string{"warn", "info", "debug"}},
		{level: "warn", expected: []string{"error", "warn"}, excluded: []string{"info", "debug"}},
		{level: "info", expected: []string{"error", "warn", "info"}, excluded: []string{"debug"}},
		{level: "debug", expected: []string{"error", "warn", "info", "debug"}},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logFile := filepath.Join(tempDir, tt.level+".log")
			cfg := FileConfig{Path: logFile, MaxSizeMB: 10, MaxBackups: 1, MaxAgeDays: 1}

			if err := InitWithFileConfig(tt.level, cfg, false); err != nil {
				t.Fatalf("failed to init logger: %v", err)
			}

			Debug("a")
			Info("b")
			Warn("c")
			Error("d")
			Sync()

			content, err := os.ReadFile(logFile)
			if err != nil {
				t.Fatalf("failed to read log file: %v", err)
			}
			out := string(content)

			for _, exp := range tt.expected {
				if !strings.Contains(out, `"level":"`+exp+`"`) {
					t.Errorf("expected level %s in log output", exp)
				}
			}
			for _, exc := range tt.excluded {
				if strings.Contains(out, `"level":"`+exc+`"`) {
					t.Errorf("unexpected level %s in output for %s", exc, tt.level)
				}
			}
		})
	}
}

func TestNoSinksIsNop(t *testing.T) {
	if err := InitWithFileConfig("info", FileConfig{}, false); err != nil {
		t.Fatalf("init: %v", err)
	}
	// Must not panic.
	Info("dropped")
	Warn("dropped")
}

func TestParseLevel(t *testing.T) {
	for _, lvl := range []string{"debug", "info", "warn", "error"} {
		if !ValidLevel(lvl) {
			t.Errorf("%s should be valid", lvl)
		}
		if ParseLevel(lvl).String() != lvl {
			t.Errorf("ParseLevel(%s) = %s", lvl, ParseLevel(lvl))
		}
	}
	if ValidLevel("verbose") {
		t.Error("verbose should not be valid")
	}
	if ParseLevel("verbose").String() != "info" {
		t.Error("unknown level should fall back to info")
	}
}

func TestDefaultFileConfig(t *testing.T) {
	cfg := DefaultFileConfig("/tmp/facehead.log")

	if cfg.Path != "/tmp/facehead.log" {
		t.Errorf("expected path /tmp/facehead.log, got %s", cfg.Path)
	}
	if cfg.MaxSizeMB != 20 {
		t.Errorf("expected MaxSizeMB 20, got %d", cfg.MaxSizeMB)
	}
	if cfg.MaxBackups != 3 {
		t.Errorf("expected MaxBackups 3, got %d", cfg.MaxBackups)
	}
	if !cfg.Compress {
		t.Error("expected Compress to be true")
	}
}
