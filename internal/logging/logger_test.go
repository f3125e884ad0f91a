package logging_test

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"janitor/internal/config"
	"janitor/internal/logging"
)

func readLog(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	return string(content)
}

func TestConsoleLoggerFormatsComponentAndFields(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger = logging.NewComponentLogger(logger, "torrents")
	logger.Info("torrent kept", logging.String("name", "Some Linux ISO"), logging.Float64("ratio", 0.5))

	line := readLog(t, logPath)
	if !strings.Contains(line, " INFO torrents: torrent kept ") {
		t.Fatalf("expected level and component prefix, got %q", line)
	}
	if !strings.Contains(line, `name="Some Linux ISO"`) {
		t.Fatalf("expected quoted name field, got %q", line)
	}
	if !strings.Contains(line, "ratio=0.5") {
		t.Fatalf("expected ratio field, got %q", line)
	}
	if strings.Contains(line, "component=") {
		t.Fatalf("component should be rendered as prefix only, got %q", line)
	}
	if strings.Contains(line, ".go:") {
		t.Fatalf("expected no caller information at info level, got %q", line)
	}
}

func TestConsoleLoggerIncludesCallerForDebug(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "debug.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "debug", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Debug("checking movie")

	if line := readLog(t, logPath); !strings.Contains(line, "logger_test.go:") {
		t.Fatalf("expected caller information in debug logs, got %q", line)
	}
}

func TestConsoleLoggerFiltersBelowLevel(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "warn.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "warn", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("hidden")
	logger.Warn("shown")

	content := readLog(t, logPath)
	if strings.Contains(content, "hidden") {
		t.Fatalf("info line should be filtered, got %q", content)
	}
	if !strings.Contains(content, "WARN") {
		t.Fatalf("expected warn line, got %q", content)
	}
}

func TestJSONLoggerUsesShortKeys(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "json.log")
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("run complete", logging.String(logging.FieldRunID, "abc"))

	var entry map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(readLog(t, logPath))), &entry); err != nil {
		t.Fatalf("decode json log: %v", err)
	}
	if entry["level"] != "info" {
		t.Fatalf("expected lowercase level, got %v", entry["level"])
	}
	if _, ok := entry["ts"]; !ok {
		t.Fatalf("expected ts key, got %v", entry)
	}
	if entry[logging.FieldRunID] != "abc" {
		t.Fatalf("expected run_id field, got %v", entry)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewFromConfigWritesRunLog(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.Dir = t.TempDir()

	logger, path, err := logging.NewFromConfig(&cfg, "debug", false)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	if filepath.Dir(path) != cfg.Logging.Dir || !strings.HasPrefix(filepath.Base(path), "janitor-") {
		t.Fatalf("unexpected log path %q", path)
	}
	logger.Debug("debug override honored")
	if content := readLog(t, path); !strings.Contains(content, "debug override honored") {
		t.Fatalf("expected debug line in run log, got %q", content)
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "warn.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logging.WarnWithContext(logger, "notification failed", "notify_failed", logging.Error(errors.New("boom")))

	line := readLog(t, logPath)
	for _, want := range []string{"event_type=notify_failed", "error_hint=", "impact=", "error=boom"} {
		if !strings.Contains(line, want) {
			t.Fatalf("expected %q in %q", want, line)
		}
	}
}

func TestCleanupOldLogsRemovesExpiredFiles(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	oldPath := filepath.Join(dir, "janitor-old.log")
	freshPath := filepath.Join(dir, "janitor-fresh.log")
	currentPath := filepath.Join(dir, "janitor-current.log")
	otherPath := filepath.Join(dir, "unrelated.txt")
	for _, p := range []string{oldPath, freshPath, currentPath, otherPath} {
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", p, err)
		}
	}
	stale := now.AddDate(0, 0, -40)
	for _, p := range []string{oldPath, currentPath, otherPath} {
		if err := os.Chtimes(p, stale, stale); err != nil {
			t.Fatalf("chtimes %s: %v", p, err)
		}
	}

	removed := logging.CleanupOldLogs(logging.NewNop(), 30, now, logging.RetentionTarget{
		Dir:     dir,
		Pattern: "janitor-*.log",
		Exclude: []string{currentPath},
	})
	if removed != 1 {
		t.Fatalf("expected 1 file removed, got %d", removed)
	}
	if _, err := os.Stat(oldPath); !os.IsNotExist(err) {
		t.Fatalf("expected %s removed", oldPath)
	}
	for _, p := range []string{freshPath, currentPath, otherPath} {
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("expected %s kept: %v", p, err)
		}
	}
}

func TestCleanupOldLogsDisabled(t *testing.T) {
	if removed := logging.CleanupOldLogs(nil, 0, time.Now(), logging.RetentionTarget{Dir: t.TempDir()}); removed != 0 {
		t.Fatalf("expected no removals when retention disabled, got %d", removed)
	}
}
