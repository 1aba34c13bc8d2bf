package logging_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mutronic/marcaroni/internal/config"
	"github.com/mutronic/marcaroni/internal/logging"
)

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("hello from config")

	content, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, logging.LogFileName))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), "hello from config") {
		t.Fatalf("log file missing message: %q", content)
	}
}

func TestConsoleLoggerFormatsComponent(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logging.NewComponentLogger(logger, "match").Info("record disposed", logging.String(logging.FieldDisposition, "add"))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	line := string(content)
	if !strings.Contains(line, "INFO  match: record disposed") {
		t.Fatalf("unexpected console line: %q", line)
	}
	if !strings.Contains(line, "disposition=add") {
		t.Fatalf("expected key=value attrs, got %q", line)
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
	logger.Debug("with caller")
	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), ".go:") {
		t.Fatalf("expected caller information in debug logs, got %q", content)
	}
}

func TestJSONLoggerShape(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "json.log")
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Warn("stale snapshot", logging.String(logging.FieldEventType, "snapshot_stale"))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(content), &entry); err != nil {
		t.Fatalf("decode json log: %v", err)
	}
	if entry["level"] != "warn" || entry["msg"] != "stale snapshot" || entry["event_type"] != "snapshot_stale" {
		t.Fatalf("unexpected entry: %v", entry)
	}
	if _, ok := entry["ts"]; !ok {
		t.Fatalf("expected ts key, got %v", entry)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestWithRunIDTagsRecords(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.WithRunID(slog.New(slog.NewJSONHandler(&buf, nil)), "run-123")
	logger.Info("started")
	if !strings.Contains(buf.String(), `"run_id":"run-123"`) {
		t.Fatalf("expected run_id attr, got %s", buf.String())
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	logging.WarnWithContext(logger, "malformed isbn", "identifier_malformed")
	out := buf.String()
	for _, key := range []string{`"event_type":"identifier_malformed"`, `"error_hint"`, `"impact"`} {
		if !strings.Contains(out, key) {
			t.Fatalf("expected %s in %s", key, out)
		}
	}
}

func TestNewFileHandler(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", logging.LogFileName)
	handler, closer, err := logging.NewFileHandler(path, "console", "info")
	if err != nil {
		t.Fatalf("NewFileHandler returned error: %v", err)
	}
	slog.New(handler).Info("mirrored")
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(content), "mirrored") {
		t.Fatalf("unexpected content %q", content)
	}
}
