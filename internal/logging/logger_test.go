package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"preprocessor/internal/config"
	"preprocessor/internal/logging"
	"preprocessor/internal/services"
)

func TestConsoleLoggerRendersHeaderAndFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", Output: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger = logging.NewComponentLogger(logger, "pipeline")
	logger.Info("image written",
		logging.String(logging.FieldStage, "process"),
		logging.String(logging.FieldFilename, "cat.png"),
		logging.String("label_dir", "cat"),
	)

	out := buf.String()
	if !strings.Contains(out, "INFO [pipeline] Process · cat.png – image written") {
		t.Fatalf("unexpected header: %q", out)
	}
	if !strings.Contains(out, "    - Label Dir: cat") {
		t.Fatalf("expected titled field label, got %q", out)
	}
	if strings.Contains(out, ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", out)
	}
}

func TestConsoleLoggerHidesBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "warn", Output: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("quiet")
	if buf.Len() != 0 {
		t.Fatalf("expected info suppressed at warn level, got %q", buf.String())
	}
	logger.Warn("loud")
	if !strings.Contains(buf.String(), "WARN") {
		t.Fatalf("expected warn output, got %q", buf.String())
	}
}

func TestDebugLoggerIncludesSourceAndRawKeys(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "debug", Output: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Debug("resolved", logging.Int("label_count", 3))
	out := buf.String()
	if !strings.Contains(out, "logger_test.go:") {
		t.Fatalf("expected caller in debug output, got %q", out)
	}
	if !strings.Contains(out, "    - label_count: 3") {
		t.Fatalf("expected raw key in debug output, got %q", out)
	}
}

func TestJSONLoggerUsesStableKeys(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", Output: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("hello", logging.Int("count", 2))

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("decode json log: %v (%q)", err, buf.String())
	}
	if record["msg"] != "hello" || record["level"] != "info" {
		t.Fatalf("unexpected record: %v", record)
	}
	if _, ok := record["ts"]; !ok {
		t.Fatalf("expected ts key, got %v", record)
	}
	if record["count"] != float64(2) {
		t.Fatalf("unexpected count: %v", record["count"])
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewFromConfigMirrorsToLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.StateDir = t.TempDir()

	var console bytes.Buffer
	logger, err := logging.NewFromConfig(&cfg, &console)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("mirrored")

	if !strings.Contains(console.String(), "mirrored") {
		t.Fatalf("expected console output, got %q", console.String())
	}
	content, err := os.ReadFile(filepath.Join(cfg.Paths.StateDir, "preprocessor.log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), `"msg":"mirrored"`) {
		t.Fatalf("expected json record in log file, got %q", content)
	}
}

func TestWithContextAddsRunFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", Output: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	ctx := services.WithRunID(context.Background(), "run-1")
	ctx = services.WithFilename(ctx, "dog.png")
	logging.WithContext(ctx, logger).Info("processing")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("decode json log: %v", err)
	}
	if record[logging.FieldRunID] != "run-1" || record[logging.FieldFilename] != "dog.png" {
		t.Fatalf("expected context fields, got %v", record)
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", Output: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logging.WarnWithContext(logger, "label missing", "label_missing",
		logging.String(logging.FieldImpact, "image skipped"))

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("decode json log: %v", err)
	}
	if record[logging.FieldEventType] != "label_missing" {
		t.Fatalf("unexpected event type: %v", record)
	}
	if record[logging.FieldImpact] != "image skipped" {
		t.Fatalf("expected caller impact preserved, got %v", record[logging.FieldImpact])
	}
	if record[logging.FieldErrorHint] == nil {
		t.Fatalf("expected default error hint, got %v", record)
	}
}

func TestTeeHandlerSkipsNil(t *testing.T) {
	if _, ok := logging.TeeHandler(nil, nil).(logging.NoopHandler); !ok {
		t.Fatal("expected noop handler when all children are nil")
	}
}

func TestProgressSamplerBuckets(t *testing.T) {
	sampler := logging.NewProgressSampler(25)
	var emitted []int
	for done := 1; done <= 10; done++ {
		if sampler.ShouldLog(done, 10) {
			emitted = append(emitted, done)
		}
	}
	want := []int{1, 3, 5, 8, 10}
	if len(emitted) != len(want) {
		t.Fatalf("unexpected emissions: %v", emitted)
	}
	for i := range want {
		if emitted[i] != want[i] {
			t.Fatalf("unexpected emissions: %v want %v", emitted, want)
		}
	}
	sampler.Reset()
	if !sampler.ShouldLog(1, 10) {
		t.Fatal("expected emission after reset")
	}
}
