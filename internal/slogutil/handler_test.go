package slogutil

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"gdgen/internal/config"
)

func TestLineHandler_Format(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewLineHandler(&buf, &LineOptions{Level: slog.LevelInfo, NoTime: true}))

	logger.Info("Pass finished", "units", 4, "key", "Game.Player.MakeInterface.g", "note", "two words", "took", 1500*time.Millisecond)

	want := `[info] Pass finished | units=4 key=Game.Player.MakeInterface.g note="two words" took=1.5s` + "\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestLineHandler_Timestamp(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(&buf, slog.LevelInfo).Info("hello")

	re := regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}Z \[info\] hello\n$`)
	if !re.MatchString(buf.String()) {
		t.Errorf("output = %q", buf.String())
	}
}

func TestLineHandler_NoAttrs(t *testing.T) {
	var buf bytes.Buffer
	slog.New(NewLineHandler(&buf, &LineOptions{NoTime: true})).Warn("bare")
	if buf.String() != "[warn] bare\n" {
		t.Errorf("output = %q", buf.String())
	}
}

func TestLineHandler_GroupsAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(NewLineHandler(&buf, &LineOptions{NoTime: true}))
	logger := base.With("generator", "MakeInterface").WithGroup("batch").With("size", 3)

	logger.Info("Collected", "skipped", 1)

	want := "[info] Collected | generator=MakeInterface batch.size=3 batch.skipped=1\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}

	buf.Reset()
	base.Info("plain")
	if buf.String() != "[info] plain\n" {
		t.Errorf("parent handler was modified: %q", buf.String())
	}
}

func TestLineHandler_Levels(t *testing.T) {
	tests := []struct {
		logFunc  func(*slog.Logger)
		expected string
	}{
		{func(l *slog.Logger) { l.Debug("m") }, "[debug]"},
		{func(l *slog.Logger) { l.Info("m") }, "[info]"},
		{func(l *slog.Logger) { l.Warn("m") }, "[warn]"},
		{func(l *slog.Logger) { l.Error("m") }, "[error]"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			var buf bytes.Buffer
			tt.logFunc(NewLogger(&buf, slog.LevelDebug))
			if !strings.Contains(buf.String(), tt.expected) {
				t.Errorf("expected %s in output, got: %s", tt.expected, buf.String())
			}
		})
	}
}

func TestLineHandler_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelWarn)

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")

	output := buf.String()
	if strings.Contains(output, "debug message") || strings.Contains(output, "info message") {
		t.Errorf("records below warn should be filtered: %s", output)
	}
	if !strings.Contains(output, "warn message") || !strings.Contains(output, "error message") {
		t.Errorf("warn and error should be included: %s", output)
	}
}

func TestLevelFromString(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"Warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"off", LevelSilent},
		{"unknown", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := LevelFromString(tt.input); got != tt.expected {
				t.Errorf("LevelFromString(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestLevelFromVerbosity(t *testing.T) {
	tests := []struct {
		verbosity int
		quiet     bool
		expected  slog.Level
	}{
		{0, false, slog.LevelWarn},
		{1, false, slog.LevelInfo},
		{2, false, slog.LevelDebug},
		{3, false, slog.LevelDebug},
		{0, true, LevelSilent},
		{5, true, LevelSilent},
	}

	for _, tt := range tests {
		if got := LevelFromVerbosity(tt.verbosity, tt.quiet); got != tt.expected {
			t.Errorf("LevelFromVerbosity(%d, %v) = %v, want %v", tt.verbosity, tt.quiet, got, tt.expected)
		}
	}
}

func TestNewDiscardLogger(t *testing.T) {
	logger := NewDiscardLogger()
	if logger.Enabled(context.Background(), slog.LevelError) {
		t.Error("discard logger should not be enabled for any level")
	}
	logger.Error("dropped")
}

func TestTeeHandler(t *testing.T) {
	var buf1, buf2 bytes.Buffer
	h1 := NewLineHandler(&buf1, &LineOptions{Level: slog.LevelInfo})
	h2 := NewLineHandler(&buf2, &LineOptions{Level: slog.LevelWarn})

	logger := slog.New(NewTeeHandler(h1, h2)).With("pass", "p1")
	logger.Info("info message")
	logger.Warn("warn message")

	if !strings.Contains(buf1.String(), "info message") || !strings.Contains(buf1.String(), "warn message") {
		t.Errorf("buf1 = %q", buf1.String())
	}
	if strings.Contains(buf2.String(), "info message") || !strings.Contains(buf2.String(), "warn message | pass=p1") {
		t.Errorf("buf2 = %q", buf2.String())
	}
}

func TestLoggerFactory(t *testing.T) {
	root := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Logging.Level = "info"
	cfg.Logging.File = filepath.Join(".gdgen", "logs", "gdgen.log")

	f := NewLoggerFactory(root, cfg)
	if f.TerminalLevel() != slog.LevelInfo {
		t.Errorf("TerminalLevel() = %v, want info", f.TerminalLevel())
	}
	f.WithCLILevel(slog.LevelError)
	if f.TerminalLevel() != slog.LevelError {
		t.Errorf("CLI level should win, got %v", f.TerminalLevel())
	}

	var stderr bytes.Buffer
	logger := f.Logger(&stderr)
	logger.Debug("only in file")
	logger.Error("everywhere")
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	if strings.Contains(stderr.String(), "only in file") || !strings.Contains(stderr.String(), "[error] everywhere") {
		t.Errorf("stderr = %q", stderr.String())
	}
	data, err := os.ReadFile(filepath.Join(root, ".gdgen", "logs", "gdgen.log"))
	if err != nil {
		t.Fatalf("log file missing: %v", err)
	}
	if !strings.Contains(string(data), "only in file") || !strings.Contains(string(data), "everywhere") {
		t.Errorf("log file = %q", data)
	}
}

func TestLoggerFactory_NoFile(t *testing.T) {
	f := NewLoggerFactory(t.TempDir(), nil)
	if f.LogFilePath() != "" {
		t.Errorf("LogFilePath() = %q, want empty", f.LogFilePath())
	}
	if f.TerminalLevel() != slog.LevelWarn {
		t.Errorf("TerminalLevel() = %v, want warn", f.TerminalLevel())
	}
	var stderr bytes.Buffer
	f.Logger(&stderr).Warn("hi")
	if stderr.String() != "[warn] hi\n" {
		t.Errorf("stderr = %q", stderr.String())
	}
}

func TestLoggerFactory_JSON(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Logging.Format = "json"
	var stderr bytes.Buffer
	NewLoggerFactory(t.TempDir(), cfg).Logger(&stderr).Warn("hi", "units", 3)
	out := stderr.String()
	if !strings.Contains(out, `"level":"WARN"`) || !strings.Contains(out, `"msg":"hi"`) || !strings.Contains(out, `"units":3`) {
		t.Errorf("stderr = %q", out)
	}
}
