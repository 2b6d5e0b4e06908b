package slogutil

import (
	"io"
	"log/slog"
	"path/filepath"

	"gdgen/internal/config"
)

// LoggerFactory builds the CLI logger from config and flags.
// Precedence for the terminal level: CLI flag, then config, then warn.
// The log file, when configured, always records at debug level.
type LoggerFactory struct {
	projectRoot string
	cfg         config.LoggingConfig
	cliLevel    *slog.Level
	closers     []io.Closer
}

// NewLoggerFactory creates a factory for the project at projectRoot.
func NewLoggerFactory(projectRoot string, cfg *config.Config) *LoggerFactory {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &LoggerFactory{projectRoot: projectRoot, cfg: cfg.Logging}
}

// WithCLILevel overrides the configured terminal level.
func (f *LoggerFactory) WithCLILevel(level slog.Level) *LoggerFactory {
	f.cliLevel = &level
	return f
}

// TerminalLevel is the level records must reach to be shown on the terminal.
func (f *LoggerFactory) TerminalLevel() slog.Level {
	if f.cliLevel != nil {
		return *f.cliLevel
	}
	if f.cfg.Level != "" {
		return LevelFromString(f.cfg.Level)
	}
	return slog.LevelWarn
}

// LogFilePath resolves the configured log file against the project root, or
// returns "" when file logging is off.
func (f *LoggerFactory) LogFilePath() string {
	if f.cfg.File == "" {
		return ""
	}
	if filepath.IsAbs(f.cfg.File) {
		return f.cfg.File
	}
	return filepath.Join(f.projectRoot, f.cfg.File)
}

// Logger returns a logger writing to stderr, as JSON when the config asks
// for it, and, when configured, to the rotating log file as well. A log file that cannot be opened is reported on
// the returned logger and otherwise ignored.
func (f *LoggerFactory) Logger(stderr io.Writer) *slog.Logger {
	var terminal slog.Handler
	if f.cfg.Format == "json" {
		terminal = slog.NewJSONHandler(stderr, &slog.HandlerOptions{Level: f.TerminalLevel()})
	} else {
		terminal = NewLineHandler(stderr, &LineOptions{Level: f.TerminalLevel(), NoTime: true})
	}

	path := f.LogFilePath()
	if path == "" {
		return slog.New(terminal)
	}
	w, err := OpenLogFile(path, f.cfg.MaxSize, f.cfg.MaxBackups)
	if err != nil {
		logger := slog.New(terminal)
		logger.Warn("Log file unavailable", "path", path, "error", err)
		return logger
	}
	f.closers = append(f.closers, w)
	file := NewLineHandler(w, &LineOptions{Level: slog.LevelDebug})
	return slog.New(NewTeeHandler(terminal, file))
}

// Close closes all open log files.
func (f *LoggerFactory) Close() error {
	var firstErr error
	for _, c := range f.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	f.closers = nil
	return firstErr
}
