// Package watcher reruns generation when project sources change.
package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"gdgen/internal/paths"
	"gdgen/internal/project"
)

// Op is the kind of change seen for a path.
type Op int

const (
	OpCreate Op = iota
	OpModify
	OpDelete
	OpRename
)

func (o Op) String() string {
	switch o {
	case OpCreate:
		return "create"
	case OpModify:
		return "modify"
	case OpDelete:
		return "delete"
	case OpRename:
		return "rename"
	default:
		return "unknown"
	}
}

// Event is one change to a watched file. Path is project-relative with
// forward slashes.
type Event struct {
	Op        Op
	Path      string
	Timestamp time.Time
}

// Handler receives each debounced batch. Batches are delivered one at a
// time from the goroutine running Run.
type Handler func(ctx context.Context, events []Event)

// DefaultExtensions are the inputs generation reads.
var DefaultExtensions = []string{".cs", ".tscn", ".scn", ".gdshader", ".godot", ".toml"}

// Config controls what is watched.
type Config struct {
	Debounce   time.Duration
	Extensions []string
	// Ignore skips project-relative paths, files and directories alike,
	// typically the output directory.
	Ignore func(rel string) bool
}

// Watcher watches a project tree recursively.
type Watcher struct {
	root   string
	cfg    Config
	exts   map[string]bool
	logger *slog.Logger
	fs     *fsnotify.Watcher
}

// New creates a watcher over every source directory under root.
func New(root string, cfg Config, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = 300 * time.Millisecond
	}
	if len(cfg.Extensions) == 0 {
		cfg.Extensions = DefaultExtensions
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	w := &Watcher{root: root, cfg: cfg, exts: map[string]bool{}, logger: logger, fs: fw}
	for _, ext := range cfg.Extensions {
		w.exts[ext] = true
	}
	if err := w.addTree(root); err != nil {
		fw.Close()
		return nil, err
	}
	return w, nil
}

// addTree adds dir and every source directory below it.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == dir {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if p != w.root && w.skipDir(p, d.Name()) {
			return filepath.SkipDir
		}
		if err := w.fs.Add(p); err != nil {
			return fmt.Errorf("failed to watch %s: %w", p, err)
		}
		return nil
	})
}

func (w *Watcher) rel(p string) string {
	if rel, ok := paths.ProjectRelative(w.root, p); ok {
		return rel
	}
	return filepath.ToSlash(p)
}

func (w *Watcher) skipDir(p, name string) bool {
	return project.SkipDir(name) || (w.cfg.Ignore != nil && w.cfg.Ignore(w.rel(p)))
}

// Relevant reports whether a change to the project-relative path rel can
// affect generation.
func (w *Watcher) Relevant(rel string) bool {
	if w.cfg.Ignore != nil && w.cfg.Ignore(rel) {
		return false
	}
	return w.exts[paths.Ext(rel)]
}

// Dirs returns the number of watched directories.
func (w *Watcher) Dirs() int { return len(w.fs.WatchList()) }

// Run delivers debounced batches to handler until ctx is done. It closes
// the underlying watcher before returning.
func (w *Watcher) Run(ctx context.Context, handler Handler) error {
	defer w.fs.Close()

	batches := make(chan []Event)
	done := make(chan struct{})
	defer close(done)
	debouncer := NewBatchDebouncer(w.cfg.Debounce, func(events []Event) {
		select {
		case batches <- events:
		case <-done:
		}
	})
	defer debouncer.Cancel()

	w.logger.Info("Watching project",
		"root", w.root,
		"dirs", w.Dirs(),
		"debounce", w.cfg.Debounce.String(),
	)

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if e, ok := w.translate(ev); ok {
				w.logger.Debug("Change detected", "path", e.Path, "op", e.Op.String())
				debouncer.Add(e)
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Watcher error", "error", err.Error())

		case events := <-batches:
			handler(ctx, events)
		}
	}
}

// translate filters a raw notification and watches new directories.
func (w *Watcher) translate(ev fsnotify.Event) (Event, bool) {
	rel := w.rel(ev.Name)
	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if !w.skipDir(ev.Name, info.Name()) {
				if err := w.addTree(ev.Name); err != nil {
					w.logger.Warn("Cannot watch new directory", "path", rel, "error", err.Error())
				}
			}
			return Event{}, false
		}
	}
	if !w.Relevant(rel) {
		return Event{}, false
	}

	e := Event{Path: rel, Timestamp: time.Now()}
	switch {
	case ev.Has(fsnotify.Create):
		e.Op = OpCreate
	case ev.Has(fsnotify.Write):
		e.Op = OpModify
	case ev.Has(fsnotify.Remove):
		e.Op = OpDelete
	case ev.Has(fsnotify.Rename):
		e.Op = OpRename
	default:
		return Event{}, false
	}
	return e, true
}
