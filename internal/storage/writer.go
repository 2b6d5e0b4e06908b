package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gdgen/internal/paths"
	"gdgen/internal/pipeline"
)

// GeneratedSuffix marks files owned by the writer.
const GeneratedSuffix = ".g.cs"

// Writer materializes units under the output directory of a project.
type Writer struct {
	Root      string
	OutputDir string    // project-relative, forward slashes
	Manifest  *Manifest // optional
	Logger    *slog.Logger
	Now       func() time.Time
}

// WriteReport lists what a write pass did, by project-relative path.
type WriteReport struct {
	PassID    string   `json:"passId,omitempty" yaml:"passId,omitempty"`
	Written   []string `json:"written" yaml:"written"`
	Unchanged []string `json:"unchanged" yaml:"unchanged"`
	Removed   []string `json:"removed" yaml:"removed"`
}

// Drift lists how the output directory differs from a set of units.
type Drift struct {
	Added   []string `json:"added" yaml:"added"`
	Changed []string `json:"changed" yaml:"changed"`
	Stale   []string `json:"stale" yaml:"stale"`
}

// Empty reports whether the output matches.
func (d *Drift) Empty() bool {
	return len(d.Added) == 0 && len(d.Changed) == 0 && len(d.Stale) == 0
}

func (w *Writer) logger() *slog.Logger {
	if w.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return w.Logger
}

func (w *Writer) now() time.Time {
	if w.Now == nil {
		return time.Now()
	}
	return w.Now()
}

// UnitPath is the project-relative path a unit is written to.
func (w *Writer) UnitPath(u pipeline.Unit) string {
	return path.Join(paths.NormalizePath(w.OutputDir), u.FileName())
}

// Write brings the output directory in line with units. Files whose content
// already matches are left alone; generated files no longer produced are
// removed. When a manifest is attached the pass is recorded in it.
func (w *Writer) Write(ctx context.Context, units []pipeline.Unit, diagnostics int) (*WriteReport, error) {
	started := w.now()
	report := &WriteReport{Written: []string{}, Unchanged: []string{}, Removed: []string{}}

	prior := map[string]UnitRecord{}
	if w.Manifest != nil {
		records, err := w.Manifest.Units(ctx)
		if err != nil {
			return nil, err
		}
		for _, r := range records {
			prior[r.Key] = r
		}
	}

	wanted := make(map[string]bool, len(units))
	var upserts []StoredUnit
	for _, u := range units {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rel := w.UnitPath(u)
		wanted[rel] = true
		hash := u.Hash()

		onDisk, err := fileHash(paths.JoinProjectPath(w.Root, rel))
		if err != nil {
			return nil, err
		}
		if onDisk == hash {
			report.Unchanged = append(report.Unchanged, rel)
		} else {
			if err := writeFileAtomic(paths.JoinProjectPath(w.Root, rel), []byte(u.Text)); err != nil {
				return nil, fmt.Errorf("write %s: %w", rel, err)
			}
			report.Written = append(report.Written, rel)
		}

		if r, ok := prior[u.Key]; !ok || r.SHA256 != hash || r.Path != rel {
			upserts = append(upserts, StoredUnit{
				UnitRecord: UnitRecord{
					Key:       u.Key,
					Generator: u.Generator,
					Path:      rel,
					Source:    u.Source.String(),
					SHA256:    hash,
					Size:      len(u.Text),
					UpdatedAt: started,
				},
				Text: u.Text,
			})
		}
	}

	stale, err := w.stale(wanted, prior)
	if err != nil {
		return nil, err
	}
	for _, rel := range stale {
		err := os.Remove(paths.JoinProjectPath(w.Root, rel))
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("remove %s: %w", rel, err)
		}
		report.Removed = append(report.Removed, rel)
	}

	var droppedKeys []string
	current := make(map[string]bool, len(units))
	for _, u := range units {
		current[u.Key] = true
	}
	for key := range prior {
		if !current[key] {
			droppedKeys = append(droppedKeys, key)
		}
	}
	sort.Strings(droppedKeys)

	sort.Strings(report.Written)
	sort.Strings(report.Unchanged)

	if w.Manifest != nil {
		pass := PassRecord{
			ID:          NewPassID(),
			StartedAt:   started,
			FinishedAt:  w.now(),
			Units:       len(units),
			Written:     len(report.Written),
			Removed:     len(report.Removed),
			Diagnostics: diagnostics,
		}
		if err := w.Manifest.Commit(ctx, pass, upserts, droppedKeys); err != nil {
			return nil, err
		}
		report.PassID = pass.ID
	}

	w.logger().Info("Output written",
		"written", len(report.Written),
		"unchanged", len(report.Unchanged),
		"removed", len(report.Removed),
	)
	return report, nil
}

// Check compares the output directory with units without touching it.
func (w *Writer) Check(ctx context.Context, units []pipeline.Unit) (*Drift, error) {
	drift := &Drift{Added: []string{}, Changed: []string{}, Stale: []string{}}

	prior := map[string]UnitRecord{}
	if w.Manifest != nil {
		records, err := w.Manifest.Units(ctx)
		if err != nil {
			return nil, err
		}
		for _, r := range records {
			prior[r.Key] = r
		}
	}

	wanted := make(map[string]bool, len(units))
	for _, u := range units {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rel := w.UnitPath(u)
		wanted[rel] = true
		onDisk, err := fileHash(paths.JoinProjectPath(w.Root, rel))
		if err != nil {
			return nil, err
		}
		switch onDisk {
		case u.Hash():
		case "":
			drift.Added = append(drift.Added, rel)
		default:
			drift.Changed = append(drift.Changed, rel)
		}
	}

	stale, err := w.stale(wanted, prior)
	if err != nil {
		return nil, err
	}
	for _, rel := range stale {
		if _, err := os.Stat(paths.JoinProjectPath(w.Root, rel)); err == nil {
			drift.Stale = append(drift.Stale, rel)
		}
	}

	sort.Strings(drift.Added)
	sort.Strings(drift.Changed)
	return drift, nil
}

// stale returns generated files that are not wanted: every "*.g.cs" file
// directly under the output directory plus every path the manifest recorded.
func (w *Writer) stale(wanted map[string]bool, prior map[string]UnitRecord) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	add := func(rel string) {
		if !wanted[rel] && !seen[rel] {
			seen[rel] = true
			out = append(out, rel)
		}
	}

	outDir := paths.NormalizePath(w.OutputDir)
	entries, err := os.ReadDir(paths.JoinProjectPath(w.Root, outDir))
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read output directory: %w", err)
	}
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), GeneratedSuffix) {
			add(path.Join(outDir, e.Name()))
		}
	}
	for _, r := range prior {
		add(r.Path)
	}

	sort.Strings(out)
	return out, nil
}

// fileHash returns the hex SHA-256 of a file, or "" when it does not exist.
func fileHash(name string) (string, error) {
	data, err := os.ReadFile(name)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

func writeFileAtomic(name string, data []byte) error {
	dir := filepath.Dir(name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".gdgen-*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), name)
}
