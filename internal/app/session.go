// Package app ties the front end, the generators and the output writer
// into the operations the CLI exposes.
package app

import (
	"context"
	stderrors "errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gdgen/internal/config"
	"gdgen/internal/csharp"
	"gdgen/internal/diag"
	"gdgen/internal/engine"
	"gdgen/internal/errors"
	"gdgen/internal/generators"
	"gdgen/internal/pipeline"
	"gdgen/internal/project"
	"gdgen/internal/projectconfig"
	"gdgen/internal/storage"
)

// Session is one project opened with one configuration.
type Session struct {
	Root   string
	Config *config.Config
	Logger *slog.Logger

	engine *engine.Table
	tables *projectconfig.Tables
}

// Open validates cfg and loads the engine and project settings tables it
// names. Relative paths in cfg are resolved against root.
func Open(root string, cfg *config.Config, logger *slog.Logger) (*Session, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.New(errors.ConfigInvalid, "invalid configuration", err)
	}

	s := &Session{Root: root, Config: cfg, Logger: logger}

	table, err := engine.Load(s.resolve(cfg.Engine.TypesFile))
	if err != nil {
		return nil, errors.New(errors.ConfigInvalid, "cannot load engine types", err)
	}
	s.engine = table

	tables, err := projectconfig.LoadTables(s.resolve(cfg.ProjectConfig.TablesFile))
	if err != nil {
		return nil, errors.New(errors.ConfigInvalid, "cannot load project settings tables", err)
	}
	s.tables = tables
	return s, nil
}

// Engine returns the engine type table in use.
func (s *Session) Engine() *engine.Table { return s.engine }

// Tables returns the project settings tables in use.
func (s *Session) Tables() *projectconfig.Tables { return s.tables }

// Generators describes every generator and whether it is enabled.
func (s *Session) Generators() []generators.Info { return generators.List(s.Config) }

// resolve makes a config path absolute. Empty stays empty.
func (s *Session) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(s.Root, filepath.FromSlash(p))
}

// Run parses the project and runs every enabled generator. Nothing is
// written.
func (s *Session) Run(ctx context.Context) (*pipeline.Result, error) {
	files, err := csharp.Load(ctx, s.Root, csharp.Options{
		OutputDir:   s.Config.OutputDir,
		Exclude:     s.Config.Exclude,
		Concurrency: s.Config.Concurrency,
		Logger:      s.Logger,
	})
	if err != nil {
		return nil, err
	}

	settings, err := s.projectSettings()
	if err != nil {
		return nil, err
	}

	runner := &pipeline.Runner{
		Generators:      generators.Build(s.Config, s.tables),
		Engine:          s.engine,
		ProjectRoot:     s.Root,
		ProjectSettings: settings,
		Logger:          s.Logger,
	}
	res, err := runner.Run(ctx, files)
	if err != nil {
		if stderrors.Is(err, pipeline.ErrCancelled) {
			return nil, errors.New(errors.Cancelled, "pass cancelled", err)
		}
		return nil, errors.New(errors.InternalError, "pass failed", err)
	}
	return res, nil
}

// projectSettings reads the settings file. A missing file yields "".
func (s *Session) projectSettings() (string, error) {
	name := s.Config.ProjectConfig.SettingsFile
	if name == "" {
		return "", nil
	}
	data, err := os.ReadFile(s.resolve(name))
	if os.IsNotExist(err) {
		s.Logger.Debug("Project settings not found", "path", name)
		return "", nil
	}
	if err != nil {
		return "", errors.New(errors.SourceUnreadable, "cannot read "+name, err)
	}
	return string(data), nil
}

// GenerateReport is the outcome of a generate pass.
type GenerateReport struct {
	Units       []pipeline.Unit      `json:"units" yaml:"units"`
	Diagnostics []diag.Diagnostic    `json:"diagnostics" yaml:"diagnostics"`
	Stats       pipeline.Stats       `json:"stats" yaml:"stats"`
	Write       *storage.WriteReport `json:"write,omitempty" yaml:"write,omitempty"`
	Pruned      int                  `json:"pruned,omitempty" yaml:"pruned,omitempty"`
}

// HasErrors reports whether any error-severity diagnostic was reported.
func (r *GenerateReport) HasErrors() bool { return diag.HasErrors(r.Diagnostics) }

// Generate runs a pass and writes its units unless dryRun is set. Units are
// written even when diagnostics were reported; the diagnostics only remove
// the units of the offending types.
func (s *Session) Generate(ctx context.Context, dryRun bool) (*GenerateReport, error) {
	res, err := s.Run(ctx)
	if err != nil {
		return nil, err
	}
	report := &GenerateReport{Units: res.Units, Diagnostics: res.Diagnostics, Stats: res.Stats}
	if dryRun {
		return report, nil
	}

	w := &storage.Writer{Root: s.Root, OutputDir: s.Config.OutputDir, Logger: s.Logger}
	if s.Config.Manifest.Enabled {
		db, err := storage.Open(s.resolve(s.Config.Manifest.Path), s.Logger)
		if err != nil {
			return nil, errors.New(errors.ManifestFailed, "cannot open manifest", err)
		}
		defer db.Close()
		w.Manifest = storage.NewManifest(db)
	}

	report.Write, err = w.Write(ctx, res.Units, len(res.Diagnostics))
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.New(errors.Cancelled, "write cancelled", err)
		}
		return nil, errors.New(errors.ManifestFailed, "cannot write generated sources", err)
	}

	if w.Manifest != nil {
		report.Pruned, err = w.Manifest.Prune(ctx, s.Config.Manifest.KeepPasses)
		if err != nil {
			s.Logger.Warn("Failed to prune manifest", "error", err)
		}
	}
	return report, nil
}

// CheckReport is the outcome of a check pass.
type CheckReport struct {
	Drift       *storage.Drift    `json:"drift" yaml:"drift"`
	Diagnostics []diag.Diagnostic `json:"diagnostics" yaml:"diagnostics"`
}

// HasErrors reports whether any error-severity diagnostic was reported.
func (r *CheckReport) HasErrors() bool { return diag.HasErrors(r.Diagnostics) }

// Check runs a pass and compares it with the output directory. When the
// output is out of date the report is returned together with an
// OutputDrift error.
func (s *Session) Check(ctx context.Context) (*CheckReport, error) {
	res, err := s.Run(ctx)
	if err != nil {
		return nil, err
	}

	w := &storage.Writer{Root: s.Root, OutputDir: s.Config.OutputDir, Logger: s.Logger}
	db, err := s.openManifest()
	if err != nil {
		return nil, err
	}
	if db != nil {
		defer db.Close()
		w.Manifest = storage.NewManifest(db)
	}

	drift, err := w.Check(ctx, res.Units)
	if err != nil {
		return nil, errors.New(errors.InternalError, "cannot compare generated sources", err)
	}
	report := &CheckReport{Drift: drift, Diagnostics: res.Diagnostics}
	if !drift.Empty() {
		return report, errors.New(errors.OutputDrift, "generated sources are out of date", nil).WithDetails(drift)
	}
	return report, nil
}

// openManifest opens an existing manifest, or returns nil when the manifest
// is disabled or was never written.
func (s *Session) openManifest() (*storage.DB, error) {
	if !s.Config.Manifest.Enabled {
		return nil, nil
	}
	path := s.resolve(s.Config.Manifest.Path)
	if _, err := os.Stat(path); err != nil {
		return nil, nil
	}
	db, err := storage.Open(path, s.Logger)
	if err != nil {
		return nil, errors.New(errors.ManifestFailed, "cannot open manifest", err)
	}
	return db, nil
}

// Units lists the units recorded by the last generate pass.
func (s *Session) Units(ctx context.Context) ([]storage.UnitRecord, error) {
	db, err := s.openManifest()
	if err != nil {
		return nil, err
	}
	if db == nil {
		return nil, errors.New(errors.ManifestFailed, "no manifest; run gdgen generate first", nil)
	}
	defer db.Close()
	units, err := storage.NewManifest(db).Units(ctx)
	if err != nil {
		return nil, errors.New(errors.ManifestFailed, "cannot read manifest", err)
	}
	return units, nil
}

// Passes lists up to limit recorded passes, newest first.
func (s *Session) Passes(ctx context.Context, limit int) ([]storage.PassRecord, error) {
	db, err := s.openManifest()
	if err != nil {
		return nil, err
	}
	if db == nil {
		return nil, errors.New(errors.ManifestFailed, "no manifest; run gdgen generate first", nil)
	}
	defer db.Close()
	passes, err := storage.NewManifest(db).Passes(ctx, limit)
	if err != nil {
		return nil, errors.New(errors.ManifestFailed, "cannot read manifest", err)
	}
	return passes, nil
}

// NormalizeKey accepts a unit key, its file name, or its output path.
func NormalizeKey(key string) string {
	key = filepath.ToSlash(key)
	if i := strings.LastIndex(key, "/"); i >= 0 {
		key = key[i+1:]
	}
	return strings.TrimSuffix(key, ".cs")
}

// Show returns the text of one unit. The manifest is consulted first; when
// it has no such unit a fresh pass is run.
func (s *Session) Show(ctx context.Context, key string) (*storage.StoredUnit, error) {
	key = NormalizeKey(key)

	db, err := s.openManifest()
	if err != nil {
		return nil, err
	}
	if db != nil {
		u, err := storage.NewManifest(db).Unit(ctx, key)
		db.Close()
		if err != nil {
			return nil, errors.New(errors.ManifestFailed, "cannot read manifest", err)
		}
		if u != nil {
			return u, nil
		}
	}

	res, err := s.Run(ctx)
	if err != nil {
		return nil, err
	}
	u, ok := res.Unit(key)
	if !ok {
		return nil, errors.New(errors.UnitNotFound, "no unit "+key, nil)
	}
	w := &storage.Writer{OutputDir: s.Config.OutputDir}
	return &storage.StoredUnit{
		UnitRecord: storage.UnitRecord{
			Key:       u.Key,
			Generator: u.Generator,
			Path:      w.UnitPath(u),
			Source:    u.Source.String(),
			SHA256:    u.Hash(),
			Size:      len(u.Text),
		},
		Text: u.Text,
	}, nil
}

// ProjectReport describes the project a session is open on.
type ProjectReport struct {
	Project    *project.Info     `json:"project" yaml:"project"`
	Inventory  project.Inventory `json:"inventory" yaml:"inventory"`
	Generators []generators.Info `json:"generators" yaml:"generators"`
	FrontEnd   bool              `json:"frontEnd" yaml:"frontEnd"`
}

// Project detects project facts and counts its source files.
func (s *Session) Project() (*ProjectReport, error) {
	info, err := project.Detect(s.Root, s.Config.ProjectConfig.SettingsFile)
	if err != nil {
		return nil, errors.New(errors.SourceUnreadable, "cannot inspect project", err)
	}
	out := strings.TrimSuffix(filepath.ToSlash(filepath.Clean(s.Config.OutputDir)), "/")
	inv, err := project.TakeInventory(s.Root, func(rel string) bool { return rel == out })
	if err != nil {
		return nil, errors.New(errors.SourceUnreadable, "cannot inspect project", err)
	}
	return &ProjectReport{
		Project:    info,
		Inventory:  inv,
		Generators: s.Generators(),
		FrontEnd:   csharp.IsAvailable(),
	}, nil
}
