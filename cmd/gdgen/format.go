package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"gdgen/internal/app"
	"gdgen/internal/config"
	"gdgen/internal/diag"
	"gdgen/internal/generators"
	"gdgen/internal/storage"
	"gdgen/internal/version"
)

// Human renderings of command results. JSON and YAML use the wrapped
// values directly.

type generateOutput struct {
	app.GenerateReport `yaml:",inline"`
	dryRun             bool
}

func (o generateOutput) Human(w io.Writer) error {
	var b strings.Builder
	verb := "Generated"
	if o.dryRun {
		verb = "Would generate"
	}
	fmt.Fprintf(&b, "%s %d units from %d files (%d symbols) in %dms\n",
		verb, len(o.Units), o.Stats.Files, o.Stats.Symbols, o.Stats.DurationMs)

	gens := make([]string, 0, len(o.Stats.PerGen))
	for name := range o.Stats.PerGen {
		gens = append(gens, name)
	}
	sort.Strings(gens)
	for _, name := range gens {
		fmt.Fprintf(&b, "  %-18s %d\n", name, o.Stats.PerGen[name])
	}

	if o.Write != nil {
		fmt.Fprintf(&b, "\nWritten: %d  Unchanged: %d  Removed: %d\n",
			len(o.Write.Written), len(o.Write.Unchanged), len(o.Write.Removed))
		for _, p := range o.Write.Written {
			fmt.Fprintf(&b, "  + %s\n", p)
		}
		for _, p := range o.Write.Removed {
			fmt.Fprintf(&b, "  - %s\n", p)
		}
	} else if o.dryRun {
		for _, u := range o.Units {
			fmt.Fprintf(&b, "  %s\n", u.FileName())
		}
	}

	writeDiagnostics(&b, o.Diagnostics)
	_, err := io.WriteString(w, b.String())
	return err
}

func writeDiagnostics(b *strings.Builder, ds []diag.Diagnostic) {
	if len(ds) == 0 {
		return
	}
	b.WriteString("\n")
	for _, d := range ds {
		b.WriteString(d.String())
		b.WriteString("\n")
	}
	errs := 0
	for _, d := range ds {
		if d.Severity == diag.Error {
			errs++
		}
	}
	fmt.Fprintf(b, "%d diagnostics (%d errors)\n", len(ds), errs)
}

type checkOutput struct {
	app.CheckReport `yaml:",inline"`
}

func (o checkOutput) Human(w io.Writer) error {
	var b strings.Builder
	if o.Drift.Empty() {
		b.WriteString("Generated sources are up to date\n")
	} else {
		b.WriteString("Generated sources are out of date\n")
		for _, p := range o.Drift.Added {
			fmt.Fprintf(&b, "  missing  %s\n", p)
		}
		for _, p := range o.Drift.Changed {
			fmt.Fprintf(&b, "  changed  %s\n", p)
		}
		for _, p := range o.Drift.Stale {
			fmt.Fprintf(&b, "  stale    %s\n", p)
		}
		b.WriteString("\nRun 'gdgen generate' to update them.\n")
	}
	writeDiagnostics(&b, o.Diagnostics)
	_, err := io.WriteString(w, b.String())
	return err
}

type unitsOutput struct {
	Units []storage.UnitRecord `json:"units" yaml:"units"`
}

func (o unitsOutput) Human(w io.Writer) error {
	var b strings.Builder
	for _, u := range o.Units {
		fmt.Fprintf(&b, "%-52s %-17s %6d  %s\n", u.Key, u.Generator, u.Size, u.Source)
	}
	fmt.Fprintf(&b, "%d units\n", len(o.Units))
	_, err := io.WriteString(w, b.String())
	return err
}

type passesOutput struct {
	Passes []storage.PassRecord `json:"passes" yaml:"passes"`
}

func (o passesOutput) Human(w io.Writer) error {
	var b strings.Builder
	for _, p := range o.Passes {
		fmt.Fprintf(&b, "%s  %s  units=%d written=%d removed=%d diagnostics=%d\n",
			p.ID, p.FinishedAt.Local().Format("2006-01-02 15:04:05"),
			p.Units, p.Written, p.Removed, p.Diagnostics)
	}
	if len(o.Passes) == 0 {
		b.WriteString("No passes recorded\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

type projectOutput struct {
	app.ProjectReport `yaml:",inline"`
}

func (o projectOutput) Human(w io.Writer) error {
	var b strings.Builder
	p := o.Project
	fmt.Fprintf(&b, "Project:  %s\n", p.Name)
	fmt.Fprintf(&b, "Root:     %s\n", p.Root)
	if p.EngineVersion != "" {
		fmt.Fprintf(&b, "Engine:   %s\n", p.EngineVersion)
	}
	if p.DotNet {
		fmt.Fprintf(&b, "Assembly: %s", p.AssemblyName)
		if p.CSProj != "" {
			fmt.Fprintf(&b, " (%s)", p.CSProj)
		}
		b.WriteString("\n")
	}
	frontEnd := "available"
	if !o.FrontEnd {
		frontEnd = "unavailable (built without CGO)"
	}
	fmt.Fprintf(&b, "C# front end: %s\n", frontEnd)

	exts := make([]string, 0, len(o.Inventory))
	for ext := range o.Inventory {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	b.WriteString("\nFiles:\n")
	for _, ext := range exts {
		fmt.Fprintf(&b, "  %-10s %d\n", ext, o.Inventory[ext])
	}
	b.WriteString("\n")
	writeGenerators(&b, o.Generators)
	_, err := io.WriteString(w, b.String())
	return err
}

type generatorsOutput struct {
	Generators []generators.Info `json:"generators" yaml:"generators"`
}

func (o generatorsOutput) Human(w io.Writer) error {
	var b strings.Builder
	writeGenerators(&b, o.Generators)
	_, err := io.WriteString(w, b.String())
	return err
}

func writeGenerators(b *strings.Builder, gens []generators.Info) {
	b.WriteString("Generators:\n")
	for _, g := range gens {
		state := "on "
		if !g.Enabled {
			state = "off"
		}
		fmt.Fprintf(b, "  [%s] %-17s %s\n", state, g.Name, strings.Join(g.Markers, ", "))
	}
}

type configOutput struct {
	Path         string               `json:"path,omitempty" yaml:"path,omitempty"`
	UsedDefaults bool                 `json:"usedDefaults" yaml:"usedDefaults"`
	EnvOverrides []config.EnvOverride `json:"envOverrides,omitempty" yaml:"envOverrides,omitempty"`
	EnvVars      []string             `json:"supportedEnvVars,omitempty" yaml:"supportedEnvVars,omitempty"`
	Config       *config.Config       `json:"config" yaml:"config"`
}

func (o configOutput) Human(w io.Writer) error {
	var b strings.Builder
	if o.UsedDefaults {
		b.WriteString("Config: defaults (no config file)\n")
	} else {
		fmt.Fprintf(&b, "Config: %s\n", o.Path)
	}
	for _, ov := range o.EnvOverrides {
		fmt.Fprintf(&b, "  %s=%s overrides %s\n", ov.EnvVar, ov.Value, ov.Path)
	}
	c := o.Config
	fmt.Fprintf(&b, "\noutputDir:         %s\n", c.OutputDir)
	fmt.Fprintf(&b, "exclude:           %s\n", strings.Join(c.Exclude, ", "))
	fmt.Fprintf(&b, "concurrency:       %d\n", c.Concurrency)
	fmt.Fprintf(&b, "markers.namespace: %s\n", c.Markers.Namespace)
	fmt.Fprintf(&b, "manifest:          %v (%s, keep %d passes)\n", c.Manifest.Enabled, c.Manifest.Path, c.Manifest.KeepPasses)
	fmt.Fprintf(&b, "logging:           %s %s %s\n", c.Logging.Format, c.Logging.Level, c.Logging.File)
	if len(o.EnvVars) > 0 {
		b.WriteString("\nEnvironment variables:\n")
		for _, v := range o.EnvVars {
			fmt.Fprintf(&b, "  %s\n", v)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

type unitOutput struct {
	storage.StoredUnit `yaml:",inline"`
}

// Human prints the unit text alone so it can be piped.
func (o unitOutput) Human(w io.Writer) error {
	_, err := io.WriteString(w, o.Text)
	return err
}

type versionOutput struct {
	version.Details `yaml:",inline"`
}

func (o versionOutput) Human(w io.Writer) error {
	_, err := io.WriteString(w, version.Full()+"\n")
	return err
}
