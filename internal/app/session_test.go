package app

import (
	"context"
	"path/filepath"
	"testing"

	"gdgen/internal/config"
	"gdgen/internal/errors"
	"gdgen/internal/slogutil"
	"gdgen/internal/testutil"
)

const settingsText = `config_version=5

[application]

config/name="Arena"
config/features=PackedStringArray("4.3", "C#")

[input]

jump={
"deadzone": 0.5,
"events": []
}

[layer_names]

2d_physics/layer_1="World"
2d_physics/layer_2="Player"
`

const playerText = `using Generator.Attributes;
using Godot;

namespace Game;

[MakeInterface]
public partial class Player : Node
{
    public int Health { get; set; }
}
`

func openSession(t *testing.T, root string, mutate func(*config.Config)) *Session {
	t.Helper()
	cfg := config.DefaultConfig()
	if mutate != nil {
		mutate(cfg)
	}
	s, err := Open(root, cfg, slogutil.NewDiscardLogger())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	return s
}

func TestOpen_Errors(t *testing.T) {
	root := testutil.WriteProject(t, map[string]string{
		"engine.toml": "this is not toml [[[",
	})
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"invalid config", func(c *config.Config) { c.OutputDir = "../outside" }},
		{"missing engine types", func(c *config.Config) { c.Engine.TypesFile = "missing.toml" }},
		{"bad engine types", func(c *config.Config) { c.Engine.TypesFile = "engine.toml" }},
		{"missing tables", func(c *config.Config) { c.ProjectConfig.TablesFile = "missing.toml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			tt.mutate(cfg)
			_, err := Open(root, cfg, nil)
			if errors.CodeOf(err) != errors.ConfigInvalid {
				t.Errorf("Open() error = %v, want %s", err, errors.ConfigInvalid)
			}
		})
	}
}

func TestOpen_Defaults(t *testing.T) {
	s, err := Open(t.TempDir(), nil, nil)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if s.Engine() == nil || s.Tables() == nil || s.Config.OutputDir != "Generated" {
		t.Errorf("session not fully initialized: %+v", s)
	}
	if got := len(s.Generators()); got != 5 {
		t.Errorf("len(Generators()) = %d, want 5", got)
	}
}

func TestResolve(t *testing.T) {
	root := t.TempDir()
	s := &Session{Root: root}
	abs := filepath.Join(root, "abs.toml")
	tests := map[string]string{
		"":              "",
		"types.toml":    filepath.Join(root, "types.toml"),
		"config/x.toml": filepath.Join(root, "config", "x.toml"),
		abs:             abs,
	}
	for in, want := range tests {
		if got := s.resolve(in); got != want {
			t.Errorf("resolve(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalizeKey(t *testing.T) {
	tests := map[string]string{
		"Game.Player.MakeInterface.g":                         "Game.Player.MakeInterface.g",
		"Game.Player.MakeInterface.g.cs":                      "Game.Player.MakeInterface.g",
		"Generated/Game.Player.MakeInterface.g.cs":            "Game.Player.MakeInterface.g",
		`Generated\Sub\Godot.InputMapping.ProjectConfig.g.cs`: "Godot.InputMapping.ProjectConfig.g",
	}
	for in, want := range tests {
		if got := NormalizeKey(in); got != want {
			t.Errorf("NormalizeKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestUnits_NoManifest(t *testing.T) {
	s := openSession(t, t.TempDir(), nil)
	if _, err := s.Units(context.Background()); errors.CodeOf(err) != errors.ManifestFailed {
		t.Errorf("Units() error = %v, want %s", err, errors.ManifestFailed)
	}
	if _, err := s.Passes(context.Background(), 5); errors.CodeOf(err) != errors.ManifestFailed {
		t.Errorf("Passes() error = %v, want %s", err, errors.ManifestFailed)
	}

	disabled := openSession(t, t.TempDir(), func(c *config.Config) { c.Manifest.Enabled = false })
	if _, err := disabled.Units(context.Background()); errors.CodeOf(err) != errors.ManifestFailed {
		t.Errorf("Units() with manifest disabled error = %v", err)
	}
}

func TestProject(t *testing.T) {
	root := testutil.WriteProject(t, map[string]string{
		"project.godot":      settingsText,
		"Arena.csproj":       "<Project/>",
		"Actors/Player.cs":   playerText,
		"Actors/Player.tscn": "",
		"Generated/Game.Player.MakeInterface.g.cs": "",
	})
	s := openSession(t, root, nil)
	report, err := s.Project()
	if err != nil {
		t.Fatalf("Project failed: %v", err)
	}
	if report.Project.Name != "Arena" || report.Project.EngineVersion != "4.3" || !report.Project.DotNet {
		t.Errorf("Project = %+v", report.Project)
	}
	if report.Inventory[".cs"] != 1 || report.Inventory[".tscn"] != 1 || report.Inventory[".csproj"] != 1 {
		t.Errorf("Inventory = %v", report.Inventory)
	}
	if len(report.Generators) != 5 {
		t.Errorf("len(Generators) = %d", len(report.Generators))
	}
}
