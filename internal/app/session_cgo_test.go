//go:build cgo

package app

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"gdgen/internal/errors"
	"gdgen/internal/testutil"
)

var wantKeys = []string{
	"Game.Player.MakeInterface.g",
	"Godot.InputMapping.ProjectConfig.g",
	"Godot.LayersMapping.ProjectConfig.g",
}

func unitKeys(r *GenerateReport) []string {
	var keys []string
	for _, u := range r.Units {
		keys = append(keys, u.Key)
	}
	return keys
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(root, filepath.FromSlash(rel)), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestGenerateCheckShow(t *testing.T) {
	ctx := context.Background()
	root := testutil.WriteProject(t, map[string]string{
		"project.godot":    settingsText,
		"Actors/Player.cs": playerText,
	})
	s := openSession(t, root, nil)

	report, err := s.Generate(ctx, false)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if report.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", report.Diagnostics)
	}
	if got := unitKeys(report); !reflect.DeepEqual(got, wantKeys) {
		t.Fatalf("unit keys = %v, want %v", got, wantKeys)
	}
	if report.Write == nil || len(report.Write.Written) != 3 || report.Write.PassID == "" {
		t.Fatalf("Write = %+v", report.Write)
	}
	tree := testutil.ReadTree(t, root, "Generated")
	if len(tree) != 3 {
		t.Errorf("output tree = %v", tree)
	}
	if !strings.Contains(tree["Generated/Game.Player.MakeInterface.g.cs"], "interface IPlayer") {
		t.Errorf("interface unit = %q", tree["Generated/Game.Player.MakeInterface.g.cs"])
	}

	if _, err := s.Check(ctx); err != nil {
		t.Fatalf("Check after Generate failed: %v", err)
	}

	units, err := s.Units(ctx)
	if err != nil || len(units) != 3 {
		t.Fatalf("Units() = %v, %v", units, err)
	}

	shown, err := s.Show(ctx, "Generated/Game.Player.MakeInterface.g.cs")
	if err != nil {
		t.Fatalf("Show failed: %v", err)
	}
	if shown.Text != tree["Generated/Game.Player.MakeInterface.g.cs"] {
		t.Errorf("Show text differs from the written file")
	}
	if _, err := s.Show(ctx, "Nope.Missing.g"); errors.CodeOf(err) != errors.UnitNotFound {
		t.Errorf("Show(missing) error = %v", err)
	}

	// Editing the source makes the output stale.
	writeFile(t, root, "Actors/Player.cs", strings.Replace(playerText,
		"public int Health { get; set; }",
		"public int Health { get; set; }\n    public string Title { get; set; }", 1))
	check, err := s.Check(ctx)
	if errors.CodeOf(err) != errors.OutputDrift {
		t.Fatalf("Check() error = %v, want %s", err, errors.OutputDrift)
	}
	if !reflect.DeepEqual(check.Drift.Changed, []string{"Generated/Game.Player.MakeInterface.g.cs"}) {
		t.Errorf("Changed = %v", check.Drift.Changed)
	}

	// Dropping the marker removes the unit and its file.
	writeFile(t, root, "Actors/Player.cs", strings.Replace(playerText, "[MakeInterface]\n", "", 1))
	report, err = s.Generate(ctx, false)
	if err != nil {
		t.Fatalf("second Generate failed: %v", err)
	}
	if !reflect.DeepEqual(report.Write.Removed, []string{"Generated/Game.Player.MakeInterface.g.cs"}) {
		t.Errorf("Removed = %v", report.Write.Removed)
	}
	if len(report.Write.Unchanged) != 2 {
		t.Errorf("Unchanged = %v", report.Write.Unchanged)
	}

	passes, err := s.Passes(ctx, 0)
	if err != nil || len(passes) != 2 {
		t.Errorf("Passes() = %v, %v", passes, err)
	}
}

func TestGenerate_DryRun(t *testing.T) {
	root := testutil.WriteProject(t, map[string]string{
		"project.godot":    settingsText,
		"Actors/Player.cs": playerText,
	})
	s := openSession(t, root, nil)
	report, err := s.Generate(context.Background(), true)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if report.Write != nil || len(report.Units) != 3 {
		t.Errorf("dry run report = %+v", report)
	}
	if tree := testutil.ReadTree(t, root, "Generated"); len(tree) != 0 {
		t.Errorf("dry run wrote files: %v", tree)
	}
	if _, err := os.Stat(filepath.Join(root, ".gdgen", "manifest.db")); err == nil {
		t.Error("dry run created a manifest")
	}
}

func TestShow_WithoutManifest(t *testing.T) {
	root := testutil.WriteProject(t, map[string]string{
		"Actors/Player.cs": playerText,
	})
	s := openSession(t, root, nil)
	u, err := s.Show(context.Background(), "Game.Player.MakeInterface.g")
	if err != nil {
		t.Fatalf("Show failed: %v", err)
	}
	if u.Path != "Generated/Game.Player.MakeInterface.g.cs" || !strings.Contains(u.Text, "IPlayer") {
		t.Errorf("Show() = %+v", u.UnitRecord)
	}
}

func TestRun_Cancelled(t *testing.T) {
	root := testutil.WriteProject(t, map[string]string{"Actors/Player.cs": playerText})
	s := openSession(t, root, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Run(ctx); errors.CodeOf(err) != errors.Cancelled {
		t.Errorf("Run() error = %v, want %s", err, errors.Cancelled)
	}
}
