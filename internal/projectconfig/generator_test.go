package projectconfig

import (
	"context"
	"strings"
	"testing"

	"gdgen/internal/engine"
	"gdgen/internal/pipeline"
	"gdgen/internal/slogutil"
)

func TestRenderInputs(t *testing.T) {
	got, err := RenderInputs("Godot", []InputConstant{
		{Name: "JUMP", Value: "jump"},
		{Name: "UI_ACCEPT", Value: "ui_accept", Builtin: true},
		{Name: "UI_CANCEL", Value: "ui_cancel", Builtin: true},
	})
	if err != nil {
		t.Fatal(err)
	}
	want := `// <auto-generated/>
#nullable enable

namespace Godot
{
    public static class InputMapping
    {
        public const string JUMP = "jump";
        #region Default Inputs
        public const string UI_ACCEPT = "ui_accept";
        public const string UI_CANCEL = "ui_cancel";
        #endregion
    }
}
`
	if got != want {
		t.Errorf("got\n%s\nwant\n%s", got, want)
	}
}

func TestRenderInputs_EscapesValues(t *testing.T) {
	got, err := RenderInputs("Godot", []InputConstant{
		{Name: "SAY", Value: `say "hi"`},
		{Name: "TAB", Value: "a\tb\x01F"},
		{Name: "SAUT", Value: "sauté"},
	})
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		`public const string SAY = "say \"hi\"";`,
		`public const string TAB = "a\tb\u0001F";`,
		`public const string SAUT = "sauté";`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %s in\n%s", want, got)
		}
	}
}

func TestRenderLayers(t *testing.T) {
	enums := []LayerEnum{{
		Category: LayerCategory{Key: "2d_physics", Enum: "Physics2D", Size: 3},
		Members:  []string{"World", "Layer2", "Enemies"},
	}}
	got, err := RenderLayers("Godot", enums, true)
	if err != nil {
		t.Fatal(err)
	}
	want := `// <auto-generated/>
#nullable enable

namespace Godot;

public static class LayersMapping
{
    [global::System.Flags]
    public enum Physics2D : uint
    {
        None = 0,
        World = 1u << 0,
        Layer2 = 1u << 1,
        Enemies = 1u << 2,
    }

    public static bool IsDefined(Physics2D value) => value switch
    {
        Physics2D.World => true,
        Physics2D.Layer2 => true,
        Physics2D.Enemies => true,
        _ => false,
    };
}
`
	if got != want {
		t.Errorf("got\n%s\nwant\n%s", got, want)
	}

	plain, err := RenderLayers("Godot", enums, false)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(plain, "IsDefined") {
		t.Error("IsDefined emitted while disabled")
	}
}

func runGenerator(t *testing.T, settings string) *pipeline.Result {
	t.Helper()
	table, err := engine.Default()
	if err != nil {
		t.Fatal(err)
	}
	r := &pipeline.Runner{
		Generators:      []pipeline.Generator{&Generator{Tables: mustTables(t), IsDefined: true}},
		Engine:          table,
		ProjectSettings: settings,
		Logger:          slogutil.NewDiscardLogger(),
	}
	res, err := r.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	return res
}

func TestGenerator(t *testing.T) {
	res := runGenerator(t, sample)
	if len(res.Units) != 2 {
		t.Fatalf("units = %d, want 2", len(res.Units))
	}
	inputs, ok := res.Unit("Godot.InputMapping.ProjectConfig.g")
	if !ok {
		t.Fatal("input unit missing")
	}
	if !strings.Contains(inputs.Text, `public const string JUMP = "jump";`) ||
		!strings.Contains(inputs.Text, `public const string UI_ACCEPT = "ui_accept";`) {
		t.Errorf("input constants missing:\n%s", inputs.Text)
	}
	if strings.Count(inputs.Text, " UI_ACCEPT ") != 1 {
		t.Error("UI_ACCEPT emitted more than once")
	}

	layers, ok := res.Unit("Godot.LayersMapping.ProjectConfig.g")
	if !ok {
		t.Fatal("layers unit missing")
	}
	if !strings.Contains(layers.Text, "Player_Hitbox = 1u << 1,") || !strings.Contains(layers.Text, "public enum Avoidance : uint") {
		t.Errorf("layer enums missing:\n%s", layers.Text)
	}
}

func TestGenerator_Deterministic(t *testing.T) {
	first := runGenerator(t, sample)
	second := runGenerator(t, strings.ReplaceAll(sample, "\n", "\r\n"))
	for i := range first.Units {
		if first.Units[i].Text != second.Units[i].Text {
			t.Errorf("unit %s differs between LF and CRLF input", first.Units[i].Key)
		}
	}
}

func TestGenerator_NoSettings(t *testing.T) {
	if res := runGenerator(t, ""); len(res.Units) != 0 {
		t.Errorf("units = %d, want 0", len(res.Units))
	}
}
