package projectconfig

import (
	"strings"
	"testing"
)

func mustTables(t *testing.T) *Tables {
	t.Helper()
	tables, err := DefaultTables()
	if err != nil {
		t.Fatalf("DefaultTables() error: %v", err)
	}
	return tables
}

func TestInputConstants(t *testing.T) {
	tables := mustTables(t)
	consts := InputConstants(Parse(sample), tables)

	byName := make(map[string]InputConstant)
	for _, c := range consts {
		if _, dup := byName[c.Name]; dup {
			t.Errorf("duplicate constant %s", c.Name)
		}
		byName[c.Name] = c
	}

	if c, ok := byName["JUMP"]; !ok || c.Value != "jump" || c.Builtin {
		t.Errorf("JUMP = %+v, %v", c, ok)
	}
	if c, ok := byName["UI_ACCEPT"]; !ok || c.Value != "ui_accept" || !c.Builtin {
		t.Errorf("UI_ACCEPT = %+v, %v", c, ok)
	}
	if c, ok := byName["UI_CUSTOM_ZOOM"]; !ok || c.Builtin {
		t.Errorf("unknown reserved-prefix key should be a user constant: %+v, %v", c, ok)
	}
	if c, ok := byName["UI_TEXT_BACKSPACE_WORD_MACOS"]; !ok || c.Value != "ui_text_backspace_word.macos" {
		t.Errorf("dotted built-in = %+v, %v", c, ok)
	}
	if len(consts) != 3+len(tables.BuiltinInputs) {
		t.Errorf("len = %d, want %d", len(consts), 3+len(tables.BuiltinInputs))
	}
	if consts[0].Name != "JUMP" || consts[1].Name != "MOVE_LEFT" || consts[2].Name != "UI_CUSTOM_ZOOM" {
		t.Errorf("user constants should come first in file order: %v", consts[:3])
	}
}

func TestInputConstants_NoInputSection(t *testing.T) {
	tables := mustTables(t)
	consts := InputConstants(Parse("config_version=5\n"), tables)
	if len(consts) != len(tables.BuiltinInputs) {
		t.Errorf("len = %d, want only built-ins", len(consts))
	}
}

func TestInputConstants_NoIdentifierCharacters(t *testing.T) {
	tables := mustTables(t)
	doc := Parse("[input]\n\njump={}\n\"---\"={}\n\"!?\"={}\n")
	consts := InputConstants(doc, tables)
	want := []InputConstant{
		{Name: "JUMP", Value: "jump"},
		{Name: "_2", Value: "---"},
		{Name: "_3", Value: "!?"},
	}
	for i, w := range want {
		if consts[i] != w {
			t.Errorf("consts[%d] = %+v, want %+v", i, consts[i], w)
		}
	}

	text, err := RenderInputs("Godot", consts[:3])
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(text, `public const string _2 = "---";`) {
		t.Errorf("rendered constants:\n%s", text)
	}
}

func TestLayerEnums(t *testing.T) {
	tables := mustTables(t)
	enums := LayerEnums(Parse(sample), tables)
	if len(enums) != len(tables.Layers) {
		t.Fatalf("len = %d, want %d", len(enums), len(tables.Layers))
	}

	byEnum := make(map[string]LayerEnum)
	for _, e := range enums {
		byEnum[e.Category.Enum] = e
		if len(e.Members) != e.Category.Size {
			t.Errorf("%s has %d members, want %d", e.Category.Enum, len(e.Members), e.Category.Size)
		}
	}

	physics := byEnum["Physics2D"].Members
	if physics[0] != "World" || physics[1] != "Player_Hitbox" || physics[2] != "Layer3" || physics[31] != "Layer32" {
		t.Errorf("Physics2D members = %v", physics[:4])
	}
	for _, m := range physics {
		if m == "Overflow" || m == "Broken" {
			t.Errorf("out-of-range or unparsable entry %s placed", m)
		}
	}
	if got := byEnum["Render3D"].Members[2]; got != "Sky" {
		t.Errorf("Render3D[2] = %s", got)
	}
}

func TestLayerEnums_DuplicateLabels(t *testing.T) {
	doc := Parse("[layer_names]\navoidance/layer_1=\"Air\"\navoidance/layer_2=\"Air\"\navoidance/layer_3=\"None\"\navoidance/layer_4=\"3rd\"\n")
	var members []string
	for _, e := range LayerEnums(doc, mustTables(t)) {
		if e.Category.Key == "avoidance" {
			members = e.Members
		}
	}
	got := strings.Join(members[:4], ",")
	if got != "Air,Air_2,None_3,_3rd" {
		t.Errorf("members = %s", got)
	}
}

func TestIdentifier(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Player Hitbox", "Player_Hitbox"},
		{"enemy-bullets!", "enemy_bullets"},
		{"2d", "_2d"},
		{"  ", ""},
		{"Déjà vu", "Déjà_vu"},
	}
	for _, tt := range tests {
		if got := Identifier(tt.in); got != tt.want {
			t.Errorf("Identifier(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTables(t *testing.T) {
	tables := mustTables(t)
	if !tables.Reserved("ui_anything") || tables.Reserved("jump") {
		t.Error("Reserved() mismatch")
	}
	if !tables.Builtin("ui_accept") || tables.Builtin("ui_custom_zoom") {
		t.Error("Builtin() mismatch")
	}

	user, err := ParseTables(`
reserved_prefixes = ["editor_"]
builtin_inputs = ["editor_pan"]

[[layer]]
key = "2d_render"
enum = "CanvasLayers"
size = 8
`)
	if err != nil {
		t.Fatalf("ParseTables() error: %v", err)
	}
	merged, err := tables.Merge(user)
	if err != nil {
		t.Fatalf("Merge() error: %v", err)
	}
	if !merged.Reserved("editor_x") || !merged.Reserved("ui_x") || !merged.Builtin("editor_pan") {
		t.Error("merge should union prefixes and built-ins")
	}
	l, ok := merged.Layer("2d_render")
	if !ok || l.Enum != "CanvasLayers" || l.Size != 8 || len(merged.Layers) != len(tables.Layers) {
		t.Errorf("merged layer = %+v", l)
	}

	for name, bad := range map[string]string{
		"size":     "[[layer]]\nkey = \"a\"\nenum = \"A\"\nsize = 33\n",
		"no enum":  "[[layer]]\nkey = \"a\"\nsize = 3\n",
		"twice":    "[[layer]]\nkey = \"a\"\nenum = \"A\"\nsize = 3\n[[layer]]\nkey = \"b\"\nenum = \"A\"\nsize = 3\n",
		"not toml": "layer = [",
	} {
		if _, err := ParseTables(bad); err == nil {
			t.Errorf("%s: ParseTables should fail", name)
		}
	}

	var sb strings.Builder
	if err := tables.Encode(&sb); err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	again, err := ParseTables(sb.String())
	if err != nil {
		t.Fatalf("re-parse encoded tables: %v", err)
	}
	if len(again.BuiltinInputs) != len(tables.BuiltinInputs) || len(again.Layers) != len(tables.Layers) {
		t.Error("encoded tables lost entries")
	}
}
