package paths

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestProjectRelative(t *testing.T) {
	base := t.TempDir()
	root := filepath.Join(base, "game")
	file := filepath.Join(root, "Scenes", "Player.cs")
	if err := os.MkdirAll(filepath.Dir(file), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(file, []byte("class Player {}"), 0644); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(base, "link")
	if err := os.Symlink(root, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	tests := []struct {
		name, root, p, want string
		ok                  bool
	}{
		{"plain", root, file, "Scenes/Player.cs", true},
		{"root itself", root, root, ".", true},
		{"missing file", root, filepath.Join(root, "Gone", "Old.cs"), "Gone/Old.cs", true},
		{"root through link", link, file, "Scenes/Player.cs", true},
		{"file through link", root, filepath.Join(link, "Scenes", "Player.cs"), "Scenes/Player.cs", true},
		{"missing through link", link, filepath.Join(root, "New.cs"), "New.cs", true},
		{"outside", root, filepath.Join(base, "other.cs"), "", false},
		{"sibling prefix", root, filepath.Join(base, "gamer", "a.cs"), "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ProjectRelative(tt.root, tt.p)
			if got != tt.want || ok != tt.ok {
				t.Errorf("ProjectRelative() = %q, %v, want %q, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestNormalizePath(t *testing.T) {
	tests := map[string]string{
		`Scenes\Player.cs`: "Scenes/Player.cs",
		"Scenes/Player.cs": "Scenes/Player.cs",
		`C:\game\a.cs`:     "C:/game/a.cs",
	}
	for in, want := range tests {
		if got := NormalizePath(in); got != want {
			t.Errorf("NormalizePath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestToEngineRelative(t *testing.T) {
	tests := []struct {
		name string
		root string
		path string
		want string
	}{
		{"unix", "/home/dev/game", "/home/dev/game/Scenes/Player.cs", "res://Scenes/Player.cs"},
		{"trailing slash root", "/home/dev/game/", "/home/dev/game/Player.cs", "res://Player.cs"},
		{"windows", `C:\dev\game`, `C:\dev\game\Scenes\Player.cs`, "res://Scenes/Player.cs"},
		{"mixed separators", `C:\dev\game`, `C:/dev/game\UI/Hud.cs`, "res://UI/Hud.cs"},
		{"already engine relative", "/home/dev/game", "res://Scenes/Player.tscn", "res://Scenes/Player.tscn"},
		{"dot segments", "/g", "/g/a/./b/../c.cs", "res://a/c.cs"},
		{"sibling prefix is not the root", "/g", "/game/a.cs", "res://game/a.cs"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToEngineRelative(tt.root, tt.path); got != tt.want {
				t.Errorf("ToEngineRelative(%q, %q) = %q, want %q", tt.root, tt.path, got, tt.want)
			}
		})
	}
}

func TestToEngineRelative_Idempotent(t *testing.T) {
	roots := []string{"/home/dev/game", `C:\dev\game`}
	inputs := []string{
		"/home/dev/game/Scenes/Player.cs",
		`C:\dev\game\Scenes\Deep\Enemy.cs`,
		"/home/dev/game/a/../b/./c.cs",
	}
	for _, root := range roots {
		for _, in := range inputs {
			once := ToEngineRelative(root, in)
			if twice := ToEngineRelative(root, once); twice != once {
				t.Errorf("not idempotent on output: %q -> %q", once, twice)
			}
			// Reinterpreted as absolute under the same root
			abs := JoinProjectPath(root, strings.TrimPrefix(once, EngineScheme))
			if again := ToEngineRelative(root, abs); again != once {
				t.Errorf("not stable after reinterpretation: %q -> %q -> %q", once, abs, again)
			}
		}
	}
}

func TestChangeExtension(t *testing.T) {
	tests := []struct {
		in, ext, want string
	}{
		{"res://Scenes/Player.cs", ".tscn", "res://Scenes/Player.tscn"},
		{"res://Shaders/Water.cs", ".gdshader", "res://Shaders/Water.gdshader"},
		{"res://v1.2/Noext", ".tres", "res://v1.2/Noext.tres"},
		{"Player", ".tscn", "Player.tscn"},
	}
	for _, tt := range tests {
		if got := ChangeExtension(tt.in, tt.ext); got != tt.want {
			t.Errorf("ChangeExtension(%q, %q) = %q, want %q", tt.in, tt.ext, got, tt.want)
		}
	}
}

func TestExt(t *testing.T) {
	if got := Ext("res://a/Water.GDSHADER"); got != ".gdshader" {
		t.Errorf("Ext = %q", got)
	}
	if got := Ext(`a\b.c\file`); got != "" {
		t.Errorf("Ext = %q, want empty", got)
	}
}
