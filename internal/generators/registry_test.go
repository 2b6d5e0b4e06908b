package generators

import (
	"testing"

	"gdgen/internal/config"
	"gdgen/internal/projectconfig"
)

func names(cfg *config.Config, t *testing.T) []string {
	t.Helper()
	tables, err := projectconfig.DefaultTables()
	if err != nil {
		t.Fatal(err)
	}
	var out []string
	for _, g := range Build(cfg, tables) {
		out = append(out, g.Name())
	}
	return out
}

func TestBuild(t *testing.T) {
	tests := []struct {
		name    string
		disable func(*config.GeneratorsConfig)
		want    []string
	}{
		{
			name:    "all enabled",
			disable: func(*config.GeneratorsConfig) {},
			want:    []string{"MakeInterface", "WhatNotification", "SceneScript", "ShaderScript", "ProjectConfig"},
		},
		{
			name: "resource generators off",
			disable: func(g *config.GeneratorsConfig) {
				g.SceneScript = false
				g.ShaderScript = false
			},
			want: []string{"MakeInterface", "WhatNotification", "ProjectConfig"},
		},
		{
			name: "only project settings",
			disable: func(g *config.GeneratorsConfig) {
				g.MakeInterface = false
				g.WhatNotification = false
				g.SceneScript = false
				g.ShaderScript = false
			},
			want: []string{"ProjectConfig"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			tt.disable(&cfg.Generators)
			got := names(cfg, t)
			if len(got) != len(tt.want) {
				t.Fatalf("Build() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Build()[%d] = %s, want %s", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestList(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Markers.Namespace = "My.Markers"
	cfg.Generators.ShaderScript = false

	list := List(cfg)
	if len(list) != 5 {
		t.Fatalf("len(List()) = %d, want 5", len(list))
	}
	if len(list[0].Markers) != 1 || list[0].Markers[0] != "My.Markers.MakeInterfaceAttribute" || !list[0].Enabled {
		t.Errorf("List()[0] = %+v", list[0])
	}
	if list[3].Name != "ShaderScript" || list[3].Enabled {
		t.Errorf("List()[3] = %+v", list[3])
	}
	if len(list[4].Markers) != 0 {
		t.Errorf("project settings generator has no marker, got %v", list[4].Markers)
	}
}
