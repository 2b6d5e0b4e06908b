// Package generators assembles the generator set of a pass from
// configuration.
package generators

import (
	"gdgen/internal/config"
	"gdgen/internal/generators/iface"
	"gdgen/internal/generators/notification"
	"gdgen/internal/generators/resource"
	"gdgen/internal/pipeline"
	"gdgen/internal/projectconfig"
)

// Info describes one registered generator.
type Info struct {
	Name    string   `json:"name" yaml:"name"`
	Markers []string `json:"markers,omitempty" yaml:"markers,omitempty"`
	Enabled bool     `json:"enabled" yaml:"enabled"`
}

type entry struct {
	name    string
	enabled func(config.GeneratorsConfig) bool
	build   func(cfg *config.Config, tables *projectconfig.Tables) pipeline.Generator
}

var registry = []entry{
	{
		name:    iface.GeneratorName,
		enabled: func(g config.GeneratorsConfig) bool { return g.MakeInterface },
		build: func(cfg *config.Config, _ *projectconfig.Tables) pipeline.Generator {
			return iface.New(cfg.Markers.Namespace)
		},
	},
	{
		name:    notification.GeneratorName,
		enabled: func(g config.GeneratorsConfig) bool { return g.WhatNotification },
		build: func(cfg *config.Config, _ *projectconfig.Tables) pipeline.Generator {
			return notification.New(cfg.Markers.Namespace)
		},
	},
	{
		name:    resource.SceneGeneratorName,
		enabled: func(g config.GeneratorsConfig) bool { return g.SceneScript },
		build: func(cfg *config.Config, _ *projectconfig.Tables) pipeline.Generator {
			return resource.NewScene(cfg.Markers.Namespace)
		},
	},
	{
		name:    resource.ShaderGeneratorName,
		enabled: func(g config.GeneratorsConfig) bool { return g.ShaderScript },
		build: func(cfg *config.Config, _ *projectconfig.Tables) pipeline.Generator {
			return resource.NewShader(cfg.Markers.Namespace)
		},
	},
	{
		name:    projectconfig.GeneratorName,
		enabled: func(g config.GeneratorsConfig) bool { return g.ProjectConfig },
		build: func(cfg *config.Config, tables *projectconfig.Tables) pipeline.Generator {
			return &projectconfig.Generator{Tables: tables, IsDefined: cfg.ProjectConfig.IsDefined}
		},
	},
}

// Build returns the generators cfg enables, in registry order. tables is
// only used by the project settings generator.
func Build(cfg *config.Config, tables *projectconfig.Tables) []pipeline.Generator {
	var out []pipeline.Generator
	for _, e := range registry {
		if e.enabled(cfg.Generators) {
			out = append(out, e.build(cfg, tables))
		}
	}
	return out
}

// List describes every known generator and whether cfg enables it.
func List(cfg *config.Config) []Info {
	out := make([]Info, 0, len(registry))
	for _, e := range registry {
		info := Info{Name: e.name, Enabled: e.enabled(cfg.Generators)}
		if mp, ok := e.build(cfg, nil).(pipeline.MarkerProvider); ok {
			for _, m := range mp.Markers() {
				info.Markers = append(info.Markers, m.QualifiedName())
			}
		}
		out = append(out, info)
	}
	return out
}
