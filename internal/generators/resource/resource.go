// Package resource generates static accessors that load the scene, resource
// or shader belonging to a script class.
//
// A class marked [SceneScript] gets one of four shapes depending on whether
// it is a node (the scene is instantiated) or a resource (the resource is
// loaded), and whether the loaded artifact is cached in a static property.
// A node marked [ShaderScript] gets its shader and shader material.
//
// Without an explicit path, the artifact sits next to the script: the
// script's project-relative path with the artifact extension.
package resource

import (
	"context"

	"gdgen/internal/annotation"
	"gdgen/internal/candidate"
	"gdgen/internal/diag"
	"gdgen/internal/generators/scaffold"
	"gdgen/internal/paths"
	"gdgen/internal/pipeline"
	"gdgen/internal/symbols"
)

// Artifact extensions.
const (
	SceneExt    = ".tscn"
	ResourceExt = ".tres"
	ShaderExt   = ".gdshader"
)

// Predicate is the syntactic gate shared by both generators: an attributed,
// concrete class. Partial-ness and ancestry are checked semantically so they
// can be reported.
var Predicate = candidate.All(candidate.IsClass, candidate.HasAttributes, candidate.LacksModifiers("abstract", "static"))

// Kind is the detected artifact kind of a class.
type Kind int

const (
	KindNone Kind = iota
	KindNode
	KindResource
)

// KindOf classifies sym by ancestry.
func KindOf(g *symbols.Graph, sym *symbols.Symbol) Kind {
	table := g.Engine()
	switch {
	case g.IsDescendantOfName(sym, table.NodeType()):
		return KindNode
	case g.IsDescendantOfName(sym, table.ResourceType()):
		return KindResource
	default:
		return KindNone
	}
}

// DefaultPath derives the engine path of the artifact sitting next to the
// source file.
func DefaultPath(projectRoot, source, ext string) string {
	return paths.ChangeExtension(paths.ToEngineRelative(projectRoot, source), ext)
}

// collect binds marker on every candidate, reporting binder diagnostics.
func collect(ctx context.Context, p *pipeline.Pass, marker *annotation.Marker) ([]*annotation.Instance, []*symbols.Symbol, error) {
	batch, err := candidate.Collect(ctx, p.Collector(), Predicate, func(s *symbols.Symbol) (*symbols.Symbol, bool) {
		return s, p.Binder.Has(s, marker)
	})
	if err != nil {
		return nil, nil, err
	}
	var ins []*annotation.Instance
	var syms []*symbols.Symbol
	for _, sym := range batch {
		in, diags := p.Binder.Bind(sym, marker)
		p.Report(diags...)
		if in != nil {
			ins = append(ins, in)
			syms = append(syms, sym)
		}
	}
	return ins, syms, nil
}

// requireReopenable reports a warning and returns false when sym cannot be
// extended by a generated part.
func requireReopenable(p *pipeline.Pass, sym *symbols.Symbol, marker *annotation.Marker) bool {
	c := scaffold.NotReopenable(sym)
	if c == nil {
		return true
	}
	p.Report(diag.Warningf(diag.NotPartial, c.Pos(),
		"The type '%s' must be partial for [%s] on '%s' to be generated", c.DisplayName(), marker.Name, sym.DisplayName()))
	return false
}

func emit(p *pipeline.Pass, sym *symbols.Symbol, generator, text string) error {
	return p.Emit(pipeline.Unit{
		Key:       pipeline.UnitKey(sym.FileKey(), generator),
		Generator: generator,
		Source:    sym.Pos(),
		Text:      text,
	})
}
