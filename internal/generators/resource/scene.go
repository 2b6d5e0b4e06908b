package resource

import (
	"context"

	"gdgen/internal/annotation"
	"gdgen/internal/diag"
	"gdgen/internal/engine"
	"gdgen/internal/generators/scaffold"
	"gdgen/internal/pipeline"
	"gdgen/internal/symbols"
	"gdgen/internal/textbuilder"
)

// SceneGeneratorName is the generator segment of [SceneScript] unit keys.
const SceneGeneratorName = "SceneScript"

// SceneRequest is the bound configuration for one [SceneScript] class.
type SceneRequest struct {
	Symbol *symbols.Symbol
	Kind   Kind
	Cache  bool
	Path   string
}

// SceneGenerator implements pipeline.Generator for [SceneScript].
type SceneGenerator struct {
	marker *annotation.Marker
}

// NewScene returns the generator with its marker declared in markerNamespace.
func NewScene(markerNamespace string) *SceneGenerator {
	return &SceneGenerator{marker: SceneMarker.InNamespace(markerNamespace)}
}

func (g *SceneGenerator) Name() string { return SceneGeneratorName }

func (g *SceneGenerator) Markers() []*annotation.Marker { return []*annotation.Marker{g.marker} }

func (g *SceneGenerator) Generate(ctx context.Context, p *pipeline.Pass) error {
	ins, syms, err := collect(ctx, p, g.marker)
	if err != nil {
		return err
	}
	for i, sym := range syms {
		if err := ctx.Err(); err != nil {
			return err
		}
		kind := KindOf(p.Graph, sym)
		if kind == KindNone {
			p.Report(diag.Errorf(diag.NotNodeOrResource, sym.Pos(),
				"The class '%s' is not a node or resource", sym.DisplayName()))
			continue
		}
		if !requireReopenable(p, sym, g.marker) {
			continue
		}

		req := &SceneRequest{Symbol: sym, Kind: kind, Cache: ins[i].Bool(fieldCache), Path: ins[i].String(fieldScenePath)}
		if req.Path == "" {
			ext := SceneExt
			if kind == KindResource {
				ext = ResourceExt
			}
			req.Path = DefaultPath(p.ProjectRoot, sym.Pos().Path, ext)
		}

		text, err := RenderScene(p.Engine, req)
		if err != nil {
			return err
		}
		if err := emit(p, sym, SceneGeneratorName, text); err != nil {
			return err
		}
	}
	return nil
}

// RenderScene produces the unit text for one request.
func RenderScene(table *engine.Table, req *SceneRequest) (string, error) {
	sym := req.Symbol
	class := sym.DisplayName()
	loader := table.Global("ResourceLoader")
	path := textbuilder.Quote(req.Path)

	b := scaffold.FileScoped(sym)
	closeType := scaffold.Reopen(b, sym)
	switch {
	case req.Kind == KindNode && req.Cache:
		packed := table.Global("PackedScene")
		b.LineCf("public static %s Scene { get; } = %s.Load<%s>(%s)", packed, loader, packed, path)
		b.LineCf("public static %s Instantiate() => Scene.Instantiate<%s>()", class, class)
	case req.Kind == KindNode:
		packed := table.Global("PackedScene")
		b.LineCf("public static %s Instantiate() => %s.Load<%s>(%s).Instantiate<%s>()", class, loader, packed, path, class)
	case req.Cache:
		b.LineCf("public static %s Resource { get; } = %s.Load<%s>(%s)", class, loader, class, path)
	default:
		b.LineCf("public static %s GetResource() => %s.Load<%s>(%s)", class, loader, class, path)
	}
	closeType()
	return b.Text()
}
