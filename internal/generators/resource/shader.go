package resource

import (
	"context"

	"gdgen/internal/annotation"
	"gdgen/internal/diag"
	"gdgen/internal/engine"
	"gdgen/internal/generators/scaffold"
	"gdgen/internal/paths"
	"gdgen/internal/pipeline"
	"gdgen/internal/symbols"
	"gdgen/internal/textbuilder"
)

// ShaderGeneratorName is the generator segment of [ShaderScript] unit keys.
const ShaderGeneratorName = "ShaderScript"

const defaultMaterialMember = "Material"

// ShaderRequest is the bound configuration for one [ShaderScript] class.
type ShaderRequest struct {
	Symbol *symbols.Symbol
	Path   string
	// ShaderType is the engine type name of the shader: Shader or VisualShader.
	ShaderType     string
	CacheShader    bool
	CacheMaterial  bool
	MaterialMember string
}

// ShaderGenerator implements pipeline.Generator for [ShaderScript].
type ShaderGenerator struct {
	marker *annotation.Marker
}

// NewShader returns the generator with its marker declared in markerNamespace.
func NewShader(markerNamespace string) *ShaderGenerator {
	return &ShaderGenerator{marker: ShaderMarker.InNamespace(markerNamespace)}
}

func (g *ShaderGenerator) Name() string { return ShaderGeneratorName }

func (g *ShaderGenerator) Markers() []*annotation.Marker { return []*annotation.Marker{g.marker} }

func (g *ShaderGenerator) Generate(ctx context.Context, p *pipeline.Pass) error {
	ins, syms, err := collect(ctx, p, g.marker)
	if err != nil {
		return err
	}
	for i, sym := range syms {
		if err := ctx.Err(); err != nil {
			return err
		}
		if KindOf(p.Graph, sym) != KindNode {
			p.Report(diag.Errorf(diag.NotNode, sym.Pos(), "The class '%s' is not a node", sym.DisplayName()))
			continue
		}
		req, ok := g.request(p, sym, ins[i])
		if !ok || !requireReopenable(p, sym, g.marker) {
			continue
		}
		text, err := RenderShader(p.Engine, req)
		if err != nil {
			return err
		}
		if err := emit(p, sym, ShaderGeneratorName, text); err != nil {
			return err
		}
	}
	return nil
}

func (g *ShaderGenerator) request(p *pipeline.Pass, sym *symbols.Symbol, in *annotation.Instance) (*ShaderRequest, bool) {
	req := &ShaderRequest{
		Symbol:         sym,
		Path:           in.String(fieldShaderPath),
		CacheShader:    in.Bool(fieldCacheShader),
		CacheMaterial:  in.Bool(fieldCacheMaterial),
		MaterialMember: in.String(fieldMaterialName),
	}
	if req.MaterialMember == "" {
		req.MaterialMember = defaultMaterialMember
	}

	if req.Path == "" {
		if in.Bool(fieldVisualShader) {
			req.Path, req.ShaderType = DefaultPath(p.ProjectRoot, sym.Pos().Path, ResourceExt), "VisualShader"
		} else {
			req.Path, req.ShaderType = DefaultPath(p.ProjectRoot, sym.Pos().Path, ShaderExt), "Shader"
		}
		return req, true
	}

	switch paths.Ext(req.Path) {
	case ShaderExt:
		req.ShaderType = "Shader"
	case ResourceExt:
		req.ShaderType = "VisualShader"
	default:
		p.Report(diag.Errorf(diag.InvalidShaderExtension, in.Pos(),
			"Invalid shader script extension in '%s': expected %s or %s", req.Path, ShaderExt, ResourceExt))
		return nil, false
	}
	return req, true
}

// RenderShader produces the unit text for one request.
func RenderShader(table *engine.Table, req *ShaderRequest) (string, error) {
	loader := table.Global("ResourceLoader")
	shader := table.Global(req.ShaderType)
	material := table.Global("ShaderMaterial")
	path := textbuilder.Quote(req.Path)

	b := scaffold.FileScoped(req.Symbol)
	closeType := scaffold.Reopen(b, req.Symbol)
	if req.CacheShader {
		b.LineCf("public static %s ShaderScript { get; } = %s.Load<%s>(%s)", shader, loader, shader, path)
	} else {
		b.LineCf("public static %s ShaderScript => %s.Load<%s>(%s)", shader, loader, shader, path)
	}
	b.Blank()
	if req.CacheMaterial {
		b.Comment(" Assigned by the script before first use.")
		b.LineCf("protected %s shaderMaterial = null!", material)
		b.LineCf("public %s ShaderMaterial => shaderMaterial", material)
	} else {
		b.LineCf("public %s ShaderMaterial => (%s)%s", material, material, req.MaterialMember)
	}
	closeType()
	return b.Text()
}
