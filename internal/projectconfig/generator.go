package projectconfig

import (
	"context"

	"gdgen/internal/pipeline"
)

// GeneratorName is the generator segment of unit keys.
const GeneratorName = "ProjectConfig"

// Generator implements pipeline.Generator over the project settings text of
// the pass.
type Generator struct {
	Tables *Tables
	// IsDefined adds a membership test to every layer enum.
	IsDefined bool
}

func (g *Generator) Name() string { return GeneratorName }

func (g *Generator) Generate(ctx context.Context, p *pipeline.Pass) error {
	if p.ProjectSettings == "" {
		p.Logger.Debug("No project settings, skipping")
		return nil
	}
	doc := Parse(p.ProjectSettings)
	if doc.Skipped > 0 {
		p.Logger.Debug("Skipped unreadable project settings lines", "count", doc.Skipped)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	ns := p.Engine.Namespace
	inputs, err := RenderInputs(ns, InputConstants(doc, g.Tables))
	if err != nil {
		return err
	}
	layers, err := RenderLayers(ns, LayerEnums(doc, g.Tables), g.IsDefined)
	if err != nil {
		return err
	}

	for _, u := range []struct{ class, text string }{{InputClass, inputs}, {LayersClass, layers}} {
		if err := p.Emit(pipeline.Unit{
			Key:       pipeline.UnitKey(qualify(ns, u.class), GeneratorName),
			Generator: GeneratorName,
			Text:      u.text,
		}); err != nil {
			return err
		}
	}
	return nil
}

func qualify(ns, name string) string {
	if ns == "" {
		return name
	}
	return ns + "." + name
}
