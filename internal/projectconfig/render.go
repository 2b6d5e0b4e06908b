package projectconfig

import "gdgen/internal/textbuilder"

// Generated class names, in the engine namespace.
const (
	InputClass  = "InputMapping"
	LayersClass = "LayersMapping"
)

// RenderInputs writes the InputMapping class.
func RenderInputs(namespace string, consts []InputConstant) (string, error) {
	b := textbuilder.New()
	b.Header().Nullable().Blank()
	closeNs := b.Namespace(namespace)
	closeClass := b.Block("public static class " + InputClass)

	var endRegion func()
	for _, c := range consts {
		if c.Builtin && endRegion == nil {
			endRegion = b.Region("Default Inputs")
		}
		b.LineCf("public const string %s = %s", c.Name, textbuilder.Quote(c.Value))
	}
	if endRegion != nil {
		endRegion()
	}

	closeClass()
	closeNs()
	return b.Text()
}

// RenderLayers writes the LayersMapping class with one flags enum per
// category and, when isDefined is set, a membership test per enum.
func RenderLayers(namespace string, enums []LayerEnum, isDefined bool) (string, error) {
	b := textbuilder.New()
	b.Header().Nullable().Blank()
	if namespace != "" {
		b.FileScopedNamespace(namespace).Blank()
	}
	closeClass := b.Block("public static class " + LayersClass)

	for i, e := range enums {
		if i > 0 {
			b.Blank()
		}
		name := e.Category.Enum
		b.Attribute("global::System.Flags")
		closeEnum := b.Blockf("public enum %s : uint", name)
		b.Line("None = 0,")
		for bit, m := range e.Members {
			b.Linef("%s = 1u << %d,", m, bit)
		}
		closeEnum()

		if isDefined {
			b.Blank()
			b.Linef("public static bool IsDefined(%s value) => value switch", name)
			b.Open()
			for _, m := range e.Members {
				b.Linef("%s.%s => true,", name, m)
			}
			b.Line("_ => false,")
			b.CloseC()
		}
	}

	closeClass()
	return b.Text()
}
