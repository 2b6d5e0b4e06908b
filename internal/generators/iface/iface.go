// Package iface synthesizes an interface for every class marked with
// [MakeInterface], and attaches it back to the class when the class is
// partial.
//
// Base lists are resolved for the whole batch at once: phase one indexes
// each marked class's ancestors, phase two looks every other marked class
// up in that index. A generated interface extends the generated interfaces
// of every marked ancestor of its class.
package iface

import (
	"context"
	"strings"

	"gdgen/internal/annotation"
	"gdgen/internal/candidate"
	"gdgen/internal/pipeline"
	"gdgen/internal/symbols"
	"gdgen/internal/textbuilder"
)

// GeneratorName is the generator segment of unit keys.
const GeneratorName = "MakeInterface"

// Request is the bound configuration for one marked class.
type Request struct {
	Symbol            *symbols.Symbol
	Instance          *annotation.Instance
	UseProps          bool
	UseMethods        bool
	UseEvents         bool
	InheritInterfaces bool
	InheritGenerated  bool

	// Bases is filled by the batch resolution.
	Bases []string
}

// InterfaceName is "I" + the class name, with the class type parameters.
func (r *Request) InterfaceName() string {
	return "I" + r.Symbol.DisplayName()
}

// QualifiedInterface is the namespace-qualified interface name without type
// parameters.
func (r *Request) QualifiedInterface() string {
	if r.Symbol.Namespace == "" {
		return "I" + r.Symbol.Name
	}
	return r.Symbol.Namespace + ".I" + r.Symbol.Name
}

// reference renders the interface for use in a base list, with the given
// type arguments.
func (r *Request) reference(args []string) string {
	ref := "global::" + r.QualifiedInterface()
	if len(args) > 0 {
		ref += "<" + strings.Join(args, ", ") + ">"
	}
	return ref
}

// Generator implements pipeline.Generator.
type Generator struct {
	marker *annotation.Marker
}

// New returns the generator with its marker declared in markerNamespace.
func New(markerNamespace string) *Generator {
	return &Generator{marker: Marker.InNamespace(markerNamespace)}
}

func (g *Generator) Name() string { return GeneratorName }

func (g *Generator) Markers() []*annotation.Marker { return []*annotation.Marker{g.marker} }

// Predicate is the syntactic gate: an attributed, non-static class.
var Predicate = candidate.All(candidate.IsClass, candidate.HasAttributes, candidate.LacksModifiers("static"))

func (g *Generator) Generate(ctx context.Context, p *pipeline.Pass) error {
	batch, err := candidate.Collect(ctx, p.Collector(), Predicate, func(s *symbols.Symbol) (*symbols.Symbol, bool) {
		return s, p.Binder.Has(s, g.marker)
	})
	if err != nil {
		return err
	}

	var reqs []*Request
	for _, sym := range batch {
		in, diags := p.Binder.Bind(sym, g.marker)
		p.Report(diags...)
		if in == nil {
			continue
		}
		reqs = append(reqs, &Request{
			Symbol:            sym,
			Instance:          in,
			UseProps:          in.Bool(fieldUseProps),
			UseMethods:        in.Bool(fieldUseMethods),
			UseEvents:         in.Bool(fieldUseEvents),
			InheritInterfaces: in.Bool(fieldInheritInterfaces),
			InheritGenerated:  in.Bool(fieldInheritGenerated),
		})
	}

	if err := ResolveBases(ctx, p.Graph, reqs); err != nil {
		return err
	}

	r := memberRenderer{graph: p.Graph}
	for _, req := range reqs {
		if err := ctx.Err(); err != nil {
			return err
		}
		text, err := render(r, req)
		if err != nil {
			return err
		}
		if err := p.Emit(pipeline.Unit{
			Key:       pipeline.UnitKey(req.Symbol.FileKey(), GeneratorName),
			Generator: GeneratorName,
			Source:    req.Symbol.Pos(),
			Text:      text,
		}); err != nil {
			return err
		}
	}
	p.Logger.Debug("Interfaces generated", "count", len(reqs))
	return nil
}

// ResolveBases fills Request.Bases for a whole batch.
func ResolveBases(ctx context.Context, graph *symbols.Graph, reqs []*Request) error {
	bySymbol := make(map[*symbols.Symbol]*Request, len(reqs))
	byName := make(map[string]*Request, len(reqs))
	for _, r := range reqs {
		bySymbol[r.Symbol] = r
		byName[r.QualifiedInterface()] = r
	}

	// Phase 1: ancestor index, built once.
	ancestors := make(map[*Request][]symbols.Ancestor, len(reqs))
	for _, r := range reqs {
		ancestors[r] = graph.Ancestors(r.Symbol)
	}

	// Phase 2: lookups against the index, one row per request.
	for _, r := range reqs {
		if err := ctx.Err(); err != nil {
			return err
		}
		var bases []string
		seen := make(map[string]bool)
		add := func(ref string) {
			if !seen[ref] {
				seen[ref] = true
				bases = append(bases, ref)
			}
		}

		if r.InheritGenerated {
			for _, a := range ancestors[r] {
				if other, ok := bySymbol[a.Symbol]; ok && other != r {
					add(other.reference(a.Args))
				}
			}
		}
		if r.InheritInterfaces {
			for _, ref := range graph.AllInterfaces(r.Symbol) {
				if ref.Symbol != nil {
					add(ref.Text)
					continue
				}
				// An unresolved name may be an interface generated in this batch.
				gen, args := generatedFor(ref.Text, scopeOf(graph, r.Symbol), byName)
				switch {
				case gen == r:
					continue
				case gen != nil:
					add(gen.reference(args))
				default:
					add(ref.Text)
				}
			}
		}
		r.Bases = bases
	}
	return nil
}

func scopeOf(graph *symbols.Graph, s *symbols.Symbol) symbols.Scope {
	if len(s.Parts) == 0 {
		return symbols.Scope{Namespace: s.Namespace}
	}
	return graph.ScopeFor(s.Parts[0])
}

// generatedFor looks an unresolved interface name up among the interfaces
// generated in the batch, through the same namespace chain and using
// directives as ordinary resolution.
func generatedFor(text string, sc symbols.Scope, byName map[string]*Request) (*Request, []string) {
	name, args := splitArgs(strings.TrimPrefix(text, "global::"))
	var candidates []string
	parts := strings.Split(sc.Namespace, ".")
	if sc.Namespace == "" {
		parts = nil
	}
	for i := len(parts); i >= 0; i-- {
		prefix := strings.Join(parts[:i], ".")
		if prefix == "" {
			candidates = append(candidates, name)
		} else {
			candidates = append(candidates, prefix+"."+name)
		}
	}
	for _, u := range sc.Usings {
		candidates = append(candidates, u+"."+name)
	}
	for _, c := range candidates {
		if r, ok := byName[c]; ok && len(r.Symbol.TypeParams) == len(args) {
			return r, args
		}
	}
	return nil, nil
}

// splitArgs splits "IFoo<int, List<T>>" into "IFoo" and ["int", "List<T>"].
func splitArgs(text string) (string, []string) {
	open := strings.Index(text, "<")
	if open < 0 || !strings.HasSuffix(text, ">") {
		return text, nil
	}
	inner := text[open+1 : len(text)-1]
	var args []string
	depth, start := 0, 0
	for i := 0; i < len(inner); i++ {
		switch inner[i] {
		case '<', '(':
			depth++
		case '>', ')':
			depth--
		case ',':
			if depth == 0 {
				args = append(args, strings.TrimSpace(inner[start:i]))
				start = i + 1
			}
		}
	}
	args = append(args, strings.TrimSpace(inner[start:]))
	return text[:open], args
}

// interfaceAccessibility maps the class accessibility onto what a
// namespace-level interface may declare.
func interfaceAccessibility(s *symbols.Symbol) string {
	switch acc := s.Accessibility(); acc {
	case "public":
		return "public"
	case "file":
		return "file"
	default:
		return "internal"
	}
}

// render produces the unit text for one request.
func render(r memberRenderer, req *Request) (string, error) {
	sym := req.Symbol
	b := textbuilder.New()
	b.Header().Nullable().Blank()
	if usings := sym.UsingDirectives(); len(usings) > 0 {
		b.Lines(usings...).Blank()
	}

	closeNs := b.Namespace(sym.Namespace)

	decl := interfaceAccessibility(sym) + " interface " + req.InterfaceName()
	if len(req.Bases) > 0 {
		decl += " : " + strings.Join(req.Bases, ", ")
	}
	closeIface := b.Block(decl)
	for _, m := range sym.Members() {
		b.Lines(r.render(m, req)...)
	}
	closeIface()

	if sym.Reopenable() {
		b.Blank()
		var closers []func()
		for _, outer := range sym.Containers() {
			closers = append(closers, b.Blockf("partial %s %s", outer.Keyword(), outer.DisplayName()))
		}
		b.Linef("partial class %s : %s {}", sym.DisplayName(), req.reference(sym.TypeParams))
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	closeNs()
	return b.Text()
}
