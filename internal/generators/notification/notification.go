// Package notification turns methods tagged with [WhatNotificationMethod]
// into a _Notification override that dispatches on the notification id.
package notification

import (
	"context"
	"strconv"
	"strings"

	"gdgen/internal/annotation"
	"gdgen/internal/candidate"
	"gdgen/internal/diag"
	"gdgen/internal/generators/scaffold"
	"gdgen/internal/pipeline"
	"gdgen/internal/symbols"
	"gdgen/internal/syntax"
)

// GeneratorName is the generator segment of unit keys.
const GeneratorName = "WhatNotification"

const baseCallStatement = "base._Notification(what)"

// Handler is one case of the dispatch table.
type Handler struct {
	Method string
	// Label is the case label: the resolved id, or the expression as written
	// when it names a constant the binder cannot evaluate.
	Label string
	Pos   syntax.Position
}

// Request is the bound configuration for one marked class.
type Request struct {
	Symbol   *symbols.Symbol
	BaseCall int64
	Handlers []Handler
}

// Generator implements pipeline.Generator.
type Generator struct {
	marker, method *annotation.Marker
}

// New returns the generator with its markers declared in markerNamespace.
func New(markerNamespace string) *Generator {
	return &Generator{
		marker: Marker.InNamespace(markerNamespace),
		method: MethodMarker.InNamespace(markerNamespace),
	}
}

func (g *Generator) Name() string { return GeneratorName }

func (g *Generator) Markers() []*annotation.Marker {
	return []*annotation.Marker{g.marker, g.method}
}

// Predicate is the syntactic gate: a partial, concrete class with a base
// list and at least one attributed method.
var Predicate = candidate.All(
	candidate.IsClass,
	candidate.HasAttributes,
	candidate.HasModifiers("partial"),
	candidate.LacksModifiers("abstract", "static"),
	candidate.HasBaseList,
	candidate.HasMembers,
	candidate.HasAttributedMethod,
)

func (g *Generator) Generate(ctx context.Context, p *pipeline.Pass) error {
	batch, err := candidate.Collect(ctx, p.Collector(), Predicate, func(s *symbols.Symbol) (*symbols.Symbol, bool) {
		return s, p.Binder.Has(s, g.marker)
	})
	if err != nil {
		return err
	}

	for _, sym := range batch {
		if err := ctx.Err(); err != nil {
			return err
		}
		req, diags := g.request(p, sym)
		p.Report(diags...)
		if req == nil {
			continue
		}
		text, err := Render(req)
		if err != nil {
			return err
		}
		if err := p.Emit(pipeline.Unit{
			Key:       pipeline.UnitKey(sym.FileKey(), GeneratorName),
			Generator: GeneratorName,
			Source:    sym.Pos(),
			Text:      text,
		}); err != nil {
			return err
		}
	}
	return nil
}

// request binds the class marker and every tagged method. It returns nil
// when the class must be skipped.
func (g *Generator) request(p *pipeline.Pass, sym *symbols.Symbol) (*Request, []diag.Diagnostic) {
	in, diags := p.Binder.Bind(sym, g.marker)
	if in == nil {
		return nil, diags
	}
	if c := scaffold.NotReopenable(sym); c != nil {
		diags = append(diags, diag.Warningf(diag.NotPartial, c.Pos(),
			"The type '%s' must be partial for '%s' to be generated", c.DisplayName(), sym.DisplayName()))
		return nil, diags
	}

	req := &Request{Symbol: sym, BaseCall: in.Int(fieldBaseCall)}
	skip := false
	ids := make(map[string]string)
	for _, part := range sym.Parts {
		scope := p.Graph.ScopeFor(part)
		for _, m := range part.Members {
			if m.Kind != syntax.MemberMethod || len(m.Attributes) == 0 {
				continue
			}
			tags, d := p.Binder.BindAll(m, scope, g.method)
			diags = append(diags, d...)
			if len(tags) == 0 {
				continue
			}
			if required := requiredParams(m); required > 0 {
				diags = append(diags, diag.Errorf(diag.HandlerHasParameters, m.Pos,
					"The notification handler '%s' takes %d required parameter(s)", m.Name, required))
				skip = true
				continue
			}
			for _, tag := range tags {
				v := tag.Value(fieldWhat)
				label := caseLabel(v)
				id := notificationID(p.Graph, sym, scope, v)
				if prev, dup := ids[id]; dup {
					diags = append(diags, diag.Errorf(diag.DuplicateDiscriminator, tag.Pos(),
						"Notification %s is handled by both '%s' and '%s'", id, prev, m.Name))
					skip = true
					continue
				}
				ids[id] = m.Name
				req.Handlers = append(req.Handlers, Handler{Method: m.Name, Label: label, Pos: tag.Pos()})
			}
		}
	}
	if skip {
		return nil, diags
	}
	return req, diags
}

func caseLabel(v annotation.Value) string {
	switch {
	case v.Null:
		return "0"
	case v.Resolved:
		return strconv.FormatInt(v.Int, 10)
	default:
		return v.Expr
	}
}

// notificationID is the value a case label stands for. Labels naming an
// engine constant, bare or qualified by a class, resolve through the engine
// table from the class that declares or inherits it. Other unevaluated
// expressions stand for themselves.
func notificationID(g *symbols.Graph, sym *symbols.Symbol, scope symbols.Scope, v annotation.Value) string {
	label := caseLabel(v)
	if v.Null || v.Resolved {
		return label
	}
	owner, name := sym, strings.TrimPrefix(v.Expr, "global::")
	if i := strings.LastIndex(name, "."); i >= 0 {
		q, ok := g.Resolve(strings.TrimSpace(name[:i]), 0, scope)
		if !ok {
			return label
		}
		owner, name = q, strings.TrimSpace(name[i+1:])
	}
	class, ok := engineClass(g, owner)
	if !ok {
		return label
	}
	if n, ok := g.Engine().Constant(class, name); ok {
		return strconv.FormatInt(n, 10)
	}
	return label
}

// engineClass returns the nearest engine class in s's ancestry, s included.
func engineClass(g *symbols.Graph, s *symbols.Symbol) (string, bool) {
	table := g.Engine()
	if table == nil {
		return "", false
	}
	for _, c := range append([]*symbols.Symbol{s}, g.BaseChain(s)...) {
		if c.IsExternal() && c.Namespace == table.Namespace && table.Has(c.Name) {
			return c.Name, true
		}
	}
	return "", false
}

// requiredParams counts parameters that a call without arguments cannot
// satisfy.
func requiredParams(m *syntax.Member) int {
	n := 0
	for _, p := range m.Params {
		if p.Default == "" && !p.Modifiers.Has("params") {
			n++
		}
	}
	return n
}

// Render produces the unit text for one request.
func Render(req *Request) (string, error) {
	b := scaffold.FileScoped(req.Symbol)
	closeType := scaffold.Reopen(b, req.Symbol)

	closeMethod := b.Block("public override void _Notification(int what)")
	if req.BaseCall < 0 {
		b.LineC(baseCallStatement)
	}
	closeSwitch := b.Block("switch (what)")
	for _, h := range req.Handlers {
		b.Linef("case %s: %s(); break;", h.Label, h.Method)
	}
	closeSwitch()
	if req.BaseCall > 0 {
		b.LineC(baseCallStatement)
	}
	closeMethod()

	closeType()
	return b.Text()
}
