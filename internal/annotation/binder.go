package annotation

import (
	"strings"

	"gdgen/internal/diag"
	"gdgen/internal/symbols"
	"gdgen/internal/syntax"
)

// Instance is one bound marker usage.
type Instance struct {
	Marker    *Marker
	Attribute syntax.Attribute
	// Overload is the index of the constructor the usage invokes.
	Overload int
	Values   map[string]Value
}

// Bool returns a bool field, false when unset or unresolved.
func (in *Instance) Bool(field string) bool {
	v := in.Values[field]
	return v.Resolved && v.Kind == KindBool && v.Bool
}

// Int returns an int or enum field, 0 when unset or unresolved.
func (in *Instance) Int(field string) int64 {
	v := in.Values[field]
	if v.Resolved && (v.Kind == KindInt || v.Kind == KindEnum) {
		return v.Int
	}
	return 0
}

// String returns a string field, "" when unset, null or unresolved.
func (in *Instance) String(field string) string {
	v := in.Values[field]
	if v.Resolved && v.Kind == KindString {
		return v.Str
	}
	return ""
}

// Value returns the raw value of a field.
func (in *Instance) Value(field string) Value { return in.Values[field] }

// Pos is where the attribute was written.
func (in *Instance) Pos() syntax.Position { return in.Attribute.Pos }

// Binder matches attribute usages against markers through the symbol graph.
type Binder struct {
	graph *symbols.Graph
}

// NewBinder creates a binder over a graph.
func NewBinder(g *symbols.Graph) *Binder {
	return &Binder{graph: g}
}

// Matches reports whether an attribute written in scope refers to the marker.
// Both "Name" and "NameAttribute" spellings are tried.
func (b *Binder) Matches(attr syntax.Attribute, scope symbols.Scope, m *Marker) bool {
	name := attr.Name
	simple := attr.SimpleName()
	if simple != m.Name && simple != m.TypeName() {
		return false
	}
	want := m.QualifiedName()
	candidates := []string{name}
	if !strings.HasSuffix(name, "Attribute") {
		candidates = append(candidates, name+"Attribute")
	}
	for _, c := range candidates {
		if s, ok := b.graph.Resolve(c, 0, scope); ok && s.Key() == want {
			return true
		}
	}
	return false
}

// Has reports whether any part of sym carries the marker. It is the
// semantic half of the candidate gate and reports nothing.
func (b *Binder) Has(sym *symbols.Symbol, m *Marker) bool {
	for _, part := range sym.Parts {
		scope := b.graph.ScopeFor(part)
		for _, attr := range part.Attributes {
			if b.Matches(attr, scope, m) {
				return true
			}
		}
	}
	return false
}

// Bind recovers the single instance of a class-level marker on sym. It
// returns nil with no diagnostics when the marker is absent. A repeated
// non-repeatable marker yields a DuplicateMarker diagnostic and no instance.
func (b *Binder) Bind(sym *symbols.Symbol, m *Marker) (*Instance, []diag.Diagnostic) {
	var found []syntax.Attribute
	var scopes []symbols.Scope
	for _, part := range sym.Parts {
		scope := b.graph.ScopeFor(part)
		for _, attr := range part.Attributes {
			if b.Matches(attr, scope, m) {
				found = append(found, attr)
				scopes = append(scopes, scope)
			}
		}
	}
	if len(found) == 0 {
		return nil, nil
	}
	if len(found) > 1 && !m.AllowMultiple {
		return nil, []diag.Diagnostic{diag.Errorf(diag.DuplicateMarker, found[1].Pos,
			"Attribute '%s' is applied more than once to '%s'", m.TypeName(), sym.DisplayName())}
	}
	in, d := b.bindAttr(found[0], m)
	if d != nil {
		return nil, []diag.Diagnostic{*d}
	}
	return in, nil
}

// BindAll recovers every instance of a marker on a member. Usages whose
// arguments fit no overload are reported and skipped.
func (b *Binder) BindAll(member *syntax.Member, scope symbols.Scope, m *Marker) ([]*Instance, []diag.Diagnostic) {
	var out []*Instance
	var diags []diag.Diagnostic
	var count int
	for _, attr := range member.Attributes {
		if !b.Matches(attr, scope, m) {
			continue
		}
		count++
		if count > 1 && !m.AllowMultiple {
			diags = append(diags, diag.Errorf(diag.DuplicateMarker, attr.Pos,
				"Attribute '%s' is applied more than once to '%s'", m.TypeName(), member.Name))
			continue
		}
		in, d := b.bindAttr(attr, m)
		if d != nil {
			diags = append(diags, *d)
			continue
		}
		out = append(out, in)
	}
	return out, diags
}

func (b *Binder) bindAttr(attr syntax.Attribute, m *Marker) (*Instance, *diag.Diagnostic) {
	values, idx, ok := Apply(m, attr.Args)
	if !ok {
		exprs := make([]string, len(attr.Args))
		for i, a := range attr.Args {
			exprs[i] = a.Expr
			if a.Name != "" {
				sep := ": "
				if a.Assign {
					sep = " = "
				}
				exprs[i] = a.Name + sep + a.Expr
			}
		}
		sigs := make([]string, len(m.Overloads))
		for i, o := range m.Overloads {
			sigs[i] = o.Signature()
		}
		d := diag.Errorf(diag.NoMatchingOverload, attr.Pos,
			"No constructor of '%s' accepts the arguments (%s); expected %s",
			m.TypeName(), strings.Join(exprs, ", "), strings.Join(sigs, " or "))
		return nil, &d
	}
	return &Instance{Marker: m, Attribute: attr, Overload: idx, Values: values}, nil
}

// Apply binds attribute arguments to marker fields by replaying the first
// overload the arguments fit. ok is false when none fits.
func Apply(m *Marker, args []syntax.AttributeArg) (values map[string]Value, overload int, ok bool) {
	var positional, named, assigned []syntax.AttributeArg
	for _, a := range args {
		switch {
		case a.Name == "":
			positional = append(positional, a)
		case a.Assign:
			assigned = append(assigned, a)
		default:
			named = append(named, a)
		}
	}

	for i, o := range m.Overloads {
		bound, fit := applyOverload(m, o, positional, named)
		if !fit {
			continue
		}
		for _, a := range assigned {
			f, ok := m.field(a.Name)
			if !ok {
				continue
			}
			v := Evaluate(a.Expr, m.Enums)
			if !v.fits(Param{Kind: f.Kind}) && !(f.Kind == KindInt && v.Kind == KindEnum) {
				continue
			}
			bound[f.Name] = v
		}
		return finalize(m, bound), i, true
	}
	return nil, -1, false
}

func applyOverload(m *Marker, o Overload, positional, named []syntax.AttributeArg) (map[string]Value, bool) {
	if len(positional) > len(o.Params) {
		return nil, false
	}
	set := make([]*Value, len(o.Params))
	for i, a := range positional {
		v := Evaluate(a.Expr, m.Enums)
		if !v.fits(o.Params[i]) {
			return nil, false
		}
		set[i] = &v
	}
	for _, a := range named {
		idx := -1
		for i, p := range o.Params {
			if p.Name == a.Name {
				idx = i
				break
			}
		}
		if idx < 0 || set[idx] != nil {
			return nil, false
		}
		v := Evaluate(a.Expr, m.Enums)
		if !v.fits(o.Params[idx]) {
			return nil, false
		}
		set[idx] = &v
	}

	out := make(map[string]Value, len(m.Fields))
	for name, v := range o.Implied {
		out[name] = v
	}
	for i, p := range o.Params {
		switch {
		case set[i] != nil:
			out[p.field()] = *set[i]
		case p.Default != nil:
			out[p.field()] = *p.Default
		default:
			return nil, false
		}
	}
	return out, true
}

// finalize gives every declared field a value. Omitted fields get the zero
// value of their kind; null and unresolved values keep their source text but
// read as zero through the Instance accessors.
func finalize(m *Marker, bound map[string]Value) map[string]Value {
	out := make(map[string]Value, len(m.Fields))
	for _, f := range m.Fields {
		v, ok := bound[f.Name]
		if !ok {
			out[f.Name] = Value{Kind: f.Kind, Resolved: true}
			continue
		}
		if v.Null || !v.Resolved || (f.Kind == KindInt && v.Kind == KindEnum) {
			v.Kind = f.Kind
		}
		out[f.Name] = v
	}
	return out
}
