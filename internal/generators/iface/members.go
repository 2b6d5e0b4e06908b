package iface

import (
	"strings"

	"gdgen/internal/symbols"
	"gdgen/internal/syntax"
)

// restricted are the accessibility keywords that keep a member or accessor
// out of the interface.
var restricted = []string{"private", "protected", "internal"}

// eligible reports whether a member may appear in the interface: no
// restricted accessibility, not static, and not an explicit implementation.
func eligible(m *syntax.Member) bool {
	if m.Modifiers.Has(restricted...) || m.Modifiers.Has("static") {
		return false
	}
	return m.Name != "" && !strings.Contains(m.Name, ".")
}

// memberRenderer renders member signatures with fully qualified types.
type memberRenderer struct {
	graph *symbols.Graph
}

func (r memberRenderer) scope(m *syntax.Member) symbols.Scope {
	if m.Owner == nil {
		return symbols.Scope{}
	}
	return r.graph.ScopeFor(m.Owner).WithTypeParams(m.TypeParams...)
}

func (r memberRenderer) typ(t syntax.TypeRef, sc symbols.Scope) string {
	return r.graph.RenderType(t.Text, sc)
}

// render returns the interface lines for a member, or nil when the member is
// not selected by the request flags.
func (r memberRenderer) render(m *syntax.Member, req *Request) []string {
	if !eligible(m) {
		return nil
	}
	sc := r.scope(m)
	switch m.Kind {
	case syntax.MemberProperty:
		if !req.UseProps {
			return nil
		}
		return r.property(m, sc)
	case syntax.MemberMethod:
		if !req.UseMethods {
			return nil
		}
		return []string{r.method(m, sc)}
	case syntax.MemberEvent:
		if !req.UseEvents {
			return nil
		}
		return []string{"event " + r.typ(m.Type, sc) + " " + m.Name + ";"}
	case syntax.MemberEventField:
		if !req.UseEvents {
			return nil
		}
		typ := r.typ(m.Type, sc)
		out := make([]string, 0, len(m.Variables))
		for _, v := range m.Variables {
			out = append(out, "event "+typ+" "+v+";")
		}
		return out
	}
	return nil
}

// property keeps only the accessors without restricted accessibility. An
// expression-bodied property is read-only.
func (r memberRenderer) property(m *syntax.Member, sc symbols.Scope) []string {
	var accessors []string
	if m.ExprBodied && len(m.Accessors) == 0 {
		accessors = append(accessors, "get;")
	}
	for _, a := range m.Accessors {
		if a.Modifiers.Has(restricted...) {
			continue
		}
		accessors = append(accessors, a.Keyword+";")
	}
	if len(accessors) == 0 {
		return nil
	}
	return []string{r.typ(m.Type, sc) + " " + m.Name + " { " + strings.Join(accessors, " ") + " }"}
}

func (r memberRenderer) method(m *syntax.Member, sc symbols.Scope) string {
	var sb strings.Builder
	sb.WriteString(r.typ(m.Type, sc))
	sb.WriteString(" ")
	sb.WriteString(m.Name)
	if len(m.TypeParams) > 0 {
		sb.WriteString("<" + strings.Join(m.TypeParams, ", ") + ">")
	}
	sb.WriteString("(")
	for i, p := range m.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		for _, mod := range p.Modifiers {
			if mod == "this" {
				continue
			}
			sb.WriteString(mod + " ")
		}
		if p.Type.IsZero() {
			sb.WriteString("object")
		} else {
			sb.WriteString(r.typ(p.Type, sc))
		}
		sb.WriteString(" " + p.Name)
		if p.Default != "" {
			sb.WriteString(" = " + p.Default)
		}
	}
	sb.WriteString(")")
	for _, c := range m.Constraints {
		sb.WriteString(" " + c)
	}
	sb.WriteString(";")
	return sb.String()
}
