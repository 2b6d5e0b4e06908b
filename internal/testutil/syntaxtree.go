package testutil

import (
	"strings"

	"gdgen/internal/syntax"
)

// DefaultUsings are the using directives of files built with NewFile.
var DefaultUsings = []string{"Generator.Attributes", "Godot", "System"}

// Attr builds an attribute usage. Arguments of the form "name: expr" are
// named, "name = expr" are assigned, anything else is positional.
func Attr(name string, args ...string) syntax.Attribute {
	a := syntax.Attribute{Name: name}
	for _, e := range args {
		if n, v, ok := strings.Cut(e, ": "); ok && isIdent(n) {
			a.Args = append(a.Args, syntax.AttributeArg{Name: n, Expr: v})
			continue
		}
		if n, v, ok := strings.Cut(e, " = "); ok && isIdent(n) {
			a.Args = append(a.Args, syntax.AttributeArg{Name: n, Assign: true, Expr: v})
			continue
		}
		a.Args = append(a.Args, syntax.AttributeArg{Expr: e})
	}
	return a
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || i > 0 && r >= '0' && r <= '9' {
			continue
		}
		return false
	}
	return true
}

// ClassBuilder assembles a class declaration.
type ClassBuilder struct {
	*syntax.Class
}

// NewClass starts a class declaration in namespace ns.
func NewClass(ns, name string) *ClassBuilder {
	return &ClassBuilder{&syntax.Class{Kind: syntax.KindClass, Name: name, Namespace: ns}}
}

// Kind sets the declaration keyword.
func (b *ClassBuilder) Kind(k syntax.TypeKind) *ClassBuilder {
	b.Class.Kind = k
	return b
}

// Mods sets the modifiers from a space separated list.
func (b *ClassBuilder) Mods(mods string) *ClassBuilder {
	b.Modifiers = syntax.Modifiers(strings.Fields(mods))
	return b
}

// TypeParams sets the type parameter list.
func (b *ClassBuilder) TypeParams(params ...string) *ClassBuilder {
	b.Class.TypeParams = params
	return b
}

// Extends sets the base list.
func (b *ClassBuilder) Extends(bases ...string) *ClassBuilder {
	for _, base := range bases {
		b.BaseTypes = append(b.BaseTypes, syntax.TypeRef{Text: base})
	}
	return b
}

// Attr adds an attribute.
func (b *ClassBuilder) Attr(name string, args ...string) *ClassBuilder {
	b.Attributes = append(b.Attributes, Attr(name, args...))
	return b
}

// Member adds a member and returns the builder.
func (b *ClassBuilder) Member(m *syntax.Member) *ClassBuilder {
	m.Owner = b.Class
	b.Members = append(b.Members, m)
	return b
}

// Method adds a parameterless void method.
func (b *ClassBuilder) Method(name string, attrs ...syntax.Attribute) *ClassBuilder {
	return b.Member(&syntax.Member{
		Kind:       syntax.MemberMethod,
		Name:       name,
		Type:       syntax.TypeRef{Text: "void"},
		Attributes: attrs,
	})
}

// Nest declares inner inside b.
func (b *ClassBuilder) Nest(inner *ClassBuilder) *ClassBuilder {
	inner.Outer = b.Class
	inner.Namespace = b.Namespace
	b.Nested = append(b.Nested, inner.Class)
	return b
}

// NewFile links classes into a file with DefaultUsings. Types and members
// without a position get increasing offsets in declaration order.
func NewFile(path string, classes ...*ClassBuilder) *syntax.File {
	f := &syntax.File{Path: path, Usings: append([]string(nil), DefaultUsings...)}
	for _, c := range classes {
		f.Types = append(f.Types, c.Class)
	}
	offset := 0
	line := 1
	place := func(p *syntax.Position) {
		if *p == (syntax.Position{}) {
			*p = syntax.Position{Path: path, Line: line, Column: 1, Offset: offset}
		}
		offset += 100
		line += 4
	}
	for _, c := range f.AllTypes() {
		c.File = f
		place(&c.Pos)
		for i := range c.Attributes {
			place(&c.Attributes[i].Pos)
		}
		for _, m := range c.Members {
			m.Owner = c
			place(&m.Pos)
			for i := range m.Attributes {
				place(&m.Attributes[i].Pos)
			}
		}
	}
	return f
}
