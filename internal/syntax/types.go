// Package syntax holds the syntax-level view of C# declarations produced by the
// discovery front end. Nothing here is resolved: names are kept exactly as written.
package syntax

import (
	"fmt"
	"strings"
)

// Position is a source location (1-indexed line and column).
type Position struct {
	Path   string `json:"path"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
	Offset int    `json:"offset"`
}

func (p Position) String() string {
	if p.Path == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d:%d", p.Path, p.Line, p.Column)
}

// Before reports whether p sorts before q (path, then offset).
func (p Position) Before(q Position) bool {
	if p.Path != q.Path {
		return p.Path < q.Path
	}
	return p.Offset < q.Offset
}

// Modifiers is the ordered list of modifier keywords on a declaration.
type Modifiers []string

// Has reports whether any of the given keywords is present.
func (m Modifiers) Has(keywords ...string) bool {
	for _, mod := range m {
		for _, k := range keywords {
			if mod == k {
				return true
			}
		}
	}
	return false
}

// Accessibility returns the explicit accessibility keywords joined by a space,
// or "" when none is written.
func (m Modifiers) Accessibility() string {
	var parts []string
	for _, mod := range m {
		switch mod {
		case "public", "private", "protected", "internal", "file":
			parts = append(parts, mod)
		}
	}
	return strings.Join(parts, " ")
}

// TypeRef is a type exactly as written in source, e.g. "List<Node>?".
type TypeRef struct {
	Text string `json:"text"`
}

func (t TypeRef) String() string { return t.Text }

// IsZero reports whether no type was written.
func (t TypeRef) IsZero() bool { return strings.TrimSpace(t.Text) == "" }

// AttributeArg is one argument of an attribute usage. Name is set for named
// arguments ("name: value" or "name = value").
type AttributeArg struct {
	Name   string `json:"name,omitempty"`
	Assign bool   `json:"assign,omitempty"` // "name = value" form
	Expr   string `json:"expr"`
}

// Attribute is one attribute usage such as [MakeInterface(true, useEvents: true)].
type Attribute struct {
	Name string         `json:"name"`
	Args []AttributeArg `json:"args,omitempty"`
	Pos  Position       `json:"pos"`
}

// SimpleName returns the attribute name without qualification or "global::".
func (a Attribute) SimpleName() string {
	name := strings.TrimPrefix(a.Name, "global::")
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i+1:]
	}
	return name
}
