// Package annotation binds marker attribute usages to typed configuration.
//
// A Marker describes one attribute type: its fields and the constructor
// overloads users may call. Binding replays the overload that a usage
// actually invokes, so positional arguments land on the right fields even
// when overloads order their parameters differently.
package annotation

import (
	"fmt"
	"strings"
)

// DefaultNamespace is where marker attribute types live unless configured otherwise.
const DefaultNamespace = "Generator.Attributes"

// ValueKind is the type of a marker field or argument.
type ValueKind int

const (
	KindInvalid ValueKind = iota
	KindBool
	KindInt
	KindString
	KindEnum
)

func (k ValueKind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindString:
		return "string"
	case KindEnum:
		return "enum"
	default:
		return "invalid"
	}
}

// Target is the declaration kind a marker applies to.
type Target string

const (
	TargetClass  Target = "class"
	TargetMethod Target = "method"
	TargetField  Target = "field"
)

// Param is one constructor parameter.
type Param struct {
	Name string
	Kind ValueKind
	// Enum names the enum type for KindEnum parameters.
	Enum string
	// Field is the marker field the parameter sets; defaults to Name.
	Field string
	// Default is used when the argument is omitted. A nil Default makes the
	// parameter required.
	Default *Value
}

func (p Param) field() string {
	if p.Field != "" {
		return p.Field
	}
	return p.Name
}

// Overload is one constructor shape.
type Overload struct {
	Params []Param
	// Implied are field values the overload sets without taking a parameter.
	Implied map[string]Value
}

// Signature renders the overload as "(bool useProps = true, ...)".
func (o Overload) Signature() string {
	parts := make([]string, len(o.Params))
	for i, p := range o.Params {
		kind := p.Kind.String()
		if p.Kind == KindEnum {
			kind = p.Enum
		}
		parts[i] = kind + " " + p.Name
		if p.Default != nil {
			parts[i] += " = " + p.Default.String()
		}
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Field is a named, typed marker field.
type Field struct {
	Name string
	Kind ValueKind
}

// Marker describes one marker attribute type.
type Marker struct {
	// Name is the attribute name without the "Attribute" suffix.
	Name          string
	Namespace     string
	Target        Target
	AllowMultiple bool
	Fields        []Field
	Overloads     []Overload
	// Enums maps an enum type name to its members.
	Enums map[string]map[string]int64
}

// TypeName is the attribute class name, e.g. "MakeInterfaceAttribute".
func (m *Marker) TypeName() string { return m.Name + "Attribute" }

// QualifiedName is the namespace-qualified attribute class name.
func (m *Marker) QualifiedName() string {
	if m.Namespace == "" {
		return m.TypeName()
	}
	return m.Namespace + "." + m.TypeName()
}

// InNamespace returns a copy of the marker declared in ns.
func (m *Marker) InNamespace(ns string) *Marker {
	c := *m
	c.Namespace = ns
	return &c
}

func (m *Marker) field(name string) (Field, bool) {
	for _, f := range m.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Validate checks that every parameter and implied value names a declared
// field of the same kind.
func (m *Marker) Validate() error {
	if len(m.Overloads) == 0 {
		return fmt.Errorf("marker %s: no overloads", m.Name)
	}
	for i, o := range m.Overloads {
		for _, p := range o.Params {
			f, ok := m.field(p.field())
			if !ok {
				return fmt.Errorf("marker %s overload %d: unknown field %s", m.Name, i, p.field())
			}
			if f.Kind != p.Kind && !(f.Kind == KindInt && p.Kind == KindEnum) {
				return fmt.Errorf("marker %s overload %d: parameter %s is %s, field is %s", m.Name, i, p.Name, p.Kind, f.Kind)
			}
			if p.Kind == KindEnum {
				if _, ok := m.Enums[p.Enum]; !ok {
					return fmt.Errorf("marker %s overload %d: unknown enum %s", m.Name, i, p.Enum)
				}
			}
		}
		for name := range o.Implied {
			if _, ok := m.field(name); !ok {
				return fmt.Errorf("marker %s overload %d: implied value for unknown field %s", m.Name, i, name)
			}
		}
	}
	return nil
}

// QualifiedNames returns the attribute class names of the markers, for
// registration as external symbols.
func QualifiedNames(markers ...*Marker) []string {
	out := make([]string, len(markers))
	for i, m := range markers {
		out[i] = m.QualifiedName()
	}
	return out
}

// Bool, Int and String build default values.
func Bool(v bool) *Value     { return &Value{Kind: KindBool, Bool: v, Resolved: true} }
func Int(v int64) *Value     { return &Value{Kind: KindInt, Int: v, Resolved: true} }
func String(v string) *Value { return &Value{Kind: KindString, Str: v, Resolved: true} }

// EnumValue builds an enum default.
func EnumValue(member string, v int64) *Value {
	return &Value{Kind: KindEnum, Int: v, Str: member, Resolved: true}
}
