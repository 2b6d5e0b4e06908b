package syntax

import "strconv"

// TypeKind distinguishes the type declaration keywords.
type TypeKind string

const (
	KindClass     TypeKind = "class"
	KindStruct    TypeKind = "struct"
	KindInterface TypeKind = "interface"
	KindRecord    TypeKind = "record"
	KindEnum      TypeKind = "enum"
)

// MemberKind identifies a member declaration shape.
type MemberKind string

const (
	MemberProperty   MemberKind = "property"
	MemberMethod     MemberKind = "method"
	MemberEvent      MemberKind = "event"       // event with accessors
	MemberEventField MemberKind = "event_field" // event Action A, B;
	MemberField      MemberKind = "field"
	MemberOther      MemberKind = "other"
)

// Node is any declaration the candidate filter can look at.
type Node interface {
	Position() Position
	AttributeList() []Attribute
	ModifierList() Modifiers
}

// File is one parsed source file.
type File struct {
	Path    string            `json:"path"`
	Usings  []string          `json:"usings,omitempty"`
	Aliases map[string]string `json:"aliases,omitempty"` // using X = Y;
	Types   []*Class          `json:"types,omitempty"`
}

// AllTypes returns every type declared in the file, nested ones included, in
// source order.
func (f *File) AllTypes() []*Class {
	var out []*Class
	var walk func(cs []*Class)
	walk = func(cs []*Class) {
		for _, c := range cs {
			out = append(out, c)
			walk(c.Nested)
		}
	}
	walk(f.Types)
	return out
}

// Class is a type declaration (class, struct, record, interface or enum).
type Class struct {
	Kind       TypeKind    `json:"kind"`
	Name       string      `json:"name"`
	TypeParams []string    `json:"typeParams,omitempty"`
	Namespace  string      `json:"namespace,omitempty"`
	Modifiers  Modifiers   `json:"modifiers,omitempty"`
	Attributes []Attribute `json:"attributes,omitempty"`
	BaseTypes  []TypeRef   `json:"baseTypes,omitempty"`
	Members    []*Member   `json:"members,omitempty"`
	Nested     []*Class    `json:"nested,omitempty"`
	Pos        Position    `json:"pos"`

	// Set by the front end; not serialized to avoid cycles.
	File  *File  `json:"-"`
	Outer *Class `json:"-"`
}

func (c *Class) Position() Position         { return c.Pos }
func (c *Class) AttributeList() []Attribute { return c.Attributes }
func (c *Class) ModifierList() Modifiers    { return c.Modifiers }

// DisplayName is the name with its type parameter list, e.g. "Cache<K, V>".
func (c *Class) DisplayName() string {
	if len(c.TypeParams) == 0 {
		return c.Name
	}
	s := c.Name + "<"
	for i, p := range c.TypeParams {
		if i > 0 {
			s += ", "
		}
		s += p
	}
	return s + ">"
}

// Containers returns the enclosing types from outermost to innermost.
func (c *Class) Containers() []*Class {
	var out []*Class
	for o := c.Outer; o != nil; o = o.Outer {
		out = append([]*Class{o}, out...)
	}
	return out
}

// MetadataName is the dotted name including containers and generic arity,
// e.g. "Outer.Cache`2".
func (c *Class) MetadataName() string {
	name := c.Name
	if n := len(c.TypeParams); n > 0 {
		name += "`" + strconv.Itoa(n)
	}
	if c.Outer != nil {
		return c.Outer.MetadataName() + "." + name
	}
	return name
}

// HasAttributedMethod reports whether any method carries at least one attribute.
func (c *Class) HasAttributedMethod() bool {
	for _, m := range c.Members {
		if m.Kind == MemberMethod && len(m.Attributes) > 0 {
			return true
		}
	}
	return false
}

// Accessor is a property or event accessor ("get", "set", "init", "add", "remove").
type Accessor struct {
	Keyword   string    `json:"keyword"`
	Modifiers Modifiers `json:"modifiers,omitempty"`
	HasBody   bool      `json:"hasBody,omitempty"`
}

// Param is a method parameter.
type Param struct {
	Modifiers Modifiers `json:"modifiers,omitempty"` // ref, out, in, params, this
	Type      TypeRef   `json:"type"`
	Name      string    `json:"name"`
	Default   string    `json:"default,omitempty"`
}

// Member is a member declaration inside a type body.
type Member struct {
	Kind        MemberKind  `json:"kind"`
	Name        string      `json:"name"`
	Modifiers   Modifiers   `json:"modifiers,omitempty"`
	Attributes  []Attribute `json:"attributes,omitempty"`
	Type        TypeRef     `json:"type"` // property/event/field type, method return type
	TypeParams  []string    `json:"typeParams,omitempty"`
	Constraints []string    `json:"constraints,omitempty"` // "where T : class" clauses
	Params      []Param     `json:"params,omitempty"`
	Accessors   []Accessor  `json:"accessors,omitempty"`
	Variables   []string    `json:"variables,omitempty"` // field / event field declarators
	ExprBodied  bool        `json:"exprBodied,omitempty"`
	Pos         Position    `json:"pos"`

	Owner *Class `json:"-"`
}

func (m *Member) Position() Position         { return m.Pos }
func (m *Member) AttributeList() []Attribute { return m.Attributes }
func (m *Member) ModifierList() Modifiers    { return m.Modifiers }
