//go:build cgo

package csharp

import (
	"context"
	"fmt"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	tscsharp "github.com/smacker/go-tree-sitter/csharp"

	"gdgen/internal/syntax"
)

// A sitter.Parser is not safe for concurrent use; each goroutine takes its own.
var parsers = sync.Pool{
	New: func() any {
		p := sitter.NewParser()
		p.SetLanguage(tscsharp.GetLanguage())
		return p
	},
}

// ParseSource parses one C# file. path is recorded verbatim on every position.
func ParseSource(ctx context.Context, path string, src []byte) (*syntax.File, error) {
	p := parsers.Get().(*sitter.Parser)
	defer parsers.Put(p)

	tree, err := p.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	defer tree.Close()

	w := &walker{src: src, file: &syntax.File{Path: path}}
	w.unit(tree.RootNode())
	return w.file, nil
}

// IsAvailable returns whether the front end can parse sources.
func IsAvailable() bool {
	return true
}

var typeDeclarations = map[string]syntax.TypeKind{
	"class_declaration":         syntax.KindClass,
	"struct_declaration":        syntax.KindStruct,
	"interface_declaration":     syntax.KindInterface,
	"record_declaration":        syntax.KindRecord,
	"record_struct_declaration": syntax.KindRecord,
	"enum_declaration":          syntax.KindEnum,
}

var paramModifiers = map[string]bool{
	"ref": true, "out": true, "in": true, "params": true,
	"this": true, "scoped": true, "readonly": true,
}

var accessorKeywords = map[string]bool{
	"get": true, "set": true, "init": true, "add": true, "remove": true,
}

type walker struct {
	src  []byte
	file *syntax.File
}

func (w *walker) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return n.Content(w.src)
}

// flat returns the node text with every whitespace run collapsed.
func (w *walker) flat(n *sitter.Node) string {
	return strings.Join(strings.Fields(w.text(n)), " ")
}

func (w *walker) pos(n *sitter.Node) syntax.Position {
	p := n.StartPoint()
	return syntax.Position{
		Path:   w.file.Path,
		Line:   int(p.Row) + 1,
		Column: int(p.Column) + 1,
		Offset: int(n.StartByte()),
	}
}

func children(n *sitter.Node) []*sitter.Node {
	if n == nil {
		return nil
	}
	out := make([]*sitter.Node, 0, n.ChildCount())
	for i := 0; i < int(n.ChildCount()); i++ {
		out = append(out, n.Child(i))
	}
	return out
}

func named(n *sitter.Node) []*sitter.Node {
	if n == nil {
		return nil
	}
	out := make([]*sitter.Node, 0, n.NamedChildCount())
	for i := 0; i < int(n.NamedChildCount()); i++ {
		out = append(out, n.NamedChild(i))
	}
	return out
}

func childOfType(n *sitter.Node, types ...string) *sitter.Node {
	for _, c := range children(n) {
		for _, t := range types {
			if c.Type() == t {
				return c
			}
		}
	}
	return nil
}

// unit walks the compilation unit. A file-scoped namespace applies to every
// declaration after it, whether the grammar nests them or not.
func (w *walker) unit(root *sitter.Node) {
	ns := ""
	for _, n := range named(root) {
		if n.Type() == "file_scoped_namespace_declaration" {
			ns = w.flat(n.ChildByFieldName("name"))
			w.declarations(n, ns)
			continue
		}
		w.declaration(n, ns)
	}
}

func (w *walker) declarations(parent *sitter.Node, ns string) {
	for _, n := range named(parent) {
		w.declaration(n, ns)
	}
}

func (w *walker) declaration(n *sitter.Node, ns string) {
	switch n.Type() {
	case "using_directive":
		w.using(n)
	case "namespace_declaration":
		name := w.flat(n.ChildByFieldName("name"))
		if ns != "" {
			name = ns + "." + name
		}
		body := n.ChildByFieldName("body")
		if body == nil {
			body = childOfType(n, "declaration_list")
		}
		w.declarations(body, name)
	default:
		if _, ok := typeDeclarations[n.Type()]; ok {
			w.file.Types = append(w.file.Types, w.class(n, ns, nil))
		}
	}
}

// using records "using X;", "using static X;" and "using A = B;". The
// global modifier is dropped.
func (w *walker) using(n *sitter.Node) {
	text := strings.TrimSpace(w.flat(n))
	text = strings.TrimSpace(strings.TrimSuffix(text, ";"))
	text = strings.TrimPrefix(text, "global ")
	text, ok := strings.CutPrefix(text, "using ")
	if !ok {
		return
	}
	text = strings.TrimSpace(text)
	if alias, target, ok := strings.Cut(text, "="); ok && !strings.HasPrefix(text, "static ") {
		if w.file.Aliases == nil {
			w.file.Aliases = make(map[string]string)
		}
		w.file.Aliases[strings.TrimSpace(alias)] = strings.TrimSpace(target)
		return
	}
	for _, u := range w.file.Usings {
		if u == text {
			return
		}
	}
	w.file.Usings = append(w.file.Usings, text)
}

func (w *walker) class(n *sitter.Node, ns string, outer *syntax.Class) *syntax.Class {
	c := &syntax.Class{
		Kind:      typeDeclarations[n.Type()],
		Namespace: ns,
		File:      w.file,
		Outer:     outer,
	}
	nameNode := n.ChildByFieldName("name")
	c.Name = w.text(nameNode)
	if nameNode != nil {
		c.Pos = w.pos(nameNode)
	} else {
		c.Pos = w.pos(n)
	}

	for _, ch := range children(n) {
		switch ch.Type() {
		case "modifier":
			c.Modifiers = append(c.Modifiers, w.text(ch))
		case "attribute_list":
			c.Attributes = append(c.Attributes, w.attributes(ch)...)
		case "type_parameter_list":
			c.TypeParams = w.typeParams(ch)
		case "base_list":
			c.BaseTypes = w.bases(ch)
		case "declaration_list":
			w.body(c, ch)
		}
	}
	return c
}

func (w *walker) body(c *syntax.Class, list *sitter.Node) {
	for _, n := range named(list) {
		if _, ok := typeDeclarations[n.Type()]; ok {
			c.Nested = append(c.Nested, w.class(n, c.Namespace, c))
			continue
		}
		var m *syntax.Member
		switch n.Type() {
		case "property_declaration":
			m = w.property(n)
		case "method_declaration":
			m = w.method(n)
		case "event_declaration":
			m = w.event(n)
		case "event_field_declaration":
			m = w.fieldLike(n, syntax.MemberEventField)
		case "field_declaration":
			m = w.fieldLike(n, syntax.MemberField)
		case "constructor_declaration", "destructor_declaration", "indexer_declaration",
			"operator_declaration", "conversion_operator_declaration":
			m = w.member(n, syntax.MemberOther)
		default:
			continue
		}
		m.Owner = c
		c.Members = append(c.Members, m)
	}
}

// member reads what every member shape shares: modifiers, attributes, name
// (qualified by an explicit interface specifier) and position.
func (w *walker) member(n *sitter.Node, kind syntax.MemberKind) *syntax.Member {
	m := &syntax.Member{Kind: kind, Pos: w.pos(n)}
	for _, ch := range children(n) {
		switch ch.Type() {
		case "modifier":
			m.Modifiers = append(m.Modifiers, w.text(ch))
		case "attribute_list":
			m.Attributes = append(m.Attributes, w.attributes(ch)...)
		case "arrow_expression_clause":
			m.ExprBodied = true
		}
	}
	if nameNode := n.ChildByFieldName("name"); nameNode != nil {
		m.Name = w.text(nameNode)
		m.Pos = w.pos(nameNode)
	}
	if spec := childOfType(n, "explicit_interface_specifier"); spec != nil {
		m.Name = strings.TrimSuffix(strings.ReplaceAll(w.flat(spec), " ", ""), ".") + "." + m.Name
	}
	return m
}

func (w *walker) property(n *sitter.Node) *syntax.Member {
	m := w.member(n, syntax.MemberProperty)
	m.Type = syntax.TypeRef{Text: w.flat(n.ChildByFieldName("type"))}
	m.Accessors = w.accessors(n)
	return m
}

func (w *walker) event(n *sitter.Node) *syntax.Member {
	m := w.member(n, syntax.MemberEvent)
	m.Type = syntax.TypeRef{Text: w.flat(n.ChildByFieldName("type"))}
	m.Accessors = w.accessors(n)
	return m
}

func (w *walker) accessors(n *sitter.Node) []syntax.Accessor {
	list := n.ChildByFieldName("accessors")
	if list == nil {
		list = childOfType(n, "accessor_list")
	}
	var out []syntax.Accessor
	for _, a := range named(list) {
		if a.Type() != "accessor_declaration" {
			continue
		}
		var acc syntax.Accessor
		if kw := a.ChildByFieldName("name"); kw != nil {
			acc.Keyword = w.text(kw)
		}
		for _, ch := range children(a) {
			switch t := ch.Type(); {
			case t == "modifier":
				acc.Modifiers = append(acc.Modifiers, w.text(ch))
			case t == "block" || t == "arrow_expression_clause":
				acc.HasBody = true
			case acc.Keyword == "" && accessorKeywords[w.text(ch)]:
				acc.Keyword = w.text(ch)
			}
		}
		out = append(out, acc)
	}
	return out
}

func (w *walker) method(n *sitter.Node) *syntax.Member {
	m := w.member(n, syntax.MemberMethod)
	ret := n.ChildByFieldName("returns")
	if ret == nil {
		ret = n.ChildByFieldName("type")
	}
	m.Type = syntax.TypeRef{Text: w.flat(ret)}
	for _, ch := range children(n) {
		switch ch.Type() {
		case "type_parameter_list":
			m.TypeParams = w.typeParams(ch)
		case "parameter_list":
			m.Params = w.params(ch)
		case "type_parameter_constraints_clause":
			m.Constraints = append(m.Constraints, w.flat(ch))
		}
	}
	return m
}

func (w *walker) params(list *sitter.Node) []syntax.Param {
	var out []syntax.Param
	for _, n := range named(list) {
		if n.Type() != "parameter" && n.Type() != "parameter_array" {
			continue
		}
		p := syntax.Param{
			Name: w.text(n.ChildByFieldName("name")),
			Type: syntax.TypeRef{Text: w.flat(n.ChildByFieldName("type"))},
		}
		if n.Type() == "parameter_array" {
			p.Modifiers = append(p.Modifiers, "params")
		}
		sawEq := false
		for _, ch := range children(n) {
			t := ch.Type()
			switch {
			case t == "modifier" || t == "parameter_modifier":
				p.Modifiers = append(p.Modifiers, w.text(ch))
			case !ch.IsNamed() && paramModifiers[t]:
				p.Modifiers = append(p.Modifiers, t)
			case t == "equals_value_clause":
				p.Default = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(w.text(ch)), "="))
			case t == "=":
				sawEq = true
			case sawEq && ch.IsNamed():
				p.Default = strings.TrimSpace(w.text(ch))
			}
		}
		if p.Name == "" {
			if id := lastOfType(n, "identifier"); id != nil {
				p.Name = w.text(id)
			}
		}
		out = append(out, p)
	}
	return out
}

func lastOfType(n *sitter.Node, t string) *sitter.Node {
	var last *sitter.Node
	for _, ch := range named(n) {
		if ch.Type() == t {
			last = ch
		}
	}
	return last
}

// fieldLike reads field and event field declarations, one member per
// declaration with every declarator name in Variables.
func (w *walker) fieldLike(n *sitter.Node, kind syntax.MemberKind) *syntax.Member {
	m := w.member(n, kind)
	decl := childOfType(n, "variable_declaration")
	if decl == nil {
		return m
	}
	m.Type = syntax.TypeRef{Text: w.flat(decl.ChildByFieldName("type"))}
	for _, v := range named(decl) {
		if v.Type() != "variable_declarator" {
			continue
		}
		name := v.ChildByFieldName("name")
		if name == nil {
			name = childOfType(v, "identifier")
		}
		if name != nil {
			m.Variables = append(m.Variables, w.text(name))
		}
	}
	if len(m.Variables) > 0 {
		m.Name = m.Variables[0]
	}
	return m
}

func (w *walker) typeParams(list *sitter.Node) []string {
	var out []string
	for _, n := range named(list) {
		if n.Type() != "type_parameter" {
			continue
		}
		name := n.ChildByFieldName("name")
		if name == nil {
			name = lastOfType(n, "identifier")
		}
		out = append(out, w.text(name))
	}
	return out
}

// bases reads a base list, dropping primary constructor arguments.
func (w *walker) bases(list *sitter.Node) []syntax.TypeRef {
	var out []syntax.TypeRef
	for _, n := range named(list) {
		switch n.Type() {
		case "argument_list":
			continue
		case "primary_constructor_base_type":
			if len(named(n)) > 0 {
				n = named(n)[0]
			}
		}
		out = append(out, syntax.TypeRef{Text: w.flat(n)})
	}
	return out
}

// attributes reads one attribute list. Lists aimed at another target, such
// as [return: X] or [field: X], are skipped.
func (w *walker) attributes(list *sitter.Node) []syntax.Attribute {
	if target := childOfType(list, "attribute_target_specifier"); target != nil {
		switch strings.TrimSpace(strings.TrimSuffix(w.flat(target), ":")) {
		case "type", "method", "event", "property":
		default:
			return nil
		}
	}
	var out []syntax.Attribute
	for _, a := range named(list) {
		if a.Type() != "attribute" {
			continue
		}
		nameNode := a.ChildByFieldName("name")
		if nameNode == nil && a.NamedChildCount() > 0 {
			nameNode = a.NamedChild(0)
		}
		attr := syntax.Attribute{Name: strings.ReplaceAll(w.flat(nameNode), " ", ""), Pos: w.pos(a)}
		for _, arg := range named(childOfType(a, "attribute_argument_list")) {
			if arg.Type() == "attribute_argument" {
				attr.Args = append(attr.Args, w.attributeArg(arg))
			}
		}
		out = append(out, attr)
	}
	return out
}

// attributeArg reads "expr", "name: expr" or "name = expr".
func (w *walker) attributeArg(n *sitter.Node) syntax.AttributeArg {
	var arg syntax.AttributeArg
	cs := children(n)
	for i := 0; i < len(cs); i++ {
		ch := cs[i]
		switch t := ch.Type(); {
		case t == "name_equals":
			arg.Name = strings.TrimSpace(strings.TrimSuffix(w.flat(ch), "="))
			arg.Assign = true
		case t == "name_colon":
			arg.Name = strings.TrimSpace(strings.TrimSuffix(w.flat(ch), ":"))
		case t == "identifier" && i+1 < len(cs) && (cs[i+1].Type() == "=" || cs[i+1].Type() == ":"):
			arg.Name = w.text(ch)
			arg.Assign = cs[i+1].Type() == "="
			i++
		case t == "assignment_expression" && arg.Name == "":
			// Older grammars read "name = value" as an assignment.
			arg.Name = w.text(ch.ChildByFieldName("left"))
			arg.Assign = true
			arg.Expr = strings.TrimSpace(w.text(ch.ChildByFieldName("right")))
		case ch.IsNamed():
			arg.Expr = strings.TrimSpace(w.text(ch))
		}
	}
	return arg
}
