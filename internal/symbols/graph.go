// Package symbols is the semantic query layer over parsed C# declarations.
//
// A Graph merges partial declarations into one Symbol per type, registers
// engine and marker types as external symbols, resolves base lists through
// namespaces, using directives and aliases, and answers ancestry questions.
// It is built once per pass and read concurrently afterwards.
package symbols

import (
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"gdgen/internal/engine"
	"gdgen/internal/syntax"
)

// Kind of a symbol.
type Kind string

const (
	KindClass     Kind = "class"
	KindStruct    Kind = "struct"
	KindInterface Kind = "interface"
	KindRecord    Kind = "record"
	KindEnum      Kind = "enum"
	// KindExternal marks types known only by name (engine and marker types).
	KindExternal Kind = "external"
)

// TypeRef is a resolved reference to another type with its rendered form.
// Symbol is nil when the name could not be resolved.
type TypeRef struct {
	Symbol *Symbol
	Args   []string // rendered type arguments
	Text   string   // rendered reference, e.g. "global::Game.IFoo<int>"
}

// Symbol is a type declaration, possibly merged from several partial parts.
type Symbol struct {
	Name       string
	Namespace  string
	Kind       Kind
	TypeParams []string
	Outer      *Symbol
	Parts      []*syntax.Class
	Modifiers  syntax.Modifiers

	// Base is the resolved base class. BaseText keeps an unresolved base as
	// written.
	Base       *TypeRef
	BaseText   string
	Interfaces []TypeRef

	key string
}

// Key is the unique lookup key: namespace, containers and name with generic arity.
func (s *Symbol) Key() string { return s.key }

// QualifiedName is the dotted name without type parameters, e.g. "Game.Outer.Cache".
func (s *Symbol) QualifiedName() string {
	name := s.Name
	for o := s.Outer; o != nil; o = o.Outer {
		name = o.Name + "." + name
	}
	if s.Namespace != "" {
		return s.Namespace + "." + name
	}
	return name
}

// GlobalName is the "global::" qualified name without type parameters.
func (s *Symbol) GlobalName() string { return "global::" + s.QualifiedName() }

// DisplayName is the simple name with its type parameter list.
func (s *Symbol) DisplayName() string {
	if len(s.TypeParams) == 0 {
		return s.Name
	}
	return s.Name + "<" + strings.Join(s.TypeParams, ", ") + ">"
}

// FileKey is Key with generic arity made file-name safe: "Game.Cache`2" becomes "Game.Cache-2".
func (s *Symbol) FileKey() string { return strings.ReplaceAll(s.key, "`", "-") }

// IsExternal reports whether the symbol has no source declaration.
func (s *Symbol) IsExternal() bool { return s.Kind == KindExternal }

// IsPartial reports whether any part is declared partial.
func (s *Symbol) IsPartial() bool { return s.Modifiers.Has("partial") }

// Containers returns the enclosing types from outermost to innermost.
func (s *Symbol) Containers() []*Symbol {
	var out []*Symbol
	for o := s.Outer; o != nil; o = o.Outer {
		out = append([]*Symbol{o}, out...)
	}
	return out
}

// Reopenable reports whether the type and every enclosing type are partial,
// so a generated part can be attached to it.
func (s *Symbol) Reopenable() bool {
	for t := s; t != nil; t = t.Outer {
		if !t.IsPartial() {
			return false
		}
	}
	return true
}

// Keyword is the declaration keyword used to reopen the type.
func (s *Symbol) Keyword() string {
	switch s.Kind {
	case KindStruct, KindRecord, KindInterface:
		return string(s.Kind)
	default:
		return string(KindClass)
	}
}

// Accessibility returns the declared accessibility, or the language default
// (internal for top-level types, private for nested ones).
func (s *Symbol) Accessibility() string {
	for _, p := range s.Parts {
		if a := p.Modifiers.Accessibility(); a != "" {
			return a
		}
	}
	if s.Outer != nil {
		return "private"
	}
	return "internal"
}

// Pos is the position of the first part.
func (s *Symbol) Pos() syntax.Position {
	if len(s.Parts) == 0 {
		return syntax.Position{}
	}
	return s.Parts[0].Pos
}

// Attributes returns the attributes of every part in part order.
func (s *Symbol) Attributes() []syntax.Attribute {
	var out []syntax.Attribute
	for _, p := range s.Parts {
		out = append(out, p.Attributes...)
	}
	return out
}

// Members returns the members of every part in part order.
func (s *Symbol) Members() []*syntax.Member {
	var out []*syntax.Member
	for _, p := range s.Parts {
		out = append(out, p.Members...)
	}
	return out
}

// UsingDirectives returns the using directives of every file declaring a
// part, as sorted "using X;" and "using A = B;" lines without duplicates.
func (s *Symbol) UsingDirectives() []string {
	set := make(map[string]bool)
	for _, p := range s.Parts {
		if p.File == nil {
			continue
		}
		for _, u := range p.File.Usings {
			set["using "+u+";"] = true
		}
		for alias, target := range p.File.Aliases {
			set["using "+alias+" = "+target+";"] = true
		}
	}
	out := make([]string, 0, len(set))
	for u := range set {
		out = append(out, u)
	}
	sort.Strings(out)
	return out
}

// Options configure Build.
type Options struct {
	Engine    *engine.Table
	Externals []string // extra qualified names, e.g. marker attribute types
	Logger    *slog.Logger
}

// Graph is the set of symbols for one pass.
type Graph struct {
	symbols  map[string]*Symbol
	ordered  []*Symbol
	bySyntax map[*syntax.Class]*Symbol
	engine   *engine.Table
	logger   *slog.Logger
}

// Build creates the graph for a set of parsed files.
func Build(files []*syntax.File, opts Options) *Graph {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	g := &Graph{
		symbols:  make(map[string]*Symbol),
		bySyntax: make(map[*syntax.Class]*Symbol),
		engine:   opts.Engine,
		logger:   logger,
	}

	sorted := make([]*syntax.File, len(files))
	copy(sorted, files)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	for _, f := range sorted {
		for _, c := range f.AllTypes() {
			g.declare(c)
		}
	}
	g.registerEngine()
	for _, name := range opts.Externals {
		g.external(name)
	}

	g.ordered = make([]*Symbol, 0, len(g.symbols))
	for _, s := range g.symbols {
		g.ordered = append(g.ordered, s)
	}
	sort.Slice(g.ordered, func(i, j int) bool { return g.ordered[i].key < g.ordered[j].key })

	for _, s := range g.ordered {
		if !s.IsExternal() {
			g.resolveBases(s)
		}
	}

	logger.Debug("Symbol graph built",
		"files", len(files),
		"symbols", len(g.ordered),
	)
	return g
}

func arityKey(name string, arity int) string {
	if arity == 0 {
		return name
	}
	return name + "`" + strconv.Itoa(arity)
}

func (g *Graph) declare(c *syntax.Class) {
	var outer *Symbol
	if c.Outer != nil {
		outer = g.bySyntax[c.Outer]
	}
	local := arityKey(c.Name, len(c.TypeParams))
	var key string
	switch {
	case outer != nil:
		key = outer.key + "." + local
	case c.Namespace != "":
		key = c.Namespace + "." + local
	default:
		key = local
	}

	s, ok := g.symbols[key]
	if !ok {
		s = &Symbol{
			Name:       c.Name,
			Namespace:  c.Namespace,
			Kind:       Kind(c.Kind),
			TypeParams: c.TypeParams,
			Outer:      outer,
			key:        key,
		}
		g.symbols[key] = s
	}
	s.Parts = append(s.Parts, c)
	for _, m := range c.Modifiers {
		if !s.Modifiers.Has(m) {
			s.Modifiers = append(s.Modifiers, m)
		}
	}
	g.bySyntax[c] = s
}

func (g *Graph) external(qualified string) *Symbol {
	if s, ok := g.symbols[qualified]; ok {
		return s
	}
	ns, name := "", qualified
	if i := strings.LastIndex(qualified, "."); i >= 0 {
		ns, name = qualified[:i], qualified[i+1:]
	}
	s := &Symbol{Name: name, Namespace: ns, Kind: KindExternal, key: qualified}
	g.symbols[qualified] = s
	return s
}

func (g *Graph) registerEngine() {
	if g.engine == nil {
		return
	}
	for _, name := range g.engine.Names() {
		g.external(g.engine.Qualified(name))
	}
	for _, name := range g.engine.Names() {
		s := g.symbols[g.engine.Qualified(name)]
		if !s.IsExternal() {
			continue
		}
		if p, ok := g.engine.Parent(name); ok {
			parent := g.symbols[g.engine.Qualified(p)]
			s.Base = &TypeRef{Symbol: parent, Text: parent.GlobalName()}
		}
	}
}

var interfaceName = regexp.MustCompile(`^I[A-Z]`)

func (g *Graph) resolveBases(s *Symbol) {
	seen := make(map[string]bool)
	for _, part := range s.Parts {
		scope := g.ScopeFor(part)
		for i, bt := range part.BaseTypes {
			text := strings.TrimSpace(bt.Text)
			isFirst := i == 0

			ref := g.resolveRef(text, scope)
			if seen[ref.Text] {
				continue
			}
			seen[ref.Text] = true

			canBeBase := (s.Kind == KindClass || s.Kind == KindRecord) && s.Base == nil && s.BaseText == ""
			switch {
			case ref.Symbol != nil && ref.Symbol.Kind == KindInterface:
				s.Interfaces = append(s.Interfaces, ref)
			case ref.Symbol != nil && canBeBase:
				r := ref
				s.Base = &r
			case ref.Symbol != nil:
				s.Interfaces = append(s.Interfaces, ref)
			case canBeBase && isFirst && !interfaceName.MatchString(lastSegment(text)):
				s.BaseText = ref.Text
			default:
				s.Interfaces = append(s.Interfaces, ref)
			}
		}
	}
	if s.Base != nil && s.Base.Symbol == s {
		g.logger.Debug("Ignoring self inheritance", "type", s.key)
		s.Base = nil
	}
}

func lastSegment(text string) string {
	if i := strings.Index(text, "<"); i >= 0 {
		text = text[:i]
	}
	if i := strings.LastIndexAny(text, ".:"); i >= 0 {
		text = text[i+1:]
	}
	return text
}

// resolveRef renders a base-list entry and resolves its symbol.
func (g *Graph) resolveRef(text string, scope Scope) TypeRef {
	e, ok := parseType(text)
	if !ok || e.isTuple() || e.suffix != "" || e.innerArgs() {
		return TypeRef{Text: text}
	}
	last := e.segs[len(e.segs)-1]
	args := make([]string, len(last.args))
	for i, a := range last.args {
		args[i] = g.render(a, scope)
	}
	name, exact := e.dotted()
	sym := g.resolve(name, len(args), exact, scope)
	return TypeRef{Symbol: sym, Args: args, Text: g.render(e, scope)}
}

// Scope is the name-resolution context of a declaration.
type Scope struct {
	Namespace  string
	Usings     []string
	Aliases    map[string]string
	Type       *Symbol  // innermost enclosing type
	TypeParams []string // type parameters in scope
}

// WithTypeParams returns a copy of the scope with extra type parameters.
func (sc Scope) WithTypeParams(params ...string) Scope {
	if len(params) == 0 {
		return sc
	}
	out := sc
	out.TypeParams = append(append([]string{}, sc.TypeParams...), params...)
	return out
}

func (sc Scope) isTypeParam(name string) bool {
	for _, p := range sc.TypeParams {
		if p == name {
			return true
		}
	}
	return false
}

// ScopeFor returns the scope inside a class part: its namespace, the usings
// of its file, its type and every type parameter of it and its containers.
func (g *Graph) ScopeFor(c *syntax.Class) Scope {
	sc := Scope{Namespace: c.Namespace, Type: g.bySyntax[c]}
	if c.File != nil {
		sc.Usings = c.File.Usings
		sc.Aliases = c.File.Aliases
	}
	for _, o := range append(c.Containers(), c) {
		sc.TypeParams = append(sc.TypeParams, o.TypeParams...)
	}
	return sc
}

// SymbolFor returns the symbol declared by a class part.
func (g *Graph) SymbolFor(c *syntax.Class) (*Symbol, bool) {
	s, ok := g.bySyntax[c]
	return s, ok
}

// Lookup finds a symbol by key ("Ns.Outer.Name`N").
func (g *Graph) Lookup(key string) (*Symbol, bool) {
	s, ok := g.symbols[key]
	return s, ok
}

// Symbols returns every symbol sorted by key.
func (g *Graph) Symbols() []*Symbol { return g.ordered }

// Engine returns the engine type table the graph was built with.
func (g *Graph) Engine() *engine.Table { return g.engine }

// Resolve finds the type a (possibly dotted) name refers to from scope.
// The arity is the number of type arguments written on the last segment.
func (g *Graph) Resolve(name string, arity int, scope Scope) (*Symbol, bool) {
	exact := false
	if rest, ok := strings.CutPrefix(name, "global::"); ok {
		name, exact = rest, true
	}
	s := g.resolve(name, arity, exact, scope)
	return s, s != nil
}

func (g *Graph) resolve(name string, arity int, exact bool, scope Scope) *Symbol {
	local := arityKey(name, arity)
	if exact {
		return g.symbols[local]
	}

	head, rest, dotted := strings.Cut(name, ".")
	if target, ok := scope.Aliases[head]; ok {
		full := target
		if dotted {
			full += "." + rest
		}
		if s := g.symbols[arityKey(full, arity)]; s != nil {
			return s
		}
	}

	// Nested types of the enclosing types and their ancestors.
	for t := scope.Type; t != nil; t = t.Outer {
		for a := t; a != nil; a = baseSymbol(a) {
			if s := g.symbols[a.key+"."+local]; s != nil {
				return s
			}
		}
	}

	// Namespace chain from innermost to global.
	parts := strings.Split(scope.Namespace, ".")
	if scope.Namespace == "" {
		parts = nil
	}
	for i := len(parts); i >= 0; i-- {
		prefix := strings.Join(parts[:i], ".")
		key := local
		if prefix != "" {
			key = prefix + "." + local
		}
		if s := g.symbols[key]; s != nil {
			return s
		}
	}

	for _, u := range scope.Usings {
		if s := g.symbols[u+"."+local]; s != nil {
			return s
		}
	}
	return nil
}

func baseSymbol(s *Symbol) *Symbol {
	if s.Base == nil {
		return nil
	}
	return s.Base.Symbol
}

// RenderType renders a type as written into its fully qualified form.
// Keyword types and type parameters stay as written, resolved names become
// "global::" qualified, unresolved names keep their spelling. Generic
// arguments are rendered recursively.
func (g *Graph) RenderType(text string, scope Scope) string {
	text = strings.TrimSpace(text)
	e, ok := parseType(text)
	if !ok {
		return text
	}
	return g.render(e, scope)
}

func (g *Graph) render(e *typeExpr, scope Scope) string {
	var sb strings.Builder
	if e.isTuple() {
		sb.WriteString("(")
		for i, el := range e.tuple {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(g.render(el.typ, scope))
			if el.name != "" {
				sb.WriteString(" " + el.name)
			}
		}
		sb.WriteString(")")
		sb.WriteString(e.suffix)
		return sb.String()
	}

	last := e.segs[len(e.segs)-1]
	if len(e.segs) == 1 && len(last.args) == 0 && (IsKeywordType(last.name) || scope.isTypeParam(last.name)) {
		return last.name + e.suffix
	}

	if !e.innerArgs() {
		name, exact := e.dotted()
		if s := g.resolve(name, len(last.args), exact, scope); s != nil {
			sb.WriteString(s.GlobalName())
			writeArgs(&sb, g, last.args, scope)
			sb.WriteString(e.suffix)
			return sb.String()
		}
	}

	for _, seg := range e.segs {
		sb.WriteString(seg.sep)
		sb.WriteString(seg.name)
		writeArgs(&sb, g, seg.args, scope)
	}
	sb.WriteString(e.suffix)
	return sb.String()
}

func writeArgs(sb *strings.Builder, g *Graph, args []*typeExpr, scope Scope) {
	if len(args) == 0 {
		return
	}
	sb.WriteString("<")
	for i, a := range args {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(g.render(a, scope))
	}
	sb.WriteString(">")
}

// maxDepth bounds ancestor walks over malformed (cyclic) source.
const maxDepth = 256

// BaseChain returns the ancestors of s from its direct base upwards.
func (g *Graph) BaseChain(s *Symbol) []*Symbol {
	var out []*Symbol
	for b := baseSymbol(s); b != nil && len(out) < maxDepth; b = baseSymbol(b) {
		out = append(out, b)
	}
	return out
}

// IsDescendantOf reports whether ancestor appears in the base chain of s.
func (g *Graph) IsDescendantOf(s, ancestor *Symbol) bool {
	for _, b := range g.BaseChain(s) {
		if b == ancestor {
			return true
		}
	}
	return false
}

// IsDescendantOfName is IsDescendantOf with the ancestor looked up by key.
func (g *Graph) IsDescendantOfName(s *Symbol, key string) bool {
	a, ok := g.symbols[key]
	return ok && g.IsDescendantOf(s, a)
}

// Ancestor is a base class reached from a symbol, with its type arguments
// expressed in terms of the starting symbol's type parameters.
type Ancestor struct {
	Symbol *Symbol
	Args   []string
}

// Ancestors returns the base chain with substituted type arguments, so for
// "class A<T> : B<List<T>>" and "class B<U> : C<U>" the chain of A is
// [B<List<T>>, C<List<T>>].
func (g *Graph) Ancestors(s *Symbol) []Ancestor {
	var out []Ancestor
	cur := s
	subst := map[string]string{}
	for len(out) < maxDepth && cur.Base != nil && cur.Base.Symbol != nil {
		b := cur.Base
		args := make([]string, len(b.Args))
		for i, a := range b.Args {
			args[i] = substitute(a, subst)
		}
		out = append(out, Ancestor{Symbol: b.Symbol, Args: args})
		next := make(map[string]string, len(args))
		for i, p := range b.Symbol.TypeParams {
			if i < len(args) {
				next[p] = args[i]
			}
		}
		subst = next
		cur = b.Symbol
	}
	return out
}

// AllInterfaces returns every interface s implements: its own declared
// interfaces, those of its ancestors, and the bases of each interface, with
// type arguments substituted, deduplicated by rendered text.
func (g *Graph) AllInterfaces(s *Symbol) []TypeRef {
	var out []TypeRef
	seen := make(map[string]bool)
	var visit func(ref TypeRef, depth int)
	visit = func(ref TypeRef, depth int) {
		if seen[ref.Text] || depth > maxDepth {
			return
		}
		seen[ref.Text] = true
		out = append(out, ref)
		if ref.Symbol == nil {
			return
		}
		m := paramMap(ref.Symbol, ref.Args)
		for _, inner := range ref.Symbol.Interfaces {
			visit(substituteRef(inner, m), depth+1)
		}
	}

	for _, ref := range s.Interfaces {
		visit(ref, 0)
	}
	for _, a := range g.Ancestors(s) {
		m := paramMap(a.Symbol, a.Args)
		for _, ref := range a.Symbol.Interfaces {
			visit(substituteRef(ref, m), 0)
		}
	}
	return out
}

func paramMap(s *Symbol, args []string) map[string]string {
	m := make(map[string]string, len(args))
	for i, p := range s.TypeParams {
		if i < len(args) {
			m[p] = args[i]
		}
	}
	return m
}

func substituteRef(ref TypeRef, m map[string]string) TypeRef {
	if len(m) == 0 {
		return ref
	}
	out := TypeRef{Symbol: ref.Symbol, Text: substitute(ref.Text, m)}
	for _, a := range ref.Args {
		out.Args = append(out.Args, substitute(a, m))
	}
	return out
}

// String is a short description for logs.
func (s *Symbol) String() string {
	return fmt.Sprintf("%s %s", s.Kind, s.key)
}
