// Package candidate is the two-phase gate in front of every generator: a
// cheap syntactic predicate over declaration shape, then semantic
// resolution of the nodes that pass it.
package candidate

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"gdgen/internal/symbols"
	"gdgen/internal/syntax"
)

// Predicate is a pure structural test over a syntax node.
type Predicate func(n syntax.Node) bool

// All combines predicates with logical AND.
func All(ps ...Predicate) Predicate {
	return func(n syntax.Node) bool {
		for _, p := range ps {
			if !p(n) {
				return false
			}
		}
		return true
	}
}

// IsClass matches class declarations (records, structs and interfaces excluded).
func IsClass(n syntax.Node) bool {
	c, ok := n.(*syntax.Class)
	return ok && c.Kind == syntax.KindClass
}

// HasAttributes matches nodes carrying at least one attribute.
func HasAttributes(n syntax.Node) bool {
	return len(n.AttributeList()) > 0
}

// HasModifiers matches nodes carrying every given modifier.
func HasModifiers(required ...string) Predicate {
	return func(n syntax.Node) bool {
		mods := n.ModifierList()
		for _, r := range required {
			if !mods.Has(r) {
				return false
			}
		}
		return true
	}
}

// LacksModifiers matches nodes carrying none of the given modifiers.
func LacksModifiers(forbidden ...string) Predicate {
	return func(n syntax.Node) bool {
		return !n.ModifierList().Has(forbidden...)
	}
}

// HasBaseList matches type declarations with a non-empty base list.
func HasBaseList(n syntax.Node) bool {
	c, ok := n.(*syntax.Class)
	return ok && len(c.BaseTypes) > 0
}

// HasMembers matches type declarations with at least one member.
func HasMembers(n syntax.Node) bool {
	c, ok := n.(*syntax.Class)
	return ok && len(c.Members) > 0
}

// HasAttributedMethod matches type declarations with at least one method
// carrying an attribute.
func HasAttributedMethod(n syntax.Node) bool {
	c, ok := n.(*syntax.Class)
	return ok && c.HasAttributedMethod()
}

// BindingError reports a node that passed the syntactic gate but has no
// semantic declaration. It only ever causes that node to be skipped.
type BindingError struct {
	Pos    syntax.Position
	Reason string
}

func (e *BindingError) Error() string {
	return fmt.Sprintf("%s: cannot bind candidate: %s", e.Pos, e.Reason)
}

// Resolve returns the declaration of a class node, or of the type owning a
// member node.
func Resolve(n syntax.Node, g *symbols.Graph) (*symbols.Symbol, error) {
	var c *syntax.Class
	switch v := n.(type) {
	case *syntax.Class:
		c = v
	case *syntax.Member:
		c = v.Owner
	}
	if c == nil {
		return nil, &BindingError{Pos: n.Position(), Reason: "node has no declaring type"}
	}
	s, ok := g.SymbolFor(c)
	if !ok {
		return nil, &BindingError{Pos: n.Position(), Reason: fmt.Sprintf("no symbol for %s", c.Name)}
	}
	return s, nil
}

// Batch is the complete, order-stable set of candidates of one generator
// for a pass.
type Batch[T any] []T

// Collector runs the gate over every class in a set of files.
type Collector struct {
	Graph  *symbols.Graph
	Files  []*syntax.File
	Logger *slog.Logger
}

// Collect returns, in source order, the transform result of every symbol
// having at least one part that passes pred and resolves. Partial parts of
// the same type are visited once. transform is the semantic test; it returns
// false to drop a symbol. Binding failures are logged and skipped.
func Collect[T any](ctx context.Context, c Collector, pred Predicate, transform func(*symbols.Symbol) (T, bool)) (Batch[T], error) {
	files := make([]*syntax.File, len(c.Files))
	copy(files, c.Files)
	sort.SliceStable(files, func(i, j int) bool { return files[i].Path < files[j].Path })

	seen := make(map[*symbols.Symbol]bool)
	var syms []*symbols.Symbol
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, cls := range f.AllTypes() {
			if !pred(cls) {
				continue
			}
			s, err := Resolve(cls, c.Graph)
			if err != nil {
				if c.Logger != nil {
					c.Logger.Debug("Skipping candidate", "error", err.Error())
				}
				continue
			}
			if seen[s] {
				continue
			}
			seen[s] = true
			syms = append(syms, s)
		}
	}

	sort.SliceStable(syms, func(i, j int) bool { return syms[i].Pos().Before(syms[j].Pos()) })

	out := make(Batch[T], 0, len(syms))
	for _, s := range syms {
		if v, ok := transform(s); ok {
			out = append(out, v)
		}
	}
	return out, nil
}
