// Package scaffold writes the parts every generated unit shares: the
// preamble and the partial declarations that reopen a user type.
package scaffold

import (
	"gdgen/internal/symbols"
	"gdgen/internal/textbuilder"
)

// Preamble writes the auto-generated header, the nullable context and the
// using directives of the files declaring sym.
func Preamble(b *textbuilder.Builder, sym *symbols.Symbol) {
	b.Header().Nullable().Blank()
	if usings := sym.UsingDirectives(); len(usings) > 0 {
		b.Lines(usings...).Blank()
	}
}

// FileScoped begins a unit that reopens sym under a file-scoped namespace.
func FileScoped(sym *symbols.Symbol) *textbuilder.Builder {
	b := textbuilder.New()
	Preamble(b, sym)
	if sym.Namespace != "" {
		b.FileScopedNamespace(sym.Namespace).Blank()
	}
	return b
}

// Reopen opens a partial declaration of sym nested in partial declarations
// of its containers and returns the closer for all of them.
func Reopen(b *textbuilder.Builder, sym *symbols.Symbol) func() {
	var closers []func()
	for _, outer := range sym.Containers() {
		closers = append(closers, b.Blockf("partial %s %s", outer.Keyword(), outer.DisplayName()))
	}
	closers = append(closers, b.Blockf("partial %s %s", sym.Keyword(), sym.DisplayName()))
	return func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
}

// NotReopenable returns the outermost type of sym's chain that is not
// partial, or nil when sym can be reopened.
func NotReopenable(sym *symbols.Symbol) *symbols.Symbol {
	var culprit *symbols.Symbol
	for t := sym; t != nil; t = t.Outer {
		if !t.IsPartial() {
			culprit = t
		}
	}
	return culprit
}
