// Package textbuilder assembles generated C# text. It tracks brace depth so
// every generator produces balanced output, and hands out close callbacks for
// scopes opened by namespace and type declarations.
package textbuilder

import (
	"errors"
	"fmt"
	"strings"
)

// AutoGeneratedHeader is the first line of every emitted unit.
const AutoGeneratedHeader = "// <auto-generated/>"

// ErrUnbalanced is returned by Text when braces do not pair up.
var ErrUnbalanced = errors.New("textbuilder: unbalanced braces")

// Builder is an append-only text assembler. The zero value is not usable;
// call New.
type Builder struct {
	sb     strings.Builder
	indent string
	depth  int
	err    error
}

// New returns a builder that indents nested scopes with four spaces.
func New() *Builder {
	return &Builder{indent: "    "}
}

// Line writes one indented line. An empty string writes an empty line
// without trailing whitespace.
func (b *Builder) Line(s string) *Builder {
	if s != "" {
		for i := 0; i < b.depth; i++ {
			b.sb.WriteString(b.indent)
		}
		b.sb.WriteString(s)
	}
	b.sb.WriteByte('\n')
	return b
}

// Linef writes one formatted, indented line.
func (b *Builder) Linef(format string, args ...any) *Builder {
	return b.Line(fmt.Sprintf(format, args...))
}

// LineC writes a statement line terminated by a semicolon.
func (b *Builder) LineC(s string) *Builder {
	return b.Line(s + ";")
}

// LineCf is the formatted form of LineC.
func (b *Builder) LineCf(format string, args ...any) *Builder {
	return b.LineC(fmt.Sprintf(format, args...))
}

// Blank writes an empty line.
func (b *Builder) Blank() *Builder { return b.Line("") }

// Lines writes each element as its own line.
func (b *Builder) Lines(lines ...string) *Builder {
	for _, l := range lines {
		b.Line(l)
	}
	return b
}

// Open writes "{" and indents what follows.
func (b *Builder) Open() *Builder {
	b.Line("{")
	b.depth++
	return b
}

// Close writes "}" for the innermost open brace.
func (b *Builder) Close() *Builder { return b.close("}") }

// CloseC writes "};".
func (b *Builder) CloseC() *Builder { return b.close("};") }

func (b *Builder) close(tok string) *Builder {
	if b.depth == 0 {
		if b.err == nil {
			b.err = fmt.Errorf("%w: close without open", ErrUnbalanced)
		}
		return b
	}
	b.depth--
	return b.Line(tok)
}

// Block writes a declaration line followed by an opening brace and returns
// the function that closes it.
func (b *Builder) Block(decl string) func() {
	b.Line(decl)
	b.Open()
	depth := b.depth
	return func() {
		if b.depth != depth && b.err == nil {
			b.err = fmt.Errorf("%w: %q closed at depth %d, opened at %d", ErrUnbalanced, decl, b.depth, depth)
		}
		b.Close()
	}
}

// Blockf is the formatted form of Block.
func (b *Builder) Blockf(format string, args ...any) func() {
	return b.Block(fmt.Sprintf(format, args...))
}

// Header writes the auto-generated marker comment.
func (b *Builder) Header() *Builder { return b.Line(AutoGeneratedHeader) }

// Nullable enables the nullable annotation context for the unit.
func (b *Builder) Nullable() *Builder { return b.Line("#nullable enable") }

// Namespace opens a block-scoped namespace. An empty name is the global
// namespace and returns a no-op closer.
func (b *Builder) Namespace(name string) func() {
	if name == "" {
		return func() {}
	}
	return b.Block("namespace " + name)
}

// FileScopedNamespace writes "namespace X;". It must precede any type.
func (b *Builder) FileScopedNamespace(name string) *Builder {
	if name == "" {
		return b
	}
	return b.LineC("namespace " + name)
}

// Attribute writes "[name]".
func (b *Builder) Attribute(name string) *Builder {
	return b.Line("[" + name + "]")
}

// Region wraps subsequent lines in #region/#endregion and returns the closer.
func (b *Builder) Region(name string) func() {
	b.Line("#region " + name)
	return func() { b.Line("#endregion") }
}

// Comment writes a single-line comment.
func (b *Builder) Comment(s string) *Builder { return b.Line("//" + s) }

// Text returns the assembled text, or an error if braces are unbalanced.
func (b *Builder) Text() (string, error) {
	if b.err != nil {
		return "", b.err
	}
	if b.depth != 0 {
		return "", fmt.Errorf("%w: %d scope(s) left open", ErrUnbalanced, b.depth)
	}
	return b.sb.String(), nil
}

// String returns the text written so far regardless of balance.
func (b *Builder) String() string { return b.sb.String() }
