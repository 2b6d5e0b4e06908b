package symbols

import (
	"strings"
	"unicode"
)

// keywordTypes are the C# predefined type keywords; they never resolve.
var keywordTypes = map[string]bool{
	"bool": true, "byte": true, "sbyte": true, "char": true, "decimal": true,
	"double": true, "float": true, "int": true, "uint": true, "nint": true,
	"nuint": true, "long": true, "ulong": true, "short": true, "ushort": true,
	"object": true, "string": true, "void": true, "dynamic": true, "var": true,
}

// IsKeywordType reports whether name is a predefined type keyword.
func IsKeywordType(name string) bool { return keywordTypes[name] }

// typeExpr is a parsed type as written: a dotted, possibly generic name or a
// tuple, followed by nullable/array/pointer suffixes.
type typeExpr struct {
	segs   []segment
	tuple  []tupleElem
	suffix string
}

type segment struct {
	sep  string // "", "." or "::"
	name string
	args []*typeExpr
}

type tupleElem struct {
	typ  *typeExpr
	name string
}

func (e *typeExpr) isTuple() bool { return e.tuple != nil }

// dotted returns the segment names joined with ".", dropping a leading
// "global::" qualifier. exact reports whether that qualifier was present.
func (e *typeExpr) dotted() (name string, exact bool) {
	segs := e.segs
	if len(segs) > 1 && segs[0].name == "global" && segs[1].sep == "::" {
		segs = segs[1:]
		exact = true
	}
	names := make([]string, len(segs))
	for i, s := range segs {
		names[i] = s.name
	}
	return strings.Join(names, "."), exact
}

// innerArgs reports whether a non-final segment carries type arguments.
func (e *typeExpr) innerArgs() bool {
	for _, s := range e.segs[:len(e.segs)-1] {
		if len(s.args) > 0 {
			return true
		}
	}
	return false
}

type tokenizer struct {
	toks []string
	pos  int
}

func tokenize(s string) []string {
	var toks []string
	for i := 0; i < len(s); {
		r := rune(s[i])
		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			i++
		case r == ':' && i+1 < len(s) && s[i+1] == ':':
			toks = append(toks, "::")
			i += 2
		case isIdentByte(s[i]):
			j := i
			for j < len(s) && isIdentByte(s[j]) {
				j++
			}
			toks = append(toks, s[i:j])
			i = j
		default:
			toks = append(toks, s[i:i+1])
			i++
		}
	}
	return toks
}

func isIdentByte(b byte) bool {
	return b == '_' || b == '@' || b >= 0x80 || unicode.IsLetter(rune(b)) || unicode.IsDigit(rune(b))
}

func isIdent(tok string) bool {
	return tok != "" && isIdentByte(tok[0])
}

func (t *tokenizer) peek() string {
	if t.pos < len(t.toks) {
		return t.toks[t.pos]
	}
	return ""
}

func (t *tokenizer) next() string {
	tok := t.peek()
	t.pos++
	return tok
}

// parseType parses a full type string; ok is false on any syntax it does not
// understand, in which case callers keep the text as written.
func parseType(s string) (*typeExpr, bool) {
	t := &tokenizer{toks: tokenize(s)}
	e, ok := t.parse()
	if !ok || t.pos != len(t.toks) {
		return nil, false
	}
	return e, true
}

func (t *tokenizer) parse() (*typeExpr, bool) {
	e := &typeExpr{}
	if t.peek() == "(" {
		t.next()
		for {
			elem, ok := t.parse()
			if !ok {
				return nil, false
			}
			te := tupleElem{typ: elem}
			if isIdent(t.peek()) {
				te.name = t.next()
			}
			e.tuple = append(e.tuple, te)
			if t.peek() == "," {
				t.next()
				continue
			}
			if t.next() != ")" {
				return nil, false
			}
			break
		}
	} else {
		sep := ""
		for {
			name := t.next()
			if !isIdent(name) {
				return nil, false
			}
			seg := segment{sep: sep, name: name}
			if t.peek() == "<" {
				t.next()
				for {
					arg, ok := t.parse()
					if !ok {
						return nil, false
					}
					seg.args = append(seg.args, arg)
					if t.peek() == "," {
						t.next()
						continue
					}
					if t.next() != ">" {
						return nil, false
					}
					break
				}
			}
			e.segs = append(e.segs, seg)
			if p := t.peek(); p == "." || p == "::" {
				sep = t.next()
				continue
			}
			break
		}
	}
	var suffix strings.Builder
	for {
		switch t.peek() {
		case "?", "*":
			suffix.WriteString(t.next())
		case "[":
			suffix.WriteString(t.next())
			for t.peek() == "," {
				suffix.WriteString(t.next())
			}
			if t.peek() != "]" {
				return nil, false
			}
			suffix.WriteString(t.next())
		default:
			e.suffix = suffix.String()
			return e, true
		}
	}
}

// substitute replaces whole identifiers found in m, leaving qualified member
// segments (after "." or "::") untouched.
func substitute(text string, m map[string]string) string {
	if len(m) == 0 {
		return text
	}
	var out strings.Builder
	prev := ""
	for i := 0; i < len(text); {
		if !isIdentByte(text[i]) {
			out.WriteByte(text[i])
			if text[i] != ' ' {
				prev = text[i : i+1]
			}
			i++
			continue
		}
		j := i
		for j < len(text) && isIdentByte(text[j]) {
			j++
		}
		word := text[i:j]
		if repl, ok := m[word]; ok && prev != "." && prev != ":" {
			out.WriteString(repl)
		} else {
			out.WriteString(word)
		}
		prev = word
		i = j
	}
	return out.String()
}
