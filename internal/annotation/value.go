package annotation

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"gdgen/internal/textbuilder"
)

// Value is an evaluated attribute argument.
//
// Resolved is false when the expression could not be evaluated at
// generation time (a constant defined elsewhere, string interpolation...).
// Expr always keeps the source text.
type Value struct {
	Kind     ValueKind
	Bool     bool
	Int      int64
	Str      string // string value, or enum member name
	Null     bool
	Resolved bool
	Expr     string
}

func (v Value) String() string {
	switch {
	case v.Null:
		return "null"
	case !v.Resolved:
		return v.Expr
	}
	switch v.Kind {
	case KindBool:
		return strconv.FormatBool(v.Bool)
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindString:
		return textbuilder.Quote(v.Str)
	case KindEnum:
		return v.Str
	}
	return v.Expr
}

// fits reports whether the value can be passed for a parameter of kind k.
// Null and unresolved values fit anything; enums need the named enum type.
func (v Value) fits(p Param) bool {
	if v.Null || !v.Resolved {
		return true
	}
	switch p.Kind {
	case KindEnum:
		return v.Kind == KindEnum && (v.Expr == "" || enumTypeOf(v.Expr) == "" || enumTypeOf(v.Expr) == p.Enum)
	default:
		return v.Kind == p.Kind
	}
}

// enumTypeOf returns the segment before the member in "X.Enum.Member".
func enumTypeOf(expr string) string {
	segs := strings.Split(stripGlobal(expr), ".")
	if len(segs) < 2 {
		return ""
	}
	return segs[len(segs)-2]
}

func stripGlobal(s string) string {
	return strings.TrimPrefix(strings.TrimSpace(s), "global::")
}

// Evaluate evaluates a constant attribute argument expression. enums maps
// enum type names to their members.
func Evaluate(expr string, enums map[string]map[string]int64) Value {
	text := strings.TrimSpace(expr)
	v := evaluate(text, enums)
	v.Expr = text
	return v
}

func evaluate(s string, enums map[string]map[string]int64) Value {
	unresolved := Value{}
	if s == "" {
		return unresolved
	}
	switch s {
	case "null", "default":
		return Value{Null: true}
	case "true":
		return Value{Kind: KindBool, Bool: true, Resolved: true}
	case "false":
		return Value{Kind: KindBool, Resolved: true}
	}

	// Cast or parenthesized expression.
	if s[0] == '(' {
		end := matchParen(s)
		if end < 0 {
			return unresolved
		}
		inner := strings.TrimSpace(s[1:end])
		rest := strings.TrimSpace(s[end+1:])
		if rest == "" {
			return evaluate(inner, enums)
		}
		return cast(inner, evaluate(rest, enums), enums)
	}

	if s[0] == '-' || s[0] == '+' {
		v := evaluate(strings.TrimSpace(s[1:]), enums)
		if v.Resolved && v.Kind == KindInt {
			if s[0] == '-' {
				v.Int = -v.Int
			}
			return v
		}
		return unresolved
	}

	if s[0] == '"' || strings.HasPrefix(s, "@\"") {
		if str, ok := unquote(s); ok {
			return Value{Kind: KindString, Str: str, Resolved: true}
		}
		return unresolved
	}

	if s[0] >= '0' && s[0] <= '9' {
		if n, ok := parseInt(s); ok {
			return Value{Kind: KindInt, Int: n, Resolved: true}
		}
		return unresolved
	}

	if strings.HasPrefix(s, "nameof(") && strings.HasSuffix(s, ")") {
		arg := strings.TrimSpace(s[len("nameof(") : len(s)-1])
		segs := strings.Split(stripGlobal(arg), ".")
		return Value{Kind: KindString, Str: segs[len(segs)-1], Resolved: true}
	}

	// Enum member access: [qualifier.]Enum.Member
	segs := strings.Split(stripGlobal(s), ".")
	if len(segs) >= 2 {
		typ, member := segs[len(segs)-2], segs[len(segs)-1]
		if members, ok := enums[typ]; ok {
			if n, ok := members[member]; ok {
				return Value{Kind: KindEnum, Int: n, Str: member, Resolved: true}
			}
		}
	}
	return unresolved
}

func cast(typ string, v Value, enums map[string]map[string]int64) Value {
	if !v.Resolved {
		return Value{}
	}
	switch typ {
	case "int", "uint", "long", "ulong", "short", "ushort", "byte", "sbyte":
		if v.Kind == KindInt || v.Kind == KindEnum {
			return Value{Kind: KindInt, Int: v.Int, Resolved: true}
		}
	case "bool":
		if v.Kind == KindBool {
			return v
		}
	case "string":
		if v.Kind == KindString || v.Null {
			return v
		}
	default:
		segs := strings.Split(stripGlobal(typ), ".")
		name := segs[len(segs)-1]
		if members, ok := enums[name]; ok && (v.Kind == KindInt || v.Kind == KindEnum) {
			member := ""
			for m, n := range members {
				if n == v.Int && (member == "" || m < member) {
					member = m
				}
			}
			return Value{Kind: KindEnum, Int: v.Int, Str: member, Resolved: true}
		}
	}
	return Value{}
}

func matchParen(s string) int {
	depth := 0
	inString := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			if c == '\\' {
				i++
			} else if c == '"' {
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// parseInt parses decimal, hex (0x) and binary (0b) literals with digit
// separators and integer suffixes.
func parseInt(s string) (int64, bool) {
	s = strings.TrimRight(s, "uUlL")
	s = strings.ReplaceAll(s, "_", "")
	base := 10
	switch {
	case strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X"):
		base, s = 16, s[2:]
	case strings.HasPrefix(s, "0b") || strings.HasPrefix(s, "0B"):
		base, s = 2, s[2:]
	}
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseUint(s, base, 64)
	if err != nil {
		return 0, false
	}
	return int64(n), true
}

// unquote decodes a regular or verbatim C# string literal.
func unquote(s string) (string, bool) {
	if strings.HasPrefix(s, "@\"") {
		if len(s) < 3 || s[len(s)-1] != '"' {
			return "", false
		}
		return strings.ReplaceAll(s[2:len(s)-1], `""`, `"`), true
	}
	if len(s) < 2 || s[len(s)-1] != '"' {
		return "", false
	}
	body := s[1 : len(s)-1]
	var sb strings.Builder
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c == '"' {
			return "", false
		}
		if c != '\\' {
			sb.WriteByte(c)
			continue
		}
		i++
		if i >= len(body) {
			return "", false
		}
		switch body[i] {
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case 'r':
			sb.WriteByte('\r')
		case '0':
			sb.WriteByte(0)
		case '\\', '"', '\'':
			sb.WriteByte(body[i])
		case 'u':
			if i+4 >= len(body) {
				return "", false
			}
			n, err := strconv.ParseUint(body[i+1:i+5], 16, 32)
			if err != nil {
				return "", false
			}
			var buf [utf8.UTFMax]byte
			sb.Write(buf[:utf8.EncodeRune(buf[:], rune(n))])
			i += 4
		default:
			return "", false
		}
	}
	return sb.String(), true
}
