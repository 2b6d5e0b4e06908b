// Package projectconfig reads the engine's project.godot file and derives
// typed constants from it: one string constant per input action and one
// flags enum per layer category.
//
// The file is INI-like. Values may span several lines while a brace,
// bracket or parenthesis is open, as input action definitions do. Lines
// that cannot be read are skipped; parsing never fails.
package projectconfig

import (
	"strings"
)

// Well-known section names.
const (
	SectionInput      = "input"
	SectionLayerNames = "layer_names"
)

// Entry is one key=value pair. Value is the raw text after "=", with
// continuation lines joined by "\n".
type Entry struct {
	Key   string
	Value string
	Line  int
}

// Section is a [name] header and its entries. Entries before the first
// header belong to a section with an empty name.
type Section struct {
	Name    string
	Line    int
	Entries []Entry
}

// Document is a parsed project file.
type Document struct {
	Sections []*Section
	// Skipped counts lines that were neither headers, entries nor comments.
	Skipped int
}

// Section returns the entries of every section called name, in file order.
func (d *Document) Section(name string) []Entry {
	var out []Entry
	for _, s := range d.Sections {
		if s.Name == name {
			out = append(out, s.Entries...)
		}
	}
	return out
}

// Parse reads project file text. CRLF, CR and LF line endings are accepted.
func Parse(text string) *Document {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	lines := strings.Split(text, "\n")

	doc := &Document{}
	cur := &Section{}
	doc.Sections = append(doc.Sections, cur)

	for i := 0; i < len(lines); i++ {
		line := strings.TrimSpace(strings.TrimPrefix(lines[i], "\ufeff"))
		switch {
		case line == "", line[0] == ';', line[0] == '#':
			continue
		case line[0] == '[' && line[len(line)-1] == ']':
			cur = &Section{Name: strings.TrimSpace(line[1 : len(line)-1]), Line: i + 1}
			doc.Sections = append(doc.Sections, cur)
			continue
		}

		eq := strings.IndexByte(line, '=')
		if eq <= 0 {
			doc.Skipped++
			continue
		}
		entry := Entry{Key: strings.TrimSpace(line[:eq]), Line: i + 1}
		value := strings.TrimSpace(line[eq+1:])

		depth := nesting(value)
		for depth > 0 && i+1 < len(lines) {
			i++
			value += "\n" + lines[i]
			depth = nesting(value)
		}
		entry.Value = value
		if entry.Key == "" {
			doc.Skipped++
			continue
		}
		cur.Entries = append(cur.Entries, entry)
	}
	return doc
}

// nesting returns how many brackets remain open in s, ignoring brackets
// inside string literals.
func nesting(s string) int {
	depth := 0
	inString := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch c {
			case '\\':
				i++
			case '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '[', '(':
			depth++
		case '}', ']', ')':
			depth--
		}
	}
	return depth
}

// Unquote returns a value with its surrounding double quotes and escapes
// removed. Values that are not a single string literal are returned trimmed.
func Unquote(value string) string {
	v := strings.TrimSpace(value)
	if len(v) < 2 || v[0] != '"' || v[len(v)-1] != '"' {
		return v
	}
	var sb strings.Builder
	for i := 1; i < len(v)-1; i++ {
		c := v[i]
		if c == '\\' && i+1 < len(v)-1 {
			i++
			switch v[i] {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			default:
				sb.WriteByte(v[i])
			}
			continue
		}
		sb.WriteByte(c)
	}
	return sb.String()
}
