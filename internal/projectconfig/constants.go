package projectconfig

import (
	"strconv"
	"strings"
	"unicode"
)

// InputConstant is one generated input action constant.
type InputConstant struct {
	Name    string
	Value   string
	Builtin bool
}

// InputConstants returns the constants for the user's input actions followed
// by the built-in ones, deduplicated by constant name. A reserved-prefix key
// that is a known built-in is left to the built-in list; unknown
// reserved-prefix keys are user actions. A key with no identifier
// characters is named after its 1-based position in the section, as _<n>.
func InputConstants(doc *Document, t *Tables) []InputConstant {
	var out []InputConstant
	seen := make(map[string]bool)
	add := func(key string, builtin bool, pos int) {
		name := strings.ToUpper(Identifier(strings.ReplaceAll(key, ".", "_")))
		if name == "" {
			name = "_" + strconv.Itoa(pos)
		}
		if seen[name] {
			return
		}
		seen[name] = true
		out = append(out, InputConstant{Name: name, Value: key, Builtin: builtin})
	}

	for i, e := range doc.Section(SectionInput) {
		key := Unquote(e.Key)
		if t.Reserved(key) && t.Builtin(key) {
			continue
		}
		add(key, false, i+1)
	}
	for i, key := range t.BuiltinInputs {
		add(key, true, i+1)
	}
	return out
}

// LayerEnum is the flags enum of one layer category. Members[i] names the
// bit 1 << i.
type LayerEnum struct {
	Category LayerCategory
	Members  []string
}

// LayerEnums returns one enum per category, in table order. Slots without a
// name are called Layer<n>. Entries of unknown categories and entries whose
// index cannot be read or is out of range are skipped.
func LayerEnums(doc *Document, t *Tables) []LayerEnum {
	labels := make(map[string][]string, len(t.Layers))
	for _, l := range t.Layers {
		labels[l.Key] = make([]string, l.Size)
	}

	for _, e := range doc.Section(SectionLayerNames) {
		cat, name, ok := strings.Cut(Unquote(e.Key), "/")
		if !ok {
			continue
		}
		slots, ok := labels[cat]
		if !ok {
			continue
		}
		n, ok := layerIndex(name)
		if !ok || n < 1 || n > len(slots) {
			continue
		}
		slots[n-1] = Unquote(e.Value)
	}

	out := make([]LayerEnum, 0, len(t.Layers))
	for _, l := range t.Layers {
		members := make([]string, l.Size)
		used := map[string]bool{"None": true}
		for i, label := range labels[l.Key] {
			name := ""
			if strings.TrimSpace(label) != "" {
				name = Identifier(label)
			}
			if name == "" {
				name = "Layer" + strconv.Itoa(i+1)
			}
			if used[name] {
				name += "_" + strconv.Itoa(i+1)
			}
			used[name] = true
			members[i] = name
		}
		out = append(out, LayerEnum{Category: l, Members: members})
	}
	return out
}

// layerIndex reads n from "layer_n".
func layerIndex(name string) (int, bool) {
	rest, ok := strings.CutPrefix(name, "layer_")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Identifier turns free text into a C# identifier: runs of characters that
// cannot appear in an identifier become one underscore, and a leading digit
// gets an underscore prefix.
func Identifier(s string) string {
	var sb strings.Builder
	pending := false
	for _, r := range strings.TrimSpace(s) {
		if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pending && sb.Len() > 0 {
				sb.WriteByte('_')
			}
			pending = false
			sb.WriteRune(r)
			continue
		}
		pending = true
	}
	id := sb.String()
	if id != "" && unicode.IsDigit([]rune(id)[0]) {
		id = "_" + id
	}
	return id
}
