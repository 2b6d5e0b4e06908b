package projectconfig

import (
	_ "embed"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

//go:embed tables.toml
var defaultTables string

// LayerCategory is one family of indexed layer names, e.g. "2d_physics".
type LayerCategory struct {
	Key  string `toml:"key" json:"key" yaml:"key"`
	Enum string `toml:"enum" json:"enum" yaml:"enum"`
	Size int    `toml:"size" json:"size" yaml:"size"`
}

// Tables is the data the extraction rules run against.
type Tables struct {
	Version          int             `toml:"version" json:"version" yaml:"version"`
	ReservedPrefixes []string        `toml:"reserved_prefixes" json:"reservedPrefixes" yaml:"reservedPrefixes"`
	BuiltinInputs    []string        `toml:"builtin_inputs" json:"builtinInputs" yaml:"builtinInputs"`
	Layers           []LayerCategory `toml:"layer" json:"layers" yaml:"layers"`

	builtin map[string]bool
}

// DefaultTables returns the embedded tables.
func DefaultTables() (*Tables, error) {
	return ParseTables(defaultTables)
}

// ParseTables decodes and validates a tables document.
func ParseTables(data string) (*Tables, error) {
	var t Tables
	if _, err := toml.Decode(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse tables: %w", err)
	}
	if err := t.index(); err != nil {
		return nil, err
	}
	return &t, nil
}

// LoadTables reads a tables file and merges it over the defaults. An empty
// path returns the defaults.
func LoadTables(path string) (*Tables, error) {
	base, err := DefaultTables()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return base, nil
	}
	var user Tables
	if _, err := toml.DecodeFile(path, &user); err != nil {
		return nil, fmt.Errorf("failed to parse tables %s: %w", path, err)
	}
	return base.Merge(&user)
}

// Merge returns t extended by o. Prefixes and built-ins are unioned; a layer
// category of o replaces the category of t with the same key.
func (t *Tables) Merge(o *Tables) (*Tables, error) {
	out := &Tables{Version: t.Version}
	out.ReservedPrefixes = union(t.ReservedPrefixes, o.ReservedPrefixes)
	out.BuiltinInputs = union(t.BuiltinInputs, o.BuiltinInputs)

	pos := make(map[string]int)
	for _, l := range append(append([]LayerCategory{}, t.Layers...), o.Layers...) {
		if i, ok := pos[l.Key]; ok {
			out.Layers[i] = l
			continue
		}
		pos[l.Key] = len(out.Layers)
		out.Layers = append(out.Layers, l)
	}
	if err := out.index(); err != nil {
		return nil, err
	}
	return out, nil
}

func union(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	var out []string
	for _, s := range append(append([]string{}, a...), b...) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

func (t *Tables) index() error {
	t.builtin = make(map[string]bool, len(t.BuiltinInputs))
	for _, b := range t.BuiltinInputs {
		t.builtin[b] = true
	}
	enums := make(map[string]bool)
	for _, l := range t.Layers {
		if l.Key == "" || l.Enum == "" {
			return fmt.Errorf("layer category needs a key and an enum name: %+v", l)
		}
		if l.Size < 1 || l.Size > 32 {
			return fmt.Errorf("layer category %s: size %d outside 1..32", l.Key, l.Size)
		}
		if enums[l.Enum] {
			return fmt.Errorf("layer enum %s declared twice", l.Enum)
		}
		enums[l.Enum] = true
	}
	return nil
}

// Reserved reports whether key starts with a reserved prefix.
func (t *Tables) Reserved(key string) bool {
	for _, p := range t.ReservedPrefixes {
		if strings.HasPrefix(key, p) {
			return true
		}
	}
	return false
}

// Builtin reports whether key is a known built-in input action.
func (t *Tables) Builtin(key string) bool { return t.builtin[key] }

// Layer returns the category with the given key.
func (t *Tables) Layer(key string) (LayerCategory, bool) {
	for _, l := range t.Layers {
		if l.Key == key {
			return l, true
		}
	}
	return LayerCategory{}, false
}

// Encode writes the tables as TOML, built-ins sorted.
func (t *Tables) Encode(w io.Writer) error {
	c := *t
	c.BuiltinInputs = append([]string(nil), t.BuiltinInputs...)
	sort.Strings(c.BuiltinInputs)
	if err := toml.NewEncoder(w).Encode(c); err != nil {
		return fmt.Errorf("failed to encode tables: %w", err)
	}
	return nil
}
