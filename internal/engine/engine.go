// Package engine holds the opaque engine type surface: the names of the
// engine classes and their parents, used only for ancestry checks.
package engine

import (
	_ "embed"
	"fmt"
	"io"
	"os"
	"sort"

	toml "github.com/pelletier/go-toml/v2"
)

//go:embed types.toml
var defaultTypes []byte

// TypeDecl is one engine class and its direct parent.
type TypeDecl struct {
	Name   string `toml:"name" json:"name" yaml:"name"`
	Parent string `toml:"parent,omitempty" json:"parent,omitempty" yaml:"parent,omitempty"`
}

// Table is the engine class hierarchy.
type Table struct {
	Version   int        `toml:"version" json:"version" yaml:"version"`
	Namespace string     `toml:"namespace" json:"namespace" yaml:"namespace"`
	Node      string     `toml:"node" json:"node" yaml:"node"`
	Resource  string     `toml:"resource" json:"resource" yaml:"resource"`
	Types     []TypeDecl `toml:"type" json:"types" yaml:"types"`
	// Constants holds the integer constants declared by a class, keyed by
	// class name.
	Constants map[string]map[string]int64 `toml:"constants,omitempty" json:"constants,omitempty" yaml:"constants,omitempty"`

	parents map[string]string
}

// Default decodes the embedded type table.
func Default() (*Table, error) {
	return Parse(defaultTypes)
}

// Parse decodes and validates a self-contained TOML type table.
func Parse(data []byte) (*Table, error) {
	t, err := decode(data)
	if err != nil {
		return nil, err
	}
	if err := t.index(); err != nil {
		return nil, err
	}
	return t, nil
}

func decode(data []byte) (*Table, error) {
	var t Table
	if err := toml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse engine types: %w", err)
	}
	return &t, nil
}

// Load reads a user type table from path and merges it over the embedded one.
// User types may extend embedded ones. An empty path returns the embedded table.
func Load(path string) (*Table, error) {
	base, err := Default()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return base, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read engine types: %w", err)
	}
	extra, err := decode(data)
	if err != nil {
		return nil, err
	}
	return base.Merge(extra)
}

// Merge returns a table holding t's declarations overridden by o's.
// Scalar settings in o win when set.
func (t *Table) Merge(o *Table) (*Table, error) {
	out := &Table{
		Version:   t.Version,
		Namespace: t.Namespace,
		Node:      t.Node,
		Resource:  t.Resource,
	}
	if o.Namespace != "" {
		out.Namespace = o.Namespace
	}
	if o.Node != "" {
		out.Node = o.Node
	}
	if o.Resource != "" {
		out.Resource = o.Resource
	}
	for _, src := range []*Table{t, o} {
		for class, consts := range src.Constants {
			if out.Constants == nil {
				out.Constants = make(map[string]map[string]int64)
			}
			if out.Constants[class] == nil {
				out.Constants[class] = make(map[string]int64, len(consts))
			}
			for name, v := range consts {
				out.Constants[class][name] = v
			}
		}
	}
	seen := make(map[string]int)
	for _, d := range append(append([]TypeDecl{}, t.Types...), o.Types...) {
		if i, ok := seen[d.Name]; ok {
			out.Types[i] = d
			continue
		}
		seen[d.Name] = len(out.Types)
		out.Types = append(out.Types, d)
	}
	if err := out.index(); err != nil {
		return nil, err
	}
	return out, nil
}

func (t *Table) index() error {
	if t.Namespace == "" {
		t.Namespace = "Godot"
	}
	if t.Node == "" {
		t.Node = "Node"
	}
	if t.Resource == "" {
		t.Resource = "Resource"
	}
	t.parents = make(map[string]string, len(t.Types))
	for _, d := range t.Types {
		if d.Name == "" {
			return fmt.Errorf("engine type with empty name")
		}
		t.parents[d.Name] = d.Parent
	}
	for class := range t.Constants {
		if _, ok := t.parents[class]; !ok {
			return fmt.Errorf("engine constants of unknown type %s", class)
		}
	}
	for _, d := range t.Types {
		if d.Parent != "" {
			if _, ok := t.parents[d.Parent]; !ok {
				return fmt.Errorf("engine type %s: unknown parent %s", d.Name, d.Parent)
			}
		}
		// Walk to the root; more steps than types means a cycle.
		n := 0
		for p := d.Parent; p != ""; p = t.parents[p] {
			if n++; n > len(t.Types) {
				return fmt.Errorf("engine type %s: inheritance cycle", d.Name)
			}
		}
	}
	return nil
}

// Has reports whether name is a known engine class.
func (t *Table) Has(name string) bool {
	_, ok := t.parents[name]
	return ok
}

// Parent returns the direct parent of an engine class.
func (t *Table) Parent(name string) (string, bool) {
	p, ok := t.parents[name]
	if !ok || p == "" {
		return "", false
	}
	return p, true
}

// Constant looks name up among the constants of class and its ancestors.
func (t *Table) Constant(class, name string) (int64, bool) {
	for c, n := class, 0; c != "" && n <= len(t.Types); c, n = t.parents[c], n+1 {
		if v, ok := t.Constants[c][name]; ok {
			return v, true
		}
	}
	return 0, false
}

// Names returns every class name, sorted.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.parents))
	for n := range t.parents {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Qualified returns "Namespace.name".
func (t *Table) Qualified(name string) string {
	return t.Namespace + "." + name
}

// Global returns the fully qualified "global::Namespace.name" form used in
// emitted code.
func (t *Table) Global(name string) string {
	return "global::" + t.Qualified(name)
}

// NodeType is the qualified name of the spawnable scene-graph ancestor.
func (t *Table) NodeType() string { return t.Qualified(t.Node) }

// ResourceType is the qualified name of the single-resource ancestor.
func (t *Table) ResourceType() string { return t.Qualified(t.Resource) }

// Encode writes the table as TOML in the format Load reads.
func (t *Table) Encode(w io.Writer) error {
	enc := toml.NewEncoder(w)
	enc.SetIndentTables(true)
	if err := enc.Encode(t); err != nil {
		return fmt.Errorf("failed to encode engine types: %w", err)
	}
	return nil
}
