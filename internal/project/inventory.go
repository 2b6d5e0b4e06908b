package project

import (
	"io/fs"
	"path/filepath"
	"strings"

	"gdgen/internal/paths"
)

// Inventory counts project files by extension (".cs", ".tscn", ...).
type Inventory map[string]int

// Kinds gdgen cares about. Anything else is not counted.
var inventoryExts = map[string]bool{
	".cs":       true,
	".tscn":     true,
	".scn":      true,
	".gdshader": true,
	".gd":       true,
	".csproj":   true,
}

// SkipDir reports whether a directory never holds project sources: hidden
// directories such as .godot and the dotnet build outputs.
func SkipDir(name string) bool {
	return strings.HasPrefix(name, ".") || name == "bin" || name == "obj"
}

// TakeInventory walks root, skipping hidden and build directories and every
// directory for which skip returns true. skip receives project-relative,
// forward-slash paths and may be nil.
func TakeInventory(root string, skip func(rel string) bool) (Inventory, error) {
	inv := Inventory{}
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == root {
				return err
			}
			return nil
		}
		rel, relErr := filepath.Rel(root, p)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if p == root {
				return nil
			}
			if SkipDir(d.Name()) || (skip != nil && skip(rel)) {
				return filepath.SkipDir
			}
			return nil
		}
		if ext := paths.Ext(rel); inventoryExts[ext] {
			inv[ext]++
		}
		return nil
	})
	return inv, err
}
