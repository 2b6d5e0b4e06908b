// Package project locates a Godot project and reads what gdgen needs to
// know about it from project.godot and the C# project file.
package project

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gdgen/internal/projectconfig"
)

// SettingsFile is the file that marks a project root.
const SettingsFile = "project.godot"

// ErrNotFound is returned when no project root encloses a directory.
var ErrNotFound = errors.New("no " + SettingsFile + " found in this directory or any parent")

// Info describes a detected project.
type Info struct {
	Root          string   `json:"root" yaml:"root"`
	Name          string   `json:"name" yaml:"name"`
	EngineVersion string   `json:"engineVersion,omitempty" yaml:"engineVersion,omitempty"`
	Features      []string `json:"features,omitempty" yaml:"features,omitempty"`
	DotNet        bool     `json:"dotnet" yaml:"dotnet"`
	AssemblyName  string   `json:"assemblyName,omitempty" yaml:"assemblyName,omitempty"`
	CSProj        string   `json:"csproj,omitempty" yaml:"csproj,omitempty"`
	Settings      string   `json:"settings" yaml:"settings"`
}

// FindRoot walks up from start to the nearest directory holding
// project.godot.
func FindRoot(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}
	for {
		if fi, err := os.Stat(filepath.Join(dir, SettingsFile)); err == nil && !fi.IsDir() {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNotFound
		}
		dir = parent
	}
}

// Detect reads project facts below root. settings is the project-relative
// settings file; empty means project.godot. A missing settings file is not
// an error: Name then falls back to the directory name.
func Detect(root, settings string) (*Info, error) {
	if settings == "" {
		settings = SettingsFile
	}
	info := &Info{
		Root:     root,
		Name:     filepath.Base(root),
		Settings: filepath.ToSlash(settings),
	}

	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(settings)))
	switch {
	case err == nil:
		doc := projectconfig.Parse(string(data))
		for _, e := range doc.Section("application") {
			switch e.Key {
			case "config/name":
				if name := projectconfig.Unquote(e.Value); name != "" {
					info.Name = name
				}
			case "config/features":
				info.Features = quotedStrings(e.Value)
			}
		}
		for _, e := range doc.Section("dotnet") {
			if e.Key == "project/assembly_name" {
				info.AssemblyName = projectconfig.Unquote(e.Value)
				info.DotNet = true
			}
		}
	case !os.IsNotExist(err):
		return nil, err
	}

	for _, f := range info.Features {
		if f == "C#" {
			info.DotNet = true
		}
		if info.EngineVersion == "" && versionPattern.MatchString(f) {
			info.EngineVersion = f
		}
	}

	csproj, err := findCSProj(root)
	if err != nil {
		return nil, err
	}
	if csproj != "" {
		info.CSProj = csproj
		info.DotNet = true
		if info.AssemblyName == "" {
			info.AssemblyName = strings.TrimSuffix(csproj, filepath.Ext(csproj))
		}
	}
	return info, nil
}

var (
	versionPattern = regexp.MustCompile(`^\d+\.\d+(\.\d+)?$`)
	quotedPattern  = regexp.MustCompile(`"((?:[^"\\]|\\.)*)"`)
)

// quotedStrings extracts the string literals of a value such as
// PackedStringArray("4.3", "C#").
func quotedStrings(value string) []string {
	var out []string
	for _, m := range quotedPattern.FindAllString(value, -1) {
		out = append(out, projectconfig.Unquote(m))
	}
	return out
}

// findCSProj returns the first *.csproj directly under root, by name.
func findCSProj(root string) (string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return "", err
	}
	var found []string
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".csproj") {
			found = append(found, e.Name())
		}
	}
	if len(found) == 0 {
		return "", nil
	}
	sort.Strings(found)
	return found[0], nil
}
