// Package pipeline runs generators over one pass of parsed sources and
// collects what they emit.
package pipeline

import (
	"crypto/sha256"
	"encoding/hex"

	"gdgen/internal/syntax"
)

// Unit is one emitted compilation unit.
type Unit struct {
	// Key is "<declaring type>.<generator>.g", unique within a pass.
	Key       string          `json:"key" yaml:"key"`
	Generator string          `json:"generator" yaml:"generator"`
	Source    syntax.Position `json:"source" yaml:"source"`
	Text      string          `json:"-" yaml:"-"`
}

// UnitKey builds the key of a unit from its declaring type and generator.
func UnitKey(declaringType, generator string) string {
	return declaringType + "." + generator + ".g"
}

// FileName is the name the unit is written under.
func (u Unit) FileName() string { return u.Key + ".cs" }

// Hash is the hex SHA-256 of the unit text.
func (u Unit) Hash() string {
	sum := sha256.Sum256([]byte(u.Text))
	return hex.EncodeToString(sum[:])
}
