// Package diag defines the stable diagnostic codes reported against user
// declarations, and the Diagnostic value handed back to the host.
package diag

import (
	"fmt"
	"sort"
	"sync"

	"gdgen/internal/syntax"
)

// Code is a stable, namespaced diagnostic identifier.
type Code string

const (
	// NotPartial: a marker sits on a class that is not declared partial.
	NotPartial Code = "SG0001"
	// NotNodeOrResource: a scene/resource marker on a class that descends from neither ancestor.
	NotNodeOrResource Code = "SG0002"
	// NotNode: a shader marker on a class that is not a node.
	NotNode Code = "SG0003"
	// InvalidShaderExtension: an explicit shader path with an unknown extension.
	InvalidShaderExtension Code = "SG0004"
	// DuplicateMarker: a non-repeatable marker applied more than once.
	DuplicateMarker Code = "SG0005"
	// DuplicateDiscriminator: two notification handlers share a discriminator.
	DuplicateDiscriminator Code = "SG0006"
	// HandlerHasParameters: a notification handler requires arguments.
	HandlerHasParameters Code = "SG0007"
	// NoMatchingOverload: marker arguments fit none of the marker's constructors.
	NoMatchingOverload Code = "SG0008"
)

// Category is shared by every diagnostic the pipeline reports.
const Category = "SG.Parsing"

// Kind groups codes into the error taxonomy.
type Kind string

const (
	KindConfiguration  Kind = "configuration"
	KindDomainMismatch Kind = "domain-mismatch"
)

// KindOf returns the taxonomy bucket of a code.
func KindOf(c Code) Kind {
	switch c {
	case NotNodeOrResource, NotNode:
		return KindDomainMismatch
	default:
		return KindConfiguration
	}
}

// Severity of a diagnostic.
type Severity string

const (
	Error   Severity = "error"
	Warning Severity = "warning"
	Info    Severity = "info"
)

// Diagnostic is reported at a user declaration, never at generated text.
type Diagnostic struct {
	Code     Code            `json:"code" yaml:"code"`
	Category string          `json:"category" yaml:"category"`
	Severity Severity        `json:"severity" yaml:"severity"`
	Message  string          `json:"message" yaml:"message"`
	Pos      syntax.Position `json:"pos" yaml:"pos"`
}

// New builds a diagnostic in the shared category.
func New(code Code, sev Severity, pos syntax.Position, format string, args ...any) Diagnostic {
	return Diagnostic{
		Code:     code,
		Category: Category,
		Severity: sev,
		Message:  fmt.Sprintf(format, args...),
		Pos:      pos,
	}
}

// Errorf builds an error-severity diagnostic.
func Errorf(code Code, pos syntax.Position, format string, args ...any) Diagnostic {
	return New(code, Error, pos, format, args...)
}

// Warningf builds a warning-severity diagnostic.
func Warningf(code Code, pos syntax.Position, format string, args ...any) Diagnostic {
	return New(code, Warning, pos, format, args...)
}

// String renders "path:line:col: severity CODE: message".
func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s %s: %s", d.Pos, d.Severity, d.Code, d.Message)
}

// Bag collects diagnostics; safe for concurrent use.
type Bag struct {
	mu    sync.Mutex
	items []Diagnostic
}

// Add appends diagnostics.
func (b *Bag) Add(ds ...Diagnostic) {
	b.mu.Lock()
	b.items = append(b.items, ds...)
	b.mu.Unlock()
}

// Len returns the number of collected diagnostics.
func (b *Bag) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}

// Sorted returns a copy ordered by position, then code.
func (b *Bag) Sorted() []Diagnostic {
	b.mu.Lock()
	out := make([]Diagnostic, len(b.items))
	copy(out, b.items)
	b.mu.Unlock()
	Sort(out)
	return out
}

// Sort orders diagnostics by position, then code, then message.
func Sort(ds []Diagnostic) {
	sort.SliceStable(ds, func(i, j int) bool {
		a, b := ds[i], ds[j]
		if a.Pos != b.Pos {
			if a.Pos.Path != b.Pos.Path {
				return a.Pos.Path < b.Pos.Path
			}
			if a.Pos.Offset != b.Pos.Offset {
				return a.Pos.Offset < b.Pos.Offset
			}
		}
		if a.Code != b.Code {
			return a.Code < b.Code
		}
		return a.Message < b.Message
	})
}

// HasErrors reports whether any diagnostic has error severity.
func HasErrors(ds []Diagnostic) bool {
	for _, d := range ds {
		if d.Severity == Error {
			return true
		}
	}
	return false
}
