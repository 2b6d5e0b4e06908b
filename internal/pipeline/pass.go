package pipeline

import (
	"fmt"
	"log/slog"
	"sync"

	"gdgen/internal/annotation"
	"gdgen/internal/candidate"
	"gdgen/internal/diag"
	"gdgen/internal/engine"
	"gdgen/internal/symbols"
	"gdgen/internal/syntax"
)

// Pass is what one generator sees of a compilation pass: shared read-only
// inputs and its own output buffers.
type Pass struct {
	Files           []*syntax.File
	Graph           *symbols.Graph
	Binder          *annotation.Binder
	Engine          *engine.Table
	ProjectRoot     string
	ProjectSettings string // project.godot text, empty when absent
	Logger          *slog.Logger

	mu    sync.Mutex
	units []Unit
	keys  map[string]bool
	diags diag.Bag
}

// Collector returns the candidate collector over the pass sources.
func (p *Pass) Collector() candidate.Collector {
	return candidate.Collector{Graph: p.Graph, Files: p.Files, Logger: p.Logger}
}

// Emit registers a unit. Keys must be unique within the pass.
func (p *Pass) Emit(u Unit) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.keys == nil {
		p.keys = make(map[string]bool)
	}
	if p.keys[u.Key] {
		return fmt.Errorf("duplicate unit key %s", u.Key)
	}
	p.keys[u.Key] = true
	p.units = append(p.units, u)
	return nil
}

// Report records diagnostics against user declarations.
func (p *Pass) Report(ds ...diag.Diagnostic) {
	p.diags.Add(ds...)
}

// Units returns the units emitted so far.
func (p *Pass) Units() []Unit {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Unit, len(p.units))
	copy(out, p.units)
	return out
}

// Diagnostics returns the diagnostics reported so far, sorted.
func (p *Pass) Diagnostics() []diag.Diagnostic {
	return p.diags.Sorted()
}
